package interp

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/binreader"
	"github.com/khlevnov/jvmlite/internal/frame"
)

// fetchU1 reads one unsigned byte from f's code at f.PC and advances PC.
func fetchU1(f *frame.Frame) (byte, error) {
	if f.PC >= len(f.Method.Code) {
		return 0, fmt.Errorf("%w: pc %d past end of code", binreader.ErrTruncatedInput, f.PC)
	}
	b := f.Method.Code[f.PC]
	f.PC++
	return b, nil
}

// fetchU2 reads a big-endian unsigned 16-bit operand.
func fetchU2(f *frame.Frame) (uint16, error) {
	hi, err := fetchU1(f)
	if err != nil {
		return 0, err
	}
	lo, err := fetchU1(f)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// fetchI1 reads a signed byte operand (BIPUSH).
func fetchI1(f *frame.Frame) (int8, error) {
	b, err := fetchU1(f)
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

// fetchI2 reads a big-endian signed 16-bit operand (SIPUSH, branch
// offsets).
func fetchI2(f *frame.Frame) (int16, error) {
	u, err := fetchU2(f)
	if err != nil {
		return 0, err
	}
	return int16(u), nil
}
