package classfile

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/binreader"
)

// ExceptionTableEntry mirrors one entry of a Code attribute's exception
// table. Retained for structural fidelity but unused by the interpreter
// (§4.2 Code-attribute decoder, §5: no in-VM exception machinery).
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// Code is a decoded Code attribute: the only attribute this core ever
// looks inside.
type Code struct {
	MaxStack       uint16
	MaxLocals      uint16
	Bytes          []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

// DecodeCode decodes a Code attribute's payload (§4.2). It is invoked on
// demand per method when linking, never eagerly for every attribute.
func DecodeCode(info []byte) (*Code, error) {
	r := binreader.New(info)

	maxStack, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading max_stack: %w", err)
	}
	maxLocals, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading max_locals: %w", err)
	}
	codeLength, err := r.ReadU4()
	if err != nil {
		return nil, fmt.Errorf("reading code_length: %w", err)
	}
	code, err := r.ReadExact(int(codeLength))
	if err != nil {
		return nil, fmt.Errorf("reading code: %w", err)
	}

	exTableLen, err := r.ReadU2()
	if err != nil {
		return nil, fmt.Errorf("reading exception_table_length: %w", err)
	}
	exTable := make([]ExceptionTableEntry, exTableLen)
	for i := range exTable {
		startPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading exception_table[%d].start_pc: %w", i, err)
		}
		endPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading exception_table[%d].end_pc: %w", i, err)
		}
		handlerPC, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading exception_table[%d].handler_pc: %w", i, err)
		}
		catchType, err := r.ReadU2()
		if err != nil {
			return nil, fmt.Errorf("reading exception_table[%d].catch_type: %w", i, err)
		}
		exTable[i] = ExceptionTableEntry{StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType}
	}

	attrs, err := decodeAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("reading Code nested attributes: %w", err)
	}

	return &Code{
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Bytes:          append([]byte(nil), code...),
		ExceptionTable: exTable,
		Attributes:     attrs,
	}, nil
}
