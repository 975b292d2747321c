package binreader

import (
	"errors"
	"testing"
)

func TestReadPrimitivesBigEndian(t *testing.T) {
	r := New([]byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x03, 0xFF})

	u4, err := r.ReadU4()
	if err != nil {
		t.Fatalf("ReadU4: %v", err)
	}
	if u4 != 0xCAFEBABE {
		t.Fatalf("ReadU4 = %#x, want 0xCAFEBABE", u4)
	}

	u2, err := r.ReadU2()
	if err != nil {
		t.Fatalf("ReadU2: %v", err)
	}
	if u2 != 3 {
		t.Fatalf("ReadU2 = %d, want 3", u2)
	}

	u1, err := r.ReadU1()
	if err != nil {
		t.Fatalf("ReadU1: %v", err)
	}
	if u1 != 0xFF {
		t.Fatalf("ReadU1 = %#x, want 0xFF", u1)
	}

	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestReadExactTruncated(t *testing.T) {
	r := New([]byte{0x01, 0x02})
	if _, err := r.ReadExact(3); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestOffsetAdvances(t *testing.T) {
	r := New([]byte{1, 2, 3, 4, 5, 6})
	if _, err := r.ReadU2(); err != nil {
		t.Fatal(err)
	}
	if r.Offset() != 2 {
		t.Fatalf("Offset = %d, want 2", r.Offset())
	}
	if _, err := r.ReadU4(); err != nil {
		t.Fatal(err)
	}
	if r.Offset() != 6 {
		t.Fatalf("Offset = %d, want 6", r.Offset())
	}
}
