package linkedclass

import (
	"errors"
	"testing"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/constpool"
)

func poolWithCode() *constpool.Pool {
	return constpool.New([]classfile.RawConstant{
		nil,
		classfile.ConstUtf8{Value: "main"},  // 1
		classfile.ConstUtf8{Value: "()V"},   // 2
		classfile.ConstUtf8{Value: "Code"},  // 3
	})
}

func TestLinkMethodNative(t *testing.T) {
	pool := poolWithCode()
	raw := classfile.RawMethod{AccessFlags: AccNative, NameIndex: 1, DescriptorIndex: 2}
	m, err := LinkMethod(raw, pool)
	if err != nil {
		t.Fatalf("LinkMethod: %v", err)
	}
	if !m.IsNative() || m.MaxStack != 0 || m.MaxLocals != 0 || len(m.Code) != 0 {
		t.Fatalf("unexpected native method: %+v", m)
	}
}

func TestLinkMethodMissingCode(t *testing.T) {
	pool := poolWithCode()
	raw := classfile.RawMethod{AccessFlags: 0, NameIndex: 1, DescriptorIndex: 2}
	_, err := LinkMethod(raw, pool)
	if !errors.Is(err, ErrMissingCode) {
		t.Fatalf("expected ErrMissingCode, got %v", err)
	}
}

func TestLinkMethodAmbiguousCode(t *testing.T) {
	pool := poolWithCode()
	codeInfo := []byte{0, 1, 0, 1, 0, 0, 0, 1, 0xb1, 0, 0, 0, 0}
	raw := classfile.RawMethod{
		AccessFlags:     0,
		NameIndex:       1,
		DescriptorIndex: 2,
		Attributes: []classfile.AttributeInfo{
			{NameIndex: 3, Info: codeInfo},
			{NameIndex: 3, Info: codeInfo},
		},
	}
	_, err := LinkMethod(raw, pool)
	if !errors.Is(err, ErrAmbiguousCode) {
		t.Fatalf("expected ErrAmbiguousCode, got %v", err)
	}
}

func TestLinkMethodDecodesCode(t *testing.T) {
	pool := poolWithCode()
	// max_stack=1, max_locals=2, code_length=1 ([RETURN]), 0 exception entries, 0 attrs
	codeInfo := []byte{0, 1, 0, 2, 0, 0, 0, 1, 0xb1, 0, 0, 0, 0}
	raw := classfile.RawMethod{
		AccessFlags:     0,
		NameIndex:       1,
		DescriptorIndex: 2,
		Attributes: []classfile.AttributeInfo{
			{NameIndex: 3, Info: codeInfo},
		},
	}
	m, err := LinkMethod(raw, pool)
	if err != nil {
		t.Fatalf("LinkMethod: %v", err)
	}
	if m.MaxStack != 1 || m.MaxLocals != 2 || len(m.Code) != 1 || m.Code[0] != 0xb1 {
		t.Fatalf("unexpected linked method: %+v", m)
	}
	if m.Key() != "main:()V" {
		t.Fatalf("Key() = %q, want main:()V", m.Key())
	}
}
