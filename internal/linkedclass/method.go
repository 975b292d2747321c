// Package linkedclass builds the linked Method/Class views the
// interpreter and registry operate on, out of a classfile.RawClass and
// its constpool.Pool (§3, §4.4).
package linkedclass

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/constpool"
)

// Access flag bits relevant to linking (§3).
const (
	AccNative   uint16 = 0x0100
	AccAbstract uint16 = 0x0400
)

// Method is a linked view of a method: name, descriptor, flags, and (for
// a concrete method) its decoded Code.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	MaxStack    int
	MaxLocals   int
	Code        []byte
}

// IsNative reports whether the method is bound to a host-provided native
// function rather than carrying bytecode.
func (m *Method) IsNative() bool {
	return m.AccessFlags&AccNative != 0
}

// IsAbstract reports whether the method has no body at all.
func (m *Method) IsAbstract() bool {
	return m.AccessFlags&AccAbstract != 0
}

// Key returns the "<name>:<descriptor>" string methods are keyed by
// within a class (§3).
func (m *Method) Key() string {
	return m.Name + ":" + m.Descriptor
}

// LinkMethod builds a linked Method from a raw method record and its
// owning constant pool (§4.4). NATIVE or ABSTRACT methods get an empty
// body; otherwise the unique "Code" attribute is located and decoded.
func LinkMethod(raw classfile.RawMethod, pool *constpool.Pool) (*Method, error) {
	name, err := pool.Utf8(raw.NameIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving method name: %w", err)
	}
	descriptor, err := pool.Utf8(raw.DescriptorIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving method descriptor of %s: %w", name, err)
	}

	m := &Method{
		AccessFlags: raw.AccessFlags,
		Name:        name,
		Descriptor:  descriptor,
	}

	if m.IsNative() || m.IsAbstract() {
		return m, nil
	}

	var codeAttr *classfile.AttributeInfo
	for i := range raw.Attributes {
		attrName, err := pool.Utf8(raw.Attributes[i].NameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving attribute name of %s: %w", m.Key(), err)
		}
		if attrName != "Code" {
			continue
		}
		if codeAttr != nil {
			return nil, fmt.Errorf("%w: method %s", ErrAmbiguousCode, m.Key())
		}
		codeAttr = &raw.Attributes[i]
	}
	if codeAttr == nil {
		return nil, fmt.Errorf("%w: method %s", ErrMissingCode, m.Key())
	}

	code, err := classfile.DecodeCode(codeAttr.Info)
	if err != nil {
		return nil, fmt.Errorf("decoding Code attribute of %s: %w", m.Key(), err)
	}

	m.MaxStack = int(code.MaxStack)
	m.MaxLocals = int(code.MaxLocals)
	m.Code = code.Bytes

	return m, nil
}
