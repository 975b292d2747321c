// Package constpool is an indexed, typed view over a decoded constant
// pool (§4.3). It resolves class names, method refs, and loadable
// constants by following the raw index chains a classfile.RawClass
// carries.
package constpool

import (
	"fmt"
	"strings"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

// Pool wraps a decoded constant pool with resolver methods. It is
// immutable after construction — classes, once registered, are never
// mutated (§9).
type Pool struct {
	entries []classfile.RawConstant
}

// New wraps a RawClass's decoded constant pool.
func New(entries []classfile.RawConstant) *Pool {
	return &Pool{entries: entries}
}

// Len returns the pool's size, including index 0 and Unusable slots.
func (p *Pool) Len() int {
	return len(p.entries)
}

func (p *Pool) at(i uint16) (classfile.RawConstant, error) {
	if int(i) <= 0 || int(i) >= len(p.entries) {
		return nil, fmt.Errorf("%w: index %d (pool size %d)", ErrIndexOutOfRange, i, len(p.entries))
	}
	return p.entries[i], nil
}

// Utf8 resolves index i to its string value.
func (p *Pool) Utf8(i uint16) (string, error) {
	c, err := p.at(i)
	if err != nil {
		return "", err
	}
	u, ok := c.(classfile.ConstUtf8)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %T, want Utf8", ErrWrongConstantKind, i, c)
	}
	return u.Value, nil
}

// Class resolves index i as a ClassRef and returns its internal
// (`/`-separated) name.
func (p *Pool) Class(i uint16) (string, error) {
	c, err := p.at(i)
	if err != nil {
		return "", err
	}
	cls, ok := c.(classfile.ConstClass)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %T, want Class", ErrWrongConstantKind, i, c)
	}
	return p.Utf8(cls.NameIndex)
}

// NameAndTypeKey resolves index i as a NameAndType and returns
// "<name>:<descriptor>".
func (p *Pool) NameAndTypeKey(i uint16) (string, error) {
	c, err := p.at(i)
	if err != nil {
		return "", err
	}
	nt, ok := c.(classfile.ConstNameAndType)
	if !ok {
		return "", fmt.Errorf("%w: index %d is %T, want NameAndType", ErrWrongConstantKind, i, c)
	}
	name, err := p.Utf8(nt.NameIndex)
	if err != nil {
		return "", err
	}
	desc, err := p.Utf8(nt.DescriptorIndex)
	if err != nil {
		return "", err
	}
	return name + ":" + desc, nil
}

// MethodRef resolves index i as a MethodRef, returning the owning class's
// internal name and the "<name>:<descriptor>" key (§4.3).
func (p *Pool) MethodRef(i uint16) (ownerClass string, key string, err error) {
	c, err := p.at(i)
	if err != nil {
		return "", "", err
	}
	ref, ok := c.(classfile.ConstMethodRef)
	if !ok {
		return "", "", fmt.Errorf("%w: index %d is %T, want MethodRef", ErrWrongConstantKind, i, c)
	}
	ownerClass, err = p.Class(ref.ClassIndex)
	if err != nil {
		return "", "", err
	}
	key, err = p.NameAndTypeKey(ref.NameAndTypeIndex)
	if err != nil {
		return "", "", err
	}
	return ownerClass, key, nil
}

// Loadable resolves index i as one of Integer/Float/Long/Double,
// producing the tagged Value an LDC-family opcode pushes (§4.3, §9: a
// Long or Double loadable still collapses to one operand-stack slot).
func (p *Pool) Loadable(i uint16) (vmvalue.Value, error) {
	c, err := p.at(i)
	if err != nil {
		return vmvalue.Value{}, err
	}
	switch v := c.(type) {
	case classfile.ConstInteger:
		return vmvalue.Int(v.Value), nil
	case classfile.ConstFloat:
		return vmvalue.Float(v.Value), nil
	case classfile.ConstLong:
		return vmvalue.Long(v.Value), nil
	case classfile.ConstDouble:
		return vmvalue.Double(v.Value), nil
	default:
		return vmvalue.Value{}, fmt.Errorf("%w: index %d is %T, want a loadable constant", ErrWrongConstantKind, i, c)
	}
}

// ClassNames returns the resolved internal name of every ClassRef in the
// pool, used to compute transitive load dependencies (§4.3, §6).
func (p *Pool) ClassNames() ([]string, error) {
	var names []string
	for i, c := range p.entries {
		cls, ok := c.(classfile.ConstClass)
		if !ok {
			continue
		}
		name, err := p.Utf8(cls.NameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving class name at index %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// DottedFromInternal converts an internal (`/`-separated) class name to
// its dotted external form, used when reporting ClassNotFoundException
// (§4.5).
func DottedFromInternal(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}
