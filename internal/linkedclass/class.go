package linkedclass

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/constpool"
)

// Class is a linked view of a class: resolved this/super names, its
// constant pool, and methods keyed by "<name>:<descriptor>" (§3).
type Class struct {
	AccessFlags uint16
	ThisName    string
	SuperName   string // empty for a class with no super (this core never sees java/lang/Object linked)
	Pool        *constpool.Pool
	Methods     map[string]*Method
}

// Method looks up a linked method by its "<name>:<descriptor>" key.
func (c *Class) Method(key string) (*Method, bool) {
	m, ok := c.Methods[key]
	return m, ok
}

// LinkClass builds a linked Class from a decoded RawClass (§4.4, §4.5).
func LinkClass(raw *classfile.RawClass) (*Class, error) {
	pool := constpool.New(raw.ConstantPool)

	thisName, err := pool.Class(raw.ThisClass)
	if err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}

	var superName string
	if raw.SuperClass != 0 {
		superName, err = pool.Class(raw.SuperClass)
		if err != nil {
			return nil, fmt.Errorf("resolving super_class of %s: %w", thisName, err)
		}
	}

	methods := make(map[string]*Method, len(raw.Methods))
	for _, rm := range raw.Methods {
		m, err := LinkMethod(rm, pool)
		if err != nil {
			return nil, fmt.Errorf("linking method of %s: %w", thisName, err)
		}
		methods[m.Key()] = m
	}

	return &Class{
		AccessFlags: raw.AccessFlags,
		ThisName:    thisName,
		SuperName:   superName,
		Pool:        pool,
		Methods:     methods,
	}, nil
}
