package jvmloader

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/linkedclass"
)

// ObjectStub is the internal name treated as a bootstrap stub: it is
// never loaded, standing in for a real java/lang/Object (§4.5, §9).
const ObjectStub = "java/lang/Object"

// Loader decodes and links one class at a time from a ByteProvider.
type Loader struct {
	Provider ByteProvider
}

// NewLoader builds a Loader over the given ByteProvider.
func NewLoader(provider ByteProvider) *Loader {
	return &Loader{Provider: provider}
}

// Load fetches, decodes, and links internalName. It does not recurse
// into referenced classes; that is vmdriver's job, so the registry it
// populates can dedupe work across the whole load graph.
func (l *Loader) Load(internalName string) (*linkedclass.Class, error) {
	raw, err := l.Provider.Load(internalName)
	if err != nil {
		return nil, err
	}

	decoded, err := classfile.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", internalName, err)
	}

	cls, err := linkedclass.LinkClass(decoded)
	if err != nil {
		return nil, fmt.Errorf("linking %s: %w", internalName, err)
	}

	return cls, nil
}
