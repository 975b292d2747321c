// Package registry is the process-wide map of linked classes and native
// methods (§4.5). It is populated during the load/link phase and is
// read-only during interpretation (§5) — no locking required.
package registry

import (
	"fmt"

	"github.com/khlevnov/jvmlite/internal/constpool"
	"github.com/khlevnov/jvmlite/internal/linkedclass"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

// NativeFunc is a host-provided function bound to a class+name+descriptor
// key (§4.5, §6).
type NativeFunc func(args []vmvalue.Value) vmvalue.Value

// Registry maps internal class names to linked classes, and native keys
// ("<owner>.<name>:<descriptor>") to native functions.
type Registry struct {
	classes map[string]*linkedclass.Class
	natives map[string]NativeFunc

	// InitOrder records the order classes finished recursive loading in,
	// for the driver's <clinit> scheduling (§5).
	InitOrder []string
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		classes: make(map[string]*linkedclass.Class),
		natives: make(map[string]NativeFunc),
	}
}

// RegisterNative binds a native function to a fully-qualified key
// (§4.5: "<owner_internal_name>.<method_name>:<descriptor>").
func (r *Registry) RegisterNative(key string, fn NativeFunc) {
	r.natives[key] = fn
}

// Native looks up a native function by its fully-qualified key.
func (r *Registry) Native(key string) (NativeFunc, bool) {
	fn, ok := r.natives[key]
	return fn, ok
}

// Put registers a linked class and appends it to the init order, unless
// it's already present (load is idempotent per class name).
func (r *Registry) Put(cls *linkedclass.Class) {
	if _, exists := r.classes[cls.ThisName]; exists {
		return
	}
	r.classes[cls.ThisName] = cls
	r.InitOrder = append(r.InitOrder, cls.ThisName)
}

// Has reports whether internalName has already been registered.
func (r *Registry) Has(internalName string) bool {
	_, ok := r.classes[internalName]
	return ok
}

// Class looks up a linked class by internal name, failing with
// ErrClassNotFound (dotted form) if absent (§4.5).
func (r *Registry) Class(internalName string) (*linkedclass.Class, error) {
	cls, ok := r.classes[internalName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, constpool.DottedFromInternal(internalName))
	}
	return cls, nil
}
