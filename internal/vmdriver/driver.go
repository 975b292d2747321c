// Package vmdriver orchestrates the whole pipeline CLI callers see: eager
// transitive class loading, <clinit> scheduling, and the main-method
// invocation (§5, §6 "Driver surface").
package vmdriver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/khlevnov/jvmlite/internal/constpool"
	"github.com/khlevnov/jvmlite/internal/interp"
	"github.com/khlevnov/jvmlite/internal/jvmloader"
	"github.com/khlevnov/jvmlite/internal/registry"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

const clinitKey = "<clinit>:()V"
const mainKey = "main:([Ljava/lang/String;)V"

// Driver owns the registry a program's classes get loaded into and knows
// which class to invoke main on.
type Driver struct {
	loader   *jvmloader.Loader
	reg      *registry.Registry
	log      *slog.Logger
	mainName string // internal (/-separated) form

	visiting map[string]bool // cycle guard during transitive load
}

// New builds a Driver that resolves classes against classpathRoots and
// will invoke main on mainClassDotted (dotted external form, e.g.
// "com.example.Main").
func New(classpathRoots []string, mainClassDotted string, reg *registry.Registry, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		loader:   jvmloader.NewLoader(jvmloader.NewClasspathProvider(classpathRoots...)),
		reg:      reg,
		log:      log,
		mainName: internalName(mainClassDotted),
		visiting: make(map[string]bool),
	}
}

func internalName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

// Run eager-loads the main class and everything it transitively
// references, drives every loaded class's <clinit> in load order, then
// invokes main:([Ljava/lang/String;)V on the main class with no locals
// populated (§9 "Main argument").
func (d *Driver) Run() (vmvalue.Value, error) {
	if err := d.loadTransitively(d.mainName); err != nil {
		return vmvalue.Value{}, fmt.Errorf("loading %s: %w", d.mainName, err)
	}

	for _, name := range d.reg.InitOrder {
		cls, err := d.reg.Class(name)
		if err != nil {
			return vmvalue.Value{}, err // unreachable: name came from the registry itself
		}
		clinit, ok := cls.Method(clinitKey)
		if !ok {
			continue
		}
		d.log.Debug("clinit", "class", name)
		in := interp.New(d.reg, d.log)
		if _, err := in.Run(clinit, cls.Pool, nil); err != nil {
			return vmvalue.Value{}, fmt.Errorf("running %s <clinit>: %w", name, err)
		}
	}

	mainClass, err := d.reg.Class(d.mainName)
	if err != nil {
		return vmvalue.Value{}, err
	}
	mainMethod, ok := mainClass.Method(mainKey)
	if !ok {
		return vmvalue.Value{}, fmt.Errorf("%w: %s.%s", interp.ErrNoSuchMethod, d.mainName, mainKey)
	}

	d.log.Info("run", "class", d.mainName, "method", mainKey)
	in := interp.New(d.reg, d.log)
	return in.Run(mainMethod, mainClass.Pool, nil)
}

// loadTransitively loads name and, recursively, every class its constant
// pool references (including its superclass), short-circuiting at the
// java/lang/Object stub (§6). Classes are appended to the registry's
// InitOrder only once all of their own dependencies have finished
// loading (post-order w.r.t. super_class, then constant-pool referents,
// per §5), so a dependency's <clinit> always runs before its
// dependent's. visiting guards against a reference cycle recursing
// forever; it does not by itself prevent re-loading — reg.Has does
// that once a class's post-order Put has actually happened.
func (d *Driver) loadTransitively(name string) error {
	if name == jvmloader.ObjectStub || d.reg.Has(name) || d.visiting[name] {
		return nil
	}
	d.visiting[name] = true
	defer delete(d.visiting, name)

	cls, err := d.loader.Load(name)
	if err != nil {
		if errors.Is(err, jvmloader.ErrNotFound) {
			return fmt.Errorf("%w: %s", registry.ErrClassNotFound, constpool.DottedFromInternal(name))
		}
		return fmt.Errorf("loading %s: %w", name, err)
	}
	d.log.Debug("loaded", "class", name, "pool_size", cls.Pool.Len(), "methods", len(cls.Methods))

	if cls.SuperName != "" {
		if err := d.loadTransitively(cls.SuperName); err != nil {
			return err
		}
	}

	refs, err := cls.Pool.ClassNames()
	if err != nil {
		return fmt.Errorf("scanning class refs of %s: %w", name, err)
	}
	for _, ref := range refs {
		if err := d.loadTransitively(ref); err != nil {
			return err
		}
	}

	d.reg.Put(cls)
	return nil
}
