// Package natives registers the one native bridge class this core ships
// with: ru/khlevnov/PrintStream, a minimal stand-in for java.io.PrintStream
// (SPEC_FULL.md §6). Native methods never carry bytecode; they're plain
// Go functions bound into a registry.Registry by fully-qualified key.
package natives

import (
	"fmt"
	"io"

	"github.com/khlevnov/jvmlite/internal/registry"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

const printStreamClass = "ru/khlevnov/PrintStream"

// RegisterPrintStream binds ru/khlevnov/PrintStream's two overloads of
// print to reg, writing to w.
func RegisterPrintStream(reg *registry.Registry, w io.Writer) {
	reg.RegisterNative(printStreamClass+".print:(I)V", func(args []vmvalue.Value) vmvalue.Value {
		v, err := args[0].Int()
		if err != nil {
			panic(err) // descriptor mismatch would mean a linker bug, not a VM-input error
		}
		fmt.Fprintln(w, v)
		return vmvalue.Void()
	})
	reg.RegisterNative(printStreamClass+".print:(D)V", func(args []vmvalue.Value) vmvalue.Value {
		v, err := args[0].Double()
		if err != nil {
			panic(err)
		}
		fmt.Fprintln(w, v)
		return vmvalue.Void()
	})
}
