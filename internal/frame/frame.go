// Package frame defines the per-invocation activation record the
// interpreter pushes and pops as it calls into and returns from methods
// (§3, §9).
package frame

import (
	"errors"

	"github.com/khlevnov/jvmlite/internal/constpool"
	"github.com/khlevnov/jvmlite/internal/linkedclass"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

// ErrStackUnderflow is returned by TryPop when the operand stack is
// empty — malformed bytecode, since well-formed code never pops more
// than it pushed (§7).
var ErrStackUnderflow = errors.New("operand stack underflow")

// Frame borrows a method's code and its owning class's constant pool; it
// owns its locals and operand stack. Methods never own their constant
// pool directly — lookup always goes through the owning Class (§9).
type Frame struct {
	Method *linkedclass.Method
	Pool   *constpool.Pool

	Locals       []vmvalue.Value
	OperandStack []vmvalue.Value

	// PC is the next instruction offset to fetch within Method.Code.
	PC int

	// ReturnAddress is the caller's PC to resume on return.
	ReturnAddress int
}

// New builds a Frame for invoking method, whose constant pool is pool.
// Locals are sized to method.MaxLocals and initialized to Null (§3);
// the operand stack starts empty but is typically appended to up to
// method.MaxStack.
func New(method *linkedclass.Method, pool *constpool.Pool, returnAddress int) *Frame {
	locals := make([]vmvalue.Value, method.MaxLocals)
	for i := range locals {
		locals[i] = vmvalue.Null()
	}
	return &Frame{
		Method:        method,
		Pool:          pool,
		Locals:        locals,
		OperandStack:  make([]vmvalue.Value, 0, method.MaxStack),
		ReturnAddress: returnAddress,
	}
}

// Push appends v to the top of the operand stack.
func (f *Frame) Push(v vmvalue.Value) {
	f.OperandStack = append(f.OperandStack, v)
}

// Pop removes and returns the top of the operand stack. Code is assumed
// well-formed (§4.6): callers that might see an empty stack on malformed
// input should check Depth first.
func (f *Frame) Pop() vmvalue.Value {
	last := len(f.OperandStack) - 1
	v := f.OperandStack[last]
	f.OperandStack = f.OperandStack[:last]
	return v
}

// TryPop removes and returns the top of the operand stack, or
// ErrStackUnderflow if it is empty.
func (f *Frame) TryPop() (vmvalue.Value, error) {
	if len(f.OperandStack) == 0 {
		return vmvalue.Value{}, ErrStackUnderflow
	}
	return f.Pop(), nil
}

// Depth reports the current operand-stack depth.
func (f *Frame) Depth() int {
	return len(f.OperandStack)
}
