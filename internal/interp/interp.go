// Package interp is the fetch-decode-execute loop: it walks a Method's
// bytecode one Frame at a time, dispatching each opcode from opcodes.go
// against the operand stack, locals, and constant pool the active Frame
// carries (§4.6, §5).
package interp

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/khlevnov/jvmlite/internal/constpool"
	"github.com/khlevnov/jvmlite/internal/descriptor"
	"github.com/khlevnov/jvmlite/internal/frame"
	"github.com/khlevnov/jvmlite/internal/linkedclass"
	"github.com/khlevnov/jvmlite/internal/registry"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

// Interpreter runs one call's worth of bytecode — an invocation of a
// single method — to completion, pushing and popping Frames for any
// INVOKESTATIC calls it makes along the way. One Interpreter is built
// per top-level invocation (a <clinit> run, or the main call); it does
// not survive across them (§5).
type Interpreter struct {
	reg    *registry.Registry
	log    *slog.Logger
	frames []*frame.Frame
}

// New builds an Interpreter bound to reg. A nil logger falls back to
// slog.Default() so callers that don't care about tracing can omit it.
func New(reg *registry.Registry, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	return &Interpreter{reg: reg, log: log}
}

func (in *Interpreter) top() *frame.Frame {
	return in.frames[len(in.frames)-1]
}

// Run executes method (owned by pool) to completion and returns its
// result — Void for a bare RETURN. args are placed into locals[0..k]
// before execution starts, in order (used for native-free top-level
// invocations such as <clinit>; the main entry point passes none, per
// §9's main-argument decision).
func (in *Interpreter) Run(method *linkedclass.Method, pool *constpool.Pool, args []vmvalue.Value) (vmvalue.Value, error) {
	f := frame.New(method, pool, 0)
	copy(f.Locals, args)
	in.frames = append(in.frames, f)
	in.log.Debug("enter", "method", method.Key())

	for {
		f := in.top()
		result, done, err := in.step(f)
		if err != nil {
			return vmvalue.Value{}, fmt.Errorf("%s @pc=%d: %w", f.Method.Key(), f.PC, err)
		}
		if !done {
			continue
		}

		returnAddr := f.ReturnAddress
		in.log.Debug("leave", "method", f.Method.Key(), "result", result)
		in.frames = in.frames[:len(in.frames)-1]
		if len(in.frames) == 0 {
			return result, nil
		}
		if result.Kind() != vmvalue.KindVoid {
			in.top().Push(result)
		}
		in.top().PC = returnAddr
	}
}

// step executes a single instruction in f. done reports whether f's
// method returned this step (result is only meaningful when done).
func (in *Interpreter) step(f *frame.Frame) (result vmvalue.Value, done bool, err error) {
	opcodeByte, err := fetchU1(f)
	if err != nil {
		return vmvalue.Value{}, false, err
	}
	op := Opcode(opcodeByte)

	switch op {
	case Nop:
		// does nothing, by definition

	case IconstM1:
		f.Push(vmvalue.Int(-1))
	case Iconst0:
		f.Push(vmvalue.Int(0))
	case Iconst1:
		f.Push(vmvalue.Int(1))
	case Iconst2:
		f.Push(vmvalue.Int(2))
	case Iconst3:
		f.Push(vmvalue.Int(3))
	case Iconst4:
		f.Push(vmvalue.Int(4))
	case Iconst5:
		f.Push(vmvalue.Int(5))

	case Lconst0:
		f.Push(vmvalue.Long(0))
	case Lconst1:
		f.Push(vmvalue.Long(1))

	case Fconst0:
		f.Push(vmvalue.Float(0))
	case Fconst1:
		f.Push(vmvalue.Float(1))
	case Fconst2:
		f.Push(vmvalue.Float(2))

	case Dconst0:
		f.Push(vmvalue.Double(0))
	case Dconst1:
		f.Push(vmvalue.Double(1))

	case Bipush:
		b, err := fetchI1(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(int32(b)))

	case Sipush:
		s, err := fetchI2(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(int32(s)))

	case Ldc:
		idx, err := fetchU1(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		v, err := f.Pool.Loadable(uint16(idx))
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(v)

	case LdcW, Ldc2W:
		idx, err := fetchU2(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		v, err := f.Pool.Loadable(idx)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(v)

	case Iload, Lload, Fload, Dload:
		idx, err := fetchU1(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(f.Locals[idx])

	case Iload0, Lload0, Fload0, Dload0:
		f.Push(f.Locals[0])
	case Iload1, Lload1, Fload1, Dload1:
		f.Push(f.Locals[1])
	case Iload2, Lload2, Fload2, Dload2:
		f.Push(f.Locals[2])
	case Iload3, Lload3, Fload3, Dload3:
		f.Push(f.Locals[3])

	case Istore, Lstore, Fstore, Dstore:
		idx, err := fetchU1(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Locals[idx] = f.Pop()

	case Istore0, Lstore0, Fstore0, Dstore0:
		f.Locals[0] = f.Pop()
	case Istore1, Lstore1, Fstore1, Dstore1:
		f.Locals[1] = f.Pop()
	case Istore2, Lstore2, Fstore2, Dstore2:
		f.Locals[2] = f.Pop()
	case Istore3, Lstore3, Fstore3, Dstore3:
		f.Locals[3] = f.Pop()

	case Iadd:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(a + b)) // wraps per Go's twos-complement int32 arithmetic
	case Isub:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(a - b))
	case Imul:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(a * b))
	case Idiv:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		if b == 0 {
			return vmvalue.Value{}, false, ErrDivisionByZero
		}
		f.Push(vmvalue.Int(a / b))
	case Irem:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		if b == 0 {
			return vmvalue.Value{}, false, ErrDivisionByZero
		}
		f.Push(vmvalue.Int(a % b))

	case Ladd:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Long(a + b))
	case Lsub:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Long(a - b))
	case Lmul:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Long(a * b))
	case Ldiv:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		if b == 0 {
			return vmvalue.Value{}, false, ErrDivisionByZero
		}
		f.Push(vmvalue.Long(a / b))
	case Lrem:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		if b == 0 {
			return vmvalue.Value{}, false, ErrDivisionByZero
		}
		f.Push(vmvalue.Long(a % b))

	case Fadd:
		a, b, err := popFloats(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(a + b))
	case Fsub:
		a, b, err := popFloats(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(a - b))
	case Fmul:
		a, b, err := popFloats(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(a * b))
	case Fdiv:
		// Open Question 1: real division, not the reference bug (§9).
		a, b, err := popFloats(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(a / b))
	case Frem:
		a, b, err := popFloats(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(float32(math.Mod(float64(a), float64(b)))))

	case Dadd:
		a, b, err := popDoubles(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Double(a + b))
	case Dsub:
		a, b, err := popDoubles(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Double(a - b))
	case Dmul:
		a, b, err := popDoubles(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Double(a * b))
	case Ddiv:
		a, b, err := popDoubles(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Double(a / b))
	case Drem:
		a, b, err := popDoubles(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Double(math.Mod(a, b)))

	case Iand:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(a & b))
	case Land:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Long(a & b))
	case Ior:
		a, b, err := popInts(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Int(a | b))
	case Lor:
		a, b, err := popLongs(f)
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Long(a | b))

	case I2f:
		v, err := f.Pop().Int()
		if err != nil {
			return vmvalue.Value{}, false, err
		}
		f.Push(vmvalue.Float(float32(v)))

	case Ifeq, Ifne, Iflt, Ifge, Ifgt, Ifle:
		if err := in.doBranch(f, func() (bool, error) {
			v, err := f.Pop().Int()
			if err != nil {
				return false, err
			}
			return compareToZero(op, v), nil
		}); err != nil {
			return vmvalue.Value{}, false, err
		}

	case IfIcmpeq, IfIcmpne, IfIcmplt, IfIcmpge, IfIcmpgt, IfIcmple:
		if err := in.doBranch(f, func() (bool, error) {
			a, b, err := popInts(f)
			if err != nil {
				return false, err
			}
			return compareInts(op, a, b), nil
		}); err != nil {
			return vmvalue.Value{}, false, err
		}

	case Goto:
		if err := in.doBranch(f, func() (bool, error) { return true, nil }); err != nil {
			return vmvalue.Value{}, false, err
		}

	case Ireturn, Lreturn, Freturn, Dreturn:
		return f.Pop(), true, nil
	case Return:
		return vmvalue.Void(), true, nil

	case Invokestatic:
		return in.invokestatic(f)

	default:
		return vmvalue.Value{}, false, fmt.Errorf("%w: 0x%02x", ErrUnsupportedOpcode, opcodeByte)
	}

	return vmvalue.Value{}, false, nil
}

// doBranch reads a branch opcode's 2-byte signed offset, decides whether
// to take it via pred (which has already consumed this opcode's operand
// stack inputs), and sets f.PC accordingly (§4.6 "Branch arithmetic").
func (in *Interpreter) doBranch(f *frame.Frame, pred func() (bool, error)) error {
	base := f.PC - 1
	take, err := pred()
	if err != nil {
		return err
	}
	offset, err := fetchI2(f)
	if err != nil {
		return err
	}
	if take {
		f.PC = base + int(offset)
	}
	return nil
}

func compareToZero(op Opcode, v int32) bool {
	switch op {
	case Ifeq:
		return v == 0
	case Ifne:
		return v != 0
	case Iflt:
		return v < 0
	case Ifge:
		return v >= 0
	case Ifgt:
		return v > 0
	case Ifle:
		return v <= 0
	default:
		return false
	}
}

func compareInts(op Opcode, a, b int32) bool {
	switch op {
	case IfIcmpeq:
		return a == b
	case IfIcmpne:
		return a != b
	case IfIcmplt:
		return a < b
	case IfIcmpge:
		return a >= b
	case IfIcmpgt:
		return a > b
	case IfIcmple:
		return a <= b
	default:
		return false
	}
}

// invokestatic resolves and dispatches an INVOKESTATIC call: either into
// a native function (result computed immediately) or by pushing a new
// Frame for the interpreter loop to continue into (§4.6).
func (in *Interpreter) invokestatic(f *frame.Frame) (vmvalue.Value, bool, error) {
	idx, err := fetchU2(f)
	if err != nil {
		return vmvalue.Value{}, false, err
	}
	owner, key, err := f.Pool.MethodRef(idx)
	if err != nil {
		return vmvalue.Value{}, false, err
	}

	calleeClass, err := in.reg.Class(owner)
	if err != nil {
		return vmvalue.Value{}, false, err
	}
	callee, ok := calleeClass.Method(key)
	if !ok {
		return vmvalue.Value{}, false, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, owner, key)
	}

	paramKinds, err := descriptor.Params(callee.Descriptor)
	if err != nil {
		return vmvalue.Value{}, false, err
	}
	args := make([]vmvalue.Value, len(paramKinds))
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = f.Pop()
	}

	in.log.Debug("invokestatic", "owner", owner, "method", key)
	if callee.IsNative() {
		nativeKey := owner + "." + key
		fn, ok := in.reg.Native(nativeKey)
		if !ok {
			return vmvalue.Value{}, false, fmt.Errorf("%w: native %s not registered", ErrNoSuchMethod, nativeKey)
		}
		result := fn(args)
		if result.Kind() != vmvalue.KindVoid {
			f.Push(result)
		}
		return vmvalue.Value{}, false, nil
	}

	callFrame := frame.New(callee, calleeClass.Pool, f.PC)
	copy(callFrame.Locals, args)
	in.frames = append(in.frames, callFrame)
	return vmvalue.Value{}, false, nil
}

func popInts(f *frame.Frame) (a, b int32, err error) {
	bv := f.Pop()
	av := f.Pop()
	b, err = bv.Int()
	if err != nil {
		return 0, 0, err
	}
	a, err = av.Int()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func popLongs(f *frame.Frame) (a, b int64, err error) {
	bv := f.Pop()
	av := f.Pop()
	b, err = bv.Long()
	if err != nil {
		return 0, 0, err
	}
	a, err = av.Long()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func popFloats(f *frame.Frame) (a, b float32, err error) {
	bv := f.Pop()
	av := f.Pop()
	b, err = bv.Float()
	if err != nil {
		return 0, 0, err
	}
	a, err = av.Float()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func popDoubles(f *frame.Frame) (a, b float64, err error) {
	bv := f.Pop()
	av := f.Pop()
	b, err = bv.Double()
	if err != nil {
		return 0, 0, err
	}
	a, err = av.Double()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
