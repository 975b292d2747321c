package interp

import (
	"errors"
	"testing"

	"github.com/khlevnov/jvmlite/internal/classfile"
	"github.com/khlevnov/jvmlite/internal/constpool"
	"github.com/khlevnov/jvmlite/internal/frame"
	"github.com/khlevnov/jvmlite/internal/linkedclass"
	"github.com/khlevnov/jvmlite/internal/registry"
	"github.com/khlevnov/jvmlite/internal/vmvalue"
)

func emptyPool() *constpool.Pool {
	return constpool.New(nil)
}

func intVal(t *testing.T, v vmvalue.Value) int32 {
	t.Helper()
	i, err := v.Int()
	if err != nil {
		t.Fatalf("expected Int, got %v: %v", v, err)
	}
	return i
}

// TestEmptyProgramReturnsVoid covers §8's empty-program scenario: a
// method whose entire body is RETURN.
func TestEmptyProgramReturnsVoid(t *testing.T) {
	m := &linkedclass.Method{Name: "main", Descriptor: "()V", MaxStack: 0, MaxLocals: 0, Code: []byte{byte(Return)}}
	in := New(registry.New(), nil)
	v, err := in.Run(m, emptyPool(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.Kind() != vmvalue.KindVoid {
		t.Fatalf("result = %v, want Void", v)
	}
}

// TestIntegerAddWrapsOnOverflow exercises the §8 "wrapping" scenario:
// ILOAD 0, ILOAD 1, IADD, IRETURN on math.MaxInt32 + 1 wraps to
// math.MinInt32, and holds for a spread of other operand pairs too
// (the wrap-around law).
func TestIntegerAddWrapsOnOverflow(t *testing.T) {
	code := []byte{byte(Iload0), byte(Iload1), byte(Iadd), byte(Ireturn)}
	m := &linkedclass.Method{Name: "add", Descriptor: "(II)I", MaxStack: 2, MaxLocals: 2, Code: code}

	cases := []struct{ a, b int32 }{
		{1, 1},
		{2147483647, 1}, // math.MaxInt32 + 1 wraps to math.MinInt32
		{-2147483648, -1},
		{0, 0},
		{100, -50},
	}
	for _, c := range cases {
		in := New(registry.New(), nil)
		v, err := in.Run(m, emptyPool(), []vmvalue.Value{vmvalue.Int(c.a), vmvalue.Int(c.b)})
		if err != nil {
			t.Fatalf("Run(%d,%d): %v", c.a, c.b, err)
		}
		if got, want := intVal(t, v), c.a+c.b; got != want {
			t.Fatalf("Run(%d,%d) = %d, want %d", c.a, c.b, got, want)
		}
	}
}

// TestIntDivisionByZeroIsFatal covers Open Question 2's resolution:
// IREM (and IDIV, which makes the same check) on a zero divisor is a fatal
// interpreter error, not a caught exception.
func TestIntDivisionByZeroIsFatal(t *testing.T) {
	code := []byte{byte(Iload0), byte(Iload1), byte(Irem), byte(Ireturn)}
	m := &linkedclass.Method{Name: "rem", Descriptor: "(II)I", MaxStack: 2, MaxLocals: 2, Code: code}
	in := New(registry.New(), nil)
	_, err := in.Run(m, emptyPool(), []vmvalue.Value{vmvalue.Int(5), vmvalue.Int(0)})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

// TestFloatDivisionIsReal pins Open Question 1's resolution: FDIV
// performs real division (a/b), not the reference implementation's
// multiplication bug.
func TestFloatDivisionIsReal(t *testing.T) {
	code := []byte{byte(Fload0), byte(Fload1), byte(Fdiv), byte(Freturn)}
	m := &linkedclass.Method{Name: "div", Descriptor: "(FF)F", MaxStack: 2, MaxLocals: 2, Code: code}
	in := New(registry.New(), nil)
	v, err := in.Run(m, emptyPool(), []vmvalue.Value{vmvalue.Float(9), vmvalue.Float(2)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := v.Float()
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if got != 4.5 {
		t.Fatalf("9/2 = %v, want 4.5", got)
	}
}

// TestBranchNotTakenAdvancesPastOffset and TestBranchTakenJumpsRelativeToOpcode cover
// the §4.6 branch-arithmetic rule directly against doBranch, exercising
// both outcomes of a conditional without risking an infinite loop in
// the test itself.
func TestBranchNotTakenAdvancesPastOffset(t *testing.T) {
	f := &frame.Frame{Method: &linkedclass.Method{Code: []byte{0, 0, 5, 0xFF}}}
	f.PC = 1 // as if the branch opcode at offset 0 was just fetched
	in := New(registry.New(), nil)
	if err := in.doBranch(f, func() (bool, error) { return false, nil }); err != nil {
		t.Fatalf("doBranch: %v", err)
	}
	if f.PC != 3 {
		t.Fatalf("PC = %d, want 3 (past the 2-byte offset)", f.PC)
	}
}

func TestBranchTakenJumpsRelativeToOpcode(t *testing.T) {
	// offset 5 encoded big-endian at code[1:3]; base = pc_of_opcode = 0.
	f := &frame.Frame{Method: &linkedclass.Method{Code: []byte{0, 0, 5, 0xFF, 0xFF}}}
	f.PC = 1
	in := New(registry.New(), nil)
	if err := in.doBranch(f, func() (bool, error) { return true, nil }); err != nil {
		t.Fatalf("doBranch: %v", err)
	}
	if f.PC != 5 {
		t.Fatalf("PC = %d, want 5 (base 0 + offset 5)", f.PC)
	}
}

// TestIfIcmpltBranchTaken and TestIfIcmpltBranchNotTaken run the full
// interpreter loop over a GOTO-free IF_ICMPLT program to cover §8's
// "branch taken/not-taken" scenario end to end.
func ifIcmpltProgram() []byte {
	// if (locals[0] < locals[1]) return 1; else return 0;
	// Layout: [ILOAD0, ILOAD1, IF_ICMPLT, offHi, offLo, ICONST0, IRETURN, ICONST1, IRETURN]
	// offset 5 is relative to the IF_ICMPLT opcode at index 2, landing on
	// ICONST1 at index 7 when taken.
	return []byte{
		byte(Iload0),   // 0
		byte(Iload1),   // 1
		byte(IfIcmplt), // 2
		0, 5,           // 3,4: offset 5 -> target 7
		byte(Iconst0), // 5
		byte(Ireturn), // 6
		byte(Iconst1), // 7
		byte(Ireturn), // 8
	}
}

func TestIfIcmpltBranchTaken(t *testing.T) {
	m := &linkedclass.Method{Name: "lt", Descriptor: "(II)I", MaxStack: 2, MaxLocals: 2, Code: ifIcmpltProgram()}
	in := New(registry.New(), nil)
	v, err := in.Run(m, emptyPool(), []vmvalue.Value{vmvalue.Int(1), vmvalue.Int(2)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := intVal(t, v); got != 1 {
		t.Fatalf("1<2 result = %d, want 1", got)
	}
}

func TestIfIcmpltBranchNotTaken(t *testing.T) {
	m := &linkedclass.Method{Name: "lt", Descriptor: "(II)I", MaxStack: 2, MaxLocals: 2, Code: ifIcmpltProgram()}
	in := New(registry.New(), nil)
	v, err := in.Run(m, emptyPool(), []vmvalue.Value{vmvalue.Int(5), vmvalue.Int(2)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := intVal(t, v); got != 0 {
		t.Fatalf("5<2 result = %d, want 0", got)
	}
}

// methodRefPool builds a constant pool exposing a single MethodRef at
// index 4, resolving to ownerInternal.key, for INVOKESTATIC tests.
func methodRefPool(ownerInternal, name, descriptor string) *constpool.Pool {
	return constpool.New([]classfile.RawConstant{
		nil,
		classfile.ConstUtf8{Value: ownerInternal},                    // 1
		classfile.ConstClass{NameIndex: 1},                           // 2
		classfile.ConstUtf8{Value: name},                             // 3
		classfile.ConstMethodRef{ClassIndex: 2, NameAndTypeIndex: 6}, // 4
		classfile.ConstUtf8{Value: descriptor},                       // 5
		classfile.ConstNameAndType{NameIndex: 3, DescriptorIndex: 5}, // 6
	})
}

// TestInvokestaticCallsIntoCalleeAndReturns covers §8's "static call"
// scenario: the callee's return value lands on the caller's operand
// stack, the caller returns it, and the frame stack is fully unwound.
func TestInvokestaticCallsIntoCalleeAndReturns(t *testing.T) {
	pool := methodRefPool("p/Callee", "answer", "()I")

	calleeCode := []byte{byte(Bipush), 42, byte(Ireturn)}
	callee := &linkedclass.Method{Name: "answer", Descriptor: "()I", MaxStack: 1, MaxLocals: 0, Code: calleeCode}
	calleeClass := &linkedclass.Class{
		ThisName: "p/Callee",
		Pool:     emptyPool(),
		Methods:  map[string]*linkedclass.Method{callee.Key(): callee},
	}

	reg := registry.New()
	reg.Put(calleeClass)

	// INVOKESTATIC idx=4, then IRETURN.
	callerCode := []byte{byte(Invokestatic), 0, 4, byte(Ireturn)}
	caller := &linkedclass.Method{Name: "caller", Descriptor: "()I", MaxStack: 1, MaxLocals: 0, Code: callerCode}

	in := New(reg, nil)
	v, err := in.Run(caller, pool, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := intVal(t, v); got != 42 {
		t.Fatalf("result = %d, want 42", got)
	}
	if len(in.frames) != 0 {
		t.Fatalf("frame stack not fully unwound: depth %d", len(in.frames))
	}
}

// TestNativeBridgeReceivesArgsInDescriptorOrder covers §8's "native
// bridge" scenario and the descriptor argument-count/order property:
// for (IIJ)V, the first two popped locals are the Int args in
// left-to-right order and the third is the Long.
func TestNativeBridgeReceivesArgsInDescriptorOrder(t *testing.T) {
	pool := methodRefPool("ru/khlevnov/PrintStream", "tally", "(IIJ)V")

	reg := registry.New()
	var seen []vmvalue.Value
	reg.RegisterNative("ru/khlevnov/PrintStream.tally:(IIJ)V", func(args []vmvalue.Value) vmvalue.Value {
		seen = args
		return vmvalue.Void()
	})
	nativeMethod := &linkedclass.Method{AccessFlags: linkedclass.AccNative, Name: "tally", Descriptor: "(IIJ)V"}
	nativeClass := &linkedclass.Class{
		ThisName: "ru/khlevnov/PrintStream",
		Pool:     emptyPool(),
		Methods:  map[string]*linkedclass.Method{nativeMethod.Key(): nativeMethod},
	}
	reg.Put(nativeClass)

	// Load Int(7), Int(8), Long(9) from locals, INVOKESTATIC idx=4, RETURN.
	code := []byte{
		byte(Iload0), // push Int 7
		byte(Iload1), // push Int 8
		byte(Lload2), // push Long 9
		byte(Invokestatic), 0, 4,
		byte(Return),
	}
	caller := &linkedclass.Method{Name: "caller", Descriptor: "()V", MaxStack: 3, MaxLocals: 4, Code: code}

	in := New(reg, nil)
	_, err := in.Run(caller, pool, []vmvalue.Value{vmvalue.Int(7), vmvalue.Int(8), vmvalue.Long(9)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("native saw %d args, want 3", len(seen))
	}
	if got, _ := seen[0].Int(); got != 7 {
		t.Fatalf("seen[0] = %d, want 7", got)
	}
	if got, _ := seen[1].Int(); got != 8 {
		t.Fatalf("seen[1] = %d, want 8", got)
	}
	if got, _ := seen[2].Long(); got != 9 {
		t.Fatalf("seen[2] = %d, want 9", got)
	}
}

func TestUnsupportedOpcodeFails(t *testing.T) {
	m := &linkedclass.Method{Name: "bad", Descriptor: "()V", MaxStack: 0, MaxLocals: 0, Code: []byte{0xFD}}
	in := New(registry.New(), nil)
	_, err := in.Run(m, emptyPool(), nil)
	if !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatalf("expected ErrUnsupportedOpcode, got %v", err)
	}
}
