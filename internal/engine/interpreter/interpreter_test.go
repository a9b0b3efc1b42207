package interpreter

import (
	"testing"

	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/memory"
	"github.com/otterjs/otter/internal/ottererr"
	"github.com/otterjs/otter/internal/value"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	mem := memory.NewUnbounded()
	shape, err := value.RootShape(c, value.Nul)
	require.NoError(t, err)
	global, err := value.NewJsObject(c, shape)
	require.NoError(t, err)
	interp, err := NewInterpreter(c, mem, global, DefaultMaxCallDepth)
	require.NoError(t, err)
	return interp
}

// singleFunctionClosure wraps fn as the sole function of a fresh module
// and returns a callable closure, the minimal scaffold most dispatch-loop
// tests below build their bytecode against.
func singleFunctionClosure(t *testing.T, interp *Interpreter, mb *bytecode.ModuleBuilder, fn bytecode.Function) *value.Closure {
	t.Helper()
	idx := mb.AddFunction(fn)
	mb.WithEntryPoint(idx)
	mod := mb.Build()
	cl, err := value.NewClosure(interp.collector, &mod, idx, fn.Name, nil)
	require.NoError(t, err)
	return cl
}

func TestInterpreter_ReturnsLoadedConstant(t *testing.T) {
	interp := newTestInterpreter(t)
	fb := bytecode.NewFunctionBuilder("main")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 42})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 0})
	cl := singleFunctionClosure(t, interp, bytecode.NewModuleBuilder("test://load-const"), fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(42), result.ToNumber())
}

func TestInterpreter_Arithmetic(t *testing.T) {
	interp := newTestInterpreter(t)
	fb := bytecode.NewFunctionBuilder("add")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 3})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 4})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpAdd, Dst: 2, A: 0, B: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 2})
	cl := singleFunctionClosure(t, interp, bytecode.NewModuleBuilder("test://add"), fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(7), result.ToNumber())
}

func TestInterpreter_StringConcatenation(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://strings")
	helloIdx := mb.Constants().AddString("hello ")
	worldIdx := mb.Constants().AddString("world")

	fb := bytecode.NewFunctionBuilder("greet")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Dst: 0, ConstIdx: helloIdx})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Dst: 1, ConstIdx: worldIdx})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpAdd, Dst: 2, A: 0, B: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 2})
	cl := singleFunctionClosure(t, interp, mb, fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	s, ok := result.AsString()
	require.True(t, ok)
	require.Equal(t, "hello world", s.String())
}

func TestInterpreter_JumpIfFalseSkipsBranch(t *testing.T) {
	interp := newTestInterpreter(t)
	fb := bytecode.NewFunctionBuilder("branch")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadFalse, Dst: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, A: 0, Offset: 2})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 2})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	cl := singleFunctionClosure(t, interp, bytecode.NewModuleBuilder("test://branch"), fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(2), result.ToNumber())
}

func TestInterpreter_ThrowCaughtByPushTry(t *testing.T) {
	interp := newTestInterpreter(t)
	fb := bytecode.NewFunctionBuilder("tryCatch")
	// PushTry's Offset is added to its own instruction index (0) to reach
	// the catch block at index 3.
	fb.Emit(bytecode.Instruction{Op: bytecode.OpPushTry, Offset: 3})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 99})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpThrow, A: 0})
	// catch target:
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 7})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	cl := singleFunctionClosure(t, interp, bytecode.NewModuleBuilder("test://trycatch"), fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(7), result.ToNumber())
}

func TestInterpreter_UncaughtThrowPropagatesToCaller(t *testing.T) {
	interp := newTestInterpreter(t)
	fb := bytecode.NewFunctionBuilder("boom")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpThrow, A: 0})
	cl := singleFunctionClosure(t, interp, bytecode.NewModuleBuilder("test://uncaught"), fb.Build())

	_, err := interp.Call(cl, value.Undef, nil, false)
	require.Error(t, err)
}

func TestInterpreter_CallAnotherClosure(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://call")

	callee := bytecode.NewFunctionBuilder("callee")
	callee.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 10})
	callee.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 0})
	calleeIdx := mb.AddFunction(callee.Build())

	caller := bytecode.NewFunctionBuilder("caller")
	caller.Emit(bytecode.Instruction{Op: bytecode.OpMakeClosure, Dst: 0, Imm32: int32(calleeIdx)})
	caller.Emit(bytecode.Instruction{Op: bytecode.OpCall, Dst: 1, A: 0, B: 0, Imm32: 0})
	caller.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	callerFn := caller.Build()
	callerIdx := mb.AddFunction(callerFn)
	mb.WithEntryPoint(callerIdx)
	mod := mb.Build()

	cl, err := value.NewClosure(interp.collector, &mod, callerIdx, callerFn.Name, nil)
	require.NoError(t, err)

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(10), result.ToNumber())
}

func TestInterpreter_CallPassesArguments(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://call-args")

	callee := bytecode.NewFunctionBuilder("double")
	callee.Emit(bytecode.Instruction{Op: bytecode.OpAdd, Dst: 1, A: 0, B: 0})
	callee.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	calleeIdx := mb.AddFunction(callee.Build())

	caller := bytecode.NewFunctionBuilder("caller")
	caller.Emit(bytecode.Instruction{Op: bytecode.OpMakeClosure, Dst: 0, Imm32: int32(calleeIdx)})
	caller.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 21})
	caller.Emit(bytecode.Instruction{Op: bytecode.OpCall, Dst: 2, A: 0, B: 1, Imm32: 1})
	caller.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 2})
	callerFn := caller.Build()
	callerIdx := mb.AddFunction(callerFn)
	mb.WithEntryPoint(callerIdx)
	mod := mb.Build()

	cl, err := value.NewClosure(interp.collector, &mod, callerIdx, callerFn.Name, nil)
	require.NoError(t, err)

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(42), result.ToNumber())
}

func TestInterpreter_ObjectPropertyRoundTrip(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://props")
	nameIdx := mb.Constants().AddString("x")

	fb := bytecode.NewFunctionBuilder("props")
	fb.WithFeedbackVectorSize(1)
	fb.Emit(bytecode.Instruction{Op: bytecode.OpNewObject, Dst: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 1, Imm32: 5})
	// SetPropConst reuses Dst as the value source register, since Set
	// instructions don't produce a destination of their own.
	fb.Emit(bytecode.Instruction{Op: bytecode.OpSetPropConst, Dst: 1, A: 0, ConstIdx: nameIdx})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpGetPropConst, Dst: 2, A: 0, ConstIdx: nameIdx, FeedbackIndex: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 2})
	cl := singleFunctionClosure(t, interp, mb, fb.Build())

	result, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(5), result.ToNumber())
}

func TestInterpreter_ReadingPropertyOffNullThrowsTypeError(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://null-prop")
	nameIdx := mb.Constants().AddString("x")

	fb := bytecode.NewFunctionBuilder("readNull")
	fb.WithFeedbackVectorSize(1)
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadNull, Dst: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpGetPropConst, Dst: 1, A: 0, ConstIdx: nameIdx, FeedbackIndex: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	cl := singleFunctionClosure(t, interp, mb, fb.Build())

	_, err := interp.Call(cl, value.Undef, nil, false)
	require.Error(t, err)
}

func TestInterpreter_StackOverflowOnDeepRecursion(t *testing.T) {
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	mem := memory.NewUnbounded()
	shape, err := value.RootShape(c, value.Nul)
	require.NoError(t, err)
	global, err := value.NewJsObject(c, shape)
	require.NoError(t, err)
	interp, err := NewInterpreter(c, mem, global, 4)
	require.NoError(t, err)

	mb := bytecode.NewModuleBuilder("test://recurse")
	fb := bytecode.NewFunctionBuilder("recurse")
	selfIdx := uint32(0)
	fb.Emit(bytecode.Instruction{Op: bytecode.OpMakeClosure, Dst: 0, Imm32: int32(selfIdx)})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpCall, Dst: 1, A: 0, B: 0, Imm32: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 1})
	fn := fb.Build()
	idx := mb.AddFunction(fn)
	require.Equal(t, selfIdx, idx)
	mb.WithEntryPoint(idx)
	mod := mb.Build()
	cl, err := value.NewClosure(c, &mod, idx, fn.Name, nil)
	require.NoError(t, err)

	_, err = interp.Call(cl, value.Undef, nil, false)
	require.Error(t, err)
	require.IsType(t, &ottererr.StackOverflow{}, err)
}

func TestInterpreter_GeneratorYieldsAndResumes(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://generator")

	fb := bytecode.NewFunctionBuilder("gen")
	fb.WithIsGenerator(true)
	// yield 1
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpYieldValue, Dst: 1, A: 0})
	// yield (resumed value + 1), then return it again
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 2, Imm32: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpAdd, Dst: 3, A: 1, B: 2})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpGeneratorReturn, A: 3})
	cl := singleFunctionClosure(t, interp, mb, fb.Build())

	genVal, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	genObj, ok := genVal.AsObject()
	require.True(t, ok)
	gen, ok := AsGenerator(genObj)
	require.True(t, ok)
	require.Equal(t, SuspendedStart, gen.State())

	res1, err := interp.resumeGenerator(nil, gen, resumeNext, value.Undef)
	require.NoError(t, err)
	require.False(t, res1.Done)
	require.Equal(t, float64(1), res1.Value.ToNumber())
	require.Equal(t, SuspendedYield, gen.State())

	res2, err := interp.resumeGenerator(nil, gen, resumeNext, value.NewInt32(41))
	require.NoError(t, err)
	require.True(t, res2.Done)
	require.Equal(t, float64(42), res2.Value.ToNumber())
	require.Equal(t, Completed, gen.State())
}

func TestInterpreter_GeneratorThrowIntoSuspendedFrameIsCaught(t *testing.T) {
	interp := newTestInterpreter(t)
	mb := bytecode.NewModuleBuilder("test://generator-throw")

	fb := bytecode.NewFunctionBuilder("gen")
	fb.WithIsGenerator(true)
	// try { yield 1 } catch { return 9 }
	fb.Emit(bytecode.Instruction{Op: bytecode.OpPushTry, Offset: 6})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: 1})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpYieldValue, Dst: 1, A: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpPopTry})
	// unreachable success path
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 2, Imm32: 0})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpGeneratorReturn, A: 2})
	// catch target: PushTry is at index 0, Offset 6 lands here (index 6).
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 3, Imm32: 9})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpGeneratorReturn, A: 3})
	cl := singleFunctionClosure(t, interp, mb, fb.Build())

	genVal, err := interp.Call(cl, value.Undef, nil, false)
	require.NoError(t, err)
	genObj, _ := genVal.AsObject()
	gen, _ := AsGenerator(genObj)

	res1, err := interp.resumeGenerator(nil, gen, resumeNext, value.Undef)
	require.NoError(t, err)
	require.False(t, res1.Done)
	require.Equal(t, SuspendedYield, gen.State())

	res2, err := interp.resumeGenerator(nil, gen, resumeThrow, value.NewInt32(123))
	require.NoError(t, err)
	require.True(t, res2.Done)
	require.Equal(t, float64(9), res2.Value.ToNumber())
	require.Equal(t, Completed, gen.State())
}
