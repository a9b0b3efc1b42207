package otter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otterjs/otter/api"
	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/module"
	"github.com/otterjs/otter/internal/value"
)

// constCompiler is a fake module.Compiler that ignores source text
// entirely and always returns a one-function module whose entry point
// loads and returns a fixed int32 constant — enough surface to exercise
// Engine.Eval/EvalModule without a real parser, the same "source text
// is irrelevant, only the resulting bytecode matters" shortcut the
// interpreter package's own tests take.
type constCompiler struct {
	value int32
}

func (c constCompiler) Compile(source, sourceURL string) (*bytecode.Module, error) {
	fb := bytecode.NewFunctionBuilder("main")
	fb.Emit(bytecode.Instruction{Op: bytecode.OpLoadInt32, Dst: 0, Imm32: c.value})
	fb.Emit(bytecode.Instruction{Op: bytecode.OpReturn, A: 0})

	mb := bytecode.NewModuleBuilder(sourceURL)
	idx := mb.AddFunction(fb.Build())
	mb.WithEntryPoint(idx)
	mod := mb.Build()
	return &mod, nil
}

func TestEngine_EvalReturnsCompiledConstant(t *testing.T) {
	e, err := NewEngine(NewEngineConfig().WithCompiler(constCompiler{value: 42}))
	require.NoError(t, err)

	result, err := e.Eval("ignored", "test://inline")
	require.NoError(t, err)
	require.Equal(t, float64(42), result.ToNumber())
}

func TestEngine_EvalWithoutCompilerFails(t *testing.T) {
	e, err := NewEngine(NewEngineConfig())
	require.NoError(t, err)

	_, err = e.Eval("1", "test://no-compiler")
	require.Error(t, err)
	var compileErr *api.CompileError
	require.ErrorAs(t, err, &compileErr)
}

func TestEngine_EvalModuleRunsEntry(t *testing.T) {
	loader := module.MapLoader{
		"test://entry.js": {URL: "test://entry.js", Text: "ignored", MediaType: module.MediaJavaScript},
	}
	e, err := NewEngine(NewEngineConfig().
		WithCompiler(constCompiler{value: 7}).
		WithModuleLoader(loader).
		WithModuleResolver(module.NewDefaultResolver(nil, nil)))
	require.NoError(t, err)

	result, err := e.EvalModule(context.Background(), "test://entry.js")
	require.NoError(t, err)
	require.Equal(t, float64(7), result.ToNumber())
}

func TestEngine_RegisterNativeInstallsGlobalFunction(t *testing.T) {
	e, err := NewEngine(NewEngineConfig())
	require.NoError(t, err)

	err = e.RegisterNative("double", func(this api.Value, args []api.Value) (api.Value, error) {
		return api.Number(args[0].ToNumber() * 2), nil
	})
	require.NoError(t, err)

	global, ok := e.Global().AsObject()
	require.True(t, ok)
	desc, ok := global.GetOwnProperty(value.StringKey("double"))
	require.True(t, ok)
	fn, ok := desc.Value().AsFunction()
	require.True(t, ok)

	result, err := e.interp.Call(fn, value.Undef, []value.Value{value.NewNumber(21)}, false)
	require.NoError(t, err)
	require.Equal(t, float64(42), result.ToNumber())
}

func TestEngine_CollectGarbageReturnsStats(t *testing.T) {
	e, err := NewEngine(NewEngineConfig())
	require.NoError(t, err)

	// An idle, freshly-built engine has nothing to sweep, but the call
	// itself must complete without error and report a numeric result.
	reclaimed := e.CollectGarbage()
	require.GreaterOrEqual(t, reclaimed, uint64(0))
}

func TestEngine_InterruptFlagSharesState(t *testing.T) {
	e, err := NewEngine(NewEngineConfig().WithCompiler(constCompiler{value: 1}))
	require.NoError(t, err)

	flag := e.InterruptFlag()
	require.False(t, flag.Load())
	flag.Store(true)

	_, err = e.Eval("ignored", "test://interrupted")
	require.Error(t, err)
}
