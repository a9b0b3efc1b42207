package otter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otterjs/otter/api"
	"github.com/otterjs/otter/internal/value"
)

func TestHostModuleBuilder_InstantiateInstallsGlobalObject(t *testing.T) {
	e, err := NewEngine(NewEngineConfig())
	require.NoError(t, err)

	err = e.NewHostModuleBuilder("math").
		NewFunctionBuilder().
		WithFunc(func(this api.Value, args []api.Value) (api.Value, error) {
			return api.Number(args[0].ToNumber() + args[1].ToNumber()), nil
		}).
		Export("add").
		NewFunctionBuilder().
		WithFunc(func(this api.Value, args []api.Value) (api.Value, error) {
			return api.Number(args[0].ToNumber() * args[1].ToNumber()), nil
		}).
		Export("mul").
		Instantiate()
	require.NoError(t, err)

	global, ok := e.Global().AsObject()
	require.True(t, ok)

	mathDesc, ok := global.GetOwnProperty(value.StringKey("math"))
	require.True(t, ok)
	mathObj, ok := mathDesc.Value().AsObject()
	require.True(t, ok)

	addDesc, ok := mathObj.GetOwnProperty(value.StringKey("add"))
	require.True(t, ok)
	addFn, ok := addDesc.Value().AsFunction()
	require.True(t, ok)

	result, err := e.interp.Call(addFn, value.Undef, []value.Value{value.NewNumber(2), value.NewNumber(3)}, false)
	require.NoError(t, err)
	require.Equal(t, float64(5), result.ToNumber())

	mulDesc, ok := mathObj.GetOwnProperty(value.StringKey("mul"))
	require.True(t, ok)
	mulFn, ok := mulDesc.Value().AsFunction()
	require.True(t, ok)

	result, err = e.interp.Call(mulFn, value.Undef, []value.Value{value.NewNumber(4), value.NewNumber(5)}, false)
	require.NoError(t, err)
	require.Equal(t, float64(20), result.ToNumber())
}

func TestHostModuleBuilder_LastWithFuncWins(t *testing.T) {
	e, err := NewEngine(NewEngineConfig())
	require.NoError(t, err)

	err = e.NewHostModuleBuilder("overwrite").
		NewFunctionBuilder().
		WithFunc(func(this api.Value, args []api.Value) (api.Value, error) { return api.Number(1), nil }).
		WithFunc(func(this api.Value, args []api.Value) (api.Value, error) { return api.Number(2), nil }).
		Export("value").
		Instantiate()
	require.NoError(t, err)

	global, ok := e.Global().AsObject()
	require.True(t, ok)
	modDesc, ok := global.GetOwnProperty(value.StringKey("overwrite"))
	require.True(t, ok)
	mod, ok := modDesc.Value().AsObject()
	require.True(t, ok)
	fnDesc, ok := mod.GetOwnProperty(value.StringKey("value"))
	require.True(t, ok)
	fn, ok := fnDesc.Value().AsFunction()
	require.True(t, ok)

	result, err := e.interp.Call(fn, value.Undef, nil, false)
	require.NoError(t, err)
	require.Equal(t, float64(2), result.ToNumber())
}
