package intrinsics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otterjs/otter/internal/engine/interpreter"
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/memory"
	"github.com/otterjs/otter/internal/value"
)

// newTestRealm bootstraps a fresh interpreter and realm the same way
// otter.NewEngine does, minus the host-embedding layer around it — the
// same "build just enough scaffold to exercise the package directly"
// shortcut internal/engine/interpreter's own tests take with
// newTestInterpreter.
func newTestRealm(t *testing.T) (*interpreter.Interpreter, *Realm) {
	t.Helper()
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	mem := memory.NewUnbounded()
	shape, err := value.RootShape(c, value.Nul)
	require.NoError(t, err)
	global, err := value.NewJsObject(c, shape)
	require.NoError(t, err)
	interp, err := interpreter.NewInterpreter(c, mem, global, interpreter.DefaultMaxCallDepth)
	require.NoError(t, err)
	r, err := New(interp)
	require.NoError(t, err)
	return interp, r
}

// globalProp resolves a property installed directly on the global
// object (a namespace like Math/JSON, or a constructor like Array).
func globalProp(t *testing.T, interp *interpreter.Interpreter, name string) value.Value {
	t.Helper()
	desc, ok := interp.Global().GetOwnProperty(value.StringKey(name))
	require.True(t, ok, "global %q not installed", name)
	return desc.Value()
}

// protoMethod resolves a method installed directly on a prototype
// object and returns it ready to invoke via interp.Call.
func protoMethod(t *testing.T, proto *value.JsObject, name string) *value.Closure {
	t.Helper()
	desc, ok := proto.GetOwnProperty(value.StringKey(name))
	require.True(t, ok, "method %q not found", name)
	fn, ok := desc.Value().AsFunction()
	require.True(t, ok, "%q is not callable", name)
	return fn
}

func TestMathMinMaxFollowIEEE754NotGoStdlib(t *testing.T) {
	interp, _ := newTestRealm(t)
	m, ok := globalProp(t, interp, "Math").AsObject()
	require.True(t, ok)

	min := protoMethod(t, m, "min")
	max := protoMethod(t, m, "max")

	result, err := interp.Call(min, value.Undef, []value.Value{value.NewNumber(1), value.NewNumber(math.NaN())}, false)
	require.NoError(t, err)
	require.True(t, math.IsNaN(result.ToNumber()))

	result, err = interp.Call(min, value.Undef, []value.Value{value.NewNumber(0), value.NewNumber(math.Copysign(0, -1))}, false)
	require.NoError(t, err)
	require.True(t, math.Signbit(result.ToNumber()), "min(0, -0) must be -0")

	result, err = interp.Call(max, value.Undef, []value.Value{value.NewNumber(0), value.NewNumber(math.Copysign(0, -1))}, false)
	require.NoError(t, err)
	require.False(t, math.Signbit(result.ToNumber()), "max(0, -0) must be 0")
}

func TestObjectKeysReflectsInsertionOrder(t *testing.T) {
	interp, r := newTestRealm(t)
	obj, err := r.newObject(r.ObjectProto)
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(r.c, value.StringKey("b"), value.NewDataProperty(value.NewNumber(2), value.Attrs{Writable: true, Enumerable: true, Configurable: true})))
	require.NoError(t, obj.DefineOwnProperty(r.c, value.StringKey("a"), value.NewDataProperty(value.NewNumber(1), value.Attrs{Writable: true, Enumerable: true, Configurable: true})))

	ctorVal := globalProp(t, interp, "Object")
	ctor, ok := ctorVal.AsFunction()
	require.True(t, ok)
	keysFn := protoMethod(t, ctor.Props(), "keys")

	result, err := interp.Call(keysFn, value.Undef, []value.Value{value.NewObject(obj)}, false)
	require.NoError(t, err)
	arr, ok := result.AsObject()
	require.True(t, ok)
	elems := arr.Elements()
	require.Len(t, elems, 2)
	k0, _ := elems[0].AsString()
	k1, _ := elems[1].AsString()
	require.Equal(t, "b", k0.String())
	require.Equal(t, "a", k1.String())
}

func TestArrayPushMapJoinRoundTrip(t *testing.T) {
	interp, _ := newTestRealm(t)
	ctorVal := globalProp(t, interp, "Array")
	ctor, ok := ctorVal.AsFunction()
	require.True(t, ok)

	arrVal, err := interp.Construct(ctor, nil)
	require.NoError(t, err)
	arr, ok := arrVal.AsObject()
	require.True(t, ok)
	require.True(t, arr.IsArray())

	push := protoMethod(t, mustObject(t, arr.Proto()), "push")
	_, err = interp.Call(push, arrVal, []value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(3)}, false)
	require.NoError(t, err)
	require.Equal(t, 3, len(arr.Elements()))

	mapFn := protoMethod(t, mustObject(t, arr.Proto()), "map")
	double, err := value.NewNativeClosure(interp.Collector(), "double", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(args[0].ToNumber() * 2), nil
	})
	require.NoError(t, err)
	mapped, err := interp.Call(mapFn, arrVal, []value.Value{value.NewFunction(double)}, false)
	require.NoError(t, err)
	mappedObj, ok := mapped.AsObject()
	require.True(t, ok)
	require.Equal(t, []float64{2, 4, 6}, toFloats(mappedObj.Elements()))

	join := protoMethod(t, mustObject(t, arr.Proto()), "join")
	joined, err := interp.Call(join, mapped, []value.Value{jsString(t, interp, ",")}, false)
	require.NoError(t, err)
	s, ok := joined.AsString()
	require.True(t, ok)
	require.Equal(t, "2,4,6", s.String())
}

func mustObject(t *testing.T, v value.Value) *value.JsObject {
	t.Helper()
	o, ok := v.AsObject()
	require.True(t, ok)
	return o
}

func toFloats(vs []value.Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.ToNumber()
	}
	return out
}

func jsString(t *testing.T, interp *interpreter.Interpreter, s string) value.Value {
	t.Helper()
	js, err := value.NewJsString(interp.Collector(), s)
	require.NoError(t, err)
	return value.NewString(js)
}

func TestStringMethodsOperateOnThisDirectly(t *testing.T) {
	interp, r := newTestRealm(t)
	upper := protoMethod(t, r.StringProto, "toUpperCase")
	result, err := interp.Call(upper, jsString(t, interp, "hello"), nil, false)
	require.NoError(t, err)
	s, ok := result.AsString()
	require.True(t, ok)
	require.Equal(t, "HELLO", s.String())

	slice := protoMethod(t, r.StringProto, "slice")
	result, err = interp.Call(slice, jsString(t, interp, "hello world"), []value.Value{value.NewNumber(6)}, false)
	require.NoError(t, err)
	s, ok = result.AsString()
	require.True(t, ok)
	require.Equal(t, "world", s.String())
}

func TestJSONStringifyParseRoundTrip(t *testing.T) {
	interp, r := newTestRealm(t)
	obj, err := r.newObject(r.ObjectProto)
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(r.c, value.StringKey("name"), value.NewDataProperty(r.string("otter"), value.Attrs{Writable: true, Enumerable: true, Configurable: true})))
	require.NoError(t, obj.DefineOwnProperty(r.c, value.StringKey("count"), value.NewDataProperty(value.NewNumber(3), value.Attrs{Writable: true, Enumerable: true, Configurable: true})))

	jsonObj, ok := globalProp(t, interp, "JSON").AsObject()
	require.True(t, ok)
	stringify := protoMethod(t, jsonObj, "stringify")
	parse := protoMethod(t, jsonObj, "parse")

	text, err := interp.Call(stringify, value.Undef, []value.Value{value.NewObject(obj)}, false)
	require.NoError(t, err)
	textStr, ok := text.AsString()
	require.True(t, ok)

	parsed, err := interp.Call(parse, value.Undef, []value.Value{value.NewString(textStr)}, false)
	require.NoError(t, err)
	parsedObj, ok := parsed.AsObject()
	require.True(t, ok)
	desc, ok := parsedObj.GetOwnProperty(value.StringKey("name"))
	require.True(t, ok)
	nameStr, ok := desc.Value().AsString()
	require.True(t, ok)
	require.Equal(t, "otter", nameStr.String())
}

func TestErrorSubclassChainsToErrorPrototype(t *testing.T) {
	interp, _ := newTestRealm(t)
	typeErrorCtor, ok := globalProp(t, interp, "TypeError").AsFunction()
	require.True(t, ok)

	errVal, err := interp.Construct(typeErrorCtor, []value.Value{jsString(t, interp, "bad value")})
	require.NoError(t, err)
	errObj, ok := errVal.AsObject()
	require.True(t, ok)

	nameDesc, ok := mustObject(t, errObj.Proto()).GetOwnProperty(value.StringKey("name"))
	require.True(t, ok)
	nameStr, ok := nameDesc.Value().AsString()
	require.True(t, ok)
	require.Equal(t, "TypeError", nameStr.String())
}

func TestMapGetSetHasDelete(t *testing.T) {
	interp, _ := newTestRealm(t)
	mapCtor, ok := globalProp(t, interp, "Map").AsFunction()
	require.True(t, ok)

	mVal, err := interp.Construct(mapCtor, nil)
	require.NoError(t, err)
	mObj, ok := mVal.AsObject()
	require.True(t, ok)
	proto := mustObject(t, mObj.Proto())

	set := protoMethod(t, proto, "set")
	get := protoMethod(t, proto, "get")
	has := protoMethod(t, proto, "has")
	del := protoMethod(t, proto, "delete")

	key := jsString(t, interp, "k")
	_, err = interp.Call(set, mVal, []value.Value{key, value.NewNumber(42)}, false)
	require.NoError(t, err)

	hasResult, err := interp.Call(has, mVal, []value.Value{key}, false)
	require.NoError(t, err)
	require.True(t, hasResult.ToBool())

	getResult, err := interp.Call(get, mVal, []value.Value{key}, false)
	require.NoError(t, err)
	require.Equal(t, float64(42), getResult.ToNumber())

	_, err = interp.Call(del, mVal, []value.Value{key}, false)
	require.NoError(t, err)

	hasResult, err = interp.Call(has, mVal, []value.Value{key}, false)
	require.NoError(t, err)
	require.False(t, hasResult.ToBool())
}
