package value

import (
	"testing"

	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/memory"
	"github.com/stretchr/testify/require"
)

func newCollector(t *testing.T) *gc.Collector {
	t.Helper()
	return gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
}

func TestValue_TypeOf(t *testing.T) {
	require.Equal(t, "undefined", Undef.TypeOf())
	require.Equal(t, "object", Nul.TypeOf())
	require.Equal(t, "boolean", True.TypeOf())
	require.Equal(t, "number", NewInt32(3).TypeOf())
	require.Equal(t, "number", NewNumber(3.5).TypeOf())
}

func TestValue_ToBool(t *testing.T) {
	require.False(t, Undef.ToBool())
	require.False(t, Nul.ToBool())
	require.False(t, NewInt32(0).ToBool())
	require.False(t, NewNumber(0).ToBool())
	require.True(t, NewInt32(1).ToBool())
	require.True(t, True.ToBool())
	require.False(t, False.ToBool())
}

func TestValue_StrictEquals_NumberKindsUnify(t *testing.T) {
	require.True(t, NewInt32(5).StrictEquals(NewNumber(5)))
	require.False(t, NewInt32(5).StrictEquals(NewNumber(6)))
}

func TestValue_StrictEquals_ObjectIdentity(t *testing.T) {
	c := newCollector(t)
	shape, err := RootShape(c, Nul)
	require.NoError(t, err)
	o1, err := NewJsObject(c, shape)
	require.NoError(t, err)
	o2, err := NewJsObject(c, shape)
	require.NoError(t, err)

	require.True(t, NewObject(o1).StrictEquals(NewObject(o1)))
	require.False(t, NewObject(o1).StrictEquals(NewObject(o2)))
}

func TestJsString_RoundTrip(t *testing.T) {
	c := newCollector(t)
	s, err := NewJsString(c, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", s.String())
	require.Equal(t, 5, s.Len())
	require.Equal(t, uint64(5), s.Size())
}

func TestJsSymbol_IdentityNotEquality(t *testing.T) {
	c := newCollector(t)
	a, err := NewJsSymbol(c, "tag")
	require.NoError(t, err)
	b, err := NewJsSymbol(c, "tag")
	require.NoError(t, err)

	require.False(t, NewSymbol(a).StrictEquals(NewSymbol(b)), "symbols with the same description are still distinct")
	require.True(t, NewSymbol(a).StrictEquals(NewSymbol(a)))
}

func TestJsBigInt_ParsesDecimalOnDemand(t *testing.T) {
	c := newCollector(t)
	b, err := NewJsBigInt(c, "123456789012345678901234567890")
	require.NoError(t, err)
	n, ok := b.Int()
	require.True(t, ok)
	require.Equal(t, "123456789012345678901234567890", n.String())
}

func TestJsBigInt_MalformedDecimalFailsToParse(t *testing.T) {
	c := newCollector(t)
	b, err := NewJsBigInt(c, "not-a-number")
	require.NoError(t, err)
	_, ok := b.Int()
	require.False(t, ok)
}

func TestShape_TransitionsAreCached(t *testing.T) {
	c := newCollector(t)
	root, err := RootShape(c, Nul)
	require.NoError(t, err)

	s1, err := root.Transition(c, StringKey("x"))
	require.NoError(t, err)
	s2, err := root.Transition(c, StringKey("x"))
	require.NoError(t, err)

	require.Same(t, s1, s2, "the same sequence of additions must land on the same shape")
}

func TestShape_DifferentKeysProduceDifferentShapes(t *testing.T) {
	c := newCollector(t)
	root, err := RootShape(c, Nul)
	require.NoError(t, err)

	sx, err := root.Transition(c, StringKey("x"))
	require.NoError(t, err)
	sy, err := root.Transition(c, StringKey("y"))
	require.NoError(t, err)

	require.NotSame(t, sx, sy)
}

func TestJsObject_DefineAndGetOwnProperty(t *testing.T) {
	c := newCollector(t)
	shape, err := RootShape(c, Nul)
	require.NoError(t, err)
	o, err := NewJsObject(c, shape)
	require.NoError(t, err)

	require.NoError(t, o.DefineOwnProperty(c, StringKey("x"), NewDataProperty(NewInt32(42), MethodAttrs())))

	desc, ok := o.GetOwnProperty(StringKey("x"))
	require.True(t, ok)
	require.Equal(t, int32(42), int32(desc.Value().ToNumber()))
}

func TestJsObject_TwoObjectsSameShapeIffSameKeysAndProto(t *testing.T) {
	c := newCollector(t)
	root, err := RootShape(c, Nul)
	require.NoError(t, err)
	o1, err := NewJsObject(c, root)
	require.NoError(t, err)
	o2, err := NewJsObject(c, root)
	require.NoError(t, err)

	require.NoError(t, o1.DefineOwnProperty(c, StringKey("a"), NewDataProperty(Undef, MethodAttrs())))
	require.NoError(t, o2.DefineOwnProperty(c, StringKey("a"), NewDataProperty(Undef, MethodAttrs())))

	require.Same(t, o1.Shape(), o2.Shape())
}

func TestJsObject_ArrayIndexAgreesWithPropertyView(t *testing.T) {
	c := newCollector(t)
	shape, err := RootShape(c, Nul)
	require.NoError(t, err)
	o, err := NewJsObject(c, shape)
	require.NoError(t, err)
	o.MarkArray()

	require.NoError(t, o.DefineOwnProperty(c, IndexKey(0), NewDataProperty(NewInt32(7), ArrayElementAttrs())))

	desc, ok := o.GetOwnProperty(IndexKey(0))
	require.True(t, ok)
	require.Equal(t, ArrayElementAttrs(), desc.Attrs())
	require.True(t, desc.Value().StrictEquals(NewInt32(7)))
}

func TestJsObject_GetWalksPrototypeChain(t *testing.T) {
	c := newCollector(t)
	rootShape, err := RootShape(c, Nul)
	require.NoError(t, err)
	proto, err := NewJsObject(c, rootShape)
	require.NoError(t, err)
	require.NoError(t, proto.DefineOwnProperty(c, StringKey("inherited"), NewDataProperty(NewInt32(99), MethodAttrs())))

	childShape, err := RootShape(c, NewObject(proto))
	require.NoError(t, err)
	child, err := NewJsObject(c, childShape)
	require.NoError(t, err)

	v, err := child.Get(StringKey("inherited"), NewObject(child), func(*Closure, Value, []Value) (Value, error) {
		return Undef, nil
	})
	require.NoError(t, err)
	require.True(t, v.StrictEquals(NewInt32(99)))
}

func TestClosure_UpvalueSharedAcrossCaptures(t *testing.T) {
	c := newCollector(t)
	cell, err := NewCell(c, NewInt32(1))
	require.NoError(t, err)

	cl1, err := NewClosure(c, nil, 0, "f1", []*Cell{cell})
	require.NoError(t, err)
	cl2, err := NewClosure(c, nil, 0, "f2", []*Cell{cell})
	require.NoError(t, err)

	cl1.Upvalue(0).Set(NewInt32(2))
	require.True(t, cl2.Upvalue(0).Get().StrictEquals(NewInt32(2)))
}

func TestArrayBuffer_DetachClearsBytes(t *testing.T) {
	c := newCollector(t)
	ab, err := NewArrayBuffer(c, 16)
	require.NoError(t, err)
	require.False(t, ab.Detached())

	ab.Detach()
	require.True(t, ab.Detached())
	require.Equal(t, 0, ab.Len())
}

func TestArrayBuffer_TransferDetachesSourceAndMovesBytes(t *testing.T) {
	c := newCollector(t)
	ab, err := NewArrayBuffer(c, 8)
	require.NoError(t, err)
	ab.Bytes()[0] = 0xFF

	moved, err := Transfer(c, ab)
	require.NoError(t, err)

	require.True(t, ab.Detached())
	require.False(t, moved.Detached())
	require.Equal(t, byte(0xFF), moved.Bytes()[0])
}

func TestJsObject_TraceVisitsShapeDescriptorsElementsAndSlots(t *testing.T) {
	c := newCollector(t)
	shape, err := RootShape(c, Nul)
	require.NoError(t, err)
	held, err := NewJsObject(c, shape)
	require.NoError(t, err)
	o, err := NewJsObject(c, shape)
	require.NoError(t, err)
	require.NoError(t, o.DefineOwnProperty(c, StringKey("ref"), NewDataProperty(NewObject(held), MethodAttrs())))

	var visited []gc.Traceable
	o.Trace(func(t gc.Traceable) { visited = append(visited, t) })

	require.Contains(t, visited, gc.Traceable(o.Shape()))
	require.Contains(t, visited, gc.Traceable(held))
}
