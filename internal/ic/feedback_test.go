package ic

import (
	"testing"

	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/memory"
	"github.com/otterjs/otter/internal/value"
	"github.com/stretchr/testify/require"
)

func newShape(t *testing.T, c *gc.Collector) *value.Shape {
	t.Helper()
	s, err := value.RootShape(c, value.Nul)
	require.NoError(t, err)
	return s
}

func TestFeedbackVector_UninitializedMissesOnFirstLookup(t *testing.T) {
	fv := NewFeedbackVector(1)
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	shape := newShape(t, c)

	_, ok := fv.LookupProperty(0, shape)
	require.False(t, ok)
	require.Equal(t, Uninitialized, fv.State(0))
}

func TestFeedbackVector_BecomesMonomorphicAfterFirstHit(t *testing.T) {
	fv := NewFeedbackVector(1)
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	shape := newShape(t, c)

	fv.RecordHit(0, shape, 3)

	require.Equal(t, Monomorphic, fv.State(0))
	off, ok := fv.LookupProperty(0, shape)
	require.True(t, ok)
	require.Equal(t, 3, off)
}

func TestFeedbackVector_SecondShapePromotesToPolymorphic(t *testing.T) {
	fv := NewFeedbackVector(1)
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	s1 := newShape(t, c)
	s2 := newShape(t, c)

	fv.RecordHit(0, s1, 1)
	fv.RecordHit(0, s2, 2)

	require.Equal(t, Polymorphic, fv.State(0))
	off1, ok1 := fv.LookupProperty(0, s1)
	require.True(t, ok1)
	require.Equal(t, 1, off1)
	off2, ok2 := fv.LookupProperty(0, s2)
	require.True(t, ok2)
	require.Equal(t, 2, off2)
}

func TestFeedbackVector_BeyondLimitDegradesToMegamorphic(t *testing.T) {
	fv := NewFeedbackVector(1)
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())

	for i := 0; i < polymorphicLimit+1; i++ {
		shape := newShape(t, c)
		fv.RecordHit(0, shape, i)
	}

	require.Equal(t, Megamorphic, fv.State(0))
	_, ok := fv.LookupProperty(0, newShape(t, c))
	require.False(t, ok, "megamorphic slots never hit the cache")
}

func TestFeedbackVector_BinaryOperandsStableKindStaysMonomorphic(t *testing.T) {
	fv := NewFeedbackVector(1)
	fv.RecordBinaryOperands(0, KindInt32, KindInt32)
	fv.RecordBinaryOperands(0, KindInt32, KindInt32)

	lhs, rhs := fv.BinaryOperands(0)
	require.Equal(t, KindInt32, lhs)
	require.Equal(t, KindInt32, rhs)
}

func TestFeedbackVector_BinaryOperandsMixedKindWidensToAny(t *testing.T) {
	fv := NewFeedbackVector(1)
	fv.RecordBinaryOperands(0, KindInt32, KindInt32)
	fv.RecordBinaryOperands(0, KindString, KindInt32)

	lhs, _ := fv.BinaryOperands(0)
	require.Equal(t, KindAny, lhs)
}

func TestFeedbackVector_InvalidateShapeResetsAffectedSlots(t *testing.T) {
	fv := NewFeedbackVector(1)
	c := gc.NewCollector(gc.NewRegistry(), memory.NewUnbounded())
	shape := newShape(t, c)
	fv.RecordHit(0, shape, 5)
	require.Equal(t, Monomorphic, fv.State(0))

	fv.InvalidateShape(shape)

	require.Equal(t, Uninitialized, fv.State(0))
	_, ok := fv.LookupProperty(0, shape)
	require.False(t, ok)
}
