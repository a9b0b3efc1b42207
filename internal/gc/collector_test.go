package gc

import (
	"testing"

	"github.com/otterjs/otter/internal/memory"
	"github.com/stretchr/testify/require"
)

// node is a minimal Traceable used only by this package's tests: a handful
// of outgoing edges plus an embedded Header.
type node struct {
	Header
	name  string
	edges []*node
}

func (n *node) Trace(visit func(Traceable)) {
	for _, e := range n.edges {
		if e != nil {
			visit(e)
		}
	}
}

func newCollector(t *testing.T) (*Collector, *Registry) {
	t.Helper()
	reg := NewRegistry()
	mem := memory.NewUnbounded()
	return NewCollector(reg, mem), reg
}

func alloc(t *testing.T, c *Collector, name string) *node {
	t.Helper()
	n := &node{name: name}
	require.NoError(t, c.Track(n, 16))
	return n
}

// rootSet is a RootProvider backed by a plain slice, for tests that don't
// need the full HandleScope machinery.
type rootSet struct{ roots []Traceable }

func (r *rootSet) Roots(visit func(Traceable)) {
	for _, t := range r.roots {
		visit(t)
	}
}

func TestCollector_UnreachableObjectIsSwept(t *testing.T) {
	c, reg := newCollector(t)
	garbage := alloc(t, c, "garbage")
	require.True(t, reg.Contains(garbage))

	stats := c.Collect()

	require.False(t, reg.Contains(garbage))
	require.Equal(t, 1, stats.SweptObjects)
	require.Equal(t, 0, stats.LiveObjects)
}

func TestCollector_RootedObjectSurvives(t *testing.T) {
	c, reg := newCollector(t)
	live := alloc(t, c, "live")
	roots := &rootSet{roots: []Traceable{live}}
	c.AddRoot(roots)

	stats := c.Collect()

	require.True(t, reg.Contains(live))
	require.Equal(t, 1, stats.LiveObjects)
	require.Equal(t, 0, stats.SweptObjects)
}

func TestCollector_ChainSurvivesThroughReachability(t *testing.T) {
	c, reg := newCollector(t)
	a := alloc(t, c, "a")
	b := alloc(t, c, "b")
	cc := alloc(t, c, "c")
	a.edges = []*node{b}
	b.edges = []*node{cc}
	c.AddRoot(&rootSet{roots: []Traceable{a}})

	stats := c.Collect()

	require.True(t, reg.Contains(a))
	require.True(t, reg.Contains(b))
	require.True(t, reg.Contains(cc))
	require.Equal(t, 3, stats.LiveObjects)
}

func TestCollector_SelfCycleIsCollectedWhenUnrooted(t *testing.T) {
	c, reg := newCollector(t)
	a := alloc(t, c, "self-cycle")
	a.edges = []*node{a}

	stats := c.Collect()

	require.False(t, reg.Contains(a))
	require.Equal(t, 1, stats.SweptObjects)
}

func TestCollector_MutualCycleIsCollectedWhenUnrooted(t *testing.T) {
	c, reg := newCollector(t)
	a := alloc(t, c, "a")
	b := alloc(t, c, "b")
	a.edges = []*node{b}
	b.edges = []*node{a}

	c.Collect()

	require.False(t, reg.Contains(a))
	require.False(t, reg.Contains(b))
}

func TestCollector_MutualCycleReachableFromRootSurvives(t *testing.T) {
	c, reg := newCollector(t)
	a := alloc(t, c, "a")
	b := alloc(t, c, "b")
	a.edges = []*node{b}
	b.edges = []*node{a}
	c.AddRoot(&rootSet{roots: []Traceable{a}})

	c.Collect()

	require.True(t, reg.Contains(a))
	require.True(t, reg.Contains(b))
}

func TestCollector_WideTreeAllSurvive(t *testing.T) {
	c, reg := newCollector(t)
	root := alloc(t, c, "root")
	for i := 0; i < 50; i++ {
		child := alloc(t, c, "child")
		root.edges = append(root.edges, child)
	}
	c.AddRoot(&rootSet{roots: []Traceable{root}})

	stats := c.Collect()

	require.Equal(t, 51, stats.LiveObjects)
	for _, child := range root.edges {
		require.True(t, reg.Contains(child))
	}
}

func TestCollector_MixedLiveAndGarbage(t *testing.T) {
	c, reg := newCollector(t)
	live := alloc(t, c, "live")
	_ = alloc(t, c, "garbage1")
	_ = alloc(t, c, "garbage2")
	c.AddRoot(&rootSet{roots: []Traceable{live}})

	stats := c.Collect()

	require.Equal(t, 1, stats.LiveObjects)
	require.Equal(t, 2, stats.SweptObjects)
	require.True(t, reg.Contains(live))
}

func TestCollector_ByteAccountingReturnedOnSweep(t *testing.T) {
	c, _ := newCollector(t)
	_ = alloc(t, c, "garbage")

	stats := c.Collect()

	require.Equal(t, uint64(16), stats.SweptBytes)
	require.Equal(t, uint64(0), stats.LiveBytes)
}

func TestHandleScope_RootsKeepObjectAliveUntilClosed(t *testing.T) {
	c, reg := newCollector(t)
	obj := alloc(t, c, "scoped")

	scope := NewHandleScope(c)
	scope.Root(obj)

	c.Collect()
	require.True(t, reg.Contains(obj), "handle scope should root the object across a collection")

	scope.Close()
	c.Collect()
	require.False(t, reg.Contains(obj), "object should be collectible once its scope closes")
}

func TestWriteBarrier_KeepsNewlyLinkedObjectAliveDuringMark(t *testing.T) {
	c, reg := newCollector(t)
	root := alloc(t, c, "root")
	c.AddRoot(&rootSet{roots: []Traceable{root}})

	// Simulate mid-mark mutation: root has already been blackened, then the
	// mutator links a brand-new White object into it. Without the barrier
	// that object would never get shaded and would be swept incorrectly.
	c.beginMark()
	c.markRoots()
	c.drainGray() // root is now Black, grayStack empty

	child := alloc(t, c, "child")
	root.edges = append(root.edges, child)
	c.Barrier().Record(root, child)

	c.drainGray()
	iters := c.settleEphemerons()
	_ = iters
	swept, _ := c.sweep()
	c.marking = false

	require.Equal(t, 0, swept)
	require.True(t, reg.Contains(child))
}

func TestEphemeronTable_DeadKeyDropsEntry(t *testing.T) {
	c, _ := newCollector(t)
	table := NewEphemeronTable[string](func(string, func(Traceable)) {})
	RegisterEphemeronTable(c, table)

	key := alloc(t, c, "weak-key")
	table.Set(key, "payload")
	require.Equal(t, 1, table.Len())

	c.Collect() // key is unrooted, should be swept and the entry dropped

	_, ok := table.Get(key)
	require.False(t, ok)
	require.Equal(t, 0, table.Len())
}

func TestEphemeronTable_LiveKeyKeepsEntryAndValueReachable(t *testing.T) {
	c, reg := newCollector(t)
	valueHeld := alloc(t, c, "value-held-only-via-ephemeron")
	table := NewEphemeronTable[*node](func(v *node, visit func(Traceable)) {
		visit(v)
	})
	RegisterEphemeronTable(c, table)

	key := alloc(t, c, "live-key")
	c.AddRoot(&rootSet{roots: []Traceable{key}})
	table.Set(key, valueHeld)

	c.Collect()

	got, ok := table.Get(key)
	require.True(t, ok)
	require.Same(t, valueHeld, got)
	require.True(t, reg.Contains(valueHeld), "value reachable only via a live ephemeron key must survive")
}

func TestEphemeronTable_ValueNotKeptAliveWhenKeyIsDead(t *testing.T) {
	c, reg := newCollector(t)
	valueHeld := alloc(t, c, "orphaned-value")
	table := NewEphemeronTable[*node](func(v *node, visit func(Traceable)) {
		visit(v)
	})
	RegisterEphemeronTable(c, table)

	key := alloc(t, c, "dead-key")
	table.Set(key, valueHeld)

	c.Collect()

	require.False(t, reg.Contains(key))
	require.False(t, reg.Contains(valueHeld))
}

func TestMinorCollect_PromotesSurvivorsAndSweepsYoungGarbage(t *testing.T) {
	c, reg := newCollector(t)
	root := alloc(t, c, "root")
	c.AddRoot(&rootSet{roots: []Traceable{root}})
	survivor := alloc(t, c, "survivor")
	root.edges = []*node{survivor}
	garbage := alloc(t, c, "young-garbage")
	_ = garbage

	stats := c.MinorCollect()

	require.Equal(t, Old, survivor.Generation())
	require.True(t, reg.Contains(survivor))
	require.False(t, reg.Contains(garbage))
	require.Equal(t, 1, stats.SweptObjects)
}

func TestRememberedSet_OldHolderRootsYoungPointeeAcrossMinorCollect(t *testing.T) {
	c, reg := newCollector(t)
	oldHolder := alloc(t, c, "old-holder")
	oldHolder.Promote() // not registered as a root directly

	young := alloc(t, c, "young-only-reachable-via-remembered-old")
	oldHolder.edges = []*node{young}
	c.noteMinorBarrier(oldHolder, young)
	require.Equal(t, 1, c.remembered.Len())

	c.MinorCollect()

	require.True(t, reg.Contains(young), "remembered old holder must root its young pointee")
	require.Equal(t, 0, c.remembered.Len(), "remembered set clears after minor collection")
}
