package gc

import (
	"github.com/otterjs/otter/internal/logging"
	"github.com/otterjs/otter/internal/memory"
)

// Stats summarizes one completed collection cycle, returned to callers of
// Collect and surfaced through the host embedding API (spec §6
// Engine.CollectGarbage, §4.2 "Collection statistics").
type Stats struct {
	LiveObjects   int
	LiveBytes     uint64
	SweptObjects  int
	SweptBytes    uint64
	EphemeronIters int
}

// Collector is a precise, stop-the-world tri-color mark-sweep collector
// (spec §4.2). It owns no knowledge of the object model: roots, tracing,
// and finalization all happen through the Traceable and RootProvider
// interfaces, and byte accounting happens through memory.Manager.
type Collector struct {
	registry   *Registry
	memory     *memory.Manager
	roots      []RootProvider
	scopes     []*HandleScope
	remembered *RememberedSet
	ephemerons []ephemeronTable

	marking   bool
	grayStack []Traceable

	logger logging.Logger
}

// SetLogger installs the sink collection-start/end events are reported
// to (spec §10.2: "the GC (collection start/end, bytes reclaimed)"). A
// nil logger is treated as logging.Noop.
func (c *Collector) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.Noop()
	}
	c.logger = l
}

func (c *Collector) log() logging.Logger {
	if c.logger == nil {
		return logging.Noop()
	}
	return c.logger
}

// NewCollector wires a collector to the allocation registry and memory
// manager it will sweep and account against. Both must be shared with
// every allocation site in the object model.
func NewCollector(registry *Registry, mem *memory.Manager) *Collector {
	return &Collector{
		registry:   registry,
		memory:     mem,
		remembered: NewRememberedSet(),
	}
}

// AddRoot registers a long-lived root provider, such as the interpreter's
// register file or the global object. Roots added here are scanned on
// every collection until removed.
func (c *Collector) AddRoot(r RootProvider) {
	c.roots = append(c.roots, r)
}

// RemoveRoot undoes AddRoot.
func (c *Collector) RemoveRoot(r RootProvider) {
	for i, existing := range c.roots {
		if existing == r {
			c.roots = append(c.roots[:i], c.roots[i+1:]...)
			return
		}
	}
}

// shade moves a White object to Gray and pushes it on the worklist. It is
// the single place both the root scan and the write barrier go through,
// so there is exactly one definition of "newly discovered reachable".
func (c *Collector) shade(t Traceable) {
	h := headerOf(t)
	if h == nil || h.color != White {
		return
	}
	h.color = Gray
	c.grayStack = append(c.grayStack, t)
}

// Collect runs one full major collection: mark every reachable object
// starting from the registered roots and open handle scopes, settle the
// ephemeron fixpoint, then sweep everything still White.
//
// Collect is stop-the-world: callers (the interpreter's safepoint check,
// or Engine.CollectGarbage) must not run mutator code concurrently with
// it.
func (c *Collector) Collect() Stats {
	c.log().Log(logging.ScopeGC, "major collection started")
	c.beginMark()
	c.markRoots()
	c.drainGray()
	iters := c.settleEphemerons()
	swept, sweptBytes := c.sweep()
	c.marking = false

	liveObjects := c.registry.Len()
	var liveBytes uint64
	c.registry.Each(func(t Traceable) {
		liveBytes += headerOf(t).Size()
	})

	stats := Stats{
		LiveObjects:    liveObjects,
		LiveBytes:      liveBytes,
		SweptObjects:   swept,
		SweptBytes:     sweptBytes,
		EphemeronIters: iters,
	}
	c.memory.OnGCComplete(liveBytes)
	c.log().Log(logging.ScopeGC, "major collection finished",
		"live_objects", stats.LiveObjects, "swept_objects", stats.SweptObjects, "swept_bytes", stats.SweptBytes)
	return stats
}

// beginMark resets every object to White and opens the marking window
// during which the write barrier is active.
func (c *Collector) beginMark() {
	c.marking = true
	c.grayStack = c.grayStack[:0]
	c.registry.Each(func(t Traceable) {
		headerOf(t).color = White
	})
}

// markRoots shades everything directly reachable from the interpreter's
// registered roots and every currently open handle scope.
func (c *Collector) markRoots() {
	for _, r := range c.roots {
		r.Roots(c.shade)
	}
	for _, s := range c.scopes {
		s.Roots(c.shade)
	}
}

// drainGray repeatedly pops the gray worklist, traces each object's
// children, and blackens it, until nothing gray remains (spec §4.2 step
// 2, "mark phase").
func (c *Collector) drainGray() {
	for len(c.grayStack) > 0 {
		n := len(c.grayStack) - 1
		t := c.grayStack[n]
		c.grayStack = c.grayStack[:n]

		h := headerOf(t)
		if h.color != Gray {
			continue
		}
		t.Trace(c.shade)
		h.color = Black
	}
}

// settleEphemerons iterates every registered WeakMap/WeakSet table until a
// full pass makes no further progress, then drops dead entries. This is
// the fixpoint required because a value reachable only through a live
// ephemeron key can itself make other ephemeron keys live (spec §4.2
// "Ephemeron fixpoint").
func (c *Collector) settleEphemerons() int {
	iters := 0
	for {
		iters++
		progressed := false
		for _, e := range c.ephemerons {
			if e.fixpointStep(c.shade) {
				progressed = true
			}
		}
		if progressed {
			c.drainGray()
			continue
		}
		break
	}
	for _, e := range c.ephemerons {
		e.sweepDeadEntries()
	}
	return iters
}

// sweep reclaims every object still White: it removes them from the
// registry, returns their booked bytes to the memory manager, and leaves
// every surviving object Black (ready for the next cycle's reset to
// White).
func (c *Collector) sweep() (count int, bytes uint64) {
	var dead []Traceable
	c.registry.Each(func(t Traceable) {
		if headerOf(t).color == White {
			dead = append(dead, t)
		}
	})
	for _, t := range dead {
		bytes += headerOf(t).Size()
		c.memory.Free(headerOf(t).Size())
		c.registry.Unregister(t)
	}
	return len(dead), bytes
}

// MinorCollect runs a young-generation-only collection: roots are the
// registered RootProviders plus the remembered set (old objects pointing
// into the nursery), and only Young objects are eligible for reclaim.
// Survivors are promoted to Old (spec §4.2 "Minor GC").
func (c *Collector) MinorCollect() Stats {
	c.log().Log(logging.ScopeGC, "minor collection started")
	c.marking = true
	c.grayStack = c.grayStack[:0]

	c.registry.Each(func(t Traceable) {
		if headerOf(t).Generation() == Young {
			headerOf(t).color = White
		} else {
			headerOf(t).color = Black
		}
	})

	for _, r := range c.roots {
		r.Roots(c.shade)
	}
	for _, s := range c.scopes {
		s.Roots(c.shade)
	}
	// Remembered holders are pre-colored Black above (generation Old), so
	// shade would be a no-op on them; re-trace their children directly to
	// pull in whatever Young objects they point at.
	c.remembered.Each(func(holder Traceable) {
		holder.Trace(c.shade)
	})

	c.drainGray()

	var dead []Traceable
	var sweptBytes uint64
	c.registry.Each(func(t Traceable) {
		h := headerOf(t)
		if h.Generation() == Young {
			if h.color == White {
				dead = append(dead, t)
			} else {
				h.Promote()
			}
		}
	})
	for _, t := range dead {
		sweptBytes += headerOf(t).Size()
		c.registry.Unregister(t)
	}
	c.remembered.Clear()
	c.marking = false

	liveObjects := c.registry.Len()
	var liveBytes uint64
	c.registry.Each(func(t Traceable) {
		liveBytes += headerOf(t).Size()
	})
	stats := Stats{
		LiveObjects:  liveObjects,
		LiveBytes:    liveBytes,
		SweptObjects: len(dead),
		SweptBytes:   sweptBytes,
	}
	c.memory.OnGCComplete(liveBytes)
	c.log().Log(logging.ScopeGC, "minor collection finished",
		"live_objects", stats.LiveObjects, "swept_objects", stats.SweptObjects, "swept_bytes", stats.SweptBytes)
	return stats
}
