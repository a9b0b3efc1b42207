// Package memory implements the fast-path heap accounting layer described
// in spec §4.1. It decides when the collector should run; it never
// traces or frees an object itself (see package gc for that).
package memory

import "sync/atomic"

// minThreshold is the floor for the adaptive GC threshold, so a freshly
// started engine with a tiny live set doesn't thrash on every allocation.
const minThreshold = 1024 * 1024 // 1MiB

// defaultAllocationCountThreshold bounds how many allocations the engine
// will do between collections regardless of byte volume.
const defaultAllocationCountThreshold = 10_000

// Manager tracks allocated bytes against a limit and decides when a
// collection is due. All operations are lock-free; should_collect must
// stay O(1) because the interpreter polls it at every safepoint.
type Manager struct {
	allocated               atomic.Uint64
	limit                   uint64
	allocationCount         atomic.Uint64
	allocationCountThreshold atomic.Uint64
	lastLiveBytes           atomic.Uint64
	gcThreshold             atomic.Uint64
	gcRequested             atomic.Bool
}

// NewManager returns a Manager that fails allocations once allocated bytes
// would exceed limit.
func NewManager(limit uint64) *Manager {
	m := &Manager{limit: limit}
	m.allocationCountThreshold.Store(defaultAllocationCountThreshold)
	m.gcThreshold.Store(minThreshold)
	return m
}

// NewUnbounded returns a Manager with an effectively unlimited budget, for
// tests and embedding scenarios that don't want OOM failures.
func NewUnbounded() *Manager {
	return NewManager(^uint64(0) >> 1)
}

// ErrOutOfMemory is returned by Alloc when the allocation would exceed the
// manager's configured limit.
type ErrOutOfMemory struct {
	Requested uint64
	Allocated uint64
	Limit     uint64
}

func (e *ErrOutOfMemory) Error() string {
	return "out of memory: requested bytes would exceed the configured heap limit"
}

// Alloc books n bytes against the manager's budget. It fails without
// mutating any counter if the allocation would exceed the limit.
func (m *Manager) Alloc(n uint64) error {
	for {
		cur := m.allocated.Load()
		next := cur + n
		if next > m.limit {
			return &ErrOutOfMemory{Requested: n, Allocated: cur, Limit: m.limit}
		}
		if m.allocated.CompareAndSwap(cur, next) {
			m.allocationCount.Add(1)
			return nil
		}
	}
}

// Free records that n bytes were reclaimed, typically called by the
// collector's sweep phase for every object it drops.
func (m *Manager) Free(n uint64) {
	for {
		cur := m.allocated.Load()
		next := cur
		if n > cur {
			next = 0
		} else {
			next = cur - n
		}
		if m.allocated.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Allocated returns the current number of booked bytes.
func (m *Manager) Allocated() uint64 { return m.allocated.Load() }

// AllocationCount returns the number of successful Alloc calls since the
// last OnGCComplete.
func (m *Manager) AllocationCount() uint64 { return m.allocationCount.Load() }

// RequestGC marks that an explicit collection (e.g. from a host API call
// or a test262 harness) should happen at the next ShouldCollect check.
func (m *Manager) RequestGC() { m.gcRequested.Store(true) }

// SetAllocationCountThreshold overrides the allocation-count trigger;
// exposed for tests and for EngineConfig.WithGCAllocationCountThreshold.
func (m *Manager) SetAllocationCountThreshold(n uint64) {
	m.allocationCountThreshold.Store(n)
}

// SetGCThreshold overrides the byte-based trigger directly, exposed for
// EngineConfig.WithGCThreshold. Once set this way, the next
// OnGCComplete still recomputes it adaptively — a host wanting a fixed
// ceiling should call this again after each collection, or just rely on
// WithGCAllocationCountThreshold for a stable non-adaptive knob.
func (m *Manager) SetGCThreshold(bytes uint64) {
	m.gcThreshold.Store(bytes)
}

// ShouldCollect reports whether the interpreter's next safepoint should
// trigger a collection. Must stay cheap: it is polled at every backward
// branch and function prologue/epilogue (spec §4.5).
func (m *Manager) ShouldCollect() bool {
	if m.gcRequested.Load() {
		return true
	}
	if m.allocationCount.Load() >= m.allocationCountThreshold.Load() {
		return true
	}
	return m.allocated.Load() >= m.gcThreshold.Load()
}

// OnGCComplete resets the fast-path counters after the collector finishes
// a cycle and reports the size of the surviving live set, recomputing the
// adaptive threshold as max(minThreshold, 2×live).
func (m *Manager) OnGCComplete(liveBytes uint64) {
	m.allocationCount.Store(0)
	m.lastLiveBytes.Store(liveBytes)
	m.gcRequested.Store(false)

	threshold := liveBytes * 2
	if threshold < minThreshold {
		threshold = minThreshold
	}
	m.gcThreshold.Store(threshold)
}

// LastLiveBytes returns the live-set size recorded by the most recent
// OnGCComplete call.
func (m *Manager) LastLiveBytes() uint64 { return m.lastLiveBytes.Load() }

// GCThreshold returns the current adaptive byte threshold.
func (m *Manager) GCThreshold() uint64 { return m.gcThreshold.Load() }

// Limit returns the configured maximum number of bytes the manager will
// book.
func (m *Manager) Limit() uint64 { return m.limit }
