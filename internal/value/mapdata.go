package value

import "github.com/otterjs/otter/internal/gc"

// MapEntry is one Map/Set slot. Set reuses MapData with Key == Value,
// rather than a separate type, since the storage and lookup semantics
// (a linear StrictEquals scan, insertion order) are identical.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapData is the GC-tracked backing store for Map and Set instances
// (spec §3's ordinary-object model keeps the engine's single JsObject
// type as the script-visible shell; the actual entry storage lives in an
// internal slot, the same split ArrayBuffer draws between a JsObject and
// its raw bytes).
type MapData struct {
	gc.Header
	entries []MapEntry
}

// NewMapData allocates an empty map/set backing store.
func NewMapData(c *gc.Collector) (*MapData, error) {
	m := &MapData{}
	if err := c.Track(m, 0); err != nil {
		return nil, err
	}
	return m, nil
}

// Trace implements gc.Traceable.
func (m *MapData) Trace(visit func(gc.Traceable)) {
	for _, e := range m.entries {
		e.Key.traceRef(visit)
		e.Value.traceRef(visit)
	}
}

// Get returns the value stored for key, by strict-equality scan.
func (m *MapData) Get(key Value) (Value, bool) {
	for _, e := range m.entries {
		if e.Key.StrictEquals(key) {
			return e.Value, true
		}
	}
	return Undef, false
}

// Has reports whether key has an entry.
func (m *MapData) Has(key Value) bool {
	_, ok := m.Get(key)
	return ok
}

// Set inserts or overwrites the entry for key, preserving insertion order
// on first insert (spec's Map/Set iteration-order requirement).
func (m *MapData) Set(key, val Value) {
	for i := range m.entries {
		if m.entries[i].Key.StrictEquals(key) {
			m.entries[i].Value = val
			return
		}
	}
	m.entries = append(m.entries, MapEntry{Key: key, Value: val})
}

// Delete removes the entry for key, reporting whether one existed.
func (m *MapData) Delete(key Value) bool {
	for i := range m.entries {
		if m.entries[i].Key.StrictEquals(key) {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every entry.
func (m *MapData) Clear() { m.entries = nil }

// Len reports the number of entries.
func (m *MapData) Len() int { return len(m.entries) }

// Entries returns the live entries in insertion order. Callers must not
// mutate the returned slice.
func (m *MapData) Entries() []MapEntry { return m.entries }
