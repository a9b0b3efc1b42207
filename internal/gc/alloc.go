package gc

// Track books size bytes against the collector's memory manager, stamps
// the object's header, and registers it for the next sweep. Every
// constructor in package value that allocates a new Traceable calls this
// exactly once, immediately after building the zero-initialized object,
// mirroring the teacher's pattern of a single choke point for anything
// that must later be freed.
//
// New objects are born Young and White; they survive their first
// collection only if reachable, same as any other object.
func (c *Collector) Track(t Traceable, size uint64) error {
	if err := c.memory.Alloc(size); err != nil {
		return err
	}
	h := headerOf(t)
	h.SetSize(size)
	c.registry.Register(t)
	return nil
}
