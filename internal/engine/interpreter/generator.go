package interpreter

import (
	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/value"
)

// GeneratorState is the generator's position in its strict state machine
// (spec §4.5: "SuspendedStart → Executing → (SuspendedYield ↔
// Executing)* → Completed").
type GeneratorState uint8

const (
	SuspendedStart GeneratorState = iota
	Executing
	SuspendedYield
	Completed
)

// GeneratorFrame is the snapshot captured when a YieldValue/YieldStar
// instruction suspends a generator closure (spec §4.5 step 1's exact
// field list). It is itself GC-managed: it's reachable only through the
// generator object that owns it, and its Registers/Upvalues must stay
// traceable or a suspended generator would leak the objects it's
// holding.
type GeneratorFrame struct {
	gc.Header

	PC          int
	Closure     *value.Closure
	Registers   [256]value.Value
	TryHandlers []TryHandler
	ThisValue   value.Value
	IsConstruct bool
	FrameID     uint64
	Argc        int

	// YieldDst is the destination register a plain YieldValue suspension
	// will receive the next next(v)'s v into on resume.
	YieldDst bytecode.Register

	// DelegateIterator is set when this snapshot was taken mid yield*
	// delegation (spec §4.5's generator mechanism, extended to yield*'s
	// per-item suspension): resume re-executes the YieldStar instruction
	// itself rather than advancing past it.
	DelegateIterator *value.JsObject
}

// Trace implements gc.Traceable.
func (g *GeneratorFrame) Trace(visit func(gc.Traceable)) {
	if g.Closure != nil {
		visit(g.Closure)
	}
	for _, r := range g.Registers {
		value.TraceValue(r, visit)
	}
	value.TraceValue(g.ThisValue, visit)
	if g.DelegateIterator != nil {
		visit(g.DelegateIterator)
	}
}

// snapshotFrom captures f's live state into a fresh GeneratorFrame,
// tracked against c. The closure is captured directly (rather than its
// upvalues separately) so restoreInto can reconstruct FunctionIndex,
// Module, and the upvalue chain from one field.
func snapshotFrom(c *gc.Collector, f *Frame, pc int, frameID uint64) (*GeneratorFrame, error) {
	gf := &GeneratorFrame{
		PC:               pc,
		Closure:          f.Closure,
		Registers:        f.Registers,
		TryHandlers:      append([]TryHandler(nil), f.TryHandlers...),
		ThisValue:        f.ThisValue,
		IsConstruct:      f.IsConstruct,
		FrameID:          frameID,
		Argc:             f.Argc,
		DelegateIterator: f.delegateIter,
	}
	if err := c.Track(gf, 0); err != nil {
		return nil, err
	}
	return gf, nil
}

// restoreInto installs gf's snapshot as f's live state, the inverse of
// snapshotFrom, run when a suspended generator is resumed.
func (gf *GeneratorFrame) restoreInto(f *Frame) {
	f.Closure = gf.Closure
	if gf.Closure != nil {
		f.FunctionIndex = gf.Closure.FunctionIndex()
		f.Module = gf.Closure.Module()
	}
	f.PC = gf.PC
	f.Registers = gf.Registers
	f.TryHandlers = gf.TryHandlers
	f.ThisValue = gf.ThisValue
	f.IsConstruct = gf.IsConstruct
	f.Argc = gf.Argc
	f.delegateIter = gf.DelegateIterator
}

const (
	slotGeneratorFrame = "generator_frame"
	slotGeneratorState = "generator_state"
)

// Generator wraps a *value.JsObject carrying the generator's suspended
// frame and state as internal slots (spec §3.2's "internal-slot
// dictionary for host-attached state" is exactly where a generator's
// machinery lives — no separate heap type is needed).
type Generator struct {
	obj *value.JsObject
}

// NewGenerator wraps obj as a Generator, initializing it to
// SuspendedStart. obj should be a fresh object with no other internal
// slots in use.
func NewGenerator(obj *value.JsObject) *Generator {
	obj.SetInternalSlot(slotGeneratorState, SuspendedStart)
	return &Generator{obj: obj}
}

// AsGenerator recovers the Generator view of obj if it's been initialized
// as one.
func AsGenerator(obj *value.JsObject) (*Generator, bool) {
	if _, ok := obj.InternalSlot(slotGeneratorState); !ok {
		return nil, false
	}
	return &Generator{obj: obj}, true
}

// Object returns the underlying heap object.
func (g *Generator) Object() *value.JsObject { return g.obj }

// State returns the generator's current machine state.
func (g *Generator) State() GeneratorState {
	v, _ := g.obj.InternalSlot(slotGeneratorState)
	return v.(GeneratorState)
}

// SetState transitions the generator's state. Callers are responsible
// for only making legal transitions; the interpreter's yield/resume
// logic is the sole caller.
func (g *Generator) SetState(s GeneratorState) {
	g.obj.SetInternalSlot(slotGeneratorState, s)
}

// Frame returns the generator's suspended frame snapshot, if any.
func (g *Generator) Frame() (*GeneratorFrame, bool) {
	v, ok := g.obj.InternalSlot(slotGeneratorFrame)
	if !ok {
		return nil, false
	}
	gf, ok := v.(*GeneratorFrame)
	return gf, ok
}

// SetFrame attaches (or replaces) the generator's suspended frame
// snapshot.
func (g *Generator) SetFrame(gf *GeneratorFrame) {
	g.obj.SetInternalSlot(slotGeneratorFrame, gf)
}

// IterResult is the {value, done} pair every generator step returns to
// its caller (spec §4.5 step 3).
type IterResult struct {
	Value value.Value
	Done  bool
}
