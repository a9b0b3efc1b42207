package value

import (
	"github.com/otterjs/otter/internal/bytecode"
	"github.com/otterjs/otter/internal/gc"
)

// Cell boxes a single Value so multiple closures can share a captured
// upvalue by reference (spec §4.4 LoadUpvalue/StoreUpvalue): writing
// through one closure's upvalue must be visible to every other closure
// that captured the same binding.
type Cell struct {
	gc.Header
	value Value
}

// NewCell allocates a cell holding the given initial value.
func NewCell(c *gc.Collector, v Value) (*Cell, error) {
	cell := &Cell{value: v}
	if err := c.Track(cell, 0); err != nil {
		return nil, err
	}
	return cell, nil
}

// Trace implements gc.Traceable.
func (c *Cell) Trace(visit func(gc.Traceable)) { c.value.traceRef(visit) }

// Get returns the cell's current value.
func (c *Cell) Get() Value { return c.value }

// Set overwrites the cell's value. Callers that hold a *gc.WriteBarrier
// must call Record(c, newValue's ref) after Set if the new value is
// heap-resident, same as any other slot mutation.
func (c *Cell) Set(v Value) { c.value = v }

// NativeFunc is a host- or intrinsics-implemented function body (spec
// §6's "Engine::register_native(name, fn: NativeFn)"): given `this` and
// the call arguments, produce a result or an error/thrown value. This is
// the same shape bytecode-backed calls eventually reduce to, so the rest
// of the engine (Call, property access, iteration) never needs to know
// whether a Closure is bytecode or Go underneath.
type NativeFunc func(this Value, args []Value) (Value, error)

// Closure is a function value (spec §3.4). It wraps exactly one of two
// bodies: a reference to a compiled function (by index into its owning
// Module's function table) plus the upvalues it captured at MakeClosure
// time, or a NativeFunc installed by the host or the intrinsics layer.
// The module reference lets the interpreter resolve functionIndex
// without a separately threaded module context — every bytecode closure
// knows where it came from, the same way a wazero-compiled function
// never loses track of its owning *wasm.Module.
type Closure struct {
	gc.Header
	functionIndex uint32
	upvalues      []*Cell
	name          string
	module        *bytecode.Module

	native NativeFunc

	// constructProto/constructShape are the object new instances of this
	// closure get as their prototype when invoked via Construct (the
	// intrinsics layer's Function.prototype / "prototype" property
	// equivalent, since Closure itself carries no arbitrary property
	// storage) and the root Shape already parented at it, cached once so
	// Construct never re-derives a Shape per call. Left nil for closures
	// never used as a constructor.
	constructProto *JsObject
	constructShape *Shape

	// props is this function's own property object — where "prototype",
	// "name", "length", and any static members (Object.keys, Array.from)
	// live. OpCall/OpConstruct still dispatch on the Function-kind Value
	// itself (the fast, unambiguous path), but ordinary property access
	// (CallMethod, getProp/setProp) consults props when the receiver is a
	// Function value, the same two-faced object/callable duality a real
	// JS function exhibits.
	props *JsObject
}

// NewClosure allocates a closure over functionIndex (resolved against
// module) with the given upvalue cells, captured in declaration order so
// LoadUpvalue/StoreUpvalue can address them by a plain index.
func NewClosure(c *gc.Collector, module *bytecode.Module, functionIndex uint32, name string, upvalues []*Cell) (*Closure, error) {
	cl := &Closure{functionIndex: functionIndex, name: name, upvalues: upvalues, module: module}
	if err := c.Track(cl, 0); err != nil {
		return nil, err
	}
	return cl, nil
}

// NewNativeClosure allocates a closure backed by a Go function rather
// than bytecode — how every intrinsic method and every
// Engine.RegisterNative binding reaches the interpreter.
func NewNativeClosure(c *gc.Collector, name string, fn NativeFunc) (*Closure, error) {
	cl := &Closure{name: name, native: fn}
	if err := c.Track(cl, 0); err != nil {
		return nil, err
	}
	return cl, nil
}

// IsNative reports whether this closure wraps a NativeFunc rather than
// bytecode.
func (cl *Closure) IsNative() bool { return cl.native != nil }

// Native returns the wrapped NativeFunc; only meaningful when IsNative
// is true.
func (cl *Closure) Native() NativeFunc { return cl.native }

// Trace implements gc.Traceable.
func (cl *Closure) Trace(visit func(gc.Traceable)) {
	for _, uv := range cl.upvalues {
		if uv != nil {
			visit(uv)
		}
	}
	if cl.constructProto != nil {
		visit(cl.constructProto)
	}
	if cl.constructShape != nil {
		visit(cl.constructShape)
	}
	if cl.props != nil {
		visit(cl.props)
	}
}

// FunctionIndex returns the index of the compiled function this closure
// wraps, into its owning bytecode Module's function table.
func (cl *Closure) FunctionIndex() uint32 { return cl.functionIndex }

// Module returns the bytecode module functionIndex is resolved against.
func (cl *Closure) Module() *bytecode.Module { return cl.module }

// Function resolves this closure's compiled function body. Always false
// for a native closure.
func (cl *Closure) Function() (*bytecode.Function, bool) {
	if cl.native != nil || cl.module == nil {
		return nil, false
	}
	return cl.module.Function(cl.functionIndex)
}

// Name returns the closure's display name (for stack traces and
// Function.prototype.toString), empty for anonymous functions.
func (cl *Closure) Name() string { return cl.name }

// Upvalue returns the cell captured at position idx.
func (cl *Closure) Upvalue(idx int) *Cell { return cl.upvalues[idx] }

// UpvalueCount reports how many upvalues this closure captured.
func (cl *Closure) UpvalueCount() int { return len(cl.upvalues) }

// SetConstructPrototype installs the object new instances get as their
// prototype when this closure is invoked via `new` (spec §3's
// constructor/"prototype" property relationship), building and caching
// the corresponding root Shape.
func (cl *Closure) SetConstructPrototype(c *gc.Collector, proto *JsObject) error {
	shape, err := RootShape(c, NewObject(proto))
	if err != nil {
		return err
	}
	cl.constructProto = proto
	cl.constructShape = shape
	return nil
}

// ConstructShape returns the root Shape new instances of this closure
// should start from, if SetConstructPrototype was called.
func (cl *Closure) ConstructShape() (*Shape, bool) {
	return cl.constructShape, cl.constructShape != nil
}

// Props returns this function's own property object, or nil if none was
// ever attached (a closure with no statics and no captured "prototype"/
// "name" exposure, e.g. one never installed as a global binding).
func (cl *Closure) Props() *JsObject { return cl.props }

// SetProps attaches the property object backing this function's own
// properties (statics, "prototype", "name"). Intrinsics bootstrap calls
// this once per constructor/method it installs as a global or static
// binding; ordinary closures created by MakeClosure never need one.
func (cl *Closure) SetProps(o *JsObject) { cl.props = o }
