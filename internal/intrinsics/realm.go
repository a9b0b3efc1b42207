// Package intrinsics builds the standard global objects and prototypes
// a realm needs before any user script runs (spec §4.7's "error stack
// capture", spec.md's broader "the intrinsic objects" surface implied
// throughout L2/L3): Object, Function, Array, String, Number, Boolean,
// the Error family, Math, JSON, RegExp, Map/Set/WeakMap/WeakSet, Symbol,
// and a host console binding.
//
// Every constructor and method here is a value.NativeFunc (a plain Go
// closure), installed as a value.Closure the same way a host's
// Engine.RegisterNative binding would be — the intrinsics layer is just
// the first and largest caller of that mechanism, not a separate path
// through the interpreter.
package intrinsics

import (
	"github.com/otterjs/otter/internal/engine/interpreter"
	"github.com/otterjs/otter/internal/gc"
	"github.com/otterjs/otter/internal/value"
)

// Realm owns every well-known prototype object, so methods installed on
// one (say, Array.prototype) are reachable from any array created after
// bootstrap, and so later packages (a parser emitting Construct against
// "Array", a test helper wanting Object.prototype directly) have a
// single place to ask for them.
type Realm struct {
	interp *interpreter.Interpreter
	c      *gc.Collector

	ObjectProto    *value.JsObject
	FunctionProto  *value.JsObject
	ArrayProto     *value.JsObject
	StringProto    *value.JsObject
	NumberProto    *value.JsObject
	BooleanProto   *value.JsObject
	ErrorProto     *value.JsObject
	RegExpProto    *value.JsObject
	MapProto       *value.JsObject
	SetProto       *value.JsObject
	WeakMapProto   *value.JsObject
	WeakSetProto   *value.JsObject
	IteratorProto  *value.JsObject
	GeneratorProto *value.JsObject
	PromiseProto   *value.JsObject

	errorProtos map[string]*value.JsObject

	// SymbolIterator is the well-known @@iterator key every iterable's
	// prototype installs a method under (spec GLOSSARY "IC"; the
	// iteration protocol referenced by spec §4.5/§9's generator-as-
	// iterator notes).
	SymbolIterator *value.JsSymbol
}

// New bootstraps a full realm: every prototype object, every
// constructor function, and the global bindings they're reachable
// through, installed onto interp's global object.
func New(interp *interpreter.Interpreter) (*Realm, error) {
	r := &Realm{
		interp:      interp,
		c:           interp.Collector(),
		errorProtos: make(map[string]*value.JsObject),
	}

	if err := r.initObject(); err != nil {
		return nil, err
	}
	if err := r.initFunction(); err != nil {
		return nil, err
	}
	if err := r.initSymbol(); err != nil {
		return nil, err
	}
	if err := r.initArray(); err != nil {
		return nil, err
	}
	if err := r.initString(); err != nil {
		return nil, err
	}
	if err := r.initNumber(); err != nil {
		return nil, err
	}
	if err := r.initBoolean(); err != nil {
		return nil, err
	}
	if err := r.initErrors(); err != nil {
		return nil, err
	}
	if err := r.initMath(); err != nil {
		return nil, err
	}
	if err := r.initJSON(); err != nil {
		return nil, err
	}
	if err := r.initRegExp(); err != nil {
		return nil, err
	}
	if err := r.initMapSet(); err != nil {
		return nil, err
	}
	if err := r.initIterator(); err != nil {
		return nil, err
	}
	if err := r.initConsole(); err != nil {
		return nil, err
	}
	if err := r.initPromise(); err != nil {
		return nil, err
	}
	if err := r.initBigInt(); err != nil {
		return nil, err
	}
	if err := r.initArrayBuffer(); err != nil {
		return nil, err
	}
	return r, nil
}

// rootShape builds a fresh empty shape parented at proto.
func (r *Realm) rootShape(proto *value.JsObject) (*value.Shape, error) {
	var protoVal value.Value
	if proto != nil {
		protoVal = value.NewObject(proto)
	}
	return value.RootShape(r.c, protoVal)
}

// newObject allocates a plain object parented at proto.
func (r *Realm) newObject(proto *value.JsObject) (*value.JsObject, error) {
	shape, err := r.rootShape(proto)
	if err != nil {
		return nil, err
	}
	return value.NewJsObject(r.c, shape)
}

// method installs a native method named name on target, non-enumerable
// like every built-in method (spec's implied Object.prototype/etc.
// contract: built-ins don't show up in for-in).
func (r *Realm) method(target *value.JsObject, name string, fn value.NativeFunc) error {
	cl, err := value.NewNativeClosure(r.c, name, fn)
	if err != nil {
		return err
	}
	return target.DefineOwnProperty(r.c, value.StringKey(name), value.NewDataProperty(value.NewFunction(cl), value.MethodAttrs()))
}

// dataProp installs a plain data property (used for namespace objects
// like Math and JSON's constants, and for an object's straightforward
// fields).
func (r *Realm) dataProp(target *value.JsObject, name string, v value.Value) error {
	return target.DefineOwnProperty(r.c, value.StringKey(name), value.NewDataProperty(v, value.MethodAttrs()))
}

// constructor builds a native closure meant to be invoked with `new`,
// wiring its ConstructShape to proto so Construct gives instances the
// right prototype chain, gives it a companion property object (so
// Object.keys, Array.from, and "prototype" are reachable through
// ordinary property access even though OpCall/OpConstruct dispatch on
// the Function-kind Value directly), and installs it as a global
// binding. The returned JsObject is where static methods get installed.
func (r *Realm) constructor(name string, proto *value.JsObject, fn value.NativeFunc) (*value.Closure, *value.JsObject, error) {
	cl, err := value.NewNativeClosure(r.c, name, fn)
	if err != nil {
		return nil, nil, err
	}
	if proto != nil {
		if err := cl.SetConstructPrototype(r.c, proto); err != nil {
			return nil, nil, err
		}
	}
	props, err := r.newObject(r.FunctionProto)
	if err != nil {
		return nil, nil, err
	}
	props.MarkCallable()
	cl.SetProps(props)

	if proto != nil {
		frozen := value.Attrs{Writable: false, Enumerable: false, Configurable: false}
		if err := props.DefineOwnProperty(r.c, value.StringKey("prototype"), value.NewDataProperty(value.NewObject(proto), frozen)); err != nil {
			return nil, nil, err
		}
	}
	if err := r.dataProp(props, "name", r.string(name)); err != nil {
		return nil, nil, err
	}

	if err := r.interp.Global().DefineOwnProperty(r.c, value.StringKey(name), value.NewDataProperty(value.NewFunction(cl), value.MethodAttrs())); err != nil {
		return nil, nil, err
	}
	return cl, props, nil
}

// global installs a plain global binding (a namespace object like Math,
// or a host binding like console).
func (r *Realm) global(name string, v value.Value) error {
	return r.interp.Global().DefineOwnProperty(r.c, value.StringKey(name), value.NewDataProperty(v, value.MethodAttrs()))
}

func arg(args []value.Value, idx int) value.Value {
	if idx < len(args) {
		return args[idx]
	}
	return value.Undef
}

func elementsOf(o *value.JsObject) []value.Value {
	return append([]value.Value(nil), o.Elements()...)
}

// newArray builds a new array object whose dense storage is elems.
func (r *Realm) newArray(elems []value.Value) (value.Value, error) {
	obj, err := r.newObject(r.ArrayProto)
	if err != nil {
		return value.Undef, err
	}
	obj.MarkArray()
	obj.SetElements(elems)
	return value.NewObject(obj), nil
}

// typeError builds a TypeError instance the way a thrown runtime error
// looks from script (spec §7's "JS-level exceptions"), for native
// methods that need to signal a misuse (e.g. Function.prototype.call on
// a non-function this).
func (r *Realm) typeError(msg string) value.Value {
	return r.newError("TypeError", msg)
}

func (r *Realm) string(s string) value.Value {
	js, err := value.NewJsString(r.c, s)
	if err != nil {
		return value.Undef
	}
	return value.NewString(js)
}
