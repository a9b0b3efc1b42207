package intrinsics

import "github.com/otterjs/otter/internal/value"

// errorKinds are the Error subclasses every engine ships (grounded on
// intrinsics_impl/error.rs's per-type init_*_prototypes functions, one
// prototype per kind chained to the shared Error.prototype).
var errorKinds = []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"}

// initErrors builds Error.prototype plus one constructor/prototype pair
// per entry in errorKinds, each chained to Error.prototype so
// `err instanceof Error` holds for every subclass.
func (r *Realm) initErrors() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.ErrorProto = proto
	if err := r.dataProp(proto, "name", r.string("Error")); err != nil {
		return err
	}
	if err := r.dataProp(proto, "message", r.string("")); err != nil {
		return err
	}
	if err := r.method(proto, "toString", r.errorToString); err != nil {
		return err
	}

	ctor, ctorObj, err := r.constructor("Error", proto, r.makeErrorConstructor("Error", proto))
	if err != nil {
		return err
	}
	_ = ctorObj
	if err := r.dataProp(proto, "constructor", value.NewFunction(ctor)); err != nil {
		return err
	}
	r.errorProtos["Error"] = proto

	for _, kind := range errorKinds {
		sub, err := r.newObject(proto)
		if err != nil {
			return err
		}
		if err := r.dataProp(sub, "name", r.string(kind)); err != nil {
			return err
		}
		subCtor, _, err := r.constructor(kind, sub, r.makeErrorConstructor(kind, sub))
		if err != nil {
			return err
		}
		if err := r.dataProp(sub, "constructor", value.NewFunction(subCtor)); err != nil {
			return err
		}
		r.errorProtos[kind] = sub
	}
	return nil
}

// makeErrorConstructor returns the NativeFunc backing `new <Kind>(message)`:
// install message (if given) as an own, non-enumerable data property and
// a formatted "stack" string (spec §4.7's stack-capture surface; full
// frame-by-frame capture needs interpreter call-stack access the
// intrinsics layer doesn't have a hook for yet, so "stack" here is the
// header line only — see DESIGN.md).
func (r *Realm) makeErrorConstructor(kind string, proto *value.JsObject) value.NativeFunc {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		msg := ""
		if m := arg(args, 0); !m.IsUndefined() {
			msg = r.toStringValue(m)
			if err := self.DefineOwnProperty(r.c, value.StringKey("message"), value.NewDataProperty(r.string(msg), value.MethodAttrs())); err != nil {
				return value.Undef, err
			}
		}
		stack := kind
		if msg != "" {
			stack += ": " + msg
		}
		if err := self.DefineOwnProperty(r.c, value.StringKey("stack"), value.NewDataProperty(r.string(stack), value.MethodAttrs())); err != nil {
			return value.Undef, err
		}
		return value.NewObject(self), nil
	}
}

func (r *Realm) errorToString(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := this.AsObject()
	if !ok {
		return r.string("Error"), nil
	}
	name := r.readStringProp(o, "name", "Error")
	msg := r.readStringProp(o, "message", "")
	if msg == "" {
		return r.string(name), nil
	}
	return r.string(name + ": " + msg), nil
}

func (r *Realm) readStringProp(o *value.JsObject, key, fallback string) string {
	cur := o
	for cur != nil {
		if desc, ok := cur.GetOwnProperty(value.StringKey(key)); ok && desc.Kind() == value.DataDescriptor {
			if s, ok := desc.Value().AsString(); ok {
				return s.String()
			}
		}
		proto, ok := cur.Proto().AsObject()
		if !ok {
			break
		}
		cur = proto
	}
	return fallback
}

// newError constructs an error instance of the given kind directly (used
// by native methods throughout the intrinsics layer to build thrown
// values without going through script-visible `new`).
func (r *Realm) newError(kind, msg string) value.Value {
	proto, ok := r.errorProtos[kind]
	if !ok {
		proto = r.ErrorProto
	}
	obj, err := r.newObject(proto)
	if err != nil {
		return value.Undef
	}
	_ = obj.DefineOwnProperty(r.c, value.StringKey("message"), value.NewDataProperty(r.string(msg), value.MethodAttrs()))
	_ = obj.DefineOwnProperty(r.c, value.StringKey("stack"), value.NewDataProperty(r.string(kind+": "+msg), value.MethodAttrs()))
	return value.NewObject(obj)
}

// toStringValue is a best-effort ToString for values that don't require
// calling back into user code (primitives only — an object operand falls
// back to its [object Object]-style tag via objectToString semantics
// rather than invoking toString/Symbol.toPrimitive, matching the
// primitives-only scope documented for looseEquals/toDisplayString).
func (r *Realm) toStringValue(v value.Value) string {
	switch v.Kind() {
	case value.String:
		s, _ := v.AsString()
		return s.String()
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.Boolean:
		if v.ToBool() {
			return "true"
		}
		return "false"
	case value.Int32, value.Number:
		return formatNumber(v.ToNumber())
	default:
		return "[object Object]"
	}
}
