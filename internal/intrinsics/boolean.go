package intrinsics

import "github.com/otterjs/otter/internal/value"

// initBoolean builds Boolean.prototype/Boolean; small enough that it
// doesn't warrant its own original_source file, grounded on the same
// builtin_method wiring pattern as Number and String.
func (r *Realm) initBoolean() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.BooleanProto = proto

	if err := r.method(proto, "toString", func(this value.Value, args []value.Value) (value.Value, error) {
		if this.ToBool() {
			return r.string("true"), nil
		}
		return r.string("false"), nil
	}); err != nil {
		return err
	}
	if err := r.method(proto, "valueOf", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewBool(this.ToBool()), nil
	}); err != nil {
		return err
	}

	ctor, _, err := r.constructor("Boolean", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewBool(arg(args, 0).ToBool()), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}
