package intrinsics

import "github.com/otterjs/otter/internal/value"

// initSymbol allocates the well-known symbols scripts and the iteration
// protocol both depend on, and installs a Symbol() factory callable
// without `new` (the one constructor in the realm that's deliberately
// not wired as a constructor — Symbol is the one built-in `new` throws
// on, per spec; this engine accepts the simplification of just not
// attaching a ConstructPrototype rather than special-casing Construct to
// reject it).
func (r *Realm) initSymbol() error {
	iterSym, err := value.NewJsSymbol(r.c, "Symbol.iterator")
	if err != nil {
		return err
	}
	r.SymbolIterator = iterSym

	fn, err := value.NewNativeClosure(r.c, "Symbol", func(this value.Value, args []value.Value) (value.Value, error) {
		desc := ""
		if d := arg(args, 0); !d.IsUndefined() {
			desc = r.toStringValue(d)
		}
		sym, err := value.NewJsSymbol(r.c, desc)
		if err != nil {
			return value.Undef, err
		}
		return value.NewSymbol(sym), nil
	})
	if err != nil {
		return err
	}
	props, err := r.newObject(r.FunctionProto)
	if err != nil {
		return err
	}
	fn.SetProps(props)
	if err := r.dataProp(props, "iterator", value.NewSymbol(iterSym)); err != nil {
		return err
	}
	r.interp.SetIteratorKey(value.SymbolKey(iterSym))
	return r.global("Symbol", value.NewFunction(fn))
}
