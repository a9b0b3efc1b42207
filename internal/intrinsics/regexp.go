package intrinsics

import (
	"regexp"

	"github.com/otterjs/otter/internal/value"
)

// initRegExp builds RegExp.prototype/RegExp backed by the Go standard
// library's RE2 engine (stdlib regexp). Matches the stdlib-regexp
// decision already made for internal/module's import scanning — no pack
// example wires a third-party (PCRE/Oniguruma-compatible) regex engine,
// and RE2's lack of backreferences/lookaround is an accepted gap, not a
// silent one (see DESIGN.md).
func (r *Realm) initRegExp() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	r.RegExpProto = proto

	if err := r.method(proto, "test", r.regexpTest); err != nil {
		return err
	}
	if err := r.method(proto, "exec", r.regexpExec); err != nil {
		return err
	}
	if err := r.method(proto, "toString", func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.AsObject()
		if !ok {
			return r.string("/(?:)/"), nil
		}
		src, _ := o.InternalSlot("source")
		s, _ := src.(string)
		return r.string("/" + s + "/"), nil
	}); err != nil {
		return err
	}

	ctor, _, err := r.constructor("RegExp", proto, r.regexpConstruct)
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) regexpConstruct(this value.Value, args []value.Value) (value.Value, error) {
	pattern := r.toStringValue(arg(args, 0))
	flags := ""
	if f := arg(args, 1); !f.IsUndefined() {
		flags = r.toStringValue(f)
	}
	goPattern := pattern
	if containsRune(flags, 'i') {
		goPattern = "(?i)" + goPattern
	}
	if containsRune(flags, 's') {
		goPattern = "(?s)" + goPattern
	}
	if containsRune(flags, 'm') {
		goPattern = "(?m)" + goPattern
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return value.Undef, value.Throw(r.newError("SyntaxError", "Invalid regular expression: "+err.Error()))
	}

	self, ok := this.AsObject()
	if !ok {
		obj, err := r.newObject(r.RegExpProto)
		if err != nil {
			return value.Undef, err
		}
		self = obj
	}
	self.SetInternalSlot("regexp", re)
	self.SetInternalSlot("source", pattern)
	if err := self.DefineOwnProperty(r.c, value.StringKey("source"), value.NewDataProperty(r.string(pattern), value.Attrs{Configurable: false})); err != nil {
		return value.Undef, err
	}
	if err := self.DefineOwnProperty(r.c, value.StringKey("flags"), value.NewDataProperty(r.string(flags), value.Attrs{Configurable: false})); err != nil {
		return value.Undef, err
	}
	if err := self.DefineOwnProperty(r.c, value.StringKey("lastIndex"), value.NewDataProperty(value.NewInt32(0), value.ArrayElementAttrs())); err != nil {
		return value.Undef, err
	}
	return value.NewObject(self), nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

func (r *Realm) regexpOf(this value.Value) (*regexp.Regexp, bool) {
	o, ok := this.AsObject()
	if !ok {
		return nil, false
	}
	re, ok := o.InternalSlot("regexp")
	if !ok {
		return nil, false
	}
	compiled, ok := re.(*regexp.Regexp)
	return compiled, ok
}

func (r *Realm) regexpTest(this value.Value, args []value.Value) (value.Value, error) {
	re, ok := r.regexpOf(this)
	if !ok {
		return value.False, nil
	}
	return value.NewBool(re.MatchString(r.toStringValue(arg(args, 0)))), nil
}

func (r *Realm) regexpExec(this value.Value, args []value.Value) (value.Value, error) {
	re, ok := r.regexpOf(this)
	if !ok {
		return value.Nul, nil
	}
	s := r.toStringValue(arg(args, 0))
	match := re.FindStringSubmatchIndex(s)
	if match == nil {
		return value.Nul, nil
	}
	groups := make([]value.Value, 0, len(match)/2)
	for i := 0; i < len(match); i += 2 {
		if match[i] < 0 {
			groups = append(groups, value.Undef)
			continue
		}
		groups = append(groups, r.string(s[match[i]:match[i+1]]))
	}
	arr, err := r.newArray(groups)
	if err != nil {
		return value.Undef, err
	}
	if ao, ok := arr.AsObject(); ok {
		if err := ao.DefineOwnProperty(r.c, value.StringKey("index"), value.NewDataProperty(value.NewInt32(int32(match[0])), value.ArrayElementAttrs())); err != nil {
			return value.Undef, err
		}
	}
	return arr, nil
}
