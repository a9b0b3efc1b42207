package intrinsics

import (
	"fmt"
	"strings"

	"github.com/otterjs/otter/internal/value"
)

// initConsole installs a console global binding, the one intrinsic every
// embedding host is expected to override (spec §6's host-binding
// surface) — this default just writes to stdout via fmt, the same
// "obvious, replaceable default" role the teacher's own default logger
// config plays before a host installs its own.
func (r *Realm) initConsole() error {
	c, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		level := level
		if err := r.method(c, level, func(this value.Value, args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = r.inspect(a)
			}
			fmt.Println(strings.Join(parts, " "))
			return value.Undef, nil
		}); err != nil {
			return err
		}
	}
	return r.global("console", value.NewObject(c))
}

// inspect renders v the way console.log displays an argument: strings
// print bare (no surrounding quotes), everything else uses its
// toString-equivalent display form.
func (r *Realm) inspect(v value.Value) string {
	if s, ok := v.AsString(); ok {
		return s.String()
	}
	if o, ok := v.AsObject(); ok {
		if o.IsArray() {
			parts := make([]string, 0, len(o.Elements()))
			for _, el := range o.Elements() {
				parts = append(parts, r.inspectQuoted(el))
			}
			return "[ " + strings.Join(parts, ", ") + " ]"
		}
		var parts []string
		for _, k := range o.OwnKeys() {
			if k.Kind() != value.KeyString {
				continue
			}
			desc, _ := o.GetOwnProperty(k)
			if !desc.Attrs().Enumerable {
				continue
			}
			parts = append(parts, k.StringValue()+": "+r.inspectQuoted(desc.Value()))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return r.toStringValue(v)
}

func (r *Realm) inspectQuoted(v value.Value) string {
	if s, ok := v.AsString(); ok {
		return "'" + s.String() + "'"
	}
	return r.inspect(v)
}
