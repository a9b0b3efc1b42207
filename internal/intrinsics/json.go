package intrinsics

import (
	"strconv"
	"strings"

	"github.com/otterjs/otter/internal/value"
)

// initJSON builds the JSON namespace (parse/stringify). Grounded on the
// plain recursive-descent/recursive-print structure any stdlib-free JSON
// implementation takes; stdlib encoding/json is not reachable here since
// it operates on Go types, not on this engine's Value union, so the
// parser/printer below walk the grammar directly (see DESIGN.md for why
// this one corner of the realm is hand-rolled rather than library-backed).
func (r *Realm) initJSON() error {
	obj, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}
	if err := r.method(obj, "stringify", r.jsonStringify); err != nil {
		return err
	}
	if err := r.method(obj, "parse", r.jsonParse); err != nil {
		return err
	}
	return r.global("JSON", value.NewObject(obj))
}

func (r *Realm) jsonStringify(this value.Value, args []value.Value) (value.Value, error) {
	var sb strings.Builder
	if !r.jsonWrite(&sb, arg(args, 0)) {
		return value.Undef, nil
	}
	return r.string(sb.String()), nil
}

// jsonWrite reports false for values JSON.stringify must drop (undefined,
// functions, symbols) so a caller skipping an object member can tell a
// "wrote nothing" result from an empty string.
func (r *Realm) jsonWrite(sb *strings.Builder, v value.Value) bool {
	switch v.Kind() {
	case value.Undefined, value.Function, value.Symbol:
		return false
	case value.Null:
		sb.WriteString("null")
	case value.Boolean:
		if v.ToBool() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.Int32, value.Number:
		sb.WriteString(formatNumber(v.ToNumber()))
	case value.String:
		s, _ := v.AsString()
		sb.WriteString(strconv.Quote(s.String()))
	case value.Object:
		o, _ := v.AsObject()
		if o.IsArray() {
			sb.WriteByte('[')
			for i, el := range o.Elements() {
				if i > 0 {
					sb.WriteByte(',')
				}
				if !r.jsonWrite(sb, el) {
					sb.WriteString("null")
				}
			}
			sb.WriteByte(']')
			return true
		}
		sb.WriteByte('{')
		first := true
		for _, k := range o.OwnKeys() {
			if k.Kind() != value.KeyString {
				continue
			}
			desc, _ := o.GetOwnProperty(k)
			if !desc.Attrs().Enumerable {
				continue
			}
			var valBuf strings.Builder
			if !r.jsonWrite(&valBuf, desc.Value()) {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteString(strconv.Quote(k.StringValue()))
			sb.WriteByte(':')
			sb.WriteString(valBuf.String())
		}
		sb.WriteByte('}')
	default:
		return false
	}
	return true
}

// jsonParse is a minimal recursive-descent JSON parser producing engine
// Values directly, so a parsed object is immediately usable by script
// without a Go-type round trip.
func (r *Realm) jsonParse(this value.Value, args []value.Value) (value.Value, error) {
	s := r.toStringValue(arg(args, 0))
	p := &jsonParser{src: s, r: r}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return value.Undef, value.Throw(r.newError("SyntaxError", err.Error()))
	}
	return v, nil
}

type jsonParser struct {
	src string
	pos int
	r   *Realm
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue() (value.Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return value.Undef, errUnexpectedEnd
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return value.Undef, err
		}
		return p.r.string(s), nil
	case strings.HasPrefix(p.src[p.pos:], "true"):
		p.pos += 4
		return value.True, nil
	case strings.HasPrefix(p.src[p.pos:], "false"):
		p.pos += 5
		return value.False, nil
	case strings.HasPrefix(p.src[p.pos:], "null"):
		p.pos += 4
		return value.Nul, nil
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) parseObject() (value.Value, error) {
	p.pos++
	obj, err := p.r.newObject(p.r.ObjectProto)
	if err != nil {
		return value.Undef, err
	}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return value.NewObject(obj), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return value.Undef, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return value.Undef, errExpectedColon
		}
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return value.Undef, err
		}
		if err := obj.DefineOwnProperty(p.r.c, value.StringKey(key), value.NewDataProperty(v, value.ArrayElementAttrs())); err != nil {
			return value.Undef, err
		}
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return value.Undef, errExpectedBrace
	}
	p.pos++
	return value.NewObject(obj), nil
}

func (p *jsonParser) parseArray() (value.Value, error) {
	p.pos++
	var elems []value.Value
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return p.r.newArray(nil)
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return value.Undef, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return value.Undef, errExpectedBracket
	}
	p.pos++
	return p.r.newArray(elems)
}

func (p *jsonParser) parseString() (string, error) {
	if p.pos >= len(p.src) || p.src[p.pos] != '"' {
		return "", errExpectedString
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		if p.src[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", errUnexpectedEnd
	}
	raw := p.src[start : p.pos+1]
	p.pos++
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", err
	}
	return s, nil
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.ContainsRune("-+.eE0123456789", rune(p.src[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return value.Undef, errUnexpectedToken
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return value.Undef, err
	}
	return value.NewNumber(n), nil
}

type jsonError string

func (e jsonError) Error() string { return string(e) }

const (
	errUnexpectedEnd   jsonError = "unexpected end of JSON input"
	errExpectedColon   jsonError = "expected ':' in JSON object"
	errExpectedBrace   jsonError = "expected '}' in JSON object"
	errExpectedBracket jsonError = "expected ']' in JSON array"
	errExpectedString  jsonError = "expected string"
	errUnexpectedToken jsonError = "unexpected token in JSON"
)
