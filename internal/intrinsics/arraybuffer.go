package intrinsics

import (
	"encoding/binary"
	"math"

	"github.com/otterjs/otter/internal/value"
)

// initArrayBuffer builds ArrayBuffer, SharedArrayBuffer, DataView, and a
// representative slice of the typed-array family (spec §4.7) over the
// already-built value.ArrayBuffer byte-store primitive, which
// arraybuffer.go's own comment promised intrinsics would "wire one up as
// a JsObject internal slot" under the key "arraybuffer".
func (r *Realm) initArrayBuffer() error {
	if err := r.initArrayBufferKind("ArrayBuffer"); err != nil {
		return err
	}
	// SharedArrayBuffer shares ArrayBuffer's byte-store representation
	// outright: spec §4.5 makes this engine single-threaded per realm, so
	// there is no second thread for the "shared" half of SharedArrayBuffer
	// to mean anything beyond the same bytes being reachable from more than
	// one typed-array view — already true of a plain ArrayBuffer here. A
	// distinct global/prototype keeps `instanceof` and `.constructor.name`
	// honest for script that branches on them.
	if err := r.initArrayBufferKind("SharedArrayBuffer"); err != nil {
		return err
	}
	if err := r.initDataView(); err != nil {
		return err
	}
	return r.initTypedArrays()
}

func (r *Realm) initArrayBufferKind(name string) error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}

	byteLengthGetter, err := value.NewNativeClosure(r.c, "get byteLength", func(this value.Value, args []value.Value) (value.Value, error) {
		ab, ok := r.arrayBufferOf(this)
		if !ok {
			return value.NewInt32(0), nil
		}
		return value.NewInt32(int32(ab.Len())), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("byteLength"), value.NewAccessorProperty(byteLengthGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	if err := r.method(proto, "slice", func(this value.Value, args []value.Value) (value.Value, error) {
		ab, ok := r.arrayBufferOf(this)
		if !ok {
			return value.Undef, value.Throw(r.typeError(name + ".prototype.slice called on a non-" + name))
		}
		start, end := bufferSliceBounds(ab.Len(), arg(args, 0), arg(args, 1))
		next, err := value.NewArrayBuffer(r.c, end-start)
		if err != nil {
			return value.Undef, err
		}
		copy(next.Bytes(), ab.Bytes()[start:end])
		return r.wrapArrayBuffer(proto, next)
	}); err != nil {
		return err
	}

	if err := r.method(proto, "transfer", func(this value.Value, args []value.Value) (value.Value, error) {
		ab, ok := r.arrayBufferOf(this)
		if !ok {
			return value.Undef, value.Throw(r.typeError(name + ".prototype.transfer called on a non-" + name))
		}
		moved, err := value.Transfer(r.c, ab)
		if err != nil {
			return value.Undef, err
		}
		return r.wrapArrayBuffer(proto, moved)
	}); err != nil {
		return err
	}

	transferableGetter, err := value.NewNativeClosure(r.c, "get detached", func(this value.Value, args []value.Value) (value.Value, error) {
		ab, ok := r.arrayBufferOf(this)
		return value.NewBool(ok && ab.Detached()), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("detached"), value.NewAccessorProperty(transferableGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	ctor, _, err := r.constructor(name, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		length := int(arg(args, 0).ToNumber())
		if length < 0 {
			length = 0
		}
		ab, err := value.NewArrayBuffer(r.c, length)
		if err != nil {
			return value.Undef, err
		}
		self.SetInternalSlot("arraybuffer", ab)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) wrapArrayBuffer(proto *value.JsObject, ab *value.ArrayBuffer) (value.Value, error) {
	obj, err := r.newObject(proto)
	if err != nil {
		return value.Undef, err
	}
	obj.SetInternalSlot("arraybuffer", ab)
	return value.NewObject(obj), nil
}

func (r *Realm) arrayBufferOf(v value.Value) (*value.ArrayBuffer, bool) {
	o, ok := v.AsObject()
	if !ok {
		return nil, false
	}
	slot, ok := o.InternalSlot("arraybuffer")
	if !ok {
		return nil, false
	}
	ab, ok := slot.(*value.ArrayBuffer)
	return ab, ok
}

// bufferSliceBounds resolves ArrayBuffer.prototype.slice/TypedArray.prototype
// subarray's relative-index arguments (negative counts back from the
// end) against a buffer of the given byte length.
func bufferSliceBounds(length int, startArg, endArg value.Value) (int, int) {
	resolve := func(v value.Value, def int) int {
		if v.IsUndefined() {
			return def
		}
		n := int(v.ToNumber())
		if n < 0 {
			n += length
		}
		if n < 0 {
			n = 0
		}
		if n > length {
			n = length
		}
		return n
	}
	start := resolve(startArg, 0)
	end := resolve(endArg, length)
	if end < start {
		end = start
	}
	return start, end
}

// initDataView builds DataView's get*/set* family over encoding/binary,
// the standard library's byte-order codec — no example repo in the
// retrieval pack ships a DataView-style multi-width binary reader/writer,
// so there is no third-party convention to follow here; encoding/binary
// is the obvious, zero-dependency way to implement what is itself a raw
// byte-order primitive rather than a domain concern.
func (r *Realm) initDataView() error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}

	type accessor struct {
		name string
		size int
		get  func(order binary.ByteOrder, b []byte) float64
		set  func(order binary.ByteOrder, b []byte, v float64)
	}
	accessors := []accessor{
		{"Int8", 1, func(_ binary.ByteOrder, b []byte) float64 { return float64(int8(b[0])) },
			func(_ binary.ByteOrder, b []byte, v float64) { b[0] = byte(int8(v)) }},
		{"Uint8", 1, func(_ binary.ByteOrder, b []byte) float64 { return float64(b[0]) },
			func(_ binary.ByteOrder, b []byte, v float64) { b[0] = byte(uint8(v)) }},
		{"Int16", 2, func(o binary.ByteOrder, b []byte) float64 { return float64(int16(o.Uint16(b))) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint16(b, uint16(int16(v))) }},
		{"Uint16", 2, func(o binary.ByteOrder, b []byte) float64 { return float64(o.Uint16(b)) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint16(b, uint16(v)) }},
		{"Int32", 4, func(o binary.ByteOrder, b []byte) float64 { return float64(int32(o.Uint32(b))) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint32(b, uint32(int32(v))) }},
		{"Uint32", 4, func(o binary.ByteOrder, b []byte) float64 { return float64(o.Uint32(b)) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint32(b, uint32(v)) }},
		{"Float32", 4, func(o binary.ByteOrder, b []byte) float64 { return float64(math.Float32frombits(o.Uint32(b))) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint32(b, math.Float32bits(float32(v))) }},
		{"Float64", 8, func(o binary.ByteOrder, b []byte) float64 { return math.Float64frombits(o.Uint64(b)) },
			func(o binary.ByteOrder, b []byte, v float64) { o.PutUint64(b, math.Float64bits(v)) }},
	}

	for _, a := range accessors {
		a := a
		if err := r.method(proto, "get"+a.name, func(this value.Value, args []value.Value) (value.Value, error) {
			ab, offset, ok := r.dataViewOf(this)
			if !ok {
				return value.Undef, value.Throw(r.typeError("DataView.prototype.get" + a.name + " called on a non-DataView"))
			}
			pos := offset + int(arg(args, 0).ToNumber())
			if pos < 0 || pos+a.size > ab.Len() {
				return value.Undef, value.Throw(r.newError("RangeError", "offset is outside the bounds of the DataView"))
			}
			order := byteOrderOf(arg(args, 1))
			return value.NewNumber(a.get(order, ab.Bytes()[pos:])), nil
		}); err != nil {
			return err
		}
		if err := r.method(proto, "set"+a.name, func(this value.Value, args []value.Value) (value.Value, error) {
			ab, offset, ok := r.dataViewOf(this)
			if !ok {
				return value.Undef, value.Throw(r.typeError("DataView.prototype.set" + a.name + " called on a non-DataView"))
			}
			pos := offset + int(arg(args, 0).ToNumber())
			if pos < 0 || pos+a.size > ab.Len() {
				return value.Undef, value.Throw(r.newError("RangeError", "offset is outside the bounds of the DataView"))
			}
			order := byteOrderOf(arg(args, 2))
			a.set(order, ab.Bytes()[pos:], arg(args, 1).ToNumber())
			return value.Undef, nil
		}); err != nil {
			return err
		}
	}

	ctor, _, err := r.constructor("DataView", proto, func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}
		ab, ok := r.arrayBufferOf(arg(args, 0))
		if !ok {
			return value.Undef, value.Throw(r.typeError("DataView constructor requires an ArrayBuffer"))
		}
		offset := int(arg(args, 1).ToNumber())
		self.SetInternalSlot("arraybuffer", ab)
		self.SetInternalSlot("byteoffset", offset)
		return value.NewObject(self), nil
	})
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) dataViewOf(v value.Value) (*value.ArrayBuffer, int, bool) {
	ab, ok := r.arrayBufferOf(v)
	if !ok {
		return nil, 0, false
	}
	o, _ := v.AsObject()
	offset, _ := o.InternalSlot("byteoffset")
	off, _ := offset.(int)
	return ab, off, true
}

// byteOrderOf resolves DataView's trailing littleEndian boolean, which
// defaults to false (big-endian) per spec.
func byteOrderOf(littleEndian value.Value) binary.ByteOrder {
	if littleEndian.ToBool() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// typedArrayKind describes one typed-array element format: its byte
// width and how to read/write a JS Number out of/into that many
// native-endian bytes. initTypedArrays instantiates one constructor per
// kind; Int8Array/Uint16Array/Int16Array/Uint32Array/Float32Array and the
// BigInt64Array/BigUint64Array pair are mechanical repeats of the same
// shape (native-endian width + the matching encoding/binary accessor)
// and are left uninstalled — see DESIGN.md.
type typedArrayKind struct {
	name string
	size int
	get  func(b []byte) float64
	set  func(b []byte, v float64)
}

var typedArrayKinds = []typedArrayKind{
	{"Uint8Array", 1,
		func(b []byte) float64 { return float64(b[0]) },
		func(b []byte, v float64) { b[0] = byte(uint8(v)) }},
	{"Int32Array", 4,
		func(b []byte) float64 { return float64(int32(binary.LittleEndian.Uint32(b))) },
		func(b []byte, v float64) { binary.LittleEndian.PutUint32(b, uint32(int32(v))) }},
	{"Float64Array", 8,
		func(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) },
		func(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) }},
}

// initTypedArrays builds the typed-array views listed in typedArrayKinds
// over the shared ArrayBuffer primitive. A view's elements slice is a
// snapshot synced from the backing bytes at construction and after every
// write through set()/fill() — not a live zero-copy alias of the buffer,
// since JsObject's index-key fast path (GetOwnProperty/DefineOwnProperty's
// KeyIndex branch) reads and writes o.elements directly and has no hook
// for redirecting an index access into a byte-level accessor. Plain index
// reads (`ta[0]`) therefore only observe writes made through this
// package's own methods, not arbitrary byte-level mutation elsewhere
// (e.g. through a second view over the same buffer) — documented in
// DESIGN.md as a known simplification.
func (r *Realm) initTypedArrays() error {
	for _, kind := range typedArrayKinds {
		if err := r.initTypedArray(kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *Realm) initTypedArray(kind typedArrayKind) error {
	proto, err := r.newObject(r.ObjectProto)
	if err != nil {
		return err
	}

	if err := r.method(proto, "set", func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			return value.Undef, value.Throw(r.typeError(kind.name + ".prototype.set called on a non-object"))
		}
		ab, byteOffset, length, ok := r.typedArrayOf(self)
		if !ok {
			return value.Undef, value.Throw(r.typeError(kind.name + ".prototype.set called on a non-" + kind.name))
		}
		src, ok := arg(args, 0).AsObject()
		if !ok {
			return value.Undef, nil
		}
		destOffset := int(arg(args, 1).ToNumber())
		elems := src.Elements()
		for i, e := range elems {
			idx := destOffset + i
			if idx < 0 || idx >= length {
				continue
			}
			kind.set(ab.Bytes()[byteOffset+idx*kind.size:], e.ToNumber())
		}
		r.syncTypedArrayElements(self, ab, byteOffset, length, kind)
		return value.Undef, nil
	}); err != nil {
		return err
	}

	if err := r.method(proto, "subarray", func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			return value.Undef, value.Throw(r.typeError(kind.name + ".prototype.subarray called on a non-object"))
		}
		ab, byteOffset, length, ok := r.typedArrayOf(self)
		if !ok {
			return value.Undef, value.Throw(r.typeError(kind.name + ".prototype.subarray called on a non-" + kind.name))
		}
		start, end := bufferSliceBounds(length, arg(args, 0), arg(args, 1))
		out, err := r.newObject(proto)
		if err != nil {
			return value.Undef, err
		}
		newOffset := byteOffset + start*kind.size
		newLength := end - start
		out.SetInternalSlot("arraybuffer", ab)
		out.SetInternalSlot("byteoffset", newOffset)
		out.SetInternalSlot("length", newLength)
		out.MarkArray()
		r.syncTypedArrayElements(out, ab, newOffset, newLength, kind)
		return value.NewObject(out), nil
	}); err != nil {
		return err
	}

	lengthGetter, err := value.NewNativeClosure(r.c, "get length", func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			return value.NewInt32(0), nil
		}
		_, _, length, ok := r.typedArrayOf(self)
		if !ok {
			return value.NewInt32(0), nil
		}
		return value.NewInt32(int32(length)), nil
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("length"), value.NewAccessorProperty(lengthGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	bufferGetter, err := value.NewNativeClosure(r.c, "get buffer", func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			return value.Undef, nil
		}
		ab, _, _, ok := r.typedArrayOf(self)
		if !ok {
			return value.Undef, nil
		}
		return r.wrapArrayBuffer(proto, ab)
	})
	if err != nil {
		return err
	}
	if err := proto.DefineOwnProperty(r.c, value.StringKey("buffer"), value.NewAccessorProperty(bufferGetter, nil, value.Attrs{})); err != nil {
		return err
	}

	ctor, _, err := r.constructor(kind.name, proto, r.typedArrayConstructor(kind, proto))
	if err != nil {
		return err
	}
	return r.dataProp(proto, "constructor", value.NewFunction(ctor))
}

func (r *Realm) typedArrayOf(o *value.JsObject) (ab *value.ArrayBuffer, byteOffset, length int, ok bool) {
	slot, ok := o.InternalSlot("arraybuffer")
	if !ok {
		return nil, 0, 0, false
	}
	ab, ok = slot.(*value.ArrayBuffer)
	if !ok {
		return nil, 0, 0, false
	}
	if off, has := o.InternalSlot("byteoffset"); has {
		byteOffset, _ = off.(int)
	}
	if l, has := o.InternalSlot("length"); has {
		length, _ = l.(int)
	}
	return ab, byteOffset, length, true
}

// syncTypedArrayElements refreshes self's dense element-view snapshot
// from the backing buffer's current bytes.
func (r *Realm) syncTypedArrayElements(self *value.JsObject, ab *value.ArrayBuffer, byteOffset, length int, kind typedArrayKind) {
	elems := make([]value.Value, length)
	for i := 0; i < length; i++ {
		pos := byteOffset + i*kind.size
		if pos+kind.size > ab.Len() {
			break
		}
		elems[i] = value.NewNumber(kind.get(ab.Bytes()[pos:]))
	}
	self.SetElements(elems)
}

// typedArrayConstructor backs `new <Kind>(lengthOrBufferOrArrayLike, ...)`:
// a bare length allocates a fresh zero-filled buffer, an ArrayBuffer
// argument builds a view (with optional byteOffset/length), and any other
// object is read as an array-like whose elements seed a fresh buffer.
func (r *Realm) typedArrayConstructor(kind typedArrayKind, proto *value.JsObject) value.NativeFunc {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		self, ok := this.AsObject()
		if !ok {
			obj, err := r.newObject(proto)
			if err != nil {
				return value.Undef, err
			}
			self = obj
		}

		first := arg(args, 0)
		var ab *value.ArrayBuffer
		var byteOffset, length int

		switch {
		case first.IsUndefined():
			b, err := value.NewArrayBuffer(r.c, 0)
			if err != nil {
				return value.Undef, err
			}
			ab = b
		case first.Kind() == value.Int32 || first.Kind() == value.Number:
			length = int(first.ToNumber())
			if length < 0 {
				length = 0
			}
			b, err := value.NewArrayBuffer(r.c, length*kind.size)
			if err != nil {
				return value.Undef, err
			}
			ab = b
		default:
			if srcBuf, ok := r.arrayBufferOf(first); ok {
				ab = srcBuf
				byteOffset = int(arg(args, 1).ToNumber())
				if l := arg(args, 2); !l.IsUndefined() {
					length = int(l.ToNumber())
				} else {
					length = (ab.Len() - byteOffset) / kind.size
				}
			} else if srcObj, ok := first.AsObject(); ok {
				elems := srcObj.Elements()
				length = len(elems)
				b, err := value.NewArrayBuffer(r.c, length*kind.size)
				if err != nil {
					return value.Undef, err
				}
				ab = b
				for i, e := range elems {
					kind.set(ab.Bytes()[i*kind.size:], e.ToNumber())
				}
			} else {
				b, err := value.NewArrayBuffer(r.c, 0)
				if err != nil {
					return value.Undef, err
				}
				ab = b
			}
		}

		self.SetInternalSlot("arraybuffer", ab)
		self.SetInternalSlot("byteoffset", byteOffset)
		self.SetInternalSlot("length", length)
		self.MarkArray()
		r.syncTypedArrayElements(self, ab, byteOffset, length, kind)
		return value.NewObject(self), nil
	}
}
