package object

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/rhelmot/objectively/gdict"
	"github.com/rhelmot/objectively/gil"
)

func pointerOf(o *Object) unsafe.Pointer {
	return unsafe.Pointer(o)
}

func floatKey(f float64) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
	return string(buf[:])
}

// lookupDunder is a narrow alias of GetAttr used by Hash/Eq so they don't
// surface an AttributeError of their own when a dunder is simply absent.
func lookupDunder(owner *gil.Owner, o *Object, name string) (*Object, bool) {
	v, exc := GetAttr(owner, o, name)
	if exc != nil {
		return nil, false
	}
	return v, true
}

// attrsOf returns the attribute dict backing o, if o's kind carries one.
func attrsOf(owner *gil.Owner, o *Object) (*AttrDict, bool) {
	switch o.kind {
	case KindBasic:
		return o.basic.RO(owner).Attrs, true
	case KindType:
		return o.typeVal.RO(owner).Attrs, true
	default:
		return nil, false
	}
}

// GetAttr implements §4.4's get_attr: check o's own attribute dict (if
// any), then walk the type chain via base_class, returning the first
// match. Returns AttributeError(name) if nothing is found.
func GetAttr(owner *gil.Owner, o *Object, name string) (*Object, *Object) {
	if attrs, ok := attrsOf(owner, o); ok {
		if v, fault := attrs.Get(name); fault == nil {
			return v, nil
		}
	}
	for t := o.typ; t != nil; t = typeBase(owner, t) {
		if v, fault := t.typeVal.RO(owner).Attrs.Get(name); fault == nil {
			return v, nil
		}
	}
	return nil, NewAttributeError(name)
}

// SetAttr implements §4.4's set/delete contract: Basic objects and Types
// (for class-body mutation) permit arbitrary attribute writes; every
// other kind is immutable and rejects writes with AttributeError.
func SetAttr(owner *gil.Owner, o *Object, name string, value *Object) *Object {
	attrs, ok := attrsOf(owner, o)
	if !ok {
		return NewAttributeError(name)
	}
	if fault := attrs.Insert(name, value); fault != nil {
		return faultToException(fault)
	}
	return nil
}

// DelAttr removes an attribute from o's own dict.
func DelAttr(owner *gil.Owner, o *Object, name string) *Object {
	attrs, ok := attrsOf(owner, o)
	if !ok {
		return NewAttributeError(name)
	}
	if _, fault := attrs.Pop(name); fault != nil {
		return NewAttributeError(name)
	}
	return nil
}

// Call implements §4.4's call contract. Every callable is a Function (or
// a Type, whose call constructs an instance). Non-callables fail with
// TypeError("Cannot call").
func Call(owner *gil.Owner, callee *Object, receiver *Object, args *Object) (*Object, *Object) {
	switch callee.kind {
	case KindFunction:
		return callee.fnVal.Native(owner, callee.fnVal.Data, receiver, args)
	case KindType:
		td := callee.typeVal.RO(owner)
		return td.Constructor(owner, callee, args)
	default:
		return nil, NewTypeError("Cannot call")
	}
}

// CallMethod implements §4.4's call_method: get_attr then call. A
// missing method surfaces AttributeError.
func CallMethod(owner *gil.Owner, o *Object, name string, args *Object) (*Object, *Object) {
	fn, aerr := GetAttr(owner, o, name)
	if aerr != nil {
		return nil, aerr
	}
	return Call(owner, fn, o, args)
}

// Eq dispatches to __eq__, which must return a Bool; any other result
// fails with TypeError. Int/Float/Bytes/Bool/None compare by value;
// Tuple compares element-wise; everything else falls back to identity
// if no __eq__ is defined.
func Eq(owner *gil.Owner, a, b *Object) (bool, *Object) {
	if a == b {
		return true, nil
	}
	if a.kind != b.kind {
		return false, nil
	}
	switch a.kind {
	case KindInt:
		return a.intVal == b.intVal, nil
	case KindFloat:
		return a.floatVal == b.floatVal, nil
	case KindBytes:
		return string(a.bytesVal) == string(b.bytesVal), nil
	case KindBool:
		return a.boolVal == b.boolVal, nil
	case KindNone:
		return true, nil
	case KindTuple:
		if len(a.tupleVal) != len(b.tupleVal) {
			return false, nil
		}
		for i := range a.tupleVal {
			eq, exc := Eq(owner, a.tupleVal[i], b.tupleVal[i])
			if exc != nil {
				return false, exc
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	default:
		if fn, found := lookupDunder(owner, a, "__eq__"); found {
			result, exc := Call(owner, fn, a, NewTuple(b))
			if exc != nil {
				return false, exc
			}
			if result.kind != KindBool {
				return false, NewTypeError("__eq__ did not return a bool")
			}
			return result.boolVal, nil
		}
		return false, nil
	}
}

// GetItem implements subscript read (§4.3, §4.4): d[k]. A missing key
// surfaces KeyError(k); any other dict fault is translated normally.
func GetItem(owner *gil.Owner, d *Object, k *Object) (*Object, *Object) {
	if d.kind != KindDict {
		return nil, NewTypeError("object is not subscriptable")
	}
	v, fault := d.dictVal.RW(owner).Get(k)
	if fault != nil {
		if fault.Kind == gdict.FaultKeyMissing {
			return nil, NewKeyError(k)
		}
		return nil, faultToException(fault)
	}
	return v, nil
}

// SetItem implements subscript write: d[k] = v.
func SetItem(owner *gil.Owner, d *Object, k *Object, v *Object) *Object {
	if d.kind != KindDict {
		return NewTypeError("object does not support item assignment")
	}
	if fault := d.dictVal.RW(owner).Insert(k, v); fault != nil {
		return faultToException(fault)
	}
	return nil
}

// DelItem implements subscript delete: del d[k].
func DelItem(owner *gil.Owner, d *Object, k *Object) *Object {
	if d.kind != KindDict {
		return NewTypeError("object does not support item deletion")
	}
	if _, fault := d.dictVal.RW(owner).Pop(k); fault != nil {
		if fault.Kind == gdict.FaultKeyMissing {
			return NewKeyError(k)
		}
		return faultToException(fault)
	}
	return nil
}

// KV is a single key/value pair read out of a Dict object.
type KV struct {
	Key   *Object
	Value *Object
}

// DictItems returns d's entries in table order, for callers (e.g. the
// interpreter's CLASS opcode, which projects a class-body dict into a
// Type's attribute namespace) that need every pair at once rather than
// one key at a time.
func DictItems(owner *gil.Owner, d *Object) ([]KV, *Object) {
	if d.kind != KindDict {
		return nil, NewTypeError("expected a dict")
	}
	it := d.dictVal.RW(owner).Iter()
	var items []KV
	for {
		k, v, ok, fault := it.Next()
		if fault != nil {
			return nil, faultToException(fault)
		}
		if !ok {
			return items, nil
		}
		items = append(items, KV{Key: k, Value: v})
	}
}

func dictHash(o *Object) (uint64, error) {
	h, exc := Hash(currentOwner(), o)
	if exc != nil {
		return 0, &excError{exc: exc}
	}
	return h, nil
}

func dictEq(a, b *Object) (bool, error) {
	eq, exc := Eq(currentOwner(), a, b)
	if exc != nil {
		return false, &excError{exc: exc}
	}
	return eq, nil
}

// excError wraps a *Object exception value as a Go error so it can cross
// gdict's generic HashFunc/EqFunc boundary (which speaks plain `error`);
// faultToException unwraps it back out on the way back.
type excError struct{ exc *Object }

func (e *excError) Error() string { return "exception during hash/eq callback" }

// faultToException translates a *gdict.Fault into the matching *Object
// exception value (§4.3, §7): a wrapped callback exception is returned
// unchanged, FaultMutated becomes RuntimeError, and FaultOutOfMemory
// becomes the preallocated MemoryError.
func faultToException(fault *gdict.Fault) *Object {
	if ee, ok := fault.Err.(*excError); ok {
		return ee.exc
	}
	switch fault.Kind {
	case gdict.FaultOutOfMemory:
		return MemoryError()
	case gdict.FaultMutated:
		return NewRuntimeError(fault.Msg)
	default:
		return NewRuntimeError(fault.Msg)
	}
}
