package object

import (
	"github.com/rhelmot/objectively/gdict"
	"github.com/rhelmot/objectively/gil"
)

// NewInt constructs an Int object.
func NewInt(v int64) *Object {
	return &Object{kind: KindInt, typ: Global().IntType, intVal: v}
}

// IntValue returns the payload of an Int object. Panics if o is not an
// Int; callers are expected to check Kind first.
func IntValue(o *Object) int64 {
	if o.kind != KindInt {
		panic("object: IntValue called on non-Int")
	}
	return o.intVal
}

// NewFloat constructs a Float object.
func NewFloat(v float64) *Object {
	return &Object{kind: KindFloat, typ: Global().FloatType, floatVal: v}
}

// FloatValue returns the payload of a Float object.
func FloatValue(o *Object) float64 {
	if o.kind != KindFloat {
		panic("object: FloatValue called on non-Float")
	}
	return o.floatVal
}

// NewBytes constructs a Bytes object. The slice is retained, not copied;
// callers must not mutate it afterward, matching the immutability
// contract in §3.
func NewBytes(b []byte) *Object {
	return &Object{kind: KindBytes, typ: Global().BytesType, bytesVal: b}
}

// BytesValue returns the payload of a Bytes object.
func BytesValue(o *Object) []byte {
	if o.kind != KindBytes {
		panic("object: BytesValue called on non-Bytes")
	}
	return o.bytesVal
}

// NewTuple constructs a Tuple object from elems. The slice is retained,
// not copied.
func NewTuple(elems ...*Object) *Object {
	return &Object{kind: KindTuple, typ: Global().TupleType, tupleVal: elems}
}

// TupleValues returns the elements of a Tuple object.
func TupleValues(o *Object) []*Object {
	if o.kind != KindTuple {
		panic("object: TupleValues called on non-Tuple")
	}
	return o.tupleVal
}

// Bool returns the canonical True or False singleton for v.
func Bool(v bool) *Object {
	if v {
		return Global().True
	}
	return Global().False
}

// BoolValue returns the payload of a Bool object.
func BoolValue(o *Object) bool {
	if o.kind != KindBool {
		panic("object: BoolValue called on non-Bool")
	}
	return o.boolVal
}

// None returns the canonical None singleton.
func None() *Object { return Global().None }

// NewDict constructs an empty Dict object. Keys are compared through the
// object protocol's dictHash/dictEq (§4.3), which dispatch to __hash__/
// __eq__ using the process's fixed Owner token (see Registry.owner).
func NewDict() *Object {
	d := &Object{kind: KindDict, typ: Global().DictType}
	d.dictVal = gil.NewHandle(*gdict.New[*Object, *Object](dictHash, dictEq))
	return d
}

// NewBasic constructs an instance of a user-defined (Basic) type.
func NewBasic(typ *Object) *Object {
	b := &Object{kind: KindBasic, typ: typ}
	b.basic = gil.NewHandle(Basic{Attrs: newAttrDict()})
	return b
}

// NewFunction constructs a Function object with the given native entry
// point and bound data.
func NewFunction(data *Object, native NativeFunc) *Object {
	return &Object{
		kind:  KindFunction,
		typ:   Global().FunctionType,
		fnVal: &Function{Data: data, Native: native},
	}
}
