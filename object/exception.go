package object

import "github.com/rhelmot/objectively/gil"

// Exception is the payload of a KindException object: a type pointer
// (one of the taxonomy below or a user subclass) plus an argument tuple.
type Exception struct {
	Type *Object
	Args *Object // always a Tuple
}

func newException(typ *Object, args ...*Object) *Object {
	return &Object{
		kind: KindException,
		typ:  typ,
		excVal: &Exception{
			Type: typ,
			Args: &Object{kind: KindTuple, typ: Global().TupleType, tupleVal: args},
		},
	}
}

func bytesArg(s string) *Object {
	return &Object{kind: KindBytes, typ: Global().BytesType, bytesVal: []byte(s)}
}

// NewTypeError builds a TypeError(msg) instance.
func NewTypeError(msg string) *Object {
	return newException(Global().TypeErrorType, bytesArg(msg))
}

// NewAttributeError builds an AttributeError(name) instance.
func NewAttributeError(name string) *Object {
	return newException(Global().AttributeErrorType, bytesArg(name))
}

// NewOverflowError builds an OverflowError(msg) instance.
func NewOverflowError(msg string) *Object {
	return newException(Global().OverflowErrorType, bytesArg(msg))
}

// NewRuntimeError builds a RuntimeError(msg) instance.
func NewRuntimeError(msg string) *Object {
	return newException(Global().RuntimeErrorType, bytesArg(msg))
}

// NewValueError builds a ValueError(msg) instance.
func NewValueError(msg string) *Object {
	return newException(Global().ValueErrorType, bytesArg(msg))
}

// NewKeyError builds a KeyError(key) instance; key is the missing key
// itself, not a message.
func NewKeyError(key *Object) *Object {
	return newException(Global().KeyErrorType, key)
}

// NewStopIteration builds a StopIteration() instance.
func NewStopIteration() *Object {
	return newException(Global().StopIterationType)
}

// MemoryError returns the preallocated out-of-memory singleton. Callers
// must never construct a fresh MemoryError: the whole point is that this
// path never allocates.
func MemoryError() *Object {
	return Global().MemoryError
}

// IsInstance reports whether o's type chain includes typ, walking
// base_class pointers (§4.5 "Exception classification at catch sites
// walks the base chain").
func IsInstance(owner *gil.Owner, o *Object, typ *Object) bool {
	cur := o.typ
	for cur != nil {
		if cur == typ {
			return true
		}
		cur = typeBase(owner, cur)
	}
	return false
}

func typeBase(owner *gil.Owner, t *Object) *Object {
	return t.typeVal.RO(owner).Base
}
