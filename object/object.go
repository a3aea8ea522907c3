package object

import (
	"github.com/rhelmot/objectively/gdict"
	"github.com/rhelmot/objectively/gil"
)

// Object is the tagged union over the closed set of kinds. Each Object
// has a type pointer (itself an Object of KindType) and exactly one
// payload field populated, selected by Kind.
//
// Immutable kinds (None, Bool, Int, Float, Bytes, Tuple) store their
// payload directly; nothing about them can change after construction, so
// no gil.Handle is needed for them. Mutable kinds (Dict, Type, Basic) store
// their payload behind a gil.Handle so every read or write goes through an
// *gil.Owner, matching the single-token discipline of §4.1, and so
// package gcscan has a uniform managed reference to walk.
type Object struct {
	kind Kind
	typ  *Object // nil only for the bootstrap root, patched immediately after

	boolVal  bool
	intVal   int64
	floatVal float64
	bytesVal []byte
	tupleVal []*Object

	dictVal *gil.Handle[ObjectDict]
	fnVal   *Function
	typeVal *gil.Handle[TypeData]
	excVal  *Exception
	basic   *gil.Handle[Basic]
}

// ObjectDict is the user-visible dict payload: keys are arbitrary
// Objects compared via __hash__/__eq__.
type ObjectDict = gdict.Dict[*Object, *Object]

// AttrDict is the attribute namespace every Type and Basic instance
// carries. Attribute names are always bytes literals in the bytecode, so
// keying by decoded Go string avoids routing every attribute lookup
// through the user-hash protocol.
type AttrDict = gdict.Dict[string, *Object]

func newAttrDict() *AttrDict {
	return gdict.New[string, *Object](
		func(k string) (uint64, error) { return fnvHash(k), nil },
		func(a, b string) (bool, error) { return a == b, nil },
	)
}

// NativeFunc is a function's entry point: given the lock token, the
// function's bound/captured data, an optional receiver (nil for a plain
// function call), and an argument tuple, it returns either a value or an
// exception object (never both). Bytecode-defined functions are
// NativeFuncs built by package vm closing over its own interpreter loop.
type NativeFunc func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (value *Object, exc *Object)

// Function is the payload of a KindFunction object: bound/captured data
// plus a native entry point. Bytecode-defined functions are built by
// package vm, which closes Native over its own interpreter loop; package
// object never depends on package vm.
type Function struct {
	Data   *Object
	Native NativeFunc
}

// Constructor builds a new instance when a Type is called.
type Constructor func(owner *gil.Owner, self *Object, args *Object) (value *Object, exc *Object)

// TypeData is the mutable payload of a KindType object.
type TypeData struct {
	Name        string
	Base        *Object // nil only for the root type, object
	Constructor Constructor
	Attrs       *AttrDict
	Meta        *Object // optional metatype; nil means "type"
}

// Basic is the payload of a KindBasic object: a user-defined instance
// with an arbitrary attribute dict.
type Basic struct {
	Attrs *AttrDict
}

// Kind reports which variant o is.
func (o *Object) Kind() Kind { return o.kind }

// Type returns o's type pointer.
func (o *Object) Type() *Object { return o.typ }

// Is implements identity comparison ("is"): true iff a and b are the
// same Go pointer, i.e. the same Cell, matching §4.4's "raw addresses of
// the pointees" contract.
func Is(a, b *Object) bool { return a == b }

func newBase(kind Kind, typ *Object) *Object {
	return &Object{kind: kind, typ: typ}
}
