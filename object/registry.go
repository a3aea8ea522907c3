package object

import (
	"sync"

	"github.com/rhelmot/objectively/gil"
)

// Registry holds the process-wide built-in type singletons and the
// canonical None/True/False/MemoryError instances, initialized lazily
// and exactly once (§4.7). Re-initialization is forbidden; Global always
// returns the one Registry this process will ever have.
type Registry struct {
	TypeType   *Object
	ObjectType *Object

	TupleType    *Object
	IntType      *Object
	FloatType    *Object
	BoolType     *Object
	BytesType    *Object
	NoneTypeType *Object
	DictType     *Object
	FunctionType *Object

	ExceptionType      *Object
	TypeErrorType      *Object
	AttributeErrorType *Object
	OverflowErrorType  *Object
	RuntimeErrorType   *Object
	MemoryErrorType    *Object
	ValueErrorType     *Object
	KeyErrorType       *Object
	StopIterationType  *Object

	None  *Object
	True  *Object
	False *Object

	// MemoryError is the preallocated out-of-memory exception instance.
	// Allocation-failure paths clone this handle rather than construct a
	// new exception, since constructing one might itself need to
	// allocate (§4.5, §3 Lifecycles).
	MemoryError *Object

	// GIL is the process's single execution lock (§4.1, §5). Exactly one
	// exists; package vm embeds programs by calling Lock/Unlock/Yield
	// below rather than touching g.GIL directly.
	GIL *gil.GIL

	// owner is the one Owner token this process will ever have. Since a
	// process has exactly one GIL and exactly one Owner, and every path
	// that reaches internal helpers like dictHash/dictEq only runs while
	// the GIL is held, package-internal code may read this fixed pointer
	// directly instead of threading an *gil.Owner through every call to
	// gdict's generic hash/eq callback types (which take no such
	// parameter). Lock/Unlock/Yield below are still the only sanctioned
	// way to actually acquire/release the GIL.
	owner *gil.Owner
}

var (
	registry     *Registry
	registryOnce sync.Once
)

// Global returns the process's Registry, building it on first call.
func Global() *Registry {
	registryOnce.Do(func() {
		registry = bootstrap()
	})
	return registry
}

// Lock acquires the process's execution lock and returns the Owner
// token required by every Cell access.
func Lock() *gil.Owner { return Global().GIL.Lock() }

// Unlock releases the execution lock.
func Unlock() { Global().GIL.Unlock() }

// Yield releases the execution lock, runs f without holding it, then
// reacquires before returning. Use around blocking operations (sleep,
// native I/O).
func Yield(f func()) { Global().GIL.Yield(f) }

func newType(name string, base *Object) *Object {
	t := &Object{kind: KindType}
	t.typeVal = gil.NewHandle(TypeData{Name: name, Base: base, Attrs: newAttrDict()})
	return t
}

// bootstrap builds every built-in singleton, resolving the object/type
// cycle the way original_source/src/object.rs's lazy_static block does:
// construct with nil back-references, then patch under the process's one
// Owner (kept afterwards as Registry.owner) before anything is exposed (§9 Cyclic type graphs).
func bootstrap() *Registry {
	g := gil.New()
	owner := g.Lock()
	defer g.Unlock()

	r := &Registry{GIL: g, owner: owner}

	// object has no base (it is the chain root); type's base is object,
	// but we can't set that until object exists, so build object first.
	r.ObjectType = newType("object", nil)
	r.TypeType = newType("type", r.ObjectType)

	// Every type is an instance of `type`; object and type themselves are
	// patched in after construction since newType didn't know TypeType yet.
	r.ObjectType.typ = r.TypeType
	r.TypeType.typ = r.TypeType

	r.TupleType = newType("tuple", r.ObjectType)
	r.IntType = newType("int", r.ObjectType)
	r.FloatType = newType("float", r.ObjectType)
	r.BoolType = newType("bool", r.IntType)
	r.BytesType = newType("bytes", r.ObjectType)
	r.NoneTypeType = newType("NoneType", r.ObjectType)
	r.DictType = newType("dict", r.ObjectType)
	r.FunctionType = newType("function", r.ObjectType)

	for _, t := range []*Object{
		r.TupleType, r.IntType, r.FloatType, r.BoolType, r.BytesType,
		r.NoneTypeType, r.DictType, r.FunctionType,
	} {
		t.typ = r.TypeType
	}

	r.ExceptionType = newType("Exception", r.ObjectType)
	r.TypeErrorType = newType("TypeError", r.ExceptionType)
	r.AttributeErrorType = newType("AttributeError", r.ExceptionType)
	r.OverflowErrorType = newType("OverflowError", r.ExceptionType)
	r.RuntimeErrorType = newType("RuntimeError", r.ExceptionType)
	r.MemoryErrorType = newType("MemoryError", r.ExceptionType)
	r.ValueErrorType = newType("ValueError", r.ExceptionType)
	r.KeyErrorType = newType("KeyError", r.ExceptionType)
	r.StopIterationType = newType("StopIteration", r.ExceptionType)

	for _, t := range []*Object{
		r.ExceptionType, r.TypeErrorType, r.AttributeErrorType, r.OverflowErrorType,
		r.RuntimeErrorType, r.MemoryErrorType, r.ValueErrorType, r.KeyErrorType,
		r.StopIterationType,
	} {
		t.typ = r.TypeType
	}

	installConstructors(owner, r)
	installNumerics(owner, r)

	r.None = newBase(KindNone, r.NoneTypeType)
	r.True = &Object{kind: KindBool, typ: r.BoolType, boolVal: true}
	r.False = &Object{kind: KindBool, typ: r.BoolType, boolVal: false}

	// The preallocated MemoryError carries a one-element tuple argument,
	// matching original_source/src/object.rs's MEMORYERROR_INST.
	msg := &Object{kind: KindBytes, typ: r.BytesType, bytesVal: []byte("Out of memory")}
	r.MemoryError = &Object{
		kind: KindException,
		typ:  r.MemoryErrorType,
		excVal: &Exception{
			Type: r.MemoryErrorType,
			Args: &Object{kind: KindTuple, typ: r.TupleType, tupleVal: []*Object{msg}},
		},
	}

	return r
}

// currentOwner returns the process's fixed Owner token (see Registry.owner).
func currentOwner() *gil.Owner {
	return Global().owner
}
