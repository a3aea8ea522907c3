package object

import (
	"hash/fnv"

	"github.com/rhelmot/objectively/gil"
)

// fnvHash hashes a Go string with FNV-1a, the same algorithm the teacher
// repo's structs package uses (hash/fnv) for its identity hashing.
func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Hash computes hash(o) per §4.3/§4.4: Int hashes to its own value,
// Bytes hashes over its contents via FNV-1a (the teacher's chosen hash
// algorithm), Float hashes via FNV-1a over its IEEE-754 bits, Bool/None
// hash by fixed constant (they are singletons), and every other kind
// dispatches to a __hash__ attribute if present,
// falling back to identity (the object's address) otherwise.
func Hash(owner *gil.Owner, o *Object) (uint64, *Object) {
	switch o.kind {
	case KindInt:
		return uint64(o.intVal), nil
	case KindFloat:
		return fnvHash(floatKey(o.floatVal)), nil
	case KindBytes:
		return fnvHash(string(o.bytesVal)), nil
	case KindBool:
		if o.boolVal {
			return 1, nil
		}
		return 0, nil
	case KindNone:
		return 0, nil
	default:
		if fn, found := lookupDunder(owner, o, "__hash__"); found {
			result, exc := Call(owner, fn, o, NewTuple())
			if exc != nil {
				return 0, exc
			}
			if result.kind != KindInt {
				return 0, NewTypeError("__hash__ did not return an int")
			}
			return uint64(result.intVal), nil
		}
		return identityHash(o), nil
	}
}

func identityHash(o *Object) uint64 {
	return uint64(uintptr(pointerOf(o)))
}
