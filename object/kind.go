// Package object implements the runtime's closed set of value kinds, the
// object protocol (attribute access, calls, equality, hashing,
// coercions), the exception taxonomy, and the global registry of
// built-in singletons.
//
// It is grounded on original_source/src/object.rs (the Object enum,
// ObjectTrait default methods, the lazy_static singleton block) and
// original_source/src/builtins.rs (constructor argument shapes, sleep).
// Where the original left an opcode or builtin as a todo!() stub, the
// behavior here follows spec.md §4.4/§4.6 directly rather than any
// partial source.
package object

import "fmt"

// Kind tags which variant of the closed object union a value is.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindTuple
	KindDict
	KindFunction
	KindType
	KindException
	KindBasic
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindFunction:
		return "function"
	case KindType:
		return "type"
	case KindException:
		return "Exception"
	case KindBasic:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
