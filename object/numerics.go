package object

import "github.com/rhelmot/objectively/gil"

// defMethod installs a native method directly into typ's attribute
// namespace, the same mechanism CLASS uses for user-defined members
// (object/classes.go's NewUserType), so built-in arithmetic dunders and
// user-defined ones are indistinguishable to GetAttr's type-chain walk.
func defMethod(owner *gil.Owner, typ *Object, name string, native NativeFunc) {
	typ.typeVal.RW(owner).Attrs.Insert(name, NewFunction(nil, native))
}

// unary wraps a receiver-only native method; binary wraps a
// receiver-plus-one-argument native method, matching the calling
// convention CALL uses to invoke OP_ADD..OP_SHR's dunder dispatch
// (vm/interp.go's binaryOp/unaryOp call these via
// CallMethod(owner, a, "__add__", NewTuple(b))).
func unary(f func(owner *gil.Owner, a *Object) (*Object, *Object)) NativeFunc {
	return func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		return f(owner, receiver)
	}
}

func binary(f func(owner *gil.Owner, a, b *Object) (*Object, *Object)) NativeFunc {
	return func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		vs := TupleValues(args)
		if len(vs) != 1 {
			return nil, NewTypeError("expected exactly 1 argument")
		}
		return f(owner, receiver, vs[0])
	}
}

// asIntValue treats Int and Bool receivers uniformly (Bool subclasses
// Int per §9 "closed vs open polymorphism" and newType("bool", IntType)
// in registry.go), since BoolType inherits IntType's dunders through
// the base chain but stores its payload in boolVal, not intVal.
func asIntValue(o *Object) (int64, bool) {
	switch o.kind {
	case KindInt:
		return o.intVal, true
	case KindBool:
		if o.boolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// installNumerics registers the arithmetic/relational/bitwise dunders
// that package vm's OP_ADD..OP_SHR opcodes dispatch to (§4.6). The
// original left every one of these opcodes as todo!(); their behavior
// here follows ordinary signed 64-bit integer and IEEE-754 float
// arithmetic, the natural reading of spec.md §4.6's "dispatch to dunder
// methods" contract for the Int/Float kinds in §3's data model.
func installNumerics(owner *gil.Owner, r *Registry) {
	installIntMethods(owner, r)
	installFloatMethods(owner, r)
	installBytesMethods(owner, r)
	installTupleMethods(owner, r)
}

func intBinOp(name string, op func(a, b int64) int64) NativeFunc {
	return binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError(name + " receiver must be int or bool")
		}
		bv, ok := asIntValue(b)
		if !ok {
			return nil, NewTypeError(name + " operand must be int or bool")
		}
		return NewInt(op(av, bv)), nil
	})
}

func intCompareOp(name string, op func(a, b int64) bool) NativeFunc {
	return binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError(name + " receiver must be int or bool")
		}
		bv, ok := asIntValue(b)
		if !ok {
			return nil, NewTypeError(name + " operand must be int or bool")
		}
		return Bool(op(av, bv)), nil
	})
}

func installIntMethods(owner *gil.Owner, r *Registry) {
	defMethod(owner, r.IntType, "__add__", intBinOp("__add__", func(a, b int64) int64 { return a + b }))
	defMethod(owner, r.IntType, "__sub__", intBinOp("__sub__", func(a, b int64) int64 { return a - b }))
	defMethod(owner, r.IntType, "__mul__", intBinOp("__mul__", func(a, b int64) int64 { return a * b }))
	defMethod(owner, r.IntType, "__div__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError("__div__ receiver must be int or bool")
		}
		bv, ok := asIntValue(b)
		if !ok {
			return nil, NewTypeError("__div__ operand must be int or bool")
		}
		if bv == 0 {
			return nil, NewValueError("division by zero")
		}
		return NewInt(av / bv), nil
	}))
	defMethod(owner, r.IntType, "__mod__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError("__mod__ receiver must be int or bool")
		}
		bv, ok := asIntValue(b)
		if !ok {
			return nil, NewTypeError("__mod__ operand must be int or bool")
		}
		if bv == 0 {
			return nil, NewValueError("division by zero")
		}
		return NewInt(av % bv), nil
	}))
	defMethod(owner, r.IntType, "__and__", intBinOp("__and__", func(a, b int64) int64 { return a & b }))
	defMethod(owner, r.IntType, "__or__", intBinOp("__or__", func(a, b int64) int64 { return a | b }))
	defMethod(owner, r.IntType, "__xor__", intBinOp("__xor__", func(a, b int64) int64 { return a ^ b }))
	defMethod(owner, r.IntType, "__shl__", intBinOp("__shl__", func(a, b int64) int64 { return a << uint64(b) }))
	defMethod(owner, r.IntType, "__shr__", intBinOp("__shr__", func(a, b int64) int64 { return a >> uint64(b) }))

	defMethod(owner, r.IntType, "__eq__", intCompareOp("__eq__", func(a, b int64) bool { return a == b }))
	defMethod(owner, r.IntType, "__ne__", intCompareOp("__ne__", func(a, b int64) bool { return a != b }))
	defMethod(owner, r.IntType, "__gt__", intCompareOp("__gt__", func(a, b int64) bool { return a > b }))
	defMethod(owner, r.IntType, "__lt__", intCompareOp("__lt__", func(a, b int64) bool { return a < b }))
	defMethod(owner, r.IntType, "__ge__", intCompareOp("__ge__", func(a, b int64) bool { return a >= b }))
	defMethod(owner, r.IntType, "__le__", intCompareOp("__le__", func(a, b int64) bool { return a <= b }))

	defMethod(owner, r.IntType, "__neg__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError("__neg__ receiver must be int or bool")
		}
		return NewInt(-av), nil
	}))
	defMethod(owner, r.IntType, "__inv__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError("__inv__ receiver must be int or bool")
		}
		return NewInt(^av), nil
	}))
	defMethod(owner, r.IntType, "__not__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, ok := asIntValue(a)
		if !ok {
			return nil, NewTypeError("__not__ receiver must be int or bool")
		}
		return Bool(av == 0), nil
	}))

	defMethod(owner, r.IntType, "__int__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, _ := asIntValue(a)
		return NewInt(av), nil
	}))
	defMethod(owner, r.IntType, "__bool__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, _ := asIntValue(a)
		return Bool(av != 0), nil
	}))
	defMethod(owner, r.IntType, "__float__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		av, _ := asIntValue(a)
		return NewFloat(float64(av)), nil
	}))
}

func floatBinOp(name string, op func(a, b float64) float64) NativeFunc {
	return binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		if a.kind != KindFloat {
			return nil, NewTypeError(name + " receiver must be float")
		}
		if b.kind != KindFloat {
			return nil, NewTypeError(name + " operand must be float")
		}
		return NewFloat(op(a.floatVal, b.floatVal)), nil
	})
}

func floatCompareOp(name string, op func(a, b float64) bool) NativeFunc {
	return binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		if a.kind != KindFloat {
			return nil, NewTypeError(name + " receiver must be float")
		}
		if b.kind != KindFloat {
			return nil, NewTypeError(name + " operand must be float")
		}
		return Bool(op(a.floatVal, b.floatVal)), nil
	})
}

func installFloatMethods(owner *gil.Owner, r *Registry) {
	defMethod(owner, r.FloatType, "__add__", floatBinOp("__add__", func(a, b float64) float64 { return a + b }))
	defMethod(owner, r.FloatType, "__sub__", floatBinOp("__sub__", func(a, b float64) float64 { return a - b }))
	defMethod(owner, r.FloatType, "__mul__", floatBinOp("__mul__", func(a, b float64) float64 { return a * b }))
	defMethod(owner, r.FloatType, "__div__", floatBinOp("__div__", func(a, b float64) float64 { return a / b }))

	defMethod(owner, r.FloatType, "__eq__", floatCompareOp("__eq__", func(a, b float64) bool { return a == b }))
	defMethod(owner, r.FloatType, "__ne__", floatCompareOp("__ne__", func(a, b float64) bool { return a != b }))
	defMethod(owner, r.FloatType, "__gt__", floatCompareOp("__gt__", func(a, b float64) bool { return a > b }))
	defMethod(owner, r.FloatType, "__lt__", floatCompareOp("__lt__", func(a, b float64) bool { return a < b }))
	defMethod(owner, r.FloatType, "__ge__", floatCompareOp("__ge__", func(a, b float64) bool { return a >= b }))
	defMethod(owner, r.FloatType, "__le__", floatCompareOp("__le__", func(a, b float64) bool { return a <= b }))

	defMethod(owner, r.FloatType, "__neg__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		if a.kind != KindFloat {
			return nil, NewTypeError("__neg__ receiver must be float")
		}
		return NewFloat(-a.floatVal), nil
	}))
	defMethod(owner, r.FloatType, "__bool__", unary(func(owner *gil.Owner, a *Object) (*Object, *Object) {
		if a.kind != KindFloat {
			return nil, NewTypeError("__bool__ receiver must be float")
		}
		return Bool(a.floatVal != 0), nil
	}))
}

func installBytesMethods(owner *gil.Owner, r *Registry) {
	defMethod(owner, r.BytesType, "__add__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		if a.kind != KindBytes || b.kind != KindBytes {
			return nil, NewTypeError("__add__ requires bytes")
		}
		out := make([]byte, 0, len(a.bytesVal)+len(b.bytesVal))
		out = append(out, a.bytesVal...)
		out = append(out, b.bytesVal...)
		return NewBytes(out), nil
	}))
	defMethod(owner, r.BytesType, "__eq__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		if b.kind != KindBytes {
			return Bool(false), nil
		}
		return Bool(string(a.bytesVal) == string(b.bytesVal)), nil
	}))
}

func installTupleMethods(owner *gil.Owner, r *Registry) {
	defMethod(owner, r.TupleType, "__add__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		if a.kind != KindTuple || b.kind != KindTuple {
			return nil, NewTypeError("__add__ requires tuples")
		}
		out := make([]*Object, 0, len(a.tupleVal)+len(b.tupleVal))
		out = append(out, a.tupleVal...)
		out = append(out, b.tupleVal...)
		return NewTuple(out...), nil
	}))
	defMethod(owner, r.TupleType, "__eq__", binary(func(owner *gil.Owner, a, b *Object) (*Object, *Object) {
		eq, exc := Eq(owner, a, b)
		if exc != nil {
			return nil, exc
		}
		return Bool(eq), nil
	}))
}
