package object

import (
	"math"
	"time"

	"github.com/rhelmot/objectively/gil"
	"github.com/rhelmot/objectively/sched"
)

// installConstructors wires each built-in type's Constructor, grounded
// on original_source/src/builtins.rs's tuple_constructor/int_constructor/
// float_constructor/bool_constructor/nonetype_constructor argument
// shapes (§9 Open Questions: a non-int base raises TypeError before
// dispatch).
func installConstructors(owner *gil.Owner, r *Registry) {
	setConstructor(owner, r.TupleType, tupleConstructor)
	setConstructor(owner, r.IntType, intConstructor)
	setConstructor(owner, r.FloatType, floatConstructor)
	setConstructor(owner, r.BoolType, boolConstructor)
	setConstructor(owner, r.BytesType, bytesConstructor)
	setConstructor(owner, r.NoneTypeType, func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return r.None, nil
	})
	setConstructor(owner, r.DictType, func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		if len(args.tupleVal) != 0 {
			return nil, NewTypeError("dict() takes no arguments")
		}
		return NewDict(), nil
	})
	setConstructor(owner, r.FunctionType, func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return nil, NewTypeError("cannot instantiate function directly")
	})
	setConstructor(owner, r.ObjectType, func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return NewBasic(r.ObjectType), nil
	})
	setConstructor(owner, r.TypeType, func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return nil, NewTypeError("cannot call type() directly")
	})

	exceptionCtor := func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return &Object{kind: KindException, typ: self, excVal: &Exception{Type: self, Args: args}}, nil
	}
	for _, t := range []*Object{
		r.ExceptionType, r.TypeErrorType, r.AttributeErrorType, r.OverflowErrorType,
		r.RuntimeErrorType, r.MemoryErrorType, r.ValueErrorType, r.KeyErrorType,
		r.StopIterationType,
	} {
		setConstructor(owner, t, exceptionCtor)
	}
}

func setConstructor(owner *gil.Owner, t *Object, c Constructor) {
	t.typeVal.RO(owner).Constructor = c
}

func tupleConstructor(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
	switch len(args.tupleVal) {
	case 0:
		return NewTuple(), nil
	case 1:
		return iterableToTuple(owner, args.tupleVal[0])
	default:
		return nil, NewTypeError("expected 0 or 1 arguments")
	}
}

// iterableToTuple drives __iter__/__next__ to exhaustion, grounded on
// original_source/src/builtins.rs's obj_iter_collect.
func iterableToTuple(owner *gil.Owner, v *Object) (*Object, *Object) {
	if v.kind == KindTuple {
		return NewTuple(append([]*Object(nil), v.tupleVal...)...), nil
	}
	iter, exc := CallMethod(owner, v, "__iter__", NewTuple())
	if exc != nil {
		return nil, NewTypeError("expected 0 or 1 arguments")
	}
	var elems []*Object
	for {
		item, exc := CallMethod(owner, iter, "__next__", NewTuple())
		if exc != nil {
			if exc.kind == KindException && IsInstance(owner, exc, Global().StopIterationType) {
				break
			}
			return nil, exc
		}
		elems = append(elems, item)
	}
	return NewTuple(elems...), nil
}

func intConstructor(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
	switch len(args.tupleVal) {
	case 0:
		return NewInt(0), nil
	case 1:
		return coerceInt(owner, args.tupleVal[0], NewInt(0))
	case 2:
		base := args.tupleVal[1]
		if base.kind != KindInt {
			return nil, NewTypeError("base parameter must be int")
		}
		return coerceInt(owner, args.tupleVal[0], base)
	default:
		return nil, NewTypeError("expected 0, 1, or 2 arguments")
	}
}

// coerceInt implements int(x) and int(x, base): Ints pass through
// unchanged (the idempotence invariant §8 "int(x) is x"), everything
// else dispatches to __int__(base) and the result must be an Int.
// base is Int(0) for the implicit 1-arg form, matching
// original_source/src/builtins.rs's int_constructor.
func coerceInt(owner *gil.Owner, x *Object, base *Object) (*Object, *Object) {
	if x.kind == KindInt {
		return x, nil
	}
	result, exc := CallMethod(owner, x, "__int__", NewTuple(base))
	if exc != nil {
		return nil, exc
	}
	if result.kind != KindInt {
		return nil, NewTypeError("__int__ did not return an int")
	}
	return result, nil
}

func floatConstructor(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
	switch len(args.tupleVal) {
	case 0:
		return NewFloat(0), nil
	case 1:
		return coerceFloat(owner, args.tupleVal[0], NewFloat(0))
	case 2:
		base := args.tupleVal[1]
		if base.kind != KindFloat {
			return nil, NewTypeError("base parameter must be float")
		}
		return coerceFloat(owner, args.tupleVal[0], base)
	default:
		return nil, NewTypeError("expected 0, 1, or 2 arguments")
	}
}

// coerceFloat implements float(x) and float(x, base), mirroring
// coerceInt's shape per original_source/src/builtins.rs's
// float_constructor.
func coerceFloat(owner *gil.Owner, x *Object, base *Object) (*Object, *Object) {
	if x.kind == KindFloat {
		return x, nil
	}
	result, exc := CallMethod(owner, x, "__float__", NewTuple(base))
	if exc != nil {
		return nil, exc
	}
	if result.kind != KindFloat {
		return nil, NewTypeError("__float__ did not return an float")
	}
	return result, nil
}

func boolConstructor(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
	switch len(args.tupleVal) {
	case 0:
		return Bool(false), nil
	case 1:
		x := args.tupleVal[0]
		if x.kind == KindBool {
			return x, nil
		}
		result, exc := CallMethod(owner, x, "__bool__", NewTuple())
		if exc != nil {
			return nil, exc
		}
		if result.kind != KindBool {
			return nil, NewTypeError("__bool__ did not return a bool")
		}
		return result, nil
	default:
		return nil, NewTypeError("expected 0 or 1 arguments")
	}
}

func bytesConstructor(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
	switch len(args.tupleVal) {
	case 0:
		return NewBytes(nil), nil
	case 1:
		x := args.tupleVal[0]
		if x.kind != KindBytes {
			return nil, NewTypeError("expected bytes")
		}
		return NewBytes(append([]byte(nil), x.bytesVal...)), nil
	default:
		return nil, NewTypeError("expected 0 or 1 arguments")
	}
}

// Id returns the identity of o as an Int, the raw address of its pointee
// (§8 "no two id(o) values collide for distinct live objects").
func Id(o *Object) *Object {
	return NewInt(int64(identityHash(o)))
}

// RawIs implements the `is` operator as a builtin callable.
func RawIs(a, b *Object) *Object {
	return Bool(Is(a, b))
}

// Sleep implements the sleep(n) builtin (§4.4, §5): accepts an Int or
// Float number of seconds, rejects non-finite/NaN/negative durations
// with OverflowError, and releases the execution lock for the duration.
func Sleep(owner *gil.Owner, n *Object) *Object {
	var d time.Duration
	switch n.kind {
	case KindInt:
		if n.intVal < 0 {
			return NewOverflowError("duration must be positive")
		}
		d = time.Duration(n.intVal) * time.Second
	case KindFloat:
		f := n.floatVal
		if math.IsNaN(f) {
			return NewOverflowError("duration cannot be NaN")
		}
		if math.IsInf(f, 0) {
			return NewOverflowError("duration must be finite")
		}
		if f < 0 {
			return NewOverflowError("duration must be non-negative")
		}
		d = time.Duration(f * float64(time.Second))
	default:
		return NewTypeError("sleep argument must be int or float")
	}
	Yield(func() {
		sched.Default().Sleep(d)
	})
	return nil
}
