package object

import "github.com/rhelmot/objectively/gil"

// RebindFunction returns a new Function sharing fn's native entry point
// but with data substituted for fn's captured data, grounded on
// original_source/src/interpreter.rs's CLOSURE_BIND contract (§4.6):
// closures are built in two steps, first the bare code-backed callable,
// then a rebinding step that attaches the captured environment.
func RebindFunction(fn *Object, data *Object) *Object {
	return &Object{
		kind:  KindFunction,
		typ:   Global().FunctionType,
		fnVal: &Function{Data: data, Native: fn.fnVal.Native},
	}
}

// NewUserType builds a user-defined class (§4.6 CLASS, §9 "Closed vs
// open polymorphism": user-defined classes are Basic + a custom Type).
// items populates the type's attribute namespace; every key must be
// Bytes, matching attribute names elsewhere in the protocol. The
// default constructor builds a Basic instance of the new type; a member
// named "__init__" is not auto-invoked here (§4.4 lists no such hook),
// it is left for the instantiating caller's bytecode to call explicitly.
func NewUserType(owner *gil.Owner, name string, base *Object, items []KV) (*Object, *Object) {
	if base.Kind() != KindType {
		return nil, NewTypeError("CLASS base must be a type")
	}
	t := newType(name, base)
	t.typ = Global().TypeType
	attrs := t.typeVal.RO(owner).Attrs
	for _, kv := range items {
		if kv.Key.Kind() != KindBytes {
			return nil, NewTypeError("class member name must be bytes")
		}
		if fault := attrs.Insert(string(BytesValue(kv.Key)), kv.Value); fault != nil {
			return nil, faultToException(fault)
		}
	}
	t.typeVal.RW(owner).Constructor = func(owner *gil.Owner, self *Object, args *Object) (*Object, *Object) {
		return NewBasic(self), nil
	}
	return t, nil
}
