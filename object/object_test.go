package object

import (
	"math"
	"testing"

	"github.com/rhelmot/objectively/gil"
)

func TestTypeChainTerminatesWithoutCycles(t *testing.T) {
	owner := Lock()
	defer Unlock()

	for _, typ := range []*Object{
		Global().ObjectType, Global().TypeType, Global().IntType, Global().BoolType,
		Global().TypeErrorType, Global().StopIterationType,
	} {
		seen := map[*Object]bool{}
		cur := typ
		for cur != nil {
			if seen[cur] {
				t.Fatalf("type chain for %v cycles at %v", typ, cur)
			}
			seen[cur] = true
			cur = typeBase(owner, cur)
		}
	}
}

func TestObjectIsInstanceOfType(t *testing.T) {
	if Global().ObjectType.typ != Global().TypeType {
		t.Fatalf("object.type should be type")
	}
	if typeBase(Lock(), Global().TypeType) != Global().ObjectType {
		t.Fatalf("type.base should be object")
	}
	Unlock()
}

func TestIntCoercionIdempotence(t *testing.T) {
	owner := Lock()
	defer Unlock()
	x := NewInt(7)
	result, exc := coerceInt(owner, x, NewInt(0))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if !Is(result, x) {
		t.Fatalf("int(x) is x failed: expected same pointer")
	}
}

func TestHashStableForImmutableValues(t *testing.T) {
	owner := Lock()
	defer Unlock()
	i := NewInt(42)
	h1, exc := Hash(owner, i)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	h2, exc := Hash(owner, i)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if h1 != h2 {
		t.Fatalf("hash not stable: %d != %d", h1, h2)
	}

	b := NewBytes([]byte("hello"))
	hb1, _ := Hash(owner, b)
	hb2, _ := Hash(owner, b)
	if hb1 != hb2 {
		t.Fatalf("bytes hash not stable: %d != %d", hb1, hb2)
	}
}

func TestDictInsertGetPopKeyError(t *testing.T) {
	owner := Lock()
	defer Unlock()
	d := NewDict()
	k := NewBytes([]byte("k"))
	v := NewInt(1)

	if exc := SetItem(owner, d, k, v); exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	got, exc := GetItem(owner, d, k)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if eq, eqExc := Eq(owner, got, v); eqExc != nil || !eq {
		t.Fatalf("d[k] != v")
	}

	if exc := DelItem(owner, d, k); exc != nil {
		t.Fatalf("unexpected exception deleting: %v", exc)
	}
	_, exc = GetItem(owner, d, k)
	if exc == nil {
		t.Fatalf("expected KeyError after pop")
	}
	if !IsInstance(owner, exc, Global().KeyErrorType) {
		t.Fatalf("expected KeyError, got %v", exc.typ)
	}
}

func TestIdNoCollisionForDistinctLiveObjects(t *testing.T) {
	Lock()
	defer Unlock()
	a := NewBasic(Global().ObjectType)
	b := NewBasic(Global().ObjectType)
	idA := IntValue(Id(a))
	idB := IntValue(Id(b))
	if idA == idB {
		t.Fatalf("distinct live objects got colliding ids")
	}
}

func TestTupleConstructorScenarios(t *testing.T) {
	owner := Lock()
	defer Unlock()

	empty, exc := tupleConstructor(owner, Global().TupleType, NewTuple())
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if len(TupleValues(empty)) != 0 {
		t.Fatalf("tuple() should be empty")
	}

	src := NewTuple(NewInt(1), NewInt(2), NewInt(3))
	three, exc := tupleConstructor(owner, Global().TupleType, NewTuple(src))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if len(TupleValues(three)) != 3 {
		t.Fatalf("tuple([1,2,3]) should have 3 elements")
	}

	_, exc = tupleConstructor(owner, Global().TupleType, NewTuple(NewInt(1)))
	if exc == nil || !IsInstance(owner, exc, Global().TypeErrorType) {
		t.Fatalf("tuple(1) should raise TypeError")
	}
}

func TestIntBaseMustBeInt(t *testing.T) {
	owner := Lock()
	defer Unlock()
	args := NewTuple(NewBytes([]byte("10")), NewBytes([]byte("16")))
	_, exc := intConstructor(owner, Global().IntType, args)
	if exc == nil || !IsInstance(owner, exc, Global().TypeErrorType) {
		t.Fatalf("int(\"10\", 16) should raise TypeError for non-int base")
	}
}

func TestIntBaseIsForwarded(t *testing.T) {
	owner := Lock()
	defer Unlock()

	weird := NewBasic(Global().ObjectType)
	var seenBase *Object
	native := func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		seenBase = TupleValues(args)[0]
		return NewInt(1), nil
	}
	if exc := SetAttr(owner, weird, "__int__", NewFunction(nil, native)); exc != nil {
		t.Fatalf("unexpected exception setting attr: %v", exc)
	}

	if _, exc := intConstructor(owner, Global().IntType, NewTuple(weird)); exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if seenBase == nil || IntValue(seenBase) != 0 {
		t.Fatalf("int(x) should forward base 0 to __int__, got %v", seenBase)
	}

	base := NewInt(16)
	if _, exc := intConstructor(owner, Global().IntType, NewTuple(weird, base)); exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if !Is(seenBase, base) {
		t.Fatalf("int(x, base) should forward the real base to __int__, got %v", seenBase)
	}
}

func TestFloatBaseMustBeFloatAndIsForwarded(t *testing.T) {
	owner := Lock()
	defer Unlock()

	_, exc := floatConstructor(owner, Global().FloatType, NewTuple(NewBytes([]byte("10")), NewInt(16)))
	if exc == nil || !IsInstance(owner, exc, Global().TypeErrorType) {
		t.Fatalf("float(\"10\", 16) should raise TypeError for non-float base")
	}

	weird := NewBasic(Global().ObjectType)
	var seenBase *Object
	native := func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		seenBase = TupleValues(args)[0]
		return NewFloat(1), nil
	}
	if exc := SetAttr(owner, weird, "__float__", NewFunction(nil, native)); exc != nil {
		t.Fatalf("unexpected exception setting attr: %v", exc)
	}
	base := NewFloat(16)
	result, exc := floatConstructor(owner, Global().FloatType, NewTuple(weird, base))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if FloatValue(result) != 1 {
		t.Fatalf("expected __float__'s return value")
	}
	if !Is(seenBase, base) {
		t.Fatalf("expected the real base argument to be forwarded into __float__, got %v", seenBase)
	}
}

func TestBoolConstructorScenarios(t *testing.T) {
	owner := Lock()
	defer Unlock()

	zero, exc := boolConstructor(owner, Global().BoolType, NewTuple(NewInt(0)))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if BoolValue(zero) {
		t.Fatalf("bool(0) should be False")
	}

	weird := NewBasic(Global().ObjectType)
	native := func(owner *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		return NewInt(1), nil
	}
	if exc := SetAttr(owner, weird, "__bool__", NewFunction(nil, native)); exc != nil {
		t.Fatalf("unexpected exception setting attr: %v", exc)
	}
	_, exc = boolConstructor(owner, Global().BoolType, NewTuple(weird))
	if exc == nil || !IsInstance(owner, exc, Global().TypeErrorType) {
		t.Fatalf("bool(obj whose __bool__ returns int) should raise TypeError")
	}
}

func TestSleepScenarios(t *testing.T) {
	owner := Lock()
	defer Unlock()

	if exc := Sleep(owner, NewFloat(-1.0)); exc == nil || !IsInstance(owner, exc, Global().OverflowErrorType) {
		t.Fatalf("sleep(-1.0) should raise OverflowError")
	}
	if exc := Sleep(owner, NewFloat(math.NaN())); exc == nil || !IsInstance(owner, exc, Global().OverflowErrorType) {
		t.Fatalf("sleep(nan) should raise OverflowError")
	}
	if exc := Sleep(owner, NewInt(0)); exc != nil {
		t.Fatalf("sleep(0) should return immediately without error, got %v", exc)
	}
}

func TestDictMutationDuringEqRaisesRuntimeError(t *testing.T) {
	owner := Lock()
	defer Unlock()

	d := NewDict()
	trigger := NewBasic(Global().ObjectType)
	other := NewBasic(Global().ObjectType)

	eqNative := func(o *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		if Is(receiver, trigger) {
			// Mutate the dict reentrantly during its own key comparison.
			SetItem(o, d, NewBytes([]byte("unrelated")), NewInt(1))
		}
		return Bool(false), nil
	}
	hashNative := func(o *gil.Owner, data *Object, receiver *Object, args *Object) (*Object, *Object) {
		return NewInt(1), nil
	}
	for _, basic := range []*Object{trigger, other} {
		if exc := SetAttr(owner, basic, "__eq__", NewFunction(nil, eqNative)); exc != nil {
			t.Fatalf("unexpected exception: %v", exc)
		}
		if exc := SetAttr(owner, basic, "__hash__", NewFunction(nil, hashNative)); exc != nil {
			t.Fatalf("unexpected exception: %v", exc)
		}
	}

	if exc := SetItem(owner, d, other, NewInt(1)); exc != nil {
		t.Fatalf("unexpected exception on first insert: %v", exc)
	}
	_, exc := GetItem(owner, d, trigger)
	if exc == nil {
		t.Fatalf("expected RuntimeError from reentrant mutation during __eq__")
	}
	if !IsInstance(owner, exc, Global().RuntimeErrorType) {
		t.Fatalf("expected RuntimeError, got %v", exc.typ)
	}
}
