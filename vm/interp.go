package vm

import (
	"runtime"

	"github.com/rhelmot/objectively/gil"
	"github.com/rhelmot/objectively/object"
)

// Run is the embedding interface (§6): the host acquires the lock,
// provides a Bytes code block, a Dict of locals, and a Tuple of
// arguments, and gets back either the RETURN'd object or a propagated
// Exception.
func Run(owner *gil.Owner, code *object.Object, locals *object.Object, args *object.Object) (*object.Object, *object.Object) {
	if code.Kind() != object.KindBytes {
		return nil, object.NewTypeError("interpreter code must be bytes")
	}
	if locals.Kind() != object.KindDict {
		return nil, object.NewTypeError("interpreter locals must be a dict")
	}
	if args.Kind() != object.KindTuple {
		return nil, object.NewTypeError("interpreter args must be a tuple")
	}
	f := &frame{
		dec:    &decoder{code: object.BytesValue(code)},
		locals: locals,
		args:   args,
	}
	return f.run(owner)
}

// Function builds a callable Function object whose native entry point
// runs code against a fresh copy of locals for every invocation,
// closing over package vm's own interpreter loop (object.NativeFunc's
// doc comment: "Bytecode-defined functions are NativeFuncs built by
// package vm closing over its own interpreter loop").
func Function(code *object.Object, locals *object.Object) *object.Object {
	native := func(owner *gil.Owner, data *object.Object, receiver *object.Object, args *object.Object) (*object.Object, *object.Object) {
		items, exc := object.DictItems(owner, data)
		if exc != nil {
			return nil, exc
		}
		fresh := object.NewDict()
		for _, kv := range items {
			if exc := object.SetItem(owner, fresh, kv.Key, kv.Value); exc != nil {
				return nil, exc
			}
		}
		return Run(owner, code, fresh, args)
	}
	return object.NewFunction(locals, native)
}

// run drives the fetch-decode-execute loop until RETURN or an
// unhandled exception.
func (f *frame) run(owner *gil.Owner) (*object.Object, *object.Object) {
	for {
		if f.dec.atEnd() {
			return nil, object.NewRuntimeError("End of bytecode")
		}
		op, exc := f.dec.nextOpcode()
		if exc != nil {
			return nil, exc
		}
		value, returned, exc := f.step(owner, op)
		if exc != nil {
			if f.catch(exc) {
				continue
			}
			return nil, exc
		}
		if returned {
			return value, nil
		}
	}
}

// step executes a single instruction. It returns (value, true, nil) on
// RETURN, (nil, false, nil) on a normal instruction, or (nil, false,
// exc) on failure — the caller unwinds to the nearest TRY frame.
func (f *frame) step(owner *gil.Owner, op Op) (value *object.Object, returned bool, exc *object.Object) {
	switch op {
	case OpError:
		return nil, false, object.NewRuntimeError("Invalid opcode")

	case OpStSwap:
		return nil, false, f.swap()
	case OpStPop:
		_, exc := f.pop()
		return nil, false, exc
	case OpStDup:
		return nil, false, f.dup()
	case OpStDup2:
		return nil, false, f.dup2()

	case OpLitBytes:
		b, exc := f.dec.nextBytes()
		if exc != nil {
			return nil, false, exc
		}
		f.push(object.NewBytes(b))
		return nil, false, nil
	case OpLitInt:
		n, exc := f.dec.nextSigned()
		if exc != nil {
			return nil, false, exc
		}
		f.push(object.NewInt(n))
		return nil, false, nil
	case OpLitFloat:
		v, exc := f.dec.nextFloat()
		if exc != nil {
			return nil, false, exc
		}
		f.push(object.NewFloat(v))
		return nil, false, nil
	case OpLitSlice:
		hi, exc := f.pop()
		if exc != nil {
			return nil, false, exc
		}
		lo, exc := f.pop()
		if exc != nil {
			return nil, false, exc
		}
		f.push(object.NewTuple(lo, hi))
		return nil, false, nil
	case OpLitNone:
		f.push(object.None())
		return nil, false, nil
	case OpLitTrue:
		f.push(object.Bool(true))
		return nil, false, nil
	case OpLitFalse:
		f.push(object.Bool(false))
		return nil, false, nil

	case OpTuple0, OpTuple1, OpTuple2, OpTuple3, OpTuple4:
		return nil, false, f.tupleFixed(op)
	case OpTupleN:
		n, exc := f.dec.nextUnsigned()
		if exc != nil {
			return nil, false, exc
		}
		return nil, false, f.tupleN(int(n))

	case OpClosure:
		return nil, false, f.closure(owner)
	case OpClosureBind:
		return nil, false, f.closureBind(owner)
	case OpEmptyDict:
		f.push(object.NewDict())
		return nil, false, nil
	case OpClass:
		return nil, false, f.class(owner)

	case OpGetAttr:
		return nil, false, f.getAttr(owner)
	case OpSetAttr:
		return nil, false, f.setAttr(owner)
	case OpDelAttr:
		return nil, false, f.delAttr(owner)
	case OpGetItem:
		return nil, false, f.getItem(owner)
	case OpSetItem:
		return nil, false, f.setItem(owner)
	case OpDelItem:
		return nil, false, f.delItem(owner)

	case OpGetLocal:
		return nil, false, f.getLocal(owner)
	case OpSetLocal:
		return nil, false, f.setLocal(owner)
	case OpDelLocal:
		return nil, false, f.delLocal(owner)
	case OpLoadArgs:
		return nil, false, f.loadArgs(owner)

	case OpJump:
		return nil, false, f.jump()
	case OpJumpIf:
		return nil, false, f.jumpIf(owner)
	case OpTry:
		return nil, false, f.tryPush()
	case OpTryEnd:
		f.popTry()
		return nil, false, nil

	case OpCall:
		return f.call(owner)
	case OpSpawn:
		return nil, false, f.spawn(owner)
	case OpRaise:
		return f.raise(owner)
	case OpReturn:
		v, exc := f.pop()
		if exc != nil {
			return nil, false, exc
		}
		return v, true, nil
	case OpYield:
		object.Yield(func() { runtime.Gosched() })
		return nil, false, nil
	case OpRaiseIfNotStop:
		return nil, false, f.raiseIfNotStop(owner)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpAnd, OpOr, OpXor,
		OpEq, OpNe, OpGt, OpLt, OpGe, OpLe, OpShl, OpShr:
		return nil, false, f.binaryOp(owner, op)
	case OpNeg, OpNot, OpInv:
		return nil, false, f.unaryOp(owner, op)

	default:
		return nil, false, object.NewRuntimeError("Invalid opcode")
	}
}

func (f *frame) tupleFixed(op Op) *object.Object {
	n := int(op) - int(OpTuple0)
	vals := make([]*object.Object, n)
	for i := n - 1; i >= 0; i-- {
		v, exc := f.pop()
		if exc != nil {
			return exc
		}
		vals[i] = v
	}
	f.push(object.NewTuple(vals...))
	return nil
}

func (f *frame) tupleN(n int) *object.Object {
	if n > len(f.stack) {
		return object.NewRuntimeError("Stack underflow")
	}
	vals := make([]*object.Object, n)
	copy(vals, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	f.push(object.NewTuple(vals...))
	return nil
}

// closure constructs a Function from a code Bytes value popped off the
// stack. The operand-less form keeps the compiler's data representation
// out of the interpreter's own contract (§4.6 "operand encodings are
// defined by the compiler").
func (f *frame) closure(owner *gil.Owner) *object.Object {
	code, exc := f.pop()
	if exc != nil {
		return exc
	}
	if code.Kind() != object.KindBytes {
		return object.NewTypeError("CLOSURE requires bytes code")
	}
	locals := object.NewDict()
	f.push(Function(code, locals))
	return nil
}

// closureBind rebinds a Function's captured data (its upvalues/locals
// dict), producing a new Function sharing the original's native entry
// point.
func (f *frame) closureBind(owner *gil.Owner) *object.Object {
	data, exc := f.pop()
	if exc != nil {
		return exc
	}
	fn, exc := f.pop()
	if exc != nil {
		return exc
	}
	if fn.Kind() != object.KindFunction {
		return object.NewTypeError("CLOSURE_BIND requires a function")
	}
	f.push(object.RebindFunction(fn, data))
	return nil
}

// class constructs a Type object from (name, base, attrs) popped off
// the stack, in that push order (name first, then base, then the
// class-body attribute dict on top), mirroring a typical class
// statement's evaluation order.
func (f *frame) class(owner *gil.Owner) *object.Object {
	attrsDict, exc := f.pop()
	if exc != nil {
		return exc
	}
	base, exc := f.pop()
	if exc != nil {
		return exc
	}
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	if attrsDict.Kind() != object.KindDict {
		return object.NewTypeError("CLASS requires a dict of members")
	}
	if base.Kind() != object.KindType {
		return object.NewTypeError("CLASS requires a base type")
	}
	if name.Kind() != object.KindBytes {
		return object.NewTypeError("CLASS requires a bytes name")
	}
	items, exc := object.DictItems(owner, attrsDict)
	if exc != nil {
		return exc
	}
	typ, exc := object.NewUserType(owner, string(object.BytesValue(name)), base, items)
	if exc != nil {
		return exc
	}
	f.push(typ)
	return nil
}

func (f *frame) getAttr(owner *gil.Owner) *object.Object {
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	if name.Kind() != object.KindBytes {
		return object.NewTypeError("attribute name must be bytes")
	}
	v, aerr := object.GetAttr(owner, obj, string(object.BytesValue(name)))
	if aerr != nil {
		return aerr
	}
	f.push(v)
	return nil
}

func (f *frame) setAttr(owner *gil.Owner) *object.Object {
	value, exc := f.pop()
	if exc != nil {
		return exc
	}
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	if name.Kind() != object.KindBytes {
		return object.NewTypeError("attribute name must be bytes")
	}
	return object.SetAttr(owner, obj, string(object.BytesValue(name)), value)
}

func (f *frame) delAttr(owner *gil.Owner) *object.Object {
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	if name.Kind() != object.KindBytes {
		return object.NewTypeError("attribute name must be bytes")
	}
	return object.DelAttr(owner, obj, string(object.BytesValue(name)))
}

func (f *frame) getItem(owner *gil.Owner) *object.Object {
	key, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	v, ierr := object.GetItem(owner, obj, key)
	if ierr != nil {
		return ierr
	}
	f.push(v)
	return nil
}

func (f *frame) setItem(owner *gil.Owner) *object.Object {
	value, exc := f.pop()
	if exc != nil {
		return exc
	}
	key, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	return object.SetItem(owner, obj, key, value)
}

func (f *frame) delItem(owner *gil.Owner) *object.Object {
	key, exc := f.pop()
	if exc != nil {
		return exc
	}
	obj, exc := f.pop()
	if exc != nil {
		return exc
	}
	return object.DelItem(owner, obj, key)
}

// getLocal/setLocal/delLocal operate on the frame's locals Dict, keyed
// by whatever name object is on the stack — the same GetItem/SetItem/
// DelItem machinery as GET_ITEM and friends, since locals are simply a
// Dict (§9 open question: the spec names these "against the locals
// dict" without a separate index scheme, so this implementation treats
// them as item access against that dict rather than inventing a
// constant-pool indirection).
func (f *frame) getLocal(owner *gil.Owner) *object.Object {
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	v, lerr := object.GetItem(owner, f.locals, name)
	if lerr != nil {
		return lerr
	}
	f.push(v)
	return nil
}

func (f *frame) setLocal(owner *gil.Owner) *object.Object {
	value, exc := f.pop()
	if exc != nil {
		return exc
	}
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	return object.SetItem(owner, f.locals, name, value)
}

func (f *frame) delLocal(owner *gil.Owner) *object.Object {
	name, exc := f.pop()
	if exc != nil {
		return exc
	}
	return object.DelItem(owner, f.locals, name)
}

// loadArgs unpacks f.args positionally into as many locals as names are
// popped off the stack (operand: an unsigned count of names, each name
// a bytes literal pushed immediately before LOAD_ARGS runs).
func (f *frame) loadArgs(owner *gil.Owner) *object.Object {
	n, exc := f.dec.nextUnsigned()
	if exc != nil {
		return exc
	}
	names := make([]*object.Object, n)
	for i := int(n) - 1; i >= 0; i-- {
		name, exc := f.pop()
		if exc != nil {
			return exc
		}
		names[i] = name
	}
	values := object.TupleValues(f.args)
	if len(values) != len(names) {
		return object.NewTypeError("argument count mismatch")
	}
	for i, name := range names {
		if name.Kind() != object.KindBytes {
			return object.NewTypeError("argument name must be bytes")
		}
		if exc := object.SetItem(owner, f.locals, name, values[i]); exc != nil {
			return exc
		}
	}
	return nil
}

func (f *frame) jump() *object.Object {
	off, exc := f.dec.nextSigned()
	if exc != nil {
		return exc
	}
	return f.applyJump(off)
}

func (f *frame) jumpIf(owner *gil.Owner) *object.Object {
	off, exc := f.dec.nextSigned()
	if exc != nil {
		return exc
	}
	cond, exc := f.pop()
	if exc != nil {
		return exc
	}
	if cond.Kind() != object.KindBool {
		return object.NewTypeError("JUMP_IF requires a bool")
	}
	if !object.BoolValue(cond) {
		return nil
	}
	return f.applyJump(off)
}

func (f *frame) applyJump(off int64) *object.Object {
	target := int64(f.dec.pos) + off
	if target < 0 || target > int64(len(f.dec.code)) {
		return object.NewRuntimeError("jump target out of range")
	}
	f.dec.pos = int(target)
	return nil
}

func (f *frame) tryPush() *object.Object {
	off, exc := f.dec.nextSigned()
	if exc != nil {
		return exc
	}
	target := int64(f.dec.pos) + off
	if target < 0 || target > int64(len(f.dec.code)) {
		return object.NewRuntimeError("jump target out of range")
	}
	f.pushTry(int(target))
	return nil
}

// call pops argc args (CALL's unsigned operand) and the callee, and
// dispatches through the object protocol. It returns directly from step
// rather than through the usual exc-only path because a successful
// call only ever pushes a value (never returns the frame).
func (f *frame) call(owner *gil.Owner) (value *object.Object, returned bool, exc *object.Object) {
	argc, excv := f.dec.nextUnsigned()
	if excv != nil {
		return nil, false, excv
	}
	if int(argc) > len(f.stack)-1 {
		return nil, false, object.NewRuntimeError("Stack underflow")
	}
	args := make([]*object.Object, argc)
	copy(args, f.stack[len(f.stack)-int(argc):])
	f.stack = f.stack[:len(f.stack)-int(argc)]
	callee, excv := f.pop()
	if excv != nil {
		return nil, false, excv
	}
	result, cerr := object.Call(owner, callee, nil, object.NewTuple(args...))
	if cerr != nil {
		return nil, false, cerr
	}
	f.push(result)
	return nil, false, nil
}

// spawn pops argc args and the callee exactly like CALL, but runs the
// call on a new goroutine under its own lock acquisition instead of
// waiting for it (§9 "Coroutine control flow": SPAWN/YIELD plus
// cooperative lock-release, no hidden stack magic). There is no Thread
// value in the data model (§3), so SPAWN itself pushes None.
func (f *frame) spawn(owner *gil.Owner) *object.Object {
	argc, exc := f.dec.nextUnsigned()
	if exc != nil {
		return exc
	}
	if int(argc) > len(f.stack)-1 {
		return object.NewRuntimeError("Stack underflow")
	}
	args := make([]*object.Object, argc)
	copy(args, f.stack[len(f.stack)-int(argc):])
	f.stack = f.stack[:len(f.stack)-int(argc)]
	callee, exc := f.pop()
	if exc != nil {
		return exc
	}
	argTuple := object.NewTuple(args...)
	go func() {
		spawnedOwner := object.Lock()
		defer object.Unlock()
		object.Call(spawnedOwner, callee, nil, argTuple)
	}()
	f.push(object.None())
	return nil
}

func (f *frame) raise(owner *gil.Owner) (value *object.Object, returned bool, exc *object.Object) {
	v, excv := f.pop()
	if excv != nil {
		return nil, false, excv
	}
	if v.Kind() != object.KindException {
		return nil, false, object.NewTypeError("RAISE requires an Exception")
	}
	return nil, false, v
}

// raiseIfNotStop implements the iterator helper (§4.6): pop an
// exception and re-raise it unless it classifies as StopIteration.
func (f *frame) raiseIfNotStop(owner *gil.Owner) *object.Object {
	v, exc := f.pop()
	if exc != nil {
		return exc
	}
	if v.Kind() != object.KindException {
		return object.NewTypeError("RAISE_IF_NOT_STOP requires an Exception")
	}
	if object.IsInstance(owner, v, object.Global().StopIterationType) {
		return nil
	}
	return v
}

func (f *frame) binaryOp(owner *gil.Owner, op Op) *object.Object {
	b, exc := f.pop()
	if exc != nil {
		return exc
	}
	a, exc := f.pop()
	if exc != nil {
		return exc
	}
	name := dunderFor[op]
	result, cerr := object.CallMethod(owner, a, name, object.NewTuple(b))
	if cerr != nil {
		return cerr
	}
	f.push(result)
	return nil
}

func (f *frame) unaryOp(owner *gil.Owner, op Op) *object.Object {
	a, exc := f.pop()
	if exc != nil {
		return exc
	}
	name := unaryDunderFor[op]
	result, cerr := object.CallMethod(owner, a, name, object.NewTuple())
	if cerr != nil {
		return cerr
	}
	f.push(result)
	return nil
}
