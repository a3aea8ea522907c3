package vm

import "github.com/rhelmot/objectively/object"

// tryFrame is a pushed TRY region: the value-stack depth to truncate to
// and the program counter to resume at on exception (§4.6 "Try-region
// protocol").
type tryFrame struct {
	depth   int
	catchPC int
}

// frame holds one interpreter invocation's mutable execution state: the
// decode cursor, the value stack, the try-region stack, and the locals
// dict. Unlike original_source/src/interpreter.rs's free functions
// threading stack/code/locals as separate parameters, this groups them
// so the dispatch switch in interp.go reads as method calls.
type frame struct {
	dec      *decoder
	stack    []*object.Object
	tryStack []tryFrame
	locals   *object.Object
	args     *object.Object
}

func (f *frame) push(o *object.Object) {
	f.stack = append(f.stack, o)
}

// pop reports RuntimeError("Stack underflow") on an empty stack,
// matching fallible_pop in the original.
func (f *frame) pop() (*object.Object, *object.Object) {
	if len(f.stack) == 0 {
		return nil, object.NewRuntimeError("Stack underflow")
	}
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v, nil
}

func (f *frame) top() (*object.Object, *object.Object) {
	if len(f.stack) == 0 {
		return nil, object.NewRuntimeError("Stack underflow")
	}
	return f.stack[len(f.stack)-1], nil
}

// swap exchanges the top two stack entries, returning a non-nil
// exception on underflow.
func (f *frame) swap() *object.Object {
	n := len(f.stack)
	if n < 2 {
		return object.NewRuntimeError("Stack underflow")
	}
	f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]
	return nil
}

func (f *frame) dup() *object.Object {
	v, exc := f.top()
	if exc != nil {
		return exc
	}
	f.push(v)
	return nil
}

func (f *frame) dup2() *object.Object {
	n := len(f.stack)
	if n < 2 {
		return object.NewRuntimeError("Stack underflow")
	}
	f.push(f.stack[n-2])
	return nil
}

// pushTry records the current stack depth and a catch pc.
func (f *frame) pushTry(catchPC int) {
	f.tryStack = append(f.tryStack, tryFrame{depth: len(f.stack), catchPC: catchPC})
}

func (f *frame) popTry() {
	if len(f.tryStack) > 0 {
		f.tryStack = f.tryStack[:len(f.tryStack)-1]
	}
}

// catch unwinds to the innermost try frame on an exception, truncating
// the value stack, pushing the exception, and jumping to the catch pc
// (§4.6). It reports false when no frame remains, meaning the exception
// propagates out of the interpreter.
func (f *frame) catch(exc *object.Object) bool {
	if len(f.tryStack) == 0 {
		return false
	}
	n := len(f.tryStack) - 1
	t := f.tryStack[n]
	f.tryStack = f.tryStack[:n]
	f.stack = f.stack[:t.depth]
	f.push(exc)
	f.dec.pos = t.catchPC
	return true
}
