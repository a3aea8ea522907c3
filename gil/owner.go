// Package gil implements the single process-wide execution lock and the
// interior-mutable cells it guards.
//
// The design mirrors original_source/src/gcell.rs: a zero-sized Owner
// token stands in for Rust's borrow-checked GCellOwner, and a GIL wraps a
// sync.Mutex plus the one Owner the process will ever create. Go has no
// borrow checker, so where the Rust original enforces shared-vs-exclusive
// access at compile time, Go enforces only "you must be holding the
// token" by requiring every Cell access to take an *Owner argument.
// Callers that fabricate an *Owner without holding the GIL defeat the
// discipline; nothing in the language stops that, same as it wouldn't in
// C. The contract is a convention, documented here, not a proof.
package gil

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// Owner is the capability required to read or write a Cell. Exactly one
// Owner exists per process; obtaining it requires holding the GIL.
type Owner struct{}

var ownerCreated atomic.Bool

func newOwner() *Owner {
	if ownerCreated.Swap(true) {
		panic("gil: newOwner called more than once")
	}
	return &Owner{}
}

// GIL is the process-wide execution lock. Exactly one GIL should exist per
// process; construct it once at startup with New.
type GIL struct {
	mu    sync.Mutex
	owner *Owner
}

// New creates the process's GIL and its single Owner token. Calling New a
// second time panics, mirroring GCellOwner::make's fatal-on-reinit
// contract.
func New() *GIL {
	return &GIL{owner: newOwner()}
}

// Lock acquires the GIL and returns the Owner token. Every goroutine that
// wants to touch a Cell must hold the token returned here.
func (g *GIL) Lock() *Owner {
	g.mu.Lock()
	return g.owner
}

// Unlock releases the GIL. The Owner token obtained from Lock must not be
// used again after Unlock.
func (g *GIL) Unlock() {
	g.mu.Unlock()
}

// Yield releases the GIL, runs f without holding it, then reacquires the
// GIL before returning. Use this around blocking operations (sleep, I/O)
// so other goroutines can make progress.
//
// If f panics while the GIL is released, the process aborts rather than
// unwinding back into code that assumes the GIL is held: a panic crossing
// the yield boundary would otherwise resume interpreter code with the
// lock in an unknown state.
func (g *GIL) Yield(f func()) {
	g.Unlock()
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "gil: fatal panic while GIL released: %v\n", r)
			os.Exit(2)
		}
	}()
	f()
	g.Lock()
}
