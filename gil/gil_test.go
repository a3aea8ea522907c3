package gil

import (
	"sync"
	"testing"
)

// testGIL is shared across every test in this file: New panics on a
// second call (mirroring original_source/src/gcell.rs's GCellOwner::make,
// a genuine process-wide once-only singleton, not a bug to work around
// per-test).
var (
	testGILOnce sync.Once
	testGIL     *GIL
)

func sharedGIL() *GIL {
	testGILOnce.Do(func() {
		testGIL = New()
	})
	return testGIL
}

func TestCellReadWrite(t *testing.T) {
	g := sharedGIL()
	cell := NewCell(0)

	o := g.Lock()
	*cell.RW(o) = 42
	if got := *cell.RO(o); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	g.Unlock()
}

func TestHandleRoundTrip(t *testing.T) {
	g := sharedGIL()
	h := NewHandle("hello")

	o := g.Lock()
	if got := *h.RO(o); got != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
	*h.RW(o) = "world"
	g.Unlock()

	o = g.Lock()
	if got := *h.RO(o); got != "world" {
		t.Fatalf("got %q, want world", got)
	}
	g.Unlock()
}

func TestYieldReleasesAndReacquires(t *testing.T) {
	g := sharedGIL()
	cell := NewCell(0)

	o := g.Lock()
	*cell.RW(o) = 1

	var wg sync.WaitGroup
	wg.Add(1)
	g.Yield(func() {
		go func() {
			defer wg.Done()
			o := g.Lock()
			*cell.RW(o) = 2
			g.Unlock()
		}()
		wg.Wait()
	})

	// Yield has already reacquired the GIL, so o is valid again here.
	if got := *cell.RO(o); got != 2 {
		t.Fatalf("got %d, want 2 (other goroutine should have run during Yield)", got)
	}
	g.Unlock()
}

func TestHandleIDsAreDistinctAndStable(t *testing.T) {
	a := NewHandle(1)
	b := NewHandle(2)

	if a.ID() == b.ID() {
		t.Fatalf("distinct handles got the same diagnostic ID")
	}
	if a.ID() != a.ID() {
		t.Fatalf("a handle's diagnostic ID should be stable across calls")
	}
}
