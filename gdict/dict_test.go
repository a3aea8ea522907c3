package gdict

import (
	"errors"
	"testing"
)

func intHash(k int) (uint64, error) { return uint64(k), nil }
func intEq(a, b int) (bool, error)  { return a == b, nil }

func TestInsertGetPop(t *testing.T) {
	d := New[int, string](intHash, intEq)
	if fault := d.Insert(1, "one"); fault != nil {
		t.Fatalf("insert: %v", fault)
	}
	v, fault := d.Get(1)
	if fault != nil || v != "one" {
		t.Fatalf("get: %v %v", v, fault)
	}
	if _, fault := d.Pop(1); fault != nil {
		t.Fatalf("pop: %v", fault)
	}
	if _, fault := d.Get(1); fault == nil || fault.Kind != FaultKeyMissing {
		t.Fatalf("expected FaultKeyMissing, got %v", fault)
	}
}

func TestGrowthPreservesEntries(t *testing.T) {
	d := New[int, int](intHash, intEq)
	const n = 200
	for i := 0; i < n; i++ {
		if fault := d.Insert(i, i*2); fault != nil {
			t.Fatalf("insert %d: %v", i, fault)
		}
	}
	for i := 0; i < n; i++ {
		v, fault := d.Get(i)
		if fault != nil || v != i*2 {
			t.Fatalf("get %d: %v %v", i, v, fault)
		}
	}
	if d.Len() != n {
		t.Fatalf("len = %d, want %d", d.Len(), n)
	}
}

func TestOverwriteDoesNotChangeLen(t *testing.T) {
	d := New[int, int](intHash, intEq)
	d.Insert(1, 1)
	genBefore := d.Generation()
	d.Insert(1, 2)
	if d.Len() != 1 {
		t.Fatalf("len = %d, want 1", d.Len())
	}
	if d.Generation() == genBefore {
		t.Fatalf("generation did not advance on overwrite")
	}
	v, _ := d.Get(1)
	if v != 2 {
		t.Fatalf("got %d, want 2", v)
	}
}

func TestForceNextReserveFailure(t *testing.T) {
	d := New[int, int](intHash, intEq)
	// Insert a few keys first; reserve() runs on every insert of a new
	// key, so the forced failure hits the next one.
	for i := 0; i < minCapacity/2; i++ {
		d.Insert(i, i)
	}
	d.ForceNextReserveFailure = true
	fault := d.Insert(1000, 1000)
	if fault == nil || fault.Kind != FaultOutOfMemory {
		t.Fatalf("expected FaultOutOfMemory, got %v", fault)
	}
}

func TestMutationDuringEqRaises(t *testing.T) {
	var d2 *Dict[int, int]
	reentrant := func(a, b int) (bool, error) {
		if a == 999 {
			// Reentrant mutation during the eq call itself.
			d2.Insert(42, 42)
		}
		return a == b, nil
	}
	d2 = New[int, int](intHash, reentrant)
	d2.Insert(999, 1)
	_, fault := d2.Get(999)
	if fault == nil || fault.Kind != FaultMutated {
		t.Fatalf("expected FaultMutated, got %v", fault)
	}
}

func TestCallbackErrorPropagates(t *testing.T) {
	boom := errors.New("eq exploded")
	failEq := func(a, b int) (bool, error) { return false, boom }
	d := New[int, int](intHash, failEq)
	d.Insert(1, 1)
	_, fault := d.Get(1)
	if fault == nil || fault.Kind != FaultCallback || !errors.Is(fault, boom) {
		t.Fatalf("expected wrapped callback error, got %v", fault)
	}
}

func TestIteratorDetectsMutation(t *testing.T) {
	d := New[int, int](intHash, intEq)
	d.Insert(1, 1)
	d.Insert(2, 2)
	it := d.Iter()
	if _, _, ok, fault := it.Next(); !ok || fault != nil {
		t.Fatalf("first Next: ok=%v fault=%v", ok, fault)
	}
	d.Insert(3, 3)
	if _, _, _, fault := it.Next(); fault == nil || fault.Kind != FaultMutated {
		t.Fatalf("expected FaultMutated after mutation, got %v", fault)
	}
}

func TestMutIteratorRemoveCurrent(t *testing.T) {
	d := New[int, string](intHash, intEq)
	d.Insert(1, "a")
	d.Insert(2, "b")
	it := d.IterMut()
	removed := map[int]bool{}
	for {
		k, _, ok, fault := it.Next()
		if fault != nil {
			t.Fatalf("next: %v", fault)
		}
		if !ok {
			break
		}
		if k == 1 {
			if fault := it.RemoveCurrent(); fault != nil {
				t.Fatalf("remove: %v", fault)
			}
			removed[1] = true
		}
	}
	if !removed[1] {
		t.Fatalf("never removed key 1")
	}
	if _, fault := d.Get(1); fault == nil || fault.Kind != FaultKeyMissing {
		t.Fatalf("expected key 1 gone, got %v", fault)
	}
	if v, fault := d.Get(2); fault != nil || v != "b" {
		t.Fatalf("key 2 should survive, got %v %v", v, fault)
	}
}

func TestHashIteratorWalksOnlyMatchingBucket(t *testing.T) {
	d := New[int, int](intHash, intEq)
	d.Insert(1, 1)
	d.Insert(1+8, 2) // lands in the same initial probe slot as key 1, different hash
	d.Insert(2, 99)  // different hash entirely, should not appear

	it := d.IterHash(1)
	seen := map[int]int{}
	for {
		k, v, ok, fault := it.Next()
		if fault != nil {
			t.Fatalf("next: %v", fault)
		}
		if !ok {
			break
		}
		seen[k] = v
	}
	if len(seen) != 1 || seen[1] != 1 {
		t.Fatalf("expected only the exact-hash entry, got %v", seen)
	}
}
