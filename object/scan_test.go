package object

import (
	"testing"

	"github.com/rhelmot/objectively/gcscan"
)

func TestScanReachesTupleElements(t *testing.T) {
	owner := Lock()
	defer Unlock()

	inner := NewInt(7)
	tup := NewTuple(inner, NewInt(8))

	var seen bool
	tup.Scan(func(ref any) {
		if o, ok := ref.(*Object); ok && Is(o, inner) {
			seen = true
		}
	})
	if !seen {
		t.Fatalf("Scan over a tuple did not report its element")
	}

	_ = owner
}

func TestScanReachesDictEntries(t *testing.T) {
	owner := Lock()
	defer Unlock()

	d := NewDict()
	key := NewInt(1)
	val := NewInt(2)
	if exc := SetItem(owner, d, key, val); exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}

	var sawKey, sawVal bool
	d.Scan(func(ref any) {
		o, ok := ref.(*Object)
		if !ok {
			return
		}
		if Is(o, key) {
			sawKey = true
		}
		if Is(o, val) {
			sawVal = true
		}
	})
	if !sawKey || !sawVal {
		t.Fatalf("Scan over a dict did not report its key/value pair")
	}
}

func TestReachableFromGlobalRootsIncludesTypeChain(t *testing.T) {
	root := Global().IntType
	reached := gcscan.Reachable(root)

	var sawObjectType bool
	for _, v := range reached {
		if o, ok := v.(*Object); ok && Is(o, Global().ObjectType) {
			sawObjectType = true
		}
	}
	if !sawObjectType {
		t.Fatalf("walking from int's type should reach object's type via the base chain")
	}
}
