// Package gdict implements the runtime's hash-keyed dictionary: an
// open-addressed table keyed by values compared through caller-supplied
// hash/equality callbacks rather than Go's built-in comparison, because
// keys are interpreted-language objects whose __hash__/__eq__ may run
// arbitrary bytecode.
//
// The probe sequence (perturb-shift) and the generation-counter mutation
// guard are grounded on other_examples' grumpy dict.go (dictNextIndex,
// Dict.putItem's version check) and on original_source/src/gdict.rs
// (the GDict generation field and its four iterator variants). Unlike
// grumpy, this table carries no internal mutex: the runtime has exactly
// one execution lock (package gil) serializing every mutator, so the only
// hazard is same-goroutine reentrancy — a key's __eq__ or __hash__
// mutating the very dict being probed — which the generation counter
// alone is enough to catch.
package gdict

import "fmt"

// FaultKind classifies the ways a dictionary operation can fail without
// involving the caller's own hash/eq error.
type FaultKind uint8

const (
	// FaultMutated means the generation counter advanced during a
	// __hash__ or __eq__ callback: the dict was mutated reentrantly.
	FaultMutated FaultKind = iota
	// FaultKeyMissing means a lookup or pop found no matching key.
	FaultKeyMissing
	// FaultOutOfMemory means the table could not reserve room for the
	// incoming entry.
	FaultOutOfMemory
	// FaultCallback wraps an error returned by the caller's hash or eq
	// function (e.g. a TypeError from a malformed __eq__ result).
	FaultCallback
)

// Fault is the error type every gdict operation returns. Callers (the
// object package) translate Faults into the matching *object.Exception.
type Fault struct {
	Kind FaultKind
	Msg  string
	Err  error // set when Kind == FaultCallback
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return f.Msg + ": " + f.Err.Error()
	}
	return f.Msg
}

func (f *Fault) Unwrap() error { return f.Err }

func mutatedFault() *Fault {
	return &Fault{Kind: FaultMutated, Msg: "dict was mutated during iteration"}
}

func keyMissingFault() *Fault {
	return &Fault{Kind: FaultKeyMissing, Msg: "key not found"}
}

func oomFault() *Fault {
	return &Fault{Kind: FaultOutOfMemory, Msg: "out of memory"}
}

func callbackFault(err error) *Fault {
	return &Fault{Kind: FaultCallback, Msg: "hash/eq callback failed", Err: err}
}

// HashFunc computes a key's hash. It may run arbitrary user code (a
// __hash__ dunder) and may therefore fail.
type HashFunc[K any] func(k K) (uint64, error)

// EqFunc compares two keys for equality. It may run arbitrary user code
// (a __eq__ dunder) and may therefore fail.
type EqFunc[K any] func(a, b K) (bool, error)

const (
	minCapacity = 8
	loadNum     = 2 // grow when (fill+1)*loadDen >= capacity*loadNum
	loadDen     = 3
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotUsed
	slotDeleted
)

type entry[K any, V any] struct {
	state slotState
	hash  uint64
	key   K
	value V
}

// Dict is an open-addressed hash table from K to V.
//
// ForceNextReserveFailure, when set, makes the next growth/reservation
// fail with FaultOutOfMemory instead of allocating. It exists only so
// tests can exercise the MemoryError path the spec requires: Go's
// allocator has no ordinary, catchable "out of memory" signal the way
// the original Rust implementation's fallible try_reserve does.
type Dict[K any, V any] struct {
	hash HashFunc[K]
	eq   EqFunc[K]

	entries    []entry[K, V]
	mask       uint64
	used       int // live entries
	fill       int // live + tombstones
	generation uint64

	ForceNextReserveFailure bool
}

// New creates an empty Dict using the given hash and equality callbacks.
func New[K any, V any](hash HashFunc[K], eq EqFunc[K]) *Dict[K, V] {
	d := &Dict[K, V]{hash: hash, eq: eq}
	d.entries = make([]entry[K, V], minCapacity)
	d.mask = minCapacity - 1
	return d
}

// Len returns the number of live entries.
func (d *Dict[K, V]) Len() int { return d.used }

// Generation returns the current mutation generation, bumped on every
// insert, removal, and rehash.
func (d *Dict[K, V]) Generation() uint64 { return d.generation }

func nextProbe(i, perturb uint64) (uint64, uint64) {
	perturb >>= 5
	return (i*5 + perturb + 1), perturb
}

func (d *Dict[K, V]) reserve() *Fault {
	if d.ForceNextReserveFailure {
		d.ForceNextReserveFailure = false
		return oomFault()
	}
	if (d.fill+1)*loadDen >= (len(d.entries))*loadNum {
		return d.grow()
	}
	return nil
}

func (d *Dict[K, V]) grow() *Fault {
	newCap := len(d.entries) * 4
	if d.used < len(d.entries)/2 {
		// mostly tombstones: rehash at the same order of magnitude.
		newCap = len(d.entries) * 2
	}
	if newCap < minCapacity {
		newCap = minCapacity
	}
	old := d.entries
	d.entries = make([]entry[K, V], newCap)
	d.mask = uint64(newCap) - 1
	d.fill = 0
	d.used = 0
	for _, e := range old {
		if e.state != slotUsed {
			continue
		}
		d.insertFresh(e.hash, e.key, e.value)
	}
	d.generation++
	return nil
}

// insertFresh places a known-absent key (used during rehash only, no
// callbacks, cannot fail).
func (d *Dict[K, V]) insertFresh(hash uint64, key K, value V) {
	i := hash & d.mask
	perturb := hash
	for d.entries[i].state == slotUsed {
		i, perturb = nextProbe(i, perturb)
		i &= d.mask
	}
	if d.entries[i].state == slotEmpty {
		d.fill++
	}
	d.entries[i] = entry[K, V]{state: slotUsed, hash: hash, key: key, value: value}
	d.used++
}

// lookup finds the slot holding a key equal to k, or the first
// empty/deleted slot suitable for inserting it. It re-checks the
// generation counter around every eq call since eq may run arbitrary
// code that mutates d.
func (d *Dict[K, V]) lookup(hash uint64, k K) (idx uint64, found bool, fault *Fault) {
	i := hash & d.mask
	perturb := hash
	firstFree := int64(-1)
	for {
		slot := d.entries[i]
		switch slot.state {
		case slotEmpty:
			if firstFree >= 0 {
				return uint64(firstFree), false, nil
			}
			return i, false, nil
		case slotDeleted:
			if firstFree < 0 {
				firstFree = int64(i)
			}
		case slotUsed:
			if slot.hash == hash {
				gen := d.generation
				eq, err := d.eq(k, slot.key)
				if err != nil {
					return 0, false, callbackFault(err)
				}
				if d.generation != gen {
					return 0, false, mutatedFault()
				}
				if eq {
					return i, true, nil
				}
			}
		}
		i, perturb = nextProbe(i, perturb)
		i &= d.mask
	}
}

func (d *Dict[K, V]) hashOf(k K) (uint64, *Fault) {
	gen := d.generation
	h, err := d.hash(k)
	if err != nil {
		return 0, callbackFault(err)
	}
	if d.generation != gen {
		return 0, mutatedFault()
	}
	return h, nil
}

// Insert sets d[k] = v, inserting or overwriting as needed.
func (d *Dict[K, V]) Insert(k K, v V) *Fault {
	h, fault := d.hashOf(k)
	if fault != nil {
		return fault
	}
	idx, found, fault := d.lookup(h, k)
	if fault != nil {
		return fault
	}
	if found {
		d.entries[idx].value = v
		d.generation++
		return nil
	}
	if fault := d.reserve(); fault != nil {
		return fault
	}
	// reserve() may have rehashed; re-lookup the slot.
	idx, found, fault = d.lookup(h, k)
	if fault != nil {
		return fault
	}
	if found {
		d.entries[idx].value = v
		d.generation++
		return nil
	}
	if d.entries[idx].state == slotEmpty {
		d.fill++
	}
	d.entries[idx] = entry[K, V]{state: slotUsed, hash: h, key: k, value: v}
	d.used++
	d.generation++
	return nil
}

// Get returns d[k], or a FaultKeyMissing fault if absent.
func (d *Dict[K, V]) Get(k K) (V, *Fault) {
	var zero V
	h, fault := d.hashOf(k)
	if fault != nil {
		return zero, fault
	}
	idx, found, fault := d.lookup(h, k)
	if fault != nil {
		return zero, fault
	}
	if !found {
		return zero, keyMissingFault()
	}
	return d.entries[idx].value, nil
}

// Has reports whether k is present.
func (d *Dict[K, V]) Has(k K) (bool, *Fault) {
	h, fault := d.hashOf(k)
	if fault != nil {
		return false, fault
	}
	_, found, fault := d.lookup(h, k)
	if fault != nil {
		return false, fault
	}
	return found, nil
}

// Pop removes and returns d[k], or a FaultKeyMissing fault if absent.
func (d *Dict[K, V]) Pop(k K) (V, *Fault) {
	var zero V
	h, fault := d.hashOf(k)
	if fault != nil {
		return zero, fault
	}
	idx, found, fault := d.lookup(h, k)
	if fault != nil {
		return zero, fault
	}
	if !found {
		return zero, keyMissingFault()
	}
	v := d.entries[idx].value
	d.entries[idx] = entry[K, V]{state: slotDeleted}
	d.used--
	d.generation++
	return v, nil
}

// String satisfies fmt.Stringer for debugging; it does not call into
// user hash/eq callbacks.
func (d *Dict[K, V]) String() string {
	return fmt.Sprintf("Dict{len=%d, generation=%d}", d.used, d.generation)
}
