package gdict

// Iterator walks live entries in table-slot order. It records the
// generation at creation and re-checks it on every Next, matching
// original_source/src/gdict.rs's GDictIterator.
type Iterator[K any, V any] struct {
	d          *Dict[K, V]
	generation uint64
	pos        int
}

// Iter returns a forward iterator over d.
func (d *Dict[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, generation: d.generation}
}

// Next advances the iterator. ok is false when iteration is exhausted;
// fault is non-nil when the dict was mutated since the iterator was
// created.
func (it *Iterator[K, V]) Next() (key K, value V, ok bool, fault *Fault) {
	if it.d.generation != it.generation {
		return key, value, false, mutatedFault()
	}
	for it.pos < len(it.d.entries) {
		e := it.d.entries[it.pos]
		it.pos++
		if e.state == slotUsed {
			return e.key, e.value, true, nil
		}
	}
	return key, value, false, nil
}

// MutIterator is a forward iterator that additionally allows removing
// the entry it last yielded, mirroring GDictMutIterator.
type MutIterator[K any, V any] struct {
	d          *Dict[K, V]
	generation uint64
	pos        int
	lastSlot   int
	hasLast    bool
}

// IterMut returns a mutable forward iterator over d.
func (d *Dict[K, V]) IterMut() *MutIterator[K, V] {
	return &MutIterator[K, V]{d: d, generation: d.generation, lastSlot: -1}
}

func (it *MutIterator[K, V]) Next() (key K, value V, ok bool, fault *Fault) {
	if it.d.generation != it.generation {
		return key, value, false, mutatedFault()
	}
	it.hasLast = false
	for it.pos < len(it.d.entries) {
		slot := it.pos
		e := it.d.entries[it.pos]
		it.pos++
		if e.state == slotUsed {
			it.lastSlot = slot
			it.hasLast = true
			return e.key, e.value, true, nil
		}
	}
	return key, value, false, nil
}

// RemoveCurrent removes the entry last returned by Next. It is an error
// to call this without a preceding successful Next.
func (it *MutIterator[K, V]) RemoveCurrent() *Fault {
	if !it.hasLast {
		return &Fault{Kind: FaultKeyMissing, Msg: "RemoveCurrent called with no current entry"}
	}
	it.d.entries[it.lastSlot] = entry[K, V]{state: slotDeleted}
	it.d.used--
	it.d.generation++
	it.generation = it.d.generation
	it.hasLast = false
	return nil
}

// HashIterator walks only the probe chain for a single hash value —
// the slots insert/get/pop themselves would visit — rather than the
// whole table. It is exposed for diagnostics and tests that want to
// observe collision chains directly, mirroring GDictHashIterator.
type HashIterator[K any, V any] struct {
	d          *Dict[K, V]
	generation uint64
	hash       uint64
	i          uint64
	perturb    uint64
	started    bool
}

// IterHash returns an iterator over the probe chain for hash.
func (d *Dict[K, V]) IterHash(hash uint64) *HashIterator[K, V] {
	return &HashIterator[K, V]{d: d, generation: d.generation, hash: hash}
}

func (it *HashIterator[K, V]) Next() (key K, value V, ok bool, fault *Fault) {
	if it.d.generation != it.generation {
		return key, value, false, mutatedFault()
	}
	if !it.started {
		it.i = it.hash & it.d.mask
		it.perturb = it.hash
		it.started = true
	} else {
		it.i, it.perturb = nextProbe(it.i, it.perturb)
		it.i &= it.d.mask
	}
	for {
		slot := it.d.entries[it.i]
		if slot.state == slotEmpty {
			return key, value, false, nil
		}
		if slot.state == slotUsed && slot.hash == it.hash {
			return slot.key, slot.value, true, nil
		}
		it.i, it.perturb = nextProbe(it.i, it.perturb)
		it.i &= it.d.mask
	}
}

// MutHashIterator is the removable counterpart to HashIterator,
// mirroring GDictMutHashIterator.
type MutHashIterator[K any, V any] struct {
	inner   HashIterator[K, V]
	lastIdx uint64
	hasLast bool
}

// IterHashMut returns a mutable iterator over the probe chain for hash.
func (d *Dict[K, V]) IterHashMut(hash uint64) *MutHashIterator[K, V] {
	return &MutHashIterator[K, V]{inner: HashIterator[K, V]{d: d, generation: d.generation, hash: hash}}
}

func (it *MutHashIterator[K, V]) Next() (key K, value V, ok bool, fault *Fault) {
	key, value, ok, fault = it.inner.Next()
	if ok {
		it.lastIdx = it.inner.i
		it.hasLast = true
	} else {
		it.hasLast = false
	}
	return
}

// RemoveCurrent removes the entry last returned by Next.
func (it *MutHashIterator[K, V]) RemoveCurrent() *Fault {
	if !it.hasLast {
		return &Fault{Kind: FaultKeyMissing, Msg: "RemoveCurrent called with no current entry"}
	}
	d := it.inner.d
	d.entries[it.lastIdx] = entry[K, V]{state: slotDeleted}
	d.used--
	d.generation++
	it.inner.generation = d.generation
	it.hasLast = false
	return nil
}
