package gil

import "github.com/google/uuid"

// Cell is the interior-mutable container every mutable heap value lives
// in. Reading requires an *Owner (any holder of the GIL); writing also
// requires an *Owner, since this process has exactly one GIL and exactly
// one Owner, both forms of access simply require the caller to be
// holding the lock.
type Cell[T any] struct {
	v T
}

// NewCell wraps v in a new Cell.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// RO returns a read-only view of the cell's contents. The Owner argument
// is a capability check: producing one requires holding the GIL.
func (c *Cell[T]) RO(_ *Owner) *T {
	return &c.v
}

// RW returns a mutable view of the cell's contents.
func (c *Cell[T]) RW(_ *Owner) *T {
	return &c.v
}

// Peek reads a cell's contents without an Owner capability, for the
// scan-cooperation protocol (§4.2): "the scan reads the cell without
// taking the lock (the GC runs at safe points that exclude mutators)".
// Only package gcscan's diagnostic walker should call this — anything
// running as an ordinary mutator must go through RO/RW.
func (c *Cell[T]) Peek() *T {
	return &c.v
}

// Handle is a managed heap reference: a pointer to a Cell plus whatever
// bookkeeping the GC-cooperation layer (package gcscan) needs to find it
// during a reachability walk. It is an ordinary Go pointer under the
// hood; the Go runtime's collector reclaims it. The Handle type exists so
// gcscan has a uniform thing to walk, matching the spec's requirement
// that handles be scan-aware even though Go's GC itself is not
// cooperative.
type Handle[T any] struct {
	cell *Cell[T]
	id   uuid.UUID
}

// NewHandle allocates a new Handle wrapping a fresh Cell containing v,
// stamped with a random identity (see ID) that labels the handle stably
// without printing a raw pointer address.
func NewHandle[T any](v T) *Handle[T] {
	return &Handle[T]{cell: NewCell(v), id: uuid.New()}
}

// ID returns the handle's diagnostic identity, stable for the handle's
// lifetime.
func (h *Handle[T]) ID() string {
	return h.id.String()
}

// RO reads through the handle.
func (h *Handle[T]) RO(o *Owner) *T {
	return h.cell.RO(o)
}

// RW writes through the handle.
func (h *Handle[T]) RW(o *Owner) *T {
	return h.cell.RW(o)
}

// Cell exposes the underlying cell, e.g. for scan walkers that need to
// identify identical handles by cell pointer.
func (h *Handle[T]) Cell() *Cell[T] {
	return h.cell
}

// Peek reads through the handle without an Owner, for package gcscan.
func (h *Handle[T]) Peek() *T {
	return h.cell.Peek()
}
