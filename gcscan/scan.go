// Package gcscan implements the cooperative scanning protocol described
// in spec §4.2: a collector (here, a diagnostic walker, not the actual
// collector — Go's runtime GC reclaims memory on its own) asks each
// managed value to report the other managed values it directly
// references, without taking the execution lock. Kinds that embed
// collections (Tuple, Dict, Basic) forward scanning into their
// contents; scalar kinds contribute nothing.
package gcscan

// Visit is called once per outgoing reference a Scannable value
// reports. ref is typically a *object.Object; walkers type-switch on it.
type Visit func(ref any)

// Scannable is implemented by any managed value that can enumerate its
// own outgoing references. gcscan imports nothing from package object,
// so object can import gcscan and implement this without an import
// cycle.
type Scannable interface {
	Scan(visit Visit)
}

// Reachable performs a breadth-first walk from roots, following every
// edge reported by Scan, and returns the set of distinct reachable
// values (identified by their own equality, e.g. pointer identity for
// *object.Object). Values that don't implement Scannable are still
// recorded as reachable; they just contribute no further edges.
func Reachable(roots ...any) []any {
	seen := make(map[any]bool)
	var order []any
	queue := append([]any{}, roots...)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if v == nil || seen[v] {
			continue
		}
		seen[v] = true
		order = append(order, v)

		if s, ok := v.(Scannable); ok {
			s.Scan(func(ref any) {
				if ref != nil && !seen[ref] {
					queue = append(queue, ref)
				}
			})
		}
	}
	return order
}

// Stats summarizes a Reachable walk by the dynamic type of each visited
// value, for heap-composition diagnostics (§4.2 "heap statistics").
type Stats struct {
	Total int
	ByType map[string]int
}

// Summarize classifies a Reachable result by dynamic type, using
// typeName to label each value (callers supply this since gcscan has no
// way to name object package kinds without importing it).
func Summarize(values []any, typeName func(any) string) Stats {
	s := Stats{ByType: make(map[string]int)}
	for _, v := range values {
		s.Total++
		s.ByType[typeName(v)]++
	}
	return s
}
