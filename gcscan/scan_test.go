package gcscan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type node struct {
	name string
	refs []*node
}

func (n *node) Scan(visit Visit) {
	for _, r := range n.refs {
		visit(r)
	}
}

func TestReachableFollowsEdgesAndDedupes(t *testing.T) {
	c := &node{name: "c"}
	b := &node{name: "b", refs: []*node{c}}
	a := &node{name: "a", refs: []*node{b, c}} // c reachable two ways

	var as []any
	for _, n := range []*node{a} {
		as = append(as, n)
	}
	got := Reachable(as...)
	if len(got) != 3 {
		t.Fatalf("expected 3 distinct reachable nodes, got %d: %v", len(got), got)
	}
}

func TestReachableHandlesCycles(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b"}
	a.refs = []*node{b}
	b.refs = []*node{a}

	got := Reachable(a)
	if len(got) != 2 {
		t.Fatalf("expected the cycle to terminate at 2 nodes, got %d", len(got))
	}
}

func TestReachableSkipsUnreferencedNodes(t *testing.T) {
	unreached := &node{name: "unreached"}
	reached := &node{name: "reached"}

	got := Reachable(reached)
	for _, v := range got {
		if v == any(unreached) {
			t.Fatalf("unreferenced node should not appear in the walk")
		}
	}
}

func TestSummarizeCountsByType(t *testing.T) {
	values := []any{1, 2, "x"}
	stats := Summarize(values, func(v any) string {
		switch v.(type) {
		case int:
			return "int"
		default:
			return "other"
		}
	})
	want := Stats{Total: 3, ByType: map[string]int{"int": 2, "other": 1}}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}
}
