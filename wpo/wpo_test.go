package wpo

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// listGraph is a minimal cfggraph.Graph over string node names, built from
// an explicit successor adjacency list; predecessors are derived by
// reversing it so fixtures only have to state edges once.
type listGraph struct {
	entry string
	succ  map[string][]string
	pred  map[string][]string
	nodes []string
}

func newListGraph(entry string, succ map[string][]string) *listGraph {
	g := &listGraph{entry: entry, succ: succ, pred: map[string][]string{}}
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			g.nodes = append(g.nodes, n)
		}
	}
	add(entry)
	for from, tos := range succ {
		add(from)
		for _, to := range tos {
			add(to)
			g.pred[to] = append(g.pred[to], from)
		}
	}
	return g
}

func (g *listGraph) Entry() string                { return g.entry }
func (g *listGraph) Successors(n string) []string { return g.succ[n] }
func (g *listGraph) Predecessors(n string) []string { return g.pred[n] }
func (g *listGraph) Nodes() []string              { return g.nodes }

func nodeNames(w *Wpo[string]) []string {
	names := make([]string, w.Len())
	for i := 0; i < w.Len(); i++ {
		n := w.At(i)
		if v, ok := n.Node(); ok {
			names[i] = v
		} else {
			names[i] = "?"
		}
	}
	return names
}

func TestBuildAcyclicDiamond(t *testing.T) {
	g := newListGraph("A", map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
	})
	w := Build[string](g)

	if diff := cmp.Diff([]string{"A", "C", "B", "D"}, nodeNames(w)); diff != "" {
		t.Fatalf("unexpected linear order (-want +got):\n%s", diff)
	}
	if got := w.Entry(); got != 0 {
		t.Errorf("Entry() = %d, want 0", got)
	}
	for i := 0; i < w.Len(); i++ {
		if w.At(i).Kind() != Plain {
			t.Errorf("node %d: kind = %s, want plain (diamond has no loops)", i, w.At(i).Kind())
		}
	}
	if arrows := w.IrreducibleArrows(); len(arrows) != 0 {
		t.Errorf("IrreducibleArrows() = %v, want none", arrows)
	}
	if err := w.CheckReducible(); err != nil {
		t.Errorf("CheckReducible() = %v, want nil", err)
	}
}

func TestBuildSingleLoopWithExit(t *testing.T) {
	// A enters the loop at B; the loop body is {B, C}; D is reached only
	// by leaving the loop through B.
	g := newListGraph("A", map[string][]string{
		"A": {"B"},
		"B": {"C", "D"},
		"C": {"B"},
	})
	w := Build[string](g)

	if diff := cmp.Diff([]string{"A", "B", "C", "?", "D"}, nodeNames(w)); diff != "" {
		t.Fatalf("unexpected linear order (-want +got):\n%s", diff)
	}

	head := w.At(1)
	if head.Kind() != Head {
		t.Fatalf("node 1 kind = %s, want head", head.Kind())
	}
	if head.PairIndex() != 3 {
		t.Errorf("head pair index = %d, want 3", head.PairIndex())
	}
	if w.At(3).Kind() != Exit || w.At(3).PairIndex() != 1 {
		t.Errorf("node 3 = %s pair=%d, want exit paired with 1", w.At(3).Kind(), w.At(3).PairIndex())
	}
	if head.ReduciblePredCount() != 1 {
		t.Errorf("head reducible preds = %d, want 1 (only A enters from outside)", head.ReduciblePredCount())
	}
	if arrows := w.IrreducibleArrows(); len(arrows) != 0 {
		t.Errorf("IrreducibleArrows() = %v, want none (single entry through the head)", arrows)
	}

	c := w.At(2)
	if got, want := c.LiftedSuccessors(), []int{1}; !cmp.Equal(got, want) {
		t.Errorf("C's lifted successors = %v, want %v (back edge to head stays direct)", got, want)
	}
}

// TestIsBackEdge checks the back-edge relation against a simple loop: the
// C->B arrow closes the cycle and must be reported as a back edge into B,
// while every other edge (including the unrelated A->B entry) must not be,
// and the back edge's target must be a Head.
func TestIsBackEdge(t *testing.T) {
	g := newListGraph("A", map[string][]string{
		"A": {"B"},
		"B": {"C", "D"},
		"C": {"B"},
	})
	w := Build[string](g)

	if !w.IsBackEdge("B", "C") {
		t.Error(`IsBackEdge("B", "C") = false, want true (C->B closes the loop)`)
	}
	headIdx, ok := w.IndexOf("B")
	if !ok || w.At(headIdx).Kind() != Head {
		t.Fatalf("B's wpo node kind = %v, want head (target of a back edge)", w.At(headIdx).Kind())
	}

	if w.IsBackEdge("B", "A") {
		t.Error(`IsBackEdge("B", "A") = true, want false (A->B is a forward entry, not a back edge)`)
	}
	if w.IsBackEdge("D", "B") {
		t.Error(`IsBackEdge("D", "B") = true, want false (B->D leaves the loop, it doesn't close one)`)
	}
}

func TestBuildIrreducibleLoop(t *testing.T) {
	// A enters the {B, C} loop through both B and C, so the edge into C
	// bypasses the discovered head B.
	g := newListGraph("A", map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"B"},
	})
	w := Build[string](g)

	if diff := cmp.Diff([]string{"A", "B", "C", "?"}, nodeNames(w)); diff != "" {
		t.Fatalf("unexpected linear order (-want +got):\n%s", diff)
	}

	arrows := w.IrreducibleArrows()
	if len(arrows) != 1 {
		t.Fatalf("IrreducibleArrows() = %v, want exactly one", arrows)
	}
	if arrows[0].From != "A" || arrows[0].To != "C" || arrows[0].Count != 1 {
		t.Errorf("irreducible arrow = %+v, want A->C x1", arrows[0])
	}

	if err := w.CheckReducible(); err == nil {
		t.Fatal("CheckReducible() = nil, want an error for irreducible input")
	} else if _, ok := err.(*IrreducibleCFGError[string]); !ok {
		t.Errorf("CheckReducible() error type = %T, want *IrreducibleCFGError[string]", err)
	}

	// A's raw successor into C is untouched; only the lifted view redirects
	// the entry through the loop's head.
	a := w.At(0)
	sort.Ints(a.Successors())
	if got, want := a.Successors(), []int{1, 2}; !cmp.Equal(got, want) {
		t.Errorf("A's successors = %v, want %v", got, want)
	}
}

func TestBuildSelfLoop(t *testing.T) {
	g := newListGraph("A", map[string][]string{
		"A": {"A"},
	})
	w := Build[string](g)

	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (head + exit)", w.Len())
	}
	head := w.At(0)
	if head.Kind() != Head {
		t.Fatalf("node 0 kind = %s, want head", head.Kind())
	}
	if head.ReduciblePredCount() != 0 {
		t.Errorf("self-loop head reducible preds = %d, want 0 (its only predecessor is its own back edge)", head.ReduciblePredCount())
	}
	if arrows := w.IrreducibleArrows(); len(arrows) != 0 {
		t.Errorf("IrreducibleArrows() = %v, want none", arrows)
	}
}
