package fixpoint

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/domain/intervalstore"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/variable"
	"github.com/ikos-analyzer/ikoscore/wpo"
)

// listGraph is the same minimal string-keyed cfggraph.Graph fixture style
// used by the wpo package's own tests.
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

func (g *listGraph) Entry() string                  { return g.entry }
func (g *listGraph) Successors(n string) []string   { return g.succ[n] }
func (g *listGraph) Predecessors(n string) []string { return g.pred[n] }
func (g *listGraph) Nodes() []string                { return g.nodes }

// TestRunCountingLoop models:
//
//	x := 0
//	while (x < 10) { x := x + 1 }
//
// as entry -> head -> {body -> head, exit}, and checks the iterator
// widens then narrows x down to exactly [0, 10] at the loop exit.
func TestRunCountingLoop(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	g := newListGraph("entry", map[string][]string{
		"entry": {"head"},
		"head":  {"body", "exit"},
		"body":  {"head"},
	})
	w := wpo.Build[string](g)

	lt10 := linear.Make(linear.Term[variable.ID](number.OneZ, x).Sub(linear.Const[variable.ID](number.FromInt64(9))), linear.LessEqual)
	geq10 := linear.Make(linear.Const[variable.ID](number.FromInt64(10)).Sub(linear.Term[variable.ID](number.OneZ, x)), linear.LessEqual)

	analyze := func(node string, pre domain.Numeric) domain.Numeric {
		switch node {
		case "entry":
			out := pre.Clone()
			out.Assign(x, linear.Const[variable.ID](number.ZeroZ))
			return out
		case "body":
			out := pre.Clone()
			out.Apply(domain.Add, x, linear.Var[variable.ID](x), linear.Const[variable.ID](number.OneZ))
			return out
		default: // head, exit: no transformation of their own
			return pre.Clone()
		}
	}
	analyzeEdge := func(from, to string, out domain.Numeric) domain.Numeric {
		v := out.Clone()
		switch {
		case from == "head" && to == "body":
			v.AddConstraint(lt10)
		case from == "head" && to == "exit":
			v.AddConstraint(geq10)
		}
		return v
	}

	it := NewIterator[string](w, Options[string]{
		AnalyzeNode: analyze,
		AnalyzeEdge: analyzeEdge,
		Bottom:      intervalstore.Bottom(),
	})
	if err := it.Run(intervalstore.Top()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	exitIn, ok := it.In("exit")
	if !ok {
		t.Fatal("exit node was never reached")
	}
	iv := exitIn.ToInterval(x)
	lo, hi := iv.LowerBound(), iv.UpperBound()
	if !lo.IsFinite() || !hi.IsFinite() || lo.Value().Cmp(number.FromInt64(10)) != 0 || hi.Value().Cmp(number.FromInt64(10)) != 0 {
		t.Errorf("x at loop exit = %v, want exactly [10, 10] after narrowing", iv)
	}

	headOut, ok := it.Out("head")
	if !ok {
		t.Fatal("head node was never reached")
	}
	headIv := headOut.ToInterval(x)
	if headIv.LowerBound().Value().Cmp(number.ZeroZ) != 0 {
		t.Errorf("x at loop head lower bound = %v, want 0", headIv.LowerBound())
	}
}

// TestRunCancelled exercises the Cancelled error path.
func TestRunCancelled(t *testing.T) {
	g := newListGraph("A", map[string][]string{"A": {"B"}, "B": {}})
	w := wpo.Build[string](g)

	calls := 0
	it := NewIterator[string](w, Options[string]{
		AnalyzeNode: func(node string, pre domain.Numeric) domain.Numeric { return pre.Clone() },
		Bottom:      intervalstore.Bottom(),
		Cancelled: func() bool {
			calls++
			return calls > 1
		},
	})
	err := it.Run(intervalstore.Top())
	if _, ok := err.(Cancelled); !ok {
		t.Fatalf("Run() error = %v (%T), want Cancelled", err, err)
	}
}

// TestRunDiamondJoinsBothBranches checks a plain acyclic join: x is set
// to 1 on one branch and 2 on the other, so it should come out as the
// interval [1, 2] at the merge point, with no loop machinery involved.
func TestRunDiamondJoinsBothBranches(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	g := newListGraph("A", map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
	})
	w := wpo.Build[string](g)

	analyze := func(node string, pre domain.Numeric) domain.Numeric {
		out := pre.Clone()
		switch node {
		case "B":
			out.Assign(x, linear.Const[variable.ID](number.OneZ))
		case "C":
			out.Assign(x, linear.Const[variable.ID](number.FromInt64(2)))
		}
		return out
	}

	it := NewIterator[string](w, Options[string]{
		AnalyzeNode: analyze,
		Bottom:      intervalstore.Bottom(),
	})
	if err := it.Run(intervalstore.Top()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	dIn, ok := it.In("D")
	if !ok {
		t.Fatal("D was never reached")
	}
	iv := dIn.ToInterval(x)
	if iv.LowerBound().Value().Cmp(number.OneZ) != 0 || iv.UpperBound().Value().Cmp(number.FromInt64(2)) != 0 {
		t.Errorf("x at D = %v, want [1, 2]", iv)
	}
}
