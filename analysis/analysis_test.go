package analysis

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/domain/intervalstore"
	"github.com/ikos-analyzer/ikoscore/fixpoint"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/variable"
)

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

func TestRunRejectsMissingRequiredFields(t *testing.T) {
	g := newListGraph("A", map[string][]string{"A": {"B"}})
	targets := []Target[string]{{Name: "f", Graph: g}}

	if _, err := Run[string](targets, intervalstore.Top(), Options[string]{}); err == nil {
		t.Error("Run() with no AnalyzeNode = nil error, want one")
	}

	opts := Options[string]{
		Fixpoint: fixpoint.Options[string]{
			AnalyzeNode: func(string, domain.Numeric) domain.Numeric { return intervalstore.Top() },
			Bottom:      intervalstore.Bottom(),
		},
	}
	if _, err := Run[string](targets, intervalstore.Top(), opts); err == nil {
		t.Error("Run() with MachineIntWidth == 0 = nil error, want one")
	}

	opts.MachineIntWidth = number.MaxWidth + 1
	if _, err := Run[string](targets, intervalstore.Top(), opts); err == nil {
		t.Error("Run() with MachineIntWidth > MaxWidth = nil error, want one")
	}
}

// TestRunAppliesGlobalsBeforeEveryTarget checks that Options.Globals runs
// once against the supplied initial value and that its result, not the
// raw initial value, feeds every target's entry node.
func TestRunAppliesGlobalsBeforeEveryTarget(t *testing.T) {
	pool := variable.NewPool()
	g := pool.NewVariable("g")

	mkGraph := func(name string) *listGraph {
		return newListGraph(name, map[string][]string{name: {}})
	}
	targets := []Target[string]{
		{Name: "f", Graph: mkGraph("f")},
		{Name: "h", Graph: mkGraph("h")},
	}

	globalsCalls := 0
	opts := Options[string]{
		Fixpoint: fixpoint.Options[string]{
			AnalyzeNode: func(node string, pre domain.Numeric) domain.Numeric { return pre.Clone() },
			Bottom:      intervalstore.Bottom(),
		},
		Globals: func(initial domain.Numeric) domain.Numeric {
			globalsCalls++
			out := initial.Clone()
			out.Assign(g, linear.Const[variable.ID](number.FromInt64(7)))
			return out
		},
		MachineIntWidth: 32,
	}

	reports, err := Run[string](targets, intervalstore.Top(), opts)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if globalsCalls != 1 {
		t.Errorf("Globals called %d times, want exactly 1", globalsCalls)
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}
	for _, r := range reports {
		in, ok := r.Iterator.In(r.Name)
		if !ok {
			t.Fatalf("%s: entry node never reached", r.Name)
		}
		iv := in.ToInterval(g)
		if lo := iv.LowerBound(); !lo.IsFinite() || lo.Value().Cmp(number.FromInt64(7)) != 0 {
			t.Errorf("%s: g at entry = %v, want singleton 7", r.Name, iv)
		}
	}
}

// TestRunPropagatesTargetError confirms a target's fixpoint error is
// wrapped with its name and stops the run before later targets execute.
func TestRunPropagatesTargetError(t *testing.T) {
	g := newListGraph("A", map[string][]string{"A": {"A"}}) // self-loop

	ran := map[string]bool{}
	opts := Options[string]{
		Fixpoint: fixpoint.Options[string]{
			AnalyzeNode: func(node string, pre domain.Numeric) domain.Numeric {
				ran[node] = true
				return pre.Clone()
			},
			Bottom:                  intervalstore.Bottom(),
			MaxIncreasingIterations: 1,
		},
		MachineIntWidth: 32,
	}

	targets := []Target[string]{
		{Name: "loops-forever", Graph: g},
		{Name: "never-reached", Graph: newListGraph("Z", map[string][]string{"Z": {}})},
	}

	_, err := Run[string](targets, intervalstore.Top(), opts)
	if err == nil {
		t.Fatal("Run() = nil error, want the widening-overflow error")
	}
	if ran["Z"] {
		t.Error("second target ran despite the first target failing")
	}
}
