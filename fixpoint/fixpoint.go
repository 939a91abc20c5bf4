// Package fixpoint drives an interleaved increasing/decreasing fixpoint
// computation over a *wpo.Wpo: widen at every loop head until the
// invariant stops growing, then narrow it back down, recursing into
// nested loops exactly as their Head/Exit brackets appear in the linear
// order. Grounded on gonum's optimize.Settings (a host-configured struct
// of named hooks and limits, no CLI) generalized from a single objective
// function's gradient loop to a per-component transfer/widen/narrow
// loop driven by a wpo.Wpo.
package fixpoint

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/wpo"
)

// Cancelled is returned by Iterator.Run when Options.Cancelled reported
// true mid-computation.
type Cancelled struct{}

func (Cancelled) Error() string { return "fixpoint: iteration cancelled" }

// WideningThreshold is a per-head hint consulted by the default
// extrapolation strategy: a widening threshold supplied by the host's
// analysis of the program's constants.
type WideningThreshold struct {
	Lower, Upper bound.Bound[number.Z]
}

// Options configures an Iterator. AnalyzeNode and Bottom are required;
// every other field has a documented default.
type Options[N comparable] struct {
	// AnalyzeNode computes the abstract post-state of a node from its
	// pre-state. Required.
	AnalyzeNode func(node N, pre domain.Numeric) domain.Numeric

	// AnalyzeEdge refines the value flowing along a single control-flow
	// edge before it is joined into the target's pre-state, e.g. to apply
	// a branch condition. Optional; defaults to the identity.
	AnalyzeEdge func(from, to N, out domain.Numeric) domain.Numeric

	// Bottom is a sample value of the concrete domain in its bottom
	// state, used to seed a node that has no processed predecessor yet.
	// Required: domain.Numeric has no generic constructor, so the
	// iterator cannot manufacture one itself.
	Bottom domain.Numeric

	// Extrapolate replaces the default widening/widening-threshold choice
	// for a loop head. Optional.
	Extrapolate func(head N, iteration int, before, after domain.Numeric) domain.Numeric

	// WideningThresholds looks up a per-head widening threshold; when it
	// returns ok, the default Extrapolate uses
	// before.WideningThreshold(after, lower, upper) instead of plain
	// Widening. Optional, ignored if Extrapolate is set.
	WideningThresholds func(head N) (t WideningThreshold, ok bool)

	// WideningDelay is the number of increasing iterations to run with a
	// plain join before widening kicks in. Zero widens from the first
	// re-iteration.
	WideningDelay int

	// MaxIncreasingIterations bounds the widening phase per component;
	// zero means unbounded. Exceeding it is a host/domain bug (a
	// widening operator that never stabilizes), reported as a plain
	// error rather than Cancelled.
	MaxIncreasingIterations int

	// IsDecreasingIterationsFixpoint decides when the narrowing phase has
	// stabilized. Optional, defaults to before.Equals(after).
	IsDecreasingIterationsFixpoint func(before, after domain.Numeric) bool

	// MaxDecreasingIterations bounds the narrowing phase per component;
	// zero means run until IsDecreasingIterationsFixpoint agrees.
	MaxDecreasingIterations int

	// ProcessPre and ProcessPost are observer hooks invoked with a node's
	// computed pre- and post-state, for a host collecting per-node
	// invariants. Optional, default no-ops.
	ProcessPre  func(node N, pre domain.Numeric)
	ProcessPost func(node N, post domain.Numeric)

	// Cancelled is polled at the start of every node and every component
	// iteration; when it returns true, Run stops and returns Cancelled.
	// Optional, default never cancels.
	Cancelled func() bool
}

func (o *Options[N]) analyzeEdge(from, to N, out domain.Numeric) domain.Numeric {
	if o.AnalyzeEdge == nil {
		return out
	}
	return o.AnalyzeEdge(from, to, out)
}

func (o *Options[N]) isDecreasingFixpoint(before, after domain.Numeric) bool {
	if o.IsDecreasingIterationsFixpoint == nil {
		return before.Equals(after)
	}
	return o.IsDecreasingIterationsFixpoint(before, after)
}

func (o *Options[N]) cancelled() bool {
	return o.Cancelled != nil && o.Cancelled()
}

func (o *Options[N]) extrapolate(head N, iteration int, before, after domain.Numeric) domain.Numeric {
	if o.Extrapolate != nil {
		return o.Extrapolate(head, iteration, before, after)
	}
	if o.WideningThresholds != nil {
		if t, ok := o.WideningThresholds(head); ok {
			return before.WideningThreshold(after, t.Lower, t.Upper)
		}
	}
	return before.Widening(after)
}

// Iterator walks a *wpo.Wpo, computing a pre- and post-state for every
// node by repeatedly widening and narrowing each loop it encounters.
type Iterator[N comparable] struct {
	w    *wpo.Wpo[N]
	opts Options[N]

	in  map[int]domain.Numeric
	out map[int]domain.Numeric
}

// NewIterator builds an Iterator for w. Panics if opts.AnalyzeNode or
// opts.Bottom is nil, the same way gonum's optimize.Method implementations
// panic on a missing required Settings field rather than silently no-op.
func NewIterator[N comparable](w *wpo.Wpo[N], opts Options[N]) *Iterator[N] {
	if opts.AnalyzeNode == nil {
		panic("fixpoint: Options.AnalyzeNode is required")
	}
	if opts.Bottom == nil {
		panic("fixpoint: Options.Bottom is required")
	}
	return &Iterator[N]{w: w, opts: opts}
}

// In returns the computed pre-state of node, if it was reached.
func (it *Iterator[N]) In(node N) (domain.Numeric, bool) {
	idx, ok := it.w.IndexOf(node)
	if !ok {
		return nil, false
	}
	v, ok := it.in[idx]
	return v, ok
}

// Out returns the computed post-state of node, if it was reached.
func (it *Iterator[N]) Out(node N) (domain.Numeric, bool) {
	idx, ok := it.w.IndexOf(node)
	if !ok {
		return nil, false
	}
	v, ok := it.out[idx]
	return v, ok
}

// Run computes the fixpoint starting from initial flowing into the
// entry node.
func (it *Iterator[N]) Run(initial domain.Numeric) error {
	it.in = map[int]domain.Numeric{}
	it.out = map[int]domain.Numeric{}
	return it.runRange(0, it.w.Len(), initial)
}

// runRange processes the linear sub-sequence [lo, hi) of wpo indices,
// where extEntry is the externally-supplied value feeding the entry
// node of this sub-sequence (used only at idx == lo, and only at the
// outermost level or at the top of a component body — every other
// node's pre-state comes entirely from its recorded predecessors).
func (it *Iterator[N]) runRange(lo, hi int, extEntry domain.Numeric) error {
	for idx := lo; idx < hi; idx++ {
		if it.opts.cancelled() {
			return Cancelled{}
		}
		n := it.w.At(idx)
		switch n.Kind() {
		case wpo.Exit:
			// A bracket marker only: nothing downstream names the Exit as
			// a predecessor (real successors point past it directly, see
			// wpo.lift), so there's nothing to compute.
		case wpo.Head:
			if err := it.runComponent(n, idx == lo, extEntry); err != nil {
				return err
			}
			idx = n.PairIndex() // for-loop's idx++ lands just past the Exit
		case wpo.Plain:
			var extra domain.Numeric
			if idx == lo {
				extra = extEntry
			}
			if err := it.runPlain(n, extra); err != nil {
				return err
			}
		}
	}
	return nil
}

func (it *Iterator[N]) pre(idx int, extra domain.Numeric) domain.Numeric {
	n := it.w.At(idx)
	node, _ := n.Node()
	acc := it.opts.Bottom.Clone()
	for _, p := range n.Predecessors() {
		out, ok := it.out[p]
		if !ok {
			continue
		}
		pn := it.w.At(p)
		pnode, _ := pn.Node()
		acc = acc.Join(it.opts.analyzeEdge(pnode, node, out))
	}
	if extra != nil {
		acc = acc.Join(extra)
	}
	return acc
}

func (it *Iterator[N]) runPlain(n *wpo.WpoNode[N], extra domain.Numeric) error {
	node, _ := n.Node()
	in := it.pre(n.Index(), extra)
	it.in[n.Index()] = in
	if it.opts.ProcessPre != nil {
		it.opts.ProcessPre(node, in)
	}
	out := it.opts.AnalyzeNode(node, in)
	it.out[n.Index()] = out
	if it.opts.ProcessPost != nil {
		it.opts.ProcessPost(node, out)
	}
	return nil
}

// runComponent runs the increasing (widening) phase of the loop headed
// at n until its invariant stops growing, then the decreasing
// (narrowing) phase until it stops shrinking, re-running the loop body
// after every head update so nested components see each iteration's
// refined values.
func (it *Iterator[N]) runComponent(n *wpo.WpoNode[N], isEntry bool, extEntry domain.Numeric) error {
	headIdx, exitIdx := n.Index(), n.PairIndex()
	node, _ := n.Node()

	var headExtra domain.Numeric
	if isEntry {
		headExtra = extEntry
	}

	var prevOut domain.Numeric
	iteration := 0
	for {
		iteration++
		if it.opts.cancelled() {
			return Cancelled{}
		}
		in := it.pre(headIdx, headExtra)
		it.in[headIdx] = in
		if it.opts.ProcessPre != nil {
			it.opts.ProcessPre(node, in)
		}
		raw := it.opts.AnalyzeNode(node, in)

		var headOut domain.Numeric
		switch {
		case prevOut == nil:
			headOut = raw
		case iteration <= it.opts.WideningDelay:
			headOut = prevOut.Join(raw)
		default:
			headOut = it.opts.extrapolate(node, iteration, prevOut, prevOut.Join(raw))
		}
		it.out[headIdx] = headOut
		if it.opts.ProcessPost != nil {
			it.opts.ProcessPost(node, headOut)
		}

		stable := prevOut != nil && headOut.Leq(prevOut)
		prevOut = headOut

		if err := it.runRange(headIdx+1, exitIdx, nil); err != nil {
			return err
		}
		if stable {
			break
		}
		if it.opts.MaxIncreasingIterations > 0 && iteration >= it.opts.MaxIncreasingIterations {
			return fmt.Errorf("fixpoint: widening did not stabilize after %d iterations at %v", iteration, node)
		}
	}

	iteration = 0
	for {
		iteration++
		if it.opts.cancelled() {
			return Cancelled{}
		}
		in := it.pre(headIdx, headExtra)
		it.in[headIdx] = in
		if it.opts.ProcessPre != nil {
			it.opts.ProcessPre(node, in)
		}
		raw := it.opts.AnalyzeNode(node, in)
		narrowed := prevOut.Narrowing(raw)
		it.out[headIdx] = narrowed
		if it.opts.ProcessPost != nil {
			it.opts.ProcessPost(node, narrowed)
		}

		if err := it.runRange(headIdx+1, exitIdx, nil); err != nil {
			return err
		}

		done := it.opts.isDecreasingFixpoint(prevOut, narrowed)
		prevOut = narrowed
		if done {
			break
		}
		if it.opts.MaxDecreasingIterations > 0 && iteration >= it.opts.MaxDecreasingIterations {
			break
		}
	}

	// The Exit is a bracket marker with no real consumer (nothing lists
	// it as a predecessor, see runRange's wpo.Exit case), but it still
	// carries the component's final stabilized value for Dump/debugging.
	it.out[exitIdx] = prevOut
	return nil
}
