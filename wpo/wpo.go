// Package wpo builds a Weak Partial Order over a cfggraph.Graph: a
// linearization of the graph's nodes in which every loop is bracketed by
// a synthetic Head/Exit pair, so a fixpoint iterator can walk the
// sequence once and know, purely from Kind, when it has entered or left
// a strongly connected region. Grounded on Bourdoncle's hierarchical SCC
// construction (the same DFS-with-a-stack shape as
// graph/topo/tarjan.go's Tarjan implementation, generalized to also
// record nesting) and on graph/traverse's iterative DFS driver idiom for
// the visit/component recursion.
package wpo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ikos-analyzer/ikoscore/cfggraph"
)

// Kind distinguishes an ordinary node from the synthetic brackets that
// mark a strongly connected component.
type Kind uint8

const (
	Plain Kind = iota
	Head
	Exit
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Head:
		return "head"
	case Exit:
		return "exit"
	default:
		return "?"
	}
}

// WpoNode is one entry of the linearized order.
type WpoNode[N comparable] struct {
	kind    Kind
	idx     int
	node    N
	hasNode bool
	pairIdx int // Head: its Exit's index; Exit: its Head's index. -1 if unset.

	successors       []int
	predecessors     []int
	liftedSuccessors []int

	reduciblePredCount int // Head only: predecessors entering from outside the component
	componentSize      int // Head only: number of wpo nodes spanned, Head through Exit inclusive
}

func (n *WpoNode[N]) Kind() Kind { return n.kind }
func (n *WpoNode[N]) Index() int { return n.idx }

// Node returns the original graph node this WpoNode stands for; ok is
// false for an Exit node, which has no original-graph counterpart.
func (n *WpoNode[N]) Node() (v N, ok bool) { return n.node, n.hasNode }

// PairIndex returns the matching Exit index for a Head, or the matching
// Head index for an Exit.
func (n *WpoNode[N]) PairIndex() int { return n.pairIdx }

func (n *WpoNode[N]) Successors() []int       { return n.successors }
func (n *WpoNode[N]) Predecessors() []int     { return n.predecessors }
func (n *WpoNode[N]) LiftedSuccessors() []int { return n.liftedSuccessors }
func (n *WpoNode[N]) ReduciblePredCount() int { return n.reduciblePredCount }
func (n *WpoNode[N]) ComponentSize() int      { return n.componentSize }

func (n *WpoNode[N]) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", n.idx, n.kind)
	if n.hasNode {
		fmt.Fprintf(&b, "(%v)", n.node)
	}
	if n.kind != Plain {
		fmt.Fprintf(&b, " pair=#%d", n.pairIdx)
	}
	fmt.Fprintf(&b, " succ=%v pred=%v lifted=%v", n.successors, n.predecessors, n.liftedSuccessors)
	if n.kind == Head {
		fmt.Fprintf(&b, " reducible_preds=%d size=%d", n.reduciblePredCount, n.componentSize)
	}
	return b.String()
}

// IrreducibleArrow is an edge that enters a strongly connected component
// somewhere other than through its head.
type IrreducibleArrow[N comparable] struct {
	From, To N
	Count    int
}

// IrreducibleCFGError reports every irreducible entry arrow found while
// building a Wpo. Build does not fail on an irreducible input (the
// iterator can still process it, just less precisely); this error type
// exists for hosts that want to enforce strict reducibility via
// Wpo.CheckReducible.
type IrreducibleCFGError[N comparable] struct {
	Arrows []IrreducibleArrow[N]
}

func (e *IrreducibleCFGError[N]) Error() string {
	var parts []string
	for _, a := range e.Arrows {
		parts = append(parts, fmt.Sprintf("%v -> %v (x%d)", a.From, a.To, a.Count))
	}
	return fmt.Sprintf("wpo: irreducible control flow: %s", strings.Join(parts, ", "))
}

// Wpo is the built weak partial order.
type Wpo[N comparable] struct {
	nodes            []*WpoNode[N]
	index            map[N]int
	entry            int
	irreducible      []IrreducibleArrow[N]
	backPredecessors map[N][]N
}

// Len returns the number of WpoNodes (including synthetic Exits).
func (w *Wpo[N]) Len() int { return len(w.nodes) }

// At returns the WpoNode at a linear index.
func (w *Wpo[N]) At(i int) *WpoNode[N] { return w.nodes[i] }

// IndexOf returns the WpoNode index of an original graph node.
func (w *Wpo[N]) IndexOf(n N) (int, bool) { i, ok := w.index[n]; return i, ok }

// Entry returns the index of the entry node.
func (w *Wpo[N]) Entry() int { return w.entry }

// IrreducibleArrows returns every recorded irreducible entry, sorted for
// deterministic output.
func (w *Wpo[N]) IrreducibleArrows() []IrreducibleArrow[N] {
	return append([]IrreducibleArrow[N](nil), w.irreducible...)
}

// CheckReducible returns an *IrreducibleCFGError if any irreducible
// arrow was recorded, nil otherwise.
func (w *Wpo[N]) CheckReducible() error {
	if len(w.irreducible) == 0 {
		return nil
	}
	return &IrreducibleCFGError[N]{Arrows: w.IrreducibleArrows()}
}

// IsBackEdge reports whether pred -> head is a back edge: an edge found,
// during the DFS that built this Wpo, pointing at a node still on the
// active DFS stack (an ancestor of pred). Every such head is a loop
// header and appears in the linearized order as a Head node.
func (w *Wpo[N]) IsBackEdge(head, pred N) bool {
	for _, p := range w.backPredecessors[head] {
		if p == pred {
			return true
		}
	}
	return false
}

func (w *Wpo[N]) Dump() string {
	var b strings.Builder
	for _, n := range w.nodes {
		b.WriteString(n.Dump())
		b.WriteByte('\n')
	}
	return b.String()
}
func (w *Wpo[N]) String() string { return w.Dump() }

// element is one entry of Bourdoncle's nested partition: either a plain
// node or a component (a head plus its nested body).
type element[N comparable] struct {
	isComponent bool
	node        N
	head        N
	body        []element[N]
}

// builder runs Bourdoncle's hierarchical SCC discovery.
type builder[N comparable] struct {
	g        cfggraph.Graph[N]
	dfn      map[N]int
	num      int
	stk      []N
	onStack  map[N]bool
	backPred map[N][]N // head -> predecessors reached via a back edge into it
}

const infDFN = int(^uint(0) >> 1)

// prepend conses el onto the front of *partition, matching Bourdoncle's
// algorithm, which builds each partition list in completion order via
// cons rather than append: the node whose DFS subtree finishes last ends
// up first in the list, giving a valid forward traversal order with the
// entry node first.
func prepend[N comparable](partition *[]element[N], el element[N]) {
	*partition = append([]element[N]{el}, *partition...)
}

func (b *builder[N]) push(v N) {
	b.stk = append(b.stk, v)
	b.onStack[v] = true
}

func (b *builder[N]) pop() N {
	n := len(b.stk) - 1
	v := b.stk[n]
	b.stk = b.stk[:n]
	b.onStack[v] = false
	return v
}

func (b *builder[N]) visit(v N, partition *[]element[N]) int {
	b.push(v)
	b.num++
	b.dfn[v] = b.num
	minDFN := b.dfn[v]
	loop := false
	for _, w := range b.g.Successors(v) {
		var minW int
		if d, ok := b.dfn[w]; !ok || d == 0 {
			minW = b.visit(w, partition)
		} else {
			minW = d
			if b.onStack[w] {
				b.backPred[w] = append(b.backPred[w], v)
			}
		}
		if minW <= minDFN {
			minDFN = minW
			loop = true
		}
	}
	if minDFN == b.dfn[v] {
		b.dfn[v] = infDFN
		popped := b.pop()
		if loop {
			for popped != v {
				b.dfn[popped] = 0
				popped = b.pop()
			}
			b.component(v, partition)
		} else {
			prepend(partition, element[N]{node: popped})
		}
	}
	return minDFN
}

func (b *builder[N]) component(v N, partition *[]element[N]) {
	var body []element[N]
	for _, w := range b.g.Successors(v) {
		if b.dfn[w] == 0 {
			b.visit(w, &body)
		}
	}
	prepend(partition, element[N]{isComponent: true, head: v, body: body})
}

// flattener assigns linear indices to a nested partition, opening a Head
// and closing its matching Exit around a component's body, and records
// each emitted node's stack of enclosing Head indices (outermost first)
// for lifted-successor computation.
type flattener[N comparable] struct {
	nodes     []*WpoNode[N]
	index     map[N]int
	ancestors [][]int
	openHeads []int
}

func (f *flattener[N]) emitPlain(v N) {
	idx := len(f.nodes)
	f.nodes = append(f.nodes, &WpoNode[N]{kind: Plain, idx: idx, node: v, hasNode: true, pairIdx: -1})
	f.index[v] = idx
	f.ancestors = append(f.ancestors, append([]int(nil), f.openHeads...))
}

func (f *flattener[N]) flatten(elems []element[N]) {
	for _, el := range elems {
		if !el.isComponent {
			f.emitPlain(el.node)
			continue
		}
		headIdx := len(f.nodes)
		f.nodes = append(f.nodes, &WpoNode[N]{kind: Head, idx: headIdx, node: el.head, hasNode: true, pairIdx: -1})
		f.index[el.head] = headIdx
		f.ancestors = append(f.ancestors, append([]int(nil), f.openHeads...))

		f.openHeads = append(f.openHeads, headIdx)
		f.flatten(el.body)
		f.openHeads = f.openHeads[:len(f.openHeads)-1]

		exitIdx := len(f.nodes)
		f.nodes = append(f.nodes, &WpoNode[N]{kind: Exit, idx: exitIdx, pairIdx: headIdx})
		f.ancestors = append(f.ancestors, append([]int(nil), f.openHeads...))

		f.nodes[headIdx].pairIdx = exitIdx
		f.nodes[headIdx].componentSize = exitIdx - headIdx + 1
	}
}

// commonPrefixLen returns the length of the shared prefix of a and b.
func commonPrefixLen(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// lift computes the lifted target of an arrow from node with ancestor
// stack `from` into node w (index wIdx, ancestor stack `to`): if w sits
// inside one or more components the source isn't already inside, the
// traversal must enter through the outermost such component's head.
func lift(from, to []int, wIdx int) int {
	common := commonPrefixLen(from, to)
	rest := to[common:]
	if len(rest) == 0 {
		return wIdx
	}
	return rest[0]
}

// Build constructs the Wpo for g, starting from g.Entry().
func Build[N comparable](g cfggraph.Graph[N]) *Wpo[N] {
	b := &builder[N]{g: g, dfn: map[N]int{}, onStack: map[N]bool{}, backPred: map[N][]N{}}
	var partition []element[N]
	b.visit(g.Entry(), &partition)

	f := &flattener[N]{index: map[N]int{}}
	f.flatten(partition)

	w := &Wpo[N]{nodes: f.nodes, index: f.index, backPredecessors: b.backPred}
	w.entry, _ = w.IndexOf(g.Entry())

	uf := newUnionFind(len(f.nodes))
	irregular := map[[2]int]*IrreducibleArrow[N]{}

	// Union every wpo index into its innermost enclosing component's
	// representative, processing heads innermost-first so a nested
	// component's members (including its own head) are already one set
	// by the time the enclosing component unions them again into its own.
	var heads []*WpoNode[N]
	for _, n := range f.nodes {
		if n.kind == Head {
			heads = append(heads, n)
		}
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].componentSize < heads[j].componentSize })
	for _, h := range heads {
		for idx := h.idx; idx < h.pairIdx; idx++ {
			uf.union(h.idx, idx)
		}
	}

	// isInside reports whether wpo index idx lies within the component
	// headed at headIdx, via the membership unions built above —
	// including headIdx itself, so a direct self-loop back edge counts as
	// internal rather than as a spurious external entry.
	isInside := func(headIdx, idx int) bool {
		return uf.connected(headIdx, idx)
	}

	for _, n := range f.nodes {
		if !n.hasNode {
			continue
		}
		srcAncestors := f.ancestors[n.idx]
		if n.kind == Head {
			// A head is itself inside the component it opens, even though
			// its recorded ancestor stack (captured before the component
			// was pushed) does not list it; without this, an edge from the
			// head back into its own body would be misclassified as
			// entering a not-yet-entered component and lifted to the head
			// itself instead of left pointing at the true internal target.
			srcAncestors = append(append([]int(nil), srcAncestors...), n.idx)
		}
		for _, succ := range g.Successors(n.node) {
			wIdx, ok := f.index[succ]
			if !ok {
				continue
			}
			n.successors = append(n.successors, wIdx)
			n.liftedSuccessors = append(n.liftedSuccessors, lift(srcAncestors, f.ancestors[wIdx], wIdx))
		}
		for _, pred := range g.Predecessors(n.node) {
			pIdx, ok := f.index[pred]
			if !ok {
				continue
			}
			n.predecessors = append(n.predecessors, pIdx)
		}
	}

	for _, n := range f.nodes {
		if n.kind != Head {
			continue
		}
		headIdx, exitIdx := n.idx, n.pairIdx
		for _, pIdx := range n.predecessors {
			if isInside(headIdx, pIdx) {
				continue // back edge from inside the loop, not an entry
			}
			n.reduciblePredCount++
		}
		// Scan every node inside the component for an entry arrow that
		// skips the head (an irreducible second entry point).
		for _, inner := range f.nodes {
			if inner.idx <= headIdx || inner.idx >= exitIdx || !inner.hasNode {
				continue
			}
			for _, pIdx := range inner.predecessors {
				if isInside(headIdx, pIdx) {
					continue // internal edge, fine
				}
				key := [2]int{uf.find(pIdx), inner.idx}
				if arrow, ok := irregular[key]; ok {
					arrow.Count++
				} else {
					irregular[key] = &IrreducibleArrow[N]{From: f.nodes[pIdx].node, To: inner.node, Count: 1}
				}
			}
		}
	}

	keys := make([][2]int, 0, len(irregular))
	for k := range irregular {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		w.irreducible = append(w.irreducible, *irregular[k])
	}
	return w
}
