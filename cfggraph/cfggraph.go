// Package cfggraph declares the input contract wpo.Build and
// fixpoint.Iterator drive: an entry-rooted directed graph over a
// comparable node type, grounded on gonum's graph/cfa.Graph (a
// graph.Directed plus a single Entry() node) and on graph.Directed's
// From/To accessor shape generalized from int64 node IDs to an arbitrary
// comparable type, since a host's control-flow nodes are rarely gonum
// graph IDs.
package cfggraph

// Graph is the structural contract a control-flow graph must satisfy to
// drive WPO construction and fixpoint iteration. N is typically a
// pointer or small value type identifying a basic block.
type Graph[N comparable] interface {
	// Entry returns the single entry node every other node is reachable
	// from.
	Entry() N
	// Successors returns n's outgoing edges' targets, in a host-determined
	// but stable order (the order influences which edge of a multi-entry
	// loop is picked as the discovered head, so hosts that care about
	// determinism should return a consistent order).
	Successors(n N) []N
	// Predecessors returns n's incoming edges' sources.
	Predecessors(n N) []N
	// Nodes returns every node in the graph, including unreachable ones;
	// wpo.Build only visits nodes reachable from Entry but callers that
	// enumerate the whole graph (e.g. for a pre-pass) can use this.
	Nodes() []N
}
