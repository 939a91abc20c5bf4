// Package domain declares the interface a numerical abstract domain
// implements. It plays the role graph.Node/graph.Directed play for gonum's
// graph algorithms: a structural contract that lets the fixpoint iterator
// (and product/polymorphic combinators) drive any concrete domain without
// depending on its internals.
package domain

import (
	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/value/intervalcongruence"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// Op is the operator of a non-linear Apply transfer function.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div
	Rem
	Mod
)

func (op Op) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Mod:
		return "mod"
	default:
		return "?"
	}
}

// Numeric is the operations a numerical abstract domain over variable.ID
// must provide: a lattice structure, a small set of transfer functions
// sufficient to interpret straight-line arithmetic and conditionals, and
// projections onto the coarser domains used to exchange information with
// other analyses (widening hints, summaries).
//
// Implementations return Numeric rather than their own concrete type:
// callers (the fixpoint iterator, Product, Polymorphic) only ever hold a
// domain by this interface, so a concrete type's Join/Widening/etc. must
// wrap its receiver back into the interface before returning.
type Numeric interface {
	Clone() Numeric

	IsBottom() bool
	IsTop() bool
	Leq(other Numeric) bool
	Equals(other Numeric) bool

	Join(other Numeric) Numeric
	// JoinLoop is Join as used at a loop head during the increasing
	// iteration: most domains treat it identically to Join, but a domain
	// that tracks loop counters (gauge) uses it to distinguish the back
	// edge's join from an ordinary control-flow join.
	JoinLoop(other Numeric) Numeric
	Widening(other Numeric) Numeric
	WideningThreshold(other Numeric, lowerThreshold, upperThreshold bound.Bound[number.Z]) Numeric
	Meet(other Numeric) Numeric
	Narrowing(other Numeric) Numeric

	// Assign interprets v := expr.
	Assign(v variable.ID, expr linear.Expression[variable.ID])
	// Apply interprets v := left op right, where left and right are
	// themselves linear expressions (typically a bare variable or a
	// constant); this is how non-linear operators like Mul and Div reach
	// the domain, since linear.Expression cannot represent their result.
	Apply(op Op, v variable.ID, left, right linear.Expression[variable.ID])
	// AddConstraint refines the domain with a linear constraint, e.g. the
	// condition of a branch.
	AddConstraint(c linear.Constraint[variable.ID])
	// Set forces v's abstract value to iv, discarding whatever the domain
	// previously tracked for v.
	Set(v variable.ID, iv interval.IntervalZ)
	// Refine meets v's existing abstract value with iv, rather than
	// replacing it.
	Refine(v variable.ID, iv interval.IntervalZ)
	// Forget removes v from the domain, setting it back to top.
	Forget(v variable.ID)

	ToInterval(v variable.ID) interval.IntervalZ
	ToCongruence(v variable.ID) congruence.CongruenceZ
	ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ
	ToLinearConstraintSystem() *linear.System[variable.ID]

	// CounterMark/CounterUnmark/CounterInit/CounterIncr/CounterForget let a
	// host mark a variable as a loop counter before the fixpoint iterator
	// runs, so gauge-style domains can track a, for that variable, an
	// explicit induction-variable bound instead of a plain interval.
	CounterMark(v variable.ID)
	CounterUnmark(v variable.ID)
	CounterInit(v variable.ID, initial number.Z)
	CounterIncr(v variable.ID, increment number.Z)
	CounterForget(v variable.ID)

	Dump() string
}
