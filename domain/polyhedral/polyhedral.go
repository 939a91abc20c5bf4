// Package polyhedral implements a numerical domain whose abstract value
// is literally a conjunction of linear constraints (linear.System), with
// no bundled constraint solver: Join (which for polyhedra requires
// computing a convex hull) and Leq/Equals (which require a satisfiability
// or implication check) fall back to conservative approximations rather
// than linking an LP/polyhedra library. A host that needs exact
// polyhedral operations is expected to swap in its own solver behind
// this same domain.Numeric contract; this type only supplies the plumbing
// (constraint accumulation, projection, counters) that every domain
// needs regardless of which solver backs Join/Leq.
//
// Grounded on stat/combin's role in the pack as a "thin wrapper with no
// numerical solver of its own" precedent, and on linear.System for
// constraint storage.
package polyhedral

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/value/intervalcongruence"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// Polyhedron holds a conjunction of linear constraints. Operations that
// would require an LP solver to stay precise (Join, Leq) are implemented
// as sound over-approximations: Join keeps only constraints present in
// identical form on both sides (syntactic, not semantic, intersection of
// the constraint sets, which over-approximates the true convex hull),
// and Leq falls back to requiring the right-hand side's constraint set
// to be a subset of the left's.
type Polyhedron struct {
	sys *linear.System[variable.ID]
}

// Top returns the unconstrained polyhedron.
func Top() *Polyhedron { return &Polyhedron{sys: linear.NewSystem[variable.ID]()} }

// Bottom returns the unsatisfiable polyhedron.
func Bottom() *Polyhedron {
	p := Top()
	p.sys.Add(linear.Contradiction[variable.ID]())
	return p
}

func (p *Polyhedron) Clone() domain.Numeric {
	out := linear.NewSystem[variable.ID]()
	for _, c := range p.sys.Constraints() {
		out.Add(c)
	}
	if p.sys.IsBottom() {
		out.Add(linear.Contradiction[variable.ID]())
	}
	return &Polyhedron{sys: out}
}

func (p *Polyhedron) IsBottom() bool { return p.sys.IsBottom() }
func (p *Polyhedron) IsTop() bool    { return !p.sys.IsBottom() && len(p.sys.Constraints()) == 0 }

func asPolyhedron(other domain.Numeric) *Polyhedron {
	o, ok := other.(*Polyhedron)
	if !ok {
		panic(fmt.Sprintf("polyhedral: incompatible operand %T", other))
	}
	return o
}

func containsConstraint(cs []linear.Constraint[variable.ID], c linear.Constraint[variable.ID]) bool {
	for _, existing := range cs {
		if existing.Kind() == c.Kind() && existing.Expression().Equals(c.Expression()) {
			return true
		}
	}
	return false
}

// Leq approximates implication by subset inclusion of constraint sets:
// p <= other when every constraint other asserts is also asserted by p
// (p is at least as constrained). This is sound but incomplete: it can
// report false where a real solver would prove p <= other via
// combinations of p's constraints.
func (p *Polyhedron) Leq(other domain.Numeric) bool {
	o := asPolyhedron(other)
	if p.IsBottom() {
		return true
	}
	if o.IsBottom() {
		return false
	}
	for _, c := range o.sys.Constraints() {
		if !containsConstraint(p.sys.Constraints(), c) {
			return false
		}
	}
	return true
}

func (p *Polyhedron) Equals(other domain.Numeric) bool {
	o := asPolyhedron(other)
	if p.IsBottom() || o.IsBottom() {
		return p.IsBottom() == o.IsBottom()
	}
	return p.Leq(other) && o.Leq(p)
}

// Join keeps the constraints common to both operands, an over-
// approximation of the true convex hull that a bundled solver would
// compute.
func (p *Polyhedron) Join(other domain.Numeric) domain.Numeric {
	o := asPolyhedron(other)
	if p.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return p
	}
	out := linear.NewSystem[variable.ID]()
	for _, c := range p.sys.Constraints() {
		if containsConstraint(o.sys.Constraints(), c) {
			out.Add(c)
		}
	}
	return &Polyhedron{sys: out}
}

func (p *Polyhedron) JoinLoop(other domain.Numeric) domain.Numeric { return p.Join(other) }

// Widening is Join: without a solver there is no cheaper way to detect
// which constraints form a strictly ascending chain, so widening settles
// for the same syntactic-intersection approximation (terminates in at
// most as many steps as the larger operand has constraints).
func (p *Polyhedron) Widening(other domain.Numeric) domain.Numeric { return p.Join(other) }
func (p *Polyhedron) WideningThreshold(other domain.Numeric, _, _ bound.Bound[number.Z]) domain.Numeric {
	return p.Widening(other)
}

func (p *Polyhedron) Meet(other domain.Numeric) domain.Numeric {
	o := asPolyhedron(other)
	if p.IsBottom() || o.IsBottom() {
		return Bottom()
	}
	out := linear.NewSystem[variable.ID]()
	for _, c := range p.sys.Constraints() {
		out.Add(c)
	}
	for _, c := range o.sys.Constraints() {
		out.Add(c)
	}
	return &Polyhedron{sys: out}
}

func (p *Polyhedron) Narrowing(other domain.Numeric) domain.Numeric { return p.Meet(other) }

// Assign drops every constraint mentioning v (the sound way to havoc a
// variable without a fresh-variable substitution step) and then asserts
// v = expr. Substituting v directly into existing constraints would be
// unsound whenever expr itself mentions v (e.g. x := x + 1); in that case
// v is only forgotten and no equality is asserted.
func (p *Polyhedron) Assign(v variable.ID, expr linear.Expression[variable.ID]) {
	if p.IsBottom() {
		return
	}
	selfRef := !expr.Coefficient(v).IsZero()
	p.Forget(v)
	if selfRef {
		return
	}
	p.sys.Add(linear.Make(linear.Term[variable.ID](number.OneZ, v).Sub(expr), linear.Equal))
}

func (p *Polyhedron) Apply(op domain.Op, v variable.ID, left, right linear.Expression[variable.ID]) {
	if p.IsBottom() {
		return
	}
	// Only Add/Sub stay linear; other operators forget v rather than
	// fabricate an unsound linear relation.
	switch op {
	case domain.Add:
		p.Assign(v, left.Add(right))
	case domain.Sub:
		p.Assign(v, left.Sub(right))
	default:
		p.Forget(v)
	}
}

func (p *Polyhedron) AddConstraint(c linear.Constraint[variable.ID]) { p.sys.Add(c) }

func (p *Polyhedron) Set(v variable.ID, iv interval.IntervalZ) {
	p.Forget(v)
	if iv.IsBottom() {
		p.sys.Add(linear.Contradiction[variable.ID]())
		return
	}
	lb, ub := iv.LowerBound(), iv.UpperBound()
	if lb.IsFinite() {
		p.sys.Add(linear.Make(linear.Const[variable.ID](lb.Value().Neg()).AddTerm(number.OneZ, v), linear.LessEqual))
	}
	if ub.IsFinite() {
		p.sys.Add(linear.Make(linear.Term[variable.ID](number.OneZ, v).Sub(linear.Const[variable.ID](ub.Value())), linear.LessEqual))
	}
}

func (p *Polyhedron) Refine(v variable.ID, iv interval.IntervalZ) {
	if iv.IsTop() {
		return
	}
	lb, ub := iv.LowerBound(), iv.UpperBound()
	if lb.IsFinite() {
		p.sys.Add(linear.Make(linear.Const[variable.ID](lb.Value().Neg()).AddTerm(number.OneZ, v), linear.LessEqual))
	}
	if ub.IsFinite() {
		p.sys.Add(linear.Make(linear.Term[variable.ID](number.OneZ, v).Sub(linear.Const[variable.ID](ub.Value())), linear.LessEqual))
	}
}

// Forget drops every constraint mentioning v, the only sound way to
// eliminate a variable without a Fourier-Motzkin (or solver-based)
// projection.
func (p *Polyhedron) Forget(v variable.ID) {
	out := linear.NewSystem[variable.ID]()
	for _, c := range p.sys.Constraints() {
		if c.Expression().Coefficient(v).IsZero() {
			out.Add(c)
		}
	}
	p.sys = out
}

// ToInterval projects v's bound by scanning unit-coefficient, single-
// variable constraints; anything requiring combining multiple
// constraints (the general case a solver would handle) stays top.
func (p *Polyhedron) ToInterval(v variable.ID) interval.IntervalZ {
	if p.IsBottom() {
		return interval.BottomZ()
	}
	result := interval.TopZ()
	for _, c := range p.sys.Constraints() {
		e := c.Expression()
		if len(e.Variables()) != 1 || e.Variables()[0] != v {
			continue
		}
		coeff := e.Coefficient(v)
		if !coeff.Abs().Equal(number.OneZ) {
			continue
		}
		limit := e.Constant().Neg()
		if coeff.Sign() < 0 {
			limit = limit.Neg()
		}
		switch c.Kind() {
		case linear.LessEqual:
			if coeff.Sign() > 0 {
				result = result.Meet(interval.RangeZ(bound.NegInf[number.Z](), bound.Finite(limit)))
			} else {
				result = result.Meet(interval.RangeZ(bound.Finite(limit), bound.PosInf[number.Z]()))
			}
		case linear.Equal:
			result = result.Meet(interval.SingletonZ(limit))
		}
	}
	return result
}

func (p *Polyhedron) ToCongruence(v variable.ID) congruence.CongruenceZ {
	if p.IsBottom() {
		return congruence.BottomZ()
	}
	if n, ok := p.ToInterval(v).Singleton(); ok {
		return congruence.SingletonZ(n)
	}
	return congruence.TopZ()
}

func (p *Polyhedron) ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ {
	if p.IsBottom() {
		return intervalcongruence.BottomZ()
	}
	return intervalcongruence.MakeZ(p.ToInterval(v), congruence.TopZ())
}

func (p *Polyhedron) ToLinearConstraintSystem() *linear.System[variable.ID] { return p.sys }

func (p *Polyhedron) CounterMark(v variable.ID)                          {}
func (p *Polyhedron) CounterUnmark(v variable.ID)                        {}
func (p *Polyhedron) CounterInit(v variable.ID, initial number.Z)        { p.Set(v, interval.SingletonZ(initial)) }
// CounterIncr widens v's bound by increment rather than asserting a
// self-referential equality (v := v + increment is unsound to encode via
// Assign's havoc-then-assert strategy, since Assign's Forget already
// erases the old v before expr is evaluated).
func (p *Polyhedron) CounterIncr(v variable.ID, increment number.Z) {
	iv := p.ToInterval(v).Add(interval.SingletonZ(increment))
	p.Set(v, iv)
}
func (p *Polyhedron) CounterForget(v variable.ID) { p.Forget(v) }

func (p *Polyhedron) Dump() string   { return p.sys.Dump() }
func (p *Polyhedron) String() string { return p.Dump() }

var _ domain.Numeric = (*Polyhedron)(nil)
