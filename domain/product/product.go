// Package product implements the reduced-cardinal-product combinator for
// two (or, via nesting, three) numerical domains, following the same
// componentwise-dispatch idiom as value/intervalcongruence: every lattice
// operation and transfer function runs independently on each component,
// with an optional Reduce hook to propagate information between them
// afterward.
package product

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

// Reducer lets a Product2 instance propagate information between its two
// components after an operation that may have made them inconsistent
// with each other (e.g. D1 learned a tighter bound that D2 should also
// see). A nil Reducer performs no cross-component propagation, making
// Product2 a plain (non-reduced) cardinal product.
type Reducer func(d1, d2 domain.Numeric)

// Product2 is the pairwise product of two numerical domains. Both
// components see every transfer function; the result is bottom iff
// either component is.
type Product2 struct {
	d1, d2  domain.Numeric
	reduce  Reducer
	isBotCk bool // not set or read by any method; bottomness comes from d1 and d2
}

// New2 builds a product over the given components. reduce may be nil.
func New2(d1, d2 domain.Numeric, reduce Reducer) *Product2 {
	p := &Product2{d1: d1, d2: d2, reduce: reduce}
	p.runReduce()
	return p
}

func (p *Product2) runReduce() {
	if p.reduce != nil && !p.d1.IsBottom() && !p.d2.IsBottom() {
		p.reduce(p.d1, p.d2)
	}
}

func (p *Product2) First() domain.Numeric  { return p.d1 }
func (p *Product2) Second() domain.Numeric { return p.d2 }

func (p *Product2) Clone() domain.Numeric {
	return &Product2{d1: p.d1.Clone(), d2: p.d2.Clone(), reduce: p.reduce}
}

func (p *Product2) IsBottom() bool { return p.d1.IsBottom() || p.d2.IsBottom() }
func (p *Product2) IsTop() bool    { return p.d1.IsTop() && p.d2.IsTop() }

func asProduct2(other domain.Numeric) *Product2 {
	o, ok := other.(*Product2)
	if !ok {
		panic(fmt.Sprintf("product: incompatible operand %T", other))
	}
	return o
}

func (p *Product2) Leq(other domain.Numeric) bool {
	o := asProduct2(other)
	if p.IsBottom() {
		return true
	}
	if o.IsBottom() {
		return false
	}
	return p.d1.Leq(o.d1) && p.d2.Leq(o.d2)
}

func (p *Product2) Equals(other domain.Numeric) bool {
	o := asProduct2(other)
	if p.IsBottom() || o.IsBottom() {
		return p.IsBottom() == o.IsBottom()
	}
	return p.d1.Equals(o.d1) && p.d2.Equals(o.d2)
}

func (p *Product2) combine(other domain.Numeric, f func(a, b domain.Numeric) domain.Numeric) *Product2 {
	o := asProduct2(other)
	out := &Product2{d1: f(p.d1, o.d1), d2: f(p.d2, o.d2), reduce: p.reduce}
	out.runReduce()
	return out
}

func (p *Product2) Join(other domain.Numeric) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.Join(b) })
}
func (p *Product2) JoinLoop(other domain.Numeric) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.JoinLoop(b) })
}
func (p *Product2) Widening(other domain.Numeric) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.Widening(b) })
}
func (p *Product2) WideningThreshold(other domain.Numeric, lt, ut bound.Bound[number.Z]) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.WideningThreshold(b, lt, ut) })
}
func (p *Product2) Meet(other domain.Numeric) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.Meet(b) })
}
func (p *Product2) Narrowing(other domain.Numeric) domain.Numeric {
	return p.combine(other, func(a, b domain.Numeric) domain.Numeric { return a.Narrowing(b) })
}

func (p *Product2) Assign(v variable.ID, expr linear.Expression[variable.ID]) {
	p.d1.Assign(v, expr)
	p.d2.Assign(v, expr)
	p.runReduce()
}

func (p *Product2) Apply(op domain.Op, v variable.ID, left, right linear.Expression[variable.ID]) {
	p.d1.Apply(op, v, left, right)
	p.d2.Apply(op, v, left, right)
	p.runReduce()
}

func (p *Product2) AddConstraint(c linear.Constraint[variable.ID]) {
	p.d1.AddConstraint(c)
	p.d2.AddConstraint(c)
	p.runReduce()
}

func (p *Product2) Set(v variable.ID, iv interval.IntervalZ) {
	p.d1.Set(v, iv)
	p.d2.Set(v, iv)
	p.runReduce()
}

func (p *Product2) Refine(v variable.ID, iv interval.IntervalZ) {
	p.d1.Refine(v, iv)
	p.d2.Refine(v, iv)
	p.runReduce()
}

func (p *Product2) Forget(v variable.ID) {
	p.d1.Forget(v)
	p.d2.Forget(v)
}

// ToInterval meets both components' projections, since each may carry
// information the other lacks.
func (p *Product2) ToInterval(v variable.ID) interval.IntervalZ {
	return p.d1.ToInterval(v).Meet(p.d2.ToInterval(v))
}

func (p *Product2) ToCongruence(v variable.ID) congruence.CongruenceZ {
	return p.d1.ToCongruence(v).Meet(p.d2.ToCongruence(v))
}

func (p *Product2) ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ {
	return p.d1.ToIntervalCongruence(v).Meet(p.d2.ToIntervalCongruence(v))
}

func (p *Product2) ToLinearConstraintSystem() *linear.System[variable.ID] {
	sys := linear.NewSystem[variable.ID]()
	for _, c := range p.d1.ToLinearConstraintSystem().Constraints() {
		sys.Add(c)
	}
	for _, c := range p.d2.ToLinearConstraintSystem().Constraints() {
		sys.Add(c)
	}
	if p.d1.ToLinearConstraintSystem().IsBottom() || p.d2.ToLinearConstraintSystem().IsBottom() {
		sys.Add(linear.Contradiction[variable.ID]())
	}
	return sys
}

func (p *Product2) CounterMark(v variable.ID) {
	p.d1.CounterMark(v)
	p.d2.CounterMark(v)
}
func (p *Product2) CounterUnmark(v variable.ID) {
	p.d1.CounterUnmark(v)
	p.d2.CounterUnmark(v)
}
func (p *Product2) CounterInit(v variable.ID, initial number.Z) {
	p.d1.CounterInit(v, initial)
	p.d2.CounterInit(v, initial)
}
func (p *Product2) CounterIncr(v variable.ID, increment number.Z) {
	p.d1.CounterIncr(v, increment)
	p.d2.CounterIncr(v, increment)
}
func (p *Product2) CounterForget(v variable.ID) {
	p.d1.CounterForget(v)
	p.d2.CounterForget(v)
}

func (p *Product2) Dump() string {
	if p.IsBottom() {
		return "⊥"
	}
	return fmt.Sprintf("(%v, %v)", p.d1.Dump(), p.d2.Dump())
}
func (p *Product2) String() string { return p.Dump() }

var _ domain.Numeric = (*Product2)(nil)

// New3 builds the triple product D1 x D2 x D3 as Product2[Product2[D1,
// D2], D3], reusing the pairwise combinator rather than introducing a
// distinct three-armed type.
func New3(d1, d2, d3 domain.Numeric, reduce12 Reducer, reduce123 func(inner *Product2, d3 domain.Numeric)) *Product2 {
	inner := New2(d1, d2, reduce12)
	var outerReduce Reducer
	if reduce123 != nil {
		outerReduce = func(a, b domain.Numeric) {
			reduce123(a.(*Product2), b)
		}
	}
	return New2(inner, d3, outerReduce)
}
