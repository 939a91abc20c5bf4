// Package intervalstore implements a numerical abstract domain that
// tracks one IntervalZ per variable in a functional map, with an
// implicit top default for variables that have never been written.
// Grounded on graph/simple.DirectedGraph's map-of-maps storage and
// copy-on-write discipline: Clone deep-copies the map so two domain
// values never alias each other's state.
package intervalstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/value/intervalcongruence"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// Store is a functional map variable.ID -> interval.IntervalZ. A variable
// absent from the map is implicitly top; a variable explicitly bound to
// bottom makes the whole store bottom (absorbing, matching the lattice's
// product-with-bottom-propagation semantics).
type Store struct {
	isBottom bool
	values   map[variable.ID]interval.IntervalZ
}

// Top returns the store with every variable unconstrained.
func Top() *Store {
	return &Store{values: map[variable.ID]interval.IntervalZ{}}
}

// Bottom returns the unsatisfiable store.
func Bottom() *Store {
	return &Store{isBottom: true}
}

func (s *Store) Clone() domain.Numeric {
	if s.isBottom {
		return Bottom()
	}
	out := make(map[variable.ID]interval.IntervalZ, len(s.values))
	for v, iv := range s.values {
		out[v] = iv
	}
	return &Store{values: out}
}

func (s *Store) IsBottom() bool { return s.isBottom }

func (s *Store) IsTop() bool { return !s.isBottom && len(s.values) == 0 }

// get returns the abstract value of v, top if unbound.
func (s *Store) get(v variable.ID) interval.IntervalZ {
	if iv, ok := s.values[v]; ok {
		return iv
	}
	return interval.TopZ()
}

// setRaw binds v to iv, collapsing the whole store to bottom if iv is
// bottom, and dropping the binding entirely if iv is top (keeps the map
// sparse).
func (s *Store) setRaw(v variable.ID, iv interval.IntervalZ) {
	if iv.IsBottom() {
		s.isBottom = true
		s.values = nil
		return
	}
	if iv.IsTop() {
		delete(s.values, v)
		return
	}
	s.values[v] = iv
}

func asStore(other domain.Numeric) *Store {
	o, ok := other.(*Store)
	if !ok {
		panic(fmt.Sprintf("intervalstore: incompatible operand %T", other))
	}
	return o
}

func (s *Store) Leq(other domain.Numeric) bool {
	o := asStore(other)
	if s.isBottom {
		return true
	}
	if o.isBottom {
		return false
	}
	for v, iv := range s.values {
		if !iv.Leq(o.get(v)) {
			return false
		}
	}
	return true
}

func (s *Store) Equals(other domain.Numeric) bool {
	o := asStore(other)
	if s.isBottom || o.isBottom {
		return s.isBottom == o.isBottom
	}
	if len(s.values) != len(o.values) {
		return false
	}
	for v, iv := range s.values {
		if !iv.Equals(o.get(v)) {
			return false
		}
	}
	return true
}

// pointwise applies f to the union of both stores' variables, via get's
// implicit-top default, collecting the result into a fresh Store.
func (s *Store) pointwise(other domain.Numeric, f func(a, b interval.IntervalZ) interval.IntervalZ) *Store {
	o := asStore(other)
	if s.isBottom {
		return o
	}
	if o.isBottom {
		return s
	}
	out := Top()
	seen := make(map[variable.ID]struct{}, len(s.values)+len(o.values))
	for v := range s.values {
		seen[v] = struct{}{}
	}
	for v := range o.values {
		seen[v] = struct{}{}
	}
	for v := range seen {
		out.setRaw(v, f(s.get(v), o.get(v)))
		if out.isBottom {
			return out
		}
	}
	return out
}

func (s *Store) Join(other domain.Numeric) domain.Numeric {
	return s.pointwise(other, interval.IntervalZ.Join)
}
func (s *Store) JoinLoop(other domain.Numeric) domain.Numeric { return s.Join(other) }
func (s *Store) Widening(other domain.Numeric) domain.Numeric {
	return s.pointwise(other, interval.IntervalZ.Widening)
}
func (s *Store) WideningThreshold(other domain.Numeric, lt, ut bound.Bound[number.Z]) domain.Numeric {
	return s.pointwise(other, func(a, b interval.IntervalZ) interval.IntervalZ {
		return a.WideningThreshold(b, lt, ut)
	})
}
func (s *Store) Meet(other domain.Numeric) domain.Numeric {
	if s.isBottom || asStore(other).isBottom {
		return Bottom()
	}
	return s.pointwise(other, interval.IntervalZ.Meet)
}
func (s *Store) Narrowing(other domain.Numeric) domain.Numeric {
	if s.isBottom || asStore(other).isBottom {
		return Bottom()
	}
	return s.pointwise(other, interval.IntervalZ.Narrowing)
}

// evalLinear interprets a linear expression over the store's current
// variable bindings, via interval arithmetic on each term.
func (s *Store) evalLinear(e linear.Expression[variable.ID]) interval.IntervalZ {
	acc := interval.SingletonZ(e.Constant())
	e.Range(func(v variable.ID, coeff number.Z) {
		term := s.get(v).Mul(interval.SingletonZ(coeff))
		acc = acc.Add(term)
	})
	return acc
}

func (s *Store) Assign(v variable.ID, expr linear.Expression[variable.ID]) {
	if s.isBottom {
		return
	}
	s.setRaw(v, s.evalLinear(expr))
}

// evalOperand interprets an operand of Apply: a bare expression is
// evaluated via evalLinear, which already handles the constant and
// single-variable cases Apply's operands are restricted to.
func (s *Store) evalOperand(e linear.Expression[variable.ID]) interval.IntervalZ {
	return s.evalLinear(e)
}

func (s *Store) Apply(op domain.Op, v variable.ID, left, right linear.Expression[variable.ID]) {
	if s.isBottom {
		return
	}
	a, b := s.evalOperand(left), s.evalOperand(right)
	var result interval.IntervalZ
	switch op {
	case domain.Add:
		result = a.Add(b)
	case domain.Sub:
		result = a.Sub(b)
	case domain.Mul:
		result = a.Mul(b)
	case domain.Div:
		result = a.Div(b)
	case domain.Rem:
		result = a.Rem(b)
	case domain.Mod:
		result = a.Mod(b)
	default:
		panic(fmt.Sprintf("intervalstore: unknown op %v", op))
	}
	s.setRaw(v, result)
}

// AddConstraint refines a variable against a single-variable linear
// constraint: c*v + rest <kind> 0 implies v lies in an interval derived
// from -rest/c, which is then met into the store. Constraints with no
// variable or with more than one variable are approximated by doing
// nothing (sound, just imprecise).
func (s *Store) AddConstraint(c linear.Constraint[variable.ID]) {
	if s.isBottom {
		return
	}
	expr := c.Expression()
	vars := expr.Variables()
	if len(vars) != 1 {
		return
	}
	v := vars[0]
	coeff := expr.Coefficient(v)
	// v is the only variable with a nonzero coefficient in expr, so rest
	// carries no variable terms at all: it evaluates to a single point,
	// not a genuine range.
	rest := expr.Sub(linear.Term(coeff, v))
	point := s.evalLinear(rest).UpperBound()
	// c*v + rest <kind> 0  <=>  v <kind'> (-rest)/c, where kind' is kind
	// reversed when c < 0 (dividing an inequality by a negative number
	// flips it).
	if !point.IsFinite() {
		return
	}
	neg := point.Value().Neg()
	limit := neg.Div(coeff)
	if !limit.Mul(coeff).Equal(neg) {
		return // division wasn't exact; approximate by doing nothing
	}
	positive := coeff.Sign() > 0
	var refine interval.IntervalZ
	switch c.Kind() {
	case linear.Equal:
		refine = interval.RangeZ(bound.Finite(limit), bound.Finite(limit))
	case linear.LessEqual:
		if positive {
			refine = interval.RangeZ(bound.NegInf[number.Z](), bound.Finite(limit))
		} else {
			refine = interval.RangeZ(bound.Finite(limit), bound.PosInf[number.Z]())
		}
	case linear.LessThan:
		if positive {
			refine = interval.RangeZ(bound.NegInf[number.Z](), bound.Finite(limit.Sub(number.OneZ)))
		} else {
			refine = interval.RangeZ(bound.Finite(limit.Add(number.OneZ)), bound.PosInf[number.Z]())
		}
	default:
		return
	}
	s.setRaw(v, s.get(v).Meet(refine))
}

func (s *Store) Set(v variable.ID, iv interval.IntervalZ) {
	if s.isBottom {
		return
	}
	s.setRaw(v, iv)
}

func (s *Store) Refine(v variable.ID, iv interval.IntervalZ) {
	if s.isBottom {
		return
	}
	s.setRaw(v, s.get(v).Meet(iv))
}

func (s *Store) Forget(v variable.ID) {
	if s.isBottom {
		return
	}
	delete(s.values, v)
}

func (s *Store) ToInterval(v variable.ID) interval.IntervalZ {
	if s.isBottom {
		return interval.BottomZ()
	}
	return s.get(v)
}

func (s *Store) ToCongruence(v variable.ID) congruence.CongruenceZ {
	if s.isBottom {
		return congruence.BottomZ()
	}
	if n, ok := s.get(v).Singleton(); ok {
		return congruence.SingletonZ(n)
	}
	return congruence.TopZ()
}

func (s *Store) ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ {
	if s.isBottom {
		return intervalcongruence.BottomZ()
	}
	return intervalcongruence.MakeZ(s.get(v), congruence.TopZ())
}

func (s *Store) ToLinearConstraintSystem() *linear.System[variable.ID] {
	sys := linear.NewSystem[variable.ID]()
	if s.isBottom {
		sys.Add(linear.Contradiction[variable.ID]())
		return sys
	}
	for v, iv := range s.values {
		lb, ub := iv.LowerBound(), iv.UpperBound()
		if lb.IsFinite() {
			sys.Add(linear.Make(linear.Const[variable.ID](lb.Value().Neg()).AddTerm(number.OneZ, v), linear.LessEqual))
		}
		if ub.IsFinite() {
			sys.Add(linear.Make(linear.Term[variable.ID](number.OneZ, v).Sub(linear.Const[variable.ID](ub.Value())), linear.LessEqual))
		}
	}
	return sys
}

// Store has no native counter representation; the counter hooks are
// approximated by ordinary interval tracking so a host that marks
// counters on a plain Store still gets sound (if imprecise) results.
func (s *Store) CounterMark(v variable.ID)   {}
func (s *Store) CounterUnmark(v variable.ID) {}
func (s *Store) CounterInit(v variable.ID, initial number.Z) {
	s.Set(v, interval.SingletonZ(initial))
}
func (s *Store) CounterIncr(v variable.ID, increment number.Z) {
	if s.isBottom {
		return
	}
	s.setRaw(v, s.get(v).Add(interval.SingletonZ(increment)))
}
func (s *Store) CounterForget(v variable.ID) { s.Forget(v) }

func (s *Store) Dump() string {
	if s.isBottom {
		return "⊥"
	}
	type pair struct {
		v  variable.ID
		iv interval.IntervalZ
	}
	pairs := make([]pair, 0, len(s.values))
	for v, iv := range s.values {
		pairs = append(pairs, pair{v, iv})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })
	var parts []string
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%v -> %v", p.v, p.iv))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (s *Store) String() string { return s.Dump() }

var _ domain.Numeric = (*Store)(nil)
