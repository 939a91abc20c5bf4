// Package gauge implements a numerical domain that bounds a variable by
// a symbolic expression "constant + sum(coeff_c * c)" over variables
// explicitly marked as loop counters, rather than by a plain interval.
// Splitting the bound into a counter-indexed linear part and a constant
// part lets widening stabilize the coefficient of a counter whose
// per-iteration growth settles down even while the plain interval bound
// would otherwise keep flying outward; this is the core idea IKOS calls
// the gauge domain, scoped here to linear (not polynomial) gauges.
// Grounded on value/intervalcongruence's componentwise-then-reduce
// shape: GaugeExpr composes exactly like the reduced product, just with
// a map of interval coefficients instead of a second lattice component.
package gauge

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

// GaugeExpr is constant + sum(coeff_c * c) where every c is a variable
// marked as a counter; coefficients and the constant are themselves
// intervals, since the transfer functions that build a GaugeExpr cannot
// always pin them to a single value.
type GaugeExpr struct {
	constant interval.IntervalZ
	coeffs   map[variable.ID]interval.IntervalZ
}

func topExpr() GaugeExpr {
	return GaugeExpr{constant: interval.TopZ(), coeffs: map[variable.ID]interval.IntervalZ{}}
}

func constExpr(iv interval.IntervalZ) GaugeExpr {
	return GaugeExpr{constant: iv, coeffs: map[variable.ID]interval.IntervalZ{}}
}

func (e GaugeExpr) isBottom() bool {
	if e.constant.IsBottom() {
		return true
	}
	for _, c := range e.coeffs {
		if c.IsBottom() {
			return true
		}
	}
	return false
}

func (e GaugeExpr) coeff(c variable.ID) interval.IntervalZ {
	if iv, ok := e.coeffs[c]; ok {
		return iv
	}
	return interval.SingletonZ(number.ZeroZ)
}

func zipCoeffs(a, b GaugeExpr, f func(x, y interval.IntervalZ) interval.IntervalZ) map[variable.ID]interval.IntervalZ {
	seen := make(map[variable.ID]struct{}, len(a.coeffs)+len(b.coeffs))
	for c := range a.coeffs {
		seen[c] = struct{}{}
	}
	for c := range b.coeffs {
		seen[c] = struct{}{}
	}
	out := make(map[variable.ID]interval.IntervalZ, len(seen))
	for c := range seen {
		iv := f(a.coeff(c), b.coeff(c))
		if !iv.Equals(interval.SingletonZ(number.ZeroZ)) {
			out[c] = iv
		}
	}
	return out
}

func (e GaugeExpr) add(o GaugeExpr) GaugeExpr {
	return GaugeExpr{constant: e.constant.Add(o.constant), coeffs: zipCoeffs(e, o, interval.IntervalZ.Add)}
}

func (e GaugeExpr) scalarMul(k interval.IntervalZ) GaugeExpr {
	out := GaugeExpr{constant: e.constant.Mul(k), coeffs: map[variable.ID]interval.IntervalZ{}}
	for c, coeff := range e.coeffs {
		out.coeffs[c] = coeff.Mul(k)
	}
	return out
}

func (e GaugeExpr) join(o GaugeExpr) GaugeExpr {
	return GaugeExpr{constant: e.constant.Join(o.constant), coeffs: zipCoeffs(e, o, interval.IntervalZ.Join)}
}

func (e GaugeExpr) meet(o GaugeExpr) GaugeExpr {
	return GaugeExpr{constant: e.constant.Meet(o.constant), coeffs: zipCoeffs(e, o, interval.IntervalZ.Meet)}
}

// widening widens the constant and every coefficient independently: a
// coefficient that has stabilized stops growing on its own, which in
// turn keeps the overall bound from flying to infinity purely because of
// counter-correlated growth.
func (e GaugeExpr) widening(o GaugeExpr) GaugeExpr {
	return GaugeExpr{constant: e.constant.Widening(o.constant), coeffs: zipCoeffs(e, o, interval.IntervalZ.Widening)}
}

func (e GaugeExpr) narrowing(o GaugeExpr) GaugeExpr {
	return GaugeExpr{constant: e.constant.Narrowing(o.constant), coeffs: zipCoeffs(e, o, interval.IntervalZ.Narrowing)}
}

func (e GaugeExpr) leq(o GaugeExpr) bool {
	if !e.constant.Leq(o.constant) {
		return false
	}
	for c := range e.coeffs {
		if !e.coeff(c).Leq(o.coeff(c)) {
			return false
		}
	}
	for c := range o.coeffs {
		if !e.coeff(c).Leq(o.coeff(c)) {
			return false
		}
	}
	return true
}

func (e GaugeExpr) equals(o GaugeExpr) bool {
	return e.leq(o) && o.leq(e)
}

func (e GaugeExpr) dump() string {
	type pair struct {
		c variable.ID
		v interval.IntervalZ
	}
	var pairs []pair
	for c, v := range e.coeffs {
		pairs = append(pairs, pair{c, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].c < pairs[j].c })
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "%v*%v + ", p.v, p.c)
	}
	fmt.Fprintf(&b, "%v", e.constant)
	return b.String()
}

// counterState is what Gauge remembers about a marked loop counter: its
// current plain-interval value, which CounterIncr advances directly
// (gauge coefficients are attributed by the host calling CounterIncr at a
// loop back edge, not inferred automatically).
type counterState struct {
	value interval.IntervalZ
}

// Gauge is a functional map from ordinary variables to a pair of gauge
// expressions (lower, upper) bounding them, plus a side table of marked
// counters. A variable that is not a counter and has no recorded gauge
// expression is implicitly top.
type Gauge struct {
	isBottom bool
	exprs    map[variable.ID]GaugeExpr // upper bounds; lower bounds tracked in lowers
	lowers   map[variable.ID]GaugeExpr
	counters map[variable.ID]*counterState
}

// Top returns the unconstrained gauge domain.
func Top() *Gauge {
	return &Gauge{
		exprs:    map[variable.ID]GaugeExpr{},
		lowers:   map[variable.ID]GaugeExpr{},
		counters: map[variable.ID]*counterState{},
	}
}

// Bottom returns the unsatisfiable gauge domain.
func Bottom() *Gauge { return &Gauge{isBottom: true} }

func (g *Gauge) Clone() domain.Numeric {
	if g.isBottom {
		return Bottom()
	}
	out := Top()
	for v, e := range g.exprs {
		out.exprs[v] = e
	}
	for v, e := range g.lowers {
		out.lowers[v] = e
	}
	for v, c := range g.counters {
		cp := *c
		out.counters[v] = &cp
	}
	return out
}

func (g *Gauge) IsBottom() bool { return g.isBottom }
func (g *Gauge) IsTop() bool    { return !g.isBottom && len(g.exprs) == 0 && len(g.lowers) == 0 }

func asGauge(other domain.Numeric) *Gauge {
	o, ok := other.(*Gauge)
	if !ok {
		panic(fmt.Sprintf("gauge: incompatible operand %T", other))
	}
	return o
}

func (g *Gauge) upperOf(v variable.ID) GaugeExpr {
	if e, ok := g.exprs[v]; ok {
		return e
	}
	return topExpr()
}
func (g *Gauge) lowerOf(v variable.ID) GaugeExpr {
	if e, ok := g.lowers[v]; ok {
		return e
	}
	return topExpr()
}

func (g *Gauge) Leq(other domain.Numeric) bool {
	o := asGauge(other)
	if g.isBottom {
		return true
	}
	if o.isBottom {
		return false
	}
	for v := range unionKeys(g.exprs, o.exprs) {
		if !g.upperOf(v).leq(o.upperOf(v)) {
			return false
		}
	}
	for v := range unionKeys(g.lowers, o.lowers) {
		if !g.lowerOf(v).leq(o.lowerOf(v)) {
			return false
		}
	}
	return true
}

func unionKeys(a, b map[variable.ID]GaugeExpr) map[variable.ID]struct{} {
	out := make(map[variable.ID]struct{}, len(a)+len(b))
	for v := range a {
		out[v] = struct{}{}
	}
	for v := range b {
		out[v] = struct{}{}
	}
	return out
}

func (g *Gauge) Equals(other domain.Numeric) bool {
	o := asGauge(other)
	if g.isBottom || o.isBottom {
		return g.isBottom == o.isBottom
	}
	return g.Leq(other) && o.Leq(g)
}

func (g *Gauge) pointwise(
	other domain.Numeric,
	f func(a, b GaugeExpr) GaugeExpr,
) *Gauge {
	o := asGauge(other)
	if g.isBottom {
		return o
	}
	if o.isBottom {
		return g
	}
	out := Top()
	for v := range unionKeys(g.exprs, o.exprs) {
		e := f(g.upperOf(v), o.upperOf(v))
		if e.isBottom() {
			return Bottom()
		}
		if !e.equals(topExpr()) {
			out.exprs[v] = e
		}
	}
	for v := range unionKeys(g.lowers, o.lowers) {
		e := f(g.lowerOf(v), o.lowerOf(v))
		if e.isBottom() {
			return Bottom()
		}
		if !e.equals(topExpr()) {
			out.lowers[v] = e
		}
	}
	for v, c := range g.counters {
		oc, ok := o.counters[v]
		if !ok {
			continue
		}
		out.counters[v] = &counterState{value: c.value.Join(oc.value)}
	}
	return out
}

func (g *Gauge) Join(other domain.Numeric) domain.Numeric {
	return g.pointwise(other, GaugeExpr.join)
}
func (g *Gauge) JoinLoop(other domain.Numeric) domain.Numeric { return g.Join(other) }
func (g *Gauge) Widening(other domain.Numeric) domain.Numeric {
	return g.pointwise(other, GaugeExpr.widening)
}
func (g *Gauge) WideningThreshold(other domain.Numeric, lt, ut bound.Bound[number.Z]) domain.Numeric {
	return g.pointwise(other, func(a, b GaugeExpr) GaugeExpr {
		return GaugeExpr{constant: a.constant.WideningThreshold(b.constant, lt, ut), coeffs: zipCoeffs(a, b, interval.IntervalZ.Widening)}
	})
}
func (g *Gauge) Meet(other domain.Numeric) domain.Numeric {
	if g.isBottom || asGauge(other).isBottom {
		return Bottom()
	}
	return g.pointwise(other, GaugeExpr.meet)
}
func (g *Gauge) Narrowing(other domain.Numeric) domain.Numeric {
	if g.isBottom || asGauge(other).isBottom {
		return Bottom()
	}
	return g.pointwise(other, GaugeExpr.narrowing)
}

// evalGaugeExpr interprets a linear expression over current counter and
// variable state: a term on a marked counter stays symbolic (a
// coefficient), a term on any other variable is folded into the constant
// using that variable's current concretized bound.
func (g *Gauge) evalGaugeExpr(e linear.Expression[variable.ID], upper bool) GaugeExpr {
	out := constExpr(interval.SingletonZ(e.Constant()))
	e.Range(func(v variable.ID, coeff number.Z) {
		if _, ok := g.counters[v]; ok {
			out = out.add(GaugeExpr{constant: interval.SingletonZ(number.ZeroZ), coeffs: map[variable.ID]interval.IntervalZ{v: interval.SingletonZ(coeff)}})
			return
		}
		var bound interval.IntervalZ
		if upper {
			bound = g.concretize(g.upperOf(v))
		} else {
			bound = g.concretize(g.lowerOf(v))
		}
		out = out.add(constExpr(bound.Mul(interval.SingletonZ(coeff))))
	})
	return out
}

// concretize resolves a gauge expression's counter coefficients against
// their current tracked values, producing a plain interval.
func (g *Gauge) concretize(e GaugeExpr) interval.IntervalZ {
	acc := e.constant
	for c, coeff := range e.coeffs {
		val := interval.TopZ()
		if cs, ok := g.counters[c]; ok {
			val = cs.value
		}
		acc = acc.Add(coeff.Mul(val))
	}
	return acc
}

func (g *Gauge) Assign(v variable.ID, expr linear.Expression[variable.ID]) {
	if g.isBottom {
		return
	}
	g.exprs[v] = g.evalGaugeExpr(expr, true)
	g.lowers[v] = g.evalGaugeExpr(expr, false)
}

func (g *Gauge) Apply(op domain.Op, v variable.ID, left, right linear.Expression[variable.ID]) {
	if g.isBottom {
		return
	}
	a, b := g.concretize(g.evalGaugeExpr(left, true)), g.concretize(g.evalGaugeExpr(right, true))
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
		panic(fmt.Sprintf("gauge: unknown op %v", op))
	}
	g.Set(v, result)
}

// AddConstraint refines a single-variable constraint by solving it for
// that variable and meeting the result into its plain interval bound
// (gauges themselves are never narrowed by an arbitrary linear
// constraint, only their interval projection is); anything with more
// than one variable is dropped, sound but imprecise.
func (g *Gauge) AddConstraint(c linear.Constraint[variable.ID]) {
	if g.isBottom {
		return
	}
	expr := c.Expression()
	vars := expr.Variables()
	if len(vars) != 1 {
		return
	}
	v := vars[0]
	coeff := expr.Coefficient(v)
	// v is the only variable with a nonzero coefficient, so expr's
	// constant term already is -rest (there is no other variable term to
	// carry along).
	neg := expr.Constant().Neg()
	limit := neg.Div(coeff)
	if !limit.Mul(coeff).Equal(neg) {
		return // division wasn't exact; approximate by doing nothing
	}
	positive := coeff.Sign() > 0
	var refine interval.IntervalZ
	switch c.Kind() {
	case linear.Equal:
		refine = interval.SingletonZ(limit)
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
	g.Refine(v, refine)
}

func (g *Gauge) Set(v variable.ID, iv interval.IntervalZ) {
	if g.isBottom {
		return
	}
	if iv.IsBottom() {
		g.isBottom = true
		g.exprs, g.lowers, g.counters = nil, nil, nil
		return
	}
	delete(g.exprs, v)
	delete(g.lowers, v)
	g.exprs[v] = constExpr(iv)
	g.lowers[v] = constExpr(iv)
}

func (g *Gauge) Refine(v variable.ID, iv interval.IntervalZ) {
	if g.isBottom {
		return
	}
	cur := g.ToInterval(v).Meet(iv)
	g.Set(v, cur)
}

func (g *Gauge) Forget(v variable.ID) {
	if g.isBottom {
		return
	}
	delete(g.exprs, v)
	delete(g.lowers, v)
}

func (g *Gauge) ToInterval(v variable.ID) interval.IntervalZ {
	if g.isBottom {
		return interval.BottomZ()
	}
	if cs, ok := g.counters[v]; ok {
		return cs.value
	}
	return g.concretize(g.lowerOf(v)).Meet(g.concretize(g.upperOf(v)))
}

func (g *Gauge) ToCongruence(v variable.ID) congruence.CongruenceZ {
	if g.isBottom {
		return congruence.BottomZ()
	}
	if n, ok := g.ToInterval(v).Singleton(); ok {
		return congruence.SingletonZ(n)
	}
	return congruence.TopZ()
}

func (g *Gauge) ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ {
	if g.isBottom {
		return intervalcongruence.BottomZ()
	}
	return intervalcongruence.MakeZ(g.ToInterval(v), congruence.TopZ())
}

func (g *Gauge) ToLinearConstraintSystem() *linear.System[variable.ID] {
	sys := linear.NewSystem[variable.ID]()
	if g.isBottom {
		sys.Add(linear.Contradiction[variable.ID]())
	}
	return sys
}

// CounterMark registers v as a loop counter, so later Assign calls that
// reference v keep a symbolic coefficient instead of folding it into a
// constant.
func (g *Gauge) CounterMark(v variable.ID) {
	if g.isBottom {
		return
	}
	if _, ok := g.counters[v]; !ok {
		g.counters[v] = &counterState{value: g.ToInterval(v)}
	}
}

func (g *Gauge) CounterUnmark(v variable.ID) {
	if g.isBottom {
		return
	}
	delete(g.counters, v)
}

func (g *Gauge) CounterInit(v variable.ID, initial number.Z) {
	if g.isBottom {
		return
	}
	g.counters[v] = &counterState{value: interval.SingletonZ(initial)}
}

// CounterIncr advances a marked counter's value by increment, called by
// the host once per recognized loop back edge.
func (g *Gauge) CounterIncr(v variable.ID, increment number.Z) {
	if g.isBottom {
		return
	}
	cs, ok := g.counters[v]
	if !ok {
		g.CounterMark(v)
		cs = g.counters[v]
	}
	cs.value = cs.value.Add(interval.SingletonZ(increment))
}

func (g *Gauge) CounterForget(v variable.ID) {
	if g.isBottom {
		return
	}
	delete(g.counters, v)
	g.Forget(v)
}

func (g *Gauge) Dump() string {
	if g.isBottom {
		return "⊥"
	}
	var parts []string
	for v, e := range g.lowers {
		parts = append(parts, fmt.Sprintf("%v >= %s", v, e.dump()))
	}
	for v, e := range g.exprs {
		parts = append(parts, fmt.Sprintf("%v <= %s", v, e.dump()))
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (g *Gauge) String() string { return g.Dump() }

var _ domain.Numeric = (*Gauge)(nil)
