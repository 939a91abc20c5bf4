// Package dbm implements a Difference-Bound Matrix domain: a set of
// constraints of the form x - y <= c (including x <= c and x >= c via an
// implicit zero variable), closed under Floyd-Warshall shortest paths.
// Grounded on the dense adjacency-matrix idiom of gonum's
// graph/simple.DirectedGraph combined with path/shortest's Floyd-Warshall
// implementation (all-pairs shortest paths over a weighted graph is
// exactly DBM closure: the matrix entry d[i][j] is the shortest path
// length from node i to node j in the constraint graph).
package dbm

import (
	"fmt"
	"sort"
	"strings"

	gobound "github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/value/intervalcongruence"
	"github.com/ikos-analyzer/ikoscore/variable"
)

type zbound = gobound.Bound[number.Z]

// zero is the implicit node representing the constant 0, letting a unary
// bound x <= c be represented as the binary constraint x - zero <= c.
const zero = 0

// DBM is a closed difference-bound matrix. entries[i][j] bounds x_i -
// x_j; an absent entry is implicitly +infinity (no constraint).
type DBM struct {
	isBottom bool
	index    map[variable.ID]int // variable.ID -> row/column, 1-based (0 is `zero`)
	names    []variable.ID       // names[i-1] is the variable.ID of row i
	entries  map[[2]int]zbound
}

// Top returns the unconstrained DBM.
func Top() *DBM {
	return &DBM{index: map[variable.ID]int{}, entries: map[[2]int]zbound{}}
}

// Bottom returns the unsatisfiable DBM.
func Bottom() *DBM { return &DBM{isBottom: true} }

func (d *DBM) indexOf(v variable.ID) int {
	if i, ok := d.index[v]; ok {
		return i
	}
	i := len(d.names) + 1
	d.index[v] = i
	d.names = append(d.names, v)
	return i
}

// lookupOnly returns the index of v without allocating one, or (0,
// false) if v has never been referenced.
func (d *DBM) lookupOnly(v variable.ID) (int, bool) {
	i, ok := d.index[v]
	return i, ok
}

func (d *DBM) get(i, j int) zbound {
	if i == j {
		return gobound.Finite(number.ZeroZ)
	}
	if b, ok := d.entries[[2]int{i, j}]; ok {
		return b
	}
	return gobound.PosInf[number.Z]()
}

func (d *DBM) set(i, j int, b zbound) {
	if i == j {
		return
	}
	d.entries[[2]int{i, j}] = b
}

func (d *DBM) n() int { return len(d.names) }

// closure runs Floyd-Warshall over the constraint graph; a negative
// self-loop (d[i][i] < 0) witnesses unsatisfiability.
func (d *DBM) closure() {
	n := d.n()
	for k := 0; k <= n; k++ {
		for i := 0; i <= n; i++ {
			dik := d.get(i, k)
			if dik.IsPosInf() {
				continue
			}
			for j := 0; j <= n; j++ {
				dkj := d.get(k, j)
				if dkj.IsPosInf() {
					continue
				}
				cand := dik.Add(dkj)
				if cand.Lt(d.get(i, j)) {
					d.set(i, j, cand)
				}
			}
		}
	}
	for i := 0; i <= n; i++ {
		if d.get(i, i).Lt(gobound.Finite(number.ZeroZ)) {
			d.isBottom = true
			d.entries = nil
			return
		}
	}
}

func (d *DBM) Clone() domain.Numeric {
	if d.isBottom {
		return Bottom()
	}
	idx := make(map[variable.ID]int, len(d.index))
	for v, i := range d.index {
		idx[v] = i
	}
	names := append([]variable.ID(nil), d.names...)
	entries := make(map[[2]int]zbound, len(d.entries))
	for k, v := range d.entries {
		entries[k] = v
	}
	return &DBM{index: idx, names: names, entries: entries}
}

func (d *DBM) IsBottom() bool { return d.isBottom }
func (d *DBM) IsTop() bool    { return !d.isBottom && len(d.entries) == 0 }

func asDBM(other domain.Numeric) *DBM {
	o, ok := other.(*DBM)
	if !ok {
		panic(fmt.Sprintf("dbm: incompatible operand %T", other))
	}
	return o
}

// aligned returns both DBMs re-expressed over the union of their
// variables (same row/column numbering), each independently re-closed.
func aligned(a, b *DBM) (*DBM, *DBM, []variable.ID) {
	vars := make(map[variable.ID]struct{}, len(a.names)+len(b.names))
	for _, v := range a.names {
		vars[v] = struct{}{}
	}
	for _, v := range b.names {
		vars[v] = struct{}{}
	}
	names := make([]variable.ID, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	build := func(src *DBM) *DBM {
		out := Top()
		out.names = append([]variable.ID(nil), names...)
		for i, v := range names {
			out.index[v] = i + 1
		}
		for i := 0; i <= len(names); i++ {
			for j := 0; j <= len(names); j++ {
				if i == j {
					continue
				}
				si, siOK := nodeIndex(src, names, i)
				sj, sjOK := nodeIndex(src, names, j)
				if !siOK || !sjOK {
					continue
				}
				b := src.get(si, sj)
				if !b.IsPosInf() {
					out.set(i, j, b)
				}
			}
		}
		out.closure()
		return out
	}
	return build(a), build(b), names
}

// nodeIndex maps a position in the unified name list back to the
// corresponding row/column in src (0 is always the zero node).
func nodeIndex(src *DBM, names []variable.ID, pos int) (int, bool) {
	if pos == zero {
		return zero, true
	}
	v := names[pos-1]
	i, ok := src.lookupOnly(v)
	return i, ok
}

func (d *DBM) Leq(other domain.Numeric) bool {
	o := asDBM(other)
	if d.isBottom {
		return true
	}
	if o.isBottom {
		return false
	}
	a, b, names := aligned(d, o)
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			if a.get(i, j).Gt(b.get(i, j)) {
				return false
			}
		}
	}
	return true
}

func (d *DBM) Equals(other domain.Numeric) bool {
	o := asDBM(other)
	if d.isBottom || o.isBottom {
		return d.isBottom == o.isBottom
	}
	return d.Leq(other) && o.Leq(d)
}

func (d *DBM) Join(other domain.Numeric) domain.Numeric {
	o := asDBM(other)
	if d.isBottom {
		return o
	}
	if o.isBottom {
		return d
	}
	a, b, names := aligned(d, o)
	out := Top()
	out.names = names
	for i, v := range names {
		out.index[v] = i + 1
	}
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			m := gobound.Max(a.get(i, j), b.get(i, j))
			if !m.IsPosInf() {
				out.set(i, j, m)
			}
		}
	}
	return out
}

func (d *DBM) JoinLoop(other domain.Numeric) domain.Numeric { return d.Join(other) }

func (d *DBM) Meet(other domain.Numeric) domain.Numeric {
	o := asDBM(other)
	if d.isBottom || o.isBottom {
		return Bottom()
	}
	a, b, names := aligned(d, o)
	out := Top()
	out.names = names
	for i, v := range names {
		out.index[v] = i + 1
	}
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			m := gobound.Min(a.get(i, j), b.get(i, j))
			if !m.IsPosInf() {
				out.set(i, j, m)
			}
		}
	}
	out.closure()
	return out
}

// Widening drops every entry that grew relative to other: a DBM has a
// chain of possible entries bounded below by -infinity, so naive
// widening keeps only entries that other did not worsen.
func (d *DBM) Widening(other domain.Numeric) domain.Numeric {
	o := asDBM(other)
	if d.isBottom {
		return o
	}
	if o.isBottom {
		return d
	}
	a, b, names := aligned(d, o)
	out := Top()
	out.names = names
	for i, v := range names {
		out.index[v] = i + 1
	}
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			av := a.get(i, j)
			if !b.get(i, j).Gt(av) {
				out.set(i, j, av)
			}
		}
	}
	return out
}

// WideningThreshold keeps every entry that did not grow. A growing entry
// is replaced by ut when ut still dominates the new entry, and is dropped
// to +infinity otherwise. ut is applied uniformly to every entry (DBM
// entries are differences, not per-variable bounds); lt is not used.
func (d *DBM) WideningThreshold(other domain.Numeric, lt, ut zbound) domain.Numeric {
	o := asDBM(other)
	if d.isBottom {
		return o
	}
	if o.isBottom {
		return d
	}
	a, b, names := aligned(d, o)
	out := Top()
	out.names = names
	for i, v := range names {
		out.index[v] = i + 1
	}
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			av, bv := a.get(i, j), b.get(i, j)
			switch {
			case !bv.Gt(av):
				out.set(i, j, av)
			case ut.Geq(bv):
				out.set(i, j, ut)
			}
		}
	}
	return out
}

func (d *DBM) Narrowing(other domain.Numeric) domain.Numeric {
	o := asDBM(other)
	if d.isBottom || o.isBottom {
		return Bottom()
	}
	a, b, names := aligned(d, o)
	out := Top()
	out.names = names
	for i, v := range names {
		out.index[v] = i + 1
	}
	for i := 0; i <= len(names); i++ {
		for j := 0; j <= len(names); j++ {
			if i == j {
				continue
			}
			av := a.get(i, j)
			if av.IsPosInf() {
				av = b.get(i, j)
			}
			if !av.IsPosInf() {
				out.set(i, j, av)
			}
		}
	}
	out.closure()
	return out
}

// addDiff tightens x_i - x_j <= c and re-closes.
func (d *DBM) addDiff(i, j int, c zbound) {
	if c.Lt(d.get(i, j)) {
		d.set(i, j, c)
	}
	d.closure()
}

// AddConstraint handles constraints over at most two variables exactly
// (the canonical DBM case: c1*v1 + c2*v2 + k <kind> 0 with c1 in {1,-1}
// and likewise c2); anything wider is dropped (sound, imprecise).
func (d *DBM) AddConstraint(c linear.Constraint[variable.ID]) {
	if d.isBottom {
		return
	}
	expr := c.Expression()
	vars := expr.Variables()
	if len(vars) > 2 {
		return
	}
	var vi, vj variable.ID
	var ci, cj number.Z
	switch len(vars) {
	case 0:
		// constant constraint, already resolved by Constraint construction
		return
	case 1:
		vi, ci = vars[0], expr.Coefficient(vars[0])
		if !ci.Abs().Equal(number.OneZ) {
			return
		}
		vj, cj = variable.ID(-1), number.ZeroZ // placeholder for the zero node
	case 2:
		vi, ci = vars[0], expr.Coefficient(vars[0])
		vj, cj = vars[1], expr.Coefficient(vars[1])
		if !ci.Abs().Equal(number.OneZ) || !cj.Abs().Equal(number.OneZ) {
			return
		}
		if ci.Sign() == cj.Sign() {
			return // x+y or -x-y is not a difference constraint
		}
	}
	k := expr.Constant()

	i := d.indexOf(vi)
	var j int
	if len(vars) == 2 {
		j = d.indexOf(vj)
	} else {
		j = zero
	}
	// Normalize to "row - col <= bound": ci*vi + cj*vj + k <kind> 0 always
	// rearranges to (row - col) <kind> -k, where row is whichever of
	// vi/vj carries the positive coefficient; swapping i/j when ci is
	// negative is the only adjustment needed, k itself never changes
	// sign.
	if ci.Sign() < 0 {
		i, j = j, i
	}
	bound := gobound.Finite(k.Neg())
	switch c.Kind() {
	case linear.LessEqual:
		d.addDiff(i, j, bound)
	case linear.LessThan:
		d.addDiff(i, j, gobound.Finite(k.Neg().Sub(number.OneZ)))
	case linear.Equal:
		d.addDiff(i, j, bound)
		d.addDiff(j, i, gobound.Finite(k))
	default:
		return
	}
}

func (d *DBM) Set(v variable.ID, iv interval.IntervalZ) {
	if d.isBottom {
		return
	}
	d.Forget(v)
	if iv.IsBottom() {
		d.isBottom = true
		d.entries = nil
		return
	}
	i := d.indexOf(v)
	lb, ub := iv.LowerBound(), iv.UpperBound()
	if ub.IsFinite() {
		d.addDiff(i, zero, ub)
	}
	if lb.IsFinite() {
		d.addDiff(zero, i, lb.Neg())
	}
}

func (d *DBM) Refine(v variable.ID, iv interval.IntervalZ) {
	if d.isBottom {
		return
	}
	if iv.IsBottom() {
		d.isBottom = true
		d.entries = nil
		return
	}
	i := d.indexOf(v)
	lb, ub := iv.LowerBound(), iv.UpperBound()
	if ub.IsFinite() {
		d.addDiff(i, zero, ub)
	}
	if lb.IsFinite() && !d.isBottom {
		d.addDiff(zero, i, lb.Neg())
	}
}

func (d *DBM) Forget(v variable.ID) {
	if d.isBottom {
		return
	}
	i, ok := d.lookupOnly(v)
	if !ok {
		return
	}
	for j := 0; j <= d.n(); j++ {
		delete(d.entries, [2]int{i, j})
		delete(d.entries, [2]int{j, i})
	}
}

// Assign handles x := e by forgetting x, then materializing e's effect
// as an interval bound (projecting through evalAsInterval, which is
// exact when e mentions at most one other variable and approximate
// otherwise) — this keeps the transfer sound without requiring full
// DBM-native linear substitution for expressions beyond the two-variable
// difference form AddConstraint already covers exactly.
func (d *DBM) Assign(v variable.ID, expr linear.Expression[variable.ID]) {
	if d.isBottom {
		return
	}
	iv := d.evalAsInterval(expr)
	d.Set(v, iv)
	if len(expr.Variables()) == 1 && expr.Coefficient(expr.Variables()[0]).Equal(number.OneZ) {
		other := expr.Variables()[0]
		// x := y + k is an exact difference constraint; add it directly so
		// later queries about x - y stay precise even though Set already
		// recorded x's interval.
		k := expr.Constant()
		d.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, v).
			Sub(linear.Term[variable.ID](number.OneZ, other)).
			Sub(linear.Const[variable.ID](k)), linear.Equal))
	}
}

func (d *DBM) evalAsInterval(expr linear.Expression[variable.ID]) interval.IntervalZ {
	acc := interval.SingletonZ(expr.Constant())
	expr.Range(func(v variable.ID, coeff number.Z) {
		acc = acc.Add(d.ToInterval(v).Mul(interval.SingletonZ(coeff)))
	})
	return acc
}

func (d *DBM) Apply(op domain.Op, v variable.ID, left, right linear.Expression[variable.ID]) {
	if d.isBottom {
		return
	}
	a, b := d.evalAsInterval(left), d.evalAsInterval(right)
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
		panic(fmt.Sprintf("dbm: unknown op %v", op))
	}
	d.Set(v, result)
}

func (d *DBM) ToInterval(v variable.ID) interval.IntervalZ {
	if d.isBottom {
		return interval.BottomZ()
	}
	i, ok := d.lookupOnly(v)
	if !ok {
		return interval.TopZ()
	}
	ub := d.get(i, zero)
	lb := d.get(zero, i)
	var lo, hi zbound = gobound.NegInf[number.Z](), gobound.PosInf[number.Z]()
	if lb.IsFinite() {
		lo = gobound.Finite(lb.Value().Neg())
	}
	if ub.IsFinite() {
		hi = ub
	}
	return interval.RangeZ(lo, hi)
}

func (d *DBM) ToCongruence(v variable.ID) congruence.CongruenceZ {
	if d.isBottom {
		return congruence.BottomZ()
	}
	if n, ok := d.ToInterval(v).Singleton(); ok {
		return congruence.SingletonZ(n)
	}
	return congruence.TopZ()
}

func (d *DBM) ToIntervalCongruence(v variable.ID) intervalcongruence.IntervalCongruenceZ {
	if d.isBottom {
		return intervalcongruence.BottomZ()
	}
	return intervalcongruence.MakeZ(d.ToInterval(v), congruence.TopZ())
}

func (d *DBM) ToLinearConstraintSystem() *linear.System[variable.ID] {
	sys := linear.NewSystem[variable.ID]()
	if d.isBottom {
		sys.Add(linear.Contradiction[variable.ID]())
		return sys
	}
	for i := 0; i <= d.n(); i++ {
		for j := 0; j <= d.n(); j++ {
			if i == j {
				continue
			}
			b := d.get(i, j)
			if b.IsPosInf() {
				continue
			}
			rowExpr := d.nodeExpr(i)
			colExpr := d.nodeExpr(j)
			sys.Add(linear.Make(rowExpr.Sub(colExpr).Sub(linear.Const[variable.ID](b.Value())), linear.LessEqual))
		}
	}
	return sys
}

func (d *DBM) nodeExpr(i int) linear.Expression[variable.ID] {
	if i == zero {
		return linear.Zero[variable.ID]()
	}
	return linear.Term[variable.ID](number.OneZ, d.names[i-1])
}

func (d *DBM) CounterMark(v variable.ID)   {}
func (d *DBM) CounterUnmark(v variable.ID) {}
func (d *DBM) CounterInit(v variable.ID, initial number.Z) {
	d.Set(v, interval.SingletonZ(initial))
}
func (d *DBM) CounterIncr(v variable.ID, increment number.Z) {
	d.Set(v, d.ToInterval(v).Add(interval.SingletonZ(increment)))
}
func (d *DBM) CounterForget(v variable.ID) { d.Forget(v) }

func (d *DBM) Dump() string {
	if d.isBottom {
		return "⊥"
	}
	var parts []string
	for i := 0; i <= d.n(); i++ {
		for j := 0; j <= d.n(); j++ {
			if i == j {
				continue
			}
			b := d.get(i, j)
			if b.IsPosInf() {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s - %s <= %v", d.nodeName(i), d.nodeName(j), b))
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (d *DBM) String() string { return d.Dump() }

func (d *DBM) nodeName(i int) string {
	if i == zero {
		return "0"
	}
	return fmt.Sprintf("%v", d.names[i-1])
}

var _ domain.Numeric = (*DBM)(nil)
