package product

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/domain/dbm"
	"github.com/ikos-analyzer/ikoscore/domain/intervalstore"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// reduceViaInterval propagates x's interval bound from d1 (an
// intervalstore.Store) into d2 (a dbm.DBM) by re-asserting it as a
// single-variable constraint, the textbook reduced-product glue every
// pairwise combination in this package is meant to support.
func reduceViaInterval(x variable.ID) Reducer {
	return func(d1, d2 domain.Numeric) {
		iv := d1.ToInterval(x)
		d2.Refine(x, iv)
	}
}

func TestNew2RunsReduceOnConstruction(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	d1 := intervalstore.Top()
	d1.Assign(x, linear.Const[variable.ID](number.FromInt64(5)))
	d2 := dbm.Top()

	p := New2(d1, d2, reduceViaInterval(x))

	n, ok := p.Second().ToInterval(x).Singleton()
	if !ok || n.Cmp(number.FromInt64(5)) != 0 {
		t.Errorf("d2's view of x after construction-time reduce = %v, want singleton 5", p.Second().ToInterval(x))
	}
}

func TestIsBottomIfEitherComponentIs(t *testing.T) {
	p := New2(intervalstore.Bottom(), dbm.Top(), nil)
	if !p.IsBottom() {
		t.Error("Product2 with a bottom first component is not bottom")
	}
	q := New2(intervalstore.Top(), dbm.Bottom(), nil)
	if !q.IsBottom() {
		t.Error("Product2 with a bottom second component is not bottom")
	}
}

func TestAssignUpdatesBothComponentsIndependently(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")
	p := New2(intervalstore.Top(), dbm.Top(), nil)

	p.Assign(x, linear.Const[variable.ID](number.FromInt64(3)))

	n1, ok1 := p.First().ToInterval(x).Singleton()
	n2, ok2 := p.Second().ToInterval(x).Singleton()
	if !ok1 || n1.Cmp(number.FromInt64(3)) != 0 {
		t.Errorf("First().ToInterval(x) = %v, want singleton 3", p.First().ToInterval(x))
	}
	if !ok2 || n2.Cmp(number.FromInt64(3)) != 0 {
		t.Errorf("Second().ToInterval(x) = %v, want singleton 3", p.Second().ToInterval(x))
	}
}

func TestJoinIsComponentwise(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	mk := func(n int64) *Product2 {
		p := New2(intervalstore.Top(), dbm.Top(), nil)
		p.Assign(x, linear.Const[variable.ID](number.FromInt64(n)))
		return p
	}

	joined := mk(1).Join(mk(5)).(*Product2)
	iv := joined.First().ToInterval(x)
	lo, hi := iv.LowerBound(), iv.UpperBound()
	if !lo.IsFinite() || !hi.IsFinite() || lo.Value().Cmp(number.OneZ) != 0 || hi.Value().Cmp(number.FromInt64(5)) != 0 {
		t.Errorf("Join's first component x = %v, want [1,5]", iv)
	}
}

// TestToIntervalMeetsBothComponents checks that a bound known only to one
// component (here the dbm side, via a difference constraint plus a
// concrete value for y) still shows up in the product's own ToInterval,
// since it meets both components' projections rather than just reading
// the first.
func TestToIntervalMeetsBothComponents(t *testing.T) {
	pool := variable.NewPool()
	x, y := pool.NewVariable("x"), pool.NewVariable("y")
	p := New2(intervalstore.Top(), dbm.Top(), nil)

	p.First().Set(x, mustInterval(0, 1000))
	p.Second().Set(x, mustInterval(0, 1000))
	p.Second().Set(y, mustInterval(3, 3))
	p.Second().AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, x).Sub(linear.Term[variable.ID](number.OneZ, y)).Sub(linear.Const[variable.ID](number.FromInt64(2))), linear.LessEqual)) // x - y <= 2

	ub := p.ToInterval(x).UpperBound()
	if !ub.IsFinite() || ub.Value().Cmp(number.FromInt64(5)) != 0 {
		t.Errorf("ToInterval(x) upper bound = %v, want 5 (only visible via the second component's difference constraint)", ub)
	}
}

func mustInterval(lo, hi int64) interval.IntervalZ {
	return interval.RangeZ(bound.Finite(number.FromInt64(lo)), bound.Finite(number.FromInt64(hi)))
}

// TestNew3BuildsNestedProduct checks the triple product exposes all three
// components through nested First/Second accessors and that a transfer
// function reaches every one of them.
func TestNew3BuildsNestedProduct(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	p := New3(intervalstore.Top(), dbm.Top(), intervalstore.Top(), nil, nil)
	p.Assign(x, linear.Const[variable.ID](number.FromInt64(7)))

	inner := p.First().(*Product2)
	checks := []domain.Numeric{inner.First(), inner.Second(), p.Second()}
	for i, d := range checks {
		n, ok := d.ToInterval(x).Singleton()
		if !ok || n.Cmp(number.FromInt64(7)) != 0 {
			t.Errorf("component %d's view of x = %v, want singleton 7", i, d.ToInterval(x))
		}
	}
}
