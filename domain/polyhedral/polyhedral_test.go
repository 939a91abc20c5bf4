package polyhedral

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// TestToIntervalProjectsSingleVariableConstraints checks both coefficient
// signs project to the same direction polyhedral.ToInterval's own sign
// branch already handled correctly (added for parity with the sibling
// domains' sign-direction regression tests, after the same bug class was
// found and fixed in intervalstore, dbm and gauge).
func TestToIntervalProjectsSingleVariableConstraints(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")
	p := Top()

	p.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, x).Sub(linear.Const[variable.ID](number.FromInt64(9))), linear.LessEqual))
	ub := p.ToInterval(x).UpperBound()
	if !ub.IsFinite() || ub.Value().Cmp(number.FromInt64(9)) != 0 {
		t.Errorf("x after x<=9 upper bound = %v, want 9", ub)
	}

	q := Top()
	q.AddConstraint(linear.Make(linear.Const[variable.ID](number.FromInt64(10)).Sub(linear.Term[variable.ID](number.OneZ, x)), linear.LessEqual))
	lb := q.ToInterval(x).LowerBound()
	if !lb.IsFinite() || lb.Value().Cmp(number.FromInt64(10)) != 0 {
		t.Errorf("x after 10-x<=0 lower bound = %v, want 10 (x >= 10)", lb)
	}
}

// TestMultiVariableConstraintKeepsBothConstraintsExactly checks a
// genuinely polyhedral fact a unit-coefficient interval domain cannot
// express: the conjunction x+y<=10 and x-y<=2 is retained exactly in the
// constraint system even though, by design (no bundled Fourier-Motzkin
// or LP solver), ToInterval cannot project either conjunct down to a
// single-variable bound on its own.
func TestMultiVariableConstraintKeepsBothConstraintsExactly(t *testing.T) {
	pool := variable.NewPool()
	x, y := pool.NewVariable("x"), pool.NewVariable("y")
	p := Top()

	p.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, x).Add(linear.Term[variable.ID](number.OneZ, y)).Sub(linear.Const[variable.ID](number.FromInt64(10))), linear.LessEqual))
	p.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, x).Sub(linear.Term[variable.ID](number.OneZ, y)).Sub(linear.Const[variable.ID](number.FromInt64(2))), linear.LessEqual))

	sys := p.ToLinearConstraintSystem()
	if got := len(sys.Constraints()); got != 2 {
		t.Fatalf("ToLinearConstraintSystem() has %d constraints, want 2", got)
	}
	if !p.ToInterval(x).IsTop() {
		t.Errorf("x projected to %v, want top (no single-variable constraint mentions x alone)", p.ToInterval(x))
	}
}

func TestForgetDropsOnlyConstraintsOnThatVariable(t *testing.T) {
	pool := variable.NewPool()
	x, y := pool.NewVariable("x"), pool.NewVariable("y")
	p := Top()
	p.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, x).Add(linear.Term[variable.ID](number.OneZ, y)).Sub(linear.Const[variable.ID](number.FromInt64(10))), linear.LessEqual))
	p.AddConstraint(linear.Make(linear.Term[variable.ID](number.OneZ, y).Sub(linear.Const[variable.ID](number.FromInt64(4))), linear.LessEqual))

	p.Forget(x)

	cs := p.ToLinearConstraintSystem().Constraints()
	if got := len(cs); got != 1 {
		t.Fatalf("after Forget(x), %d constraints remain, want 1 (only the y<=4 constraint)", got)
	}
	for _, c := range cs {
		if !c.Expression().Coefficient(x).IsZero() {
			t.Errorf("constraint %v still mentions forgotten variable x", c)
		}
	}
	ub := p.ToInterval(y).UpperBound()
	if !ub.IsFinite() || ub.Value().Cmp(number.FromInt64(4)) != 0 {
		t.Errorf("y upper bound after Forget(x) = %v, want 4 (y<=4 constraint preserved)", ub)
	}
}

func TestLeqAndBottom(t *testing.T) {
	top := Top()
	bot := Bottom()
	if !bot.Leq(top) {
		t.Error("Bottom().Leq(Top()) = false, want true")
	}
	if top.Leq(bot) {
		t.Error("Top().Leq(Bottom()) = true, want false")
	}
}
