package linear

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/number"
)

func zz(n int64) number.Z { return number.FromInt64(n) }

func TestExpressionCanonicalizesZeroCoefficients(t *testing.T) {
	e := Term[string](zz(2), "x").AddTerm(zz(-2), "x")
	if !e.IsConstant() || e.NumTerms() != 0 {
		t.Errorf("2x - 2x should cancel to a constant, got %v", e)
	}
}

func TestExpressionAddSub(t *testing.T) {
	a := Term[string](zz(2), "x").AddTerm(zz(3), "y")
	b := Term[string](zz(-1), "x").Add(Const[string](zz(5)))
	sum := a.Add(b)
	if got := sum.Coefficient("x"); !got.Equal(zz(1)) {
		t.Errorf("coefficient of x in sum = %v, want 1", got)
	}
	if got := sum.Coefficient("y"); !got.Equal(zz(3)) {
		t.Errorf("coefficient of y in sum = %v, want 3", got)
	}
	if got := sum.Constant(); !got.Equal(zz(5)) {
		t.Errorf("constant of sum = %v, want 5", got)
	}
}

func TestExpressionScalarMulByZero(t *testing.T) {
	e := Term[string](zz(2), "x").AddTerm(zz(3), "y")
	if got := e.ScalarMul(number.ZeroZ); !got.Equals(Zero[string]()) {
		t.Errorf("e*0 = %v, want 0", got)
	}
}

func TestExpressionSubstitute(t *testing.T) {
	// e = 2x + 1, substitute x -> (y + 3): expect 2y + 7.
	e := Term[string](zz(2), "x").AddTerm(zz(1), "x").Sub(Term[string](zz(1), "x")) // = 2x
	e = e.Add(Const[string](zz(1)))
	repl := Var[string]("y").Add(Const[string](zz(3)))
	got := e.Substitute("x", repl)
	if c := got.Coefficient("y"); !c.Equal(zz(2)) {
		t.Errorf("coefficient of y after substitution = %v, want 2", c)
	}
	if c := got.Constant(); !c.Equal(zz(7)) {
		t.Errorf("constant after substitution = %v, want 7", c)
	}
	if _, ok := got.terms["x"]; ok {
		t.Error("x should no longer appear after substitution")
	}
}

func TestConstraintTautologyAndContradiction(t *testing.T) {
	if !Tautology[string]().IsTautology() {
		t.Error("Tautology() should report IsTautology")
	}
	if !Contradiction[string]().IsContradiction() {
		t.Error("Contradiction() should report IsContradiction")
	}
	always := Make(Const[string](zz(-1)), LessThan) // -1 < 0
	if !always.IsTautology() {
		t.Error("-1 < 0 should be a tautology")
	}
	never := Make(Const[string](zz(1)), LessThan) // 1 < 0
	if !never.IsContradiction() {
		t.Error("1 < 0 should be a contradiction")
	}
}

func TestConstraintSystemContradictionCollapsesToBottom(t *testing.T) {
	s := NewSystem[string]()
	s.Add(Make(Term[string](zz(1), "x"), LessEqual))
	s.Add(Contradiction[string]())
	if !s.IsBottom() {
		t.Error("adding a contradiction should collapse the system to bottom")
	}
	if s.Constraints() != nil {
		t.Error("bottom system should report no constraints")
	}
}

func TestConstraintSystemDropsTautologies(t *testing.T) {
	s := NewSystem[string]()
	s.Add(Tautology[string]())
	s.Add(Make(Term[string](zz(1), "x"), LessEqual))
	if s.IsBottom() {
		t.Fatal("system should not be bottom")
	}
	if len(s.Constraints()) != 1 {
		t.Errorf("expected tautology to be dropped, got %d constraints", len(s.Constraints()))
	}
}
