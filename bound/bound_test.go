package bound

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/number"
)

func TestBoundOrdering(t *testing.T) {
	neg := NegInf[number.Z]()
	pos := PosInf[number.Z]()
	zero := Finite(number.ZeroZ)
	one := Finite(number.FromInt64(1))

	if !neg.Lt(zero) || !zero.Lt(pos) || !neg.Lt(pos) {
		t.Fatal("infinities must absorb at their respective ends")
	}
	if !zero.Lt(one) {
		t.Fatal("finite comparison failed")
	}
	if !neg.Equal(NegInf[number.Z]()) {
		t.Fatal("two -infinity bounds must compare equal")
	}
}

func TestBoundAddOppositeInfinitiesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic adding opposite infinities")
		}
	}()
	NegInf[number.Z]().Add(PosInf[number.Z]())
}

func TestBoundAddAbsorption(t *testing.T) {
	pos := PosInf[number.Z]()
	five := Finite(number.FromInt64(5))
	if got := pos.Add(five); !got.IsPosInf() {
		t.Errorf("+infinity + 5 = %v, want +infinity", got)
	}
	if got := pos.Add(pos); !got.IsPosInf() {
		t.Errorf("+infinity + +infinity = %v, want +infinity", got)
	}
}

func TestBoundNeg(t *testing.T) {
	if !NegInf[number.Z]().Neg().IsPosInf() {
		t.Error("-(-infinity) should be +infinity")
	}
	five := Finite(number.FromInt64(5))
	if got := five.Neg(); !got.Value().Equal(number.FromInt64(-5)) {
		t.Errorf("-(5) = %v, want -5", got)
	}
}

func TestBoundMinMax(t *testing.T) {
	a := Finite(number.FromInt64(3))
	b := Finite(number.FromInt64(7))
	if !Min(a, b).Equal(a) || !Max(a, b).Equal(b) {
		t.Error("Min/Max disagree with finite ordering")
	}
	if !Min(a, NegInf[number.Z]()).IsNegInf() {
		t.Error("Min with -infinity should be -infinity")
	}
}
