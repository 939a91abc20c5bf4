package intervalcongruence

import (
	"testing"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
)

func z(n int64) bound.Bound[number.Z] { return bound.Finite(number.FromInt64(n)) }
func zz(n int64) number.Z             { return number.FromInt64(n) }

func TestMakeZSnapsBoundsToResidueClass(t *testing.T) {
	iv := interval.RangeZ(z(0), z(10))
	cg := congruence.MakeZ(zz(3), zz(1)) // {..., -2, 1, 4, 7, 10, ...}
	got := MakeZ(iv, cg)
	if got.IsBottom() {
		t.Fatal("expected non-bottom reduction")
	}
	if !got.Interval().Equals(interval.RangeZ(z(1), z(10))) {
		t.Errorf("snapped interval = %v, want [1,10]", got.Interval())
	}
}

func TestMakeZEmptyAfterSnappingIsBottom(t *testing.T) {
	iv := interval.RangeZ(z(2), z(3))
	cg := congruence.MakeZ(zz(5), zz(0)) // {..., -5, 0, 5, 10, ...}
	if !MakeZ(iv, cg).IsBottom() {
		t.Error("[2,3] with congruence 5ℤ has no common value, expected bottom")
	}
}

func TestMakeZCongruenceSingletonCollapsesInterval(t *testing.T) {
	iv := interval.RangeZ(z(0), z(100))
	cg := congruence.SingletonZ(zz(42))
	got := MakeZ(iv, cg)
	v, ok := got.Singleton()
	if !ok || !v.Equal(zz(42)) {
		t.Errorf("got %v, want singleton {42}", got)
	}
}

func TestMakeZIntervalOutsideSingletonCongruenceIsBottom(t *testing.T) {
	iv := interval.RangeZ(z(0), z(10))
	cg := congruence.SingletonZ(zz(42))
	if !MakeZ(iv, cg).IsBottom() {
		t.Error("expected bottom: 42 is outside [0,10]")
	}
}

func TestIntervalCongruenceZLatticeLaws(t *testing.T) {
	values := []IntervalCongruenceZ{
		BottomZ(), TopZ(),
		MakeZ(interval.RangeZ(z(0), z(10)), congruence.MakeZ(zz(3), zz(1))),
		MakeZ(interval.RangeZ(z(-5), z(5)), congruence.MakeZ(zz(2), zz(0))),
		SingletonZ(zz(7)),
	}
	for _, a := range values {
		if !a.Leq(a) {
			t.Errorf("reflexivity failed for %v", a)
		}
		if !a.Join(BottomZ()).Equals(a) {
			t.Errorf("join with bottom failed for %v", a)
		}
		for _, b := range values {
			j := a.Join(b)
			if !a.Leq(j) || !b.Leq(j) {
				t.Errorf("join is not an upper bound: a=%v b=%v join=%v", a, b, j)
			}
		}
	}
}

func TestIntervalCongruenceZArithmeticStaysSound(t *testing.T) {
	a := MakeZ(interval.RangeZ(z(0), z(10)), congruence.MakeZ(zz(2), zz(0)))
	b := SingletonZ(zz(3))
	got := a.Add(b)
	if !got.Contains(zz(3)) || !got.Contains(zz(13)) {
		t.Errorf("sum should contain 3 and 13, got %v", got)
	}
}

func TestIntervalCongruenceMIntIncompatiblePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic joining interval-congruences of different machine types")
		}
	}()
	a := TopMInt(8, number.Signed)
	b := TopMInt(16, number.Signed)
	a.Join(b)
}

func TestIntervalCongruenceMIntRoundTrip(t *testing.T) {
	m := number.MachineIntFromInt64(7, 8, number.Signed)
	v := SingletonMInt(m)
	got, ok := v.Singleton()
	if !ok || !got.Equal(m) {
		t.Errorf("round trip failed: got (%v, %v)", got, ok)
	}
}
