// Package interval implements the Interval lattice over arbitrary
// precision integers (IntervalZ) and over fixed-width machine integers
// (IntervalMInt).
package interval

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/number"
)

type zbound = bound.Bound[number.Z]

// IntervalZ is bottom, or a closed range [lb, ub] with lb <= ub over
// extended bounds of arbitrary-precision integers.
type IntervalZ struct {
	isBottom bool
	lb, ub   zbound
}

// TopZ is the interval (-infinity, +infinity).
func TopZ() IntervalZ {
	return IntervalZ{lb: bound.NegInf[number.Z](), ub: bound.PosInf[number.Z]()}
}

// BottomZ is the empty interval.
func BottomZ() IntervalZ { return IntervalZ{isBottom: true} }

// RangeZ builds [lb, ub], returning bottom if lb > ub.
func RangeZ(lb, ub zbound) IntervalZ {
	if lb.Gt(ub) {
		return BottomZ()
	}
	return IntervalZ{lb: lb, ub: ub}
}

// SingletonZ builds the one-point interval {n}.
func SingletonZ(n number.Z) IntervalZ {
	return RangeZ(bound.Finite(n), bound.Finite(n))
}

// IsBottom, IsTop report the interval's lattice extremes.
func (iv IntervalZ) IsBottom() bool { return iv.isBottom }
func (iv IntervalZ) IsTop() bool {
	return !iv.isBottom && iv.lb.IsNegInf() && iv.ub.IsPosInf()
}

// LowerBound, UpperBound access the endpoints. Panics on bottom.
func (iv IntervalZ) LowerBound() zbound {
	if iv.isBottom {
		panic("interval: LowerBound() called on bottom")
	}
	return iv.lb
}
func (iv IntervalZ) UpperBound() zbound {
	if iv.isBottom {
		panic("interval: UpperBound() called on bottom")
	}
	return iv.ub
}

// Singleton returns (n, true) if iv is a one-point interval.
func (iv IntervalZ) Singleton() (number.Z, bool) {
	if iv.isBottom || !iv.lb.IsFinite() || !iv.ub.IsFinite() || iv.lb.Cmp(iv.ub) != 0 {
		return number.ZeroZ, false
	}
	return iv.lb.Value(), true
}

// Contains reports whether n lies within iv.
func (iv IntervalZ) Contains(n number.Z) bool {
	if iv.isBottom {
		return false
	}
	return iv.lb.Leq(bound.Finite(n)) && iv.ub.Geq(bound.Finite(n))
}

func (iv IntervalZ) Dump() string {
	if iv.isBottom {
		return "⊥"
	}
	return fmt.Sprintf("[%v, %v]", iv.lb, iv.ub)
}
func (iv IntervalZ) String() string { return iv.Dump() }

// Leq is the lattice order: iv <= other iff every concrete value of iv is
// a concrete value of other.
func (iv IntervalZ) Leq(other IntervalZ) bool {
	if iv.isBottom {
		return true
	}
	if other.isBottom {
		return false
	}
	return iv.lb.Geq(other.lb) && iv.ub.Leq(other.ub)
}

func (iv IntervalZ) Equals(other IntervalZ) bool {
	if iv.isBottom || other.isBottom {
		return iv.isBottom == other.isBottom
	}
	return iv.lb.Equal(other.lb) && iv.ub.Equal(other.ub)
}

// Join is the interval hull.
func (iv IntervalZ) Join(other IntervalZ) IntervalZ {
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	return RangeZ(bound.Min(iv.lb, other.lb), bound.Max(iv.ub, other.ub))
}

// Meet is the intersection, possibly bottom.
func (iv IntervalZ) Meet(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	return RangeZ(bound.Max(iv.lb, other.lb), bound.Min(iv.ub, other.ub))
}

// Widening: a bound that strictly worsens relative to iv flies to
// infinity.
func (iv IntervalZ) Widening(other IntervalZ) IntervalZ {
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	newLb := iv.lb
	if other.lb.Lt(iv.lb) {
		newLb = bound.NegInf[number.Z]()
	}
	newUb := iv.ub
	if other.ub.Gt(iv.ub) {
		newUb = bound.PosInf[number.Z]()
	}
	return RangeZ(newLb, newUb)
}

// WideningThreshold replaces a worsening bound with the supplied
// threshold when the threshold still dominates the new bound, and flies
// to infinity otherwise. The `threshold == other bound` case is not
// special-cased away: see DESIGN.md Open Question 3.
func (iv IntervalZ) WideningThreshold(other IntervalZ, lt, ut zbound) IntervalZ {
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	newLb := iv.lb
	if other.lb.Lt(iv.lb) {
		if lt.Leq(other.lb) {
			newLb = lt
		} else {
			newLb = bound.NegInf[number.Z]()
		}
	}
	newUb := iv.ub
	if other.ub.Gt(iv.ub) {
		if ut.Geq(other.ub) {
			newUb = ut
		} else {
			newUb = bound.PosInf[number.Z]()
		}
	}
	return RangeZ(newLb, newUb)
}

// Narrowing adopts the other operand's bound wherever iv's is infinite.
func (iv IntervalZ) Narrowing(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	newLb := iv.lb
	if iv.lb.IsNegInf() {
		newLb = other.lb
	}
	newUb := iv.ub
	if iv.ub.IsPosInf() {
		newUb = other.ub
	}
	return RangeZ(newLb, newUb)
}

// NarrowingThreshold is as Narrowing, but clamps the adopted bound
// against a threshold.
func (iv IntervalZ) NarrowingThreshold(other IntervalZ, lt, ut zbound) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	newLb := iv.lb
	if iv.lb.IsNegInf() {
		newLb = bound.Max(other.lb, lt)
	}
	newUb := iv.ub
	if iv.ub.IsPosInf() {
		newUb = bound.Min(other.ub, ut)
	}
	return RangeZ(newLb, newUb)
}

// Neg negates every element of iv.
func (iv IntervalZ) Neg() IntervalZ {
	if iv.isBottom {
		return BottomZ()
	}
	return RangeZ(iv.ub.Neg(), iv.lb.Neg())
}

// Add computes the interval of sums; endpoint arithmetic suffices since
// addition is monotonic in both arguments.
func (iv IntervalZ) Add(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	return RangeZ(iv.lb.Add(other.lb), iv.ub.Add(other.ub))
}

// Sub computes the interval of differences.
func (iv IntervalZ) Sub(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	return RangeZ(iv.lb.Sub(other.ub), iv.ub.Sub(other.lb))
}

// mulBound multiplies two extended bounds, with 0 * (+-infinity) = 0 by
// convention (the concretization of a degenerate finite*infinite product
// in an abstract interval is always safely 0 here because one factor is
// a single concrete value).
func mulBound(a, b zbound) zbound {
	if a.IsFinite() && a.Value().IsZero() {
		return bound.Finite(number.ZeroZ)
	}
	if b.IsFinite() && b.Value().IsZero() {
		return bound.Finite(number.ZeroZ)
	}
	if a.IsInfinite() || b.IsInfinite() {
		negative := (a.IsNegInf() || (a.IsFinite() && a.Value().Sign() < 0)) !=
			(b.IsNegInf() || (b.IsFinite() && b.Value().Sign() < 0))
		if negative {
			return bound.NegInf[number.Z]()
		}
		return bound.PosInf[number.Z]()
	}
	return bound.Finite(a.Value().Mul(b.Value()))
}

// Mul applies the 4-corner rule.
func (iv IntervalZ) Mul(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	corners := [4]zbound{
		mulBound(iv.lb, other.lb),
		mulBound(iv.lb, other.ub),
		mulBound(iv.ub, other.lb),
		mulBound(iv.ub, other.ub),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = bound.Min(lo, c)
		hi = bound.Max(hi, c)
	}
	return RangeZ(lo, hi)
}

// containsZero reports whether 0 lies in [lb, ub].
func (iv IntervalZ) containsZero() bool { return iv.Contains(number.ZeroZ) }

// splitAroundZero splits iv into its strictly-negative and
// strictly-positive parts, dropping zero (used by Div/Rem/Mod case
// splitting).
func (iv IntervalZ) splitAroundZero() (neg, pos IntervalZ) {
	negPart := RangeZ(iv.lb, bound.Min(iv.ub, bound.Finite(number.FromInt64(-1))))
	posPart := RangeZ(bound.Max(iv.lb, bound.Finite(number.FromInt64(1))), iv.ub)
	return negPart, posPart
}

// Div computes truncating division. Dividing by an interval that is
// exactly {0} yields bottom; an interval straddling zero is case-split
// on the divisor's sign.
func (iv IntervalZ) Div(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if other.Equals(SingletonZ(number.ZeroZ)) {
		return BottomZ()
	}
	if other.containsZero() {
		negD, posD := other.splitAroundZero()
		var result IntervalZ = BottomZ()
		if !negD.isBottom {
			result = result.Join(iv.divNonZero(negD))
		}
		if !posD.isBottom {
			result = result.Join(iv.divNonZero(posD))
		}
		return result
	}
	return iv.divNonZero(other)
}

func divBoundTrunc(a, b number.Z) number.Z { return a.Div(b) }

// divNonZero divides by an interval known not to contain zero.
func (iv IntervalZ) divNonZero(other IntervalZ) IntervalZ {
	// Endpoints of division by a fixed-sign interval are monotonic once
	// the extremes of both operands (including infinities) are tried;
	// division with an infinite operand saturates toward 0 or infinity
	// depending on sign, approximated here by widening to top whenever
	// either side carries an infinite endpoint interacting with a
	// non-unit divisor magnitude.
	if iv.lb.IsInfinite() || iv.ub.IsInfinite() || other.lb.IsInfinite() || other.ub.IsInfinite() {
		return TopZ()
	}
	a0, a1 := iv.lb.Value(), iv.ub.Value()
	b0, b1 := other.lb.Value(), other.ub.Value()
	candidates := []number.Z{
		divBoundTrunc(a0, b0), divBoundTrunc(a0, b1),
		divBoundTrunc(a1, b0), divBoundTrunc(a1, b1),
	}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		lo = number.Min(lo, c)
		hi = number.Max(hi, c)
	}
	return RangeZ(bound.Finite(lo), bound.Finite(hi))
}

// Rem computes the interval of truncating remainders (sign of the
// dividend); approximated via the divisor's magnitude bound.
func (iv IntervalZ) Rem(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if other.Equals(SingletonZ(number.ZeroZ)) {
		return BottomZ()
	}
	magnitude := other.absUpperMagnitude()
	if magnitude.IsInfinite() {
		return TopZ()
	}
	maxAbs := magnitude.Value().Sub(number.OneZ)
	// The remainder takes the dividend's sign: non-negative dividends
	// produce a non-negative remainder, non-positive dividends a
	// non-positive one, and a sign-straddling dividend both.
	lo, hi := maxAbs.Neg(), maxAbs
	if iv.lb.IsFinite() && iv.lb.Value().Sign() >= 0 {
		lo = number.ZeroZ
	}
	if iv.ub.IsFinite() && iv.ub.Value().Sign() <= 0 {
		hi = number.ZeroZ
	}
	return RangeZ(bound.Finite(lo), bound.Finite(hi))
}

// Mod computes the interval of mathematical-modulo results: always
// non-negative when the divisor is positive.
func (iv IntervalZ) Mod(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if other.Equals(SingletonZ(number.ZeroZ)) {
		return BottomZ()
	}
	m := other.absUpperMagnitude()
	if m.IsInfinite() {
		return TopZ()
	}
	return RangeZ(bound.Finite(number.ZeroZ), bound.Finite(m.Value().Sub(number.OneZ)))
}

// absUpperMagnitude returns an upper bound on |x| for x in other,
// excluding zero.
func (iv IntervalZ) absUpperMagnitude() zbound {
	if iv.lb.IsInfinite() || iv.ub.IsInfinite() {
		return bound.PosInf[number.Z]()
	}
	a := iv.lb.Value().Abs()
	b := iv.ub.Value().Abs()
	return bound.Finite(number.Max(a, b))
}

// Shl, Shr, And, Or, Xor fall back to top except for a few exact special
// cases (singleton operands, or non-negative finite operands via the
// fill-ones bit trick).
func (iv IntervalZ) Shl(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if n, ok := other.Singleton(); ok && n.Sign() >= 0 {
		if v, ok2 := iv.Singleton(); ok2 {
			amt, exact := n.Int64()
			if exact {
				return SingletonZ(v.Shl(int(amt)))
			}
		}
	}
	return TopZ()
}

func (iv IntervalZ) Shr(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if n, ok := other.Singleton(); ok && n.Sign() >= 0 {
		if v, ok2 := iv.Singleton(); ok2 {
			amt, exact := n.Int64()
			if exact {
				return SingletonZ(v.Shr(int(amt)))
			}
		}
	}
	return TopZ()
}

// nonNegativeFinite reports whether iv is entirely within [0, +infinity)
// with a finite upper bound.
func (iv IntervalZ) nonNegativeFinite() bool {
	return !iv.isBottom && iv.lb.IsFinite() && iv.lb.Value().Sign() >= 0 && iv.ub.IsFinite()
}

func (iv IntervalZ) Or(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonZ(v1.Or(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		hi := number.Max(iv.ub.Value(), other.ub.Value()).FillOnes()
		return RangeZ(bound.Finite(number.Max(iv.lb.Value(), other.lb.Value())), bound.Finite(hi))
	}
	return TopZ()
}

func (iv IntervalZ) And(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonZ(v1.And(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		hi := number.Min(iv.ub.Value(), other.ub.Value())
		return RangeZ(bound.Finite(number.ZeroZ), bound.Finite(hi))
	}
	return TopZ()
}

func (iv IntervalZ) Xor(other IntervalZ) IntervalZ {
	if iv.isBottom || other.isBottom {
		return BottomZ()
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonZ(v1.Xor(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		hi := number.Max(iv.ub.Value(), other.ub.Value()).FillOnes()
		return RangeZ(bound.Finite(number.ZeroZ), bound.Finite(hi))
	}
	return TopZ()
}
