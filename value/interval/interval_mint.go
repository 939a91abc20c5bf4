package interval

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/number"
)

// IntervalMInt is the Interval lattice over fixed-width machine integers.
// Every non-bottom value carries the (width, sign) tag of its endpoints;
// mixing tags across an operation is a contract violation. Any interval
// arithmetic result that would wrap around 2^width is widened to top
// rather than represented as a wrapped range.
type IntervalMInt struct {
	isBottom bool
	width    int
	sign     number.Sign
	lb, ub   number.Z // raw mathematical bounds, in [MinValue, MaxValue] when non-bottom
}

func typeBounds(width int, sign number.Sign) (min, max number.Z) {
	sample := number.NewMachineInt(number.ZeroZ, width, sign)
	return sample.MinValue(), sample.MaxValue()
}

// TopMInt is [MinValue, MaxValue] for the given type.
func TopMInt(width int, sign number.Sign) IntervalMInt {
	min, max := typeBounds(width, sign)
	return IntervalMInt{width: width, sign: sign, lb: min, ub: max}
}

// BottomMInt is the empty interval of the given type.
func BottomMInt(width int, sign number.Sign) IntervalMInt {
	return IntervalMInt{isBottom: true, width: width, sign: sign}
}

// RangeMInt builds [lb, ub] for a given type, collapsing to bottom if
// lb > ub and to top if either endpoint escapes the type's range (the
// "wraps around 2^w" case).
func RangeMInt(width int, sign number.Sign, lb, ub number.Z) IntervalMInt {
	if lb.Gt(ub) {
		return BottomMInt(width, sign)
	}
	min, max := typeBounds(width, sign)
	if lb.Lt(min) || ub.Gt(max) {
		return TopMInt(width, sign)
	}
	return IntervalMInt{width: width, sign: sign, lb: lb, ub: ub}
}

// SingletonMInt builds the one-point interval {m}.
func SingletonMInt(m number.MachineInt) IntervalMInt {
	return RangeMInt(m.Width(), m.Sign(), m.Value(), m.Value())
}

func (iv IntervalMInt) Width() int          { return iv.width }
func (iv IntervalMInt) MIntSign() number.Sign { return iv.sign }

func (iv IntervalMInt) sameType(other IntervalMInt) bool {
	return iv.width == other.width && iv.sign == other.sign
}

func (iv IntervalMInt) checkSameType(other IntervalMInt) {
	if !iv.sameType(other) {
		panic(fmt.Sprintf("interval: incompatible machine-int intervals: %d-bit %s vs %d-bit %s",
			iv.width, iv.sign, other.width, other.sign))
	}
}

func (iv IntervalMInt) IsBottom() bool { return iv.isBottom }
func (iv IntervalMInt) IsTop() bool {
	if iv.isBottom {
		return false
	}
	min, max := typeBounds(iv.width, iv.sign)
	return iv.lb.Equal(min) && iv.ub.Equal(max)
}

func (iv IntervalMInt) LowerBound() number.Z {
	if iv.isBottom {
		panic("interval: LowerBound() called on bottom")
	}
	return iv.lb
}
func (iv IntervalMInt) UpperBound() number.Z {
	if iv.isBottom {
		panic("interval: UpperBound() called on bottom")
	}
	return iv.ub
}

func (iv IntervalMInt) Singleton() (number.MachineInt, bool) {
	if iv.isBottom || !iv.lb.Equal(iv.ub) {
		return number.MachineInt{}, false
	}
	return number.NewMachineInt(iv.lb, iv.width, iv.sign), true
}

func (iv IntervalMInt) Contains(m number.MachineInt) bool {
	if iv.isBottom || m.Width() != iv.width || m.Sign() != iv.sign {
		return false
	}
	return iv.lb.Leq(m.Value()) && iv.ub.Geq(m.Value())
}

func (iv IntervalMInt) Dump() string {
	if iv.isBottom {
		return "⊥"
	}
	return fmt.Sprintf("[%v, %v]:i%d%v", iv.lb, iv.ub, iv.width, iv.sign)
}
func (iv IntervalMInt) String() string { return iv.Dump() }

func (iv IntervalMInt) Leq(other IntervalMInt) bool {
	iv.checkSameType(other)
	if iv.isBottom {
		return true
	}
	if other.isBottom {
		return false
	}
	return iv.lb.Geq(other.lb) && iv.ub.Leq(other.ub)
}

func (iv IntervalMInt) Equals(other IntervalMInt) bool {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return iv.isBottom == other.isBottom
	}
	return iv.lb.Equal(other.lb) && iv.ub.Equal(other.ub)
}

func (iv IntervalMInt) Join(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	return RangeMInt(iv.width, iv.sign, number.Min(iv.lb, other.lb), number.Max(iv.ub, other.ub))
}

func (iv IntervalMInt) Meet(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	return RangeMInt(iv.width, iv.sign, number.Max(iv.lb, other.lb), number.Min(iv.ub, other.ub))
}

func (iv IntervalMInt) Widening(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	min, max := typeBounds(iv.width, iv.sign)
	newLb := iv.lb
	if other.lb.Lt(iv.lb) {
		newLb = min
	}
	newUb := iv.ub
	if other.ub.Gt(iv.ub) {
		newUb = max
	}
	return RangeMInt(iv.width, iv.sign, newLb, newUb)
}

func (iv IntervalMInt) WideningThreshold(other IntervalMInt, lt, ut number.Z) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom {
		return other
	}
	if other.isBottom {
		return iv
	}
	min, max := typeBounds(iv.width, iv.sign)
	newLb := iv.lb
	if other.lb.Lt(iv.lb) {
		if lt.Leq(other.lb) {
			newLb = lt
		} else {
			newLb = min
		}
	}
	newUb := iv.ub
	if other.ub.Gt(iv.ub) {
		if ut.Geq(other.ub) {
			newUb = ut
		} else {
			newUb = max
		}
	}
	return RangeMInt(iv.width, iv.sign, newLb, newUb)
}

func (iv IntervalMInt) Narrowing(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	min, max := typeBounds(iv.width, iv.sign)
	newLb := iv.lb
	if iv.lb.Equal(min) {
		newLb = other.lb
	}
	newUb := iv.ub
	if iv.ub.Equal(max) {
		newUb = other.ub
	}
	return RangeMInt(iv.width, iv.sign, newLb, newUb)
}

func (iv IntervalMInt) NarrowingThreshold(other IntervalMInt, lt, ut number.Z) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	min, max := typeBounds(iv.width, iv.sign)
	newLb := iv.lb
	if iv.lb.Equal(min) {
		newLb = number.Max(other.lb, lt)
	}
	newUb := iv.ub
	if iv.ub.Equal(max) {
		newUb = number.Min(other.ub, ut)
	}
	return RangeMInt(iv.width, iv.sign, newLb, newUb)
}

func (iv IntervalMInt) Neg() IntervalMInt {
	if iv.isBottom {
		return iv
	}
	return RangeMInt(iv.width, iv.sign, iv.ub.Neg(), iv.lb.Neg())
}

// singletonPair returns the two operands as MachineInt values when both
// iv and other are exact points, so that exact wrapping arithmetic (not
// the conservative interval-level "wraps => top" rule) can be used.
func (iv IntervalMInt) singletonPair(other IntervalMInt) (a, b number.MachineInt, ok bool) {
	av, aok := iv.Singleton()
	bv, bok := other.Singleton()
	return av, bv, aok && bok
}

func (iv IntervalMInt) Add(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if a, b, ok := iv.singletonPair(other); ok {
		return SingletonMInt(a.Add(b))
	}
	return RangeMInt(iv.width, iv.sign, iv.lb.Add(other.lb), iv.ub.Add(other.ub))
}

func (iv IntervalMInt) Sub(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if a, b, ok := iv.singletonPair(other); ok {
		return SingletonMInt(a.Sub(b))
	}
	return RangeMInt(iv.width, iv.sign, iv.lb.Sub(other.ub), iv.ub.Sub(other.lb))
}

func (iv IntervalMInt) Mul(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if a, b, ok := iv.singletonPair(other); ok {
		return SingletonMInt(a.Mul(b))
	}
	corners := [4]number.Z{
		iv.lb.Mul(other.lb), iv.lb.Mul(other.ub),
		iv.ub.Mul(other.lb), iv.ub.Mul(other.ub),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = number.Min(lo, c)
		hi = number.Max(hi, c)
	}
	return RangeMInt(iv.width, iv.sign, lo, hi)
}

func (iv IntervalMInt) containsZero() bool {
	return !iv.isBottom && iv.lb.Sign() <= 0 && iv.ub.Sign() >= 0
}

// Div performs truncating division; a zero-only divisor yields bottom,
// and a divisor straddling zero is case-split.
func (iv IntervalMInt) Div(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if other.lb.IsZero() && other.ub.IsZero() {
		return BottomMInt(iv.width, iv.sign)
	}
	if iv.sign == number.Unsigned || !other.containsZero() {
		return iv.divNonZero(other)
	}
	negD := RangeMInt(iv.width, iv.sign, other.lb, number.Min(other.ub, number.FromInt64(-1)))
	posD := RangeMInt(iv.width, iv.sign, number.Max(other.lb, number.OneZ), other.ub)
	result := BottomMInt(iv.width, iv.sign)
	if !negD.isBottom {
		result = result.Join(iv.divNonZero(negD))
	}
	if !posD.isBottom {
		result = result.Join(iv.divNonZero(posD))
	}
	return result
}

func (iv IntervalMInt) divNonZero(other IntervalMInt) IntervalMInt {
	candidates := [4]number.Z{
		iv.lb.Div(other.lb), iv.lb.Div(other.ub),
		iv.ub.Div(other.lb), iv.ub.Div(other.ub),
	}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		lo = number.Min(lo, c)
		hi = number.Max(hi, c)
	}
	return RangeMInt(iv.width, iv.sign, lo, hi)
}

// Rem approximates the truncating remainder via the divisor's magnitude.
func (iv IntervalMInt) Rem(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if other.lb.IsZero() && other.ub.IsZero() {
		return BottomMInt(iv.width, iv.sign)
	}
	maxAbs := number.Max(other.lb.Abs(), other.ub.Abs())
	if maxAbs.IsZero() {
		return BottomMInt(iv.width, iv.sign)
	}
	bound := maxAbs.Sub(number.OneZ)
	lo, hi := bound.Neg(), bound
	if iv.sign == number.Unsigned {
		lo = number.ZeroZ
	}
	return RangeMInt(iv.width, iv.sign, lo, hi)
}

// Mod computes the non-negative-when-positive-divisor modulo interval.
func (iv IntervalMInt) Mod(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if other.lb.IsZero() && other.ub.IsZero() {
		return BottomMInt(iv.width, iv.sign)
	}
	maxAbs := number.Max(other.lb.Abs(), other.ub.Abs())
	if maxAbs.IsZero() {
		return BottomMInt(iv.width, iv.sign)
	}
	return RangeMInt(iv.width, iv.sign, number.ZeroZ, maxAbs.Sub(number.OneZ))
}

// Shl, Shr fall back to top except on singleton operands, matching
// IntervalZ's bit-shift approximation.
func (iv IntervalMInt) Shl(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if a, b, ok := iv.singletonPair(other); ok {
		return SingletonMInt(a.Shl(b))
	}
	return TopMInt(iv.width, iv.sign)
}

func (iv IntervalMInt) Shr(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if a, b, ok := iv.singletonPair(other); ok {
		return SingletonMInt(a.Shr(b))
	}
	return TopMInt(iv.width, iv.sign)
}

func (iv IntervalMInt) nonNegativeFinite() bool { return !iv.isBottom && iv.lb.Sign() >= 0 }

func (iv IntervalMInt) Or(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonMInt(v1.Or(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		hi := number.Max(iv.ub, other.ub).FillOnes()
		return RangeMInt(iv.width, iv.sign, number.Max(iv.lb, other.lb), hi)
	}
	return TopMInt(iv.width, iv.sign)
}

func (iv IntervalMInt) And(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonMInt(v1.And(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		return RangeMInt(iv.width, iv.sign, number.ZeroZ, number.Min(iv.ub, other.ub))
	}
	return TopMInt(iv.width, iv.sign)
}

func (iv IntervalMInt) Xor(other IntervalMInt) IntervalMInt {
	iv.checkSameType(other)
	if iv.isBottom || other.isBottom {
		return BottomMInt(iv.width, iv.sign)
	}
	if v1, ok := iv.Singleton(); ok {
		if v2, ok2 := other.Singleton(); ok2 {
			return SingletonMInt(v1.Xor(v2))
		}
	}
	if iv.nonNegativeFinite() && other.nonNegativeFinite() {
		hi := number.Max(iv.ub, other.ub).FillOnes()
		return RangeMInt(iv.width, iv.sign, number.ZeroZ, hi)
	}
	return TopMInt(iv.width, iv.sign)
}
