package intervalcongruence

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
)

// IntervalCongruenceMInt is the reduced product of IntervalMInt and
// CongruenceMInt at a fixed (width, sign).
type IntervalCongruenceMInt struct {
	isBottom bool
	width    int
	sign     number.Sign
	iv       interval.IntervalMInt
	cg       congruence.CongruenceMInt
}

func TopMInt(width int, sign number.Sign) IntervalCongruenceMInt {
	return IntervalCongruenceMInt{width: width, sign: sign, iv: interval.TopMInt(width, sign), cg: congruence.TopMInt(width, sign)}
}
func BottomMInt(width int, sign number.Sign) IntervalCongruenceMInt {
	return IntervalCongruenceMInt{isBottom: true, width: width, sign: sign}
}

// MakeMInt builds the reduced product, snapping iv's bounds onto cg's
// residue class the same way MakeZ does.
func MakeMInt(iv interval.IntervalMInt, cg congruence.CongruenceMInt) IntervalCongruenceMInt {
	width, sign := iv.Width(), iv.MIntSign()
	if iv.IsBottom() || cg.IsBottom() {
		return BottomMInt(width, sign)
	}
	if v, ok := cg.Singleton(); ok {
		if !iv.Contains(v) {
			return BottomMInt(width, sign)
		}
		return IntervalCongruenceMInt{width: width, sign: sign, iv: interval.SingletonMInt(v), cg: congruence.SingletonMInt(v)}
	}
	if v, ok := iv.Singleton(); ok {
		if !cg.Contains(v) {
			return BottomMInt(width, sign)
		}
		return IntervalCongruenceMInt{width: width, sign: sign, iv: interval.SingletonMInt(v), cg: congruence.SingletonMInt(v)}
	}
	a, b := cg.Modulus(), cg.Residue()
	newLb := snapUp(iv.LowerBound(), a, b)
	newUb := snapDown(iv.UpperBound(), a, b)
	reduced := interval.RangeMInt(width, sign, newLb, newUb)
	if reduced.IsBottom() {
		return BottomMInt(width, sign)
	}
	return IntervalCongruenceMInt{width: width, sign: sign, iv: reduced, cg: cg}
}

func SingletonMInt(m number.MachineInt) IntervalCongruenceMInt {
	return IntervalCongruenceMInt{width: m.Width(), sign: m.Sign(), iv: interval.SingletonMInt(m), cg: congruence.SingletonMInt(m)}
}

func (v IntervalCongruenceMInt) Width() int            { return v.width }
func (v IntervalCongruenceMInt) MIntSign() number.Sign { return v.sign }
func (v IntervalCongruenceMInt) IsBottom() bool        { return v.isBottom }
func (v IntervalCongruenceMInt) IsTop() bool           { return !v.isBottom && v.iv.IsTop() && v.cg.IsTop() }

func (v IntervalCongruenceMInt) Interval() interval.IntervalMInt {
	if v.isBottom {
		return interval.BottomMInt(v.width, v.sign)
	}
	return v.iv
}
func (v IntervalCongruenceMInt) Congruence() congruence.CongruenceMInt {
	if v.isBottom {
		return congruence.BottomMInt(v.width, v.sign)
	}
	return v.cg
}

func (v IntervalCongruenceMInt) Singleton() (number.MachineInt, bool) {
	if v.isBottom {
		return number.MachineInt{}, false
	}
	return v.iv.Singleton()
}

func (v IntervalCongruenceMInt) Contains(m number.MachineInt) bool {
	return !v.isBottom && v.iv.Contains(m) && v.cg.Contains(m)
}

func (v IntervalCongruenceMInt) Dump() string {
	if v.isBottom {
		return "⊥"
	}
	return fmt.Sprintf("%v ∧ %v", v.iv, v.cg)
}
func (v IntervalCongruenceMInt) String() string { return v.Dump() }

func (v IntervalCongruenceMInt) sameType(other IntervalCongruenceMInt) bool {
	return v.width == other.width && v.sign == other.sign
}
func (v IntervalCongruenceMInt) checkSameType(other IntervalCongruenceMInt) {
	if !v.sameType(other) {
		panic(fmt.Sprintf("intervalcongruence: incompatible machine integer types: %d-bit %s vs %d-bit %s",
			v.width, v.sign, other.width, other.sign))
	}
}

func (v IntervalCongruenceMInt) Leq(other IntervalCongruenceMInt) bool {
	v.checkSameType(other)
	if v.isBottom {
		return true
	}
	if other.isBottom {
		return false
	}
	return v.iv.Leq(other.iv) && v.cg.Leq(other.cg)
}

func (v IntervalCongruenceMInt) Equals(other IntervalCongruenceMInt) bool {
	v.checkSameType(other)
	if v.isBottom || other.isBottom {
		return v.isBottom == other.isBottom
	}
	return v.iv.Equals(other.iv) && v.cg.Equals(other.cg)
}

func (v IntervalCongruenceMInt) Join(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeMInt(v.iv.Join(other.iv), v.cg.Join(other.cg))
}
func (v IntervalCongruenceMInt) Meet(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom || other.isBottom {
		return BottomMInt(v.width, v.sign)
	}
	return MakeMInt(v.iv.Meet(other.iv), v.cg.Meet(other.cg))
}
func (v IntervalCongruenceMInt) Widening(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeMInt(v.iv.Widening(other.iv), v.cg.Widening(other.cg))
}
func (v IntervalCongruenceMInt) WideningThreshold(other IntervalCongruenceMInt, lt, ut number.Z) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeMInt(v.iv.WideningThreshold(other.iv, lt, ut), v.cg.Widening(other.cg))
}
func (v IntervalCongruenceMInt) Narrowing(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom || other.isBottom {
		return BottomMInt(v.width, v.sign)
	}
	return MakeMInt(v.iv.Narrowing(other.iv), v.cg.Narrowing(other.cg))
}
func (v IntervalCongruenceMInt) NarrowingThreshold(other IntervalCongruenceMInt, lt, ut number.Z) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom || other.isBottom {
		return BottomMInt(v.width, v.sign)
	}
	return MakeMInt(v.iv.NarrowingThreshold(other.iv, lt, ut), v.cg.Narrowing(other.cg))
}
func (IntervalCongruenceMInt) SupportsNarrowing() bool { return false }

func (v IntervalCongruenceMInt) Neg() IntervalCongruenceMInt {
	if v.isBottom {
		return v
	}
	return MakeMInt(v.iv.Neg(), v.cg.Neg())
}

func (v IntervalCongruenceMInt) Add(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Add, congruence.CongruenceMInt.Add)
}
func (v IntervalCongruenceMInt) Sub(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Sub, congruence.CongruenceMInt.Sub)
}
func (v IntervalCongruenceMInt) Mul(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Mul, congruence.CongruenceMInt.Mul)
}
func (v IntervalCongruenceMInt) Div(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Div, congruence.CongruenceMInt.Div)
}
func (v IntervalCongruenceMInt) Rem(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Rem, congruence.CongruenceMInt.Rem)
}
func (v IntervalCongruenceMInt) Mod(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Mod, congruence.CongruenceMInt.Mod)
}
func (v IntervalCongruenceMInt) Shl(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Shl, congruence.CongruenceMInt.Shl)
}
func (v IntervalCongruenceMInt) Shr(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Shr, congruence.CongruenceMInt.Shr)
}
func (v IntervalCongruenceMInt) And(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.And, congruence.CongruenceMInt.And)
}
func (v IntervalCongruenceMInt) Or(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Or, congruence.CongruenceMInt.Or)
}
func (v IntervalCongruenceMInt) Xor(other IntervalCongruenceMInt) IntervalCongruenceMInt {
	return binOpMInt(v, other, interval.IntervalMInt.Xor, congruence.CongruenceMInt.Xor)
}

func binOpMInt(
	v, other IntervalCongruenceMInt,
	ivOp func(interval.IntervalMInt, interval.IntervalMInt) interval.IntervalMInt,
	cgOp func(congruence.CongruenceMInt, congruence.CongruenceMInt) congruence.CongruenceMInt,
) IntervalCongruenceMInt {
	v.checkSameType(other)
	if v.isBottom || other.isBottom {
		return BottomMInt(v.width, v.sign)
	}
	return MakeMInt(ivOp(v.iv, other.iv), cgOp(v.cg, other.cg))
}
