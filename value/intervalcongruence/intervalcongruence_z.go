// Package intervalcongruence implements the reduced product of Interval
// and Congruence: each constructor snaps the interval's
// bounds to the nearest value consistent with the congruence, and
// collapses to a singleton (or to bottom) whenever that snapping proves
// the combination empty or exact. Grounded on
// original_source/core/include/ikos/core/value/machine_int/interval_congruence.hpp
// for the exact reduction rule.
package intervalcongruence

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
)

type zbound = bound.Bound[number.Z]

// IntervalCongruenceZ is the reduced product of an IntervalZ and a
// CongruenceZ: every non-bottom value satisfies iv.Contains(n) for every
// n the congruence denotes inside iv's range, and vice versa.
type IntervalCongruenceZ struct {
	isBottom bool
	iv       interval.IntervalZ
	cg       congruence.CongruenceZ
}

// TopZ is (-infinity, +infinity) reduced with 1ℤ + 0.
func TopZ() IntervalCongruenceZ {
	return IntervalCongruenceZ{iv: interval.TopZ(), cg: congruence.TopZ()}
}

// BottomZ is the empty value.
func BottomZ() IntervalCongruenceZ { return IntervalCongruenceZ{isBottom: true} }

// snapUp returns the smallest n >= x with n ≡ b (mod a), a > 0.
func snapUp(x, a, b number.Z) number.Z {
	delta := b.Sub(x.Mod(a)).Mod(a)
	return x.Add(delta)
}

// snapDown returns the largest n <= x with n ≡ b (mod a), a > 0.
func snapDown(x, a, b number.Z) number.Z {
	delta := x.Mod(a).Sub(b).Mod(a)
	return x.Sub(delta)
}

// MakeZ builds the reduced product of iv and cg, snapping iv's finite
// bounds onto cg's residue class.
func MakeZ(iv interval.IntervalZ, cg congruence.CongruenceZ) IntervalCongruenceZ {
	if iv.IsBottom() || cg.IsBottom() {
		return BottomZ()
	}
	if v, ok := cg.Singleton(); ok {
		if !iv.Contains(v) {
			return BottomZ()
		}
		return IntervalCongruenceZ{iv: interval.SingletonZ(v), cg: congruence.SingletonZ(v)}
	}
	if v, ok := iv.Singleton(); ok {
		if !cg.Contains(v) {
			return BottomZ()
		}
		return IntervalCongruenceZ{iv: interval.SingletonZ(v), cg: congruence.SingletonZ(v)}
	}
	a := cg.Modulus()
	newLb := iv.LowerBound()
	if newLb.IsFinite() {
		newLb = bound.Finite(snapUp(newLb.Value(), a, cg.Residue()))
	}
	newUb := iv.UpperBound()
	if newUb.IsFinite() {
		newUb = bound.Finite(snapDown(newUb.Value(), a, cg.Residue()))
	}
	reduced := interval.RangeZ(newLb, newUb)
	if reduced.IsBottom() {
		return BottomZ()
	}
	return IntervalCongruenceZ{iv: reduced, cg: cg}
}

// SingletonZ builds the exact value {n}.
func SingletonZ(n number.Z) IntervalCongruenceZ {
	return IntervalCongruenceZ{iv: interval.SingletonZ(n), cg: congruence.SingletonZ(n)}
}

func (v IntervalCongruenceZ) IsBottom() bool { return v.isBottom }
func (v IntervalCongruenceZ) IsTop() bool    { return !v.isBottom && v.iv.IsTop() && v.cg.IsTop() }

// Interval and Congruence project out each component.
func (v IntervalCongruenceZ) Interval() interval.IntervalZ {
	if v.isBottom {
		return interval.BottomZ()
	}
	return v.iv
}
func (v IntervalCongruenceZ) Congruence() congruence.CongruenceZ {
	if v.isBottom {
		return congruence.BottomZ()
	}
	return v.cg
}

func (v IntervalCongruenceZ) Singleton() (number.Z, bool) {
	if v.isBottom {
		return number.ZeroZ, false
	}
	return v.iv.Singleton()
}

func (v IntervalCongruenceZ) Contains(n number.Z) bool {
	return !v.isBottom && v.iv.Contains(n) && v.cg.Contains(n)
}

func (v IntervalCongruenceZ) Dump() string {
	if v.isBottom {
		return "⊥"
	}
	return fmt.Sprintf("%v ∧ %v", v.iv, v.cg)
}
func (v IntervalCongruenceZ) String() string { return v.Dump() }

func (v IntervalCongruenceZ) Leq(other IntervalCongruenceZ) bool {
	if v.isBottom {
		return true
	}
	if other.isBottom {
		return false
	}
	return v.iv.Leq(other.iv) && v.cg.Leq(other.cg)
}

func (v IntervalCongruenceZ) Equals(other IntervalCongruenceZ) bool {
	if v.isBottom || other.isBottom {
		return v.isBottom == other.isBottom
	}
	return v.iv.Equals(other.iv) && v.cg.Equals(other.cg)
}

func (v IntervalCongruenceZ) Join(other IntervalCongruenceZ) IntervalCongruenceZ {
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeZ(v.iv.Join(other.iv), v.cg.Join(other.cg))
}

func (v IntervalCongruenceZ) Meet(other IntervalCongruenceZ) IntervalCongruenceZ {
	if v.isBottom || other.isBottom {
		return BottomZ()
	}
	return MakeZ(v.iv.Meet(other.iv), v.cg.Meet(other.cg))
}

func (v IntervalCongruenceZ) Widening(other IntervalCongruenceZ) IntervalCongruenceZ {
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeZ(v.iv.Widening(other.iv), v.cg.Widening(other.cg))
}

func (v IntervalCongruenceZ) WideningThreshold(other IntervalCongruenceZ, lt, ut zbound) IntervalCongruenceZ {
	if v.isBottom {
		return other
	}
	if other.isBottom {
		return v
	}
	return MakeZ(v.iv.WideningThreshold(other.iv, lt, ut), v.cg.Widening(other.cg))
}

func (v IntervalCongruenceZ) Narrowing(other IntervalCongruenceZ) IntervalCongruenceZ {
	if v.isBottom || other.isBottom {
		return BottomZ()
	}
	return MakeZ(v.iv.Narrowing(other.iv), v.cg.Narrowing(other.cg))
}

func (v IntervalCongruenceZ) NarrowingThreshold(other IntervalCongruenceZ, lt, ut zbound) IntervalCongruenceZ {
	if v.isBottom || other.isBottom {
		return BottomZ()
	}
	return MakeZ(v.iv.NarrowingThreshold(other.iv, lt, ut), v.cg.Narrowing(other.cg))
}

// SupportsNarrowing is false: the congruence component never benefits
// from a second decreasing step (congruence.CongruenceZ.SupportsNarrowing
// is also false), even though the interval component would.
func (IntervalCongruenceZ) SupportsNarrowing() bool { return false }

func (v IntervalCongruenceZ) Neg() IntervalCongruenceZ {
	if v.isBottom {
		return v
	}
	return MakeZ(v.iv.Neg(), v.cg.Neg())
}

func (v IntervalCongruenceZ) Add(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Add, congruence.CongruenceZ.Add)
}
func (v IntervalCongruenceZ) Sub(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Sub, congruence.CongruenceZ.Sub)
}
func (v IntervalCongruenceZ) Mul(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Mul, congruence.CongruenceZ.Mul)
}
func (v IntervalCongruenceZ) Div(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Div, congruence.CongruenceZ.Div)
}
func (v IntervalCongruenceZ) Rem(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Rem, congruence.CongruenceZ.Rem)
}
func (v IntervalCongruenceZ) Mod(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Mod, congruence.CongruenceZ.Mod)
}
func (v IntervalCongruenceZ) Shl(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Shl, congruence.CongruenceZ.Shl)
}
func (v IntervalCongruenceZ) Shr(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Shr, congruence.CongruenceZ.Shr)
}
func (v IntervalCongruenceZ) And(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.And, congruence.CongruenceZ.And)
}
func (v IntervalCongruenceZ) Or(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Or, congruence.CongruenceZ.Or)
}
func (v IntervalCongruenceZ) Xor(other IntervalCongruenceZ) IntervalCongruenceZ {
	return binOpZ(v, other, interval.IntervalZ.Xor, congruence.CongruenceZ.Xor)
}

// binOpZ applies ivOp and cgOp componentwise, then re-reduces: computing
// each component's transfer function independently and recombining is
// always sound, and the reduction recovers any precision the two
// components can mutually refine.
func binOpZ(
	v, other IntervalCongruenceZ,
	ivOp func(interval.IntervalZ, interval.IntervalZ) interval.IntervalZ,
	cgOp func(congruence.CongruenceZ, congruence.CongruenceZ) congruence.CongruenceZ,
) IntervalCongruenceZ {
	if v.isBottom || other.isBottom {
		return BottomZ()
	}
	return MakeZ(ivOp(v.iv, other.iv), cgOp(v.cg, other.cg))
}
