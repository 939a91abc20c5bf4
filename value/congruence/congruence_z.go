// Package congruence implements the Congruence lattice aℤ + b over
// arbitrary-precision integers (CongruenceZ) and over machine integers
// (CongruenceMInt, a thin wrap-and-clamp layer over CongruenceZ).
package congruence

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/number"
)

// CongruenceZ is bottom, or the set of integers congruent to b modulo a
// (a >= 0; a == 0 denotes the singleton {b}; b is reduced into [0, a)
// when a > 0).
type CongruenceZ struct {
	isBottom bool
	a, b     number.Z
}

func reduceZ(a, b number.Z) CongruenceZ {
	if a.IsZero() {
		return CongruenceZ{a: number.ZeroZ, b: b}
	}
	a = a.Abs()
	return CongruenceZ{a: a, b: b.Mod(a)}
}

// TopZ is 1ℤ + 0, the set of all integers.
func TopZ() CongruenceZ { return CongruenceZ{a: number.OneZ, b: number.ZeroZ} }

// BottomZ is the empty set.
func BottomZ() CongruenceZ { return CongruenceZ{isBottom: true} }

// SingletonZ is the congruence {n} (a == 0).
func SingletonZ(n number.Z) CongruenceZ { return CongruenceZ{a: number.ZeroZ, b: n} }

// MakeZ builds aℤ + b, canonicalizing b into [0, a) when a > 0.
func MakeZ(a, b number.Z) CongruenceZ {
	if a.Sign() < 0 {
		panic("congruence: modulus must be non-negative")
	}
	return reduceZ(a, b)
}

func (c CongruenceZ) IsBottom() bool { return c.isBottom }
func (c CongruenceZ) IsTop() bool    { return !c.isBottom && c.a.Equal(number.OneZ) }
func (c CongruenceZ) Modulus() number.Z {
	if c.isBottom {
		panic("congruence: Modulus() called on bottom")
	}
	return c.a
}
func (c CongruenceZ) Residue() number.Z {
	if c.isBottom {
		panic("congruence: Residue() called on bottom")
	}
	return c.b
}

// Singleton returns (n, true) when c denotes exactly one integer.
func (c CongruenceZ) Singleton() (number.Z, bool) {
	if c.isBottom || !c.a.IsZero() {
		return number.ZeroZ, false
	}
	return c.b, true
}

// Contains reports whether n belongs to c.
func (c CongruenceZ) Contains(n number.Z) bool {
	if c.isBottom {
		return false
	}
	if c.a.IsZero() {
		return n.Equal(c.b)
	}
	return n.Sub(c.b).Mod(c.a).IsZero()
}

func (c CongruenceZ) Dump() string {
	if c.isBottom {
		return "⊥"
	}
	if c.a.IsZero() {
		return fmt.Sprintf("{%v}", c.b)
	}
	return fmt.Sprintf("%vℤ + %v", c.a, c.b)
}
func (c CongruenceZ) String() string { return c.Dump() }

// Leq: aℤ+b ⊆ a'ℤ+b' iff a' divides a and b ≡ b' (mod a'), generalized
// to the a == 0 (singleton) edge cases.
func (c CongruenceZ) Leq(other CongruenceZ) bool {
	if c.isBottom {
		return true
	}
	if other.isBottom {
		return false
	}
	if other.a.IsZero() {
		if !c.a.IsZero() {
			return false
		}
		return c.b.Equal(other.b)
	}
	if c.a.IsZero() {
		return c.b.Sub(other.b).Mod(other.a).IsZero()
	}
	if !c.a.Mod(other.a).IsZero() {
		return false
	}
	return c.b.Sub(other.b).Mod(other.a).IsZero()
}

func (c CongruenceZ) Equals(other CongruenceZ) bool {
	if c.isBottom || other.isBottom {
		return c.isBottom == other.isBottom
	}
	return c.a.Equal(other.a) && c.b.Equal(other.b)
}

// gcdZero treats gcd(0, x) == |x| and gcd(0, 0) == 0, the convention the
// congruence algebra relies on to unify the a == 0 (singleton) case with
// the general one.
func gcdZero(a, b number.Z) number.Z {
	if a.IsZero() {
		return b.Abs()
	}
	if b.IsZero() {
		return a.Abs()
	}
	return a.Gcd(b)
}

// Join implements the standard congruence join: the smallest congruence
// class containing both operands.
func (c CongruenceZ) Join(other CongruenceZ) CongruenceZ {
	if c.isBottom {
		return other
	}
	if other.isBottom {
		return c
	}
	newA := gcdZero(gcdZero(c.a, other.a), c.b.Sub(other.b))
	return reduceZ(newA, c.b)
}

// crt solves the Chinese Remainder problem for two congruences, used by
// Meet via number.Z.ExtGCD (the extended Euclidean algorithm).
func crt(a1, b1, a2, b2 number.Z) (a, b number.Z, ok bool) {
	switch {
	case a1.IsZero() && a2.IsZero():
		return number.ZeroZ, b1, b1.Equal(b2)
	case a1.IsZero():
		return number.ZeroZ, b1, b1.Sub(b2).Mod(a2).IsZero()
	case a2.IsZero():
		return number.ZeroZ, b2, b2.Sub(b1).Mod(a1).IsZero()
	}
	g, x, _ := a1.ExtGCD(a2)
	diff := b2.Sub(b1)
	if !diff.Mod(g).IsZero() {
		return number.ZeroZ, number.ZeroZ, false
	}
	lcm := a1.Div(g).Mul(a2)
	k := diff.Div(g)
	t := b1.Add(a1.Mul(x).Mul(k))
	return lcm, t.Mod(lcm), true
}

// Meet computes the intersection of two congruence classes via CRT.
func (c CongruenceZ) Meet(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	a, b, ok := crt(c.a, c.b, other.a, other.b)
	if !ok {
		return BottomZ()
	}
	return reduceZ(a, b)
}

// Widening is Join: the congruence lattice has finite ascending chains
// bounded by the divisor chain of the modulus, so plain join already
// terminates (see DESIGN.md).
func (c CongruenceZ) Widening(other CongruenceZ) CongruenceZ { return c.Join(other) }

// WideningThreshold ignores the threshold for the same reason.
func (c CongruenceZ) WideningThreshold(other CongruenceZ, _ number.Z) CongruenceZ {
	return c.Join(other)
}

// Narrowing is Meet: congruence meet is already exact, so narrowing adds
// no further refinement capability.
func (c CongruenceZ) Narrowing(other CongruenceZ) CongruenceZ { return c.Meet(other) }
func (c CongruenceZ) NarrowingThreshold(other CongruenceZ, _ number.Z) CongruenceZ {
	return c.Meet(other)
}

// SupportsNarrowing reports false: congruence meet is exact, so a
// decreasing iteration gains nothing past its first step. The fixpoint
// iterator does not call it.
func (CongruenceZ) SupportsNarrowing() bool { return false }

func (c CongruenceZ) Neg() CongruenceZ {
	if c.isBottom {
		return c
	}
	return reduceZ(c.a, c.b.Neg())
}

func (c CongruenceZ) Add(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	newA := gcdZero(c.a, other.a)
	return reduceZ(newA, c.b.Add(other.b))
}

func (c CongruenceZ) Sub(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	newA := gcdZero(c.a, other.a)
	return reduceZ(newA, c.b.Sub(other.b))
}

// Mul implements the exact product formula
// gcd(a·a', a·b', a'·b) ℤ + b·b'.
func (c CongruenceZ) Mul(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	newA := gcdZero(gcdZero(c.a.Mul(other.a), c.a.Mul(other.b)), other.a.Mul(c.b))
	return reduceZ(newA, c.b.Mul(other.b))
}

// Div, Rem, Mod are exact only when both operands are singletons;
// otherwise they weaken to top, a sound (if imprecise) over-approximation
// — the congruence algebra for division has no compact closed form for
// the general case.
func (c CongruenceZ) Div(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	if av, ok := c.Singleton(); ok {
		if bv, ok2 := other.Singleton(); ok2 {
			if bv.IsZero() {
				return BottomZ()
			}
			return SingletonZ(av.Div(bv))
		}
	}
	if bv, ok := other.Singleton(); ok && bv.IsZero() {
		return BottomZ()
	}
	return TopZ()
}

func (c CongruenceZ) Rem(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	if av, ok := c.Singleton(); ok {
		if bv, ok2 := other.Singleton(); ok2 {
			if bv.IsZero() {
				return BottomZ()
			}
			return SingletonZ(av.Rem(bv))
		}
	}
	if bv, ok := other.Singleton(); ok && bv.IsZero() {
		return BottomZ()
	}
	return TopZ()
}

func (c CongruenceZ) Mod(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	if av, ok := c.Singleton(); ok {
		if bv, ok2 := other.Singleton(); ok2 {
			if bv.IsZero() {
				return BottomZ()
			}
			return SingletonZ(av.Mod(bv))
		}
	}
	if bv, ok := other.Singleton(); ok && bv.IsZero() {
		return BottomZ()
	}
	return TopZ()
}

// Shl implements the exact doubling rule: shifting left multiplies both
// the modulus and the residue by 2^k.
func (c CongruenceZ) Shl(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	k, ok := other.Singleton()
	if !ok || k.Sign() < 0 {
		return TopZ()
	}
	amt, exact := k.Int64()
	if !exact {
		return TopZ()
	}
	factor := number.OneZ.Shl(int(amt))
	return reduceZ(c.a.Mul(factor), c.b.Mul(factor))
}

// Shr approximates the halving rule: exact only on singletons, since a
// right shift is not generally injective over a residue class.
func (c CongruenceZ) Shr(other CongruenceZ) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	if av, ok := c.Singleton(); ok {
		if k, ok2 := other.Singleton(); ok2 && k.Sign() >= 0 {
			if amt, exact := k.Int64(); exact {
				return SingletonZ(av.Shr(int(amt)))
			}
		}
	}
	return TopZ()
}

// And, Or, Xor weaken to top except on singleton operands: a bitwise
// operation's effect on an arbitrary residue class has no compact
// closed form, so the general case reduces to top (still sound, see
// DESIGN.md).
func (c CongruenceZ) And(other CongruenceZ) CongruenceZ { return bitwiseZ(c, other, number.Z.And) }
func (c CongruenceZ) Or(other CongruenceZ) CongruenceZ  { return bitwiseZ(c, other, number.Z.Or) }
func (c CongruenceZ) Xor(other CongruenceZ) CongruenceZ { return bitwiseZ(c, other, number.Z.Xor) }

func bitwiseZ(c, other CongruenceZ, op func(number.Z, number.Z) number.Z) CongruenceZ {
	if c.isBottom || other.isBottom {
		return BottomZ()
	}
	if av, ok := c.Singleton(); ok {
		if bv, ok2 := other.Singleton(); ok2 {
			return SingletonZ(op(av, bv))
		}
	}
	return TopZ()
}
