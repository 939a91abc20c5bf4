package congruence

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/number"
)

// CongruenceMInt is the Congruence lattice over a fixed-width
// two's-complement machine integer type. It is a thin wrap-and-clamp
// layer over CongruenceZ: a == 0 denotes the singleton {b},
// with b normalized into the type's representable range via the same
// wrapping rule number.MachineInt uses.
type CongruenceMInt struct {
	isBottom bool
	width    int
	sign     number.Sign
	inner    CongruenceZ
}

func wrapResidue(b number.Z, width int, sign number.Sign) number.Z {
	return number.NewMachineInt(b, width, sign).Value()
}

func reduceMInt(width int, sign number.Sign, a, b number.Z) CongruenceMInt {
	return CongruenceMInt{width: width, sign: sign, inner: reduceZ(a, wrapResidue(b, width, sign))}
}

// TopMInt is 1ℤ + 0: every representable value of the type.
func TopMInt(width int, sign number.Sign) CongruenceMInt {
	_ = wrapResidue(number.ZeroZ, width, sign) // validates width via number.NewMachineInt
	return CongruenceMInt{width: width, sign: sign, inner: TopZ()}
}

// BottomMInt is the empty set.
func BottomMInt(width int, sign number.Sign) CongruenceMInt {
	return CongruenceMInt{isBottom: true, width: width, sign: sign}
}

// SingletonMInt is the congruence containing exactly m.
func SingletonMInt(m number.MachineInt) CongruenceMInt {
	return CongruenceMInt{width: m.Width(), sign: m.Sign(), inner: SingletonZ(m.Value())}
}

// MakeMInt builds aℤ + b at the given machine type.
func MakeMInt(width int, sign number.Sign, a, b number.Z) CongruenceMInt {
	if a.Sign() < 0 {
		panic("congruence: modulus must be non-negative")
	}
	return reduceMInt(width, sign, a, b)
}

func (c CongruenceMInt) sameType(other CongruenceMInt) bool {
	return c.width == other.width && c.sign == other.sign
}
func (c CongruenceMInt) checkSameType(other CongruenceMInt) {
	if !c.sameType(other) {
		panic(fmt.Sprintf("congruence: incompatible machine integer types: %d-bit %s vs %d-bit %s",
			c.width, c.sign, other.width, other.sign))
	}
}

func (c CongruenceMInt) Width() int         { return c.width }
func (c CongruenceMInt) MIntSign() number.Sign { return c.sign }
func (c CongruenceMInt) IsBottom() bool     { return c.isBottom }
func (c CongruenceMInt) IsTop() bool        { return !c.isBottom && c.inner.IsTop() }

func (c CongruenceMInt) Modulus() number.Z { return c.inner.Modulus() }
func (c CongruenceMInt) Residue() number.Z { return c.inner.Residue() }

func (c CongruenceMInt) Singleton() (number.MachineInt, bool) {
	v, ok := c.inner.Singleton()
	if !ok {
		return number.MachineInt{}, false
	}
	return number.NewMachineInt(v, c.width, c.sign), true
}

func (c CongruenceMInt) Contains(m number.MachineInt) bool {
	if c.isBottom || m.Width() != c.width || m.Sign() != c.sign {
		return false
	}
	return c.inner.Contains(m.Value())
}

func (c CongruenceMInt) Dump() string {
	if c.isBottom {
		return "⊥"
	}
	return c.inner.Dump()
}
func (c CongruenceMInt) String() string { return c.Dump() }

func (c CongruenceMInt) Leq(other CongruenceMInt) bool {
	c.checkSameType(other)
	return c.inner.Leq(other.inner)
}
func (c CongruenceMInt) Equals(other CongruenceMInt) bool {
	return c.sameType(other) && c.inner.Equals(other.inner)
}

func (c CongruenceMInt) Join(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Join(other.inner)}
}
func (c CongruenceMInt) Meet(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Meet(other.inner)}
}
func (c CongruenceMInt) Widening(other CongruenceMInt) CongruenceMInt { return c.Join(other) }
func (c CongruenceMInt) WideningThreshold(other CongruenceMInt, _ number.Z) CongruenceMInt {
	return c.Join(other)
}
func (c CongruenceMInt) Narrowing(other CongruenceMInt) CongruenceMInt { return c.Meet(other) }
func (c CongruenceMInt) NarrowingThreshold(other CongruenceMInt, _ number.Z) CongruenceMInt {
	return c.Meet(other)
}
func (CongruenceMInt) SupportsNarrowing() bool { return false }

func (c CongruenceMInt) Neg() CongruenceMInt {
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Neg(), c.width, c.sign)}
}

// wrapInner re-clamps a CongruenceZ result's residue into the machine
// type's representable range after an arithmetic op computed it in ℤ.
func wrapInner(c CongruenceZ, width int, sign number.Sign) CongruenceZ {
	if c.isBottom {
		return c
	}
	return reduceZ(c.a, wrapResidue(c.b, width, sign))
}

func (c CongruenceMInt) Add(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Add(other.inner), c.width, c.sign)}
}
func (c CongruenceMInt) Sub(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Sub(other.inner), c.width, c.sign)}
}
func (c CongruenceMInt) Mul(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Mul(other.inner), c.width, c.sign)}
}
func (c CongruenceMInt) Div(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Div(other.inner), c.width, c.sign)}
}
func (c CongruenceMInt) Rem(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Rem(other.inner)}
}
func (c CongruenceMInt) Mod(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Mod(other.inner)}
}
func (c CongruenceMInt) Shl(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: wrapInner(c.inner.Shl(other.inner), c.width, c.sign)}
}
func (c CongruenceMInt) Shr(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Shr(other.inner)}
}
func (c CongruenceMInt) And(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.And(other.inner)}
}
func (c CongruenceMInt) Or(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Or(other.inner)}
}
func (c CongruenceMInt) Xor(other CongruenceMInt) CongruenceMInt {
	c.checkSameType(other)
	return CongruenceMInt{width: c.width, sign: c.sign, inner: c.inner.Xor(other.inner)}
}
