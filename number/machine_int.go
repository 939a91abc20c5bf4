package number

import (
	"fmt"
	"math/big"
)

// Sign tags the two's-complement interpretation of a MachineInt.
type Sign uint8

const (
	Unsigned Sign = iota
	Signed
)

func (s Sign) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// MachineInt is a fixed-width two's-complement integer tagged with a bit
// width (1..1024) and a signedness. The stored value is always reduced
// into its canonical signed/unsigned range.
type MachineInt struct {
	v     Z
	width int
	sign  Sign
}

// MaxWidth is the largest supported bit width.
const MaxWidth = 1024

func checkWidth(w int) {
	if w < 1 || w > MaxWidth {
		panic(fmt.Sprintf("number: invalid machine integer width %d", w))
	}
}

// powerOfTwo returns 2^n as a Z.
func powerOfTwo(n int) Z {
	var r big.Int
	r.Lsh(big.NewInt(1), uint(n))
	return Z{v: r}
}

// wrapBits reduces an arbitrary Z into the canonical representative of
// (width, sign): first into the unsigned range [0, 2^width), then, if
// signed, into [-2^(width-1), 2^(width-1) - 1].
func wrapBits(raw Z, width int, sign Sign) Z {
	mod := powerOfTwo(width)
	u := raw.Mod(mod) // always in [0, mod)
	if sign == Unsigned {
		return u
	}
	half := powerOfTwo(width - 1)
	if u.Geq(half) {
		return u.Sub(mod)
	}
	return u
}

// NewMachineInt builds a MachineInt from an arbitrary-precision value,
// wrapping it modulo 2^width per the (width, sign) tag.
func NewMachineInt(v Z, width int, sign Sign) MachineInt {
	checkWidth(width)
	return MachineInt{v: wrapBits(v, width, sign), width: width, sign: sign}
}

// MachineIntFromInt64 is a convenience constructor.
func MachineIntFromInt64(n int64, width int, sign Sign) MachineInt {
	return NewMachineInt(FromInt64(n), width, sign)
}

// Width reports the bit width.
func (m MachineInt) Width() int { return m.width }

// Sign reports the signedness tag.
func (m MachineInt) Sign() Sign { return m.sign }

// Value returns the canonical arbitrary-precision representative.
func (m MachineInt) Value() Z { return m.v }

// IsSigned and IsUnsigned are convenience predicates.
func (m MachineInt) IsSigned() bool   { return m.sign == Signed }
func (m MachineInt) IsUnsigned() bool { return m.sign == Unsigned }

// CompatibleWith reports whether m and other share (width, sign) and may
// therefore participate in the same binary operation.
func (m MachineInt) CompatibleWith(other MachineInt) bool {
	return m.width == other.width && m.sign == other.sign
}

func (m MachineInt) checkCompatible(other MachineInt) {
	if !m.CompatibleWith(other) {
		panic(fmt.Sprintf("number: incompatible machine integers: %d-bit %s vs %d-bit %s",
			m.width, m.sign, other.width, other.sign))
	}
}

// MinValue and MaxValue return the representable bounds of m's type.
func (m MachineInt) MinValue() Z {
	if m.sign == Unsigned {
		return ZeroZ
	}
	return powerOfTwo(m.width - 1).Neg()
}
func (m MachineInt) MaxValue() Z {
	if m.sign == Unsigned {
		return powerOfTwo(m.width).Sub(OneZ)
	}
	return powerOfTwo(m.width - 1).Sub(OneZ)
}

// Min and MaxOf return the top/bottom MachineInt of m's (width, sign) type.
func (m MachineInt) MinOf() MachineInt { return NewMachineInt(m.MinValue(), m.width, m.sign) }
func (m MachineInt) MaxOf() MachineInt { return NewMachineInt(m.MaxValue(), m.width, m.sign) }

func (m MachineInt) String() string {
	return fmt.Sprintf("%s:i%d%s", m.v.String(), m.width, map[Sign]string{Signed: "s", Unsigned: "u"}[m.sign])
}

// Cmp orders m and other according to their shared (width, sign)
// interpretation. Panics if incompatible.
func (m MachineInt) Cmp(other MachineInt) int {
	m.checkCompatible(other)
	return m.v.Cmp(other.v)
}
func (m MachineInt) Equal(other MachineInt) bool {
	return m.CompatibleWith(other) && m.v.Equal(other.v)
}

// wrapResult re-wraps a raw (possibly out-of-range) Z into m's type and
// reports whether wrapping changed the value (i.e. overflow occurred).
func (m MachineInt) wrapResult(raw Z) (MachineInt, bool) {
	wrapped := wrapBits(raw, m.width, m.sign)
	return MachineInt{v: wrapped, width: m.width, sign: m.sign}, !wrapped.Equal(raw)
}

// Add, Sub, Mul wrap silently on overflow.
func (m MachineInt) Add(other MachineInt) MachineInt {
	m.checkCompatible(other)
	r, _ := m.wrapResult(m.v.Add(other.v))
	return r
}
func (m MachineInt) Sub(other MachineInt) MachineInt {
	m.checkCompatible(other)
	r, _ := m.wrapResult(m.v.Sub(other.v))
	return r
}
func (m MachineInt) Mul(other MachineInt) MachineInt {
	m.checkCompatible(other)
	r, _ := m.wrapResult(m.v.Mul(other.v))
	return r
}

// AddOverflow, SubOverflow, MulOverflow additionally report whether the
// unwrapped result did not fit the type.
func (m MachineInt) AddOverflow(other MachineInt) (MachineInt, bool) {
	m.checkCompatible(other)
	return m.wrapResult(m.v.Add(other.v))
}
func (m MachineInt) SubOverflow(other MachineInt) (MachineInt, bool) {
	m.checkCompatible(other)
	return m.wrapResult(m.v.Sub(other.v))
}
func (m MachineInt) MulOverflow(other MachineInt) (MachineInt, bool) {
	m.checkCompatible(other)
	return m.wrapResult(m.v.Mul(other.v))
}

// Div performs truncating division. Division by zero is a contract
// violation: the caller must exclude it first.
func (m MachineInt) Div(other MachineInt) MachineInt {
	m.checkCompatible(other)
	if other.v.IsZero() {
		panic("number: machine integer division by zero")
	}
	r, _ := m.wrapResult(m.v.Div(other.v))
	return r
}

// Rem returns the remainder of truncating division; sign of the dividend.
func (m MachineInt) Rem(other MachineInt) MachineInt {
	m.checkCompatible(other)
	if other.v.IsZero() {
		panic("number: machine integer division by zero")
	}
	r, _ := m.wrapResult(m.v.Rem(other.v))
	return r
}

// Neg returns the wrapped negation (the minimum signed value negates to
// itself, which is the textbook two's-complement overflow case).
func (m MachineInt) Neg() MachineInt {
	r, _ := m.wrapResult(m.v.Neg())
	return r
}

// unsignedBits returns the raw bit pattern as a non-negative Z in
// [0, 2^width), used by the bitwise and shift operators which act on bit
// patterns rather than signed magnitudes.
func (m MachineInt) unsignedBits() Z {
	if m.sign == Unsigned {
		return m.v
	}
	if m.v.Sign() < 0 {
		return m.v.Add(powerOfTwo(m.width))
	}
	return m.v
}

func (m MachineInt) fromUnsignedBits(bits Z) MachineInt {
	return NewMachineInt(bits, m.width, m.sign)
}

// And, Or, Xor operate on the two's-complement bit pattern.
func (m MachineInt) And(other MachineInt) MachineInt {
	m.checkCompatible(other)
	return m.fromUnsignedBits(m.unsignedBits().And(other.unsignedBits()))
}
func (m MachineInt) Or(other MachineInt) MachineInt {
	m.checkCompatible(other)
	return m.fromUnsignedBits(m.unsignedBits().Or(other.unsignedBits()))
}
func (m MachineInt) Xor(other MachineInt) MachineInt {
	m.checkCompatible(other)
	return m.fromUnsignedBits(m.unsignedBits().Xor(other.unsignedBits()))
}
func (m MachineInt) Not() MachineInt {
	mask := powerOfTwo(m.width).Sub(OneZ)
	return m.fromUnsignedBits(m.unsignedBits().Xor(mask))
}

func (m MachineInt) checkShiftAmount(n MachineInt) uint {
	amt, ok := n.unsignedBits().Uint64()
	if !ok || amt >= uint64(m.width) {
		panic(fmt.Sprintf("number: shift amount out of range [0, %d)", m.width))
	}
	return uint(amt)
}

// Shl shifts left, discarding bits that fall off the top and wrapping.
func (m MachineInt) Shl(n MachineInt) MachineInt {
	amt := m.checkShiftAmount(n)
	return m.fromUnsignedBits(m.unsignedBits().Shl(int(amt)))
}

// Shr shifts right: logical for unsigned, arithmetic for signed.
func (m MachineInt) Shr(n MachineInt) MachineInt {
	amt := m.checkShiftAmount(n)
	if m.sign == Unsigned {
		return m.fromUnsignedBits(m.unsignedBits().Shr(int(amt)))
	}
	// Arithmetic shift: big.Int.Rsh already performs two's-complement
	// (floor-based) right shift on signed values, which matches the
	// sign-extending hardware semantics.
	r, _ := m.wrapResult(m.v.Shr(int(amt)))
	return r
}

// Trunc keeps the low w' bits of m, w' < m.Width(), same sign.
func (m MachineInt) Trunc(w int) MachineInt {
	if w >= m.width {
		panic("number: Trunc requires a narrower width")
	}
	checkWidth(w)
	return NewMachineInt(m.unsignedBits(), w, m.sign)
}

// Ext widens m to w bits, w > m.Width(): zero-extends if unsigned,
// sign-extends if signed. Sign tag is preserved.
func (m MachineInt) Ext(w int) MachineInt {
	if w <= m.width {
		panic("number: Ext requires a wider width")
	}
	checkWidth(w)
	return NewMachineInt(m.v, w, m.sign)
}

// SignCast reinterprets m's bit pattern under a new sign at the same
// width.
func (m MachineInt) SignCast(s Sign) MachineInt {
	return NewMachineInt(m.unsignedBits(), m.width, s)
}

// Cast composes Trunc/Ext (against m's current sign) with SignCast to
// reinterpret m at a new (width, sign).
func (m MachineInt) Cast(w int, s Sign) MachineInt {
	checkWidth(w)
	var widthAdjusted MachineInt
	switch {
	case w < m.width:
		widthAdjusted = m.Trunc(w)
	case w > m.width:
		widthAdjusted = m.Ext(w)
	default:
		widthAdjusted = m
	}
	return widthAdjusted.SignCast(s)
}
