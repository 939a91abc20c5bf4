// Package number provides arbitrary-precision (Z) and fixed-width
// two's-complement (MachineInt) integer values for the abstract
// interpretation core.
//
// Z wraps math/big.Int behind a value-type API: every operation returns a
// freshly allocated result and never mutates a receiver's internal state,
// so Z can be copied and compared like any other Go value.
package number

import (
	"fmt"
	"hash/fnv"
	"math/big"
)

// Z is an arbitrary-precision signed integer.
type Z struct {
	v big.Int
}

// ZeroZ is the additive identity.
var ZeroZ = Z{}

// OneZ is the multiplicative identity.
var OneZ = FromInt64(1)

// FromInt64 builds a Z from a native integer.
func FromInt64(n int64) Z {
	var r big.Int
	r.SetInt64(n)
	return Z{v: r}
}

// FromUint64 builds a Z from a native unsigned integer.
func FromUint64(n uint64) Z {
	var r big.Int
	r.SetUint64(n)
	return Z{v: r}
}

// FromBigInt copies a math/big.Int into a Z.
func FromBigInt(n *big.Int) Z {
	var r big.Int
	r.Set(n)
	return Z{v: r}
}

// FromString parses str in the given base (2..36), reporting false on
// malformed input rather than panicking.
func FromString(str string, base int) (Z, bool) {
	var r big.Int
	_, ok := r.SetString(str, base)
	return Z{v: r}, ok
}

// BigInt returns a copy of the underlying math/big.Int.
func (z Z) BigInt() *big.Int {
	var r big.Int
	r.Set(&z.v)
	return &r
}

// String renders the decimal representation.
func (z Z) String() string { return z.v.String() }

// Sign returns -1, 0, or 1.
func (z Z) Sign() int { return z.v.Sign() }

// IsZero reports whether z is the additive identity.
func (z Z) IsZero() bool { return z.v.Sign() == 0 }

// Cmp returns -1, 0, or 1 according to whether z < other, z == other, or z > other.
func (z Z) Cmp(other Z) int { return z.v.Cmp(&other.v) }

// Equal reports structural equality.
func (z Z) Equal(other Z) bool { return z.Cmp(other) == 0 }

// Lt, Leq, Gt, Geq are convenience total-order predicates.
func (z Z) Lt(o Z) bool  { return z.Cmp(o) < 0 }
func (z Z) Leq(o Z) bool { return z.Cmp(o) <= 0 }
func (z Z) Gt(o Z) bool  { return z.Cmp(o) > 0 }
func (z Z) Geq(o Z) bool { return z.Cmp(o) >= 0 }

// Hash returns a 64-bit hash suitable for use in hash tables keyed on Z.
func (z Z) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write(z.v.Bytes())
	if z.Sign() < 0 {
		_, _ = h.Write([]byte{'-'})
	}
	return h.Sum64()
}

// Add returns z + other.
func (z Z) Add(other Z) Z {
	var r big.Int
	r.Add(&z.v, &other.v)
	return Z{v: r}
}

// Sub returns z - other.
func (z Z) Sub(other Z) Z {
	var r big.Int
	r.Sub(&z.v, &other.v)
	return Z{v: r}
}

// Mul returns z * other.
func (z Z) Mul(other Z) Z {
	var r big.Int
	r.Mul(&z.v, &other.v)
	return Z{v: r}
}

// Neg returns -z.
func (z Z) Neg() Z {
	var r big.Int
	r.Neg(&z.v)
	return Z{v: r}
}

// Abs returns |z|.
func (z Z) Abs() Z {
	var r big.Int
	r.Abs(&z.v)
	return Z{v: r}
}

// Div returns z / other, truncated toward zero. Division by zero is a
// contract violation: the caller must exclude it first.
func (z Z) Div(other Z) Z {
	if other.IsZero() {
		panic("number: division by zero")
	}
	var r big.Int
	r.Quo(&z.v, &other.v)
	return Z{v: r}
}

// Rem returns the remainder of truncated division; it has the sign of the
// dividend (z), matching math/big.Int.Rem / Go's %.
func (z Z) Rem(other Z) Z {
	if other.IsZero() {
		panic("number: division by zero")
	}
	var r big.Int
	r.Rem(&z.v, &other.v)
	return Z{v: r}
}

// Mod returns the mathematical modulo of z by other: it has the sign of
// the divisor and is always non-negative when other > 0.
func (z Z) Mod(other Z) Z {
	if other.IsZero() {
		panic("number: division by zero")
	}
	var r big.Int
	r.Mod(&z.v, &other.v)
	if other.Sign() < 0 && r.Sign() != 0 {
		r.Add(&r, &other.v)
	}
	return Z{v: r}
}

// Gcd returns the non-negative greatest common divisor of z and other.
func (z Z) Gcd(other Z) Z {
	var r big.Int
	r.GCD(nil, nil, new(big.Int).Abs(&z.v), new(big.Int).Abs(&other.v))
	return Z{v: r}
}

// ExtGCD returns (g, x, y) such that z*x + other*y == g == gcd(z, other),
// via the extended Euclidean algorithm. Grounded on
// core/include/ikos/core/value/machine_int/congruence.hpp's meet, which
// needs the Bezout coefficients to combine two congruence classes.
func (z Z) ExtGCD(other Z) (g, x, y Z) {
	var bg, bx, by big.Int
	bg.GCD(&bx, &by, &z.v, &other.v)
	return Z{v: bg}, Z{v: bx}, Z{v: by}
}

// Lcm returns the non-negative least common multiple of z and other; 0 if
// either operand is zero.
func (z Z) Lcm(other Z) Z {
	if z.IsZero() || other.IsZero() {
		return ZeroZ
	}
	g := z.Gcd(other)
	return z.Div(g).Mul(other).Abs()
}

// And, Or, Xor are bitwise operations on the two's-complement
// representation (math/big's convention: infinite sign extension).
func (z Z) And(other Z) Z {
	var r big.Int
	r.And(&z.v, &other.v)
	return Z{v: r}
}
func (z Z) Or(other Z) Z {
	var r big.Int
	r.Or(&z.v, &other.v)
	return Z{v: r}
}
func (z Z) Xor(other Z) Z {
	var r big.Int
	r.Xor(&z.v, &other.v)
	return Z{v: r}
}
func (z Z) Not() Z {
	var r big.Int
	r.Not(&z.v)
	return Z{v: r}
}

// checkShift validates a contract: the shift count must be non-negative
// and representable in an unsigned machine word.
func checkShift(n int) uint {
	if n < 0 {
		panic(fmt.Sprintf("number: negative shift count %d", n))
	}
	return uint(n)
}

// Shl returns z << n.
func (z Z) Shl(n int) Z {
	var r big.Int
	r.Lsh(&z.v, checkShift(n))
	return Z{v: r}
}

// Shr returns an arithmetic right shift z >> n.
func (z Z) Shr(n int) Z {
	var r big.Int
	r.Rsh(&z.v, checkShift(n))
	return Z{v: r}
}

// FillOnes returns the smallest value of the form 2^k - 1 that is >= z,
// for z >= 0. It is used by the interval bit-op approximations to widen
// a non-negative upper bound to an all-ones mask.
func (z Z) FillOnes() Z {
	if z.Sign() < 0 {
		panic("number: FillOnes requires a non-negative value")
	}
	if z.IsZero() {
		return ZeroZ
	}
	r := new(big.Int).Set(&z.v)
	// r |= r >> 1; r |= r >> 2; ... doubles the run of set bits each step,
	// the classic "round up to next power of two, minus one" trick.
	for shift := uint(1); shift < uint(r.BitLen())*2+1; shift *= 2 {
		shifted := new(big.Int).Rsh(r, shift)
		r.Or(r, shifted)
	}
	return Z{v: *r}
}

// BitLen returns the length in bits of the absolute value of z.
func (z Z) BitLen() int { return z.v.BitLen() }

// Int64 returns z as an int64, and whether the conversion was exact.
func (z Z) Int64() (int64, bool) {
	if !z.v.IsInt64() {
		return 0, false
	}
	return z.v.Int64(), true
}

// Uint64 returns z as a uint64, and whether the conversion was exact.
func (z Z) Uint64() (uint64, bool) {
	if !z.v.IsUint64() {
		return 0, false
	}
	return z.v.Uint64(), true
}

// Min and Max return the lesser/greater of two Z values.
func Min(a, b Z) Z {
	if a.Leq(b) {
		return a
	}
	return b
}
func Max(a, b Z) Z {
	if a.Geq(b) {
		return a
	}
	return b
}
