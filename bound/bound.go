// Package bound implements extended bounds over a numeric type N: values
// are either -infinity, +infinity, or a finite N, totally ordered with
// the infinities absorbing. Grounded on gonum's `bound` package name and
// the pairwise min/max idiom of `floats`.
package bound

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/numeric"
)

type kind uint8

const (
	finite kind = iota
	negInf
	posInf
)

// Bound is -infinity, +infinity, or a finite N.
type Bound[N numeric.Numeric[N]] struct {
	k   kind
	val N // meaningful only when k == finite
}

// Finite wraps a finite value.
func Finite[N numeric.Numeric[N]](n N) Bound[N] { return Bound[N]{k: finite, val: n} }

// NegInf returns the -infinity bound.
func NegInf[N numeric.Numeric[N]]() Bound[N] { return Bound[N]{k: negInf} }

// PosInf returns the +infinity bound.
func PosInf[N numeric.Numeric[N]]() Bound[N] { return Bound[N]{k: posInf} }

// IsFinite, IsNegInf, IsPosInf, IsInfinite report the bound's kind.
func (b Bound[N]) IsFinite() bool   { return b.k == finite }
func (b Bound[N]) IsNegInf() bool   { return b.k == negInf }
func (b Bound[N]) IsPosInf() bool   { return b.k == posInf }
func (b Bound[N]) IsInfinite() bool { return b.k != finite }

// Value returns the finite value. It panics if the bound is infinite.
func (b Bound[N]) Value() N {
	if b.k != finite {
		panic("bound: Value() called on an infinite bound")
	}
	return b.val
}

// ValueOr returns the finite value, or fallback if b is infinite.
func (b Bound[N]) ValueOr(fallback N) N {
	if b.k != finite {
		return fallback
	}
	return b.val
}

func (b Bound[N]) String() string {
	switch b.k {
	case negInf:
		return "-oo"
	case posInf:
		return "+oo"
	default:
		return fmt.Sprintf("%v", b.val)
	}
}

// Cmp orders a and b: -infinity < every finite value < +infinity.
func (a Bound[N]) Cmp(b Bound[N]) int {
	if a.k == b.k {
		if a.k != finite {
			return 0
		}
		return a.val.Cmp(b.val)
	}
	rank := func(k kind) int {
		switch k {
		case negInf:
			return -1
		case posInf:
			return 1
		default:
			return 0
		}
	}
	ra, rb := rank(a.k), rank(b.k)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		// Both finite but compared via kind rank tie: fall through to
		// value comparison (only reachable when a.k == b.k == finite,
		// already handled above; kept for completeness).
		return a.val.Cmp(b.val)
	}
}

func (a Bound[N]) Lt(b Bound[N]) bool  { return a.Cmp(b) < 0 }
func (a Bound[N]) Leq(b Bound[N]) bool { return a.Cmp(b) <= 0 }
func (a Bound[N]) Gt(b Bound[N]) bool  { return a.Cmp(b) > 0 }
func (a Bound[N]) Geq(b Bound[N]) bool { return a.Cmp(b) >= 0 }
func (a Bound[N]) Equal(b Bound[N]) bool { return a.Cmp(b) == 0 }

// Neg returns the additive inverse: -(-infinity) = +infinity and vice
// versa.
func (a Bound[N]) Neg() Bound[N] {
	switch a.k {
	case negInf:
		return Bound[N]{k: posInf}
	case posInf:
		return Bound[N]{k: negInf}
	default:
		return Bound[N]{k: finite, val: a.val.Neg()}
	}
}

// Add sums two bounds. Adding opposite infinities is a contract
// violation: the caller must avoid it, so this panics rather than
// silently normalizing.
func (a Bound[N]) Add(b Bound[N]) Bound[N] {
	if a.k == finite && b.k == finite {
		return Bound[N]{k: finite, val: a.val.Add(b.val)}
	}
	if (a.k == negInf && b.k == posInf) || (a.k == posInf && b.k == negInf) {
		panic("bound: -infinity + +infinity is undefined")
	}
	if a.k != finite {
		return Bound[N]{k: a.k}
	}
	return Bound[N]{k: b.k}
}

// Sub is Add(b.Neg()).
func (a Bound[N]) Sub(b Bound[N]) Bound[N] { return a.Add(b.Neg()) }

// Min and Max return the lesser/greater of two bounds.
func Min[N numeric.Numeric[N]](a, b Bound[N]) Bound[N] {
	if a.Leq(b) {
		return a
	}
	return b
}
func Max[N numeric.Numeric[N]](a, b Bound[N]) Bound[N] {
	if a.Geq(b) {
		return a
	}
	return b
}
