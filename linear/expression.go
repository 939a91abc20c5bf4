// Package linear implements linear expressions and constraints over
// arbitrary-precision integers, parametric in the variable type V.
// Grounded on mat/vector.go's sparse coefficient storage idiom (a
// map keyed on index, zero entries never stored) and on
// graph/internal/set for the variable-support bookkeeping.
package linear

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ikos-analyzer/ikoscore/number"
)

// Expression is constant + sum of coeff*v, in canonical form: no term
// carries a zero coefficient.
type Expression[V comparable] struct {
	constant number.Z
	terms    map[V]number.Z
}

// Zero is the expression 0.
func Zero[V comparable]() Expression[V] {
	return Expression[V]{constant: number.ZeroZ, terms: map[V]number.Z{}}
}

// Const builds the constant expression c.
func Const[V comparable](c number.Z) Expression[V] {
	return Expression[V]{constant: c, terms: map[V]number.Z{}}
}

// Var builds the single-variable expression v (coefficient 1).
func Var[V comparable](v V) Expression[V] {
	return Term(number.OneZ, v)
}

// Term builds coeff*v; a zero coefficient yields the zero expression.
func Term[V comparable](coeff number.Z, v V) Expression[V] {
	e := Zero[V]()
	if !coeff.IsZero() {
		e.terms[v] = coeff
	}
	return e
}

func cloneTerms[V comparable](terms map[V]number.Z) map[V]number.Z {
	out := make(map[V]number.Z, len(terms))
	for v, c := range terms {
		out[v] = c
	}
	return out
}

// Constant returns the expression's constant term.
func (e Expression[V]) Constant() number.Z { return e.constant }

// Coefficient returns the coefficient of v, 0 if v does not appear.
func (e Expression[V]) Coefficient(v V) number.Z {
	if c, ok := e.terms[v]; ok {
		return c
	}
	return number.ZeroZ
}

// IsConstant reports whether e carries no variable terms.
func (e Expression[V]) IsConstant() bool { return len(e.terms) == 0 }

// NumTerms reports the number of variables with a nonzero coefficient.
func (e Expression[V]) NumTerms() int { return len(e.terms) }

// Variables returns every variable with a nonzero coefficient.
func (e Expression[V]) Variables() []V {
	vs := make([]V, 0, len(e.terms))
	for v := range e.terms {
		vs = append(vs, v)
	}
	return vs
}

// Range iterates every (variable, coefficient) pair.
func (e Expression[V]) Range(f func(v V, coeff number.Z)) {
	for v, c := range e.terms {
		f(v, c)
	}
}

// Neg returns -e.
func (e Expression[V]) Neg() Expression[V] {
	out := Expression[V]{constant: e.constant.Neg(), terms: make(map[V]number.Z, len(e.terms))}
	for v, c := range e.terms {
		out.terms[v] = c.Neg()
	}
	return out
}

// ScalarMul returns k*e; k == 0 collapses e to the zero expression.
func (e Expression[V]) ScalarMul(k number.Z) Expression[V] {
	if k.IsZero() {
		return Zero[V]()
	}
	out := Expression[V]{constant: e.constant.Mul(k), terms: make(map[V]number.Z, len(e.terms))}
	for v, c := range e.terms {
		out.terms[v] = c.Mul(k)
	}
	return out
}

// Add returns e + other.
func (e Expression[V]) Add(other Expression[V]) Expression[V] {
	out := Expression[V]{constant: e.constant.Add(other.constant), terms: cloneTerms(e.terms)}
	for v, c := range other.terms {
		sum := out.terms[v].Add(c)
		if sum.IsZero() {
			delete(out.terms, v)
		} else {
			out.terms[v] = sum
		}
	}
	return out
}

// Sub returns e - other.
func (e Expression[V]) Sub(other Expression[V]) Expression[V] { return e.Add(other.Neg()) }

// AddTerm returns e + coeff*v.
func (e Expression[V]) AddTerm(coeff number.Z, v V) Expression[V] {
	return e.Add(Term(coeff, v))
}

// Substitute replaces every occurrence of v in e by the expression repl:
// e[v -> repl] = (e with v's term dropped) + coeff(v)*repl.
func (e Expression[V]) Substitute(v V, repl Expression[V]) Expression[V] {
	coeff, ok := e.terms[v]
	if !ok {
		return e
	}
	stripped := Expression[V]{constant: e.constant, terms: cloneTerms(e.terms)}
	delete(stripped.terms, v)
	return stripped.Add(repl.ScalarMul(coeff))
}

// Equals reports structural equality: same constant and same coefficients
// for every variable that appears in either expression.
func (e Expression[V]) Equals(other Expression[V]) bool {
	if !e.constant.Equal(other.constant) || len(e.terms) != len(other.terms) {
		return false
	}
	for v, c := range e.terms {
		oc, ok := other.terms[v]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	return true
}

// Dump renders e as "2x + 3y - 1", sorting variables by their %v text for
// a deterministic order.
func (e Expression[V]) Dump() string {
	type pair struct {
		v V
		c number.Z
	}
	pairs := make([]pair, 0, len(e.terms))
	for v, c := range e.terms {
		pairs = append(pairs, pair{v, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return fmt.Sprintf("%v", pairs[i].v) < fmt.Sprintf("%v", pairs[j].v)
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%v*%v", p.c, p.v)
	}
	if !e.constant.IsZero() || b.Len() == 0 {
		if b.Len() > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%v", e.constant)
	}
	return b.String()
}
func (e Expression[V]) String() string { return e.Dump() }
