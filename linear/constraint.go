package linear

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/number"
)

// Kind is the relational operator of a Constraint.
type Kind uint8

const (
	Equal Kind = iota
	NotEqual
	LessEqual
	LessThan
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case LessEqual:
		return "<="
	case LessThan:
		return "<"
	default:
		return "?"
	}
}

// Constraint is expr <kind> 0, e.g. "2x + y - 3 <= 0".
type Constraint[V comparable] struct {
	expr Expression[V]
	kind Kind
}

// Make builds the constraint expr <kind> 0.
func Make[V comparable](expr Expression[V], kind Kind) Constraint[V] {
	return Constraint[V]{expr: expr, kind: kind}
}

func (c Constraint[V]) Expression() Expression[V] { return c.expr }
func (c Constraint[V]) Kind() Kind                { return c.kind }

// Tautology returns the always-true constraint 0 = 0.
func Tautology[V comparable]() Constraint[V] { return Make(Zero[V](), Equal) }

// Contradiction returns the always-false constraint 1 = 0.
func Contradiction[V comparable]() Constraint[V] {
	return Make(Const[V](number.OneZ), Equal)
}

// evalConstant reports whether a constant value satisfies kind relative to
// zero.
func evalConstant(c number.Z, kind Kind) bool {
	switch kind {
	case Equal:
		return c.IsZero()
	case NotEqual:
		return !c.IsZero()
	case LessEqual:
		return c.Sign() <= 0
	case LessThan:
		return c.Sign() < 0
	default:
		panic(fmt.Sprintf("linear: unknown constraint kind %v", kind))
	}
}

// IsTautology reports whether c is constant and always true.
func (c Constraint[V]) IsTautology() bool {
	return c.expr.IsConstant() && evalConstant(c.expr.Constant(), c.kind)
}

// IsContradiction reports whether c is constant and always false.
func (c Constraint[V]) IsContradiction() bool {
	return c.expr.IsConstant() && !evalConstant(c.expr.Constant(), c.kind)
}

func (c Constraint[V]) Dump() string {
	return fmt.Sprintf("%v %v 0", c.expr.Dump(), c.kind)
}
func (c Constraint[V]) String() string { return c.Dump() }

// System is an ordered sequence of constraints with a single absorbing
// bottom state: adding a contradiction collapses the whole system.
// Tautologies are dropped on add, contributing nothing.
type System[V comparable] struct {
	isBottom    bool
	constraints []Constraint[V]
}

// NewSystem returns the empty (vacuously true) system.
func NewSystem[V comparable]() *System[V] { return &System[V]{} }

func (s *System[V]) IsBottom() bool { return s.isBottom }

// Constraints returns the accumulated non-tautological constraints, or
// nil once the system is bottom.
func (s *System[V]) Constraints() []Constraint[V] {
	if s.isBottom {
		return nil
	}
	return s.constraints
}

// Add appends c, collapsing the system to bottom if c is a contradiction
// and skipping c entirely if it is a tautology.
func (s *System[V]) Add(c Constraint[V]) {
	if s.isBottom {
		return
	}
	if c.IsContradiction() {
		s.isBottom = true
		s.constraints = nil
		return
	}
	if c.IsTautology() {
		return
	}
	s.constraints = append(s.constraints, c)
}

func (s *System[V]) Dump() string {
	if s.isBottom {
		return "⊥"
	}
	if len(s.constraints) == 0 {
		return "⊤"
	}
	out := ""
	for i, c := range s.constraints {
		if i > 0 {
			out += " ∧ "
		}
		out += c.Dump()
	}
	return out
}
func (s *System[V]) String() string { return s.Dump() }
