// Package polymorphic wraps any domain.Numeric implementer behind a
// single concrete type so a host can hold "the configured domain" as an
// ordinary value without a generic type parameter threading through the
// whole analysis. Grounded on encoding/gob-style dynamic dispatch and on
// graph.Node's pattern of structural interfaces validated at the call
// site rather than at compile time: operands are checked against the
// wrapped value's reflect.Type at each operation, matching how
// gonum/graph's WeightedEdge implementations assert their peer's
// concrete type before reading edge-local state.
package polymorphic

import (
	"fmt"
	"reflect"

	"github.com/ikos-analyzer/ikoscore/bound"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/value/congruence"
	"github.com/ikos-analyzer/ikoscore/value/interval"
	"github.com/ikos-analyzer/ikoscore/value/intervalcongruence"
	"github.com/ikos-analyzer/ikoscore/variable"
)

// Value erases the concrete type of a domain.Numeric implementer while
// still enforcing that every operand passed to it wraps the same
// underlying type.
type Value struct {
	inner domain.Numeric
	typ   reflect.Type
}

// Wrap erases d's concrete type.
func Wrap(d domain.Numeric) *Value {
	return &Value{inner: d, typ: reflect.TypeOf(d)}
}

// UnderlyingTypeName returns the name of the concrete domain.Numeric type
// wrapped by v, for diagnostics that need to name a mismatched pair of
// operands without exposing reflect.Type itself.
func (v *Value) UnderlyingTypeName() string { return v.typ.String() }

// checkType panics if other does not wrap the same concrete domain type
// as v; mixing domains inside one polymorphic value is a host bug, not a
// recoverable runtime condition.
func (v *Value) checkType(other *Value) {
	if v.typ != other.typ {
		panic(fmt.Sprintf("polymorphic: mismatched underlying domains %s and %s", v.UnderlyingTypeName(), other.UnderlyingTypeName()))
	}
}

func asValue(other domain.Numeric) *Value {
	o, ok := other.(*Value)
	if !ok {
		panic(fmt.Sprintf("polymorphic: operand %T is not a polymorphic.Value", other))
	}
	return o
}

// Unwrap returns the wrapped domain value.
func (v *Value) Unwrap() domain.Numeric { return v.inner }

func (v *Value) Clone() domain.Numeric {
	return &Value{inner: v.inner.Clone(), typ: v.typ}
}

func (v *Value) IsBottom() bool { return v.inner.IsBottom() }
func (v *Value) IsTop() bool    { return v.inner.IsTop() }

func (v *Value) Leq(other domain.Numeric) bool {
	o := asValue(other)
	v.checkType(o)
	return v.inner.Leq(o.inner)
}

func (v *Value) Equals(other domain.Numeric) bool {
	o := asValue(other)
	v.checkType(o)
	return v.inner.Equals(o.inner)
}

func (v *Value) Join(other domain.Numeric) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.Join(o.inner), typ: v.typ}
}

func (v *Value) JoinLoop(other domain.Numeric) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.JoinLoop(o.inner), typ: v.typ}
}

func (v *Value) Widening(other domain.Numeric) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.Widening(o.inner), typ: v.typ}
}

func (v *Value) WideningThreshold(other domain.Numeric, lt, ut bound.Bound[number.Z]) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.WideningThreshold(o.inner, lt, ut), typ: v.typ}
}

func (v *Value) Meet(other domain.Numeric) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.Meet(o.inner), typ: v.typ}
}

func (v *Value) Narrowing(other domain.Numeric) domain.Numeric {
	o := asValue(other)
	v.checkType(o)
	return &Value{inner: v.inner.Narrowing(o.inner), typ: v.typ}
}

func (v *Value) Assign(id variable.ID, expr linear.Expression[variable.ID]) { v.inner.Assign(id, expr) }
func (v *Value) Apply(op domain.Op, id variable.ID, left, right linear.Expression[variable.ID]) {
	v.inner.Apply(op, id, left, right)
}
func (v *Value) AddConstraint(c linear.Constraint[variable.ID]) { v.inner.AddConstraint(c) }
func (v *Value) Set(id variable.ID, iv interval.IntervalZ)      { v.inner.Set(id, iv) }
func (v *Value) Refine(id variable.ID, iv interval.IntervalZ)   { v.inner.Refine(id, iv) }
func (v *Value) Forget(id variable.ID)                          { v.inner.Forget(id) }

func (v *Value) ToInterval(id variable.ID) interval.IntervalZ { return v.inner.ToInterval(id) }
func (v *Value) ToCongruence(id variable.ID) congruence.CongruenceZ {
	return v.inner.ToCongruence(id)
}
func (v *Value) ToIntervalCongruence(id variable.ID) intervalcongruence.IntervalCongruenceZ {
	return v.inner.ToIntervalCongruence(id)
}
func (v *Value) ToLinearConstraintSystem() *linear.System[variable.ID] {
	return v.inner.ToLinearConstraintSystem()
}

func (v *Value) CounterMark(id variable.ID)   { v.inner.CounterMark(id) }
func (v *Value) CounterUnmark(id variable.ID) { v.inner.CounterUnmark(id) }
func (v *Value) CounterInit(id variable.ID, initial number.Z) {
	v.inner.CounterInit(id, initial)
}
func (v *Value) CounterIncr(id variable.ID, increment number.Z) {
	v.inner.CounterIncr(id, increment)
}
func (v *Value) CounterForget(id variable.ID) { v.inner.CounterForget(id) }

func (v *Value) Dump() string   { return v.inner.Dump() }
func (v *Value) String() string { return v.Dump() }

var _ domain.Numeric = (*Value)(nil)
