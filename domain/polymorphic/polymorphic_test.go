package polymorphic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ikos-analyzer/ikoscore/domain/dbm"
	"github.com/ikos-analyzer/ikoscore/domain/intervalstore"
	"github.com/ikos-analyzer/ikoscore/linear"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/variable"
)

func TestWrapUnwrapRoundTrips(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")
	inner := intervalstore.Top()
	inner.Assign(x, linear.Const[variable.ID](number.FromInt64(5)))

	v := Wrap(inner)
	if v.Unwrap() != inner {
		t.Error("Unwrap() did not return the exact wrapped value")
	}
	n, ok := v.ToInterval(x).Singleton()
	if !ok || n.Cmp(number.FromInt64(5)) != 0 {
		t.Errorf("ToInterval(x) through the wrapper = %v, want singleton 5", v.ToInterval(x))
	}
}

func TestJoinDispatchesToWrappedDomain(t *testing.T) {
	pool := variable.NewPool()
	x := pool.NewVariable("x")

	mk := func(n int64) *Value {
		d := intervalstore.Top()
		d.Assign(x, linear.Const[variable.ID](number.FromInt64(n)))
		return Wrap(d)
	}

	joined := mk(1).Join(mk(5)).(*Value)
	iv := joined.ToInterval(x)
	lo, hi := iv.LowerBound(), iv.UpperBound()
	if !lo.IsFinite() || !hi.IsFinite() || lo.Value().Cmp(number.OneZ) != 0 || hi.Value().Cmp(number.FromInt64(5)) != 0 {
		t.Errorf("Join(1,5) = %v, want [1,5]", iv)
	}
}

// TestMismatchedConcreteDomainsPanics confirms the contract checkType
// exists to enforce: a polymorphic.Value wrapping one concrete domain
// must never be combined with one wrapping another, since doing so would
// silently corrupt state rather than produce a meaningful lattice result.
func TestMismatchedConcreteDomainsPanics(t *testing.T) {
	a := Wrap(intervalstore.Top())
	b := Wrap(dbm.Top())

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Join across mismatched concrete domains did not panic")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, a.UnderlyingTypeName()) || !strings.Contains(msg, b.UnderlyingTypeName()) {
			t.Errorf("panic message %q does not name both concrete types (%s, %s)", msg, a.UnderlyingTypeName(), b.UnderlyingTypeName())
		}
	}()

	a.Join(b)
}

// TestUnderlyingTypeName checks the accessor names distinct concrete
// domains differently, matching the reflect.Type it wraps.
func TestUnderlyingTypeName(t *testing.T) {
	a := Wrap(intervalstore.Top())
	b := Wrap(dbm.Top())
	if a.UnderlyingTypeName() == b.UnderlyingTypeName() {
		t.Errorf("UnderlyingTypeName() = %q for both intervalstore and dbm, want distinct names", a.UnderlyingTypeName())
	}
	if a.UnderlyingTypeName() != a.Clone().(*Value).UnderlyingTypeName() {
		t.Error("UnderlyingTypeName() changed across Clone()")
	}
}

// TestOperandNotPolymorphicValuePanics confirms asValue's own contract:
// a domain.Numeric operand that isn't itself a *polymorphic.Value is
// rejected the same way, rather than silently unwrapped as something
// it's not.
func TestOperandNotPolymorphicValuePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Leq against a bare (unwrapped) domain.Numeric did not panic")
		}
	}()

	a := Wrap(intervalstore.Top())
	a.Leq(intervalstore.Top())
}

func TestIsBottomAndIsTopDelegate(t *testing.T) {
	bot := Wrap(intervalstore.Bottom())
	top := Wrap(intervalstore.Top())
	if !bot.IsBottom() {
		t.Error("wrapped Bottom().IsBottom() = false, want true")
	}
	if !top.IsTop() {
		t.Error("wrapped Top().IsTop() = false, want true")
	}
}
