// Package numeric declares the minimal arithmetic contract shared by the
// number representations (number.Z, number.MachineInt) so that bound.Bound
// and the scalar lattices can be written once against either.
package numeric

// Numeric is satisfied by any value type that supports the operations
// Bound[N] needs to form a total order with absorbing infinities. T is
// the concrete implementing type itself (the usual "curiously recurring"
// generic constraint), so number.Z implements Numeric[number.Z] and
// number.MachineInt implements Numeric[number.MachineInt].
type Numeric[T any] interface {
	Add(T) T
	Sub(T) T
	Neg() T
	Cmp(T) int
}
