// Package variable provides the handle type abstract domains index their
// state by. Grounded on gonum's uid-backed node allocator
// (graph/simple.DirectedGraph issues int64 node IDs from an append-only
// table) and on graph/internal/set.Int64s for the companion set type.
package variable

import (
	"fmt"
	"sort"
)

// ID is a variable handle: an index into the Pool that issued it. Two IDs
// from different Pools that happen to share a numeric value are not the
// same variable — callers are expected to thread a single Pool through an
// analysis, not compare IDs across pools.
type ID int64

func (id ID) String() string { return fmt.Sprintf("v%d", int64(id)) }

// Pool is an append-only table mapping variable handles to host-supplied
// names. The host constructs and owns a Pool explicitly and threads it
// through the components that need to print variable handles; there is
// no implicit process-wide global, so multiple analyses can run with
// independent variable universes.
type Pool struct {
	names []string
}

// NewPool returns an empty pool.
func NewPool() *Pool { return &Pool{} }

// NewVariable issues a fresh ID for name and returns it.
func (p *Pool) NewVariable(name string) ID {
	id := ID(len(p.names))
	p.names = append(p.names, name)
	return id
}

// Name returns the name id was issued under. Panics if id was not issued
// by this pool.
func (p *Pool) Name(id ID) string {
	if id < 0 || int(id) >= len(p.names) {
		panic(fmt.Sprintf("variable: id %v not issued by this pool", id))
	}
	return p.names[id]
}

// Len reports how many variables this pool has issued.
func (p *Pool) Len() int { return len(p.names) }

// Set is a lightweight map-backed set of variable handles.
type Set map[ID]struct{}

// NewSet builds a Set from the given IDs.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Add(id ID)           { s[id] = struct{}{} }
func (s Set) Remove(id ID)        { delete(s, id) }
func (s Set) Contains(id ID) bool { _, ok := s[id]; return ok }
func (s Set) Len() int            { return len(s) }

// Union returns a new set containing every ID in s or other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set containing every ID in both s and other.
func (s Set) Intersect(other Set) Set {
	small, big := s, other
	if len(other) < len(s) {
		small, big = other, s
	}
	out := make(Set, len(small))
	for id := range small {
		if _, ok := big[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Slice returns the set's elements in ascending order, for deterministic
// iteration (dumps, tests).
func (s Set) Slice() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
