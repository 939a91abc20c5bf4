// Package analysis is the host-facing driver: it wires a cfggraph.Graph
// and a chosen domain.Numeric through wpo.Build and a fixpoint.Iterator
// for each function a host wants analyzed, and carries the handful of
// whole-program policy knobs (which machine-integer precision untyped
// constants get, how globals are initialized, how precisely memory is
// modeled) that sit above a single function's fixpoint computation.
// Grounded on optimize.Settings: a struct of documented zero values, no
// config file, no environment variables, consulted once per run rather
// than polled.
package analysis

import (
	"fmt"

	"github.com/ikos-analyzer/ikoscore/cfggraph"
	"github.com/ikos-analyzer/ikoscore/domain"
	"github.com/ikos-analyzer/ikoscore/fixpoint"
	"github.com/ikos-analyzer/ikoscore/number"
	"github.com/ikos-analyzer/ikoscore/wpo"
)

// MemoryPrecision is an advisory hint about how precisely the host's
// AnalyzeNode models memory (arrays, structs, pointers); the core has no
// memory domain of its own (Non-goal), so this value is never
// interpreted here — it is only threaded through Options so a host
// callback can branch on it without a second side channel.
type MemoryPrecision int

const (
	// MemoryIgnored treats every load/store as an unconstrained havoc of
	// the written location's numerical value.
	MemoryIgnored MemoryPrecision = iota
	// MemoryFieldInsensitive tracks one abstract value per base object,
	// collapsing all of its fields/elements together.
	MemoryFieldInsensitive
	// MemoryFieldSensitive tracks one abstract value per (object, field)
	// pair.
	MemoryFieldSensitive
)

func (p MemoryPrecision) String() string {
	switch p {
	case MemoryIgnored:
		return "ignored"
	case MemoryFieldInsensitive:
		return "field-insensitive"
	case MemoryFieldSensitive:
		return "field-sensitive"
	default:
		return fmt.Sprintf("MemoryPrecision(%d)", int(p))
	}
}

// Options configures an analysis run. Fixpoint is embedded rather than
// duplicated: every per-component hook (AnalyzeNode, widening strategy,
// iteration caps, cancellation) lives there, the same way optimize.Local
// takes a Method plus a Settings instead of flattening the Method's own
// configuration into Settings.
type Options[N comparable] struct {
	Fixpoint fixpoint.Options[N]

	// Globals runs once, before any Target, to fold global-variable
	// initializers into the state that flows into every target's entry
	// node. Optional; defaults to the identity (no globals modeled).
	Globals func(initial domain.Numeric) domain.Numeric

	// MachineIntWidth and MachineIntSign give the default fixed-width
	// integer type AnalyzeNode should assume for a variable whose source
	// type the host has not already resolved. Zero width is invalid and
	// rejected by Run; MachineIntSign's zero value is number.Unsigned, so
	// a host analyzing a language with signed-by-default int types must
	// set this explicitly rather than relying on the zero value.
	MachineIntWidth int
	MachineIntSign  number.Sign

	// MemoryPrecision is forwarded to AnalyzeNode/AnalyzeEdge via the
	// closure the host builds Options.Fixpoint from; the driver itself
	// never branches on it.
	MemoryPrecision MemoryPrecision
}

func (o *Options[N]) validate() error {
	if o.Fixpoint.AnalyzeNode == nil {
		return fmt.Errorf("analysis: Options.Fixpoint.AnalyzeNode is required")
	}
	if o.Fixpoint.Bottom == nil {
		return fmt.Errorf("analysis: Options.Fixpoint.Bottom is required")
	}
	if o.MachineIntWidth <= 0 {
		return fmt.Errorf("analysis: Options.MachineIntWidth must be positive, got %d", o.MachineIntWidth)
	}
	if o.MachineIntWidth > number.MaxWidth {
		return fmt.Errorf("analysis: Options.MachineIntWidth %d exceeds number.MaxWidth %d", o.MachineIntWidth, number.MaxWidth)
	}
	return nil
}

func (o *Options[N]) globals(initial domain.Numeric) domain.Numeric {
	if o.Globals == nil {
		return initial
	}
	return o.Globals(initial)
}

// Target is a single function (or other independently-enterable unit) to
// analyze: its control-flow graph plus a name used only for Report and
// error messages.
type Target[N comparable] struct {
	Name  string
	Graph cfggraph.Graph[N]
}

// Report is the result of analyzing one Target: the built WPO and the
// Iterator that ran over it, from which a host reads per-node
// invariants via In/Out.
type Report[N comparable] struct {
	Name     string
	Wpo      *wpo.Wpo[N]
	Iterator *fixpoint.Iterator[N]
}

// Run analyzes every target in order, threading the state produced by
// Options.Globals into each one's entry node. Targets are independent
// (no state flows from one target's Report into the next beyond the
// shared globals-initialized value), so the order only matters for
// Report ordering and for which target's error, if any, is reported
// first.
func Run[N comparable](targets []Target[N], initial domain.Numeric, opts Options[N]) ([]Report[N], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	entry := opts.globals(initial)

	reports := make([]Report[N], 0, len(targets))
	for _, tgt := range targets {
		w := wpo.Build[N](tgt.Graph)
		it := fixpoint.NewIterator[N](w, opts.Fixpoint)
		if err := it.Run(entry.Clone()); err != nil {
			return reports, fmt.Errorf("analysis: target %q: %w", tgt.Name, err)
		}
		reports = append(reports, Report[N]{Name: tgt.Name, Wpo: w, Iterator: it})
	}
	return reports, nil
}
