// Package strategy provides hole placement strategies for the allocator.
//
// A Strategy inspects a snapshot of the current hole ledger and selects the
// hole an allocation should be carved from. Strategies never see live
// allocator state: the snapshot is a copy, so a strategy can only choose a
// position, never mutate bookkeeping. That makes swapping strategies on a
// live allocator always safe.
package strategy

import "github.com/hupe1980/memgo/extent"

// Strategy selects the hole a request of the given word count should be
// placed in. It returns the chosen hole's word offset, or false if no hole
// is large enough.
//
// Implementations must be pure over the snapshot: no retained references,
// no side effects.
type Strategy interface {
	// Name returns a stable, human-readable strategy name.
	Name() string

	// Choose picks a hole for words from the snapshot.
	Choose(words int, holes []extent.Extent) (int, bool)
}

// Func adapts a plain function to the Strategy interface.
type Func struct {
	// FuncName is reported by Name. Empty defaults to "custom".
	FuncName string

	// ChooseFunc implements the placement decision.
	ChooseFunc func(words int, holes []extent.Extent) (int, bool)
}

// Name implements Strategy.
func (f Func) Name() string {
	if f.FuncName == "" {
		return "custom"
	}
	return f.FuncName
}

// Choose implements Strategy.
func (f Func) Choose(words int, holes []extent.Extent) (int, bool) {
	return f.ChooseFunc(words, holes)
}

// BestFit selects the smallest hole that satisfies the request. Ties go to
// the lowest offset, since the scan keeps the first minimal hole it finds.
var BestFit Strategy = bestFit{}

// WorstFit selects the largest hole that satisfies the request. Ties go to
// the lowest offset.
var WorstFit Strategy = worstFit{}

type bestFit struct{}

func (bestFit) Name() string { return "best-fit" }

func (bestFit) Choose(words int, holes []extent.Extent) (int, bool) {
	offset, best := 0, -1
	for _, h := range holes {
		if h.Length >= words && (best == -1 || h.Length < best) {
			offset, best = h.Offset, h.Length
		}
	}
	return offset, best != -1
}

type worstFit struct{}

func (worstFit) Name() string { return "worst-fit" }

func (worstFit) Choose(words int, holes []extent.Extent) (int, bool) {
	offset, best := 0, -1
	for _, h := range holes {
		if h.Length >= words && h.Length > best {
			offset, best = h.Offset, h.Length
		}
	}
	return offset, best != -1
}
