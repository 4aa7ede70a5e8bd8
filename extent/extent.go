// Package extent provides the word-granular extent type and the ordered
// ledger used to track free and allocated regions of an arena.
//
// A Ledger is a sorted slice keyed by offset. Insertion uses binary search,
// so lookups and removals stay predictable even for heavily fragmented
// arenas. The ledger never overlaps and, for hole ledgers, Coalesce keeps it
// adjacency-free.
package extent

import (
	"fmt"
	"slices"
)

// Extent is a contiguous run of words, identified by its word offset from
// the arena base and its length in words.
type Extent struct {
	Offset int
	Length int
}

// End returns the first word offset past the extent.
func (e Extent) End() int {
	return e.Offset + e.Length
}

func (e Extent) String() string {
	return fmt.Sprintf("[%d, %d]", e.Offset, e.Length)
}

func compareOffset(e Extent, offset int) int {
	switch {
	case e.Offset < offset:
		return -1
	case e.Offset > offset:
		return 1
	default:
		return 0
	}
}

// Ledger is an ordered collection of non-overlapping extents, strictly
// increasing by offset. The zero value is an empty ledger ready for use.
//
// Ledger is not safe for concurrent use.
type Ledger struct {
	extents []Extent
}

// Reset discards all entries and, if seed extents are given, installs them.
// Seeds must already be in offset order and non-overlapping.
func (l *Ledger) Reset(seed ...Extent) {
	l.extents = l.extents[:0]
	l.extents = append(l.extents, seed...)
}

// Clear removes all entries.
func (l *Ledger) Clear() {
	l.extents = l.extents[:0]
}

// Len returns the number of extents.
func (l *Ledger) Len() int {
	return len(l.extents)
}

// At returns the extent at position i.
func (l *Ledger) At(i int) Extent {
	return l.extents[i]
}

// Insert adds e at the position preserving offset order.
func (l *Ledger) Insert(e Extent) {
	i, _ := slices.BinarySearchFunc(l.extents, e.Offset, compareOffset)
	l.extents = slices.Insert(l.extents, i, e)
}

// Lookup returns the extent starting exactly at offset.
func (l *Ledger) Lookup(offset int) (Extent, bool) {
	i, ok := slices.BinarySearchFunc(l.extents, offset, compareOffset)
	if !ok {
		return Extent{}, false
	}
	return l.extents[i], true
}

// Remove deletes and returns the extent starting exactly at offset.
func (l *Ledger) Remove(offset int) (Extent, bool) {
	i, ok := slices.BinarySearchFunc(l.extents, offset, compareOffset)
	if !ok {
		return Extent{}, false
	}
	e := l.extents[i]
	l.extents = slices.Delete(l.extents, i, i+1)
	return e, true
}

// Consume takes words from the low end of the extent starting at offset.
// An exact fit removes the entry; a partial fit advances the entry's offset
// and shrinks its length in place. It reports whether the entry existed and
// was large enough. A non-positive word count consumes nothing.
func (l *Ledger) Consume(offset, words int) bool {
	if words <= 0 {
		return false
	}
	i, ok := slices.BinarySearchFunc(l.extents, offset, compareOffset)
	if !ok || l.extents[i].Length < words {
		return false
	}
	if l.extents[i].Length == words {
		l.extents = slices.Delete(l.extents, i, i+1)
		return true
	}
	l.extents[i].Offset += words
	l.extents[i].Length -= words
	return true
}

// Coalesce merges every pair of directly adjacent extents, left to right,
// until none remain. After a free only the freed extent's immediate
// neighbors can actually merge, but the scan is general so the ledger ends
// adjacency-free no matter how it got here.
func (l *Ledger) Coalesce() {
	i := 0
	for i < len(l.extents)-1 {
		if l.extents[i].End() == l.extents[i+1].Offset {
			l.extents[i].Length += l.extents[i+1].Length
			l.extents = slices.Delete(l.extents, i+1, i+2)
			continue
		}
		i++
	}
}

// Snapshot returns a copy of the ledger's extents. The copy never aliases
// the live ledger, so callers can hold it across mutations.
func (l *Ledger) Snapshot() []Extent {
	if len(l.extents) == 0 {
		return nil
	}
	return slices.Clone(l.extents)
}

// Words returns the total word count across all extents.
func (l *Ledger) Words() int {
	total := 0
	for _, e := range l.extents {
		total += e.Length
	}
	return total
}

// Largest returns the length of the largest extent, or 0 if empty.
func (l *Ledger) Largest() int {
	largest := 0
	for _, e := range l.extents {
		if e.Length > largest {
			largest = e.Length
		}
	}
	return largest
}
