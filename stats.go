package memgo

import "fmt"

// Stats reports the allocator's current shape plus cumulative counters.
//
// Note on semantics:
//   - CapacityWords/FreeWords/UsedWords: current arena occupancy
//   - HoleCount/AllocCount/LargestHole: current ledger shape
//   - TotalAllocs/TotalFrees/FailedAllocs: historical counts
type Stats struct {
	CapacityWords int
	FreeWords     int
	UsedWords     int
	HoleCount     int
	AllocCount    int
	LargestHole   int
	TotalAllocs   uint64
	TotalFrees    uint64
	FailedAllocs  uint64
}

// Stats returns the current allocator statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		CapacityWords: m.capacityWords,
		FreeWords:     m.holes.Words(),
		UsedWords:     m.allocs.Words(),
		HoleCount:     m.holes.Len(),
		AllocCount:    m.allocs.Len(),
		LargestHole:   m.holes.Largest(),
		TotalAllocs:   m.totalAllocs,
		TotalFrees:    m.totalFrees,
		FailedAllocs:  m.failedAllocs,
	}
}

// Usage returns the occupied fraction of the arena as a percentage.
func (m *Manager) Usage() float64 {
	if m.capacityWords == 0 {
		return 0
	}
	return float64(m.allocs.Words()) / float64(m.capacityWords) * 100
}

// Fragmentation scores how broken up the free space is, from 0 (one
// contiguous hole, or nothing free) to approaching 1 (free words scattered
// in many small holes). It is 1 - largestHole/freeWords, the share of free
// memory unusable by a request the size of the largest hole plus one.
func (m *Manager) Fragmentation() float64 {
	free := m.holes.Words()
	if free == 0 {
		return 0
	}
	return 1 - float64(m.holes.Largest())/float64(free)
}

// String returns a one-line summary of the allocator's state.
func (m *Manager) String() string {
	stats := m.Stats()
	return fmt.Sprintf(
		"Manager{strategy: %s, capacity: %d words, used: %d, holes: %d, largest hole: %d, usage: %.1f%%, frag: %.2f}",
		m.strategy.Name(),
		stats.CapacityWords,
		stats.UsedWords,
		stats.HoleCount,
		stats.LargestHole,
		m.Usage(),
		m.Fragmentation(),
	)
}
