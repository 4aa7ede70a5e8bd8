package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/memgo/extent"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// CheckTiling fails the test unless holes and allocs together tile
// [0, capacityWords) exactly: in offset order, no gaps, no overlaps.
func CheckTiling(t *testing.T, capacityWords int, holes, allocs []extent.Extent) {
	t.Helper()

	merged := mergeByOffset(holes, allocs)

	next := 0
	for _, e := range merged {
		if e.Offset != next {
			t.Fatalf("tiling broken at word %d: next extent starts at %d (extents: %v)", next, e.Offset, merged)
		}
		if e.Length <= 0 {
			t.Fatalf("extent %v has non-positive length", e)
		}
		next = e.End()
	}
	if next != capacityWords {
		t.Fatalf("tiling ends at word %d, want %d", next, capacityWords)
	}
}

// CheckNoAdjacency fails the test if any two holes touch: coalescing must
// leave strictly separated free extents.
func CheckNoAdjacency(t *testing.T, holes []extent.Extent) {
	t.Helper()

	for i := 1; i < len(holes); i++ {
		if holes[i-1].End() >= holes[i].Offset {
			t.Fatalf("holes %v and %v are adjacent or overlap", holes[i-1], holes[i])
		}
	}
}

func mergeByOffset(a, b []extent.Extent) []extent.Extent {
	out := make([]extent.Extent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Offset < b[j].Offset {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
