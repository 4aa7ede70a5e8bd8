package memgo

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memgo/extent"
	"github.com/hupe1980/memgo/strategy"
)

func newManager(t *testing.T, wordSize, words int, optFns ...Option) *Manager {
	t.Helper()

	mm, err := New(wordSize, optFns...)
	require.NoError(t, err)
	require.NoError(t, mm.Initialize(words))
	t.Cleanup(mm.Shutdown)

	return mm
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		mm, err := New(8)
		require.NoError(t, err)

		assert.Equal(t, 8, mm.WordSize())
		assert.Equal(t, "best-fit", mm.Strategy().Name())
		assert.Nil(t, mm.Base())
		assert.Equal(t, 0, mm.CapacityBytes())
	})

	t.Run("invalid word size", func(t *testing.T) {
		for _, ws := range []int{0, -1} {
			_, err := New(ws)
			assert.ErrorIs(t, err, ErrInvalidWordSize)
		}
	})

	t.Run("initial strategy option", func(t *testing.T) {
		mm, err := New(8, WithStrategy(strategy.WorstFit))
		require.NoError(t, err)
		assert.Equal(t, "worst-fit", mm.Strategy().Name())
	})
}

func TestManager_Allocate(t *testing.T) {
	t.Run("rounds bytes up to words", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		p := mm.Allocate(17) // 3 words
		require.NotNil(t, p)

		assert.Equal(t, []extent.Extent{{Offset: 3, Length: 29}}, mm.Holes())
		assert.Equal(t, 3, mm.Stats().UsedWords)
	})

	t.Run("returns arena addresses", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		p1 := mm.Allocate(32) // words 0..3
		p2 := mm.Allocate(8)  // word 4
		require.NotNil(t, p1)
		require.NotNil(t, p2)

		assert.Equal(t, uintptr(mm.Base()), uintptr(p1))
		assert.Equal(t, uintptr(mm.Base())+4*8, uintptr(p2))
	})

	t.Run("memory is writable", func(t *testing.T) {
		mm := newManager(t, 4, 16)

		p := mm.Allocate(16)
		require.NotNil(t, p)

		words := unsafe.Slice((*byte)(p), 16)
		for i := range words {
			words[i] = byte(i)
		}
		assert.Equal(t, byte(15), words[15])
	})

	t.Run("exact fit removes the hole", func(t *testing.T) {
		mm := newManager(t, 8, 8)

		p := mm.Allocate(64)
		require.NotNil(t, p)

		assert.Nil(t, mm.Holes())
		assert.Nil(t, mm.ExportHoleList())
	})

	t.Run("zero size", func(t *testing.T) {
		mm := newManager(t, 8, 32)
		assert.Nil(t, mm.Allocate(0))
	})

	t.Run("no live arena", func(t *testing.T) {
		mm, err := New(8)
		require.NoError(t, err)
		assert.Nil(t, mm.Allocate(8))
	})

	t.Run("exhaustion leaves ledgers unchanged", func(t *testing.T) {
		mm := newManager(t, 8, 8)

		require.NotNil(t, mm.Allocate(24)) // 3 words, hole now 5
		before := mm.Holes()

		assert.Nil(t, mm.Allocate(48)) // 6 words, no fit
		assert.Equal(t, before, mm.Holes())
		assert.Equal(t, uint64(1), mm.Stats().FailedAllocs)
	})

	t.Run("overflowing request size", func(t *testing.T) {
		// Near MaxInt the word rounding overflows to a negative count;
		// the request must fail cleanly instead of growing a hole.
		mm := newManager(t, 8, 32)
		before := mm.Holes()

		for _, size := range []int{math.MaxInt, math.MaxInt - 7} {
			assert.Nil(t, mm.Allocate(size))
		}

		assert.Equal(t, before, mm.Holes())
		assert.Equal(t, []byte{1, 0, 0, 0, 32, 0}, mm.ExportHoleList())
		assert.Equal(t, uint64(2), mm.Stats().FailedAllocs)
	})

	t.Run("request beyond capacity", func(t *testing.T) {
		mm := newManager(t, 8, 32)
		before := mm.Holes()

		assert.Nil(t, mm.Allocate(33*8))
		assert.Equal(t, before, mm.Holes())
	})

	t.Run("misbehaving custom strategy cannot corrupt ledgers", func(t *testing.T) {
		mm := newManager(t, 8, 32, WithStrategy(strategy.Func{
			FuncName: "broken",
			ChooseFunc: func(words int, holes []extent.Extent) (int, bool) {
				return 7, true // middle of the only hole, not a hole offset
			},
		}))

		assert.Nil(t, mm.Allocate(8))
		assert.Equal(t, []extent.Extent{{Offset: 0, Length: 32}}, mm.Holes())
	})
}

func TestManager_Free(t *testing.T) {
	t.Run("round trip restores the hole ledger", func(t *testing.T) {
		mm := newManager(t, 8, 32)
		before := mm.Holes()

		p := mm.Allocate(40)
		require.NotNil(t, p)
		mm.Free(p)

		assert.Equal(t, before, mm.Holes())
		assert.Equal(t, 0, mm.Stats().UsedWords)
	})

	t.Run("nil address", func(t *testing.T) {
		mm := newManager(t, 8, 32)
		mm.Free(nil) // must not panic
		assert.Equal(t, 32, mm.Stats().FreeWords)
	})

	t.Run("unknown address is ignored", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		p := mm.Allocate(16)
		require.NotNil(t, p)
		before := mm.Holes()

		mm.Free(unsafe.Add(mm.Base(), 8*8)) // word 8, never allocated
		assert.Equal(t, before, mm.Holes())
		assert.Equal(t, 2, mm.Stats().UsedWords)
	})

	t.Run("double free is ignored", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		p := mm.Allocate(16)
		q := mm.Allocate(16)
		require.NotNil(t, q)

		mm.Free(p)
		holes := mm.Holes()

		mm.Free(p)
		assert.Equal(t, holes, mm.Holes())
	})
}

func TestManager_Coalescing(t *testing.T) {
	// Three contiguous equal blocks: freeing the outer two leaves disjoint
	// holes; freeing the middle one merges all three.
	mm := newManager(t, 8, 32)

	b1 := mm.Allocate(32) // words 0..3
	b2 := mm.Allocate(32) // words 4..7
	b3 := mm.Allocate(32) // words 8..11
	require.NotNil(t, b3)

	mm.Free(b1)
	mm.Free(b3)
	require.Equal(t, []extent.Extent{
		{Offset: 0, Length: 4},
		{Offset: 8, Length: 4},
		{Offset: 12, Length: 20},
	}, mm.Holes())

	mm.Free(b2)
	assert.Equal(t, []extent.Extent{{Offset: 0, Length: 32}}, mm.Holes())
}

func TestManager_Strategies(t *testing.T) {
	// Carve the fragmented hole set [(0,4),(10,2),(20,8)] out of a 28-word
	// arena: fill it with five blocks, then free the first, third and fifth.
	carve := func(t *testing.T, mm *Manager) {
		t.Helper()

		a := mm.Allocate(4 * 8)            // words 0..3
		require.NotNil(t, mm.Allocate(48)) // words 4..9
		c := mm.Allocate(2 * 8)            // words 10..11
		require.NotNil(t, mm.Allocate(64)) // words 12..19
		e := mm.Allocate(8 * 8)            // words 20..27
		require.NotNil(t, e)

		mm.Free(a)
		mm.Free(c)
		mm.Free(e)

		require.Equal(t, []extent.Extent{
			{Offset: 0, Length: 4},
			{Offset: 10, Length: 2},
			{Offset: 20, Length: 8},
		}, mm.Holes())
	}

	t.Run("best fit picks the smallest sufficient hole", func(t *testing.T) {
		mm := newManager(t, 8, 28)
		carve(t, mm)

		p := mm.Allocate(16) // 2 words -> offset 10
		require.NotNil(t, p)
		assert.Equal(t, uintptr(mm.Base())+10*8, uintptr(p))
	})

	t.Run("worst fit picks the largest hole", func(t *testing.T) {
		mm := newManager(t, 8, 28, WithStrategy(strategy.WorstFit))
		carve(t, mm)

		p := mm.Allocate(16) // 2 words -> offset 20
		require.NotNil(t, p)
		assert.Equal(t, uintptr(mm.Base())+20*8, uintptr(p))
	})

	t.Run("swap affects only new placements", func(t *testing.T) {
		mm := newManager(t, 8, 28)
		carve(t, mm)

		best := mm.Allocate(16)
		require.Equal(t, uintptr(mm.Base())+10*8, uintptr(best))

		mm.SetStrategy(strategy.WorstFit)
		worst := mm.Allocate(16)
		require.Equal(t, uintptr(mm.Base())+20*8, uintptr(worst))

		// The earlier placement did not move.
		e, ok := mm.allocs.Lookup(10)
		require.True(t, ok)
		assert.Equal(t, 2, e.Length)
	})

	t.Run("set nil restores best fit", func(t *testing.T) {
		mm := newManager(t, 8, 8, WithStrategy(strategy.WorstFit))
		mm.SetStrategy(nil)
		assert.Equal(t, "best-fit", mm.Strategy().Name())
	})
}

func TestManager_ExportBitmap(t *testing.T) {
	t.Run("one allocation", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		// Place a 4-word block at word offset 8.
		require.NotNil(t, mm.Allocate(64)) // words 0..7
		p := mm.Allocate(32)               // words 8..11
		require.NotNil(t, p)
		mm.Free(mm.Base()) // free words 0..7 again

		bitmap := mm.ExportBitmap()
		require.Equal(t, []byte{4, 0, 0x00, 0x0F, 0x00, 0x00}, bitmap)
	})

	t.Run("no arena", func(t *testing.T) {
		mm, err := New(8)
		require.NoError(t, err)
		assert.Nil(t, mm.ExportBitmap())
	})
}

func TestManager_ExportHoleList(t *testing.T) {
	mm := newManager(t, 8, 32)
	require.NotNil(t, mm.Allocate(32)) // hole becomes (4,28)

	buf := mm.ExportHoleList()
	// count=1, offset=4, length=28, little-endian uint16 each.
	assert.Equal(t, []byte{1, 0, 4, 0, 28, 0}, buf)
}

func TestManager_DumpHoleMap(t *testing.T) {
	t.Run("renders holes in offset order", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		p := mm.Allocate(32)               // words 0..3
		require.NotNil(t, mm.Allocate(16)) // words 4..5
		mm.Free(p)

		path := filepath.Join(t.TempDir(), "holes.txt")
		require.NoError(t, mm.DumpHoleMap(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[0, 4] - [6, 26]", string(data))
	})

	t.Run("single hole has no separator", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		path := filepath.Join(t.TempDir(), "holes.txt")
		require.NoError(t, mm.DumpHoleMap(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[0, 32]", string(data))
	})

	t.Run("truncates an existing file", func(t *testing.T) {
		mm := newManager(t, 8, 32)

		path := filepath.Join(t.TempDir(), "holes.txt")
		require.NoError(t, os.WriteFile(path, []byte("stale contents, much longer"), 0o666))
		require.NoError(t, mm.DumpHoleMap(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[0, 32]", string(data))
	})

	t.Run("unopenable path fails", func(t *testing.T) {
		mm := newManager(t, 8, 32)
		assert.Error(t, mm.DumpHoleMap(filepath.Join(t.TempDir(), "missing", "holes.txt")))
	})
}

func TestManager_Stats(t *testing.T) {
	mm := newManager(t, 8, 32)

	p := mm.Allocate(40) // 5 words
	require.NotNil(t, p)
	require.NotNil(t, mm.Allocate(16)) // 2 words
	mm.Free(p)
	assert.Nil(t, mm.Allocate(8*100)) // no fit

	stats := mm.Stats()
	assert.Equal(t, 32, stats.CapacityWords)
	assert.Equal(t, 2, stats.UsedWords)
	assert.Equal(t, 30, stats.FreeWords)
	assert.Equal(t, 2, stats.HoleCount)
	assert.Equal(t, 1, stats.AllocCount)
	assert.Equal(t, 25, stats.LargestHole)
	assert.Equal(t, uint64(2), stats.TotalAllocs)
	assert.Equal(t, uint64(1), stats.TotalFrees)
	assert.Equal(t, uint64(1), stats.FailedAllocs)

	assert.InDelta(t, 6.25, mm.Usage(), 0.001)
	assert.InDelta(t, 1-25.0/30.0, mm.Fragmentation(), 0.001)
	assert.Contains(t, mm.String(), "best-fit")
}

func TestManager_Metrics(t *testing.T) {
	collector := &BasicMetricsCollector{}
	mm := newManager(t, 8, 8, WithMetricsCollector(collector))

	p := mm.Allocate(8)
	assert.Nil(t, mm.Allocate(8*100))
	mm.Free(p)
	mm.Free(unsafe.Add(mm.Base(), 8*5))

	assert.Equal(t, int64(1), collector.InitializeCount.Load())
	assert.Equal(t, int64(2), collector.AllocateCount.Load())
	assert.Equal(t, int64(1), collector.AllocateNoFit.Load())
	assert.Equal(t, int64(2), collector.FreeCount.Load())
	assert.Equal(t, int64(1), collector.FreeUnknown.Load())
}
