package memgo

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/hupe1980/memgo/codec"
	"github.com/hupe1980/memgo/extent"
	"github.com/hupe1980/memgo/internal/mmap"
	"github.com/hupe1980/memgo/strategy"
)

// MaxWords is the largest arena capacity, in words. The ceiling comes from
// the 16-bit hole-list and bitmap export formats.
const MaxWords = codec.MaxWords

// Manager is a word-granularity allocator over a single anonymous memory
// mapping. The zero state is "not live": Allocate and Free are no-ops until
// Initialize succeeds.
//
// Manager is not safe for concurrent use.
type Manager struct {
	wordSize int
	strategy strategy.Strategy
	logger   *Logger
	metrics  MetricsCollector

	mapping       *mmap.Mapping // nil when no arena is live
	capacityWords int
	holes         extent.Ledger
	allocs        extent.Ledger

	totalAllocs  uint64
	totalFrees   uint64
	failedAllocs uint64
}

// New creates a Manager with the given word size in bytes. The word size is
// immutable for the Manager's lifetime. The default placement strategy is
// best-fit; no arena is reserved until Initialize is called.
func New(wordSize int, optFns ...Option) (*Manager, error) {
	if wordSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWordSize, wordSize)
	}

	opts := applyOptions(optFns)

	return &Manager{
		wordSize: wordSize,
		strategy: opts.strategy,
		logger:   opts.logger,
		metrics:  opts.metricsCollector,
	}, nil
}

// Initialize reserves an arena of sizeInWords words and seeds the hole
// ledger with one extent spanning it. A live arena is torn down first, so
// re-initialization is always safe. It fails with ErrInvalidSize when
// sizeInWords is 0 or exceeds MaxWords, and with ErrOutOfMemory when the OS
// reservation cannot be satisfied; in both cases the arena is left not-live.
func (m *Manager) Initialize(sizeInWords int) error {
	start := time.Now()

	err := m.initialize(sizeInWords)

	m.metrics.RecordInitialize(time.Since(start), err)
	m.logger.LogInitialize(sizeInWords, err)

	return err
}

func (m *Manager) initialize(sizeInWords int) error {
	if m.mapping != nil {
		m.Shutdown()
	}

	if sizeInWords < 1 || sizeInWords > MaxWords {
		return &ErrInvalidSize{Words: sizeInWords}
	}

	mapping, err := mmap.MapAnon(sizeInWords * m.wordSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	m.mapping = mapping
	m.capacityWords = sizeInWords
	m.holes.Reset(extent.Extent{Offset: 0, Length: sizeInWords})
	m.allocs.Clear()

	return nil
}

// Shutdown releases the arena if one is live and clears both ledgers. It is
// safe to call on a not-live Manager.
func (m *Manager) Shutdown() {
	if m.mapping != nil {
		_ = m.mapping.Close()
		m.mapping = nil
		m.capacityWords = 0
	}
	m.holes.Clear()
	m.allocs.Clear()
}

// Close implements io.Closer; it shuts the arena down and reports the unmap
// error, if any.
func (m *Manager) Close() error {
	var err error
	if m.mapping != nil {
		err = m.mapping.Close()
		m.mapping = nil
		m.capacityWords = 0
	}
	m.holes.Clear()
	m.allocs.Clear()
	return err
}

// Allocate reserves sizeInBytes bytes, rounded up to whole words, and
// returns the block's address. It returns nil when sizeInBytes is not
// positive, no arena is live, or the active strategy finds no hole large
// enough; the ledgers are unchanged in every nil case.
func (m *Manager) Allocate(sizeInBytes int) unsafe.Pointer {
	if m.mapping == nil || sizeInBytes <= 0 {
		return nil
	}

	start := time.Now()

	words := (sizeInBytes + m.wordSize - 1) / m.wordSize

	// Requests that round to a non-positive count (the rounding overflows
	// for sizes near MaxInt) or exceed the arena capacity can never fit;
	// the strategy is not consulted.
	ok := words > 0 && words <= m.capacityWords

	var offset int
	if ok {
		offset, ok = m.strategy.Choose(words, m.holes.Snapshot())
	}
	if ok {
		// The chosen offset must name a hole that can hold the request. A
		// conforming strategy guarantees this; a broken custom one is
		// answered with "no fit" rather than corrupted ledgers.
		ok = m.holes.Consume(offset, words)
	}

	if !ok {
		m.failedAllocs++
		m.metrics.RecordAllocate(time.Since(start), words, false)
		m.logger.LogAllocate(sizeInBytes, words, 0, false)
		return nil
	}

	m.allocs.Insert(extent.Extent{Offset: offset, Length: words})
	m.totalAllocs++

	m.metrics.RecordAllocate(time.Since(start), words, true)
	m.logger.LogAllocate(sizeInBytes, words, offset, true)

	return unsafe.Add(m.base(), offset*m.wordSize)
}

// Free returns the allocation at address to the hole ledger and coalesces
// adjacent holes. A nil address or a not-live arena is a no-op. An address
// that does not match a live allocation is silently ignored: the ledgers
// are trusted over the caller, and a malformed or double free must not
// corrupt them.
func (m *Manager) Free(address unsafe.Pointer) {
	if m.mapping == nil || address == nil {
		return
	}

	start := time.Now()

	offsetInBytes := uintptr(address) - uintptr(m.base())
	wordOffset := int(offsetInBytes / uintptr(m.wordSize))

	e, known := m.allocs.Remove(wordOffset)
	if known {
		m.holes.Insert(e)
		m.holes.Coalesce()
		m.totalFrees++
	}

	m.metrics.RecordFree(time.Since(start), known)
	m.logger.LogFree(wordOffset, known)
}

// SetStrategy swaps the active placement strategy. Already-placed
// allocations are unaffected. Passing nil restores best-fit.
func (m *Manager) SetStrategy(s strategy.Strategy) {
	if s == nil {
		s = strategy.BestFit
	}
	m.strategy = s
}

// Strategy returns the active placement strategy.
func (m *Manager) Strategy() strategy.Strategy {
	return m.strategy
}

// WordSize returns the word size in bytes.
func (m *Manager) WordSize() int {
	return m.wordSize
}

// Base returns the arena's base address, or nil when no arena is live.
func (m *Manager) Base() unsafe.Pointer {
	if m.mapping == nil {
		return nil
	}
	return m.base()
}

func (m *Manager) base() unsafe.Pointer {
	return unsafe.Pointer(&m.mapping.Bytes()[0])
}

// CapacityWords returns the arena capacity in words, 0 when not live.
func (m *Manager) CapacityWords() int {
	return m.capacityWords
}

// CapacityBytes returns the arena capacity in bytes, 0 when not live.
func (m *Manager) CapacityBytes() int {
	return m.capacityWords * m.wordSize
}

// Holes returns an immutable snapshot of the hole ledger in offset order,
// or nil when there are no holes. The snapshot never aliases live state.
func (m *Manager) Holes() []extent.Extent {
	return m.holes.Snapshot()
}

// ExportHoleList returns the hole ledger in the flat 16-bit wire format
// (see codec.EncodeHoleList), or nil when there are no holes.
func (m *Manager) ExportHoleList() []byte {
	buf, err := codec.EncodeHoleList(m.holes.Snapshot())
	if err != nil {
		// Initialize capped the capacity at MaxWords, so every offset and
		// length fits the encoding.
		panic(fmt.Sprintf("memgo: hole list encoding failed: %v", err))
	}
	return buf
}

// ExportBitmap returns the per-word occupancy bitmap, prefixed with its
// byte length as little-endian uint16 (see codec.EncodeBitmap). A set bit
// means the word belongs to a live allocation. Returns nil when no arena
// is live.
func (m *Manager) ExportBitmap() []byte {
	if m.mapping == nil {
		return nil
	}

	buf, err := codec.EncodeBitmap(m.capacityWords, m.allocs.Snapshot())
	if err != nil {
		panic(fmt.Sprintf("memgo: bitmap encoding failed: %v", err))
	}
	return buf
}

// DumpHoleMap writes a human-readable rendering of the hole ledger to the
// file at path, creating or truncating it: one "[offset, length]" entry per
// hole, separated by " - ", with no trailing separator or newline. Open,
// write and close failures are reported; a failed write may leave the file
// partially written.
func (m *Manager) DumpHoleMap(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("open hole map: %w", err)
	}

	var sb strings.Builder
	for i := 0; i < m.holes.Len(); i++ {
		if i > 0 {
			sb.WriteString(" - ")
		}
		sb.WriteString(m.holes.At(i).String())
	}

	if _, err := f.WriteString(sb.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write hole map: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close hole map: %w", err)
	}

	return nil
}
