// Package memgo provides a word-granularity memory allocator over a single
// mmap-backed arena, built for studying placement strategies and
// fragmentation behavior.
//
// A Manager owns one reserved, zero-initialized memory region and tracks it
// with two ordered ledgers: holes (free extents) and allocations (live
// extents). Placement is delegated to a pluggable strategy (best-fit,
// worst-fit, or any custom function), which only ever sees an immutable
// snapshot of the hole ledger.
//
// # Quick Start
//
//	mm, _ := memgo.New(8)                       // 8-byte words, best-fit
//	_ = mm.Initialize(32)                       // 32-word arena
//	defer mm.Shutdown()
//
//	p := mm.Allocate(24)                        // 3 words
//	q := mm.Allocate(64)                        // 8 words
//	mm.Free(p)                                  // hole reinserted + coalesced
//
//	mm.SetStrategy(strategy.WorstFit)           // swap at runtime
//	r := mm.Allocate(16)
//
// # Placement Strategies
//
// Best-fit picks the smallest hole that satisfies a request, worst-fit the
// largest; both break ties toward the lowest offset. Custom policies plug in
// via strategy.Func:
//
//	firstFit := strategy.Func{
//	    FuncName: "first-fit",
//	    ChooseFunc: func(words int, holes []extent.Extent) (int, bool) {
//	        for _, h := range holes {
//	            if h.Length >= words {
//	                return h.Offset, true
//	            }
//	        }
//	        return 0, false
//	    },
//	}
//	mm.SetStrategy(firstFit)
//
// # Introspection
//
// The hole ledger and the per-word occupancy bitmap export through flat
// 16-bit little-endian encodings (see the codec package); DumpHoleMap writes
// a human-readable hole map to a file; Stats, Usage and Fragmentation report
// how broken up the free space is.
//
// # Concurrency
//
// A Manager is single-threaded: it is not safe for concurrent use without
// external synchronization, and assumes one logical owner at a time.
package memgo
