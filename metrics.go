package memgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInitialize is called after each Initialize.
	// duration is the total time taken, err is nil if successful.
	RecordInitialize(duration time.Duration, err error)

	// RecordAllocate is called after each Allocate.
	// words is the rounded request size; fit is false when no hole satisfied it.
	RecordAllocate(duration time.Duration, words int, fit bool)

	// RecordFree is called after each Free that reached the ledgers.
	// known is false when the address did not match a live allocation.
	RecordFree(duration time.Duration, known bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInitialize(time.Duration, error)   {}
func (NoopMetricsCollector) RecordAllocate(time.Duration, int, bool) {}
func (NoopMetricsCollector) RecordFree(time.Duration, bool)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InitializeCount    atomic.Int64
	InitializeErrors   atomic.Int64
	AllocateCount      atomic.Int64
	AllocateNoFit      atomic.Int64
	AllocateWords      atomic.Int64
	AllocateTotalNanos atomic.Int64
	FreeCount          atomic.Int64
	FreeUnknown        atomic.Int64
	FreeTotalNanos     atomic.Int64
}

// RecordInitialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInitialize(duration time.Duration, err error) {
	b.InitializeCount.Add(1)
	if err != nil {
		b.InitializeErrors.Add(1)
	}
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(duration time.Duration, words int, fit bool) {
	b.AllocateCount.Add(1)
	b.AllocateTotalNanos.Add(duration.Nanoseconds())
	if fit {
		b.AllocateWords.Add(int64(words))
	} else {
		b.AllocateNoFit.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(duration time.Duration, known bool) {
	b.FreeCount.Add(1)
	b.FreeTotalNanos.Add(duration.Nanoseconds())
	if !known {
		b.FreeUnknown.Add(1)
	}
}
