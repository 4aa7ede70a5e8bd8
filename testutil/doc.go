// Package testutil provides testing utilities for memgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random number generator for reproducible randomized
// allocation workloads, and ledger invariant checks.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	size := rng.Intn(maxBytes) + 1
//
// # Invariant Checks
//
//	testutil.CheckTiling(t, capacityWords, holes, allocs)
//	testutil.CheckNoAdjacency(t, holes)
package testutil
