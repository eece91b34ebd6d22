package domain

import "strings"

// CallOutcome describes how a worker served a single call.
type CallOutcome string

const (
	// OutcomeKernelHit indicates the compiled kernel was found in the cache.
	OutcomeKernelHit CallOutcome = "hit"
	// OutcomeCompiled indicates the kernel was compiled and inserted into the cache.
	OutcomeCompiled CallOutcome = "compiled"
	// OutcomeFailed indicates the call failed before or during execution.
	OutcomeFailed CallOutcome = "failed"
)

// DuplicatePolicy selects what the kernel cache does when a signature that is
// already cached is inserted again.
type DuplicatePolicy string

const (
	// DuplicateStrict removes the existing entry before pushing the new one, so
	// the recency list and the index always hold the same entries.
	DuplicateStrict DuplicatePolicy = "strict"
	// DuplicateLazy pushes a new head entry and repoints the index at it. The
	// old entry stays in the list, unreachable, until it ages out at the tail.
	DuplicateLazy DuplicatePolicy = "lazy"
)

// ParseDuplicatePolicy converts a config string to a DuplicatePolicy.
// The empty string selects DuplicateStrict.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DuplicateStrict):
		return DuplicateStrict, nil
	case string(DuplicateLazy):
		return DuplicateLazy, nil
	default:
		return "", ErrInvalidDuplicatePolicy
	}
}

// CacheStats is a snapshot of a kernel cache's counters.
type CacheStats struct {
	Hits       uint64
	Misses     uint64
	Insertions uint64
	Evictions  uint64
	Len        int
	Capacity   int
}

// WorkerStats is a snapshot of one worker's counters.
type WorkerStats struct {
	Worker          int
	Calls           uint64
	Failures        uint64
	PartitionHits   uint64
	PartitionMisses uint64
	Partitions      int
	Compiles        uint64
	CompileFailures uint64
	Kernels         CacheStats
}

// Add accumulates other into s. The Worker and Capacity fields are left untouched.
func (s *WorkerStats) Add(other WorkerStats) {
	s.Calls += other.Calls
	s.Failures += other.Failures
	s.PartitionHits += other.PartitionHits
	s.PartitionMisses += other.PartitionMisses
	s.Partitions += other.Partitions
	s.Compiles += other.Compiles
	s.CompileFailures += other.CompileFailures
	s.Kernels.Hits += other.Kernels.Hits
	s.Kernels.Misses += other.Kernels.Misses
	s.Kernels.Insertions += other.Kernels.Insertions
	s.Kernels.Evictions += other.Kernels.Evictions
	s.Kernels.Len += other.Kernels.Len
}
