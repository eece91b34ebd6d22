// Package partitioncache implements the per-worker map from pattern ids to
// recognized partitions.
package partitioncache

import "go.trai.ch/kcache/internal/core/domain"

// Stats is a snapshot of the partition cache counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Insertions uint64
	Len        int
}

// Cache maps pattern ids to partitions. It is unbounded: a worker keeps every
// partition it has seen for its whole lifetime.
type Cache struct {
	partitions map[domain.PatternID]*domain.Partition
	hits       uint64
	misses     uint64
	insertions uint64
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{partitions: make(map[domain.PatternID]*domain.Partition)}
}

// Lookup returns the partition stored under id.
func (c *Cache) Lookup(id domain.PatternID) (*domain.Partition, bool) {
	p, ok := c.partitions[id]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return p, ok
}

// Insert stores p under id, replacing any previous partition.
func (c *Cache) Insert(id domain.PatternID, p *domain.Partition) {
	c.insertions++
	c.partitions[id] = p
}

// Len returns the number of stored partitions.
func (c *Cache) Len() int {
	return len(c.partitions)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Insertions: c.insertions,
		Len:        len(c.partitions),
	}
}
