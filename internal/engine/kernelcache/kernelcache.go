// Package kernelcache implements the per-worker cache of compiled kernels
// keyed by shape signature.
package kernelcache

import (
	"errors"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/kcache/internal/engine/lru"
	"go.trai.ch/zerr"
)

// Cache maps shape signatures to compiled kernels, evicting the least recently
// used kernel once capacity is exceeded.
//
// The cache owns every kernel inserted into it and releases it when the entry
// leaves the cache. Kernels returned by Lookup are borrowed and stay valid
// until the next Insert or Close.
type Cache struct {
	entries *lru.Cache[domain.SignatureKey, domain.CompiledKernel]
	logger  ports.Logger

	hits       uint64
	misses     uint64
	insertions uint64
	evictions  uint64
}

// New creates a Cache bounded to capacity kernels.
func New(capacity int, policy domain.DuplicatePolicy, logger ports.Logger) (*Cache, error) {
	c := &Cache{logger: logger}
	entries, err := lru.New(capacity,
		lru.WithPolicy[domain.SignatureKey, domain.CompiledKernel](policy),
		lru.WithOnRemove(c.release),
	)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Lookup returns the kernel compiled for sig and marks it most recently used.
func (c *Cache) Lookup(sig domain.ShapeSignature) (domain.CompiledKernel, bool) {
	k, ok := c.entries.Get(sig.Key())
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return k, true
}

// Contains reports whether a kernel is cached for sig without touching recency.
func (c *Cache) Contains(sig domain.ShapeSignature) bool {
	return c.entries.Contains(sig.Key())
}

// Insert stores kernel under sig as the most recently used entry and takes
// ownership of it. A kernel previously cached under sig is released.
func (c *Cache) Insert(sig domain.ShapeSignature, kernel domain.CompiledKernel) {
	c.insertions++
	c.evictions += uint64(c.entries.Put(sig.Key(), kernel)) //nolint:gosec // Put never returns a negative count
}

// Signatures returns the cached signatures from most to least recently used.
func (c *Cache) Signatures() []domain.ShapeSignature {
	sigs := make([]domain.ShapeSignature, 0, c.entries.Len())
	for key := range c.entries.All() {
		sigs = append(sigs, key.Signature())
	}
	return sigs
}

// Len returns the number of cached kernels.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Capacity returns the maximum number of cached kernels.
func (c *Cache) Capacity() int {
	return c.entries.Cap()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() domain.CacheStats {
	return domain.CacheStats{
		Hits:       c.hits,
		Misses:     c.misses,
		Insertions: c.insertions,
		Evictions:  c.evictions,
		Len:        c.entries.Len(),
		Capacity:   c.entries.Cap(),
	}
}

// Close releases every cached kernel. The cache is empty but usable afterwards.
func (c *Cache) Close() {
	c.entries.Purge()
}

func (c *Cache) release(key domain.SignatureKey, kernel domain.CompiledKernel, reason lru.RemoveReason) {
	if kernel == nil {
		return
	}
	if err := kernel.Release(); err != nil {
		err = zerr.With(errors.Join(domain.ErrKernelReleaseFailed, err), "kernel", kernel.ID())
		err = zerr.With(err, "signature", key.Signature().String())
		c.logger.Error(zerr.With(err, "reason", reason.String()))
	}
}
