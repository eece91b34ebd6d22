// Package lru implements a capacity-bounded, recency-ordered map.
//
// Entries live in an arena of slots linked into a doubly linked list by slot
// index, head being the most recently used entry. An index map points each
// key at its slot, so lookup, promotion and tail eviction are O(1) and no
// pointer into the list is ever held outside the arena.
//
// A Cache is not safe for concurrent use. It is meant to be owned by a single
// worker goroutine.
package lru

import (
	"iter"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// RemoveReason tells an OnRemove callback why an entry left the cache.
type RemoveReason uint8

const (
	// Evicted means the entry was the least recently used one when the cache overflowed.
	Evicted RemoveReason = iota
	// Replaced means a newer value was inserted under the same key.
	Replaced
	// Purged means the whole cache was emptied.
	Purged
)

func (r RemoveReason) String() string {
	switch r {
	case Evicted:
		return "evicted"
	case Replaced:
		return "replaced"
	case Purged:
		return "purged"
	default:
		return "unknown"
	}
}

const nilSlot int32 = -1

type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int32
	next  int32
	// stale marks a lazily replaced entry that the index no longer points at.
	stale bool
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithPolicy selects the duplicate-key policy. The default is domain.DuplicateStrict.
func WithPolicy[K comparable, V any](p domain.DuplicatePolicy) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.policy = p
	}
}

// WithOnRemove registers a callback that receives ownership of every value
// leaving the cache, whatever the reason.
func WithOnRemove[K comparable, V any](fn func(key K, value V, reason RemoveReason)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onRemove = fn
	}
}

// Cache is an LRU map with a fixed capacity.
type Cache[K comparable, V any] struct {
	capacity int
	policy   domain.DuplicatePolicy
	onRemove func(K, V, RemoveReason)

	slots []slot[K, V]
	free  []int32
	head  int32
	tail  int32
	nodes int

	index map[K]int32
}

// New creates a Cache holding at most capacity live entries.
// It returns domain.ErrInvalidCapacity if capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidCapacity, "cannot create lru cache"), "capacity", capacity)
	}

	c := &Cache[K, V]{
		capacity: capacity,
		policy:   domain.DuplicateStrict,
		head:     nilSlot,
		tail:     nilSlot,
		index:    make(map[K]int32),
	}
	for _, opt := range opts {
		opt(c)
	}
	policy, err := domain.ParseDuplicatePolicy(string(c.policy))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "cannot create lru cache"), "policy", string(c.policy))
	}
	c.policy = policy
	return c, nil
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(i)
	return c.slots[i].value, true
}

// Peek returns the value stored under key without touching its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.slots[i].value, true
}

// Contains reports whether key is present, without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Put stores value under key as the most recently used entry and returns the
// number of live entries evicted to stay within capacity.
func (c *Cache[K, V]) Put(key K, value V) int {
	if old, ok := c.index[key]; ok {
		if c.policy == domain.DuplicateLazy {
			c.slots[old].stale = true
		} else {
			c.unlink(old)
			c.release(old, Replaced)
		}
	}

	i := c.alloc(key, value)
	c.pushFront(i)
	c.index[key] = i

	evicted := 0
	for c.nodes > c.capacity && c.tail != nilSlot {
		t := c.tail
		if !c.slots[t].stale && len(c.index) <= c.capacity {
			break
		}
		c.unlink(t)
		if c.slots[t].stale {
			c.release(t, Replaced)
			continue
		}
		delete(c.index, c.slots[t].key)
		c.release(t, Evicted)
		evicted++
	}
	if c.nodes-len(c.index) > c.capacity {
		c.sweep()
	}
	return evicted
}

// sweep releases every stale node. Under the lazy policy stale nodes can sit
// behind a live tail indefinitely, so they are capped at the capacity.
func (c *Cache[K, V]) sweep() {
	for i := c.head; i != nilSlot; {
		next := c.slots[i].next
		if c.slots[i].stale {
			c.unlink(i)
			c.release(i, Replaced)
		}
		i = next
	}
}

// Purge removes every entry, stale ones included, handing each to OnRemove.
func (c *Cache[K, V]) Purge() {
	for i := c.head; i != nilSlot; {
		next := c.slots[i].next
		c.release(i, Purged)
		i = next
	}
	c.slots = nil
	c.free = nil
	c.head, c.tail = nilSlot, nilSlot
	c.nodes = 0
	clear(c.index)
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	return len(c.index)
}

// Nodes returns the length of the recency list. It only differs from Len
// under the lazy policy, where it also counts unreachable replaced entries.
func (c *Cache[K, V]) Nodes() int {
	return c.nodes
}

// Cap returns the capacity the cache was created with.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Policy returns the duplicate-key policy in effect.
func (c *Cache[K, V]) Policy() domain.DuplicatePolicy {
	return c.policy
}

// All yields live entries from most to least recently used.
// The cache must not be modified during iteration.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := c.head; i != nilSlot; i = c.slots[i].next {
			s := &c.slots[i]
			if s.stale {
				continue
			}
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Keys returns live keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for k := range c.All() {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache[K, V]) alloc(key K, value V) int32 {
	s := slot[K, V]{key: key, value: value, prev: nilSlot, next: nilSlot}
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[i] = s
		return i
	}
	c.slots = append(c.slots, s)
	return int32(len(c.slots) - 1) //nolint:gosec // bounded by capacity plus lazy duplicates
}

// release hands the slot's value to OnRemove and returns the slot to the free list.
// The slot must already be unlinked.
func (c *Cache[K, V]) release(i int32, reason RemoveReason) {
	s := c.slots[i]
	c.slots[i] = slot[K, V]{prev: nilSlot, next: nilSlot}
	c.free = append(c.free, i)
	if c.onRemove != nil {
		c.onRemove(s.key, s.value, reason)
	}
}

func (c *Cache[K, V]) pushFront(i int32) {
	s := &c.slots[i]
	s.prev = nilSlot
	s.next = c.head
	if c.head != nilSlot {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == nilSlot {
		c.tail = i
	}
	c.nodes++
}

func (c *Cache[K, V]) unlink(i int32) {
	s := &c.slots[i]
	if s.prev != nilSlot {
		c.slots[s.prev].next = s.next
	} else {
		c.head = s.next
	}
	if s.next != nilSlot {
		c.slots[s.next].prev = s.prev
	} else {
		c.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
	c.nodes--
}

func (c *Cache[K, V]) moveToFront(i int32) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}
