package lru_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/engine/lru"
	"go.trai.ch/zerr"
)

type removal struct {
	key    string
	value  int
	reason lru.RemoveReason
}

func newCache(t *testing.T, capacity int, policy domain.DuplicatePolicy) (*lru.Cache[string, int], *[]removal) {
	t.Helper()
	var removed []removal
	c, err := lru.New(capacity,
		lru.WithPolicy[string, int](policy),
		lru.WithOnRemove(func(k string, v int, r lru.RemoveReason) {
			removed = append(removed, removal{key: k, value: v, reason: r})
		}),
	)
	require.NoError(t, err)
	return c, &removed
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			c, err := lru.New[string, int](capacity)
			require.ErrorIs(t, err, domain.ErrInvalidCapacity)
			assert.Nil(t, c)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Equal(t, capacity, zErr.Metadata()["capacity"])
		})
	}
}

func TestNew_InvalidPolicy(t *testing.T) {
	_, err := lru.New(4, lru.WithPolicy[string, int]("fifo"))
	require.ErrorIs(t, err, domain.ErrInvalidDuplicatePolicy)
}

func TestNew_Defaults(t *testing.T) {
	c, err := lru.New[string, int](3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Cap())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, domain.DuplicateStrict, c.Policy())
}

func TestGet_Miss(t *testing.T) {
	c, _ := newCache(t, 2, domain.DuplicateStrict)
	v, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Zero(t, v)
}

// Every inserted key stays retrievable while the cache is not over capacity.
func TestPutGet_WithinCapacity(t *testing.T) {
	c, removed := newCache(t, 8, domain.DuplicateStrict)
	for i := range 8 {
		assert.Zero(t, c.Put(fmt.Sprint(i), i))
	}
	for i := range 8 {
		v, ok := c.Get(fmt.Sprint(i))
		require.True(t, ok, "key %d", i)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 8, c.Len())
	assert.Empty(t, *removed)
}

func TestPut_ReturnsLatestValue(t *testing.T) {
	for _, policy := range []domain.DuplicatePolicy{domain.DuplicateStrict, domain.DuplicateLazy} {
		t.Run(string(policy), func(t *testing.T) {
			c, _ := newCache(t, 4, policy)
			c.Put("a", 1)
			c.Put("b", 2)
			c.Put("a", 3)

			v, ok := c.Get("a")
			require.True(t, ok)
			assert.Equal(t, 3, v)
			assert.Equal(t, 2, c.Len())
		})
	}
}

func TestPut_BoundedSize(t *testing.T) {
	for _, policy := range []domain.DuplicatePolicy{domain.DuplicateStrict, domain.DuplicateLazy} {
		t.Run(string(policy), func(t *testing.T) {
			c, _ := newCache(t, 5, policy)
			for i := range 200 {
				c.Put(fmt.Sprint(i%17), i)
				if i%3 == 0 {
					c.Get(fmt.Sprint(i % 7))
				}
				require.LessOrEqual(t, c.Len(), 5)
			}
		})
	}
}

func TestPut_EvictionOrder(t *testing.T) {
	const capacity, extra = 4, 3
	c, removed := newCache(t, capacity, domain.DuplicateStrict)

	for i := range capacity + extra {
		c.Put(fmt.Sprint(i), i)
	}

	for i := range extra {
		assert.False(t, c.Contains(fmt.Sprint(i)), "key %d should be evicted", i)
	}
	for i := extra; i < capacity+extra; i++ {
		assert.True(t, c.Contains(fmt.Sprint(i)), "key %d should be present", i)
	}
	assert.Equal(t, []removal{
		{key: "0", value: 0, reason: lru.Evicted},
		{key: "1", value: 1, reason: lru.Evicted},
		{key: "2", value: 2, reason: lru.Evicted},
	}, *removed)
}

func TestGet_PromotesEntry(t *testing.T) {
	c, removed := newCache(t, 3, domain.DuplicateStrict)
	c.Put("A", 1)
	c.Put("B", 2)
	c.Put("C", 3)

	_, ok := c.Get("A")
	require.True(t, ok)

	assert.Equal(t, 1, c.Put("D", 4))
	assert.False(t, c.Contains("B"))
	assert.True(t, c.Contains("A"))
	assert.Equal(t, []string{"D", "A", "C"}, c.Keys())
	assert.Equal(t, []removal{{key: "B", value: 2, reason: lru.Evicted}}, *removed)
}

func TestPeek_DoesNotPromote(t *testing.T) {
	c, _ := newCache(t, 2, domain.DuplicateStrict)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("c", 3)
	assert.False(t, c.Contains("a"))
}

func TestStrict_ReplacementReleasesOldValue(t *testing.T) {
	c, removed := newCache(t, 2, domain.DuplicateStrict)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Nodes())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, []removal{{key: "a", value: 1, reason: lru.Replaced}}, *removed)

	// b is now least recently used.
	c.Put("c", 3)
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("a"))
}

func TestLazy_StaleNodeAgesOut(t *testing.T) {
	c, removed := newCache(t, 3, domain.DuplicateLazy)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)

	// The replaced node is still in the list but unreachable.
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Nodes())
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	// The stale "a" node sits at the tail. Reclaiming it must not drop the
	// live "a" entry from the index.
	assert.Zero(t, c.Put("c", 3))
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Nodes())
	for _, k := range []string{"a", "b", "c"} {
		assert.True(t, c.Contains(k), k)
	}

	assert.Equal(t, 1, c.Put("d", 4))
	assert.False(t, c.Contains("b"))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	assert.Equal(t, []removal{
		{key: "a", value: 1, reason: lru.Replaced},
		{key: "b", value: 2, reason: lru.Evicted},
	}, *removed)
}

func TestLazy_StaleNodesDoNotCountAgainstCapacity(t *testing.T) {
	c, removed := newCache(t, 3, domain.DuplicateLazy)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("b", 3)
	c.Put("b", 4)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.Nodes())

	// A live tail is kept while the index is within capacity, so the list may
	// hold more nodes than the capacity.
	assert.Empty(t, *removed)
	c.Put("c", 5)
	assert.Equal(t, 5, c.Nodes())
	assert.Equal(t, 3, c.Len())
	for _, k := range []string{"a", "b", "c"} {
		assert.True(t, c.Contains(k), k)
	}
}

func TestLazy_StaleNodesAreBounded(t *testing.T) {
	c, removed := newCache(t, 2, domain.DuplicateLazy)
	c.Put("a", 0)
	for i := range 50 {
		c.Put("b", i)
		require.LessOrEqual(t, c.Nodes(), 2*c.Cap())
	}

	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 49, v)
	assert.True(t, c.Contains("a"))
	for _, r := range *removed {
		assert.Equal(t, lru.Replaced, r.reason)
		assert.Equal(t, "b", r.key)
	}
}

func TestScenario_CapacityTwo(t *testing.T) {
	c, err := lru.New[domain.SignatureKey, string](2)
	require.NoError(t, err)

	k12 := domain.ShapeSignature{1, 2}.Key()
	k34 := domain.ShapeSignature{3, 4}.Key()
	k56 := domain.ShapeSignature{5, 6}.Key()

	c.Put(k12, "K1")
	c.Put(k34, "K2")

	v, ok := c.Get(k12)
	require.True(t, ok)
	assert.Equal(t, "K1", v)

	c.Put(k56, "K3")

	assert.True(t, c.Contains(k12))
	assert.True(t, c.Contains(k56))
	assert.False(t, c.Contains(k34))
}

func TestPurge(t *testing.T) {
	c, removed := newCache(t, 3, domain.DuplicateLazy)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3)
	*removed = nil

	c.Purge()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Nodes())
	assert.ElementsMatch(t, []removal{
		{key: "a", value: 3, reason: lru.Purged},
		{key: "b", value: 2, reason: lru.Purged},
		{key: "a", value: 1, reason: lru.Purged},
	}, *removed)

	// The cache is reusable after a purge.
	c.Put("z", 26)
	v, ok := c.Get("z")
	require.True(t, ok)
	assert.Equal(t, 26, v)
}

func TestAll_StopsEarly(t *testing.T) {
	c, _ := newCache(t, 4, domain.DuplicateStrict)
	for i := range 4 {
		c.Put(fmt.Sprint(i), i)
	}
	var seen []string
	for k := range c.All() {
		seen = append(seen, k)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"3", "2"}, seen)
}

func TestRemoveReason_String(t *testing.T) {
	assert.Equal(t, "evicted", lru.Evicted.String())
	assert.Equal(t, "replaced", lru.Replaced.String())
	assert.Equal(t, "purged", lru.Purged.String())
	assert.Equal(t, "unknown", lru.RemoveReason(42).String())
}

func BenchmarkGetHit(b *testing.B) {
	c, err := lru.New[int, int](1024)
	require.NoError(b, err)
	for i := range 1024 {
		c.Put(i, i)
	}
	for i := 0; b.Loop(); i++ {
		c.Get(i & 1023)
	}
}

func BenchmarkPutEvict(b *testing.B) {
	c, err := lru.New[int, int](1024)
	require.NoError(b, err)
	for i := 0; b.Loop(); i++ {
		c.Put(i, i)
	}
}
