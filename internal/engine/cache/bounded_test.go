package cache_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports/mocks"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.uber.org/mock/gomock"
)

func key(name string) domain.CacheKey {
	return domain.FeatureKey("X", "$"+name, 0, 4, domain.Day)
}

func TestBoundedCache_EvictsLeastRecentlyTouched(t *testing.T) {
	c := cache.NewBoundedCache(domain.NamespaceFeature, 2, domain.PolicyCount, nil)

	c.Put(key("a"), domain.Series{1})
	c.Put(key("b"), domain.Series{2})

	_, ok := c.Get(key("a"))
	require.True(t, ok)

	c.Put(key("c"), domain.Series{3})

	_, ok = c.Get(key("b"))
	assert.False(t, ok, "b should have been evicted")

	a, ok := c.Get(key("a"))
	require.True(t, ok)
	assert.Equal(t, domain.Series{1}, a)

	cv, ok := c.Get(key("c"))
	require.True(t, ok)
	assert.Equal(t, domain.Series{3}, cv)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestBoundedCache_TiesBreakByInsertionOrder(t *testing.T) {
	c := cache.NewBoundedCache(domain.NamespaceFeature, 3, domain.PolicyCount, nil)

	// None of these is touched after insertion, so recency equals insertion order.
	c.Put(key("a"), domain.Series{1})
	c.Put(key("b"), domain.Series{2})
	c.Put(key("c"), domain.Series{3})
	c.Put(key("d"), domain.Series{4})
	c.Put(key("e"), domain.Series{5})

	assert.Equal(t, []domain.CacheKey{key("e"), key("d"), key("c")}, c.Keys())
}

func TestBoundedCache_KeepsMostRecentlyTouchedKeys(t *testing.T) {
	const limit = 5
	rng := rand.New(rand.NewPCG(7, 11))
	c := cache.NewBoundedCache(domain.NamespaceFeature, limit, domain.PolicyCount, nil)

	// model holds keys from most to least recently touched.
	var model []domain.CacheKey
	touch := func(k domain.CacheKey) {
		model = slices.DeleteFunc(model, func(m domain.CacheKey) bool { return m == k })
		model = slices.Insert(model, 0, k)
		if len(model) > limit {
			model = model[:limit]
		}
	}

	for i := range 2000 {
		k := key(fmt.Sprintf("k%d", rng.IntN(12)))
		switch rng.IntN(3) {
		case 0:
			if _, ok := c.Get(k); ok {
				touch(k)
			}
		default:
			c.Put(k, domain.Series{float64(i)})
			touch(k)
		}

		require.LessOrEqual(t, c.Len(), limit)
		require.Equal(t, model, c.Keys(), "step %d", i)
	}
}

func TestBoundedCache_Unbounded(t *testing.T) {
	for _, limit := range []int{0, -1} {
		c := cache.NewBoundedCache(domain.NamespaceFeature, limit, domain.PolicyCount, nil)
		for i := range 1000 {
			c.Put(key(fmt.Sprintf("k%d", i)), domain.Series{1})
		}
		assert.Equal(t, 1000, c.Len())
		assert.Equal(t, int64(0), c.Stats().Evictions)
	}
}

func TestBoundedCache_ByteSizePolicy(t *testing.T) {
	small := domain.Series{1, 2}
	large := domain.NewSeries(100)
	limit := int(2*small.SizeOf() + 1)

	c := cache.NewBoundedCache(domain.NamespaceFeature, limit, domain.PolicyByteSize, nil)
	c.Put(key("a"), small)
	c.Put(key("b"), small)
	assert.Equal(t, 2*small.SizeOf(), c.TotalSize())

	t.Run("overwrite recomputes size", func(t *testing.T) {
		c.Put(key("a"), domain.Series{1})
		assert.Equal(t, domain.Series{1}.SizeOf()+small.SizeOf(), c.TotalSize())
	})

	t.Run("oversized value evicts everything including itself", func(t *testing.T) {
		c.Put(key("big"), large)
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, int64(0), c.TotalSize())
	})
}

func TestBoundedCache_RemoveAndClear(t *testing.T) {
	c := cache.NewBoundedCache(domain.NamespaceFeature, 10, domain.PolicyCount, nil)
	c.Put(key("a"), domain.Series{1})
	c.Put(key("b"), domain.Series{2})

	v, ok := c.Remove(key("a"))
	require.True(t, ok)
	assert.Equal(t, domain.Series{1}, v)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1), c.TotalSize())

	_, ok = c.Remove(key("a"))
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.TotalSize())
	assert.Empty(t, c.Keys())
}

func TestBoundedCache_NotifiesObserver(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockCacheObserver(ctrl)

	observer.EXPECT().Resize(domain.NamespaceFeature, gomock.Any(), gomock.Any()).AnyTimes()
	observer.EXPECT().Miss(domain.NamespaceFeature).Times(1)
	observer.EXPECT().Hit(domain.NamespaceFeature).Times(1)
	observer.EXPECT().Evict(domain.NamespaceFeature).Times(1)

	c := cache.NewBoundedCache(domain.NamespaceFeature, 1, domain.PolicyCount, observer)
	_, _ = c.Get(key("a"))
	c.Put(key("a"), domain.Series{1})
	_, _ = c.Get(key("a"))
	c.Put(key("b"), domain.Series{2})
}

func TestBoundedCache_ConcurrentAccess(t *testing.T) {
	const limit = 16
	c := cache.NewBoundedCache(domain.NamespaceFeature, limit, domain.PolicyCount, nil)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			for i := range 500 {
				k := key(fmt.Sprintf("k%d", (w*31+i)%40))
				if i%3 == 0 {
					c.Remove(k)
					continue
				}
				if _, ok := c.Get(k); !ok {
					c.Put(k, domain.Series{float64(i)})
				}
			}
		})
	}
	wg.Wait()

	stats := c.Stats()
	assert.LessOrEqual(t, stats.Entries, limit)
	assert.Equal(t, int64(stats.Entries), stats.Size)
	assert.Len(t, c.Keys(), stats.Entries)
}
