// Package cache implements the bounded, namespaced caches and single-flight coordination
// used by expression evaluation.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
)

// entry is one cached value together with the size it was charged.
type entry struct {
	key   domain.CacheKey
	value domain.Sized
	size  int64
}

// Stats is a snapshot of a cache's counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Size      int64
}

// BoundedCache is a least-recently-used cache whose total size is bounded by a limit.
// The list front holds the most recently touched entry. It is safe for concurrent use.
type BoundedCache struct {
	mu       sync.Mutex
	ns       domain.Namespace
	limit    int64
	policy   domain.Policy
	entries  map[domain.CacheKey]*list.Element
	lru      *list.List
	total    int64
	observer ports.CacheObserver

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewBoundedCache creates a cache charging entries by policy. A non-positive limit disables eviction.
func NewBoundedCache(ns domain.Namespace, limit int, policy domain.Policy, observer ports.CacheObserver) *BoundedCache {
	return &BoundedCache{
		ns:       ns,
		limit:    int64(limit),
		policy:   policy,
		entries:  make(map[domain.CacheKey]*list.Element),
		lru:      list.New(),
		observer: observer,
	}
}

// Namespace returns the namespace the cache serves.
func (c *BoundedCache) Namespace() domain.Namespace {
	return c.ns
}

// Get returns the value under key and marks it most recently used.
func (c *BoundedCache) Get(key domain.CacheKey) (domain.Sized, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		if c.observer != nil {
			c.observer.Miss(c.ns)
		}
		return nil, false
	}

	c.lru.MoveToFront(elem)
	c.hits.Add(1)
	if c.observer != nil {
		c.observer.Hit(c.ns)
	}
	return elem.Value.(*entry).value, true
}

// Put stores value under key, marks it most recently used and evicts
// least recently used entries until the total size fits the limit again.
func (c *BoundedCache) Put(key domain.CacheKey, value domain.Sized) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.measure(value)
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		c.total += size - e.size
		e.value = value
		e.size = size
		c.lru.MoveToFront(elem)
	} else {
		c.entries[key] = c.lru.PushFront(&entry{key: key, value: value, size: size})
		c.total += size
	}

	c.evictLocked()
	c.notifyResizeLocked()
}

// Remove deletes key and returns the value it held.
func (c *BoundedCache) Remove(key domain.CacheKey) (domain.Sized, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := c.removeElementLocked(elem)
	c.notifyResizeLocked()
	return e.value, true
}

// Clear removes every entry.
func (c *BoundedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Len returns the number of entries.
func (c *BoundedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TotalSize returns the sum of the charged sizes of all entries.
func (c *BoundedCache) TotalSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Limit returns the configured size limit.
func (c *BoundedCache) Limit() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

// Policy returns the configured size policy.
func (c *BoundedCache) Policy() domain.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// Keys returns the cached keys from most to least recently used.
func (c *BoundedCache) Keys() []domain.CacheKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]domain.CacheKey, 0, len(c.entries))
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry).key)
	}
	return keys
}

// Stats returns a snapshot of the cache counters.
func (c *BoundedCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   len(c.entries),
		Size:      c.total,
	}
}

// limited reports whether the cache evicts at all.
func (c *BoundedCache) limited() bool {
	return c.limit > 0
}

func (c *BoundedCache) measure(value domain.Sized) int64 {
	if c.policy == domain.PolicyByteSize && value != nil {
		return value.SizeOf()
	}
	return 1
}

// evictLocked drops entries from the back of the list. Entries touched at the same
// moment keep insertion order in the list, so the oldest one goes first.
func (c *BoundedCache) evictLocked() {
	if !c.limited() {
		return
	}
	for c.total > c.limit {
		back := c.lru.Back()
		if back == nil {
			return
		}
		c.removeElementLocked(back)
		c.evictions.Add(1)
		if c.observer != nil {
			c.observer.Evict(c.ns)
		}
	}
}

func (c *BoundedCache) removeElementLocked(elem *list.Element) *entry {
	e := c.lru.Remove(elem).(*entry)
	delete(c.entries, e.key)
	c.total -= e.size
	return e
}

func (c *BoundedCache) clearLocked() {
	c.entries = make(map[domain.CacheKey]*list.Element)
	c.lru.Init()
	c.total = 0
	c.notifyResizeLocked()
}

// reconfigureLocked applies a new limit and policy. Existing entries are dropped
// because their charged sizes were measured under the previous policy.
func (c *BoundedCache) reconfigureLocked(limit int, policy domain.Policy) {
	c.limit = int64(limit)
	c.policy = policy
	c.clearLocked()
}

func (c *BoundedCache) notifyResizeLocked() {
	if c.observer != nil {
		c.observer.Resize(c.ns, len(c.entries), c.total)
	}
}
