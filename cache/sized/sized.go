// Package sized implements the bounded LRU cache store: an
// open-addressing hash index of stable slot handles over a
// recency-ordered slot arena. Once the store is full, inserting a new key
// evicts the least recently used entry.
package sized

import (
	"fmt"

	"github.com/abelikov/memocache/cache"
	"github.com/abelikov/memocache/internal/arena"
	"github.com/abelikov/memocache/internal/hasher"
	"github.com/abelikov/memocache/internal/index"
)

// entry is one stored key/value pair, owned exclusively by the arena.
// The key lives here and nowhere else; the index refers to it by handle.
type entry[K comparable, V any] struct {
	key K
	val V
}

// Cache is a size-bounded LRU store over comparable keys.
//
// Cache is not safe for concurrent use. Callers that share one across
// goroutines must hold an external lock spanning each whole call,
// including the fetch suspension inside GetOrFetch.
type Cache[K comparable, V any] struct {
	idx      *index.Table
	order    *arena.List[entry[K, V]]
	seed     uint64
	capacity int
	hits     uint64
	misses   uint64

	metrics cache.Metrics
	onEvict func(K, V)
}

var (
	_ cache.Store[string, int]        = (*Cache[string, int])(nil)
	_ cache.ContextStore[string, int] = (*Cache[string, int])(nil)
)

// New returns a Cache bounded to capacity entries, with backing storage
// preallocated. capacity must be greater than zero; New panics otherwise.
// Use TryNew to validate instead of panicking.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	c, err := TryNew[K, V](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// TryNew is New reporting bad capacities as errors: cache.ErrZeroCapacity
// for capacity <= 0, cache.ErrCapacityOverflow when the index
// preallocation cannot be sized.
func TryNew[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (got %d)", cache.ErrZeroCapacity, capacity)
	}
	idx, err := index.TryNew(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrCapacityOverflow, err)
	}
	c := &Cache[K, V]{
		idx:      idx,
		order:    arena.New[entry[K, V]](capacity),
		seed:     hasher.NewSeed(),
		capacity: capacity,
		metrics:  cache.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = cache.NoopMetrics{}
	}
	return c, nil
}

// Get returns the value stored under key. A hit promotes the entry to
// most recently used and counts toward Hits; a miss counts toward
// Misses.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if ref, ok := c.GetRefIf(key, nil); ok {
		return *ref, true
	}
	var zero V
	return zero, false
}

// GetRef is Get returning a reference to the stored value for in-place
// mutation. The reference is valid until the next structural change.
func (c *Cache[K, V]) GetRef(key K) (*V, bool) {
	return c.GetRefIf(key, nil)
}

// GetIf is Get with a validity predicate: the stored value must also
// satisfy valid to count as a hit. A present-but-invalid entry counts as
// a miss and is NOT removed; whether a stale entry is evicted eagerly or
// refreshed by a later Set is the calling layer's policy, not this
// store's.
func (c *Cache[K, V]) GetIf(key K, valid func(V) bool) (V, bool) {
	if ref, ok := c.GetRefIf(key, valid); ok {
		return *ref, true
	}
	var zero V
	return zero, false
}

// GetRefIf is GetIf returning a reference to the stored value. A nil
// predicate accepts every value.
func (c *Cache[K, V]) GetRefIf(key K, valid func(V) bool) (*V, bool) {
	if h, ok := c.findHandle(c.hash(key), key); ok {
		e := c.order.At(h)
		if valid == nil || valid(e.val) {
			c.order.MoveToFront(h)
			c.hits++
			c.metrics.Hit()
			return &e.val, true
		}
	}
	c.misses++
	c.metrics.Miss()
	return nil, false
}

// Set inserts or updates key and promotes it to most recently used. An
// existing key keeps its slot and handle, only the value is replaced, so
// an update never evicts. A new key is pushed, indexed, and followed by
// the eviction check. Set never touches the hit/miss counters.
func (c *Cache[K, V]) Set(key K, value V) (prev V, replaced bool) {
	hash := c.hash(key)
	if h, ok := c.findHandle(hash, key); ok {
		old := c.order.Set(h, entry[K, V]{key: key, val: value})
		c.order.MoveToFront(h)
		c.evictOverflow()
		return old.val, true
	}
	h := c.order.PushFront(entry[K, V]{key: key, val: value})
	c.registerHandle(hash, h)
	c.evictOverflow()
	var zero V
	return zero, false
}

// Remove deletes key from the index and the arena, returning the removed
// value. No metrics effect, and no eviction callback.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	h, ok := c.idx.Remove(c.hash(key), func(h arena.Handle) bool {
		return c.order.At(h).key == key
	})
	if !ok {
		var zero V
		return zero, false
	}
	e := c.order.Remove(h)
	c.metrics.Size(c.idx.Len())
	return e.val, true
}

// Clear drops every entry, retaining the backing allocations for reuse.
func (c *Cache[K, V]) Clear() {
	c.idx.Clear()
	c.order.Clear()
	c.metrics.Size(0)
}

// Reset restores the freshly constructed state. Capacity is fixed for the
// store's lifetime, so Reset is Clear.
func (c *Cache[K, V]) Reset() { c.Clear() }

// ResetMetrics zeroes the hit/miss counters. Entries, recency order, and
// capacity are untouched.
func (c *Cache[K, V]) ResetMetrics() { c.hits, c.misses = 0, 0 }

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int { return c.idx.Len() }

// Capacity returns the configured entry limit.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Hits returns lookup hits since construction or the last ResetMetrics.
func (c *Cache[K, V]) Hits() uint64 { return c.hits }

// Misses returns lookup misses since construction or the last
// ResetMetrics.
func (c *Cache[K, V]) Misses() uint64 { return c.misses }

// -------------------- internals --------------------

// hash derives the per-instance hash of key.
func (c *Cache[K, V]) hash(key K) uint64 { return hasher.Sum64(c.seed, key) }

// findHandle resolves key to its arena handle through the index,
// comparing each candidate handle against the arena-resolved key.
func (c *Cache[K, V]) findHandle(hash uint64, key K) (arena.Handle, bool) {
	return c.idx.Find(hash, func(h arena.Handle) bool {
		return c.order.At(h).key == key
	})
}

// registerHandle indexes a freshly pushed slot. The rehash closure feeds
// index growth: the table stores handles, so re-hashing an entry means
// resolving its key back through the arena.
func (c *Cache[K, V]) registerHandle(hash uint64, h arena.Handle) {
	c.idx.InsertUnique(hash, h, func(h arena.Handle) uint64 {
		return c.hash(c.order.At(h).key)
	})
}

// evictOverflow restores Len <= Capacity by evicting least recently used
// entries. At most one entry can overflow per insert, but the bound is
// enforced as a loop so any drift is corrected, not accumulated.
func (c *Cache[K, V]) evictOverflow() {
	for c.idx.Len() > c.capacity {
		tail := c.order.Back()
		key := c.order.At(tail).key
		if _, ok := c.idx.Remove(c.hash(key), func(h arena.Handle) bool { return h == tail }); !ok {
			// The LRU slot is not indexed: the no-duplicate-key
			// invariant is broken and the cache is corrupt. Fail loudly.
			panic("sized: eviction could not locate the LRU key in the index")
		}
		e := c.order.Remove(tail)
		c.metrics.Evict()
		if c.onEvict != nil {
			c.onEvict(e.key, e.val)
		}
	}
	c.metrics.Size(c.idx.Len())
}
