package sized

import "iter"

// All iterates live entries from most to least recently used. The
// sequence is lazy and restartable. The cache must not be mutated during
// a walk, including by Get, which reorders.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range c.order.All() {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Keys iterates keys from most to least recently used.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range c.order.All() {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Values iterates values from most to least recently used.
func (c *Cache[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range c.order.All() {
			if !yield(e.val) {
				return
			}
		}
	}
}

// Retain keeps only the entries for which keep returns true. The doomed
// keys are collected in one pass before anything is removed, so the arena
// is never mutated mid-walk; survivors keep their relative recency order.
// No metrics effect.
func (c *Cache[K, V]) Retain(keep func(K, V) bool) {
	var doomed []K
	for k, v := range c.All() {
		if !keep(k, v) {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		c.Remove(k)
	}
}

// Clone returns a fully independent copy with its own index, arena, and
// counters. The hash seed is carried over so the copied index entries
// keep addressing the right buckets; it remains per-instance state.
func (c *Cache[K, V]) Clone() *Cache[K, V] {
	return &Cache[K, V]{
		idx:      c.idx.Clone(),
		order:    c.order.Clone(),
		seed:     c.seed,
		capacity: c.capacity,
		hits:     c.hits,
		misses:   c.misses,
		metrics:  c.metrics,
		onEvict:  c.onEvict,
	}
}

// EqualFunc reports whether c and other hold the same live entries, with
// values compared by eq. Recency order, internal table sizing, and the
// hit/miss counters do not participate. Neither cache is touched: no
// promotion, no counter changes.
func (c *Cache[K, V]) EqualFunc(other *Cache[K, V], eq func(V, V) bool) bool {
	if c.Len() != other.Len() {
		return false
	}
	for k, v := range c.All() {
		h, ok := other.findHandle(other.hash(k), k)
		if !ok || !eq(v, other.order.At(h).val) {
			return false
		}
	}
	return true
}

// Equal reports whether two caches hold equal entry sets under ==.
func Equal[K, V comparable](a, b *Cache[K, V]) bool {
	return a.EqualFunc(b, func(x, y V) bool { return x == y })
}
