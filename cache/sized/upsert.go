package sized

import "context"

// GetOrSetWith returns the value under key, invoking supply to produce
// and insert one on miss. The returned reference is valid until the next
// structural change.
func (c *Cache[K, V]) GetOrSetWith(key K, supply func() V) *V {
	ref, _, _ := c.GetOrSetWithIf(key, supply, nil)
	return ref
}

// GetOrSetWithIf is GetOrSetWith with a validity predicate.
//
// Outcomes:
//   - present and valid: promoted to most recently used, counted as a
//     hit; supply is not invoked.
//   - present but invalid: supply's value replaces the old one in the
//     entry's existing slot, the entry is promoted, and the lookup is
//     counted as a miss.
//   - absent: supply's value is inserted as most recently used, followed
//     by the eviction check; counted as a miss.
//
// The extra returns let callers tell a fresh insert (wasPresent false)
// from a present-but-refreshed entry (wasPresent true, wasValid false).
func (c *Cache[K, V]) GetOrSetWithIf(key K, supply func() V, valid func(V) bool) (ref *V, wasPresent, wasValid bool) {
	ref, wasPresent, wasValid, _ = c.upsert(key, func() (V, error) { return supply(), nil }, valid)
	return ref, wasPresent, wasValid
}

// TryGetOrSetWith is GetOrSetWith with a fallible supplier. The supplier
// runs to completion before any structural mutation commits, so on error
// the store is left exactly as it was for key and the error is returned
// verbatim.
func (c *Cache[K, V]) TryGetOrSetWith(key K, supply func() (V, error)) (*V, error) {
	ref, _, _, err := c.upsert(key, supply, nil)
	return ref, err
}

// TryGetOrSetWithIf combines the fallible supplier with a validity
// predicate; see GetOrSetWithIf for the outcome matrix.
func (c *Cache[K, V]) TryGetOrSetWithIf(key K, supply func() (V, error), valid func(V) bool) (ref *V, wasPresent, wasValid bool, err error) {
	return c.upsert(key, supply, valid)
}

// GetOrFetch is the suspension-capable upsert: fetch may block on I/O or
// another goroutine while the store waits. The hash, the index probe, and
// the hit/miss decision all happen synchronously before fetch runs, and
// the structural mutation commits only after fetch returns nil. A fetch
// that fails (including one that returns ctx.Err() after cancellation)
// leaves the store exactly as if the call never happened, except for the
// miss counter.
//
// There is no per-key coordination: two concurrent callers missing on the
// same key both fetch, and the later commit wins.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, fetch func(context.Context) (V, error)) (*V, error) {
	ref, _, _, err := c.upsert(key, func() (V, error) { return fetch(ctx) }, nil)
	return ref, err
}

// GetOrFetchIf is GetOrFetch with a validity predicate; see
// GetOrSetWithIf for the outcome matrix.
func (c *Cache[K, V]) GetOrFetchIf(ctx context.Context, key K, fetch func(context.Context) (V, error), valid func(V) bool) (ref *V, wasPresent, wasValid bool, err error) {
	return c.upsert(key, func() (V, error) { return fetch(ctx) }, valid)
}

// upsert is the decide-then-commit core shared by every get-or-set
// variant. Decide: hash, probe, classify hit/miss, bump counters. The
// only potentially slow step is the supplier itself; commit (in-place
// replace or push+index+eviction check) happens strictly after it
// succeeds.
func (c *Cache[K, V]) upsert(key K, supply func() (V, error), valid func(V) bool) (ref *V, wasPresent, wasValid bool, err error) {
	hash := c.hash(key)
	if h, ok := c.findHandle(hash, key); ok {
		e := c.order.At(h)
		if valid == nil || valid(e.val) {
			c.hits++
			c.metrics.Hit()
			c.order.MoveToFront(h)
			return &e.val, true, true, nil
		}
		// Present but stale: refresh in place, keeping the slot's
		// handle. On supplier error nothing moves, not even the recency
		// position.
		c.misses++
		c.metrics.Miss()
		v, err := supply()
		if err != nil {
			return nil, true, false, err
		}
		c.order.Set(h, entry[K, V]{key: key, val: v})
		c.order.MoveToFront(h)
		return &c.order.At(h).val, true, false, nil
	}
	c.misses++
	c.metrics.Miss()
	v, err := supply()
	if err != nil {
		return nil, false, false, err
	}
	h := c.order.PushFront(entry[K, V]{key: key, val: v})
	c.registerHandle(hash, h)
	c.evictOverflow()
	return &c.order.At(h).val, false, false, nil
}
