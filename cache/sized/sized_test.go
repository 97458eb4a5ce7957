package sized

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelikov/memocache/cache"
)

// keyOrder collects keys from MRU to LRU.
func keyOrder[K comparable, V any](c *Cache[K, V]) []K {
	return slices.Collect(c.Keys())
}

func TestCache_LRUOrderWalk(t *testing.T) {
	c := New[int, int](5)

	for k := 1; k <= 5; k++ {
		prev, replaced := c.Set(k, 100)
		require.False(t, replaced, "key %d is new", k)
		require.Zero(t, prev)
	}
	require.Equal(t, []int{5, 4, 3, 2, 1}, keyOrder(c))

	// Overflow evicts the true LRU each time.
	c.Set(6, 100)
	assert.Equal(t, []int{6, 5, 4, 3, 2}, keyOrder(c))
	c.Set(7, 100)
	assert.Equal(t, []int{7, 6, 5, 4, 3}, keyOrder(c))

	// A hit promotes to MRU.
	_, ok := c.Get(3)
	require.True(t, ok)
	assert.Equal(t, []int{3, 7, 6, 5, 4}, keyOrder(c))

	// The evicted keys are gone.
	_, ok = c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 5, c.Len())
}

// Re-inserting a present key must reuse its slot: a duplicate slot would
// make the next eviction drop an unrelated live key.
func TestCache_ReinsertAtCapacityRegression(t *testing.T) {
	c := New[int, int](2)

	prev, replaced := c.Set(1, 100)
	require.False(t, replaced)
	_ = prev

	prev, replaced = c.Set(1, 100)
	require.True(t, replaced)
	require.Equal(t, 100, prev)
	require.Equal(t, 1, c.Len(), "re-insert must not grow the cache")

	_, replaced = c.Set(2, 100)
	require.False(t, replaced)
	_, replaced = c.Set(3, 100) // evicts 1
	require.False(t, replaced)
	assert.ElementsMatch(t, []int{3, 2}, keyOrder(c))

	_, replaced = c.Set(4, 100) // evicts 2; 3 must survive
	require.False(t, replaced)
	assert.ElementsMatch(t, []int{4, 3}, keyOrder(c))
}

func TestCache_RepeatedReinsertEvictsOnce(t *testing.T) {
	c := New[int, struct{}](3)
	c.Set(1, struct{}{})
	c.Set(2, struct{}{})
	c.Set(3, struct{}{})

	c.Set(4, struct{}{}) // evicts 1
	assert.Equal(t, 3, c.Len())
	c.Set(4, struct{}{}) // update: must not evict anything
	assert.Equal(t, 3, c.Len())

	_, ok := c.Get(1)
	assert.False(t, ok, "1 was evicted by the first insert of 4")
	_, ok = c.Get(2)
	assert.True(t, ok, "2 must survive the update of 4")
	_, ok = c.Get(3)
	assert.True(t, ok)
	_, ok = c.Get(4)
	assert.True(t, ok)
}

func TestCache_HitMissCounters(t *testing.T) {
	c := New[int, int](5)

	_, ok := c.Get(1)
	require.False(t, ok)
	assert.Equal(t, uint64(1), c.Misses())

	c.Set(1, 100)
	_, ok = c.Get(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), c.Hits())
	assert.Equal(t, uint64(1), c.Misses())

	// Set has no metrics effect.
	c.Set(2, 200)
	assert.Equal(t, uint64(1), c.Hits())
	assert.Equal(t, uint64(1), c.Misses())
}

func TestCache_ResetMetrics(t *testing.T) {
	c := New[int, int](5)
	c.Set(1, 100)
	c.Get(1)
	c.Get(2)
	require.Equal(t, uint64(1), c.Hits())
	require.Equal(t, uint64(1), c.Misses())

	before := keyOrder(c)
	c.ResetMetrics()

	assert.Zero(t, c.Hits())
	assert.Zero(t, c.Misses())
	assert.Equal(t, 1, c.Len(), "ResetMetrics must not touch entries")
	assert.Equal(t, before, keyOrder(c))
}

func TestCache_Remove(t *testing.T) {
	c := New[int, int](3)
	c.Set(1, 100)
	c.Set(2, 200)
	c.Set(3, 300)

	v, ok := c.Remove(1)
	require.True(t, ok)
	assert.Equal(t, 100, v)
	assert.Equal(t, 2, c.Len())

	v, ok = c.Remove(2)
	require.True(t, ok)
	assert.Equal(t, 200, v)

	// Absent key: nothing changes.
	before := keyOrder(c)
	_, ok = c.Remove(2)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, before, keyOrder(c))
	assert.Zero(t, c.Hits())
	assert.Zero(t, c.Misses())

	v, ok = c.Remove(3)
	require.True(t, ok)
	assert.Equal(t, 300, v)
	assert.Equal(t, 0, c.Len())
}

func TestCache_ClearAndReset(t *testing.T) {
	c := New[int, int](3)
	c.Set(1, 100)
	c.Set(2, 200)
	c.Get(1)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, c.Capacity())
	assert.Equal(t, uint64(1), c.Hits(), "Clear keeps the counters")

	// Store keeps working after Clear, including past capacity.
	for k := 0; k < 5; k++ {
		c.Set(k, k)
	}
	assert.Equal(t, 3, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetRefMutatesInPlace(t *testing.T) {
	c := New[int, int](5)
	c.Set(1, 100)

	ref, ok := c.GetRef(1)
	require.True(t, ok)
	require.Equal(t, 100, *ref)
	*ref = 10

	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, uint64(2), c.Hits())
}

func TestCache_GetIf(t *testing.T) {
	c := New[string, int](5)
	c.Set("a", -3)

	// Predicate fails: a miss, but the entry is NOT removed.
	_, ok := c.GetIf("a", func(v int) bool { return v >= 0 })
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Misses())
	assert.Equal(t, 1, c.Len())

	// Predicate passes: a regular hit.
	v, ok := c.GetIf("a", func(v int) bool { return v < 0 })
	require.True(t, ok)
	assert.Equal(t, -3, v)
	assert.Equal(t, uint64(1), c.Hits())
}

func TestCache_Retain(t *testing.T) {
	c := New[int, int](10)
	for k := 1; k <= 6; k++ {
		c.Set(k, k*10)
	}

	c.Retain(func(k, v int) bool { return k%2 == 0 })

	assert.Equal(t, 3, c.Len())
	// Survivors keep their relative recency order.
	assert.Equal(t, []int{6, 4, 2}, keyOrder(c))
	_, ok := c.Get(3)
	assert.False(t, ok)
}

func TestCache_Equal(t *testing.T) {
	// Different capacities, identical entry sets: equal.
	a := New[int, int](4)
	b := New[int, int](64)
	for k := 1; k <= 3; k++ {
		a.Set(k, k*100)
	}
	// Insert in another order so the recency lists differ too.
	for _, k := range []int{3, 1, 2} {
		b.Set(k, k*100)
	}
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))

	// Metrics do not participate.
	b.Get(1)
	assert.True(t, Equal(a, b))

	// A differing value breaks equality.
	b.Set(2, 999)
	assert.False(t, Equal(a, b))

	// A differing entry count breaks equality.
	b.Set(2, 200)
	b.Set(4, 400)
	assert.False(t, Equal(a, b))
}

func TestCache_Clone(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")

	cp := c.Clone()
	require.True(t, Equal(c, cp))
	assert.Equal(t, keyOrder(c), keyOrder(cp))
	assert.Equal(t, c.Hits(), cp.Hits())

	// Fully independent: mutations do not cross.
	cp.Set("c", 3)
	cp.Set("a", 11)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, cp.Len())
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
	assert.Panics(t, func() { New[int, int](-1) })
}

func TestTryNew_Errors(t *testing.T) {
	_, err := TryNew[int, int](0)
	require.ErrorIs(t, err, cache.ErrZeroCapacity)

	_, err = TryNew[int, int](-5)
	require.ErrorIs(t, err, cache.ErrZeroCapacity)

	c, err := TryNew[int, int](5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Capacity())
}

// recordingMetrics counts hook invocations.
type recordingMetrics struct {
	hits, misses, evicts int
	lastSize             int
}

func (m *recordingMetrics) Hit()       { m.hits++ }
func (m *recordingMetrics) Miss()      { m.misses++ }
func (m *recordingMetrics) Evict()     { m.evicts++ }
func (m *recordingMetrics) Size(n int) { m.lastSize = n }

func TestCache_MetricsHooksAndEvictCallback(t *testing.T) {
	m := &recordingMetrics{}
	var evicted []int
	c := New(2,
		WithMetrics[int, string](m),
		WithEvictCallback(func(k int, v string) { evicted = append(evicted, k) }),
	)

	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c") // evicts 1
	c.Get(3)
	c.Get(9)

	assert.Equal(t, []int{1}, evicted)
	assert.Equal(t, 1, m.evicts)
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)
	assert.Equal(t, 2, m.lastSize)

	// Remove and Clear are not evictions.
	c.Remove(2)
	c.Clear()
	assert.Equal(t, []int{1}, evicted)
	assert.Equal(t, 1, m.evicts)
	assert.Equal(t, 0, m.lastSize)
}

// A long random-ish workload crossing the index growth and slot
// recycling paths; the capacity bound and key uniqueness must hold
// throughout.
func TestCache_Churn(t *testing.T) {
	const capacity = 64
	c := New[int, int](capacity)

	for i := 0; i < 10_000; i++ {
		k := (i * 7919) % 500
		c.Set(k, i)
		require.LessOrEqual(t, c.Len(), capacity)

		if i%3 == 0 {
			c.Get((i * 104729) % 500)
		}
		if i%11 == 0 {
			c.Remove((i * 31) % 500)
		}
	}

	// No key may appear twice in the recency order.
	seen := make(map[int]bool, capacity)
	for k := range c.Keys() {
		require.False(t, seen[k], "duplicate key %d in order", k)
		seen[k] = true
	}
	assert.Equal(t, c.Len(), len(seen))
}
