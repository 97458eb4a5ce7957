package sized

import "github.com/abelikov/memocache/cache"

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMetrics wires the observability hooks. Passing nil restores
// cache.NoopMetrics.
func WithMetrics[K comparable, V any](m cache.Metrics) Option[K, V] {
	return func(c *Cache[K, V]) { c.metrics = m }
}

// WithEvictCallback registers cb to run for every capacity eviction with
// the evicted key and value. Explicit Remove and Clear do not count as
// evictions. cb runs synchronously inside the mutating call; keep it
// lightweight.
func WithEvictCallback[K comparable, V any](cb func(key K, value V)) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = cb }
}
