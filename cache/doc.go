// Package cache defines the capability contract shared by the
// memoization stores in this module, plus the error taxonomy and the
// Metrics observability hooks they accept.
//
// Design
//
//   - Stores are single-writer. No store holds internal synchronization;
//     callers that share one across goroutines serialize every call with
//     an external lock held for the whole call, including any fetch
//     suspension in GetOrFetch.
//
//   - Storage (see cache/sized): a hash index maps a key's hash to a
//     stable integer handle into a slot arena; the arena threads live
//     slots on an intrusive MRU↔LRU list. The index stores handles, never
//     keys, so a key lives in memory exactly once. All operations are
//     O(1) expected.
//
//   - Upserts follow a decide-then-commit protocol: the hit/miss decision
//     is taken before the value supplier runs, and the structural
//     mutation commits only after the supplier succeeds. A failed or
//     cancelled supplier leaves the store as it was for that key.
//
//   - Metrics: stores count their own hits and misses (Hits/Misses/
//     ResetMetrics) and additionally signal a Metrics implementation.
//     NoopMetrics is the default; metrics/prom adapts the hooks to
//     Prometheus.
//
// Basic usage
//
//	c := sized.New[string, []byte](10_000)
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// Memoizing a computation
//
//	v := c.GetOrSetWith("report:2026-08", func() []byte {
//	    return renderReport() // runs only on miss
//	})
//
// Writing against the contract
//
//	func warm[K comparable, V any](s cache.Store[K, V], keys []K, load func(K) V) {
//	    for _, k := range keys {
//	        s.GetOrSetWith(k, func() V { return load(k) })
//	    }
//	}
//
// Sibling stores with other eviction policies (unbounded, time-based
// expiry) are expected to satisfy the same interfaces, so layers like
// memoization sugar are written once.
package cache
