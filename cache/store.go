package cache

import "context"

// Store is the operation set shared by the cache-policy implementations.
// The sized (LRU) store in this module implements it; unbounded and
// time-based stores are meant to slot in behind the same surface.
//
// A Store is a single-writer structure. Concurrent callers must serialize
// externally; see the package documentation.
type Store[K comparable, V any] interface {
	// Get returns the value stored under key and records a hit or a
	// miss. A hit marks the entry as most recently used.
	Get(key K) (V, bool)

	// GetRef is Get returning a reference to the stored value for
	// in-place mutation. The reference is valid until the next
	// structural change to the store.
	GetRef(key K) (*V, bool)

	// Set inserts or updates key, returning the previous value when the
	// key was already present. Set never touches the hit/miss counters.
	Set(key K, value V) (prev V, replaced bool)

	// GetOrSetWith returns the value under key, invoking supply to
	// produce and insert one on miss.
	GetOrSetWith(key K, supply func() V) *V

	// TryGetOrSetWith is GetOrSetWith with a fallible supplier. A
	// supplier error is returned verbatim and leaves the store
	// structurally untouched.
	TryGetOrSetWith(key K, supply func() (V, error)) (*V, error)

	// Remove deletes key, returning the removed value. No metrics
	// effect.
	Remove(key K) (V, bool)

	// Clear drops every entry, keeping backing allocations where
	// feasible.
	Clear()

	// Reset restores the store to its freshly constructed state.
	Reset()

	// ResetMetrics zeroes the hit/miss counters without touching
	// entries.
	ResetMetrics()

	// Len returns the number of live entries.
	Len() int

	// Hits and Misses report lookup outcomes accumulated since
	// construction or the last ResetMetrics.
	Hits() uint64
	Misses() uint64

	// Capacity returns the configured entry limit.
	Capacity() int
}

// ContextStore is implemented by stores whose upsert may wait on an
// external computation. The fetch callback is the only point where the
// call blocks: the hit/miss decision happens synchronously before it
// runs, and the insert commits only after fetch returns nil. There is no
// per-key coordination: two concurrent misses on one key both fetch and
// the later commit wins.
type ContextStore[K comparable, V any] interface {
	GetOrFetch(ctx context.Context, key K, fetch func(context.Context) (V, error)) (*V, error)
}
