package cache

// Metrics exposes store-level observability hooks. Implementations must
// tolerate being called from whichever goroutine currently owns the
// store.
type Metrics interface {
	Hit()
	Miss()
	// Evict fires for every capacity eviction. Explicit Remove and Clear
	// are not evictions.
	Evict()
	// Size reports the live entry count after a mutating operation.
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()             {}
func (NoopMetrics) Miss()            {}
func (NoopMetrics) Evict()           {}
func (NoopMetrics) Size(entries int) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
