package cache

import "errors"

var (
	// ErrZeroCapacity is returned by fallible constructors when the
	// requested capacity is not positive. A zero-capacity bound is
	// degenerate: an insert would have to evict before anything exists.
	ErrZeroCapacity = errors.New("cache: capacity must be greater than zero")

	// ErrCapacityOverflow is returned by fallible constructors when the
	// requested capacity is too large for the index preallocation to be
	// sized.
	ErrCapacityOverflow = errors.New("cache: capacity too large to preallocate")
)
