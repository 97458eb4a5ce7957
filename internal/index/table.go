// Package index implements the hash index of the sized cache: an
// open-addressing table mapping a key's hash to the arena handle holding
// that key.
//
// The table never stores keys. Lookups resolve a candidate handle back to
// its key through a caller-supplied closure, and growth re-hashes
// resident handles the same way. Buckets therefore stay one word wide and
// arena slots can be recycled or relocated without invalidating entries.
package index

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/abelikov/memocache/internal/arena"
)

// ErrTooLarge is returned by TryNew when the bucket array for the
// requested capacity cannot be represented.
var ErrTooLarge = errors.New("index: capacity too large for bucket allocation")

// Bucket states. empty terminates probe chains; deleted (a tombstone)
// keeps the chain intact across removals.
const (
	empty uint8 = iota
	full
	deleted
)

type bucket struct {
	state  uint8
	handle arena.Handle
}

// Table maps 64-bit hashes to arena handles using linear probing over a
// power-of-two bucket array. Not safe for concurrent use.
type Table struct {
	buckets []bucket
	mask    uint64
	live    int // buckets in state full
	used    int // buckets in state full or deleted
}

// Grow or rebuild once used buckets pass 3/4 of the array.
const (
	maxLoadNum = 3
	maxLoadDen = 4
)

const minBuckets = 8

// maxBuckets caps the array so len and the byte size stay addressable.
const maxBuckets = uint64(math.MaxInt) / 16

// New returns a table preallocated for capacity live entries. It panics
// when the bucket array cannot be sized; use TryNew to get an error
// instead.
func New(capacity int) *Table {
	t, err := TryNew(capacity)
	if err != nil {
		panic(err)
	}
	return t
}

// TryNew is New reporting an unrepresentable preallocation as an error.
func TryNew(capacity int) (*Table, error) {
	n, err := bucketsFor(capacity)
	if err != nil {
		return nil, err
	}
	return &Table{
		buckets: make([]bucket, n),
		mask:    uint64(n - 1),
	}, nil
}

// bucketsFor sizes the array so capacity entries fit under the load
// bound: n >= capacity * maxLoadDen/maxLoadNum, rounded up to a power of
// two.
func bucketsFor(capacity int) (int, error) {
	if capacity < 0 {
		return 0, fmt.Errorf("index: negative capacity %d", capacity)
	}
	need := capacity + capacity/maxLoadNum + 1
	if need < capacity {
		return 0, ErrTooLarge
	}
	n := nextPow2(uint64(need))
	if n < minBuckets {
		n = minBuckets
	}
	if n > maxBuckets {
		return 0, ErrTooLarge
	}
	return int(n), nil
}

// nextPow2 returns the smallest power of two >= x.
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len64(x-1)
}

// Len returns the number of registered handles.
func (t *Table) Len() int { return t.live }

// Find probes for a handle registered under hash whose key matches,
// calling eq on each live candidate along the probe chain until a match
// or an empty bucket. O(1) average; degrades under adversarial
// collisions.
func (t *Table) Find(hash uint64, eq func(arena.Handle) bool) (arena.Handle, bool) {
	for i, probed := hash&t.mask, 0; probed < len(t.buckets); i, probed = (i+1)&t.mask, probed+1 {
		b := &t.buckets[i]
		switch b.state {
		case empty:
			return arena.NoHandle, false
		case full:
			if eq(b.handle) {
				return b.handle, true
			}
		}
	}
	return arena.NoHandle, false
}

// InsertUnique registers handle under hash. The caller must guarantee
// that no live entry exists for the same key; uniqueness is a
// precondition, not enforced here.
//
// rehash resolves a resident handle's key (by indirecting through the
// arena) and re-hashes it. It runs only when this insert forces the table
// to grow or rebuild.
func (t *Table) InsertUnique(hash uint64, h arena.Handle, rehash func(arena.Handle) uint64) {
	if (t.used+1)*maxLoadDen > len(t.buckets)*maxLoadNum {
		t.rebuild(rehash)
	}
	t.place(hash, h)
}

// place claims the first reusable bucket on the probe chain. Tombstones
// are reclaimed in place.
func (t *Table) place(hash uint64, h arena.Handle) {
	for i := hash & t.mask; ; i = (i + 1) & t.mask {
		b := &t.buckets[i]
		if b.state == full {
			continue
		}
		if b.state == empty {
			t.used++
		}
		b.state = full
		b.handle = h
		t.live++
		return
	}
}

// rebuild re-places every live handle, dropping tombstones. The array
// doubles only when it is genuinely crowded; a table bloated by
// tombstones is rebuilt at the same size.
func (t *Table) rebuild(rehash func(arena.Handle) uint64) {
	n := len(t.buckets)
	if t.live*2 >= n {
		n *= 2
	}
	old := t.buckets
	t.buckets = make([]bucket, n)
	t.mask = uint64(n - 1)
	t.live, t.used = 0, 0
	for i := range old {
		if old[i].state == full {
			t.place(rehash(old[i].handle), old[i].handle)
		}
	}
}

// Remove deletes the entry on hash's probe chain for which eq reports a
// match and returns its handle. The bucket becomes a tombstone so longer
// chains stay reachable.
func (t *Table) Remove(hash uint64, eq func(arena.Handle) bool) (arena.Handle, bool) {
	for i, probed := hash&t.mask, 0; probed < len(t.buckets); i, probed = (i+1)&t.mask, probed+1 {
		b := &t.buckets[i]
		switch b.state {
		case empty:
			return arena.NoHandle, false
		case full:
			if eq(b.handle) {
				h := b.handle
				b.state = deleted
				t.live--
				return h, true
			}
		}
	}
	return arena.NoHandle, false
}

// Clear drops every entry, retaining the bucket allocation.
func (t *Table) Clear() {
	clear(t.buckets)
	t.live, t.used = 0, 0
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	return &Table{
		buckets: append([]bucket(nil), t.buckets...),
		mask:    t.mask,
		live:    t.live,
		used:    t.used,
	}
}
