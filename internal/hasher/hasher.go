// Package hasher hashes cache keys under a per-instance seed.
package hasher

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// NewSeed returns a fresh random hash seed. Every cache instance carries
// its own seed, so key hashes are unpredictable across instances
// (hash-flooding mitigation); no hash state is shared process-wide.
func NewSeed() uint64 { return rand.Uint64() }

// Sum64 hashes key with the given seed using xxHash64.
//
// Supported key shapes: string, [16|32|64]byte, bool, all int/uint
// widths, uintptr, and fmt.Stringer as a fallback. Other key types panic:
// silently degrading to a poorly distributed hash would turn the index
// into a probe-chain crawl, so the failure is loud.
func Sum64[K comparable](seed uint64, key K) uint64 {
	switch k := any(key).(type) {
	case string:
		return sumString(seed, k)
	case [16]byte:
		return sumBytes(seed, k[:])
	case [32]byte:
		return sumBytes(seed, k[:])
	case [64]byte:
		return sumBytes(seed, k[:])
	case bool:
		if k {
			return sumUint64(seed, 1)
		}
		return sumUint64(seed, 0)

	// Integer-like keys hash their 8 little-endian bytes.
	case uint8:
		return sumUint64(seed, uint64(k))
	case uint16:
		return sumUint64(seed, uint64(k))
	case uint32:
		return sumUint64(seed, uint64(k))
	case uint64:
		return sumUint64(seed, k)
	case uint:
		return sumUint64(seed, uint64(k))
	case uintptr:
		return sumUint64(seed, uint64(k))
	case int8:
		return sumUint64(seed, uint64(uint8(k)))
	case int16:
		return sumUint64(seed, uint64(uint16(k)))
	case int32:
		return sumUint64(seed, uint64(uint32(k)))
	case int64:
		return sumUint64(seed, uint64(k))
	case int:
		return sumUint64(seed, uint64(k))

	// Last resort for composite keys; prefer a string key if you can.
	case fmt.Stringer:
		return sumString(seed, k.String())
	default:
		panic(fmt.Sprintf("hasher: unsupported key type %T; use a string key or implement fmt.Stringer", key))
	}
}

func sumString(seed uint64, s string) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}

func sumBytes(seed uint64, b []byte) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.Write(b)
	return d.Sum64()
}

func sumUint64(seed, u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return sumBytes(seed, buf[:])
}
