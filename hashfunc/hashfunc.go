package hashfunc

import (
	"math"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
)

// HashFunc - Function that permits an implementation using the ExtHashMap to supply a custom hash
// suited for its particular distribution of keys.
// Only the low order bits of the returned value are used for routing, as many as the directory global depth,
// never more than the hash bits the hash map was created with. A function that gives equal keys equal hashes
// and spreads the low order bits well is all that is needed.
type HashFunc[K any] func(key K) uint64

// Integer - Types accepted by the Identity hash function
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// XXHash - Returns the 64-bit xxhash of a byte key. This is also the function the hash map uses internally
// over the encoded key when no custom HashFunc is given.
func XXHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// XXHashString - Returns the 64-bit xxhash of a string key
func XXHashString(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Identity - Returns an integer key as its own hash, negative keys are sign extended.
// Sequential keys then fill sequential directory entries, which makes the bucket layout easy to reason about.
func Identity[K Integer](key K) uint64 {
	return uint64(key)
}

// Poly31 - Returns the classic polynomial string hash h = 31*h + c over the UTF-16 code units of key,
// computed in 32-bit signed arithmetic. A negative result is folded back by adding math.MaxInt32, the result
// always fits in 32 bits.
func Poly31(key string) uint64 {
	var h int32
	for _, c := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(c)
	}

	if h < 0 {
		h += math.MaxInt32
	}

	return uint64(uint32(h))
}
