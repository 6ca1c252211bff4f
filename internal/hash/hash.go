package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Internal - The hash used when no custom hash function is given. It is computed with xxhash over the padded
// key encoding, so anything that can read the raw records can also route them.
func Internal(key []byte) (uint64, error) {
	return xxhash.Sum64(key), nil
}

// Decoding - Returns a hash function over padded key bytes that decodes the key and applies a typed hash function.
// It is what lets the bucket store redistribute records on a split when a custom hash function is in use.
//   - decode converts padded key bytes back to the key type
//   - hashFunc is the custom hash function
func Decoding[K any](decode func(buf []byte) (K, error), hashFunc func(key K) uint64) func(key []byte) (uint64, error) {
	return func(key []byte) (h uint64, err error) {
		k, err := decode(key)
		if err != nil {
			err = fmt.Errorf("error while decoding key for hashing: %w", err)
			return
		}

		h = hashFunc(k)

		return
	}
}
