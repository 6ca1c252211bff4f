// Package codec holds the fixed width binary encodings that make keys and values storable in the constant size
// record slots of an extendible hash map.
package codec

import (
	"fmt"
)

// Codec - Converts values of type T to and from bytes.
// Encodings must be deterministic, equal values give equal bytes, since the hash map compares keys and values
// by their encoded bytes.
type Codec[T any] interface {
	// Encode - Returns the encoding of value. An encoding longer than MaxSize is returned as is, it is up to the
	// caller to reject it.
	Encode(value T) (buf []byte, err error)

	// Decode - Returns the value of an encoding. The buf given is the zero padded slot region of exactly MaxSize bytes.
	Decode(buf []byte) (value T, err error)

	// MaxSize - Returns the maximum length of an encoding, which is also the fixed slot width
	MaxSize() int
}

// checkLength - Returns an error if buf is shorter than needed
func checkLength(buf []byte, needed int) (err error) {
	if len(buf) < needed {
		err = fmt.Errorf("length of data in buf (%d) less than needed (%d)", len(buf), needed)
	}

	return
}
