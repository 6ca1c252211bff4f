package codec

import (
	"github.com/google/uuid"
)

// BytesCodec - Codec for raw byte slices of at most a fixed length. Shorter slices are zero padded in the slot and
// decode to the full padded length, hence trailing zero bytes are not preserved.
type BytesCodec struct {
	length int
}

// Bytes - Returns a BytesCodec for slices of at most length bytes
func Bytes(length int) BytesCodec {
	return BytesCodec{length: length}
}

// Encode - Returns a copy of value, the store pads it with zeros up to the slot width
func (B BytesCodec) Encode(value []byte) (buf []byte, err error) {
	buf = make([]byte, len(value))
	_ = copy(buf, value)
	return
}

// Decode - Returns a copy of the first length bytes of buf, padding included
func (B BytesCodec) Decode(buf []byte) (value []byte, err error) {
	if err = checkLength(buf, B.length); err != nil {
		return
	}
	value = make([]byte, B.length)
	_ = copy(value, buf)
	return
}

// MaxSize - Returns the length given to Bytes
func (B BytesCodec) MaxSize() int { return B.length }

// UUID - Codec for github.com/google/uuid values, the 16 raw bytes
type UUID struct{}

// Encode - Returns the 16 raw bytes of value
func (UUID) Encode(value uuid.UUID) (buf []byte, err error) {
	buf, err = value.MarshalBinary()
	return
}

// Decode - Reads a UUID from the first 16 bytes of buf
func (UUID) Decode(buf []byte) (value uuid.UUID, err error) {
	if err = checkLength(buf, 16); err != nil {
		return
	}
	value, err = uuid.FromBytes(buf[:16])
	return
}

// MaxSize - Returns the slot width of a UUID, 16 bytes
func (UUID) MaxSize() int { return 16 }
