package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Int32 - Codec for int32 values, 4 bytes little endian
type Int32 struct{}

// Encode - Returns value as 4 bytes little endian
func (Int32) Encode(value int32) (buf []byte, err error) {
	buf = binary.LittleEndian.AppendUint32(nil, uint32(value))
	return
}

// Decode - Reads an int32 from the first 4 bytes of buf
func (Int32) Decode(buf []byte) (value int32, err error) {
	if err = checkLength(buf, 4); err != nil {
		return
	}
	value = int32(binary.LittleEndian.Uint32(buf))
	return
}

// MaxSize - Returns the slot width of an int32, 4 bytes
func (Int32) MaxSize() int { return 4 }

// Int64 - Codec for int64 values, 8 bytes little endian
type Int64 struct{}

// Encode - Returns value as 8 bytes little endian
func (Int64) Encode(value int64) (buf []byte, err error) {
	buf = binary.LittleEndian.AppendUint64(nil, uint64(value))
	return
}

// Decode - Reads an int64 from the first 8 bytes of buf
func (Int64) Decode(buf []byte) (value int64, err error) {
	if err = checkLength(buf, 8); err != nil {
		return
	}
	value = int64(binary.LittleEndian.Uint64(buf))
	return
}

// MaxSize - Returns the slot width of an int64, 8 bytes
func (Int64) MaxSize() int { return 8 }

// Uint32 - Codec for uint32 values, 4 bytes little endian
type Uint32 struct{}

// Encode - Returns value as 4 bytes little endian
func (Uint32) Encode(value uint32) (buf []byte, err error) {
	buf = binary.LittleEndian.AppendUint32(nil, value)
	return
}

// Decode - Reads a uint32 from the first 4 bytes of buf
func (Uint32) Decode(buf []byte) (value uint32, err error) {
	if err = checkLength(buf, 4); err != nil {
		return
	}
	value = binary.LittleEndian.Uint32(buf)
	return
}

// MaxSize - Returns the slot width of a uint32, 4 bytes
func (Uint32) MaxSize() int { return 4 }

// Uint64 - Codec for uint64 values, 8 bytes little endian
type Uint64 struct{}

// Encode - Returns value as 8 bytes little endian
func (Uint64) Encode(value uint64) (buf []byte, err error) {
	buf = binary.LittleEndian.AppendUint64(nil, value)
	return
}

// Decode - Reads a uint64 from the first 8 bytes of buf
func (Uint64) Decode(buf []byte) (value uint64, err error) {
	if err = checkLength(buf, 8); err != nil {
		return
	}
	value = binary.LittleEndian.Uint64(buf)
	return
}

// MaxSize - Returns the slot width of a uint64, 8 bytes
func (Uint64) MaxSize() int { return 8 }

// Float64 - Codec for float64 values, the IEEE 754 bits in 8 bytes little endian.
// Note that 0.0 and -0.0 encode differently and are therefore different keys.
type Float64 struct{}

// Encode - Returns the IEEE 754 bits of value as 8 bytes little endian
func (Float64) Encode(value float64) (buf []byte, err error) {
	buf = binary.LittleEndian.AppendUint64(nil, math.Float64bits(value))
	return
}

// Decode - Reads a float64 from the IEEE 754 bits in the first 8 bytes of buf
func (Float64) Decode(buf []byte) (value float64, err error) {
	if err = checkLength(buf, 8); err != nil {
		return
	}
	value = math.Float64frombits(binary.LittleEndian.Uint64(buf))
	return
}

// MaxSize - Returns the slot width of a float64, 8 bytes
func (Float64) MaxSize() int { return 8 }

// Bool - Codec for bool values, one byte that is 0 or 1
type Bool struct{}

// Encode - Returns one byte, 1 for true and 0 for false
func (Bool) Encode(value bool) (buf []byte, err error) {
	buf = []byte{0}
	if value {
		buf[0] = 1
	}
	return
}

// Decode - Reads a bool from the first byte of buf, any byte other than 0 or 1 is an error
func (Bool) Decode(buf []byte) (value bool, err error) {
	if err = checkLength(buf, 1); err != nil {
		return
	}

	switch buf[0] {
	case 0:
	case 1:
		value = true
	default:
		err = fmt.Errorf("invalid bool encoding %d", buf[0])
	}

	return
}

// MaxSize - Returns the slot width of a bool, 1 byte
func (Bool) MaxSize() int { return 1 }
