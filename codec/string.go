package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// stringLengthBytes - Length of the prefix holding the encoded string length
const stringLengthBytes = 2

// StringCodec - Codec for strings of at most a fixed number of bytes. The encoding is a little endian uint16
// byte length followed by the UTF-8 bytes in Unicode normalization form C, so that canonically equivalent
// strings are the same key.
type StringCodec struct {
	maxBytes int
}

// String - Returns a StringCodec for strings of at most maxBytes UTF-8 bytes after normalization
func String(maxBytes int) StringCodec {
	return StringCodec{maxBytes: maxBytes}
}

// Encode - Normalizes value to NFC and returns it behind its uint16 byte length.
// Invalid UTF-8 is an error.
func (S StringCodec) Encode(value string) (buf []byte, err error) {
	if !utf8.ValidString(value) {
		err = fmt.Errorf("string is not valid UTF-8")
		return
	}

	n := norm.NFC.String(value)
	if len(n) > 0xffff {
		err = fmt.Errorf("string of %d bytes too long for length prefix", len(n))
		return
	}

	buf = make([]byte, stringLengthBytes, stringLengthBytes+len(n))
	binary.LittleEndian.PutUint16(buf, uint16(len(n)))
	buf = append(buf, n...)

	return
}

// Decode - Reads the length prefix and returns that many bytes as a string. A length above the maximum
// or beyond the end of buf is an error.
func (S StringCodec) Decode(buf []byte) (value string, err error) {
	if err = checkLength(buf, stringLengthBytes); err != nil {
		return
	}

	length := int(binary.LittleEndian.Uint16(buf))
	if length > S.maxBytes || stringLengthBytes+length > len(buf) {
		err = fmt.Errorf("encoded string length %d exceeds maximum %d", length, S.maxBytes)
		return
	}

	value = string(buf[stringLengthBytes : stringLengthBytes+length])

	return
}

// MaxSize - Returns the length prefix plus the maximum number of string bytes
func (S StringCodec) MaxSize() int { return stringLengthBytes + S.maxBytes }
