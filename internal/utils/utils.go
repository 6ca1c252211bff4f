package utils

// IsEqual - Returns true if a and b are equal both in size and contents
func IsEqual(a, b []byte) bool {
	lenA := len(a)
	if lenA != len(b) {
		return false
	}

	for i := 0; i < lenA; i++ {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// CopyBytes - Returns a copy of a that does not share its backing array
func CopyBytes(a []byte) (b []byte) {
	b = make([]byte, len(a))
	_ = copy(b, a)

	return
}

// PadBytes - Returns a copy of a extended with zero bytes up to length, a must not be longer than length
func PadBytes(a []byte, length int64) (b []byte) {
	b = make([]byte, length)
	_ = copy(b, a)

	return
}

// ExtendByteSlice - Extends a byte slice by prepending or appending a number of zero bytes
func ExtendByteSlice(a []byte, extension int64, prepend bool) (b []byte) {
	b = CopyBytes(a)
	if extension > 0 {
		if prepend {
			b = append(make([]byte, extension), b...)
		} else {
			b = append(b, make([]byte, extension)...)
		}
	}

	return
}

// LowBits - Returns the low order bits of h, bits may be anything from 0 to 64
func LowBits(h uint64, bits uint8) uint64 {
	if bits >= 64 {
		return h
	}

	return h & (1<<bits - 1)
}

// BitIsSet - Returns true if bit number n (zero based from the least significant bit) is set in h
func BitIsSet(h uint64, n uint8) bool {
	return n < 64 && h&(1<<n) != 0
}
