//go:build unit

package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIsEqual(t *testing.T) {
	t.Run("two byte slices are equal in length and values", func(t *testing.T) {
		// Prepare
		a := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		b := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

		// Execute
		isEqual := IsEqual(a, b)

		// Check
		assert.True(t, isEqual, "slices equal in length and values")
	})

	t.Run("two byte slices are unequal in length", func(t *testing.T) {
		// Prepare
		a := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		b := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

		// Execute
		isEqual := IsEqual(a, b)

		// Check
		assert.False(t, isEqual, "slices unequal in length")
	})

	t.Run("two byte slices are unequal in values", func(t *testing.T) {
		// Prepare
		a := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		b := []byte{0, 1, 5, 3, 4, 5, 6, 7, 8, 9}

		// Execute
		isEqual := IsEqual(a, b)

		// Check
		assert.False(t, isEqual, "slices unequal in length")
	})
}

func TestExtendByteSlice(t *testing.T) {
	t.Run("bytes are prepended to byte slice", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		// Execute
		b := ExtendByteSlice(a, 10, true)

		// Check
		assert.Equal(t, 20, len(b), "slice has right length")
		for i, v := range b {
			if i < 10 {
				if v != 0 {
					assert.Fail(t, "zeros correctly prepended")
				}
			} else {
				if v != a[i-10] {
					assert.Fail(t, "data correctly at end of slice")
				}
			}
		}
	})

	t.Run("bytes are appended to byte slice", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		// Execute
		b := ExtendByteSlice(a, 10, false)

		// Check
		assert.Equal(t, 20, len(b), "slice has right length")
		for i, v := range b {
			if i < 10 {
				if v != a[i] {
					assert.Fail(t, "data correctly in beginning of slice")
				}
			} else {
				if v != 0 {
					assert.Fail(t, "zeros correctly appended")
				}
			}
		}
	})
}

func TestPadBytes(t *testing.T) {
	t.Run("pads a short slice with zeros and leaves the source untouched", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3}

		// Execute
		b := PadBytes(a, 6)

		// Check
		assert.Equal(t, []byte{1, 2, 3, 0, 0, 0}, b, "padded correctly")
		b[0] = 9
		assert.Equal(t, byte(1), a[0], "source not shared")
	})
}

func TestCopyBytes(t *testing.T) {
	t.Run("copy does not share backing array", func(t *testing.T) {
		// Prepare
		a := []byte{1, 2, 3}

		// Execute
		b := CopyBytes(a)
		b[1] = 7

		// Check
		assert.Equal(t, []byte{1, 2, 3}, a, "source untouched")
		assert.Equal(t, []byte{1, 7, 3}, b, "copy changed")
	})
}

func TestLowBits(t *testing.T) {
	t.Run("masks the low order bits", func(t *testing.T) {
		// Prepare
		h := uint64(0b1011_0110)

		// Execute and Check
		assert.Equal(t, uint64(0), LowBits(h, 0), "zero bits")
		assert.Equal(t, uint64(0b10), LowBits(h, 2), "two bits")
		assert.Equal(t, uint64(0b110), LowBits(h, 3), "three bits")
		assert.Equal(t, h, LowBits(h, 64), "all bits")
		assert.Equal(t, ^uint64(0), LowBits(^uint64(0), 64), "all bits set")
	})
}

func TestBitIsSet(t *testing.T) {
	t.Run("tests single bits", func(t *testing.T) {
		// Prepare
		h := uint64(0b101)

		// Execute and Check
		assert.True(t, BitIsSet(h, 0), "bit 0 set")
		assert.False(t, BitIsSet(h, 1), "bit 1 not set")
		assert.True(t, BitIsSet(h, 2), "bit 2 set")
		assert.True(t, BitIsSet(1<<63, 63), "top bit set")
		assert.False(t, BitIsSet(h, 64), "out of range bit never set")
	})
}
