//go:build unit

package codec

import (
	"math"
	"testing"

	"github.com/fulldump/biff"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNumeric(t *testing.T) {
	biff.Alternative("Numeric codecs", func(a *biff.A) {

		a.Alternative("Int32", func(a *biff.A) {
			c := Int32{}
			buf, err := c.Encode(-2)
			assert.NoError(t, err)
			assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, buf)
			assert.Equal(t, 4, c.MaxSize())

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, int32(-2), v)
		})

		a.Alternative("Int64", func(a *biff.A) {
			c := Int64{}
			buf, err := c.Encode(math.MinInt64)
			assert.NoError(t, err)
			assert.Len(t, buf, c.MaxSize())

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, int64(math.MinInt64), v)
		})

		a.Alternative("Uint32", func(a *biff.A) {
			c := Uint32{}
			buf, _ := c.Encode(0x01020304)
			assert.Equal(t, []byte{4, 3, 2, 1}, buf)

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, uint32(0x01020304), v)
		})

		a.Alternative("Uint64", func(a *biff.A) {
			c := Uint64{}
			buf, _ := c.Encode(math.MaxUint64)

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, uint64(math.MaxUint64), v)
		})

		a.Alternative("Float64", func(a *biff.A) {
			c := Float64{}
			buf, _ := c.Encode(3.5)

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, 3.5, v)

			a.Alternative("negative zero is a different encoding", func(a *biff.A) {
				neg, _ := c.Encode(math.Copysign(0, -1))
				pos, _ := c.Encode(0)
				assert.NotEqual(t, pos, neg)
			})
		})

		a.Alternative("Bool", func(a *biff.A) {
			c := Bool{}
			buf, _ := c.Encode(true)
			assert.Equal(t, []byte{1}, buf)

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.True(t, v)

			a.Alternative("zero padding decodes as false", func(a *biff.A) {
				v, err := c.Decode([]byte{0})
				assert.NoError(t, err)
				assert.False(t, v)
			})

			a.Alternative("other bytes are rejected", func(a *biff.A) {
				_, err := c.Decode([]byte{2})
				assert.Error(t, err)
			})
		})

		a.Alternative("short buffer", func(a *biff.A) {
			_, err := Int64{}.Decode([]byte{1, 2, 3})
			assert.Error(t, err)
		})
	})
}

func TestString(t *testing.T) {
	biff.Alternative("String codec", func(a *biff.A) {
		c := String(10)
		assert.Equal(t, 12, c.MaxSize())

		a.Alternative("round trip of zero padded slot", func(a *biff.A) {
			buf, err := c.Encode("abc")
			assert.NoError(t, err)
			assert.Equal(t, []byte{3, 0, 'a', 'b', 'c'}, buf)

			slot := make([]byte, c.MaxSize())
			_ = copy(slot, buf)

			v, err := c.Decode(slot)
			assert.NoError(t, err)
			assert.Equal(t, "abc", v)
		})

		a.Alternative("empty string", func(a *biff.A) {
			v, err := c.Decode(make([]byte, c.MaxSize()))
			assert.NoError(t, err)
			assert.Equal(t, "", v)
		})

		a.Alternative("canonically equivalent strings encode equally", func(a *biff.A) {
			composed, _ := c.Encode("é")
			decomposed, _ := c.Encode("é")
			assert.Equal(t, composed, decomposed)
		})

		a.Alternative("too long encoding is returned for the caller to reject", func(a *biff.A) {
			buf, err := c.Encode("abcdefghijk")
			assert.NoError(t, err)
			assert.Greater(t, len(buf), c.MaxSize())
		})

		a.Alternative("invalid UTF-8 is rejected", func(a *biff.A) {
			_, err := c.Encode(string([]byte{0xff, 0xfe}))
			assert.Error(t, err)
		})

		a.Alternative("corrupt length prefix is rejected", func(a *biff.A) {
			slot := make([]byte, c.MaxSize())
			slot[0] = 11
			_, err := c.Decode(slot)
			assert.Error(t, err)
		})
	})
}

func TestBytesAndUUID(t *testing.T) {
	biff.Alternative("Raw codecs", func(a *biff.A) {

		a.Alternative("Bytes decodes to full padded length", func(a *biff.A) {
			c := Bytes(4)
			buf, err := c.Encode([]byte{1, 2})
			assert.NoError(t, err)
			assert.Equal(t, []byte{1, 2}, buf)

			v, err := c.Decode([]byte{1, 2, 0, 0})
			assert.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 0, 0}, v)
		})

		a.Alternative("UUID", func(a *biff.A) {
			c := UUID{}
			id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
			buf, err := c.Encode(id)
			assert.NoError(t, err)
			assert.Len(t, buf, c.MaxSize())

			v, err := c.Decode(buf)
			assert.NoError(t, err)
			assert.Equal(t, id, v)
		})
	})
}
