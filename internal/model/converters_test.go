//go:build unit

package model

import (
	"testing"

	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/stretchr/testify/assert"
)

func TestBytesToRecord(t *testing.T) {
	t.Run("converts between bytes and Record struct", func(t *testing.T) {
		// Prepare
		record := Record{
			State:         RecordActive,
			RecordAddress: 1000,
			Key:           []byte{0, 1, 2, 3},
			Value:         []byte{4, 5},
		}

		// Execute
		buf := RecordToBytes(record, 4, 2)
		record2, err := BytesToRecord(buf, 1000, 4, 2)

		// Check
		assert.NoError(t, err, "convert bytes to Record struct")
		assert.Equal(t, []byte{1, 0, 1, 2, 3, 4, 5}, buf)
		assert.Equal(t, record, record2)
	})

	t.Run("all zero bytes is an empty record", func(t *testing.T) {
		// Execute
		record, err := BytesToRecord(make([]byte, 7), 1000, 4, 2)

		// Check
		assert.NoError(t, err)
		assert.False(t, record.IsActive())
		assert.Equal(t, RecordEmpty, record.State)
	})

	t.Run("empty record is written as zero bytes", func(t *testing.T) {
		// Prepare
		record := Record{State: RecordEmpty, Key: []byte{9, 9, 9, 9}, Value: []byte{9, 9}}

		// Execute
		buf := RecordToBytes(record, 4, 2)

		// Check
		assert.Equal(t, make([]byte, 7), buf)
	})

	t.Run("short keys are zero padded", func(t *testing.T) {
		// Prepare
		record := Record{State: RecordActive, Key: []byte{1}, Value: []byte{2}}

		// Execute
		buf := RecordToBytes(record, 4, 2)

		// Check
		assert.Equal(t, []byte{1, 1, 0, 0, 0, 2, 0}, buf)
	})

	t.Run("rejects short buffer and unknown state", func(t *testing.T) {
		// Execute
		_, err1 := BytesToRecord(make([]byte, 6), 0, 4, 2)
		_, err2 := BytesToRecord([]byte{7, 0, 0, 0, 0, 0, 0}, 0, 4, 2)

		// Check
		assert.Error(t, err1)
		assert.Error(t, err2)
	})
}

func TestBytesToBucket(t *testing.T) {
	t.Run("converts between bytes and Bucket struct", func(t *testing.T) {
		// Prepare
		bucket := NewBucket(2, 3, 2, 1)
		bucket.BucketAddress = 1024
		_, _ = bucket.Insert([]byte{1, 2}, []byte{3})
		_, _ = bucket.Insert([]byte{4, 5}, []byte{6})

		// Execute
		buf := BucketToBytes(bucket)
		bucket2, err := BytesToBucket(buf, 1024, 2, 1)

		// Check
		assert.NoError(t, err, "convert bytes to Bucket struct")
		assert.Equal(t, BucketLength(3, 2, 1), int64(len(buf)))
		assert.Equal(t, uint8(2), bucket2.LocalDepth)
		assert.Equal(t, int64(3), bucket2.Capacity())
		assert.Equal(t, int64(2), bucket2.ActiveCount())
		assert.Equal(t, 1024+conf.BucketHeaderLength, bucket2.Records[0].RecordAddress)
		assert.Equal(t, 1024+conf.BucketHeaderLength+4, bucket2.Records[1].RecordAddress)
		assert.Equal(t, SlotAddress(1024, 2, 4), bucket2.Records[2].RecordAddress)
		assert.Equal(t, [][]byte{{3}}, bucket2.Search([]byte{1, 2}))
		assert.Equal(t, [][]byte{{6}}, bucket2.Search([]byte{4, 5}))
		assert.False(t, bucket2.Records[2].IsActive())
	})

	t.Run("rejects truncated bucket", func(t *testing.T) {
		// Prepare
		buf := BucketToBytes(NewBucket(0, 3, 2, 1))

		// Execute
		_, err := BytesToBucket(buf[:len(buf)-1], 1024, 2, 1)

		// Check
		assert.Error(t, err)
	})
}
