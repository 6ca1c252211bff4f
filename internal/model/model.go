package model

import (
	"iter"

	"github.com/gostonefire/exthashmap/internal/utils"
)

// RecordEmpty - State indicating a record that is not in use, either never written or deleted
const RecordEmpty uint8 = 0

// RecordActive - State indicating a record that is in use
const RecordActive uint8 = 1

// InsertResult - Outcome of an insert into a single bucket
type InsertResult int

const (
	// Inserted - The record was written to a free slot
	Inserted InsertResult = iota
	// BucketFull - No free slot, the caller has to split the bucket
	BucketFull
	// RecordExists - The exact key and value pair is already stored in the bucket
	RecordExists
)

// Record - Represents one record slot in a bucket
type Record struct {
	State         uint8
	RecordAddress int64
	Key           []byte
	Value         []byte
}

// IsActive - Returns true if the record holds a key and value
func (R Record) IsActive() bool {
	return R.State == RecordActive
}

// Bucket - Represents all records in a bucket (both active and empty)
type Bucket struct {
	LocalDepth    uint8
	BucketAddress int64
	Records       []Record
	keyLength     int64
	valueLength   int64
}

// NewBucket - Returns a new bucket with all records empty
//   - localDepth is the number of low order hash bits shared by all keys in the bucket
//   - capacity is the number of records the bucket can hold
//   - keyLength is the fixed length of keys
//   - valueLength is the fixed length of values
func NewBucket(localDepth uint8, capacity, keyLength, valueLength int64) (bucket Bucket) {
	bucket = Bucket{
		LocalDepth:  localDepth,
		Records:     make([]Record, capacity),
		keyLength:   keyLength,
		valueLength: valueLength,
	}

	for i := range bucket.Records {
		bucket.Records[i] = Record{
			State: RecordEmpty,
			Key:   make([]byte, keyLength),
			Value: make([]byte, valueLength),
		}
	}

	return
}

// Capacity - Returns the number of records the bucket can hold
func (B *Bucket) Capacity() int64 {
	return int64(len(B.Records))
}

// RecordLength - Returns the length of one record including its state byte
func (B *Bucket) RecordLength() int64 {
	return RecordLength(B.keyLength, B.valueLength)
}

// ActiveCount - Returns the number of records in use
func (B *Bucket) ActiveCount() (count int64) {
	for _, r := range B.Records {
		if r.IsActive() {
			count++
		}
	}

	return
}

// Insert - Puts key and value in the first empty slot, scanning left to right.
// It returns:
//   - slot is the index of the written record, only valid when result is Inserted
//   - result is Inserted, BucketFull if there was no empty slot, or RecordExists if the exact pair is already stored
func (B *Bucket) Insert(key, value []byte) (slot int, result InsertResult) {
	free := -1
	for i, r := range B.Records {
		if r.IsActive() {
			if utils.IsEqual(key, r.Key) && utils.IsEqual(value, r.Value) {
				return i, RecordExists
			}
		} else if free < 0 {
			free = i
		}
	}

	if free < 0 {
		return -1, BucketFull
	}

	B.Records[free].State = RecordActive
	B.Records[free].Key = utils.CopyBytes(key)
	B.Records[free].Value = utils.CopyBytes(value)

	return free, Inserted
}

// Search - Returns values of all active records matching key, in slot order
func (B *Bucket) Search(key []byte) (values [][]byte) {
	for r := range B.Traverse() {
		if r.IsActive() && utils.IsEqual(key, r.Key) {
			values = append(values, utils.CopyBytes(r.Value))
		}
	}

	return
}

// SearchKeysByValue - Returns keys of all active records matching value, in slot order
func (B *Bucket) SearchKeysByValue(value []byte) (keys [][]byte) {
	for r := range B.Traverse() {
		if r.IsActive() && utils.IsEqual(value, r.Value) {
			keys = append(keys, utils.CopyBytes(r.Key))
		}
	}

	return
}

// Delete - Marks every active record matching key as empty and returns the affected slots
func (B *Bucket) Delete(key []byte) (slots []int) {
	for r, i := range B.Traverse() {
		if r.IsActive() && utils.IsEqual(key, r.Key) {
			B.clear(i)
			slots = append(slots, i)
		}
	}

	return
}

// DeleteExact - Marks the first active record matching both key and value as empty
func (B *Bucket) DeleteExact(key, value []byte) (slot int, ok bool) {
	for r, i := range B.Traverse() {
		if r.IsActive() && utils.IsEqual(key, r.Key) && utils.IsEqual(value, r.Value) {
			B.clear(i)
			return i, true
		}
	}

	return -1, false
}

// Traverse - Returns a lazy sequence of records and their slot index in slot order.
// Breaking out of the range loop stops the traversal.
func (B *Bucket) Traverse() iter.Seq2[Record, int] {
	return func(yield func(Record, int) bool) {
		for i, r := range B.Records {
			if !yield(r, i) {
				return
			}
		}
	}
}

// Sibling - Returns a new empty bucket with given local depth and the same capacity and record widths
func (B *Bucket) Sibling(localDepth uint8) Bucket {
	return NewBucket(localDepth, B.Capacity(), B.keyLength, B.valueLength)
}

// Reset - Marks every record as empty, local depth is kept
func (B *Bucket) Reset() {
	for i := range B.Records {
		B.clear(i)
	}
}

// SetAddress - Places the bucket at an address in file, every record gets the address of its slot
func (B *Bucket) SetAddress(bucketAddress int64) {
	B.BucketAddress = bucketAddress
	for i := range B.Records {
		B.Records[i].RecordAddress = SlotAddress(bucketAddress, i, B.RecordLength())
	}
}

// clear - Sets a slot to the empty state and zeroes its key and value
func (B *Bucket) clear(slot int) {
	B.Records[slot] = Record{
		State:         RecordEmpty,
		RecordAddress: B.Records[slot].RecordAddress,
		Key:           make([]byte, B.keyLength),
		Value:         make([]byte, B.valueLength),
	}
}

// StorageParameters - Parameters of a bucket file
type StorageParameters struct {
	RecordsPerBucket int64
	KeyLength        int64
	ValueLength      int64
	NumberOfBuckets  int64
	BucketFileSize   int64
}
