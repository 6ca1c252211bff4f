package model

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/exthashmap/internal/conf"
)

// RecordLength - Returns the length of a record given key and value lengths, first byte is record state
func RecordLength(keyLength, valueLength int64) int64 {
	return conf.StateBytes + keyLength + valueLength
}

// BucketLength - Returns the length of a bucket block in file including its header
func BucketLength(capacity, keyLength, valueLength int64) int64 {
	return conf.BucketHeaderLength + capacity*RecordLength(keyLength, valueLength)
}

// SlotAddress - Returns the file address of a record slot within a bucket
func SlotAddress(bucketAddress int64, slot int, recordLength int64) int64 {
	return bucketAddress + conf.BucketHeaderLength + int64(slot)*recordLength
}

// BytesToRecord - Converts record raw data to a Record struct.
// A region of all zero bytes yields an empty record.
func BytesToRecord(buf []byte, recordAddress, keyLength, valueLength int64) (record Record, err error) {
	actual := int64(len(buf))
	expected := RecordLength(keyLength, valueLength)
	if actual < expected {
		err = fmt.Errorf("length of data in buf (%d) less than record size (%d)", actual, expected)
		return
	}

	state := buf[0]
	if state != RecordEmpty && state != RecordActive {
		err = fmt.Errorf("invalid record state %d at address %d", state, recordAddress)
		return
	}

	keyStart := conf.StateBytes
	valueStart := keyStart + keyLength

	key := make([]byte, keyLength)
	value := make([]byte, valueLength)
	_ = copy(key, buf[keyStart:valueStart])
	_ = copy(value, buf[valueStart:valueStart+valueLength])

	record = Record{
		State:         state,
		RecordAddress: recordAddress,
		Key:           key,
		Value:         value,
	}

	return
}

// RecordToBytes - Converts a Record struct to bytes, key and value are zero padded to their fixed lengths
func RecordToBytes(record Record, keyLength, valueLength int64) (buf []byte) {
	buf = make([]byte, RecordLength(keyLength, valueLength))
	buf[0] = record.State
	if record.State == RecordActive {
		_ = copy(buf[conf.StateBytes:conf.StateBytes+keyLength], record.Key)
		_ = copy(buf[conf.StateBytes+keyLength:], record.Value)
	}

	return
}

// BytesToBucket - Converts bucket raw data to a Bucket struct
func BytesToBucket(buf []byte, bucketAddress, keyLength, valueLength int64) (bucket Bucket, err error) {
	if int64(len(buf)) < conf.BucketHeaderLength {
		err = fmt.Errorf("length of data in buf (%d) less than bucket header size (%d)", len(buf), conf.BucketHeaderLength)
		return
	}

	localDepth := buf[conf.LocalDepthOffset]
	capacity := int64(binary.LittleEndian.Uint32(buf[conf.CapacityOffset:]))

	expected := BucketLength(capacity, keyLength, valueLength)
	if int64(len(buf)) < expected {
		err = fmt.Errorf("length of data in buf (%d) less than bucket size (%d)", len(buf), expected)
		return
	}

	records := make([]Record, capacity)
	recordLength := RecordLength(keyLength, valueLength)

	var start int64
	for i := int64(0); i < capacity; i++ {
		start = conf.BucketHeaderLength + i*recordLength
		records[i], err = BytesToRecord(buf[start:start+recordLength], bucketAddress+start, keyLength, valueLength)
		if err != nil {
			return
		}
	}

	bucket = Bucket{
		LocalDepth:    localDepth,
		BucketAddress: bucketAddress,
		Records:       records,
		keyLength:     keyLength,
		valueLength:   valueLength,
	}

	return
}

// BucketToBytes - Converts a Bucket struct to bytes, header first followed by all record slots in order
func BucketToBytes(bucket Bucket) (buf []byte) {
	buf = make([]byte, conf.BucketHeaderLength, BucketLength(bucket.Capacity(), bucket.keyLength, bucket.valueLength))
	buf[conf.LocalDepthOffset] = bucket.LocalDepth
	binary.LittleEndian.PutUint32(buf[conf.CapacityOffset:], uint32(bucket.Capacity()))

	for _, r := range bucket.Records {
		buf = append(buf, RecordToBytes(r, bucket.keyLength, bucket.valueLength)...)
	}

	return
}
