package exthashmap

import (
	"errors"
	"fmt"

	"github.com/gostonefire/exthashmap/codec"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/storage/buckets"
	"github.com/gostonefire/exthashmap/internal/utils"
)

// Insert - Adds a record to the hash map. Several records may share a key as long as their values differ.
// When the bucket the key resolves to is full it is split, and the directory doubled if needed, until the record fits.
//   - key is the key of the record, its encoding must not exceed the key codec MaxSize
//   - value is the value of the record, its encoding must not exceed the value codec MaxSize
//
// It returns:
//   - err is RecordExists if the exact pair is already stored, EncodingOverflow, HashSaturation or a standard error
func (E *ExtHashMap[K, V]) Insert(key K, value V) (err error) {
	k, err := encode(E.keyCodec, key, "key")
	if err != nil {
		return
	}
	v, err := encode(E.valueCodec, value, "value")
	if err != nil {
		return
	}

	return E.insert(k, v)
}

// Search - Returns the values of all records with the given key, in bucket slot order.
// No match is not an error, values is then empty.
func (E *ExtHashMap[K, V]) Search(key K) (values []V, err error) {
	k, err := encode(E.keyCodec, key, "key")
	if err != nil {
		return
	}

	if !E.mayContain(k) {
		return
	}

	raw, err := E.store.Search(k, E.directory)
	if err != nil {
		err = fmt.Errorf("error while searching bucket: %w", err)
		return
	}

	values, err = decodeAll(E.valueCodec, raw, "value")

	return
}

// SearchKeysByValue - Returns the keys of all records with the given value. Values are not indexed, so every bucket
// is read once, in the order they are first referenced from the directory.
func (E *ExtHashMap[K, V]) SearchKeysByValue(value V) (keys []K, err error) {
	v, err := encode(E.valueCodec, value, "value")
	if err != nil {
		return
	}

	pointers, err := E.directory.Pointers()
	if err != nil {
		return
	}

	var raw [][]byte
	visited := make(map[int64]bool)
	for _, bucketAddress := range pointers {
		if visited[bucketAddress] {
			continue
		}
		visited[bucketAddress] = true

		raw, err = E.store.SearchKeysByValue(v, bucketAddress)
		if err != nil {
			err = fmt.Errorf("error while searching bucket: %w", err)
			return
		}

		var decoded []K
		decoded, err = decodeAll(E.keyCodec, raw, "key")
		if err != nil {
			return
		}
		keys = append(keys, decoded...)
	}

	return
}

// Delete - Removes all records with the given key and returns how many were removed
func (E *ExtHashMap[K, V]) Delete(key K) (count int, err error) {
	k, err := encode(E.keyCodec, key, "key")
	if err != nil {
		return
	}

	if !E.mayContain(k) {
		return
	}

	count, err = E.store.Delete(k, E.directory)
	if err != nil {
		err = fmt.Errorf("error while deleting records: %w", err)
		return
	}

	if count > 0 {
		err = E.sync()
	}

	return
}

// DeleteExact - Removes the record with the given key and value, ok is false if there was no such record
func (E *ExtHashMap[K, V]) DeleteExact(key K, value V) (ok bool, err error) {
	k, err := encode(E.keyCodec, key, "key")
	if err != nil {
		return
	}
	v, err := encode(E.valueCodec, value, "value")
	if err != nil {
		return
	}

	if !E.mayContain(k) {
		return
	}

	ok, err = E.store.DeleteExact(k, v, E.directory)
	if err != nil {
		err = fmt.Errorf("error while deleting record: %w", err)
		return
	}

	if ok {
		err = E.sync()
	}

	return
}

// Traverse - Calls visitor with every record in the hash map, bucket by bucket in file order and slot order within
// a bucket. Traversal stops when visitor returns false.
func (E *ExtHashMap[K, V]) Traverse(visitor func(key K, value V) (next bool)) (err error) {
	var decodeErr error
	err = E.traverseRecords(func(record model.Record) bool {
		var key K
		var value V
		key, decodeErr = decode(E.keyCodec, record.Key, "key")
		if decodeErr != nil {
			return false
		}
		value, decodeErr = decode(E.valueCodec, record.Value, "value")
		if decodeErr != nil {
			return false
		}

		return visitor(key, value)
	})
	if err == nil {
		err = decodeErr
	}

	return
}

// Stat - Walks through all buckets and produce a HashMapStat struct with information.
// If the bucket file is very big, this can take a considerable amount of time and the
// HashMapStat.BucketDistribution slice can be very memory heavy (there will be one entry per bucket).
//   - includeDistribution set to true will include a slice with number of records per bucket, false will set HashMapStat.BucketDistribution to nil.
func (E *ExtHashMap[K, V]) Stat(includeDistribution bool) (hashMapStat *HashMapStat, err error) {
	sp := E.store.GetStorageParameters()
	hms := HashMapStat{
		Buckets:             sp.NumberOfBuckets,
		GlobalDepth:         E.directory.GlobalDepth(),
		LocalDepthHistogram: make(map[uint8]int64),
	}
	if includeDistribution {
		hms.BucketDistribution = make([]int64, 0, sp.NumberOfBuckets)
	}

	err = E.store.TraverseAll(func(bucket model.Bucket) bool {
		active := bucket.ActiveCount()
		hms.Records += active
		hms.LocalDepthHistogram[bucket.LocalDepth]++
		if includeDistribution {
			hms.BucketDistribution = append(hms.BucketDistribution, active)
		}
		return true
	})
	if err != nil {
		return
	}

	if capacity := sp.NumberOfBuckets * sp.RecordsPerBucket; capacity > 0 {
		hms.AverageFillFactor = float64(hms.Records) / float64(capacity)
	}

	hashMapStat = &hms

	return
}

// Clear - Removes every record while keeping the directory and all buckets allocated
func (E *ExtHashMap[K, V]) Clear() (err error) {
	var addresses []int64
	err = E.store.TraverseAll(func(bucket model.Bucket) bool {
		addresses = append(addresses, bucket.BucketAddress)
		return true
	})
	if err != nil {
		return
	}

	for _, bucketAddress := range addresses {
		err = E.store.ResetBucket(bucketAddress)
		if err != nil {
			return
		}
	}

	if E.filter != nil {
		E.filter.ClearAll()
	}

	E.logger.Debug("hash map cleared", "name", E.name, "buckets", len(addresses))

	return E.sync()
}

// insert - Inserts padded key and value bytes, turning store outcomes into the hash map errors
func (E *ExtHashMap[K, V]) insert(key, value []byte) (err error) {
	result, err := E.store.Insert(key, value, E.directory)
	if err != nil {
		var saturation buckets.SaturationError
		if errors.As(err, &saturation) {
			E.logger.Warn("hash saturation",
				"name", E.name,
				"localDepth", saturation.LocalDepth,
				"hashBits", saturation.HashBits,
			)
			err = HashSaturation{LocalDepth: saturation.LocalDepth, HashBits: saturation.HashBits}
			return
		}

		err = fmt.Errorf("error while inserting record: %w", err)
		return
	}

	if result == model.RecordExists {
		err = RecordExists{}
		return
	}

	if E.filter != nil {
		E.filter.Add(key)
	}

	return E.sync()
}

// mayContain - Returns false only if the bloom filter is in use and tells that the key is not stored
func (E *ExtHashMap[K, V]) mayContain(key []byte) bool {
	return E.filter == nil || E.filter.Test(key)
}

// traverseRecords - Calls visitor with every active record, stops when visitor returns false
func (E *ExtHashMap[K, V]) traverseRecords(visitor func(record model.Record) (next bool)) (err error) {
	next := true
	err = E.store.TraverseAll(func(bucket model.Bucket) bool {
		for r := range bucket.Traverse() {
			if !r.IsActive() {
				continue
			}
			if next = visitor(r); !next {
				break
			}
		}
		return next
	})
	if err != nil {
		err = fmt.Errorf("error while traversing buckets: %w", err)
	}

	return
}

// encode - Encodes a key or value and pads it to the fixed width, rejects encodings longer than the codec declares
func encode[T any](c codec.Codec[T], value T, field string) (buf []byte, err error) {
	b, err := c.Encode(value)
	if err != nil {
		err = fmt.Errorf("error while encoding %s: %w", field, err)
		return
	}

	if len(b) > c.MaxSize() {
		err = EncodingOverflow{Field: field, Size: len(b), MaxSize: c.MaxSize()}
		return
	}

	buf = utils.PadBytes(b, int64(c.MaxSize()))

	return
}

// decode - Decodes a padded key or value
func decode[T any](c codec.Codec[T], buf []byte, field string) (value T, err error) {
	value, err = c.Decode(buf)
	if err != nil {
		err = fmt.Errorf("error while decoding %s: %w", field, err)
	}

	return
}

// decodeAll - Decodes a list of padded keys or values
func decodeAll[T any](c codec.Codec[T], bufs [][]byte, field string) (values []T, err error) {
	values = make([]T, 0, len(bufs))

	var value T
	for _, buf := range bufs {
		value, err = decode(c, buf, field)
		if err != nil {
			values = nil
			return
		}
		values = append(values, value)
	}

	return
}
