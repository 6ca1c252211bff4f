package exthashmap

import (
	"fmt"
	"io"

	"github.com/gostonefire/exthashmap/internal/model"
)

// Dump - Writes a text rendering of the directory and of every bucket with its active records to w.
// Meant for debugging small hash maps, the output grows with the number of records.
func (E *ExtHashMap[K, V]) Dump(w io.Writer) (err error) {
	info := E.Info()
	_, err = fmt.Fprintf(w, "hash map %s: global depth %d, hash bits %d, %d buckets of %d records\n",
		E.name, info.GlobalDepth, info.HashBits, info.NumberOfBuckets, info.RecordsPerBucket)
	if err != nil {
		return
	}

	pointers, err := E.directory.Pointers()
	if err != nil {
		return
	}

	_, err = fmt.Fprintln(w, "directory:")
	if err != nil {
		return
	}
	for i, p := range pointers {
		_, err = fmt.Fprintf(w, "  %0*b -> %d\n", max(int(info.GlobalDepth), 1), i, p)
		if err != nil {
			return
		}
	}

	_, err = fmt.Fprintln(w, "buckets:")
	if err != nil {
		return
	}

	var writeErr error
	err = E.store.TraverseAll(func(bucket model.Bucket) bool {
		writeErr = E.dumpBucket(w, bucket)
		return writeErr == nil
	})
	if err == nil {
		err = writeErr
	}

	return
}

// dumpBucket - Writes one bucket and its active records
func (E *ExtHashMap[K, V]) dumpBucket(w io.Writer, bucket model.Bucket) (err error) {
	_, err = fmt.Fprintf(w, "  @%d local depth %d, %d/%d records\n",
		bucket.BucketAddress, bucket.LocalDepth, bucket.ActiveCount(), bucket.Capacity())
	if err != nil {
		return
	}

	var key K
	var value V
	for r, slot := range bucket.Traverse() {
		if !r.IsActive() {
			continue
		}

		key, err = decode(E.keyCodec, r.Key, "key")
		if err != nil {
			return
		}
		value, err = decode(E.valueCodec, r.Value, "value")
		if err != nil {
			return
		}

		_, err = fmt.Fprintf(w, "    [%d] %v: %v\n", slot, key, value)
		if err != nil {
			return
		}
	}

	return
}
