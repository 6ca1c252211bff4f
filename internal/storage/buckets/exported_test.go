//go:build unit

package buckets

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/storage/directory"
	"github.com/gostonefire/exthashmap/internal/utils"
	"github.com/stretchr/testify/assert"
)

// identityHash - Uses the first key byte as hash
func identityHash(key []byte) (uint64, error) {
	return uint64(key[0]), nil
}

// xxHash - Hashes the whole padded key
func xxHash(key []byte) (uint64, error) {
	return xxhash.Sum64(key), nil
}

// newTestMap - Creates a store with one bucket and a directory pointing at it
func newTestMap(t *testing.T, recordsPerBucket, keyLength, valueLength int64, hashBits uint8, hashFunc func([]byte) (uint64, error)) (store *Store, dir *directory.Directory, name string) {
	name = filepath.Join(t.TempDir(), "test")

	store, err := NewStore(Conf{
		Name:             name,
		RecordsPerBucket: recordsPerBucket,
		KeyLength:        keyLength,
		ValueLength:      valueLength,
		HashFunc:         hashFunc,
	})
	assert.NoError(t, err, "create store")

	bucketAddress, err := store.CreateBucket(0)
	assert.NoError(t, err, "create initial bucket")

	dir, err = directory.NewDirectory(directory.Conf{Name: name, HashBits: hashBits}, bucketAddress)
	assert.NoError(t, err, "create directory")

	t.Cleanup(func() {
		_ = store.CloseFile()
		_ = dir.CloseFile()
	})

	return
}

// activeKeys - Returns the first byte of every active key in a bucket
func activeKeys(bucket model.Bucket) (keys []byte) {
	for r := range bucket.Traverse() {
		if r.IsActive() {
			keys = append(keys, r.Key[0])
		}
	}
	return
}

func TestNewStore(t *testing.T) {
	t.Run("creates bucket file with header only", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "test")

		// Execute
		store, err := NewStore(Conf{Name: name, RecordsPerBucket: 21, KeyLength: 4, ValueLength: 8, HashFunc: xxHash})

		// Check
		assert.NoError(t, err, "create store")
		sp := store.GetStorageParameters()
		assert.Equal(t, int64(21), sp.RecordsPerBucket)
		assert.Equal(t, int64(0), sp.NumberOfBuckets)
		assert.Equal(t, conf.BucketFileHeaderLength, sp.BucketFileSize)

		// Clean up
		store.CloseFile()
		assert.NoError(t, store.RemoveFile())
		_, err = os.Stat(GetFileName(name))
		assert.True(t, os.IsNotExist(err), "bucket file removed")
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		// Prepare
		name := filepath.Join(t.TempDir(), "test")

		// Execute
		_, err1 := NewStore(Conf{Name: name, RecordsPerBucket: 0, KeyLength: 4, ValueLength: 8, HashFunc: xxHash})
		_, err2 := NewStore(Conf{Name: name, RecordsPerBucket: 70000, KeyLength: 4, ValueLength: 8, HashFunc: xxHash})
		_, err3 := NewStore(Conf{Name: name, RecordsPerBucket: 2, KeyLength: 0, ValueLength: 8, HashFunc: xxHash})
		_, err4 := NewStore(Conf{Name: name, RecordsPerBucket: 2, KeyLength: 4, ValueLength: 8})

		// Check
		assert.Error(t, err1)
		assert.Error(t, err2)
		assert.Error(t, err3)
		assert.Error(t, err4)
	})
}

func TestStore_CreateBucket(t *testing.T) {
	t.Run("appends buckets and updates header", func(t *testing.T) {
		// Prepare
		store, _, name := newTestMap(t, 3, 2, 2, 32, xxHash)
		bucketLength := model.BucketLength(3, 2, 2)

		// Execute
		address, err := store.CreateBucket(4)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, conf.BucketFileHeaderLength+bucketLength, address)

		bucket, err := store.GetBucket(address)
		assert.NoError(t, err)
		assert.Equal(t, uint8(4), bucket.LocalDepth)
		assert.Equal(t, int64(0), bucket.ActiveCount())

		header, err := GetFileHeader(name)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), header.NumberOfBuckets)
		assert.Equal(t, conf.BucketFileHeaderLength+2*bucketLength, header.FileSize)

		_, err = store.GetBucket(address + 1)
		assert.Error(t, err, "unaligned address")
		_, err = store.GetBucket(address + bucketLength)
		assert.Error(t, err, "address beyond last bucket")
	})
}

func TestStore_Insert(t *testing.T) {
	t.Run("splits with directory doubling", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, identityHash)

		// Execute
		r1, err1 := store.Insert([]byte{1}, []byte{'a'}, dir)
		r2, err2 := store.Insert([]byte{2}, []byte{'b'}, dir)

		// Check
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Equal(t, model.Inserted, r1)
		assert.Equal(t, model.Inserted, r2)
		assert.Equal(t, uint8(0), dir.GlobalDepth(), "both keys fit in the first bucket")

		// Execute
		r3, err3 := store.Insert([]byte{3}, []byte{'c'}, dir)

		// Check
		assert.NoError(t, err3)
		assert.Equal(t, model.Inserted, r3)
		assert.Equal(t, uint8(1), dir.GlobalDepth())

		a0, _ := dir.Pointer(0)
		a1, _ := dir.Pointer(1)
		assert.NotEqual(t, a0, a1)

		b0, err := store.GetBucket(a0)
		assert.NoError(t, err)
		b1, err := store.GetBucket(a1)
		assert.NoError(t, err)
		assert.Equal(t, []byte{2}, activeKeys(b0), "even keys at index 0")
		assert.Equal(t, []byte{1, 3}, activeKeys(b1), "odd keys at index 1")
		assert.Equal(t, uint8(1), b0.LocalDepth)
		assert.Equal(t, uint8(1), b1.LocalDepth)

		values, err := store.Search([]byte{3}, dir)
		assert.NoError(t, err)
		assert.Equal(t, [][]byte{{'c'}}, values)
	})

	t.Run("split without doubling when local depth is below global depth", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, identityHash)
		for _, k := range []byte{1, 2, 3} {
			_, err := store.Insert([]byte{k}, []byte{k}, dir)
			assert.NoError(t, err)
		}
		// Index 1 holds {1, 3}, two more odd keys split it at depth 2, doubling once
		_, err := store.Insert([]byte{5}, []byte{5}, dir)
		assert.NoError(t, err)
		assert.Equal(t, uint8(2), dir.GlobalDepth())

		// Execute
		_, err = store.Insert([]byte{4}, []byte{4}, dir)
		assert.NoError(t, err)
		_, err = store.Insert([]byte{6}, []byte{6}, dir)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, uint8(2), dir.GlobalDepth(), "even bucket split at depth 1 without doubling")

		pointers, err := dir.Pointers()
		assert.NoError(t, err)
		seen := make(map[int64]bool)
		for _, p := range pointers {
			seen[p] = true
		}
		assert.Len(t, seen, 4, "four distinct buckets")
	})

	t.Run("exact duplicate is reported", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, identityHash)
		_, err := store.Insert([]byte{1}, []byte{'a'}, dir)
		assert.NoError(t, err)

		// Execute
		result, err := store.Insert([]byte{1}, []byte{'a'}, dir)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, model.RecordExists, result)
	})

	t.Run("hash saturation when all keys share a hash", func(t *testing.T) {
		// Prepare
		constant := func(key []byte) (uint64, error) { return 0, nil }
		store, dir, _ := newTestMap(t, 1, 1, 1, 2, constant)
		_, err := store.Insert([]byte{1}, []byte{1}, dir)
		assert.NoError(t, err)

		// Execute
		_, err = store.Insert([]byte{2}, []byte{2}, dir)

		// Check
		var saturation SaturationError
		assert.True(t, errors.As(err, &saturation), "saturation error")
		assert.Equal(t, uint8(0), saturation.LocalDepth)
		assert.Equal(t, uint8(2), saturation.HashBits)
		assert.Equal(t, uint8(0), dir.GlobalDepth(), "directory not doubled")
		assert.Equal(t, int64(1), store.GetStorageParameters().NumberOfBuckets, "no sibling allocated")

		values, err := store.Search([]byte{1}, dir)
		assert.NoError(t, err)
		assert.Equal(t, [][]byte{{1}}, values, "existing record still reachable")
	})

	t.Run("hash saturation when keys differ only above hash bits", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 1, 1, 1, 2, identityHash)
		_, err := store.Insert([]byte{0}, []byte{1}, dir)
		assert.NoError(t, err)

		// Execute
		_, err = store.Insert([]byte{4}, []byte{2}, dir)

		// Check
		var saturation SaturationError
		assert.True(t, errors.As(err, &saturation), "saturation error")
		assert.Equal(t, uint8(0), dir.GlobalDepth())
		assert.Equal(t, int64(1), store.GetStorageParameters().NumberOfBuckets)
	})

	t.Run("hash saturation for one key with more values than a bucket holds", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, xxHash)
		for _, v := range []byte{'a', 'b'} {
			_, err := store.Insert([]byte{7}, []byte{v}, dir)
			assert.NoError(t, err)
		}

		// Execute
		_, err := store.Insert([]byte{7}, []byte{'c'}, dir)

		// Check
		var saturation SaturationError
		assert.True(t, errors.As(err, &saturation), "saturation error")
		assert.Equal(t, uint8(32), saturation.HashBits)
		assert.Equal(t, uint8(0), dir.GlobalDepth(), "directory not doubled")
		assert.Equal(t, int64(1), store.GetStorageParameters().NumberOfBuckets, "no sibling allocated")
	})

	t.Run("splits keys that share low bits but differ within hash bits", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 1, 1, 1, 4, identityHash)
		_, err := store.Insert([]byte{0}, []byte{1}, dir)
		assert.NoError(t, err)

		// Execute
		_, err = store.Insert([]byte{8}, []byte{2}, dir)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, uint8(4), dir.GlobalDepth(), "split cascades to the first differing bit")
	})

	t.Run("rejects wrong key and value lengths", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 2, 1, 32, xxHash)

		// Execute
		_, err1 := store.Insert([]byte{1}, []byte{1}, dir)
		_, err2 := store.Insert([]byte{1, 2}, []byte{1, 2}, dir)

		// Check
		assert.Error(t, err1)
		assert.Error(t, err2)
	})
}

func TestStore_SplitInvariants(t *testing.T) {
	t.Run("records are conserved and aliasing indices agree on low local depth bits", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 4, 8, 8, 32, xxHash)
		n := 500

		// Execute
		key := make([]byte, 8)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(key, uint64(i))
			_, err := store.Insert(key, key, dir)
			assert.NoError(t, err)
		}

		// Check
		var total int64
		err := store.TraverseAll(func(bucket model.Bucket) bool {
			total += bucket.ActiveCount()
			assert.LessOrEqual(t, bucket.LocalDepth, dir.GlobalDepth(), "local depth within global depth")
			return true
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(n), total, "every record stored once")

		pointers, err := dir.Pointers()
		assert.NoError(t, err)
		assert.Equal(t, int64(1)<<dir.GlobalDepth(), int64(len(pointers)), "directory length is 2^globalDepth")

		for i, p := range pointers {
			bucket, err := store.GetBucket(p)
			assert.NoError(t, err)
			for r := range bucket.Traverse() {
				if !r.IsActive() {
					continue
				}
				h, _ := xxHash(r.Key)
				assert.Equal(t, utils.LowBits(uint64(i), bucket.LocalDepth), utils.LowBits(h, bucket.LocalDepth))
			}
		}

		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(key, uint64(i))
			values, err := store.Search(key, dir)
			assert.NoError(t, err)
			assert.Len(t, values, 1)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("delete and delete exact", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 4, 1, 1, 32, identityHash)
		for _, v := range []byte{'a', 'b', 'c'} {
			_, err := store.Insert([]byte{1}, []byte{v}, dir)
			assert.NoError(t, err)
		}

		// Execute
		ok, err := store.DeleteExact([]byte{1}, []byte{'b'}, dir)

		// Check
		assert.NoError(t, err)
		assert.True(t, ok)
		values, _ := store.Search([]byte{1}, dir)
		assert.Equal(t, [][]byte{{'a'}, {'c'}}, values)

		// Execute
		count, err := store.Delete([]byte{1}, dir)

		// Check
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
		values, _ = store.Search([]byte{1}, dir)
		assert.Empty(t, values)

		ok, err = store.DeleteExact([]byte{1}, []byte{'a'}, dir)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_ResetBucket(t *testing.T) {
	t.Run("empties bucket and keeps local depth", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, identityHash)
		for _, k := range []byte{1, 2, 3} {
			_, err := store.Insert([]byte{k}, []byte{k}, dir)
			assert.NoError(t, err)
		}
		address, _ := dir.Pointer(1)

		// Execute
		err := store.ResetBucket(address)

		// Check
		assert.NoError(t, err)
		bucket, err := store.GetBucket(address)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), bucket.ActiveCount())
		assert.Equal(t, uint8(1), bucket.LocalDepth)
	})
}

func TestNewStoreFromExistingFile(t *testing.T) {
	t.Run("reopens with records preserved", func(t *testing.T) {
		// Prepare
		store, dir, name := newTestMap(t, 2, 1, 1, 32, identityHash)
		for _, k := range []byte{1, 2, 3, 4, 5} {
			_, err := store.Insert([]byte{k}, []byte{k}, dir)
			assert.NoError(t, err)
		}
		sp := store.GetStorageParameters()
		store.CloseFile()

		// Execute
		store, err := NewStoreFromExistingFile(name, identityHash, nil)

		// Check
		assert.NoError(t, err, "open existing store")
		defer store.CloseFile()
		assert.Equal(t, sp, store.GetStorageParameters())
		for _, k := range []byte{1, 2, 3, 4, 5} {
			values, err := store.Search([]byte{k}, dir)
			assert.NoError(t, err)
			assert.Equal(t, [][]byte{{k}}, values)
		}
	})

	t.Run("error when file is truncated", func(t *testing.T) {
		// Prepare
		store, _, name := newTestMap(t, 2, 1, 1, 32, identityHash)
		sp := store.GetStorageParameters()
		store.CloseFile()
		assert.NoError(t, os.Truncate(GetFileName(name), sp.BucketFileSize-1))

		// Execute
		_, err := NewStoreFromExistingFile(name, identityHash, nil)

		// Check
		assert.Error(t, err)
	})

	t.Run("error when file does not exist", func(t *testing.T) {
		// Execute
		_, err := NewStoreFromExistingFile(filepath.Join(t.TempDir(), "missing"), identityHash, nil)

		// Check
		assert.Error(t, err)
	})
}

func TestStore_CloseFile(t *testing.T) {
	t.Run("flushes and closes an open file", func(t *testing.T) {
		// Prepare
		store, dir, _ := newTestMap(t, 2, 1, 1, 32, identityHash)
		_, err := store.Insert([]byte{1}, []byte{1}, dir)
		assert.NoError(t, err)

		// Execute
		err1 := store.CloseFile()
		err2 := store.CloseFile()

		// Check
		assert.NoError(t, err1)
		assert.NoError(t, err2, "closing twice does nothing")
		assert.Nil(t, store.file)
	})

	t.Run("error when the file handle is already closed", func(t *testing.T) {
		// Prepare
		store, _, _ := newTestMap(t, 2, 1, 1, 32, identityHash)
		assert.NoError(t, store.file.Close())

		// Execute
		err := store.CloseFile()

		// Check
		assert.ErrorIs(t, err, os.ErrClosed)
		assert.Nil(t, store.file, "file is released even on error")
	})
}
