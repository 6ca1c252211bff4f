package buckets

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/gostonefire/exthashmap/internal/fsync"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/utils"
)

// Directory - The part of the directory the store needs while inserting and splitting buckets
type Directory interface {
	GlobalDepth() uint8
	HashBits() uint8
	BucketAddress(hash uint64) (bucketAddress int64, err error)
	Double() (err error)
	IndicesPointingAt(bucketAddress int64) (indices []int64, err error)
	SetPointer(index int64, bucketAddress int64) (err error)
}

// SaturationError - Returned from Insert when a full bucket already uses every usable hash bit and can not be split
type SaturationError struct {
	LocalDepth uint8
	HashBits   uint8
}

// Error - Used to notify that a bucket could not be split
func (S SaturationError) Error() string {
	return fmt.Sprintf("bucket at local depth %d can not be split, only %d hash bits available", S.LocalDepth, S.HashBits)
}

// Store - Represents the file of fixed size buckets that an extendible hash map keeps its records in.
// Buckets are appended when needed and never removed, a bucket address stays valid for the life of the file.
type Store struct {
	fileName         string
	file             *os.File
	recordsPerBucket int64
	keyLength        int64
	valueLength      int64
	numberOfBuckets  int64
	fileSize         int64
	hashFunc         func(key []byte) (uint64, error)
	logger           *slog.Logger
}

// Conf - Is a struct to be passed in the call to NewStore and contains configuration that affects
// file processing.
//   - Name is the name to base the bucket file name on
//   - RecordsPerBucket is the fixed capacity of every bucket
//   - KeyLength is the fixed length of keys
//   - ValueLength is the fixed length of values
//   - HashFunc hashes a padded key, it is used to distribute records when a bucket splits
//   - Logger receives debug records on bucket splits
type Conf struct {
	Name             string
	RecordsPerBucket int64
	KeyLength        int64
	ValueLength      int64
	HashFunc         func(key []byte) (uint64, error)
	Logger           *slog.Logger
}

// GetFileName - Return the bucket file name given the hash map name
func GetFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-bkt.bin", name)
}

// NewStore - Returns a pointer to a new Store without any buckets.
// It always creates a new file (or opens and truncate an existing file)
//   - storeConf is a Conf struct providing configuration parameters
//
// It returns:
//   - store which is a pointer to the created instance
//   - err which is a standard Go type of error
func NewStore(storeConf Conf) (store *Store, err error) {
	if storeConf.RecordsPerBucket < 1 || storeConf.RecordsPerBucket > conf.MaxRecordsPerBucket {
		err = fmt.Errorf("records per bucket must be between 1 and %d", conf.MaxRecordsPerBucket)
		return
	}
	if storeConf.KeyLength < 1 || storeConf.ValueLength < 0 {
		err = fmt.Errorf("key length must be at least 1 and value length can not be negative")
		return
	}
	if storeConf.HashFunc == nil {
		err = fmt.Errorf("a hash function must be given")
		return
	}

	store = &Store{
		fileName:         GetFileName(storeConf.Name),
		recordsPerBucket: storeConf.RecordsPerBucket,
		keyLength:        storeConf.KeyLength,
		valueLength:      storeConf.ValueLength,
		fileSize:         conf.BucketFileHeaderLength,
		hashFunc:         storeConf.HashFunc,
		logger:           storeConf.Logger,
	}
	if store.logger == nil {
		store.logger = slog.Default()
	}

	err = store.createNewBucketFile()
	if err != nil {
		return
	}

	return
}

// NewStoreFromExistingFile - Returns a pointer to a Store given an existing file. If the file doesn't exist,
// doesn't have a valid header or if its file size seems wrong given size from header it fails with error.
//   - name is the name to base the bucket file name on
//   - hashFunc hashes a padded key, it has to be the same function the file was built with
//   - logger receives debug records on bucket splits
func NewStoreFromExistingFile(name string, hashFunc func(key []byte) (uint64, error), logger *slog.Logger) (store *Store, err error) {
	if hashFunc == nil {
		err = fmt.Errorf("a hash function must be given")
		return
	}

	store = &Store{fileName: GetFileName(name), hashFunc: hashFunc, logger: logger}
	if store.logger == nil {
		store.logger = slog.Default()
	}

	header, err := store.openBucketFile()
	if err != nil {
		return
	}

	store.recordsPerBucket = header.RecordsPerBucket
	store.keyLength = header.KeyLength
	store.valueLength = header.ValueLength
	store.numberOfBuckets = header.NumberOfBuckets
	store.fileSize = header.FileSize

	return
}

// GetFileHeader - Reads header data from a bucket file and returns it as a Header struct.
// This function opens the file for reading, thus expecting it to not already be open.
func GetFileHeader(name string) (header Header, err error) {
	file, err := os.OpenFile(GetFileName(name), os.O_RDONLY, 0644)
	if err != nil {
		return
	}
	defer func(file *os.File) { _ = file.Close() }(file)

	return readHeader(file)
}

// CloseFile - Flushes and closes the bucket file. The file is released even if flushing fails,
// the first error is returned. Closing an already closed bucket file does nothing.
func (S *Store) CloseFile() (err error) {
	if S.file == nil {
		return
	}

	err = S.file.Sync()
	if err != nil {
		err = fmt.Errorf("error while syncing bucket file: %w", err)
	}

	cerr := S.file.Close()
	if cerr != nil && err == nil {
		err = fmt.Errorf("error while closing bucket file: %w", cerr)
	}
	S.file = nil

	return
}

// RemoveFile - Removes the bucket file, make sure to close it first before calling this function
func (S *Store) RemoveFile() (err error) {
	if stat, ok := os.Stat(S.fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(S.fileName)
			if err != nil {
				err = fmt.Errorf("error while removing bucket file: %w", err)
				return
			}
		}
	}

	return
}

// Sync - Flushes written data to disk
func (S *Store) Sync() (err error) {
	err = fsync.File(S.file)
	if err != nil {
		err = fmt.Errorf("error while syncing bucket file: %w", err)
	}

	return
}

// GetStorageParameters - Returns a struct with storage parameters from the Store
func (S *Store) GetStorageParameters() (params model.StorageParameters) {
	params = model.StorageParameters{
		RecordsPerBucket: S.recordsPerBucket,
		KeyLength:        S.keyLength,
		ValueLength:      S.valueLength,
		NumberOfBuckets:  S.numberOfBuckets,
		BucketFileSize:   S.fileSize,
	}

	return
}

// CreateBucket - Appends a new empty bucket to the file
//   - localDepth is the local depth to give the new bucket
//
// It returns:
//   - bucketAddress is the address of the new bucket in the file
//   - err is standard error
func (S *Store) CreateBucket(localDepth uint8) (bucketAddress int64, err error) {
	bucket := model.NewBucket(localDepth, S.recordsPerBucket, S.keyLength, S.valueLength)
	bucket.SetAddress(S.fileSize)

	err = S.setBucket(bucket)
	if err != nil {
		err = fmt.Errorf("error while writing new bucket to bucket file: %w", err)
		return
	}

	err = S.setAllocation(S.numberOfBuckets+1, S.fileSize+S.bucketLength())
	if err != nil {
		err = fmt.Errorf("error while updating bucket file header: %w", err)
		return
	}

	bucketAddress = bucket.BucketAddress

	return
}

// GetBucket - Returns a bucket with all its records given its address
func (S *Store) GetBucket(bucketAddress int64) (bucket model.Bucket, err error) {
	err = S.checkAddress(bucketAddress)
	if err != nil {
		return
	}

	bucket, err = S.getBucket(bucketAddress)
	if err != nil {
		err = fmt.Errorf("error while reading bucket from bucket file: %w", err)
	}

	return
}

// ResetBucket - Rewrites a bucket with all records empty, the local depth of the bucket is kept
func (S *Store) ResetBucket(bucketAddress int64) (err error) {
	bucket, err := S.GetBucket(bucketAddress)
	if err != nil {
		return
	}

	bucket.Reset()

	err = S.setBucket(bucket)
	if err != nil {
		err = fmt.Errorf("error while writing reset bucket to bucket file: %w", err)
	}

	return
}

// Insert - Inserts a record in the bucket the key resolves to. If the bucket is full it is split, and the
// directory doubled when needed, until the record fits.
//   - key is the padded key
//   - value is the padded value
//   - dir is the directory resolving hash values to bucket addresses
//
// It returns:
//   - result is model.Inserted or model.RecordExists if the exact key and value pair was already stored
//   - err is standard error, a SaturationError if the bucket could not be split
func (S *Store) Insert(key, value []byte, dir Directory) (result model.InsertResult, err error) {
	if err = S.checkLengths(key, value); err != nil {
		return
	}

	hash, err := S.hashFunc(key)
	if err != nil {
		err = fmt.Errorf("error while hashing key: %w", err)
		return
	}

	var bucketAddress int64
	var bucket model.Bucket
	var slot int
	for {
		bucketAddress, err = dir.BucketAddress(hash)
		if err != nil {
			return
		}

		bucket, err = S.GetBucket(bucketAddress)
		if err != nil {
			return
		}

		slot, result = bucket.Insert(key, value)
		switch result {
		case model.Inserted:
			err = S.setRecord(bucket.Records[slot])
			if err != nil {
				err = fmt.Errorf("error while writing record to bucket file: %w", err)
			}
			return
		case model.RecordExists:
			return
		}

		err = S.split(bucket, hash, dir)
		if err != nil {
			return
		}
	}
}

// Search - Returns values of all records with the given key, in slot order
func (S *Store) Search(key []byte, dir Directory) (values [][]byte, err error) {
	bucket, err := S.resolve(key, dir)
	if err != nil {
		return
	}

	values = bucket.Search(key)

	return
}

// SearchKeysByValue - Returns keys of all records in a single bucket that carry the given value
func (S *Store) SearchKeysByValue(value []byte, bucketAddress int64) (keys [][]byte, err error) {
	bucket, err := S.GetBucket(bucketAddress)
	if err != nil {
		return
	}

	keys = bucket.SearchKeysByValue(value)

	return
}

// Delete - Deletes all records with the given key and returns the number of records deleted
func (S *Store) Delete(key []byte, dir Directory) (count int, err error) {
	bucket, err := S.resolve(key, dir)
	if err != nil {
		return
	}

	slots := bucket.Delete(key)
	for _, slot := range slots {
		err = S.setRecord(bucket.Records[slot])
		if err != nil {
			err = fmt.Errorf("error while writing deleted record to bucket file: %w", err)
			return
		}
		count++
	}

	return
}

// DeleteExact - Deletes one record with the given key and value, ok is false if there was none
func (S *Store) DeleteExact(key, value []byte, dir Directory) (ok bool, err error) {
	bucket, err := S.resolve(key, dir)
	if err != nil {
		return
	}

	slot, ok := bucket.DeleteExact(key, value)
	if !ok {
		return
	}

	err = S.setRecord(bucket.Records[slot])
	if err != nil {
		ok = false
		err = fmt.Errorf("error while writing deleted record to bucket file: %w", err)
	}

	return
}

// TraverseAll - Reads every bucket in file order and hands it to visitor. Traversal stops when visitor returns
// false or when a bucket can not be read.
func (S *Store) TraverseAll(visitor func(bucket model.Bucket) (next bool)) (err error) {
	var bucket model.Bucket
	bucketLength := S.bucketLength()
	for i := int64(0); i < S.numberOfBuckets; i++ {
		bucket, err = S.getBucket(conf.BucketFileHeaderLength + i*bucketLength)
		if err != nil {
			err = fmt.Errorf("error while reading bucket %d from bucket file: %w", i, err)
			return
		}

		if !visitor(bucket) {
			return
		}
	}

	return
}

// split - Splits a full bucket in two by one more bit of the hash.
// The sibling is written and the directory redirected before the original bucket is rewritten, so a failure
// part way leaves every record reachable.
//   - bucket is the full bucket
//   - hash is the hash of the key waiting to be inserted
//   - dir is the directory to redirect, and double if needed
func (S *Store) split(bucket model.Bucket, hash uint64, dir Directory) (err error) {
	d := bucket.LocalDepth
	hashBits := dir.HashBits()
	if d >= hashBits {
		err = SaturationError{LocalDepth: d, HashBits: hashBits}
		return
	}

	separable, err := S.separable(bucket, hash, hashBits)
	if err != nil {
		return
	}
	if !separable {
		err = SaturationError{LocalDepth: d, HashBits: hashBits}
		return
	}

	if d == dir.GlobalDepth() {
		err = dir.Double()
		if err != nil {
			err = fmt.Errorf("error while doubling directory: %w", err)
			return
		}
	}

	siblingAddress, err := S.CreateBucket(d + 1)
	if err != nil {
		return
	}

	kept := bucket.Sibling(d + 1)
	kept.SetAddress(bucket.BucketAddress)
	moved := bucket.Sibling(d + 1)
	moved.SetAddress(siblingAddress)

	var h uint64
	for r := range bucket.Traverse() {
		if !r.IsActive() {
			continue
		}

		h, err = S.hashFunc(r.Key)
		if err != nil {
			err = fmt.Errorf("error while hashing key during split: %w", err)
			return
		}

		if utils.BitIsSet(h, d) {
			_, _ = moved.Insert(r.Key, r.Value)
		} else {
			_, _ = kept.Insert(r.Key, r.Value)
		}
	}

	err = S.setBucket(moved)
	if err != nil {
		err = fmt.Errorf("error while writing split sibling to bucket file: %w", err)
		return
	}

	indices, err := dir.IndicesPointingAt(bucket.BucketAddress)
	if err != nil {
		return
	}
	for _, index := range indices {
		if utils.BitIsSet(uint64(index), d) {
			err = dir.SetPointer(index, siblingAddress)
			if err != nil {
				return
			}
		}
	}

	err = S.setBucket(kept)
	if err != nil {
		err = fmt.Errorf("error while writing split bucket to bucket file: %w", err)
		return
	}

	S.logger.Debug("bucket split",
		"bucket", bucket.BucketAddress,
		"sibling", siblingAddress,
		"localDepth", d+1,
		"kept", kept.ActiveCount(),
		"moved", moved.ActiveCount(),
	)

	return
}
