package exthashmap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/gostonefire/exthashmap/codec"
	"github.com/gostonefire/exthashmap/hashfunc"
	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/gostonefire/exthashmap/internal/hash"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/storage/buckets"
	"github.com/gostonefire/exthashmap/internal/storage/directory"
)

// defaultBloomFilterFPR - False positive rate used for the bloom filter if nothing else is given
const defaultBloomFilterFPR float64 = 0.01

// Conf - Is a struct to be passed in the call to NewExtHashMap and contains configuration that affects
// file creation and processing. Go zero values select the defaults.
//   - RecordsPerBucket is the number of records each bucket can hold, default 21 and max 65535. Ignored when opening existing files.
//   - HashFunc is an optional custom hash function, nil selects the internal xxhash over the encoded key.
//   - HashBits is the number of low order hash bits that may be used for routing, default 32 and max 64. Ignored when opening existing files.
//   - NoSync set to true skips flushing files to disk after each modifying operation.
//   - BloomFilterKeys is the expected number of keys, a value higher than zero enables an in memory bloom filter guarding searches and deletes.
//   - BloomFilterFPR is the false positive rate of the bloom filter, default 0.01.
//   - Logger receives structured log records, default slog.Default().
type Conf[K any] struct {
	RecordsPerBucket int
	HashFunc         hashfunc.HashFunc[K]
	HashBits         uint8
	NoSync           bool
	BloomFilterKeys  uint
	BloomFilterFPR   float64
	Logger           *slog.Logger
}

// HashMapInfo - Information structure containing some information about the hash map
//   - RecordsPerBucket is the number of record entries available in each bucket
//   - KeyLength is the fixed width of the key part of a record
//   - ValueLength is the fixed width of the value part of a record
//   - InternalHash is true if the internal hash function is used
//   - HashBits is the number of usable hash bits
//   - GlobalDepth is the current number of hash bits used to index the directory
//   - NumberOfBuckets is the total number of allocated buckets
//   - DirectoryFileSize is the size of the directory file
//   - BucketFileSize is the size of the bucket file
type HashMapInfo struct {
	RecordsPerBucket  int64
	KeyLength         int64
	ValueLength       int64
	InternalHash      bool
	HashBits          uint8
	GlobalDepth       uint8
	NumberOfBuckets   int64
	DirectoryFileSize int64
	BucketFileSize    int64
}

// HashMapStat - Statistics on the overall usage and distribution over buckets
//   - Records is the total number of records stored
//   - Buckets is the number of allocated buckets
//   - GlobalDepth is the current global depth of the directory
//   - AverageFillFactor is records divided by the total record capacity of all buckets
//   - LocalDepthHistogram is the number of buckets at each local depth
//   - BucketDistribution is the number of records stored in each bucket in file order, nil unless asked for
type HashMapStat struct {
	Records             int64
	Buckets             int64
	GlobalDepth         uint8
	AverageFillFactor   float64
	LocalDepthHistogram map[uint8]int64
	BucketDistribution  []int64
}

// ExtHashMap - The main implementation struct, an extendible hash map stored in a directory file and a bucket file.
// It is not safe for concurrent use.
type ExtHashMap[K, V any] struct {
	name         string
	keyCodec     codec.Codec[K]
	valueCodec   codec.Codec[V]
	keyLength    int64
	valueLength  int64
	internalHash bool
	noSync       bool
	directory    *directory.Directory
	store        *buckets.Store
	filter       *bloom.BloomFilter
	logger       *slog.Logger
}

// NewExtHashMap - Returns an extendible hash map backed by files named from name. If the files exist they are opened
// and their headers trusted, otherwise new files are created holding one empty bucket at global depth 0.
//   - name is the name of the hash map and will be used to form file names, it may include a path
//   - keyCodec encodes keys, its MaxSize is the fixed key width
//   - valueCodec encodes values, its MaxSize is the fixed value width
//   - hmConf is a Conf struct with optional settings
//
// It returns:
//   - extHashMap is a pointer to an ExtHashMap struct
//   - hashMapInfo is a HashMapInfo struct containing some data regarding the hash map created or opened.
//   - err is a normal go Error which should be nil if everything went ok, a HeaderMismatch if existing files don't match codecs or hash function
func NewExtHashMap[K, V any](name string, keyCodec codec.Codec[K], valueCodec codec.Codec[V], hmConf Conf[K]) (
	extHashMap *ExtHashMap[K, V],
	hashMapInfo HashMapInfo,
	err error,
) {
	if name == "" {
		err = fmt.Errorf("name can not be empty, it will be used to name physical files")
		return
	}
	if keyCodec == nil || valueCodec == nil {
		err = fmt.Errorf("both a key codec and a value codec must be given")
		return
	}
	if keyCodec.MaxSize() <= 0 {
		err = fmt.Errorf("key codec max size must be a positive value higher than 0 (zero)")
		return
	}
	if valueCodec.MaxSize() < 0 {
		err = fmt.Errorf("value codec max size can not be negative")
		return
	}

	hmConf, err = withDefaults(hmConf)
	if err != nil {
		return
	}

	ehm := &ExtHashMap[K, V]{
		name:         name,
		keyCodec:     keyCodec,
		valueCodec:   valueCodec,
		keyLength:    int64(keyCodec.MaxSize()),
		valueLength:  int64(valueCodec.MaxSize()),
		internalHash: hmConf.HashFunc == nil,
		noSync:       hmConf.NoSync,
		logger:       hmConf.Logger,
	}

	storeHash := hash.Internal
	if !ehm.internalHash {
		storeHash = hash.Decoding(keyCodec.Decode, hmConf.HashFunc)
	}

	dirExists := fileExists(directory.GetFileName(name))
	bktExists := fileExists(buckets.GetFileName(name))
	switch {
	case dirExists && bktExists:
		err = ehm.openFiles(storeHash)
	case !dirExists && !bktExists:
		err = ehm.createFiles(storeHash, hmConf)
	default:
		err = fmt.Errorf("only one of the directory and bucket files exists for %s", name)
	}
	if err != nil {
		return
	}

	if hmConf.BloomFilterKeys > 0 {
		ehm.filter = bloom.NewWithEstimates(hmConf.BloomFilterKeys, hmConf.BloomFilterFPR)
		if dirExists {
			err = ehm.rebuildFilter()
			if err != nil {
				_ = ehm.CloseFiles()
				return
			}
		}
	}

	extHashMap = ehm
	hashMapInfo = ehm.Info()

	return
}

// ReadInfo - Returns information about a hash map from its file headers without opening it for use
//   - name is the name of an existing hash map
func ReadInfo(name string) (hashMapInfo HashMapInfo, err error) {
	dirHeader, err := directory.GetFileHeader(name)
	if err != nil {
		err = fmt.Errorf("error while reading directory file header: %w", err)
		return
	}

	bktHeader, err := buckets.GetFileHeader(name)
	if err != nil {
		err = fmt.Errorf("error while reading bucket file header: %w", err)
		return
	}

	hashMapInfo = HashMapInfo{
		RecordsPerBucket:  bktHeader.RecordsPerBucket,
		KeyLength:         bktHeader.KeyLength,
		ValueLength:       bktHeader.ValueLength,
		InternalHash:      dirHeader.InternalHash,
		HashBits:          dirHeader.HashBits,
		GlobalDepth:       dirHeader.GlobalDepth,
		NumberOfBuckets:   bktHeader.NumberOfBuckets,
		DirectoryFileSize: conf.DirFileHeaderLength + (int64(1)<<dirHeader.GlobalDepth)*conf.PointerLength,
		BucketFileSize:    bktHeader.FileSize,
	}

	return
}

// Info - Returns information about the hash map in its current state
func (E *ExtHashMap[K, V]) Info() (hashMapInfo HashMapInfo) {
	sp := E.store.GetStorageParameters()

	hashMapInfo = HashMapInfo{
		RecordsPerBucket:  sp.RecordsPerBucket,
		KeyLength:         sp.KeyLength,
		ValueLength:       sp.ValueLength,
		InternalHash:      E.directory.InternalHash(),
		HashBits:          E.directory.HashBits(),
		GlobalDepth:       E.directory.GlobalDepth(),
		NumberOfBuckets:   sp.NumberOfBuckets,
		DirectoryFileSize: E.directory.FileSize(),
		BucketFileSize:    sp.BucketFileSize,
	}

	return
}

// CloseFiles - Flushes and closes the directory file and the bucket file. Both files are closed even if one of them
// fails, the first error is returned. When NoSync is set this is where written data reaches the disk, so the error
// should be checked.
func (E *ExtHashMap[K, V]) CloseFiles() (err error) {
	err = E.store.CloseFile()

	derr := E.directory.CloseFile()
	if err == nil {
		err = derr
	}

	return
}

// RemoveFiles - Removes the directory file and the bucket file if they exist.
// The function first internally closes them using CloseFiles.
func (E *ExtHashMap[K, V]) RemoveFiles() (err error) {
	_ = E.CloseFiles()

	err = E.store.RemoveFile()
	if err != nil {
		return
	}

	return E.directory.RemoveFile()
}

// withDefaults - Validates a Conf and fills in defaults for zero values
func withDefaults[K any](hmConf Conf[K]) (c Conf[K], err error) {
	c = hmConf

	if c.RecordsPerBucket == 0 {
		c.RecordsPerBucket = int(conf.DefaultRecordsPerBucket)
	}
	if c.RecordsPerBucket < 1 || int64(c.RecordsPerBucket) > conf.MaxRecordsPerBucket {
		err = fmt.Errorf("records per bucket must be between 1 and %d", conf.MaxRecordsPerBucket)
		return
	}

	if c.HashBits == 0 {
		c.HashBits = conf.DefaultHashBits
	}
	if c.HashBits > conf.MaxHashBits {
		err = fmt.Errorf("hash bits can not exceed %d", conf.MaxHashBits)
		return
	}

	if c.BloomFilterFPR <= 0 || c.BloomFilterFPR >= 1 {
		c.BloomFilterFPR = defaultBloomFilterFPR
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return
}

// createFiles - Creates new directory and bucket files with one empty bucket at global depth 0
func (E *ExtHashMap[K, V]) createFiles(storeHash func(key []byte) (uint64, error), hmConf Conf[K]) (err error) {
	E.store, err = buckets.NewStore(buckets.Conf{
		Name:             E.name,
		RecordsPerBucket: int64(hmConf.RecordsPerBucket),
		KeyLength:        E.keyLength,
		ValueLength:      E.valueLength,
		HashFunc:         storeHash,
		Logger:           E.logger,
	})
	if err != nil {
		return
	}

	bucketAddress, err := E.store.CreateBucket(0)
	if err != nil {
		_ = E.store.CloseFile()
		_ = E.store.RemoveFile()
		return
	}

	E.directory, err = directory.NewDirectory(directory.Conf{
		Name:         E.name,
		HashBits:     hmConf.HashBits,
		InternalHash: E.internalHash,
		Logger:       E.logger,
	}, bucketAddress)
	if err != nil {
		_ = E.store.CloseFile()
		_ = E.store.RemoveFile()
		return
	}

	err = E.sync()
	if err != nil {
		_ = E.RemoveFiles()
		return
	}

	E.logger.Debug("hash map created",
		"name", E.name,
		"recordsPerBucket", hmConf.RecordsPerBucket,
		"keyLength", E.keyLength,
		"valueLength", E.valueLength,
		"hashBits", hmConf.HashBits,
		"internalHash", E.internalHash,
	)

	return
}

// openFiles - Opens existing directory and bucket files and checks them against codecs and hash function
func (E *ExtHashMap[K, V]) openFiles(storeHash func(key []byte) (uint64, error)) (err error) {
	E.directory, err = directory.NewDirectoryFromExistingFile(E.name, E.logger)
	if err != nil {
		return
	}

	if E.directory.InternalHash() != E.internalHash {
		_ = E.directory.CloseFile()
		if E.internalHash {
			err = HeaderMismatch{msg: "seems the hash map was used with a custom hash function but none was given"}
		} else {
			err = HeaderMismatch{msg: "seems the hash map was used with the internal hash function but a custom was given"}
		}
		return
	}

	E.store, err = buckets.NewStoreFromExistingFile(E.name, storeHash, E.logger)
	if err != nil {
		_ = E.directory.CloseFile()
		return
	}

	sp := E.store.GetStorageParameters()
	if sp.KeyLength != E.keyLength || sp.ValueLength != E.valueLength {
		_ = E.CloseFiles()
		err = HeaderMismatch{msg: fmt.Sprintf(
			"files hold keys of %d and values of %d bytes but codecs give %d and %d",
			sp.KeyLength, sp.ValueLength, E.keyLength, E.valueLength,
		)}
		return
	}

	E.logger.Debug("hash map opened",
		"name", E.name,
		"globalDepth", E.directory.GlobalDepth(),
		"buckets", sp.NumberOfBuckets,
	)

	return
}

// rebuildFilter - Adds every stored key to the bloom filter
func (E *ExtHashMap[K, V]) rebuildFilter() (err error) {
	var keys int64
	err = E.store.TraverseAll(func(bucket model.Bucket) bool {
		for r := range bucket.Traverse() {
			if r.IsActive() {
				E.filter.Add(r.Key)
				keys++
			}
		}
		return true
	})
	if err != nil {
		err = fmt.Errorf("error while rebuilding bloom filter: %w", err)
		return
	}

	E.logger.Debug("bloom filter rebuilt", "name", E.name, "keys", keys)

	return
}

// sync - Flushes both files to disk unless NoSync was given
func (E *ExtHashMap[K, V]) sync() (err error) {
	if E.noSync {
		return
	}

	err = E.store.Sync()
	if err != nil {
		return
	}

	return E.directory.Sync()
}

// fileExists - Returns true if name exists and is a regular file
func fileExists(name string) bool {
	stat, err := os.Stat(name)
	return err == nil && stat.Mode().IsRegular()
}
