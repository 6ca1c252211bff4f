package exthashmap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gostonefire/exthashmap/codec"
	"github.com/gostonefire/exthashmap/hashfunc"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/storage/buckets"
	"github.com/gostonefire/exthashmap/internal/storage/directory"
	"github.com/gostonefire/exthashmap/internal/utils"
)

// ReorgConf - Is a struct used in the call to Reorg holding configuration for the new file structure.
// Go zero values keep what the original hash map has.
//   - RecordsPerBucket is the new number of records per bucket
//   - HashBits is the new number of usable hash bits
//   - KeyExtension is number of bytes to extend the key with
//   - PrependKeyExtension whether to prepend the extra space or append it
//   - ValueExtension is number of bytes to extend the value with
//   - PrependValueExtension whether to prepend the extra space or append it
//   - NewHashFunc is a custom hash function over the new padded key bytes, nil selects the internal hash function
type ReorgConf struct {
	RecordsPerBucket      int
	HashBits              uint8
	KeyExtension          int64
	PrependKeyExtension   bool
	ValueExtension        int64
	PrependValueExtension bool
	NewHashFunc           hashfunc.HashFunc[[]byte]
}

// Reorg - Is used when an existing hash map needs to reflect new conditions as compared to when it was first
// created. For instance if buckets should hold more or fewer records, we need to store more data in each record,
// or a better hash function has been found for the particular set of keys we are processing.
//
// Every record of the hash map is copied to a new hash map named by appending "-reorg" to name. The original files
// are left untouched, and any earlier reorg files are replaced. Records are read without routing, so the hash
// function the original was built with is not needed.
//   - name is the name of an existing hash map (including correct path)
//   - reorgConf is an instance of the ReorgConf struct
//
// It returns:
//   - fromHashMapInfo is information about the original hash map
//   - toHashMapInfo is information about the new hash map
//   - err is a standard error
func Reorg(name string, reorgConf ReorgConf) (fromHashMapInfo, toHashMapInfo HashMapInfo, err error) {
	if reorgConf.KeyExtension < 0 || reorgConf.ValueExtension < 0 {
		err = fmt.Errorf("key and value extensions can not be negative")
		return
	}

	from, fromHashMapInfo, err := OpenRaw(name)
	if err != nil {
		return
	}
	defer func() { _ = from.CloseFiles() }()

	newName := fmt.Sprintf("%s-reorg", name)
	err = removeFiles(newName)
	if err != nil {
		return
	}

	toConf := Conf[[]byte]{
		RecordsPerBucket: reorgConf.RecordsPerBucket,
		HashBits:         reorgConf.HashBits,
		HashFunc:         reorgConf.NewHashFunc,
		NoSync:           true,
		Logger:           from.logger,
	}
	if toConf.RecordsPerBucket == 0 {
		toConf.RecordsPerBucket = int(fromHashMapInfo.RecordsPerBucket)
	}
	if toConf.HashBits == 0 {
		toConf.HashBits = fromHashMapInfo.HashBits
	}

	keyLength := fromHashMapInfo.KeyLength + reorgConf.KeyExtension
	valueLength := fromHashMapInfo.ValueLength + reorgConf.ValueExtension

	to, _, err := NewExtHashMap(newName, codec.Bytes(int(keyLength)), codec.Bytes(int(valueLength)), toConf)
	if err != nil {
		return
	}
	defer func() {
		if cerr := to.CloseFiles(); cerr != nil && err == nil {
			err = fmt.Errorf("error while closing reorganized hash map: %w", cerr)
		}
	}()

	err = reorgRecords(from, to, reorgConf)
	if err != nil {
		return
	}

	to.noSync = false
	err = to.sync()
	if err != nil {
		return
	}

	toHashMapInfo = to.Info()

	from.logger.Debug("hash map reorganized",
		"from", name,
		"to", newName,
		"buckets", toHashMapInfo.NumberOfBuckets,
		"globalDepth", toHashMapInfo.GlobalDepth,
	)

	return
}

// OpenRaw - Opens an existing hash map with raw byte codecs sized from its headers. Such a hash map can be traversed,
// dumped, exported and inspected without knowing the key and value types. If the hash map was built with a custom
// hash function a stand in is used, so routed operations on it (searches, inserts and deletes) do not find
// the right buckets.
func OpenRaw(name string) (extHashMap *ExtHashMap[[]byte, []byte], hashMapInfo HashMapInfo, err error) {
	hashMapInfo, err = ReadInfo(name)
	if err != nil {
		return
	}

	rawConf := Conf[[]byte]{}
	if !hashMapInfo.InternalHash {
		rawConf.HashFunc = hashfunc.XXHash
	}

	return NewExtHashMap(name, codec.Bytes(int(hashMapInfo.KeyLength)), codec.Bytes(int(hashMapInfo.ValueLength)), rawConf)
}

// reorgRecords - Reads bucket by bucket, record by record, transforms, and writes to the new hash map
func reorgRecords(from, to *ExtHashMap[[]byte, []byte], reorgConf ReorgConf) (err error) {
	var insertErr error
	err = from.traverseRecords(func(record model.Record) bool {
		key := utils.ExtendByteSlice(record.Key, reorgConf.KeyExtension, reorgConf.PrependKeyExtension)
		value := utils.ExtendByteSlice(record.Value, reorgConf.ValueExtension, reorgConf.PrependValueExtension)
		insertErr = to.insert(key, value)
		return insertErr == nil
	})
	if err == nil {
		err = insertErr
	}

	return
}

// removeFiles - Removes the directory and bucket files of a hash map if they exist
func removeFiles(name string) (err error) {
	for _, fileName := range []string{directory.GetFileName(name), buckets.GetFileName(name)} {
		err = os.Remove(fileName)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("error while removing %s: %w", fileName, err)
			return
		}
	}

	return nil
}
