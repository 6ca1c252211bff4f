package buckets

import (
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/gostonefire/exthashmap/internal/model"
	"github.com/gostonefire/exthashmap/internal/utils"
)

// readHeader - Reads and validates header data from an open file
func readHeader(file *os.File) (header Header, err error) {
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, conf.BucketFileHeaderLength)
	_, err = io.ReadFull(file, buf)
	if err != nil {
		return
	}

	header, err = bytesToHeader(buf)
	if err != nil {
		return
	}

	if header.Magic != conf.FileMagic {
		err = fmt.Errorf("invalid magic number in bucket file")
		return
	}
	if header.Version != conf.FileVersion {
		err = fmt.Errorf("unsupported bucket file version %d", header.Version)
		return
	}
	if header.RecordsPerBucket < 1 || header.KeyLength < 1 {
		err = fmt.Errorf("invalid records per bucket (%d) or key length (%d) in bucket file", header.RecordsPerBucket, header.KeyLength)
		return
	}

	expected := conf.BucketFileHeaderLength + header.NumberOfBuckets*model.BucketLength(header.RecordsPerBucket, header.KeyLength, header.ValueLength)
	if header.FileSize != expected {
		err = fmt.Errorf("file size in header (%d) does not match number of buckets (%d)", header.FileSize, header.NumberOfBuckets)
		return
	}

	return
}

// bucketLength - Returns the length of one bucket block in file
func (S *Store) bucketLength() int64 {
	return model.BucketLength(S.recordsPerBucket, S.keyLength, S.valueLength)
}

// checkAddress - Checks that an address points at the start of an allocated bucket
func (S *Store) checkAddress(bucketAddress int64) (err error) {
	offset := bucketAddress - conf.BucketFileHeaderLength
	if offset < 0 || bucketAddress >= S.fileSize || offset%S.bucketLength() != 0 {
		err = fmt.Errorf("bucket address %d does not point at an allocated bucket", bucketAddress)
	}

	return
}

// checkLengths - Checks that key and value are of the fixed lengths records are stored with
func (S *Store) checkLengths(key, value []byte) (err error) {
	if int64(len(key)) != S.keyLength {
		err = fmt.Errorf("key length (%d) differs from records key length (%d)", len(key), S.keyLength)
		return
	}
	if int64(len(value)) != S.valueLength {
		err = fmt.Errorf("value length (%d) differs from records value length (%d)", len(value), S.valueLength)
		return
	}

	return
}

// resolve - Returns the bucket that a key resolves to through the directory
func (S *Store) resolve(key []byte, dir Directory) (bucket model.Bucket, err error) {
	if int64(len(key)) != S.keyLength {
		err = fmt.Errorf("key length (%d) differs from records key length (%d)", len(key), S.keyLength)
		return
	}

	hash, err := S.hashFunc(key)
	if err != nil {
		err = fmt.Errorf("error while hashing key: %w", err)
		return
	}

	bucketAddress, err := dir.BucketAddress(hash)
	if err != nil {
		return
	}

	return S.GetBucket(bucketAddress)
}

// openBucketFile - Opens the bucket file and does some rudimentary checks of its validity and
// returns a Header struct read from file
func (S *Store) openBucketFile() (header Header, err error) {
	if stat, ok := os.Stat(S.fileName); ok == nil {
		S.file, err = os.OpenFile(S.fileName, os.O_RDWR, 0644)
		if err != nil {
			err = fmt.Errorf("unable to open existing bucket file: %w", err)
			return
		}

		header, err = readHeader(S.file)
		if err != nil {
			_ = S.file.Close()
			S.file = nil
			err = fmt.Errorf("unable to read header from bucket file: %w", err)
			return
		}

		// A bucket appended without its header update leaves the file longer than the header says
		if stat.Size() < header.FileSize {
			_ = S.file.Close()
			S.file = nil
			err = fmt.Errorf("actual file size is smaller than header indicated file size")
			return
		}
	} else {
		err = fmt.Errorf("bucket file not found")
		return
	}

	return
}

// createNewBucketFile - Creates a new bucket file holding only the header.
// If it already exists it will first be truncated to zero length, hence deleting all existing data.
func (S *Store) createNewBucketFile() (err error) {
	S.file, err = os.OpenFile(S.fileName, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		err = fmt.Errorf("error while open/create new bucket file: %w", err)
		return
	}

	err = S.setAllocation(0, conf.BucketFileHeaderLength)
	if err != nil {
		_ = S.file.Close()
		S.file = nil
		err = fmt.Errorf("error while writing header to bucket file: %w", err)
		return
	}

	return
}

// setAllocation - Writes the header with a new number of buckets and file size and updates them in memory
func (S *Store) setAllocation(numberOfBuckets, fileSize int64) (err error) {
	header := Header{
		Magic:            conf.FileMagic,
		Version:          conf.FileVersion,
		RecordsPerBucket: S.recordsPerBucket,
		KeyLength:        S.keyLength,
		ValueLength:      S.valueLength,
		NumberOfBuckets:  numberOfBuckets,
		FileSize:         fileSize,
	}

	_, err = S.file.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	_, err = S.file.Write(headerToBytes(header))
	if err != nil {
		return
	}

	S.numberOfBuckets = numberOfBuckets
	S.fileSize = fileSize

	return
}

// getBucket - Reads a complete bucket from file
func (S *Store) getBucket(bucketAddress int64) (bucket model.Bucket, err error) {
	_, err = S.file.Seek(bucketAddress, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, S.bucketLength())
	_, err = io.ReadFull(S.file, buf)
	if err != nil {
		return
	}

	bucket, err = model.BytesToBucket(buf, bucketAddress, S.keyLength, S.valueLength)
	if err != nil {
		return
	}

	if bucket.Capacity() != S.recordsPerBucket {
		err = fmt.Errorf("bucket at %d has capacity %d, expected %d", bucketAddress, bucket.Capacity(), S.recordsPerBucket)
	}

	return
}

// setBucket - Writes a complete bucket to file at its address
func (S *Store) setBucket(bucket model.Bucket) (err error) {
	_, err = S.file.Seek(bucket.BucketAddress, io.SeekStart)
	if err != nil {
		return
	}

	_, err = S.file.Write(model.BucketToBytes(bucket))

	return
}

// setRecord - Writes a single record to file at its address
func (S *Store) setRecord(record model.Record) (err error) {
	_, err = S.file.Seek(record.RecordAddress, io.SeekStart)
	if err != nil {
		return
	}

	_, err = S.file.Write(model.RecordToBytes(record, S.keyLength, S.valueLength))

	return
}

// separable - Returns false if the active records of a bucket and a key with the given hash all share their
// usable hash bits, no number of splits can then spread them over more than one bucket
func (S *Store) separable(bucket model.Bucket, hash uint64, hashBits uint8) (ok bool, err error) {
	bits := utils.LowBits(hash, hashBits)

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

		if utils.LowBits(h, hashBits) != bits {
			ok = true
			return
		}
	}

	return
}
