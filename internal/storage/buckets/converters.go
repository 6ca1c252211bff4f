package buckets

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/exthashmap/internal/conf"
)

// Header - Represents the bucket file header data
type Header struct {
	Magic            uint32
	Version          uint8
	RecordsPerBucket int64
	KeyLength        int64
	ValueLength      int64
	NumberOfBuckets  int64
	FileSize         int64
}

// bytesToHeader - Converts a slice of bytes to a Header struct
func bytesToHeader(buf []byte) (header Header, err error) {
	if int64(len(buf)) < conf.BucketFileHeaderLength {
		err = fmt.Errorf("length of data in buf (%d) less than bucket file header size (%d)", len(buf), conf.BucketFileHeaderLength)
		return
	}

	header = Header{
		Magic:            binary.LittleEndian.Uint32(buf[conf.MagicOffset:]),
		Version:          buf[conf.VersionOffset],
		RecordsPerBucket: int64(binary.LittleEndian.Uint32(buf[conf.RecordsPerBucketOffset:])),
		KeyLength:        int64(binary.LittleEndian.Uint32(buf[conf.KeyLengthOffset:])),
		ValueLength:      int64(binary.LittleEndian.Uint32(buf[conf.ValueLengthOffset:])),
		NumberOfBuckets:  int64(binary.LittleEndian.Uint64(buf[conf.NumberOfBucketsOffset:])),
		FileSize:         int64(binary.LittleEndian.Uint64(buf[conf.FileSizeOffset:])),
	}

	return
}

// headerToBytes - Converts a Header struct to a slice of bytes
func headerToBytes(header Header) (buf []byte) {
	buf = make([]byte, conf.BucketFileHeaderLength)

	binary.LittleEndian.PutUint32(buf[conf.MagicOffset:], header.Magic)
	buf[conf.VersionOffset] = header.Version
	binary.LittleEndian.PutUint32(buf[conf.RecordsPerBucketOffset:], uint32(header.RecordsPerBucket))
	binary.LittleEndian.PutUint32(buf[conf.KeyLengthOffset:], uint32(header.KeyLength))
	binary.LittleEndian.PutUint32(buf[conf.ValueLengthOffset:], uint32(header.ValueLength))
	binary.LittleEndian.PutUint64(buf[conf.NumberOfBucketsOffset:], uint64(header.NumberOfBuckets))
	binary.LittleEndian.PutUint64(buf[conf.FileSizeOffset:], uint64(header.FileSize))

	return
}
