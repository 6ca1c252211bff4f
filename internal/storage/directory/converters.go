package directory

import (
	"encoding/binary"
	"fmt"

	"github.com/gostonefire/exthashmap/internal/conf"
)

// Header - Represents the directory file header data
type Header struct {
	Magic        uint32
	Version      uint8
	InternalHash bool
	HashBits     uint8
	GlobalDepth  uint8
}

// bytesToHeader - Converts a slice of bytes to a Header struct
func bytesToHeader(buf []byte) (header Header, err error) {
	if int64(len(buf)) < conf.DirFileHeaderLength {
		err = fmt.Errorf("length of data in buf (%d) less than directory header size (%d)", len(buf), conf.DirFileHeaderLength)
		return
	}

	header = Header{
		Magic:        binary.LittleEndian.Uint32(buf[conf.MagicOffset:]),
		Version:      buf[conf.VersionOffset],
		InternalHash: buf[conf.InternalHashOffset] == 1,
		HashBits:     buf[conf.HashBitsOffset],
		GlobalDepth:  buf[conf.GlobalDepthOffset],
	}

	return
}

// headerToBytes - Converts a Header struct to a slice of bytes
func headerToBytes(header Header) (buf []byte) {
	buf = make([]byte, conf.DirFileHeaderLength)

	binary.LittleEndian.PutUint32(buf[conf.MagicOffset:], header.Magic)
	buf[conf.VersionOffset] = header.Version
	if header.InternalHash {
		buf[conf.InternalHashOffset] = 1
	}
	buf[conf.HashBitsOffset] = header.HashBits
	buf[conf.GlobalDepthOffset] = header.GlobalDepth

	return
}

// bytesToPointers - Converts the raw pointer table to bucket addresses
func bytesToPointers(buf []byte) (pointers []int64) {
	pointers = make([]int64, int64(len(buf))/conf.PointerLength)
	for i := range pointers {
		pointers[i] = int64(binary.LittleEndian.Uint64(buf[int64(i)*conf.PointerLength:]))
	}

	return
}

// pointersToBytes - Converts bucket addresses to the raw pointer table
func pointersToBytes(pointers []int64) (buf []byte) {
	buf = make([]byte, int64(len(pointers))*conf.PointerLength)
	for i, p := range pointers {
		binary.LittleEndian.PutUint64(buf[int64(i)*conf.PointerLength:], uint64(p))
	}

	return
}
