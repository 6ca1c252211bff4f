package directory

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gostonefire/exthashmap/internal/conf"
)

// fileSize - Returns the size of a directory file at a given global depth
func fileSize(globalDepth uint8) int64 {
	return conf.DirFileHeaderLength + (int64(1)<<globalDepth)*conf.PointerLength
}

// readHeader - Reads and validates header data from an open file
func readHeader(file *os.File) (header Header, err error) {
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, conf.DirFileHeaderLength)
	_, err = io.ReadFull(file, buf)
	if err != nil {
		return
	}

	header, err = bytesToHeader(buf)
	if err != nil {
		return
	}

	if header.Magic != conf.FileMagic {
		err = fmt.Errorf("invalid magic number in directory file")
		return
	}
	if header.Version != conf.FileVersion {
		err = fmt.Errorf("unsupported directory file version %d", header.Version)
		return
	}
	if header.HashBits == 0 || header.HashBits > conf.MaxHashBits || header.GlobalDepth > header.HashBits {
		err = fmt.Errorf("inconsistent hash bits (%d) and global depth (%d) in directory file", header.HashBits, header.GlobalDepth)
		return
	}

	return
}

// openDirectoryFile - Opens the directory file and does some rudimentary checks of its validity and
// returns a Header struct read from file
func (D *Directory) openDirectoryFile() (header Header, err error) {
	if stat, ok := os.Stat(D.fileName); ok == nil {
		D.file, err = os.OpenFile(D.fileName, os.O_RDWR, 0644)
		if err != nil {
			err = fmt.Errorf("unable to open existing directory file: %w", err)
			return
		}

		header, err = readHeader(D.file)
		if err != nil {
			_ = D.file.Close()
			D.file = nil
			err = fmt.Errorf("unable to read header from directory file: %w", err)
			return
		}

		// A larger file is what an interrupted doubling leaves behind, the header still holds the old depth
		if stat.Size() < fileSize(header.GlobalDepth) {
			_ = D.file.Close()
			D.file = nil
			err = fmt.Errorf("actual file size is smaller than header indicated global depth requires")
			return
		}
	} else {
		err = fmt.Errorf("directory file not found")
		return
	}

	return
}

// createNewDirectoryFile - Creates a new directory file at global depth 0 with one pointer.
// If it already exists it will first be truncated to zero length, hence deleting all existing data.
func (D *Directory) createNewDirectoryFile(bucketAddress int64) (err error) {
	D.file, err = os.OpenFile(D.fileName, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		err = fmt.Errorf("error while open/create new directory file: %w", err)
		return
	}

	D.globalDepth = 0
	err = D.file.Truncate(fileSize(D.globalDepth))
	if err != nil {
		_ = D.file.Close()
		D.file = nil
		err = fmt.Errorf("error while truncate new directory file to length %d: %w", fileSize(D.globalDepth), err)
		return
	}

	err = D.writeHeader()
	if err != nil {
		err = fmt.Errorf("error while writing header to directory file: %w", err)
		return
	}

	err = D.setPointer(0, bucketAddress)
	if err != nil {
		err = fmt.Errorf("error while writing initial pointer to directory file: %w", err)
		return
	}

	return
}

// writeHeader - Writes the current header data to file
func (D *Directory) writeHeader() (err error) {
	header := Header{
		Magic:        conf.FileMagic,
		Version:      conf.FileVersion,
		InternalHash: D.internalHash,
		HashBits:     D.hashBits,
		GlobalDepth:  D.globalDepth,
	}

	_, err = D.file.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	_, err = D.file.Write(headerToBytes(header))

	return
}

// setGlobalDepth - Updates the global depth in file and in memory
func (D *Directory) setGlobalDepth(globalDepth uint8) (err error) {
	_, err = D.file.Seek(conf.GlobalDepthOffset, io.SeekStart)
	if err != nil {
		return
	}

	_, err = D.file.Write([]byte{globalDepth})
	if err != nil {
		return
	}

	D.globalDepth = globalDepth

	return
}

// getPointer - Reads one pointer from file
func (D *Directory) getPointer(index int64) (bucketAddress int64, err error) {
	_, err = D.file.Seek(conf.DirFileHeaderLength+index*conf.PointerLength, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, conf.PointerLength)
	_, err = io.ReadFull(D.file, buf)
	if err != nil {
		return
	}

	bucketAddress = int64(binary.LittleEndian.Uint64(buf))

	return
}

// setPointer - Writes one pointer to file
func (D *Directory) setPointer(index int64, bucketAddress int64) (err error) {
	_, err = D.file.Seek(conf.DirFileHeaderLength+index*conf.PointerLength, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, conf.PointerLength)
	binary.LittleEndian.PutUint64(buf, uint64(bucketAddress))

	_, err = D.file.Write(buf)

	return
}

// getPointers - Reads the complete pointer table from file
func (D *Directory) getPointers() (pointers []int64, err error) {
	_, err = D.file.Seek(conf.DirFileHeaderLength, io.SeekStart)
	if err != nil {
		return
	}

	buf := make([]byte, D.Length()*conf.PointerLength)
	_, err = io.ReadFull(D.file, buf)
	if err != nil {
		return
	}

	pointers = bytesToPointers(buf)

	return
}

// setPointers - Writes a complete pointer table to file, the file grows if the table is longer than before
func (D *Directory) setPointers(pointers []int64) (err error) {
	_, err = D.file.Seek(conf.DirFileHeaderLength, io.SeekStart)
	if err != nil {
		return
	}

	_, err = D.file.Write(pointersToBytes(pointers))

	return
}
