package directory

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gostonefire/exthashmap/internal/conf"
	"github.com/gostonefire/exthashmap/internal/fsync"
	"github.com/gostonefire/exthashmap/internal/utils"
)

// Directory - Represents the file backed pointer table of an extendible hash map.
// The table holds 2^globalDepth bucket addresses where the index of a key is the low globalDepth bits of its hash.
// Several indices may point at the same bucket, they then agree on the low local depth bits of that bucket.
type Directory struct {
	fileName     string
	file         *os.File
	globalDepth  uint8
	hashBits     uint8
	internalHash bool
	logger       *slog.Logger
}

// Conf - Is a struct to be passed in the call to NewDirectory and contains configuration that affects
// file processing.
//   - Name is the name to base the directory file name on
//   - HashBits is the number of usable bits from the hash function, the directory never grows deeper than this
//   - InternalHash is true if the hash map uses its internal hash function
//   - Logger receives debug records on directory doubling
type Conf struct {
	Name         string
	HashBits     uint8
	InternalHash bool
	Logger       *slog.Logger
}

// GetFileName - Return the directory file name given the hash map name
func GetFileName(name string) (fileName string) {
	return fmt.Sprintf("%s-dir.bin", name)
}

// NewDirectory - Returns a pointer to a new Directory at global depth 0 with its single pointer set to bucketAddress.
// It always creates a new file (or opens and truncate an existing file)
//   - dirConf is a Conf struct providing configuration parameters
//   - bucketAddress is the address of the initial bucket in the bucket file
//
// It returns:
//   - directory which is a pointer to the created instance
//   - err which is a standard Go type of error
func NewDirectory(dirConf Conf, bucketAddress int64) (directory *Directory, err error) {
	if dirConf.HashBits == 0 || dirConf.HashBits > conf.MaxHashBits {
		err = fmt.Errorf("hash bits must be between 1 and %d", conf.MaxHashBits)
		return
	}

	directory = &Directory{
		fileName:     GetFileName(dirConf.Name),
		hashBits:     dirConf.HashBits,
		internalHash: dirConf.InternalHash,
		logger:       dirConf.Logger,
	}
	if directory.logger == nil {
		directory.logger = slog.Default()
	}

	err = directory.createNewDirectoryFile(bucketAddress)
	if err != nil {
		return
	}

	return
}

// NewDirectoryFromExistingFile - Returns a pointer to a Directory given an existing file. If the file doesn't exist,
// doesn't have a valid header or if its file size seems wrong given the global depth from header it fails with error.
//   - name is the name to base the directory file name on
//   - logger receives debug records on directory doubling
func NewDirectoryFromExistingFile(name string, logger *slog.Logger) (directory *Directory, err error) {
	directory = &Directory{fileName: GetFileName(name), logger: logger}
	if directory.logger == nil {
		directory.logger = slog.Default()
	}

	header, err := directory.openDirectoryFile()
	if err != nil {
		return
	}

	directory.globalDepth = header.GlobalDepth
	directory.hashBits = header.HashBits
	directory.internalHash = header.InternalHash

	return
}

// GetFileHeader - Reads header data from a directory file and returns it as a Header struct.
// This function opens the file for reading, thus expecting it to not already be open.
func GetFileHeader(name string) (header Header, err error) {
	file, err := os.OpenFile(GetFileName(name), os.O_RDONLY, 0644)
	if err != nil {
		return
	}
	defer func(file *os.File) { _ = file.Close() }(file)

	return readHeader(file)
}

// CloseFile - Flushes and closes the directory file. The file is released even if flushing fails,
// the first error is returned. Closing an already closed directory file does nothing.
func (D *Directory) CloseFile() (err error) {
	if D.file == nil {
		return
	}

	err = D.file.Sync()
	if err != nil {
		err = fmt.Errorf("error while syncing directory file: %w", err)
	}

	cerr := D.file.Close()
	if cerr != nil && err == nil {
		err = fmt.Errorf("error while closing directory file: %w", cerr)
	}
	D.file = nil

	return
}

// RemoveFile - Removes the directory file, make sure to close it first before calling this function
func (D *Directory) RemoveFile() (err error) {
	// Only try to remove if exists, and is not by accident a directory
	if stat, ok := os.Stat(D.fileName); ok == nil {
		if !stat.IsDir() {
			err = os.Remove(D.fileName)
			if err != nil {
				err = fmt.Errorf("error while removing directory file: %w", err)
				return
			}
		}
	}

	return
}

// Sync - Flushes written data to disk
func (D *Directory) Sync() (err error) {
	err = fsync.File(D.file)
	if err != nil {
		err = fmt.Errorf("error while syncing directory file: %w", err)
	}

	return
}

// GlobalDepth - Returns the number of low order hash bits used to index the directory
func (D *Directory) GlobalDepth() uint8 {
	return D.globalDepth
}

// HashBits - Returns the number of usable hash bits
func (D *Directory) HashBits() uint8 {
	return D.hashBits
}

// InternalHash - Returns true if the directory was created for the internal hash function
func (D *Directory) InternalHash() bool {
	return D.internalHash
}

// Length - Returns the number of pointers in the directory, always 2^globalDepth
func (D *Directory) Length() int64 {
	return int64(1) << D.globalDepth
}

// FileSize - Returns the expected size of the directory file given its global depth
func (D *Directory) FileSize() int64 {
	return fileSize(D.globalDepth)
}

// Index - Returns the directory index a hash value resolves to
func (D *Directory) Index(hash uint64) int64 {
	return int64(utils.LowBits(hash, D.globalDepth))
}

// BucketAddress - Returns the address of the bucket that a hash value resolves to
func (D *Directory) BucketAddress(hash uint64) (bucketAddress int64, err error) {
	return D.Pointer(D.Index(hash))
}

// Pointer - Returns the bucket address stored at index
func (D *Directory) Pointer(index int64) (bucketAddress int64, err error) {
	if index < 0 || index >= D.Length() {
		err = fmt.Errorf("directory index %d outside permitted range", index)
		return
	}

	bucketAddress, err = D.getPointer(index)
	if err != nil {
		err = fmt.Errorf("error while reading directory pointer: %w", err)
	}

	return
}

// SetPointer - Stores a bucket address at index
func (D *Directory) SetPointer(index int64, bucketAddress int64) (err error) {
	if index < 0 || index >= D.Length() {
		err = fmt.Errorf("directory index %d outside permitted range", index)
		return
	}

	err = D.setPointer(index, bucketAddress)
	if err != nil {
		err = fmt.Errorf("error while writing directory pointer: %w", err)
	}

	return
}

// Pointers - Returns the complete pointer table in index order
func (D *Directory) Pointers() (pointers []int64, err error) {
	pointers, err = D.getPointers()
	if err != nil {
		err = fmt.Errorf("error while reading directory pointers: %w", err)
	}

	return
}

// Double - Doubles the directory. For every index i in the old table both i and i+oldLength point at what i
// pointed at before, and the global depth is increased by one.
// The extended pointer table is written before the header so that a failure leaves the old directory intact.
func (D *Directory) Double() (err error) {
	if D.globalDepth >= D.hashBits {
		err = fmt.Errorf("directory can not grow beyond %d hash bits", D.hashBits)
		return
	}

	pointers, err := D.getPointers()
	if err != nil {
		err = fmt.Errorf("error while reading directory pointers: %w", err)
		return
	}

	doubled := make([]int64, 2*len(pointers))
	_ = copy(doubled, pointers)
	_ = copy(doubled[len(pointers):], pointers)

	err = D.setPointers(doubled)
	if err != nil {
		err = fmt.Errorf("error while writing doubled directory: %w", err)
		return
	}

	err = D.setGlobalDepth(D.globalDepth + 1)
	if err != nil {
		err = fmt.Errorf("error while writing global depth: %w", err)
		return
	}

	D.logger.Debug("directory doubled", "file", D.fileName, "globalDepth", D.globalDepth, "length", D.Length())

	return
}

// IndicesPointingAt - Returns all indices, in ascending order, that point at the given bucket address
func (D *Directory) IndicesPointingAt(bucketAddress int64) (indices []int64, err error) {
	pointers, err := D.getPointers()
	if err != nil {
		err = fmt.Errorf("error while reading directory pointers: %w", err)
		return
	}

	for i, p := range pointers {
		if p == bucketAddress {
			indices = append(indices, int64(i))
		}
	}

	return
}
