package conf

// FileMagic - Magic number identifying files belonging to an extendible hash map ("EXHM")
const FileMagic uint32 = 0x4d485845

// FileVersion - Version of the file layouts described below
const FileVersion uint8 = 1

// StateBytes - Number of bytes used to indicate the state of a record, it is added in front of each record
const StateBytes int64 = 1

// DefaultRecordsPerBucket - Number of records per bucket used if nothing else is given
const DefaultRecordsPerBucket int64 = 21

// MaxRecordsPerBucket - Upper limit for records per bucket
const MaxRecordsPerBucket int64 = 65535

// DefaultHashBits - Number of usable hash bits used if nothing else is given
const DefaultHashBits uint8 = 32

// MaxHashBits - Upper limit for usable hash bits, the hash functions return 64-bit values
const MaxHashBits uint8 = 64

// BucketFileHeaderLength - Length of bucket file header
const BucketFileHeaderLength int64 = 1024

// MagicOffset - Header offset to the magic number, same in both files - 4 bytes
const MagicOffset int64 = 0

// VersionOffset - Header offset to the file version, same in both files - 1 byte
const VersionOffset int64 = 4

// RecordsPerBucketOffset - Bucket file header offset to number of records per bucket - 4 bytes
const RecordsPerBucketOffset int64 = 8

// KeyLengthOffset - Bucket file header offset to the key length in records - 4 bytes
const KeyLengthOffset int64 = 12

// ValueLengthOffset - Bucket file header offset to the value length in records - 4 bytes
const ValueLengthOffset int64 = 16

// NumberOfBucketsOffset - Bucket file header offset to number of allocated buckets - 8 bytes
const NumberOfBucketsOffset int64 = 20

// FileSizeOffset - Bucket file header offset to the file size (should of course reflect true file size) - 8 bytes
const FileSizeOffset int64 = 28

// BucketHeaderLength - Length of header in each bucket
const BucketHeaderLength int64 = 8

// LocalDepthOffset - Bucket header offset to the local depth - 1 byte
const LocalDepthOffset int64 = 0

// CapacityOffset - Bucket header offset to the bucket capacity - 4 bytes
const CapacityOffset int64 = 4

// DirFileHeaderLength - Length of directory file header
const DirFileHeaderLength int64 = 64

// InternalHashOffset - Directory header offset to whether using internal (1) or external (0) hash function - 1 byte
const InternalHashOffset int64 = 5

// HashBitsOffset - Directory header offset to number of usable hash bits - 1 byte
const HashBitsOffset int64 = 6

// GlobalDepthOffset - Directory header offset to the global depth - 1 byte
const GlobalDepthOffset int64 = 7

// PointerLength - Length of a bucket address in the directory
const PointerLength int64 = 8
