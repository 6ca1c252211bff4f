package exthashmap

import (
	"fmt"
)

// EncodingOverflow - Custom error to inform that an encoded key or value is longer than its codec declared.
// Nothing is written when this error is returned.
type EncodingOverflow struct {
	Field   string
	Size    int
	MaxSize int
}

// Error - Used to notify that an encoding did not fit its slot
func (E EncodingOverflow) Error() string {
	return fmt.Sprintf("encoded %s of %d bytes exceeds maximum size %d", E.Field, E.Size, E.MaxSize)
}

// Is - Makes errors.Is(err, EncodingOverflow{}) match regardless of field values
func (E EncodingOverflow) Is(target error) bool {
	_, ok := target.(EncodingOverflow)
	return ok
}

// HashSaturation - Custom error to inform that a full bucket could not be split since it already uses every
// usable hash bit. It typically means that more than RecordsPerBucket records share the same hash.
type HashSaturation struct {
	LocalDepth uint8
	HashBits   uint8
}

// Error - Used to notify that a bucket could not be split
func (H HashSaturation) Error() string {
	return fmt.Sprintf("hash saturation, bucket at local depth %d can not be split with %d hash bits", H.LocalDepth, H.HashBits)
}

// Is - Makes errors.Is(err, HashSaturation{}) match regardless of field values
func (H HashSaturation) Is(target error) bool {
	_, ok := target.(HashSaturation)
	return ok
}

// RecordExists - Custom error to inform that the exact key and value pair is already stored
type RecordExists struct {
	msg string
}

// Error - Used to notify that a record already exists
func (R RecordExists) Error() string {
	if R.msg == "" {
		return "record exists"
	}
	return R.msg
}

// Is - Makes errors.Is(err, RecordExists{}) match regardless of message
func (R RecordExists) Is(target error) bool {
	_, ok := target.(RecordExists)
	return ok
}

// HeaderMismatch - Custom error to inform that existing files do not match the codecs or hash function given
type HeaderMismatch struct {
	msg string
}

// Error - Used to notify that existing files were created with other settings
func (H HeaderMismatch) Error() string {
	if H.msg == "" {
		return "header mismatch"
	}
	return H.msg
}

// Is - Makes errors.Is(err, HeaderMismatch{}) match regardless of message
func (H HeaderMismatch) Is(target error) bool {
	_, ok := target.(HeaderMismatch)
	return ok
}
