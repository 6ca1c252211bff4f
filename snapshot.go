package exthashmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/gostonefire/exthashmap/internal/model"
)

// snapshotMagic - Identifies an exported record stream ("EXHX")
var snapshotMagic = [4]byte{'E', 'X', 'H', 'X'}

// snapshotHeaderLength - Magic, key length and value length
const snapshotHeaderLength = 12

// Export - Writes every record to w as a snappy compressed stream. The stream holds a small header with the key and
// value widths followed by the padded key and value bytes of each record, in traversal order.
//   - w is where the stream is written, it is not closed
//
// It returns:
//   - count is the number of records written
//   - err is a standard error
func (E *ExtHashMap[K, V]) Export(w io.Writer) (count int64, err error) {
	sw := snappy.NewBufferedWriter(w)

	header := make([]byte, snapshotHeaderLength)
	_ = copy(header, snapshotMagic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(E.keyLength))
	binary.LittleEndian.PutUint32(header[8:], uint32(E.valueLength))

	_, err = sw.Write(header)
	if err != nil {
		err = fmt.Errorf("error while writing snapshot header: %w", err)
		return
	}

	var writeErr error
	err = E.traverseRecords(func(record model.Record) bool {
		if _, writeErr = sw.Write(record.Key); writeErr != nil {
			return false
		}
		if _, writeErr = sw.Write(record.Value); writeErr != nil {
			return false
		}
		count++
		return true
	})
	if err == nil && writeErr != nil {
		err = fmt.Errorf("error while writing snapshot record: %w", writeErr)
	}
	if err != nil {
		return
	}

	err = sw.Close()
	if err != nil {
		err = fmt.Errorf("error while flushing snapshot: %w", err)
	}

	return
}

// Import - Inserts every record of a stream written by Export. Records whose exact key and value pair is
// already stored are skipped. Files are flushed once when the stream is consumed rather than after each record.
//   - r is the stream to read
//
// It returns:
//   - count is the number of records inserted
//   - err is HeaderMismatch if the stream was exported with other key or value widths, or a standard error
func (E *ExtHashMap[K, V]) Import(r io.Reader) (count int64, err error) {
	sr := snappy.NewReader(r)

	header := make([]byte, snapshotHeaderLength)
	_, err = io.ReadFull(sr, header)
	if err != nil {
		err = fmt.Errorf("error while reading snapshot header: %w", err)
		return
	}

	if [4]byte(header[:4]) != snapshotMagic {
		err = fmt.Errorf("not an exported record stream")
		return
	}

	keyLength := int64(binary.LittleEndian.Uint32(header[4:]))
	valueLength := int64(binary.LittleEndian.Uint32(header[8:]))
	if keyLength != E.keyLength || valueLength != E.valueLength {
		err = HeaderMismatch{msg: fmt.Sprintf(
			"snapshot holds keys of %d and values of %d bytes but hash map has %d and %d",
			keyLength, valueLength, E.keyLength, E.valueLength,
		)}
		return
	}

	noSync := E.noSync
	E.noSync = true
	defer func() { E.noSync = noSync }()

	buf := make([]byte, keyLength+valueLength)
	for {
		_, err = io.ReadFull(sr, buf)
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("error while reading snapshot record: %w", err)
			return
		}

		err = E.insert(buf[:keyLength], buf[keyLength:])
		if errors.Is(err, RecordExists{}) {
			continue
		}
		if err != nil {
			return
		}
		count++
	}

	E.noSync = noSync
	err = E.sync()

	E.logger.Debug("snapshot imported", "name", E.name, "records", count)

	return
}
