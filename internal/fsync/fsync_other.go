//go:build !linux && !freebsd

package fsync

import "os"

// File - Flushes file data to disk
func File(file *os.File) error {
	return file.Sync()
}
