//go:build linux || freebsd

package fsync

import (
	"os"

	"golang.org/x/sys/unix"
)

// File - Flushes file data to disk.
// On Linux and FreeBSD fdatasync also flushes the file size, which is all the metadata the files depend on.
func File(file *os.File) error {
	return unix.Fdatasync(int(file.Fd()))
}
