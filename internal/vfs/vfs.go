// Package vfs is the file system documents are read from and written to.
//
// OSFS is used by the command; MemFS backs tests.
package vfs

import (
	"errors"
	"io"
	"io/fs"
)

// FS is the subset of file system operations the tracker needs.
type FS interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of path, creating it with perm if it
	// does not exist. An existing file keeps its mode.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	Remove(path string) error

	// Exists reports whether path names a file or directory.
	Exists(path string) bool
}

// DefaultPerm is the mode of files created by the tracker.
const DefaultPerm fs.FileMode = 0o644

// ErrReadOnly is returned when writing a file whose mode forbids it.
var ErrReadOnly = errors.New("file is read-only")

// Writable reports whether path is a regular file with the owner write bit
// set.
func Writable(fsys FS, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o200 != 0
}
