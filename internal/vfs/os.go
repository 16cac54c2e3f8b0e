package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// OSFS reads and writes the host file system.
type OSFS struct{}

var _ FS = OSFS{}

// NewOSFS returns the host file system.
func NewOSFS() OSFS { return OSFS{} }

func (OSFS) Open(path string) (io.ReadCloser, error) { return os.Open(path) }

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WriteFile truncates and rewrites path in place, so the mode, owner and
// hard links of an existing file survive.
func (OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFS) Remove(path string) error { return os.Remove(path) }

// Exists treats any Stat error other than not-exist as existing.
func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
