package editor

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/vfs"
)

// ErrReadOnly is returned when writing to a read-only storage.
var ErrReadOnly = errors.New("storage is read-only")

// FileInput is a workspace file.
type FileInput struct {
	fs      vfs.FS
	path    string
	project string
}

// NewFileInput creates an input for the workspace file at path owned by
// project.
func NewFileInput(fsys vfs.FS, path, project string) *FileInput {
	return &FileInput{fs: fsys, path: path, project: project}
}

func (in *FileInput) Name() string { return filepath.Base(in.path) }
func (in *FileInput) Path() string { return in.path }
func (in *FileInput) Project() string { return in.project }
func (in *FileInput) Open() (io.ReadCloser, error) { return in.fs.Open(in.path) }

func (in *FileInput) Write(data []byte) error {
	return in.fs.WriteFile(in.path, data, vfs.DefaultPerm)
}

// ExternalInput is a file outside the workspace. Decompiled marks output
// produced by a decompiler.
type ExternalInput struct {
	fs         vfs.FS
	path       string
	decompiled bool
}

// NewExternalInput creates an input for the file at path.
func NewExternalInput(fsys vfs.FS, path string, decompiled bool) *ExternalInput {
	return &ExternalInput{fs: fsys, path: path, decompiled: decompiled}
}

func (in *ExternalInput) Name() string { return filepath.Base(in.path) }
func (in *ExternalInput) Path() string { return in.path }
func (in *ExternalInput) Decompiled() bool { return in.decompiled }
func (in *ExternalInput) Open() (io.ReadCloser, error) { return in.fs.Open(in.path) }

func (in *ExternalInput) Write(data []byte) error {
	return in.fs.WriteFile(in.path, data, vfs.DefaultPerm)
}

// StorageInput shows a storage. Err, when set, is returned instead of the
// storage, as a provider that failed to resolve would.
type StorageInput struct {
	name    string
	storage document.Storage
	err     error
}

// NewStorageInput creates an input for st.
func NewStorageInput(name string, st document.Storage) *StorageInput {
	return &StorageInput{name: name, storage: st}
}

// NewFailedStorageInput creates an input whose storage cannot be obtained.
func NewFailedStorageInput(name string, err error) *StorageInput {
	return &StorageInput{name: name, err: err}
}

func (in *StorageInput) Name() string { return in.name }

// Storage returns the storage or the resolution error.
func (in *StorageInput) Storage() (document.Storage, error) {
	if in.err != nil {
		return nil, in.err
	}
	return in.storage, nil
}

// MemoryStorage is an in-memory storage, for example an unsaved buffer or a
// generated preview.
type MemoryStorage struct {
	mu       sync.Mutex
	name     string
	data     []byte
	readOnly bool
}

// NewMemoryStorage creates a storage holding a copy of data.
func NewMemoryStorage(name string, data []byte, readOnly bool) *MemoryStorage {
	return &MemoryStorage{name: name, data: bytes.Clone(data), readOnly: readOnly}
}

func (s *MemoryStorage) Name() string { return s.name }
func (s *MemoryStorage) ReadOnly() bool { return s.readOnly }

// Contents returns a reader over a snapshot of the data.
func (s *MemoryStorage) Contents() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(bytes.NewReader(bytes.Clone(s.data))), nil
}

// Bytes returns a copy of the data.
func (s *MemoryStorage) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.data)
}

// SetContents replaces the data.
func (s *MemoryStorage) SetContents(data []byte) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.mu.Lock()
	s.data = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

// ArchiveStorage is a read-only entry of an archive.
type ArchiveStorage struct {
	*MemoryStorage
	root document.ArchiveRoot
}

// NewArchiveStorage creates an entry of the archive described by root.
func NewArchiveStorage(name string, data []byte, root document.ArchiveRoot) *ArchiveStorage {
	return &ArchiveStorage{MemoryStorage: NewMemoryStorage(name, data, true), root: root}
}

// ArchiveRoot returns the archive the entry belongs to.
func (s *ArchiveStorage) ArchiveRoot() (document.ArchiveRoot, error) { return s.root, nil }

// PendingStorage stands for a provider that has not produced content yet.
type PendingStorage struct {
	name string
}

// NewPendingStorage creates a placeholder storage.
func NewPendingStorage(name string) *PendingStorage { return &PendingStorage{name: name} }

func (s *PendingStorage) Name() string { return s.name }
func (s *PendingStorage) Placeholder() bool { return true }

// Contents always fails; the provider is still loading.
func (s *PendingStorage) Contents() (io.ReadCloser, error) {
	return nil, errors.New("storage " + s.name + " is still loading")
}
