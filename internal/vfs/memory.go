package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	errIsDir    = syscall.EISDIR
	errNotDir   = syscall.ENOTDIR
	errNotEmpty = syscall.ENOTEMPTY
)

// MemFS is an in-memory FS rooted at "/". Backslashes are read as slashes.
// Read failures can be injected per path with FailReads.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu      sync.RWMutex
	nodes   map[string]*node
	failing map[string]error
}

// node is a file or directory. It doubles as its own fs.FileInfo snapshot.
type node struct {
	name    string
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

func (n *node) Name() string { return n.name }
func (n *node) Size() int64 { return int64(len(n.data)) }
func (n *node) Mode() fs.FileMode { return n.mode }
func (n *node) ModTime() time.Time { return n.modTime }
func (n *node) IsDir() bool { return n.mode.IsDir() }
func (n *node) Sys() any { return nil }

func dirNode(p string) *node {
	return &node{name: path.Base(p), mode: fs.ModeDir | 0o755}
}

// NewMemFS returns an empty file system holding only "/".
func NewMemFS() *MemFS {
	return &MemFS{
		nodes:   map[string]*node{"/": dirNode("/")},
		failing: make(map[string]error),
	}
}

var _ FS = (*MemFS)(nil)

func clean(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
}

func (m *MemFS) Open(p string) (io.ReadCloser, error) {
	data, err := m.read("open", p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemFS) ReadFile(p string) ([]byte, error) { return m.read("read", p) }

func (m *MemFS) read(op, p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = clean(p)
	if err := m.failing[p]; err != nil {
		return nil, &fs.PathError{Op: op, Path: p, Err: err}
	}
	n, ok := m.nodes[p]
	switch {
	case !ok:
		return nil, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	case n.IsDir():
		return nil, &fs.PathError{Op: op, Path: p, Err: errIsDir}
	}
	return bytes.Clone(n.data), nil
}

// WriteFile requires the parent directory to exist and refuses files
// without the owner write bit.
func (m *MemFS) WriteFile(p string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	if parent, ok := m.nodes[path.Dir(p)]; !ok || !parent.IsDir() {
		return &fs.PathError{Op: "write", Path: p, Err: fs.ErrNotExist}
	}
	if n, ok := m.nodes[p]; ok {
		if n.IsDir() {
			return &fs.PathError{Op: "write", Path: p, Err: errIsDir}
		}
		if n.mode&0o200 == 0 {
			return &fs.PathError{Op: "write", Path: p, Err: ErrReadOnly}
		}
		perm = n.mode
	}
	m.nodes[p] = &node{name: path.Base(p), data: bytes.Clone(data), mode: perm, modTime: time.Now()}
	return nil
}

func (m *MemFS) Stat(p string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	snap := *n
	return &snap, nil
}

func (m *MemFS) MkdirAll(p string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mkdirAll(clean(p))
}

func (m *MemFS) mkdirAll(p string) error {
	if n, ok := m.nodes[p]; ok {
		if !n.IsDir() {
			return &fs.PathError{Op: "mkdir", Path: p, Err: errNotDir}
		}
		return nil
	}
	if p != "/" {
		if err := m.mkdirAll(path.Dir(p)); err != nil {
			return err
		}
	}
	m.nodes[p] = dirNode(p)
	return nil
}

// Remove deletes a file or an empty directory.
func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	if n.IsDir() {
		for q := range m.nodes {
			if q != p && path.Dir(q) == p {
				return &fs.PathError{Op: "remove", Path: p, Err: errNotEmpty}
			}
		}
	}
	delete(m.nodes, p)
	return nil
}

func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[clean(p)]
	return ok
}

// AddFile creates a file with mode DefaultPerm, making its parent
// directories.
func (m *MemFS) AddFile(p, content string) error {
	return m.AddBytes(p, []byte(content), DefaultPerm)
}

// AddBytes creates or replaces a file with the given mode, ignoring the
// mode of any file it replaces.
func (m *MemFS) AddBytes(p string, content []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	if err := m.mkdirAll(path.Dir(p)); err != nil {
		return err
	}
	if n, ok := m.nodes[p]; ok && n.IsDir() {
		return &fs.PathError{Op: "add", Path: p, Err: errIsDir}
	}
	m.nodes[p] = &node{name: path.Base(p), data: bytes.Clone(content), mode: perm, modTime: time.Now()}
	return nil
}

func (m *MemFS) Chmod(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = clean(p)
	n, ok := m.nodes[p]
	if !ok || n.IsDir() {
		return &fs.PathError{Op: "chmod", Path: p, Err: fs.ErrNotExist}
	}
	n.mode = perm
	return nil
}

// FailReads makes reads of p fail with err until called again with nil.
func (m *MemFS) FailReads(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failing, clean(p))
		return
	}
	m.failing[clean(p)] = err
}

// Files returns the paths of all regular files in sorted order.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []string
	for p, n := range m.nodes {
		if !n.IsDir() {
			files = append(files, p)
		}
	}
	slices.Sort(files)
	return files
}
