package editor

import (
	"sync"

	"github.com/dshills/encstatus/internal/workspace"
)

// WorkspaceEncoding stores a workspace file's encoding in the workspace
// settings.
type WorkspaceEncoding struct {
	ws   *workspace.Workspace
	path string
}

// NewWorkspaceEncoding creates the encoding support of the file at path.
func NewWorkspaceEncoding(ws *workspace.Workspace, path string) *WorkspaceEncoding {
	return &WorkspaceEncoding{ws: ws, path: path}
}

// Encoding returns the stored encoding.
func (s *WorkspaceEncoding) Encoding() string { return s.ws.FileEncoding(s.path) }

// DefaultEncoding returns "", leaving the default to the file's container.
func (s *WorkspaceEncoding) DefaultEncoding() string { return "" }

// SetEncoding stores enc; "" clears it.
func (s *WorkspaceEncoding) SetEncoding(enc string) error {
	return s.ws.SetFileEncoding(s.path, enc)
}

// MemoryEncoding keeps the encoding of an editor in memory, for files that
// have no workspace settings.
type MemoryEncoding struct {
	mu  sync.Mutex
	enc string
	def string
}

// NewMemoryEncoding creates a support whose default is def.
func NewMemoryEncoding(def string) *MemoryEncoding {
	return &MemoryEncoding{def: def}
}

func (s *MemoryEncoding) Encoding() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc
}

func (s *MemoryEncoding) DefaultEncoding() string { return s.def }

func (s *MemoryEncoding) SetEncoding(enc string) error {
	s.mu.Lock()
	s.enc = enc
	s.mu.Unlock()
	return nil
}
