package document

import (
	"io"

	"github.com/dshills/encstatus/internal/lineending"
)

// Editor is a focused document handle supplied by the host.
type Editor interface {
	// Name is the title shown for the handle.
	Name() string
	// IsDirty reports unsaved edits.
	IsDirty() bool
	// Input returns the source the editor shows.
	Input() Input
	// EncodingSupport returns nil when the editor cannot report or alter
	// encodings, for example an overview page.
	EncodingSupport() EncodingSupport
}

// MultiPageEditor is a tabbed container. Only its active page is tracked.
type MultiPageEditor interface {
	Editor
	ActivePage() Editor
}

// EncodingSupport is the editor-side encoding adapter.
type EncodingSupport interface {
	// Encoding returns the explicitly stored encoding, "" when inherited.
	Encoding() string
	// DefaultEncoding returns the encoding used when nothing is stored.
	DefaultEncoding() string
	// SetEncoding persists enc; "" clears the stored value.
	SetEncoding(enc string) error
}

// Input is the source an editor shows.
type Input interface {
	Name() string
}

// Content reads and writes the raw bytes behind an input.
type Content interface {
	Open() (io.ReadCloser, error)
	Write(data []byte) error
}

// WorkspaceFileInput is a file managed by the workspace.
type WorkspaceFileInput interface {
	Input
	Content
	// Path is the file's location, used for container and content type
	// lookups.
	Path() string
	// Project names the workspace folder that owns the file.
	Project() string
}

// PathInput is a file outside the workspace.
type PathInput interface {
	Input
	Content
	Path() string
	// Decompiled reports derived output of a decompiler.
	Decompiled() bool
}

// StorageInput is backed by a storage provider.
type StorageInput interface {
	Input
	Storage() (Storage, error)
}

// Storage provides bytes for a StorageInput.
type Storage interface {
	Name() string
	Contents() (io.ReadCloser, error)
}

// WritableStorage is a Storage that accepts new contents.
type WritableStorage interface {
	Storage
	ReadOnly() bool
	SetContents(data []byte) error
}

// PlaceholderStorage marks providers that have not produced content yet.
type PlaceholderStorage interface {
	Storage
	Placeholder() bool
}

// ArchiveRoot identifies the archive an entry or compiled unit lives in.
type ArchiveRoot struct {
	Path string
	// SourceEncoding is the encoding configured for attached sources, if any.
	SourceEncoding string
}

// ArchiveRootAccessor is implemented by inputs and storages that live in an
// archive.
type ArchiveRootAccessor interface {
	ArchiveRoot() (ArchiveRoot, error)
}

// CompiledUnitAccessor exposes the attached source of a compiled unit.
type CompiledUnitAccessor interface {
	Name() string
	ArchiveRoot() (ArchiveRoot, error)
	// Source returns the attached source text. ok is false when no source
	// is attached.
	Source() (text string, ok bool, err error)
}

// CompiledUnitAdapter converts a host input into a CompiledUnitAccessor.
type CompiledUnitAdapter func(in Input) (CompiledUnitAccessor, error)

// Workspace answers default-encoding questions for the host.
type Workspace interface {
	// ContainerDefaultEncoding returns the default of the folder that holds
	// path, "" when none is configured.
	ContainerDefaultEncoding(path string) string
	WorkspaceDefaultEncoding() string
	WorkspaceLineSeparator() lineending.Kind
}
