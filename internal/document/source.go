package document

import (
	"io"
	"strings"

	"github.com/dshills/encstatus/internal/charset"
)

// source is the variant arm behind a Document. Exactly one is chosen when
// the document is resolved.
type source interface {
	kind() Kind
	caps() Capabilities
	// path is used for content type lookups.
	path() string
	inherited(env *environment, es EncodingSupport) string
	// open returns the raw content. A nil reader with a nil error means the
	// arm has no byte content.
	open() (io.ReadCloser, error)
	write(data []byte) error
}

// textSource is implemented by arms whose content is already decoded text.
type textSource interface {
	text() (string, bool, error)
}

type archived interface {
	archiveRoot() (ArchiveRoot, bool)
}

// pinned is implemented by arms whose encoding ignores editor settings.
type pinned interface {
	pinned()
}

type projected interface {
	project() string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// workspaceDefault returns the editor's own default before the workspace
// default.
func workspaceDefault(env *environment, es EncodingSupport) string {
	var def string
	if es != nil {
		def = es.DefaultEncoding()
	}
	return firstNonEmpty(def, env.workspace.WorkspaceDefaultEncoding())
}

// noContent is embedded by arms without bytes.
type noContent struct{}

func (noContent) path() string { return "" }
func (noContent) open() (io.ReadCloser, error) { return nil, nil }
func (noContent) write([]byte) error { return ErrReadOnly }
func (noContent) caps() Capabilities { return capsNone }
func (noContent) inherited(*environment, EncodingSupport) string { return "" }

type noDocumentSource struct{ noContent }

func (noDocumentSource) kind() Kind { return KindNoDocument }

func (noDocumentSource) inherited(env *environment, _ EncodingSupport) string {
	return env.workspace.WorkspaceDefaultEncoding()
}

type fallbackSource struct{ noContent }

func (fallbackSource) kind() Kind { return KindFallback }

type workspaceFileSource struct {
	in WorkspaceFileInput
}

func (s *workspaceFileSource) kind() Kind { return KindWorkspaceFile }
func (s *workspaceFileSource) caps() Capabilities { return capsFile }
func (s *workspaceFileSource) path() string { return s.in.Path() }
func (s *workspaceFileSource) project() string { return s.in.Project() }
func (s *workspaceFileSource) open() (io.ReadCloser, error) { return s.in.Open() }
func (s *workspaceFileSource) write(data []byte) error { return s.in.Write(data) }

func (s *workspaceFileSource) inherited(env *environment, es EncodingSupport) string {
	if enc := env.workspace.ContainerDefaultEncoding(s.in.Path()); enc != "" {
		return enc
	}
	return workspaceDefault(env, es)
}

type externalFileSource struct {
	in PathInput
}

func (s *externalFileSource) kind() Kind { return KindExternalFile }
func (s *externalFileSource) caps() Capabilities { return capsFile }
func (s *externalFileSource) path() string { return s.in.Path() }
func (s *externalFileSource) open() (io.ReadCloser, error) { return s.in.Open() }
func (s *externalFileSource) write(data []byte) error { return s.in.Write(data) }

func (s *externalFileSource) inherited(env *environment, es EncodingSupport) string {
	return workspaceDefault(env, es)
}

// decompiledSource is decompiler output written to disk. It is read-only
// and carries no content type.
type decompiledSource struct {
	in PathInput
}

func (s *decompiledSource) kind() Kind { return KindCompiledUnit }
func (s *decompiledSource) caps() Capabilities { return capsNone }
func (s *decompiledSource) path() string { return s.in.Path() }
func (s *decompiledSource) open() (io.ReadCloser, error) { return s.in.Open() }
func (s *decompiledSource) write([]byte) error { return ErrReadOnly }

func (s *decompiledSource) inherited(env *environment, _ EncodingSupport) string {
	return env.workspace.WorkspaceDefaultEncoding()
}

type compiledUnitSource struct {
	noContent
	acc  CompiledUnitAccessor
	root ArchiveRoot
	ok   bool
}

func (s *compiledUnitSource) kind() Kind { return KindCompiledUnit }
func (s *compiledUnitSource) path() string {
	return s.acc.Name()
}

// Attached sources use the workspace or archive setting, never a project
// default.
func (s *compiledUnitSource) inherited(env *environment, _ EncodingSupport) string {
	return env.workspace.WorkspaceDefaultEncoding()
}

func (s *compiledUnitSource) text() (string, bool, error) { return s.acc.Source() }

func (s *compiledUnitSource) archiveRoot() (ArchiveRoot, bool) { return s.root, s.ok }

type archiveEntrySource struct {
	st   Storage
	root ArchiveRoot
}

func (s *archiveEntrySource) kind() Kind { return KindArchiveEntry }
func (s *archiveEntrySource) caps() Capabilities { return capsReadOnly }
func (s *archiveEntrySource) path() string { return s.st.Name() }
func (s *archiveEntrySource) open() (io.ReadCloser, error) { return s.st.Contents() }
func (s *archiveEntrySource) write([]byte) error { return ErrReadOnly }

func (s *archiveEntrySource) inherited(env *environment, es EncodingSupport) string {
	return workspaceDefault(env, es)
}

func (s *archiveEntrySource) archiveRoot() (ArchiveRoot, bool) { return s.root, true }

type ephemeralSource struct {
	st Storage
}

func (s *ephemeralSource) kind() Kind { return KindEphemeral }
func (s *ephemeralSource) path() string { return s.st.Name() }
func (s *ephemeralSource) open() (io.ReadCloser, error) { return s.st.Contents() }

func (s *ephemeralSource) caps() Capabilities {
	if w, ok := s.st.(WritableStorage); ok && !w.ReadOnly() {
		return capsFile
	}
	return capsReadOnly
}

func (s *ephemeralSource) write(data []byte) error {
	w, ok := s.st.(WritableStorage)
	if !ok || w.ReadOnly() {
		return ErrReadOnly
	}
	return w.SetContents(data)
}

func (s *ephemeralSource) inherited(env *environment, es EncodingSupport) string {
	return workspaceDefault(env, es)
}

// placeholderContent stands in for a provider that is still loading.
const placeholderContent = "\n"

type placeholderSource struct {
	name string
}

func (s *placeholderSource) kind() Kind { return KindEphemeral }
func (s *placeholderSource) caps() Capabilities { return capsReadOnly }
func (s *placeholderSource) path() string { return s.name }
func (s *placeholderSource) write([]byte) error { return ErrReadOnly }
func (s *placeholderSource) pinned() {}

func (s *placeholderSource) open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(placeholderContent)), nil
}

func (s *placeholderSource) inherited(*environment, EncodingSupport) string {
	return charset.UTF8
}
