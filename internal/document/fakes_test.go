package document

import (
	"bytes"
	"errors"
	"io"
	"path"
	"testing"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
	"github.com/dshills/encstatus/internal/vfs"
)

type fakeWorkspace struct {
	containers map[string]string
	def        string
	sep        lineending.Kind
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{containers: map[string]string{}, def: charset.UTF8, sep: lineending.LF}
}

func (w *fakeWorkspace) ContainerDefaultEncoding(p string) string { return w.containers[path.Dir(p)] }
func (w *fakeWorkspace) WorkspaceDefaultEncoding() string { return w.def }
func (w *fakeWorkspace) WorkspaceLineSeparator() lineending.Kind { return w.sep }

type fakeSupport struct {
	enc  string
	def  string
	err  error
	sets []string
}

func (s *fakeSupport) Encoding() string { return s.enc }
func (s *fakeSupport) DefaultEncoding() string { return s.def }

func (s *fakeSupport) SetEncoding(enc string) error {
	s.sets = append(s.sets, enc)
	if s.err != nil {
		return s.err
	}
	s.enc = enc
	return nil
}

type fakeEditor struct {
	name  string
	dirty bool
	in    Input
	es    EncodingSupport
}

func (e *fakeEditor) Name() string { return e.name }
func (e *fakeEditor) IsDirty() bool { return e.dirty }
func (e *fakeEditor) Input() Input { return e.in }
func (e *fakeEditor) EncodingSupport() EncodingSupport { return e.es }

type fakeMultiPage struct {
	fakeEditor
	page Editor
}

func (e *fakeMultiPage) ActivePage() Editor { return e.page }

type fileContent struct {
	fs   *vfs.MemFS
	path string
}

func (f fileContent) Name() string { return path.Base(f.path) }
func (f fileContent) Path() string { return f.path }
func (f fileContent) Open() (io.ReadCloser, error) { return f.fs.Open(f.path) }
func (f fileContent) Write(data []byte) error { return f.fs.WriteFile(f.path, data, vfs.DefaultPerm) }

type wsInput struct {
	fileContent
	project string
}

func (in wsInput) Project() string { return in.project }

type extInput struct {
	fileContent
	decompiled bool
}

func (in extInput) Decompiled() bool { return in.decompiled }

type memStorage struct {
	name        string
	data        []byte
	err         error
	readOnly    bool
	placeholder bool
	root        *ArchiveRoot
}

func (s *memStorage) Name() string { return s.name }

func (s *memStorage) Contents() (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *memStorage) ReadOnly() bool { return s.readOnly }
func (s *memStorage) Placeholder() bool { return s.placeholder }

func (s *memStorage) SetContents(data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *memStorage) ArchiveRoot() (ArchiveRoot, error) {
	if s.root == nil {
		return ArchiveRoot{}, errors.New("not in an archive")
	}
	return *s.root, nil
}

type storageInput struct {
	name string
	st   Storage
	err  error
}

func (in storageInput) Name() string { return in.name }
func (in storageInput) Storage() (Storage, error) { return in.st, in.err }

type classFileInput struct {
	name string
}

func (in *classFileInput) Name() string { return in.name }

type unitAccessor struct {
	name    string
	text    string
	hasText bool
	root    ArchiveRoot
	rootErr error
}

func (u *unitAccessor) Name() string { return u.name }

func (u *unitAccessor) ArchiveRoot() (ArchiveRoot, error) { return u.root, u.rootErr }

func (u *unitAccessor) Source() (string, bool, error) { return u.text, u.hasText, nil }

// host bundles a workspace, an in-memory file system and a resolver.
type host struct {
	ws       *fakeWorkspace
	fs       *vfs.MemFS
	notified int
	opts     []Option
}

func newHost(opts ...Option) *host {
	return &host{ws: newFakeWorkspace(), fs: vfs.NewMemFS(), opts: opts}
}

func (h *host) resolver() *Resolver {
	return NewResolver(h.ws, append([]Option{WithLogger(logging.Null)}, h.opts...)...)
}

func (h *host) notify() { h.notified++ }

// workspaceFile adds a file and returns an editor showing it.
func (h *host) workspaceFile(t *testing.T, p string, content []byte) (*fakeEditor, *fakeSupport) {
	t.Helper()
	if err := h.fs.AddBytes(p, content, vfs.DefaultPerm); err != nil {
		t.Fatalf("AddBytes(%s) error = %v", p, err)
	}
	es := &fakeSupport{}
	return &fakeEditor{
		name: path.Base(p),
		in:   wsInput{fileContent: fileContent{fs: h.fs, path: p}, project: "proj"},
		es:   es,
	}, es
}

func (h *host) open(t *testing.T, p string, content []byte) (*Document, *fakeSupport) {
	t.Helper()
	e, es := h.workspaceFile(t, p, content)
	return h.resolver().Resolve(e, h.notify), es
}

func (h *host) content(t *testing.T, p string) []byte {
	t.Helper()
	b, err := h.fs.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", p, err)
	}
	return b
}

func mustEncode(t *testing.T, text, enc string) []byte {
	t.Helper()
	b, err := charset.Encode(text, enc)
	if err != nil {
		t.Fatalf("Encode(%q, %s) error = %v", text, enc, err)
	}
	return b
}
