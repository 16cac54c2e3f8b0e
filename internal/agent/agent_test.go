package agent

import (
	"io"
	"path"
	"testing"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/charset/detect"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
	"github.com/dshills/encstatus/internal/vfs"
)

type fakeWorkspace struct {
	containers map[string]string
}

func (w *fakeWorkspace) ContainerDefaultEncoding(p string) string { return w.containers[path.Dir(p)] }
func (w *fakeWorkspace) WorkspaceDefaultEncoding() string { return charset.UTF8 }
func (w *fakeWorkspace) WorkspaceLineSeparator() lineending.Kind { return lineending.LF }

type support struct{ enc string }

func (s *support) Encoding() string { return s.enc }
func (s *support) DefaultEncoding() string { return "" }
func (s *support) SetEncoding(enc string) error {
	s.enc = enc
	return nil
}

type fileInput struct {
	fs   *vfs.MemFS
	path string
}

func (in *fileInput) Name() string { return path.Base(in.path) }
func (in *fileInput) Path() string { return in.path }
func (in *fileInput) Project() string { return "p" }
func (in *fileInput) Open() (io.ReadCloser, error) { return in.fs.Open(in.path) }
func (in *fileInput) Write(data []byte) error { return in.fs.WriteFile(in.path, data, vfs.DefaultPerm) }

type otherInput struct{ name string }

func (in *otherInput) Name() string { return in.name }

type fakeEditor struct {
	name  string
	dirty bool
	in    document.Input
	es    *support
}

func (e *fakeEditor) Name() string { return e.name }
func (e *fakeEditor) IsDirty() bool { return e.dirty }
func (e *fakeEditor) Input() document.Input { return e.in }
func (e *fakeEditor) EncodingSupport() document.EncodingSupport {
	if e.es == nil {
		return nil
	}
	return e.es
}

type tabbedEditor struct {
	fakeEditor
	active document.Editor
}

func (e *tabbedEditor) ActivePage() document.Editor { return e.active }

type fakeWindow struct {
	active    document.Editor
	listeners []Listener
}

func (w *fakeWindow) ActiveEditor() document.Editor { return w.active }
func (w *fakeWindow) Subscribe(l Listener) { w.listeners = append(w.listeners, l) }

func (w *fakeWindow) Unsubscribe(l Listener) {
	for i, x := range w.listeners {
		if x == l {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

func (w *fakeWindow) activate(e document.Editor) {
	w.active = e
	for _, l := range w.listeners {
		l.PartActivated(e)
	}
}

func (w *fakeWindow) property(e document.Editor, p Property) {
	for _, l := range w.listeners {
		l.PropertyChanged(e, p)
	}
}

type fixture struct {
	fs     *vfs.MemFS
	ws     *fakeWorkspace
	window *fakeWindow
	queue  *Queue
	agent  *Agent
	states []document.State
	names  []string
}

func newFixture(t *testing.T, opts ...document.Option) *fixture {
	t.Helper()
	f := &fixture{
		fs:     vfs.NewMemFS(),
		ws:     &fakeWorkspace{containers: map[string]string{}},
		window: &fakeWindow{},
		queue:  NewQueue(logging.Null),
	}
	r := document.NewResolver(f.ws, append([]document.Option{document.WithLogger(logging.Null)}, opts...)...)
	f.agent = New(f.window, r, f.queue, func() {
		f.states = append(f.states, f.agent.Document().State())
		f.names = append(f.names, f.agent.Document().FileName())
	}, WithLogger(logging.Null))
	return f
}

func (f *fixture) file(t *testing.T, p, content string) *fakeEditor {
	t.Helper()
	if err := f.fs.AddFile(p, content); err != nil {
		t.Fatal(err)
	}
	return &fakeEditor{name: path.Base(p), in: &fileInput{fs: f.fs, path: p}, es: &support{}}
}

func TestAgent_FocusChangeAcrossFiles(t *testing.T) {
	f := newFixture(t)
	f.ws.containers["/w/a"] = charset.UTF8
	f.ws.containers["/w/b"] = charset.ShiftJIS
	a := f.file(t, "/w/a/one.txt", "one\n")
	b := f.file(t, "/w/b/two.txt", "two\r\n")

	f.agent.Start()
	f.window.activate(a)
	f.queue.Drain()
	f.window.activate(b)
	f.queue.Drain()

	if len(f.states) != 2 {
		t.Fatalf("statusChanged called %d times, want 2", len(f.states))
	}
	if f.names[0] != "one.txt" || f.states[0].Inherited != charset.UTF8 || f.states[0].LineSeparator != lineending.LF {
		t.Errorf("first notification = %s %+v, want one.txt UTF-8 LF", f.names[0], f.states[0])
	}
	if f.names[1] != "two.txt" || f.states[1].Inherited != charset.ShiftJIS || f.states[1].LineSeparator != lineending.CRLF {
		t.Errorf("second notification = %s %+v, want two.txt Shift_JIS CRLF", f.names[1], f.states[1])
	}
}

func TestAgent_SameHandleDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "x")
	f.window.active = a

	f.agent.Start()
	if f.agent.Document().FileName() != "a.txt" {
		t.Fatalf("Document().FileName() = %q, want a.txt", f.agent.Document().FileName())
	}
	for _, l := range f.window.listeners {
		l.PartBroughtToTop(a)
		l.PartOpened(a)
	}
	if n := f.queue.Drain(); n != 0 || len(f.states) != 0 {
		t.Errorf("drained %d, notified %d; want 0, 0", n, len(f.states))
	}
}

func TestAgent_Coalesces(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "x")
	b := f.file(t, "/w/b.txt", "y")

	f.agent.Start()
	f.window.activate(a)
	f.window.activate(b)
	f.window.activate(a)

	if f.queue.Len() != 1 {
		t.Errorf("queued %d notifications, want 1", f.queue.Len())
	}
	f.queue.Drain()
	if len(f.names) != 1 || f.names[0] != "a.txt" {
		t.Errorf("notifications = %v, want [a.txt]", f.names)
	}
}

func TestAgent_DirtySuppression(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "a\nb\n")
	f.window.active = a
	f.agent.Start()

	if err := f.fs.WriteFile("/w/a.txt", []byte("a\r\nb\r\n"), 0); err != nil {
		t.Fatal(err)
	}
	a.dirty = true
	f.window.property(a, PropDirty)
	f.queue.Drain()
	if len(f.states) != 0 || f.agent.Document().State().LineSeparator != lineending.LF {
		t.Fatalf("dirty document refreshed: notified %d, LineSeparator %v", len(f.states), f.agent.Document().State().LineSeparator)
	}
	if !f.agent.IsDocumentDirty() {
		t.Error("IsDocumentDirty() = false")
	}

	a.dirty = false
	f.window.property(a, PropDirty)
	f.queue.Drain()
	if len(f.states) != 1 || f.states[0].LineSeparator != lineending.CRLF {
		t.Errorf("after save: notified %d, states %+v; want 1 with CRLF", len(f.states), f.states)
	}
}

func TestAgent_PropertyOfOtherEditorIgnored(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "a\n")
	b := f.file(t, "/w/b.txt", "b\n")
	f.window.active = a
	f.agent.Start()

	if err := f.fs.WriteFile("/w/a.txt", []byte("a\r\n"), 0); err != nil {
		t.Fatal(err)
	}
	f.window.property(b, PropDirty)
	f.queue.Drain()
	if len(f.states) != 0 {
		t.Errorf("notified %d times for another editor's property, want 0", len(f.states))
	}
}

func TestAgent_InputChange(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "a\n")
	f.window.active = a
	f.agent.Start()
	first := f.agent.Document()

	if err := f.fs.AddFile("/w/c.txt", "c\r\n"); err != nil {
		t.Fatal(err)
	}
	a.in = &fileInput{fs: f.fs, path: "/w/c.txt"}
	f.window.property(a, PropInput)
	f.queue.Drain()

	if f.agent.Document() == first {
		t.Error("Document() not replaced on input change")
	}
	if len(f.names) != 1 || f.names[0] != "c.txt" {
		t.Errorf("notifications = %v, want [c.txt]", f.names)
	}
}

func TestAgent_PageChange(t *testing.T) {
	f := newFixture(t)
	text := f.file(t, "/w/pom.xml", "<project/>\n")
	tabs := &tabbedEditor{fakeEditor: fakeEditor{name: "pom", es: &support{}}, active: &fakeEditor{name: "overview"}}
	f.window.active = tabs
	f.agent.Start()

	if f.agent.Document().Kind() != document.KindFallback {
		t.Fatalf("Kind() = %v, want Fallback on the overview page", f.agent.Document().Kind())
	}

	tabs.active = text
	for _, l := range f.window.listeners {
		l.PageChanged(tabs)
	}
	f.queue.Drain()

	if f.agent.Document().Kind() != document.KindWorkspaceFile {
		t.Errorf("Kind() = %v, want WorkspaceFile after page change", f.agent.Document().Kind())
	}
	if len(f.states) != 1 {
		t.Errorf("notified %d times, want 1", len(f.states))
	}
}

func TestAgent_NoDocumentSettingsChange(t *testing.T) {
	f := newFixture(t)
	f.agent.Start()
	if k := f.agent.Document().Kind(); k != document.KindNoDocument {
		t.Fatalf("Kind() = %v, want NoDocument", k)
	}
	f.window.property(nil, PropSettings)
	if n := f.queue.Drain(); n != 0 {
		t.Errorf("unchanged settings queued %d notifications, want 0", n)
	}

	f.window.activate(&fakeEditor{name: "image", in: &otherInput{name: "logo.png"}})
	f.queue.Drain()
	if k := f.agent.Document().Kind(); k != document.KindNoDocument {
		t.Errorf("Kind() = %v, want NoDocument for an editor without encoding support", k)
	}
}

func TestAgent_Stop(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "x")
	f.window.active = a
	f.agent.Start()
	f.agent.Start()
	if len(f.window.listeners) != 1 {
		t.Fatalf("listeners = %d after double Start, want 1", len(f.window.listeners))
	}

	f.window.activate(f.file(t, "/w/b.txt", "y"))
	f.agent.Stop()
	f.queue.Drain()

	if len(f.window.listeners) != 0 {
		t.Errorf("listeners = %d after Stop, want 0", len(f.window.listeners))
	}
	if len(f.states) != 0 {
		t.Errorf("notified %d times after Stop, want 0", len(f.states))
	}
	d := f.agent.Document()
	if d == nil || d.Kind() != document.KindNoDocument || d.Editor() != nil {
		t.Errorf("Document() after Stop = %v, want NoDocument without handle", d)
	}
	if f.agent.Started() {
		t.Error("Started() = true after Stop")
	}
}

func TestAgent_Mutations(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "/w/a.txt", "a\r\nb")
	f.window.active = a
	f.agent.Start()

	if err := f.agent.SetLineSeparator(lineending.LF); err != nil {
		t.Fatalf("SetLineSeparator() error = %v", err)
	}
	if err := f.agent.AddBOM(); err != nil {
		t.Fatalf("AddBOM() error = %v", err)
	}
	if err := f.agent.RemoveBOM(); err != nil {
		t.Fatalf("RemoveBOM() error = %v", err)
	}
	if err := f.agent.ConvertCharset(charset.Latin1); err != nil {
		t.Fatalf("ConvertCharset() error = %v", err)
	}
	f.agent.SetEncoding(charset.UTF8)
	f.queue.Drain()

	if got, _ := f.fs.ReadFile("/w/a.txt"); string(got) != "a\nb" {
		t.Errorf("content = %q, want %q", got, "a\nb")
	}
	if a.es.enc != "" {
		t.Errorf("stored encoding = %q, want inherited", a.es.enc)
	}
	if len(f.states) != 1 {
		t.Errorf("notified %d times, want one coalesced notification", len(f.states))
	}
}

func TestAgent_AutodetectSet(t *testing.T) {
	policy := config.DefaultDetectionPolicy()
	policy.AutodetectSet = true
	f := newFixture(t,
		document.WithPolicy(policy),
		document.WithDetector(detect.Func(func(io.Reader) string { return charset.EUCJP })),
	)
	a := f.file(t, "/w/a.txt", "x")

	f.agent.Start()
	f.window.activate(a)
	f.queue.Drain()

	if a.es.enc != charset.EUCJP {
		t.Errorf("stored encoding = %q, want EUC-JP", a.es.enc)
	}
	if got := f.agent.Document().State().Current; got != charset.EUCJP {
		t.Errorf("Current = %q, want EUC-JP", got)
	}
}

func TestNew_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New() with nil callback did not panic")
		}
	}()
	r := document.NewResolver(&fakeWorkspace{}, document.WithLogger(logging.Null))
	New(&fakeWindow{}, r, NewQueue(logging.Null), nil)
}

func TestProperty_String(t *testing.T) {
	if PropInput.String() != "input" || Property(0).String() != "unknown" {
		t.Errorf("Property strings = %q, %q", PropInput.String(), Property(0).String())
	}
}
