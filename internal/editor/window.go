package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/dshills/encstatus/internal/agent"
	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/logging"
	"github.com/dshills/encstatus/internal/vfs"
	"github.com/dshills/encstatus/internal/workspace"
)

// Window errors.
var (
	ErrNotOpen     = errors.New("editor not open")
	ErrPageRange   = errors.New("page out of range")
	ErrFileMissing = errors.New("file does not exist")
)

// Window holds the open editors and the focus. It implements
// agent.FocusSource and must be used from a single goroutine.
type Window struct {
	fs        vfs.FS
	ws        *workspace.Workspace
	logger    *logging.Logger
	editors   []document.Editor
	active    document.Editor
	listeners []agent.Listener
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) WindowOption {
	return func(w *Window) { w.logger = l }
}

// NewWindow creates an empty window. ws may be nil when no workspace is
// open; every file is then external.
func NewWindow(fsys vfs.FS, ws *workspace.Workspace, opts ...WindowOption) *Window {
	w := &Window{fs: fsys, ws: ws}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrDefault(w.logger).WithComponent("window")
	return w
}

// ActiveEditor implements agent.FocusSource.
func (w *Window) ActiveEditor() document.Editor { return w.active }

// Subscribe implements agent.FocusSource.
func (w *Window) Subscribe(l agent.Listener) {
	w.listeners = append(w.listeners, l)
}

// Unsubscribe implements agent.FocusSource.
func (w *Window) Unsubscribe(l agent.Listener) {
	for i, x := range w.listeners {
		if x == l {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			return
		}
	}
}

// each calls fn for a snapshot of the listeners.
func (w *Window) each(fn func(agent.Listener)) {
	ls := make([]agent.Listener, len(w.listeners))
	copy(ls, w.listeners)
	for _, l := range ls {
		fn(l)
	}
}

// Editors returns the open editors in opening order.
func (w *Window) Editors() []document.Editor {
	out := make([]document.Editor, len(w.editors))
	copy(out, w.editors)
	return out
}

// OpenFile opens an editor on the file at path and activates it. Files inside
// a workspace folder store their encoding in the workspace settings; other
// files keep it in memory.
func (w *Window) OpenFile(path string) (*Editor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if e := w.EditorFor(abs); e != nil {
		w.Activate(e)
		return e, nil
	}
	if !w.fs.Exists(abs) {
		return nil, fmt.Errorf("open %s: %w", abs, ErrFileMissing)
	}

	var e *Editor
	if f, ok := w.folderFor(abs); ok {
		e = New(filepath.Base(abs), NewFileInput(w.fs, abs, f.Name), NewWorkspaceEncoding(w.ws, abs))
	} else {
		e = New(filepath.Base(abs), NewExternalInput(w.fs, abs, false), NewMemoryEncoding(""))
	}
	w.Open(e)
	return e, nil
}

func (w *Window) folderFor(abs string) (workspace.Folder, bool) {
	if w.ws == nil {
		return workspace.Folder{}, false
	}
	return w.ws.FolderFor(abs)
}

// EditorFor returns the open editor showing the file at path, nil if none.
func (w *Window) EditorFor(path string) *Editor {
	for _, e := range w.editors {
		if ed, ok := e.(*Editor); ok && ed.Path() == path {
			return ed
		}
	}
	return nil
}

// Open adds e to the window and activates it.
func (w *Window) Open(e document.Editor) {
	w.editors = append(w.editors, e)
	w.logFor(e).Debug("opened %s", e.Name())
	w.each(func(l agent.Listener) { l.PartOpened(e) })
	w.Activate(e)
}

// Activate gives e the focus.
func (w *Window) Activate(e document.Editor) {
	if e == w.active {
		return
	}
	if old := w.active; old != nil {
		w.each(func(l agent.Listener) { l.PartDeactivated(old) })
	}
	w.active = e
	if e == nil {
		return
	}
	w.each(func(l agent.Listener) {
		l.PartActivated(e)
		l.PartBroughtToTop(e)
	})
}

// Close closes e. When e had the focus, the most recently opened remaining
// editor gets it.
func (w *Window) Close(e document.Editor) error {
	idx := w.index(e)
	if idx < 0 {
		return ErrNotOpen
	}
	w.editors = append(w.editors[:idx], w.editors[idx+1:]...)
	if e == w.active {
		var next document.Editor
		if n := len(w.editors); n > 0 {
			next = w.editors[n-1]
		}
		w.Activate(next)
	}
	w.logFor(e).Debug("closed %s", e.Name())
	w.each(func(l agent.Listener) { l.PartClosed(e) })
	return nil
}

func (w *Window) index(e document.Editor) int {
	for i, x := range w.editors {
		if x == e {
			return i
		}
	}
	return -1
}

// owner returns the open handle that is or contains e.
func (w *Window) owner(e document.Editor) document.Editor {
	for _, x := range w.editors {
		if x == e {
			return x
		}
		if t, ok := x.(*Tabbed); ok {
			for _, p := range t.pages {
				if p == e {
					return t
				}
			}
		}
	}
	return nil
}

// SetPage switches the active page of t.
func (w *Window) SetPage(t *Tabbed, page int) error {
	if page < 0 || page >= len(t.pages) {
		return ErrPageRange
	}
	if page == t.active {
		return nil
	}
	t.active = page
	w.each(func(l agent.Listener) { l.PageChanged(t) })
	return nil
}

// SetDirty sets the dirty flag of e. Clearing it models a save.
func (w *Window) SetDirty(e *Editor, dirty bool) error {
	h := w.owner(e)
	if h == nil {
		return ErrNotOpen
	}
	if e.dirty == dirty {
		return nil
	}
	e.dirty = dirty
	w.fire(h, agent.PropDirty)
	return nil
}

// SetInput replaces the input shown by e.
func (w *Window) SetInput(e *Editor, in document.Input) error {
	h := w.owner(e)
	if h == nil {
		return ErrNotOpen
	}
	e.input = in
	e.name = in.Name()
	w.fire(h, agent.PropInput)
	return nil
}

// ContentChanged reports an on-disk change of the file at path to the
// editors showing it. A page of a tabbed editor is reported on the tabbed
// handle, once however many of its pages show the file.
func (w *Window) ContentChanged(path string) {
	for _, e := range w.editors {
		switch x := e.(type) {
		case *Editor:
			if x.Path() == path {
				w.fire(x, agent.PropContent)
			}
		case *Tabbed:
			if slices.ContainsFunc(x.pages, func(p document.Editor) bool {
				ed, ok := p.(*Editor)
				return ok && ed.Path() == path
			}) {
				w.fire(x, agent.PropContent)
			}
		}
	}
}

// SettingsChanged reports a workspace-wide settings change.
func (w *Window) SettingsChanged() {
	w.fire(nil, agent.PropSettings)
}

// FollowWorkspace forwards workspace settings changes to the listeners on
// the dispatcher's goroutine. Changes of a single file's stored encoding
// are left to the document that made them.
func (w *Window) FollowWorkspace(d agent.Dispatcher) {
	if w.ws == nil {
		return
	}
	w.ws.OnChange(func(ev workspace.ChangeEvent) {
		if ev.Type == workspace.ChangeFileEncoding {
			return
		}
		d.Post(w.SettingsChanged)
	})
}

func (w *Window) fire(e document.Editor, prop agent.Property) {
	w.each(func(l agent.Listener) { l.PropertyChanged(e, prop) })
}

func (w *Window) logFor(e document.Editor) *logging.Logger {
	switch x := e.(type) {
	case *Editor:
		return w.logger.WithField("editor", x.ID())
	case *Tabbed:
		return w.logger.WithField("editor", x.ID())
	}
	return w.logger
}
