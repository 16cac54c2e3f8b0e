// Package agent tracks the focused editor and keeps an encoding Document for
// it.
//
// The agent listens to the host's focus events. When the focused handle
// changes it resolves a new document and tells the host that the status
// changed. Other property changes are passed to the current document, which
// notifies only when its snapshot differs. Notifications are posted to the
// host's Dispatcher and coalesced so the host sees at most one per tick.
//
// Like the documents it owns, an Agent must only be used from the host's UI
// goroutine.
package agent

import (
	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
)

// Property identifies a changed editor property.
type Property int

const (
	// PropInput means the editor now shows a different input.
	PropInput Property = iota + 1
	// PropDirty means the dirty flag changed, typically on save.
	PropDirty
	// PropTitle means the editor title changed.
	PropTitle
	// PropSettings means encoding settings changed outside the editor.
	PropSettings
	// PropContent means the content changed on disk.
	PropContent
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropInput:
		return "input"
	case PropDirty:
		return "dirty"
	case PropTitle:
		return "title"
	case PropSettings:
		return "settings"
	case PropContent:
		return "content"
	default:
		return "unknown"
	}
}

// Listener receives focus and property events from a FocusSource. Handles
// passed to it are compared by identity.
type Listener interface {
	PartActivated(e document.Editor)
	PartDeactivated(e document.Editor)
	PartBroughtToTop(e document.Editor)
	PartOpened(e document.Editor)
	PartClosed(e document.Editor)
	PageChanged(e document.Editor)
	// PropertyChanged reports a property change of e. A nil e reports a
	// workspace-wide change.
	PropertyChanged(e document.Editor, prop Property)
}

// FocusSource is the host window.
type FocusSource interface {
	// ActiveEditor returns the focused handle, nil when nothing has focus.
	ActiveEditor() document.Editor
	Subscribe(l Listener)
	Unsubscribe(l Listener)
}

// Agent tracks the active document of one window.
type Agent struct {
	focus         FocusSource
	resolver      *document.Resolver
	dispatcher    Dispatcher
	statusChanged func()
	logger        *logging.Logger

	started bool
	pending bool
	doc     *document.Document
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates a stopped agent. statusChanged is called on the dispatcher's
// goroutine whenever the active document or its state changes.
func New(focus FocusSource, resolver *document.Resolver, dispatcher Dispatcher, statusChanged func(), opts ...Option) *Agent {
	if focus == nil || resolver == nil || dispatcher == nil || statusChanged == nil {
		panic("agent: nil focus source, resolver, dispatcher or callback")
	}
	a := &Agent{
		focus:         focus,
		resolver:      resolver,
		dispatcher:    dispatcher,
		statusChanged: statusChanged,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrDefault(a.logger).WithComponent("agent")
	a.doc = a.resolve(nil)
	return a
}

// Start begins tracking. The initial document is resolved without a
// notification.
func (a *Agent) Start() {
	if a.started {
		return
	}
	a.started = true
	a.setDocument(a.resolve(a.focus.ActiveEditor()))
	a.focus.Subscribe(a)
	a.logger.Debug("started")
}

// Stop ends tracking and resets the document to the no-document state.
func (a *Agent) Stop() {
	if !a.started {
		return
	}
	a.focus.Unsubscribe(a)
	a.setDocument(a.resolve(nil))
	a.started = false
	a.logger.Debug("stopped")
}

// Started reports whether the agent is tracking.
func (a *Agent) Started() bool { return a.started }

// Document returns the active document. It is never nil.
func (a *Agent) Document() *document.Document { return a.doc }

// IsDocumentDirty reports whether the active document has unsaved edits.
func (a *Agent) IsDocumentDirty() bool {
	e := a.doc.Editor()
	return e != nil && e.IsDirty()
}

func (a *Agent) resolve(e document.Editor) *document.Document {
	d := a.resolver.Resolve(e, a.schedule)
	a.logger.Debug("resolved %s as %s", d.FileName(), d.Kind())
	return d
}

func (a *Agent) setDocument(d *document.Document) {
	a.doc = d
	if a.resolver.Policy().AutodetectSet {
		d.ApplyDetected()
	}
}

// schedule posts one statusChanged for all changes until the next tick.
func (a *Agent) schedule() {
	if a.pending {
		return
	}
	a.pending = true
	a.dispatcher.Post(func() {
		a.pending = false
		if a.started {
			a.statusChanged()
		}
	})
}

// checkActive re-resolves when the focused handle is no longer the one
// behind the active document.
func (a *Agent) checkActive() {
	if !a.started {
		return
	}
	e := a.focus.ActiveEditor()
	if e == a.doc.Editor() {
		return
	}
	a.setDocument(a.resolve(e))
	a.schedule()
}

func (a *Agent) reresolve() {
	if !a.started {
		return
	}
	a.setDocument(a.resolve(a.focus.ActiveEditor()))
	a.schedule()
}

// PartActivated implements Listener.
func (a *Agent) PartActivated(document.Editor) { a.checkActive() }

// PartDeactivated implements Listener.
func (a *Agent) PartDeactivated(document.Editor) { a.checkActive() }

// PartBroughtToTop implements Listener.
func (a *Agent) PartBroughtToTop(document.Editor) { a.checkActive() }

// PartOpened implements Listener.
func (a *Agent) PartOpened(document.Editor) { a.checkActive() }

// PartClosed implements Listener.
func (a *Agent) PartClosed(document.Editor) { a.checkActive() }

// PageChanged implements Listener. The active page of a tabbed editor is not
// visible in the handle's identity, so the document is always re-resolved.
func (a *Agent) PageChanged(document.Editor) { a.reresolve() }

// PropertyChanged implements Listener. An input change re-resolves the
// document; other changes of the active handle refresh it.
func (a *Agent) PropertyChanged(e document.Editor, prop Property) {
	if !a.started {
		return
	}
	if prop == PropInput {
		a.reresolve()
		return
	}
	if e != nil && e != a.doc.Editor() {
		return
	}
	a.doc.PropertyChanged()
}

// SetEncoding sets the active document's encoding.
func (a *Agent) SetEncoding(enc string) { a.doc.SetEncoding(enc) }

// ConvertCharset converts the active document's content to enc.
func (a *Agent) ConvertCharset(enc string) error { return a.doc.ConvertCharset(enc) }

// SetLineSeparator rewrites the active document's line breaks.
func (a *Agent) SetLineSeparator(k lineending.Kind) error { return a.doc.SetLineSeparator(k) }

// AddBOM adds a byte-order mark to the active document.
func (a *Agent) AddBOM() error { return a.doc.AddBOM() }

// RemoveBOM removes the active document's byte-order mark.
func (a *Agent) RemoveBOM() error { return a.doc.RemoveBOM() }
