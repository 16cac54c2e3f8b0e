// Package editor is the reference host behind the encstatus CLI: editor
// handles over files and storages, tabbed editors, and a Window that keeps
// the focus and emits the lifecycle events the agent listens to.
package editor

import (
	"github.com/google/uuid"

	"github.com/dshills/encstatus/internal/document"
)

// Editor is an open editor handle. Handles are compared by identity.
type Editor struct {
	id      string
	name    string
	input   document.Input
	support document.EncodingSupport
	dirty   bool
}

// New creates an editor showing in. A nil support makes the editor
// unable to report encodings.
func New(name string, in document.Input, support document.EncodingSupport) *Editor {
	return &Editor{
		id:      uuid.New().String(),
		name:    name,
		input:   in,
		support: support,
	}
}

// ID returns the handle's unique identifier.
func (e *Editor) ID() string { return e.id }

// Name implements document.Editor.
func (e *Editor) Name() string { return e.name }

// IsDirty implements document.Editor.
func (e *Editor) IsDirty() bool { return e.dirty }

// Input implements document.Editor.
func (e *Editor) Input() document.Input { return e.input }

// EncodingSupport implements document.Editor.
func (e *Editor) EncodingSupport() document.EncodingSupport {
	if e.support == nil {
		return nil
	}
	return e.support
}

// Path returns the file behind the editor, "" for storages.
func (e *Editor) Path() string {
	if p, ok := e.input.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}

// Tabbed is a multi-page editor such as a form editor with an overview page
// and a source page.
type Tabbed struct {
	*Editor
	pages  []document.Editor
	active int
}

// NewTabbed creates a tabbed editor with the given pages; the first page is
// active.
func NewTabbed(name string, support document.EncodingSupport, pages ...document.Editor) *Tabbed {
	return &Tabbed{Editor: New(name, nil, support), pages: pages}
}

// ActivePage implements document.MultiPageEditor.
func (t *Tabbed) ActivePage() document.Editor {
	if t.active < 0 || t.active >= len(t.pages) {
		return nil
	}
	return t.pages[t.active]
}

// Input returns the active page's input.
func (t *Tabbed) Input() document.Input {
	if p := t.ActivePage(); p != nil {
		return p.Input()
	}
	return nil
}

// IsDirty reports whether any page is dirty.
func (t *Tabbed) IsDirty() bool {
	for _, p := range t.pages {
		if p.IsDirty() {
			return true
		}
	}
	return t.dirty
}

// Pages returns the number of pages.
func (t *Tabbed) Pages() int { return len(t.pages) }
