package document

import (
	"fmt"
	"io"

	"github.com/dshills/encstatus/internal/charset/detect"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/contenttype"
	"github.com/dshills/encstatus/internal/logging"
)

// Resolver classifies focused editors into documents.
type Resolver struct {
	env      *environment
	adapters map[string]CompiledUnitAdapter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDetector sets the charset detector. The default is built from the
// policy.
func WithDetector(d detect.Detector) Option {
	return func(r *Resolver) { r.env.detector = d }
}

// WithPolicy sets the detection policy.
func WithPolicy(p config.DetectionPolicy) Option {
	return func(r *Resolver) { r.env.policy = p }
}

// WithRegistry sets the content type registry.
func WithRegistry(reg *contenttype.Registry) Option {
	return func(r *Resolver) { r.env.registry = reg }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.env.logger = l }
}

// WithCompiledUnitAdapter registers an adapter for inputs whose dynamic type
// prints as typeName, for example "*javaide.ClassFileInput".
func WithCompiledUnitAdapter(typeName string, a CompiledUnitAdapter) Option {
	return func(r *Resolver) { r.adapters[typeName] = a }
}

// NewResolver creates a resolver that consults ws for defaults.
func NewResolver(ws Workspace, opts ...Option) *Resolver {
	if ws == nil {
		panic("document: nil workspace")
	}
	r := &Resolver{
		env: &environment{
			workspace: ws,
			policy:    config.DefaultDetectionPolicy(),
		},
		adapters: make(map[string]CompiledUnitAdapter),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.env.logger = logging.OrDefault(r.env.logger).WithComponent("document")
	if r.env.registry == nil {
		r.env.registry = contenttype.NewRegistry()
	}
	if r.env.detector == nil {
		r.env.detector = r.env.policy.NewDetector(r.env.logger)
	}
	return r
}

// Policy returns the detection policy given to new documents.
func (r *Resolver) Policy() config.DetectionPolicy { return r.env.policy }

// Resolve classifies the focused handle e, which may be nil, and returns a
// freshly computed document. notify is called whenever the document's state
// changes through its own methods.
func (r *Resolver) Resolve(e Editor, notify func()) *Document {
	src, editor := r.classify(e)
	return newDocument(r.env, src, e, editor, notify)
}

func (r *Resolver) classify(e Editor) (source, Editor) {
	if e == nil || e.EncodingSupport() == nil {
		return noDocumentSource{}, e
	}
	editor := e
	if mp, ok := e.(MultiPageEditor); ok {
		if page := mp.ActivePage(); page != nil && page.EncodingSupport() != nil {
			editor = page
		}
	}

	in := editor.Input()
	switch in := in.(type) {
	case nil:
		return fallbackSource{}, editor
	case WorkspaceFileInput:
		return &workspaceFileSource{in: in}, editor
	case PathInput:
		if in.Decompiled() {
			return &decompiledSource{in: in}, editor
		}
		return &externalFileSource{in: in}, editor
	case StorageInput:
		return r.storageSource(in), editor
	}

	typeName := fmt.Sprintf("%T", in)
	adapter, ok := r.adapters[typeName]
	if !ok {
		r.env.logger.Info("no document handler for input type %s", typeName)
		return fallbackSource{}, editor
	}
	acc, err := adapter(in)
	if err != nil || acc == nil {
		r.env.logger.Info("compiled unit adapter for %s failed: %v", typeName, err)
		return fallbackSource{}, editor
	}
	src := &compiledUnitSource{acc: acc}
	if root, err := acc.ArchiveRoot(); err == nil {
		src.root, src.ok = root, true
	} else {
		r.env.logger.Info("archive root of %s unavailable: %v", acc.Name(), err)
	}
	return src, editor
}

// storageSource materializes a storage once. Storages that fail to produce
// content fall back to the read-only base document.
func (r *Resolver) storageSource(in StorageInput) source {
	st, err := in.Storage()
	if err != nil || st == nil {
		r.env.logger.Info("storage of %s unavailable: %v", in.Name(), err)
		return fallbackSource{}
	}
	if p, ok := st.(PlaceholderStorage); ok && p.Placeholder() {
		return &placeholderSource{name: st.Name()}
	}
	rc, err := st.Contents()
	if err != nil || rc == nil {
		r.env.logger.Info("storage %s has no content: %v", st.Name(), err)
		return fallbackSource{}
	}
	_, err = io.Copy(io.Discard, rc)
	rc.Close()
	if err != nil {
		r.env.logger.Info("storage %s has no content: %v", st.Name(), err)
		return fallbackSource{}
	}
	if a, ok := st.(ArchiveRootAccessor); ok {
		root, err := a.ArchiveRoot()
		if err == nil {
			return &archiveEntrySource{st: st, root: root}
		}
		r.env.logger.Info("archive root of %s unavailable: %v", st.Name(), err)
	}
	return &ephemeralSource{st: st}
}
