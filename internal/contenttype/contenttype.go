// Package contenttype maps file names to content types and the charset each
// content type implies.
package contenttype

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/encstatus/internal/charset"
)

// ContentType describes a family of files.
type ContentType struct {
	// ID is the stable identifier, e.g. "xml".
	ID string
	// Patterns are exact file names ("pom.xml") or "*.ext" globs.
	Patterns []string
	// DefaultCharset is the charset implied by the type, or "".
	DefaultCharset string
	// Format selects the in-document declaration honored when sniffing
	// (charset.FormatXML, charset.FormatHTML or charset.FormatText).
	Format string
}

// Text is the content type used when nothing else matches.
var Text = ContentType{ID: "text", Patterns: []string{"*.txt"}}

func builtins() []ContentType {
	return []ContentType{
		Text,
		{ID: "xml", Patterns: []string{"*.xml", "*.xsd", "*.xsl", "*.xslt", "*.svg", "*.pom", "*.xhtml"}, DefaultCharset: charset.UTF8, Format: charset.FormatXML},
		{ID: "html", Patterns: []string{"*.html", "*.htm"}, Format: charset.FormatHTML},
		{ID: "json", Patterns: []string{"*.json"}, DefaultCharset: charset.UTF8},
		{ID: "properties", Patterns: []string{"*.properties"}, DefaultCharset: charset.Latin1},
		{ID: "go", Patterns: []string{"*.go", "go.mod", "go.sum"}, DefaultCharset: charset.UTF8},
		{ID: "toml", Patterns: []string{"*.toml"}, DefaultCharset: charset.UTF8},
		{ID: "yaml", Patterns: []string{"*.yaml", "*.yml"}},
		{ID: "markdown", Patterns: []string{"*.md", "*.markdown"}},
		{ID: "java", Patterns: []string{"*.java"}},
		{ID: "css", Patterns: []string{"*.css"}},
	}
}

// Registry resolves file names to content types. It is safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	types []ContentType
	byID  map[string]int
}

// NewRegistry returns a registry holding the built-in content types.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]int)}
	for _, ct := range builtins() {
		r.Add(ct)
	}
	return r
}

// Add registers ct. A type with an existing ID replaces it; patterns of a
// later type win over earlier ones.
func (r *Registry) Add(ct ContentType) {
	if ct.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byID[ct.ID]; ok {
		r.types = append(r.types[:i], r.types[i+1:]...)
		r.reindex()
	}
	r.types = append(r.types, ct)
	r.byID[ct.ID] = len(r.types) - 1
}

func (r *Registry) reindex() {
	r.byID = make(map[string]int, len(r.types))
	for i, ct := range r.types {
		r.byID[ct.ID] = i
	}
}

// Get returns the content type with the given ID.
func (r *Registry) Get(id string) (ContentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return ContentType{}, false
	}
	return r.types[i], true
}

// Match returns the content type for path. Exact file-name patterns win over
// extension globs, and later registrations win over earlier ones.
func (r *Registry) Match(path string) (ContentType, bool) {
	name := filepath.Base(path)
	lower := strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.types) - 1; i >= 0; i-- {
		for _, p := range r.types[i].Patterns {
			if !strings.ContainsAny(p, "*?[") && strings.EqualFold(p, name) {
				return r.types[i], true
			}
		}
	}
	for i := len(r.types) - 1; i >= 0; i-- {
		for _, p := range r.types[i].Patterns {
			if !strings.ContainsAny(p, "*?[") {
				continue
			}
			if ok, err := filepath.Match(strings.ToLower(p), lower); err == nil && ok {
				return r.types[i], true
			}
		}
	}
	return ContentType{}, false
}

// Lookup is Match with Text as the fallback.
func (r *Registry) Lookup(path string) ContentType {
	if ct, ok := r.Match(path); ok {
		return ct
	}
	return Text
}

// IDs returns the registered IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.types))
	for i, ct := range r.types {
		ids[i] = ct.ID
	}
	return ids
}
