package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/charset/detect"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/contenttype"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
)

// Errors returned by document mutations.
var (
	// ErrReadOnly is returned when writing content that cannot be written.
	ErrReadOnly = errors.New("document is read-only")

	// ErrNoEncoding is returned when content must be decoded but the
	// document has no current encoding.
	ErrNoEncoding = errors.New("document has no current encoding")
)

// declaredPrefix is how much content is read for BOM and declaration
// sniffing.
const declaredPrefix = 1024

// environment is shared by every document a Resolver creates.
type environment struct {
	workspace Workspace
	detector  detect.Detector
	registry  *contenttype.Registry
	policy    config.DetectionPolicy
	logger    *logging.Logger
}

// Document tracks the encoding facts of one focused editor.
//
// Documents are not safe for concurrent use. All calls are expected on the
// host's single UI goroutine.
type Document struct {
	src    source
	handle Editor
	editor Editor
	es     EncodingSupport
	env    *environment
	notify func()
	logger *logging.Logger
	state  State
}

func newDocument(env *environment, src source, handle, editor Editor, notify func()) *Document {
	d := &Document{
		src:    src,
		handle: handle,
		editor: editor,
		env:    env,
		notify: notify,
	}
	if editor != nil {
		d.es = editor.EncodingSupport()
	}
	d.logger = env.logger.WithField("kind", src.kind().String())
	if name := d.FileName(); name != "" {
		d.logger = d.logger.WithField("file", name)
	}
	d.state = d.compute()
	return d
}

// Kind returns the variant the document resolved to.
func (d *Document) Kind() Kind { return d.src.kind() }

// Capabilities returns the mutations the document accepts.
func (d *Document) Capabilities() Capabilities { return d.src.caps() }

// State returns the latest snapshot.
func (d *Document) State() State { return d.state }

// Editor returns the focus handle the document was resolved from, nil for
// the no-document state without a handle.
func (d *Document) Editor() Editor { return d.handle }

// Policy returns the detection policy the document was created with.
func (d *Document) Policy() config.DetectionPolicy { return d.env.policy }

// FileName returns the name of the shown input, "" when there is none.
func (d *Document) FileName() string {
	if d.src.kind() == KindNoDocument {
		return ""
	}
	if d.editor != nil {
		if in := d.editor.Input(); in != nil {
			return in.Name()
		}
		return d.editor.Name()
	}
	return ""
}

// Project returns the workspace folder of a workspace file.
func (d *Document) Project() string {
	if p, ok := d.src.(projected); ok {
		return p.project()
	}
	return ""
}

// ArchiveRoot returns the archive an entry or compiled unit lives in.
func (d *Document) ArchiveRoot() (ArchiveRoot, bool) {
	if a, ok := d.src.(archived); ok {
		return a.archiveRoot()
	}
	return ArchiveRoot{}, false
}

// Refresh recomputes the snapshot from the content and settings. It reports
// whether any field changed. Content is only read.
func (d *Document) Refresh() bool {
	next := d.compute()
	changed := next != d.state
	d.state = next
	return changed
}

// PropertyChanged refreshes the document after a host property change and
// notifies when the snapshot differs. Dirty documents are skipped until
// saved.
func (d *Document) PropertyChanged() {
	if d.editor != nil && d.editor.IsDirty() {
		return
	}
	if d.Refresh() {
		d.fire()
	}
}

func (d *Document) fire() {
	if d.notify != nil {
		d.notify()
	}
}

func (d *Document) compute() State {
	switch d.src.kind() {
	case KindNoDocument:
		def := d.src.inherited(d.env, nil)
		return State{
			Current:       def,
			Inherited:     def,
			LineSeparator: d.env.workspace.WorkspaceLineSeparator(),
		}
	case KindFallback:
		return State{}
	}

	s := State{Inherited: d.src.inherited(d.env, d.es)}
	if _, ok := d.src.(pinned); !ok && d.es != nil {
		s.Explicit = d.es.Encoding()
	}
	if ts, ok := d.src.(textSource); ok {
		return d.computeText(s, ts)
	}

	var format string
	if d.src.caps().SupportsContentType {
		ct := d.env.registry.Lookup(d.src.path())
		s.ContentTypeDefault = ct.DefaultCharset
		format = ct.Format
	}

	prefix, ok := d.readPrefix()
	if ok && d.src.caps().SupportsContentType {
		s.ContentDeclared = charset.Declared(prefix, format)
	}
	s.Current = firstNonEmpty(s.Explicit, s.ContentDeclared, s.Inherited)
	if b := charset.DetectBOM(prefix); b.Applies(s.Current) {
		s.BOM = b
	}
	if ok {
		s.Detected = d.detect()
		s.LineSeparator = d.classify(s.Current)
	}
	return s
}

// computeText fills the snapshot of a compiled unit from its attached
// source. Units without source report no current encoding.
func (d *Document) computeText(s State, ts textSource) State {
	text, ok, err := ts.text()
	if err != nil {
		d.logger.Info("compiled unit source unavailable: %v", err)
		ok = false
	}
	if !ok {
		return s
	}
	s.Current = firstNonEmpty(s.Explicit, s.Inherited)
	if root, has := d.ArchiveRoot(); has && root.SourceEncoding != "" {
		s.Current = root.SourceEncoding
	}
	s.LineSeparator = lineending.ClassifyString(text, d.env.policy.LineScanLimit)
	return s
}

// openContent opens the raw content, logging failures. It returns nil when
// no content is available.
func (d *Document) openContent() io.ReadCloser {
	rc, err := d.src.open()
	if err != nil {
		d.logger.Warn("open content: %v", err)
		return nil
	}
	return rc
}

func (d *Document) readPrefix() ([]byte, bool) {
	rc := d.openContent()
	if rc == nil {
		return nil, false
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, declaredPrefix))
	if err != nil {
		d.logger.Warn("read content: %v", err)
		return nil, false
	}
	return b, true
}

func (d *Document) detect() string {
	rc := d.openContent()
	if rc == nil {
		return ""
	}
	defer rc.Close()
	return d.env.detector.Detect(rc)
}

type decodingReadCloser struct {
	io.Reader
	io.Closer
}

func (d *Document) classify(current string) lineending.Kind {
	rc := d.openContent()
	if rc == nil {
		return lineending.None
	}
	in := rc
	if current != "" {
		if r, err := charset.NewDecodingReader(rc, current); err == nil {
			in = decodingReadCloser{Reader: r, Closer: rc}
		} else {
			d.logger.Info("classifying line separators as raw bytes: %v", err)
		}
	}
	kind, err := lineending.Classify(in, d.env.policy.LineScanLimit)
	if err != nil {
		d.logger.Warn("classify line separators: %v", err)
	}
	return kind
}

func (d *Document) readAll() ([]byte, error) {
	rc, err := d.src.open()
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrReadOnly
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// SetEncoding stores enc as the document's explicit encoding, "" to inherit.
// A value equal to the content-declared charset, or to the inherited
// encoding when nothing is declared, is stored as "". Persist failures are
// logged. The document is refreshed and the host notified either way.
func (d *Document) SetEncoding(enc string) {
	if !d.Capabilities().CanChangeEncoding || d.es == nil {
		return
	}
	d.setEncoding(enc)
	d.Refresh()
	d.fire()
}

func (d *Document) setEncoding(enc string) {
	s := d.state
	switch {
	case s.ContentDeclared != "":
		if charset.Equal(enc, s.ContentDeclared) {
			enc = ""
		}
	case charset.Equal(enc, s.Inherited):
		enc = ""
	}
	if err := d.es.SetEncoding(enc); err != nil {
		d.logger.Warn("persist encoding %q: %v", enc, err)
	}
}

// ConvertCharset re-encodes the content from the current encoding to enc,
// dropping any byte-order mark, and then sets enc as the encoding.
// Characters enc cannot represent are substituted by its encoder.
func (d *Document) ConvertCharset(enc string) error {
	if !d.Capabilities().CanConvertContent {
		return nil
	}
	out, err := d.ConvertedContent(enc)
	if err != nil {
		return err
	}
	if err := d.src.write(out); err != nil {
		return fmt.Errorf("write %s: %w", d.FileName(), err)
	}
	d.SetEncoding(enc)
	return nil
}

// ConvertedContent returns the bytes ConvertCharset would write.
func (d *Document) ConvertedContent(enc string) ([]byte, error) {
	current := d.state.Current
	if current == "" {
		return nil, ErrNoEncoding
	}
	if _, err := charset.Canonicalize(enc); err != nil {
		return nil, err
	}
	data, err := d.readAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.FileName(), err)
	}
	if b := charset.DetectBOM(data); b != charset.BOMNone && !b.Applies(current) {
		data = data[b.Len():]
	}
	text, err := charset.Decode(data, current)
	if err != nil {
		return nil, err
	}
	return charset.Encode(text, enc)
}

// SetLineSeparator rewrites every line break as k. It does nothing when k
// already is the document's separator or is not a concrete separator.
func (d *Document) SetLineSeparator(k lineending.Kind) error {
	if !d.Capabilities().CanConvertContent || !k.IsConcrete() || k == d.state.LineSeparator {
		return nil
	}
	out, err := d.SeparatedContent(k)
	if err != nil {
		return err
	}
	if err := d.src.write(out); err != nil {
		return fmt.Errorf("write %s: %w", d.FileName(), err)
	}
	if d.Refresh() {
		d.fire()
	}
	return nil
}

// SeparatedContent returns the bytes SetLineSeparator would write.
func (d *Document) SeparatedContent(k lineending.Kind) ([]byte, error) {
	current := d.state.Current
	if current == "" {
		return nil, ErrNoEncoding
	}
	data, err := d.readAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.FileName(), err)
	}
	text, err := charset.Decode(data, current)
	if err != nil {
		return nil, err
	}
	return encodeAs(lineending.Convert(text, k), current, charset.DetectBOM(data))
}

// encodeAs encodes text under current, keeping the byte order and mark the
// original content had.
func encodeAs(text, current string, bom charset.BOM) ([]byte, error) {
	if bom.Applies(current) {
		body, err := charset.Encode(text, bom.Encoding())
		if err != nil {
			return nil, err
		}
		return append(bom.Bytes(), body...), nil
	}
	if c, err := charset.Canonicalize(current); err == nil && c == charset.UTF16 {
		current = charset.UTF16BE
	}
	return charset.Encode(text, current)
}

// CanAddBOM reports whether AddBOM would change the content.
func (d *Document) CanAddBOM() bool {
	return d.Capabilities().CanOperateBOM && d.state.BOM == charset.BOMNone && charset.SupportsBOM(d.state.Current)
}

// CanRemoveBOM reports whether RemoveBOM would change the content.
func (d *Document) CanRemoveBOM() bool {
	return d.Capabilities().CanOperateBOM && d.state.BOM != charset.BOMNone
}

// AddBOM prepends the byte-order mark of the current encoding. It does
// nothing when a mark is present or the encoding cannot carry one.
func (d *Document) AddBOM() error {
	if !d.Capabilities().CanOperateBOM {
		return nil
	}
	b, err := charset.BOMFor(d.state.Current)
	if err != nil {
		return nil
	}
	data, err := d.readAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", d.FileName(), err)
	}
	if charset.DetectBOM(data) != charset.BOMNone {
		return nil
	}
	if err := d.src.write(append(b.Bytes(), data...)); err != nil {
		return fmt.Errorf("write %s: %w", d.FileName(), err)
	}
	d.Refresh()
	d.fire()
	return nil
}

// RemoveBOM strips a leading byte-order mark and sets the encoding the mark
// implied. It does nothing unless the state reports a mark, so bytes that
// merely look like one under a non-Unicode encoding are left alone.
func (d *Document) RemoveBOM() error {
	if !d.CanRemoveBOM() {
		return nil
	}
	data, err := d.readAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", d.FileName(), err)
	}
	body, b := charset.StripBOM(data)
	if b == charset.BOMNone {
		return nil
	}
	if err := d.src.write(body); err != nil {
		return fmt.Errorf("write %s: %w", d.FileName(), err)
	}
	d.Refresh()
	d.SetEncoding(b.Encoding())
	return nil
}

// EncodingCandidates lists the encodings the document has a reason to be
// in, deduplicated and sorted.
func (d *Document) EncodingCandidates() []string {
	s := d.state
	var list []string
	for _, enc := range []string{s.Explicit, s.Current, s.Inherited, s.ContentTypeDefault, s.ContentDeclared, s.Detected} {
		list = charset.AddCandidate(list, enc)
	}
	return list
}

// WarnMismatch reports whether p asks to flag this document's mismatch.
func (d *Document) WarnMismatch(p config.DetectionPolicy) bool {
	return p.WarnMismatch && d.state.Mismatches()
}

// ConvertDiscouraged reports whether p asks to disable conversion because
// detection is uncertain or disagrees with the current encoding.
func (d *Document) ConvertDiscouraged(p config.DetectionPolicy) bool {
	return p.DisableDiscouraged && (d.state.DetectionUncertain() || d.state.Mismatches())
}

// AddBOMDiscouraged reports whether p asks to disable adding a mark. UTF-8
// marks are discouraged, as is marking content whose detection disagrees.
func (d *Document) AddBOMDiscouraged(p config.DetectionPolicy) bool {
	if !p.DisableDiscouraged {
		return false
	}
	return charset.Equal(d.state.Current, charset.UTF8) || d.state.Mismatches()
}

// ApplyDetected sets the detected charset as the encoding of a document
// that has neither an explicit nor a declared encoding and whose detection
// disagrees with the current encoding. It reports whether it did.
func (d *Document) ApplyDetected() bool {
	s := d.state
	if !d.Capabilities().CanChangeEncoding || d.es == nil {
		return false
	}
	if s.Explicit != "" || s.ContentDeclared != "" || !s.Mismatches() {
		return false
	}
	d.logger.Info("applying detected encoding %s", s.Detected)
	d.SetEncoding(s.Detected)
	return true
}
