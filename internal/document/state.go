package document

import (
	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/lineending"
)

// Kind is the classification a focused document resolves to.
type Kind int

const (
	// KindNoDocument reports workspace defaults when nothing suitable has
	// focus.
	KindNoDocument Kind = iota
	// KindFallback is a read-only document with no derived facts.
	KindFallback
	// KindWorkspaceFile is a file managed by the workspace.
	KindWorkspaceFile
	// KindExternalFile is a file outside the workspace.
	KindExternalFile
	// KindArchiveEntry is a read-only entry inside an archive.
	KindArchiveEntry
	// KindCompiledUnit is the attached or decompiled source of a binary.
	KindCompiledUnit
	// KindEphemeral is provider-backed content without stable identity.
	KindEphemeral
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNoDocument:
		return "NoDocument"
	case KindFallback:
		return "Fallback"
	case KindWorkspaceFile:
		return "WorkspaceFile"
	case KindExternalFile:
		return "ExternalFile"
	case KindArchiveEntry:
		return "ArchiveEntry"
	case KindCompiledUnit:
		return "CompiledUnit"
	case KindEphemeral:
		return "Ephemeral"
	default:
		return "Unknown"
	}
}

// Capabilities tells the host which mutations a document accepts.
type Capabilities struct {
	CanChangeEncoding   bool
	CanConvertContent   bool
	SupportsContentType bool
	CanOperateBOM       bool
}

var (
	capsNone     = Capabilities{}
	capsFile     = Capabilities{CanChangeEncoding: true, CanConvertContent: true, SupportsContentType: true, CanOperateBOM: true}
	capsReadOnly = Capabilities{SupportsContentType: true}
)

// State is a snapshot of a document's encoding facts. It is replaced as a
// whole on every refresh.
type State struct {
	// Explicit is the stored encoding, "" when inherited.
	Explicit string
	// Current is the encoding in force.
	Current string
	// Inherited is the container or workspace default.
	Inherited string
	// Detected is the statistically detected charset, "" when uncertain.
	Detected string
	// ContentDeclared is the charset the content declares about itself.
	ContentDeclared string
	// ContentTypeDefault is the default charset of the file's content type.
	ContentTypeDefault string
	BOM                charset.BOM
	LineSeparator      lineending.Kind
}

// Matches reports whether a detected charset equals the current encoding.
func (s State) Matches() bool {
	return s.Detected != "" && charset.Equal(s.Detected, s.Current)
}

// Mismatches reports whether a detected charset differs from the current
// encoding. Both Matches and Mismatches are false when detection is
// uncertain.
func (s State) Mismatches() bool {
	return s.Detected != "" && !charset.Equal(s.Detected, s.Current)
}

// DetectionUncertain reports that detection produced no answer.
func (s State) DetectionUncertain() bool {
	return s.Detected == ""
}
