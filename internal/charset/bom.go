package charset

import "bytes"

// BOM identifies a byte-order mark at the start of content.
type BOM int

const (
	// BOMNone means no mark is present.
	BOMNone BOM = iota
	// BOMUTF8 is EF BB BF.
	BOMUTF8
	// BOMUTF16BE is FE FF.
	BOMUTF16BE
	// BOMUTF16LE is FF FE.
	BOMUTF16LE
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// String returns a short label for the mark.
func (b BOM) String() string {
	switch b {
	case BOMUTF8:
		return "UTF-8 BOM"
	case BOMUTF16BE:
		return "UTF-16BE BOM"
	case BOMUTF16LE:
		return "UTF-16LE BOM"
	default:
		return "none"
	}
}

// Bytes returns the mark's byte sequence. BOMNone returns nil.
func (b BOM) Bytes() []byte {
	switch b {
	case BOMUTF8:
		return append([]byte(nil), bomUTF8...)
	case BOMUTF16BE:
		return append([]byte(nil), bomUTF16BE...)
	case BOMUTF16LE:
		return append([]byte(nil), bomUTF16LE...)
	default:
		return nil
	}
}

// Len returns the number of bytes the mark occupies.
func (b BOM) Len() int {
	switch b {
	case BOMUTF8:
		return 3
	case BOMUTF16BE, BOMUTF16LE:
		return 2
	default:
		return 0
	}
}

// Encoding returns the canonical encoding implied by the mark, or "".
func (b BOM) Encoding() string {
	switch b {
	case BOMUTF8:
		return UTF8
	case BOMUTF16BE:
		return UTF16BE
	case BOMUTF16LE:
		return UTF16LE
	default:
		return ""
	}
}

// DetectBOM inspects the leading bytes of data. The three-byte UTF-8 mark is
// checked before the two-byte UTF-16 marks.
func DetectBOM(data []byte) BOM {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return BOMUTF8
	case bytes.HasPrefix(data, bomUTF16BE):
		return BOMUTF16BE
	case bytes.HasPrefix(data, bomUTF16LE):
		return BOMUTF16LE
	default:
		return BOMNone
	}
}

// StripBOM removes a leading byte-order mark, reporting which one it was.
func StripBOM(data []byte) ([]byte, BOM) {
	b := DetectBOM(data)
	return data[b.Len():], b
}

// SupportsBOM reports whether name belongs to the family that can carry a
// mark handled here: UTF-8, UTF-16, UTF-16BE and UTF-16LE.
func SupportsBOM(name string) bool {
	c, err := Canonicalize(name)
	if err != nil {
		return false
	}
	switch c {
	case UTF8, UTF16, UTF16BE, UTF16LE:
		return true
	}
	return false
}

// BOMFor returns the mark written for name. UTF-16 without an explicit
// byte order uses the big-endian mark.
func BOMFor(name string) (BOM, error) {
	c, err := Canonicalize(name)
	if err != nil {
		return BOMNone, err
	}
	switch c {
	case UTF8:
		return BOMUTF8, nil
	case UTF16, UTF16BE:
		return BOMUTF16BE, nil
	case UTF16LE:
		return BOMUTF16LE, nil
	}
	return BOMNone, ErrBOMUnsupported
}

// Applies reports whether b is meaningful for content in encoding name. A
// mark that does not belong to the encoding's family is reported as absent.
func (b BOM) Applies(name string) bool {
	if b == BOMNone {
		return false
	}
	c, err := Canonicalize(name)
	if err != nil {
		return false
	}
	switch b {
	case BOMUTF8:
		return c == UTF8
	case BOMUTF16BE, BOMUTF16LE:
		return c == UTF16 || c == UTF16BE || c == UTF16LE
	}
	return false
}
