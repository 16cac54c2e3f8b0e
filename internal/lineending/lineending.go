// Package lineending classifies and rewrites the line terminators of text.
package lineending

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind is the line terminator style of a text.
type Kind int

const (
	// None means no line break was observed.
	None Kind = iota
	// CRLF is "\r\n".
	CRLF
	// CR is "\r".
	CR
	// LF is "\n".
	LF
	// Mixed means more than one style was observed.
	Mixed
)

// DefaultScanLimit is the number of characters Classify inspects.
const DefaultScanLimit = 8192

// ErrUnknownKind is returned by Parse.
var ErrUnknownKind = errors.New("unknown line separator")

// String returns the conventional label: "CRLF", "CR", "LF", "Mixed" or "".
func (k Kind) String() string {
	switch k {
	case CRLF:
		return "CRLF"
	case CR:
		return "CR"
	case LF:
		return "LF"
	case Mixed:
		return "Mixed"
	default:
		return ""
	}
}

// Separator returns the terminator bytes for k. None and Mixed return "".
func (k Kind) Separator() string {
	switch k {
	case CRLF:
		return "\r\n"
	case CR:
		return "\r"
	case LF:
		return "\n"
	default:
		return ""
	}
}

// IsConcrete reports whether k names a single terminator.
func (k Kind) IsConcrete() bool {
	return k == CRLF || k == CR || k == LF
}

// Parse accepts a label ("crlf", "LF", ...) or a literal terminator.
func Parse(s string) (Kind, error) {
	if k := FromSeparator(s); k != None {
		return k, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crlf", "windows", `\r\n`:
		return CRLF, nil
	case "cr", "mac", `\r`:
		return CR, nil
	case "lf", "unix", `\n`:
		return LF, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// FromSeparator maps a literal terminator to its Kind.
func FromSeparator(sep string) Kind {
	switch sep {
	case "\r\n":
		return CRLF
	case "\r":
		return CR
	case "\n":
		return LF
	default:
		return None
	}
}

type flags struct {
	crlf, cr, lf bool
}

// set records a sighting and reports whether more than one style has now
// been seen.
func (f *flags) set(k Kind) bool {
	switch k {
	case CRLF:
		f.crlf = true
	case CR:
		f.cr = true
	case LF:
		f.lf = true
	}
	n := 0
	for _, b := range []bool{f.crlf, f.cr, f.lf} {
		if b {
			n++
		}
	}
	return n > 1
}

func (f flags) result() Kind {
	switch {
	case f.crlf:
		return CRLF
	case f.cr:
		return CR
	case f.lf:
		return LF
	default:
		return None
	}
}

// Classify scans at most limit characters of rc and reports the line
// terminator style. It returns Mixed as soon as a second style appears.
// rc is closed before Classify returns. A limit <= 0 uses DefaultScanLimit.
func Classify(rc io.ReadCloser, limit int) (kind Kind, err error) {
	if rc == nil {
		return None, nil
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	// One extra character for the look-ahead after a trailing '\r'.
	bound := int64(limit+1) * utf8.UTFMax
	return scan(bufio.NewReader(io.LimitReader(rc, bound)), limit)
}

// ClassifyString is Classify over an in-memory string.
func ClassifyString(s string, limit int) Kind {
	k, _ := scan(strings.NewReader(s), limit)
	return k
}

func scan(r io.RuneScanner, limit int) (Kind, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	var f flags
	for i := 0; i < limit; i++ {
		c, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return None, err
		}

		switch c {
		case '\r':
			next, _, err := r.ReadRune()
			if err != nil && err != io.EOF {
				return None, err
			}
			if err == nil && next == '\n' {
				i++
				if f.set(CRLF) {
					return Mixed, nil
				}
				continue
			}
			if err == nil {
				_ = r.UnreadRune()
			}
			if f.set(CR) {
				return Mixed, nil
			}
		case '\n':
			if f.set(LF) {
				return Mixed, nil
			}
		}
	}
	return f.result(), nil
}

var breakRE = regexp.MustCompile(`\r\n|\r|\n`)

// Convert replaces every line break in text with the terminator of k.
// Converting to None or Mixed returns text unchanged.
func Convert(text string, k Kind) string {
	sep := k.Separator()
	if sep == "" {
		return text
	}
	return breakRE.ReplaceAllLiteralString(text, sep)
}
