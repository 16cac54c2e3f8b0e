package charset

import (
	"errors"
	"fmt"
)

// ErrUnknownCharset is the sentinel matched by every UnknownCharsetError.
var ErrUnknownCharset = errors.New("unknown charset")

// ErrBOMUnsupported is returned when a byte-order mark is requested for an
// encoding outside the UTF-8/UTF-16 family.
var ErrBOMUnsupported = errors.New("byte-order mark not supported for encoding")

// UnknownCharsetError reports a charset name that could not be resolved.
type UnknownCharsetError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *UnknownCharsetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unknown charset %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("unknown charset %q", e.Name)
}

// Unwrap returns the underlying lookup error.
func (e *UnknownCharsetError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnknownCharset.
func (e *UnknownCharsetError) Is(target error) bool {
	return target == ErrUnknownCharset
}

// IsUnknownCharset reports whether err is, or wraps, an UnknownCharsetError.
func IsUnknownCharset(err error) bool {
	return errors.Is(err, ErrUnknownCharset)
}
