package config

import (
	"errors"
	"fmt"

	"github.com/dshills/encstatus/internal/config/loader"
)

var (
	// ErrTypeMismatch is returned when a merged value cannot be decoded
	// into its setting.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed matches every *SettingError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound is returned when the file passed with WithFile is
	// missing. Missing user and project files are skipped silently.
	ErrFileNotFound = errors.New("config file not found")
)

// ParseError reports a syntax error in a configuration file.
type ParseError = loader.ParseError

// SettingError reports a setting whose value Validate rejects.
type SettingError struct {
	// Key is the dotted setting path, e.g. "detection.max_bytes".
	Key    string
	Reason string
	Value  any
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Key, e.Value, e.Reason)
}

func (e *SettingError) Is(target error) bool { return target == ErrValidationFailed }
