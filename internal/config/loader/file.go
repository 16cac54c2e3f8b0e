package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the syntax of a configuration file.
type Format int

const (
	// FormatTOML is the default format.
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatFor returns YAML for paths ending in .yaml or .yml and TOML for
// everything else.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// File loads one configuration file in the format its extension names.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFile returns a loader for path read through fsys. A nil fsys reads the
// OS file system.
func NewFile(fsys FileSystem, path string) *File {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: FormatFor(path)}
}

// Path returns the file's path.
func (f *File) Path() string { return f.path }

// Format returns the syntax the file is parsed with.
func (f *File) Format() Format { return f.format }

// Load reads and parses the file. A missing file yields nil, nil.
func (f *File) Load() (map[string]any, error) {
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Parse(f.format, f.path, data)
}

// LoadReader parses the file's format from r instead of the file system.
func (f *File) LoadReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return Parse(f.format, f.path, data)
}

// Parse decodes data in format into a generic tree. Syntax errors are
// returned as *ParseError naming source.
func Parse(format Format, source string, data []byte) (map[string]any, error) {
	var tree map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, yamlError(source, err)
		}
		return normalizeYAML(tree), nil
	default:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, tomlError(source, err)
		}
		return tree, nil
	}
}

func tomlError(source string, err error) error {
	perr := &ParseError{Path: source, Format: FormatTOML, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	}
	return perr
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlError(source string, err error) error {
	perr := &ParseError{Path: source, Format: FormatYAML, Message: err.Error(), Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
	}
	return perr
}

// normalizeYAML rewrites map[any]any nodes and int scalars so a YAML tree
// decodes the same way as the equivalent TOML tree.
func normalizeYAML(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeYAML(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	case int:
		return int64(t)
	}
	return v
}

// ParseError reports a syntax error in a configuration file.
type ParseError struct {
	Path   string
	Format Format
	// Line and Column are 1-based, or 0 when the parser did not report them.
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: invalid %s: %s", e.Path, e.Line, e.Column, e.Format, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: invalid %s: %s", e.Path, e.Line, e.Format, e.Message)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Path, e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
