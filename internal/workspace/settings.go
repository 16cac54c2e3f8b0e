package workspace

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/encstatus/internal/vfs"
)

// SettingsDir is the per-folder directory holding encoding settings.
const SettingsDir = ".encstatus"

// SettingsFile is the settings file name inside SettingsDir.
const SettingsFile = "encoding.toml"

// settings is the on-disk form of a folder's encoding settings. Map keys are
// slash-separated paths relative to the folder; "." is the folder itself.
type settings struct {
	Default    string            `toml:"default,omitempty"`
	Containers map[string]string `toml:"containers,omitempty"`
	Files      map[string]string `toml:"files,omitempty"`
}

func newSettings() *settings {
	return &settings{
		Containers: make(map[string]string),
		Files:      make(map[string]string),
	}
}

// SettingsPath returns the settings file of the folder at root.
func SettingsPath(root string) string {
	return filepath.Join(root, SettingsDir, SettingsFile)
}

// loadSettings reads the folder's settings. A missing file yields empty
// settings.
func loadSettings(fsys vfs.FS, root string) (*settings, error) {
	p := SettingsPath(root)
	data, err := fsys.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newSettings(), nil
		}
		return nil, pathError("load", p, err)
	}

	s := newSettings()
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(s); err != nil {
		return nil, pathError("load", p, err)
	}
	if s.Containers == nil {
		s.Containers = make(map[string]string)
	}
	if s.Files == nil {
		s.Files = make(map[string]string)
	}
	return s, nil
}

func saveSettings(fsys vfs.FS, root string, s *settings) error {
	p := SettingsPath(root)
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return pathError("save", p, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return pathError("save", p, err)
	}
	if err := fsys.WriteFile(p, buf.Bytes(), vfs.DefaultPerm); err != nil {
		return pathError("save", p, err)
	}
	return nil
}
