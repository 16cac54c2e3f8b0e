// Package workspace is the reference host's workspace: a set of folders with
// workspace-wide encoding defaults, per-container default encodings and
// persisted per-file encodings.
//
// Each folder keeps its settings in .encstatus/encoding.toml:
//
//	default = "UTF-8"
//
//	[containers]
//	  "legacy/sjis" = "Shift_JIS"
//
//	[files]
//	  "docs/readme.txt" = "ISO-8859-1"
package workspace

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/logging"
	"github.com/dshills/encstatus/internal/vfs"
)

// Workspace is a collection of folders and their encoding settings.
// It is safe for concurrent use.
type Workspace struct {
	mu        sync.RWMutex
	fs        vfs.FS
	logger    *logging.Logger
	folders   []Folder
	settings  map[string]*settings
	encoding  string
	separator lineending.Kind

	onChange []func(ChangeEvent)
}

// Folder is a single root of the workspace.
type Folder struct {
	// URI is the folder path as a file:// URI.
	URI string
	// Path is the absolute local path.
	Path string
	// Name is the display name.
	Name string
}

// ChangeType indicates the kind of settings change.
type ChangeType int

const (
	// ChangeFolderAdded indicates a folder was added.
	ChangeFolderAdded ChangeType = iota
	// ChangeFolderRemoved indicates a folder was removed.
	ChangeFolderRemoved
	// ChangeFileEncoding indicates a file's stored encoding changed.
	ChangeFileEncoding
	// ChangeContainerEncoding indicates a container default changed.
	ChangeContainerEncoding
	// ChangeSettings indicates workspace-wide settings changed or were
	// reloaded.
	ChangeSettings
)

// ChangeEvent describes a workspace change. Path is the file, container or
// folder concerned, empty for workspace-wide changes.
type ChangeEvent struct {
	Type ChangeType
	Path string
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// New creates an empty workspace over fsys with the given defaults.
func New(fsys vfs.FS, cfg config.WorkspaceConfig, opts ...Option) *Workspace {
	w := &Workspace{
		fs:        fsys,
		settings:  make(map[string]*settings),
		encoding:  cfg.DefaultEncoding,
		separator: cfg.LineSeparatorKind(),
	}
	if w.encoding == "" {
		w.encoding = charset.UTF8
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.OrDefault(w.logger).WithComponent("workspace")
	return w
}

// AddFolder adds a folder and loads its settings.
func (w *Workspace) AddFolder(path string) (Folder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, pathError("add", path, ErrInvalidPath)
	}
	s, err := loadSettings(w.fs, abs)
	if err != nil {
		return Folder{}, err
	}

	w.mu.Lock()
	for _, f := range w.folders {
		if f.Path == abs {
			w.mu.Unlock()
			return Folder{}, ErrFolderExists
		}
	}
	folder := Folder{Path: abs, URI: PathToURI(abs), Name: filepath.Base(abs)}
	w.folders = append(w.folders, folder)
	w.settings[abs] = s
	w.mu.Unlock()

	w.logger.Debug("added folder %s", abs)
	w.notify(ChangeEvent{Type: ChangeFolderAdded, Path: abs})
	return folder, nil
}

// RemoveFolder removes a folder. Its settings file is left untouched.
func (w *Workspace) RemoveFolder(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return pathError("remove", path, ErrInvalidPath)
	}

	w.mu.Lock()
	idx := -1
	for i, f := range w.folders {
		if f.Path == abs {
			idx = i
			break
		}
	}
	if idx == -1 {
		w.mu.Unlock()
		return ErrFolderNotFound
	}
	w.folders = append(w.folders[:idx], w.folders[idx+1:]...)
	delete(w.settings, abs)
	w.mu.Unlock()

	w.notify(ChangeEvent{Type: ChangeFolderRemoved, Path: abs})
	return nil
}

// Folders returns the workspace folders.
func (w *Workspace) Folders() []Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Folder, len(w.folders))
	copy(result, w.folders)
	return result
}

// FolderFor returns the innermost folder containing path.
func (w *Workspace) FolderFor(path string) (Folder, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	f, ok := w.folderFor(abs)
	return f, ok
}

func (w *Workspace) folderFor(abs string) (Folder, bool) {
	var best Folder
	found := false
	for _, f := range w.folders {
		if isSubPath(f.Path, abs) && len(f.Path) > len(best.Path) {
			best, found = f, true
		}
	}
	return best, found
}

// Contains reports whether path lies inside a workspace folder.
func (w *Workspace) Contains(path string) bool {
	_, ok := w.FolderFor(path)
	return ok
}

// locate resolves path to its folder settings and folder-relative key.
// Callers hold the lock.
func (w *Workspace) locate(path string) (*settings, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", pathError("locate", path, ErrInvalidPath)
	}
	f, ok := w.folderFor(abs)
	if !ok {
		return nil, "", pathError("locate", abs, ErrNotInWorkspace)
	}
	rel, err := filepath.Rel(f.Path, abs)
	if err != nil {
		return nil, "", pathError("locate", abs, err)
	}
	return w.settings[f.Path], filepath.ToSlash(rel), nil
}

func (w *Workspace) rootOf(path string) string {
	abs, _ := filepath.Abs(path)
	f, _ := w.folderFor(abs)
	return f.Path
}

// ContainerDefaultEncoding returns the default encoding configured for the
// container of the file at path: the nearest enclosing directory with a
// container setting, else the folder default. It returns "" for paths
// outside the workspace or without a setting.
func (w *Workspace) ContainerDefaultEncoding(path string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s, rel, err := w.locate(path)
	if err != nil {
		return ""
	}
	dir := rel
	for dir != "." && dir != "/" {
		dir = parentDir(dir)
		if enc, ok := s.Containers[dir]; ok {
			return enc
		}
	}
	return s.Default
}

func parentDir(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return "."
	}
	return rel[:i]
}

// WorkspaceDefaultEncoding returns the workspace-wide default encoding.
func (w *Workspace) WorkspaceDefaultEncoding() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.encoding
}

// WorkspaceLineSeparator returns the workspace-wide line separator.
func (w *Workspace) WorkspaceLineSeparator() lineending.Kind {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.separator
}

// SetWorkspaceDefaults replaces the workspace-wide defaults.
func (w *Workspace) SetWorkspaceDefaults(enc string, sep lineending.Kind) error {
	if enc != "" && !charset.Supported(enc) {
		return pathError("set", "", &charset.UnknownCharsetError{Name: enc})
	}
	w.mu.Lock()
	if enc != "" {
		w.encoding = enc
	}
	if sep.IsConcrete() {
		w.separator = sep
	}
	w.mu.Unlock()

	w.notify(ChangeEvent{Type: ChangeSettings})
	return nil
}

// FileEncoding returns the encoding stored for the file at path, "" when
// none is stored.
func (w *Workspace) FileEncoding(path string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s, rel, err := w.locate(path)
	if err != nil {
		return ""
	}
	return s.Files[rel]
}

// SetFileEncoding stores enc for the file at path and saves the folder
// settings. An empty enc removes the stored encoding.
func (w *Workspace) SetFileEncoding(path, enc string) error {
	return w.set(path, enc, ChangeFileEncoding, func(s *settings) map[string]string { return s.Files })
}

// SetContainerEncoding stores enc as the default for files below dir. An
// empty enc removes the setting. A dir equal to a folder root sets the
// folder default.
func (w *Workspace) SetContainerEncoding(dir, enc string) error {
	return w.set(dir, enc, ChangeContainerEncoding, func(s *settings) map[string]string { return s.Containers })
}

func (w *Workspace) set(path, enc string, change ChangeType, table func(*settings) map[string]string) error {
	if enc != "" && !charset.Supported(enc) {
		return pathError("set", path, &charset.UnknownCharsetError{Name: enc})
	}

	w.mu.Lock()
	s, rel, err := w.locate(path)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if change == ChangeContainerEncoding && rel == "." {
		s.Default = enc
	} else {
		m := table(s)
		if enc == "" {
			delete(m, rel)
		} else {
			m[rel] = enc
		}
	}
	root := w.rootOf(path)
	err = saveSettings(w.fs, root, s)
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("saving settings for %s: %v", root, err)
		return err
	}
	abs, _ := filepath.Abs(path)
	w.notify(ChangeEvent{Type: change, Path: abs})
	return nil
}

// Reload re-reads the settings of every folder. A folder whose settings
// cannot be read keeps its previous settings and the first error is
// returned.
func (w *Workspace) Reload() error {
	w.mu.Lock()
	var first error
	for _, f := range w.folders {
		s, err := loadSettings(w.fs, f.Path)
		if err != nil {
			w.logger.Warn("reloading settings: %v", err)
			if first == nil {
				first = err
			}
			continue
		}
		w.settings[f.Path] = s
	}
	w.mu.Unlock()

	w.notify(ChangeEvent{Type: ChangeSettings})
	return first
}

// IsSettingsFile reports whether path is the settings file of a folder.
func (w *Workspace) IsSettingsFile(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, f := range w.folders {
		if SettingsPath(f.Path) == abs {
			return true
		}
	}
	return false
}

// OnChange registers a callback for any workspace change.
func (w *Workspace) OnChange(fn func(ChangeEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

func (w *Workspace) notify(ev ChangeEvent) {
	w.mu.RLock()
	callbacks := make([]func(ChangeEvent), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(ev)
	}
}

// PathToURI converts an absolute path to a file:// URI.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// isSubPath checks if child is parent or lies below it.
func isSubPath(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)
	if child == parent {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
