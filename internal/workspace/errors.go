package workspace

import "errors"

var (
	ErrFolderNotFound = errors.New("folder not in workspace")
	ErrFolderExists   = errors.New("folder already in workspace")

	// ErrNotInWorkspace is returned for paths outside every folder.
	ErrNotInWorkspace = errors.New("path not in workspace")
	ErrInvalidPath    = errors.New("invalid path")
)

// PathError records the workspace operation that failed and the file or
// folder it was applied to. Op is one of add, remove, locate,
// set, load or save.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "workspace " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

func pathError(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
