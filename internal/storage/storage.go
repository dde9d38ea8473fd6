package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteError reports that the calendar file could not be written.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Storage handles persistence of the generated calendar file
type Storage struct {
	path string
}

// New creates a Storage for the given output path, expanding a leading "~/".
func New(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("output path is empty")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Storage{
		path: path,
	}, nil
}

// Path returns the resolved output path.
func (s *Storage) Path() string {
	return s.path
}

// Write stores data as the complete contents of the output file. The parent
// directory is created if needed. Failures are returned as *WriteError and leave
// any existing file untouched.
func (s *Storage) Write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: s.path, Op: "creating directory", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".festcal-*.tmp")
	if err != nil {
		return &WriteError{Path: s.path, Op: "creating temp file", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return &WriteError{Path: s.path, Op: "writing temp file", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return &WriteError{Path: s.path, Op: "syncing temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: s.path, Op: "closing temp file", Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &WriteError{Path: s.path, Op: "setting permissions", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &WriteError{Path: s.path, Op: "renaming temp file", Err: err}
	}

	return nil
}
