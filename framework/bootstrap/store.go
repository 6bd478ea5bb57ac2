package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDirectoryNotCreated is wrapped by DirectoryNotCreatedError.
var ErrDirectoryNotCreated = errors.New("cache directory was not created")

// DirectoryNotCreatedError reports a cache directory that is still missing
// after a creation attempt.
type DirectoryNotCreatedError struct {
	Path  string
	Cause error
}

func (e *DirectoryNotCreatedError) Error() string {
	return fmt.Sprintf("bootstrap: directory %q was not created: %v", e.Path, e.Cause)
}

func (e *DirectoryNotCreatedError) Unwrap() []error {
	return []error{ErrDirectoryNotCreated, e.Cause}
}

// Store persists the encoded snapshot.
type Store interface {
	Exists(ctx context.Context) (bool, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error

	// Location describes where the snapshot lives, for logs and the CLI.
	Location() string
}

// ── FileStore ─────────────────────────────────────────────────────────────────

// FileName is the base name of the snapshot file inside the cache directory.
const FileName = "app"

// FileStore keeps the snapshot at <dir>/app.<ext>.
type FileStore struct {
	dir  string
	path string
}

// NewFileStore creates a store for the snapshot in dir. The directory is
// created lazily on the first Write.
func NewFileStore(dir, ext string) *FileStore {
	return &FileStore{
		dir:  dir,
		path: filepath.Join(dir, FileName+"."+ext),
	}
}

func (s *FileStore) Location() string { return s.path }

func (s *FileStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) Read(_ context.Context) ([]byte, error) {
	return os.ReadFile(s.path)
}

// Write replaces the snapshot file, creating the cache directory first.
func (s *FileStore) Write(_ context.Context, data []byte) error {
	if err := ensureDir(s.dir); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ensureDir creates path. Another process creating it between the check
// and the mkdir is fine; failing is only reported when the directory is
// still absent afterwards.
func ensureDir(path string) error {
	if isDir(path) {
		return nil
	}
	if err := os.MkdirAll(path, 0o775); err != nil && !isDir(path) {
		return &DirectoryNotCreatedError{Path: path, Cause: err}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var _ Store = (*FileStore)(nil)
