package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the slice of OS file operations the adapters rely on.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	CreateFile(path string) (io.WriteCloser, error)
	CreateTemp(dir, pattern string) (*os.File, error)
	RemoveFile(path string) error
	FileExists(path string) (bool, error)
}

// OSFileSystem implements the FileSystem interface using OS file operations
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat follows symlinks, like a plain open would.
func (f *OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Open opens an existing file for binary reading
func (f *OSFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// CreateFile creates a new file, creating parent directories as needed
func (f *OSFileSystem) CreateFile(path string) (io.WriteCloser, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return os.Create(path)
}

// CreateTemp creates a uniquely named file in dir. An empty dir means os.TempDir.
func (f *OSFileSystem) CreateTemp(dir, pattern string) (*os.File, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	return os.CreateTemp(dir, pattern)
}

// RemoveFile deletes a file; a file that is already gone is not an error.
func (f *OSFileSystem) RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// FileExists checks if a file exists
func (f *OSFileSystem) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
