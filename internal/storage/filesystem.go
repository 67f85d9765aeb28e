package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"itdash/internal/dash"
)

// FileSystemStorage stores each key as a file in a directory:
//
//	<dir>/
//	  itdash.identity
//	  itdash.dashboard.widgets
type FileSystemStorage struct {
	dir string
}

// NewFileSystemStorage creates a filesystem storage rooted at dir.
func NewFileSystemStorage(dir string) (*FileSystemStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileSystemStorage{dir: dir}, nil
}

func (s *FileSystemStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes value using an atomic write (temp file + rename).
func (s *FileSystemStorage) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(value); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, key)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemStorage) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; every call opens and closes its own file.
func (s *FileSystemStorage) Close() error {
	return nil
}

// Compile-time check that FileSystemStorage implements dash.Storage interface
var _ dash.Storage = (*FileSystemStorage)(nil)
