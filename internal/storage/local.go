package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AssetStorage materializes acquired media bytes as a user-visible file
// or object with a declared content type.
type AssetStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (location string, err error)
}

// LocalStorage writes assets beneath a base download directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates the download directory if needed.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("local storage: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes the content to <baseDir>/<name> and returns the path. Names
// containing path separators or traversal segments are rejected. The
// content type is accepted for interface parity; the filename extension
// already carries it for local files.
func (s *LocalStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("local storage: invalid name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.baseDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write asset file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close asset file: %w", err)
	}

	return path, nil
}

var _ AssetStorage = (*LocalStorage)(nil)
