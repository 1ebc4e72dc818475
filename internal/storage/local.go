package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes photos to a public uploads directory on disk.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates a local storage backend rooted at dir.
// Files are served under baseURL (e.g. "/uploads").
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the photo to disk and returns its relative URL.
func (s *LocalStorage) Save(ctx context.Context, contentType string, r io.Reader) (string, error) {
	ext, err := ExtForContentType(contentType)
	if err != nil {
		return "", err
	}

	name := objectName(ext)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadSize)); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes a previously saved photo. Unknown URLs are ignored.
func (s *LocalStorage) Remove(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload file: %w", err)
	}
	return nil
}
