package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ensure LocalLogoStorage implements LogoStorage
var _ LogoStorage = (*LocalLogoStorage)(nil)

// LocalLogoStorage keeps logos on the local filesystem. Suitable for
// development and single-node deployments; the download URL is a static path
// the HTTP layer serves from the same directory.
type LocalLogoStorage struct {
	root    string
	baseURL string
}

// NewLocalLogoStorage creates filesystem-backed logo storage rooted at dir
func NewLocalLogoStorage(dir, baseURL string) (*LocalLogoStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalLogoStorage{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// path resolves a key inside the root, rejecting traversal outside it
func (s *LocalLogoStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	full := filepath.Join(s.root, filepath.FromSlash(key))
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage key %q escapes the storage root", key)
	}
	return full, nil
}

// Upload stores the logo bytes under the given key
func (s *LocalLogoStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create storage subdirectory: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

// Delete removes a stored logo
func (s *LocalLogoStorage) Delete(_ context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

// Exists checks whether a logo is stored under the key
func (s *LocalLogoStorage) Exists(_ context.Context, key string) (bool, error) {
	full, err := s.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DownloadURL returns the static path the file is served from. Local files
// never expire, so the returned time is the zero value.
func (s *LocalLogoStorage) DownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	return s.baseURL + "/" + key, time.Time{}, nil
}

// Root returns the directory files are stored under
func (s *LocalLogoStorage) Root() string {
	return s.root
}
