// Package media stores uploaded book covers: it decodes, downsizes and
// re-encodes each upload, computes a BlurHash placeholder and serves the
// result under a public URL.
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var errInvalidName = errors.New("invalid image file name")

// Storage manages image files in a single flat directory.
// Safe for concurrent use.
type Storage struct {
	basePath string
	mu       sync.Mutex
}

// NewStorage creates the directory if needed.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Dir returns the directory the files live in.
func (s *Storage) Dir() string {
	return s.basePath
}

// Create writes a new file and never overwrites. When name is already taken
// the returned error wraps fs.ErrExist.
func (s *Storage) Create(name string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// Delete removes a file. A missing file is not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path returns the full path of name. Names containing a path separator or
// referring to a parent directory are rejected.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", errInvalidName, name)
	}
	return filepath.Join(s.basePath, name), nil
}
