package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoStore persists submission photos on disk under a base directory and
// hands back opaque references for the document to carry.
type PhotoStore struct {
	baseDir string
}

// NewPhotoStore ensures the base directory exists and returns a handle.
func NewPhotoStore(baseDir string) (*PhotoStore, error) {
	if baseDir == "" {
		baseDir = "./data/photos"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create photos directory: %w", err)
	}
	return &PhotoStore{baseDir: baseDir}, nil
}

// Save copies the uploaded image into the store and returns its reference.
// The extension is taken from the original filename; anything unexpected
// degrades to .bin.
func (s *PhotoStore) Save(originalName string, r io.Reader) (string, error) {
	ref := uuid.NewString() + safeExt(originalName)
	path := filepath.Join(s.baseDir, ref)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write photo: %w", err)
	}
	return ref, nil
}

// Open returns a read-only handle for a stored photo.
func (s *PhotoStore) Open(ref string) (*os.File, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	return file, nil
}

// Delete removes a stored photo if present.
func (s *PhotoStore) Delete(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// RemoveAll clears every stored photo. Used by the full reset flow.
func (s *PhotoStore) RemoveAll() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read photos directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			return fmt.Errorf("delete photo %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *PhotoStore) resolve(ref string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(ref))
	if cleaned == "." || cleaned == ".." || cleaned != ref {
		return "", fmt.Errorf("invalid photo reference %q", ref)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	default:
		return ".bin"
	}
}
