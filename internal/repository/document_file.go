package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smarthealthy/tracker-api/internal/models"
)

// FileDocumentStore keeps the document in a single JSON file. Writes go
// through a temp file and rename so a crash never leaves a half-written
// document behind.
type FileDocumentStore struct {
	path string
}

// NewFileDocumentStore ensures the parent directory exists.
func NewFileDocumentStore(path string) (*FileDocumentStore, error) {
	if path == "" {
		path = "./data/tracker.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileDocumentStore{path: path}, nil
}

func (s *FileDocumentStore) Load(ctx context.Context) (*models.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("read document file: %w", err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode document file: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *FileDocumentStore) Save(ctx context.Context, doc *models.Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tracker-*.json")
	if err != nil {
		return fmt.Errorf("create temp document file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp document file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace document file: %w", err)
	}
	return nil
}

func (s *FileDocumentStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}
