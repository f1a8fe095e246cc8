package repository

import (
	"context"
	"errors"

	"github.com/smarthealthy/tracker-api/internal/models"
)

// ErrNoDocument signals that the store holds no document yet. Callers
// substitute the default document.
var ErrNoDocument = errors.New("no document stored")

// DocumentStore persists the whole application state as one blob.
type DocumentStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	// Clear removes the stored document entirely. Used by the reset flow.
	Clear(ctx context.Context) error
}
