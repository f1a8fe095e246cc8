package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
	"github.com/smarthealthy/tracker-api/internal/repository"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

// Session owns the in-memory document. All reads and mutations are
// serialized through its mutex; every successful mutation is followed by a
// best-effort persist of the whole document. The in-memory state is the
// source of truth for the process lifetime — a failed persist does not roll
// the mutation back, it is surfaced as ErrPersistFailed so callers can warn
// the user.
type Session struct {
	mu      sync.Mutex
	doc     *models.Document
	store   repository.DocumentStore
	logger  *zap.Logger
	metrics *MetricsService
}

// NewSession loads the stored document, substituting the default document
// when the store is empty or unreadable.
func NewSession(ctx context.Context, store repository.DocumentStore, logger *zap.Logger, metrics *MetricsService) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNoDocument) {
			logger.Warn("stored document unreadable, starting from defaults", zap.Error(err))
		}
		doc = models.DefaultDocument(time.Now().UTC())
	}

	return &Session{doc: doc, store: store, logger: logger, metrics: metrics}, nil
}

// ErrNoChange can be returned by an Update callback to report that the
// document was left untouched; the session then skips the persist step.
var ErrNoChange = errors.New("document unchanged")

// Update runs fn against the document under the session lock. When fn
// returns an error the document is assumed untouched and nothing is
// persisted. Otherwise the document is saved; a save failure is returned as
// ErrPersistFailed after the in-memory mutation stands.
func (s *Session) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return s.persistLocked(ctx)
}

// View runs fn read-only under the session lock. fn must not mutate the
// document or retain references past its return.
func (s *Session) View(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// Replace swaps in a whole new document (bulk import) and persists it.
func (s *Session) Replace(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.Normalize()
	s.doc = doc
	return s.persistLocked(ctx)
}

// Reset clears the store and reinstates the default document. Destructive
// and unconditional.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear document store")
	}
	s.doc = models.DefaultDocument(time.Now().UTC())
	return s.persistLocked(ctx)
}

func (s *Session) persistLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.doc); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPersistFailure()
		}
		s.logger.Error("document persist failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistFailed.Code, appErrors.ErrPersistFailed.Status, appErrors.ErrPersistFailed.Message)
	}
	return nil
}

// IsPersistWarning reports whether err is the surfaced persist failure, i.e.
// the operation itself succeeded in memory.
func IsPersistWarning(err error) bool {
	return appErrors.IsCode(err, appErrors.ErrPersistFailed.Code)
}
