package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/export"
)

type sessionReplacer interface {
	documentSession
	Replace(ctx context.Context, doc *models.Document) error
	Reset(ctx context.Context) error
}

type photoCleaner interface {
	RemoveAll() error
}

// TransferService covers the teacher's bulk operations: export the whole
// document, import one wholesale, reset to defaults, and render the progress
// report.
type TransferService struct {
	session     sessionReplacer
	leaderboard *LeaderboardService
	photos      photoCleaner
	logger      *zap.Logger
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewTransferService constructs the service. photos may be nil.
func NewTransferService(session sessionReplacer, leaderboard *LeaderboardService, photos photoCleaner, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		session:     session,
		leaderboard: leaderboard,
		photos:      photos,
		logger:      logger,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

// Export serializes the live document verbatim.
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := s.session.View(ctx, func(doc *models.Document) error {
		encoded, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode document")
		}
		raw = encoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// importDocument shadows Document with presence-aware fields so missing keys
// fall back to defaults while wrong types fail decoding.
type importDocument struct {
	Settings      *models.Settings           `json:"settings"`
	Users         map[string]*models.Student `json:"users"`
	Posts         *[]models.FoodPost         `json:"posts"`
	Stations      map[string]*models.Station `json:"stations"`
	StationClaims *[]models.StationClaim     `json:"station_claims"`
}

// Import replaces the live document wholesale. The payload must carry the
// users, posts and stations keys; missing optional keys fall back to
// defaults, and any shape mismatch rejects the whole import — there is no
// partial merge.
func (s *TransferService) Import(ctx context.Context, raw []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidDocument.Code, appErrors.ErrInvalidDocument.Status, "document is not a JSON object")
	}
	for _, required := range []string{"users", "posts", "stations"} {
		if _, ok := keys[required]; !ok {
			return appErrors.Clone(appErrors.ErrInvalidDocument, fmt.Sprintf("document is missing the %q key", required))
		}
	}

	var incoming importDocument
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidDocument.Code, appErrors.ErrInvalidDocument.Status, "document fields have the wrong shape")
	}
	for id, u := range incoming.Users {
		if u == nil {
			return appErrors.Clone(appErrors.ErrInvalidDocument, fmt.Sprintf("user %q is null", id))
		}
	}
	for code, st := range incoming.Stations {
		if st == nil {
			return appErrors.Clone(appErrors.ErrInvalidDocument, fmt.Sprintf("station %q is null", code))
		}
	}

	doc := models.DefaultDocument(time.Now().UTC())
	if incoming.Settings != nil {
		doc.Settings = *incoming.Settings
	}
	if incoming.Users != nil {
		doc.Users = incoming.Users
	}
	if incoming.Posts != nil {
		doc.Posts = *incoming.Posts
	}
	if incoming.Stations != nil {
		doc.Stations = incoming.Stations
	}
	if incoming.StationClaims != nil {
		doc.StationClaims = *incoming.StationClaims
	}
	doc.Normalize()

	// Levels are derived state; recompute so imported totals stay coherent.
	for _, u := range doc.Users {
		u.Level = ComputeLevel(u.Points)
		if u.Badges == nil {
			u.Badges = []models.BadgeID{}
		}
	}

	err := s.session.Replace(ctx, doc)
	if err != nil && !IsPersistWarning(err) {
		return err
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return err
}

// Reset wipes everything: stored document, photos, cache. Destructive and
// unconditional once the caller has confirmed.
func (s *TransferService) Reset(ctx context.Context) error {
	if err := s.session.Reset(ctx); err != nil && !IsPersistWarning(err) {
		return err
	}
	if s.photos != nil {
		if err := s.photos.RemoveAll(); err != nil {
			s.logger.Warn("failed to clear stored photos", zap.Error(err))
		}
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return nil
}

// Report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// Report renders the progress report (rank, student, class, points, posts,
// level, badges) in the requested format and returns the bytes with a
// suggested filename.
func (s *TransferService) Report(ctx context.Context, format string) ([]byte, string, error) {
	entries, err := s.leaderboard.Leaderboard(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Title:   "Healthy Choices Progress Report",
		Columns: []string{"Rank", "Name", "Class", "Points", "Posts", "Level", "Badges"},
	}
	for _, e := range entries {
		dataset.Rows = append(dataset.Rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.Name,
			fmt.Sprintf("%s %s", e.Class, e.Section),
			fmt.Sprintf("%d", e.Points),
			fmt.Sprintf("%d", e.PostCount),
			fmt.Sprintf("%d", e.Level),
			fmt.Sprintf("%d", e.BadgeCount),
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format {
	case ReportFormatPDF:
		raw, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return raw, fmt.Sprintf("progress-report-%s.pdf", stamp), nil
	case ReportFormatCSV, "":
		raw, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return raw, fmt.Sprintf("progress-report-%s.csv", stamp), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
