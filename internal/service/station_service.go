package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

// StationService manages the quiz stations. Creation and editing are
// teacher-role operations; students only ever see the question side.
type StationService struct {
	session   documentSession
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStationService constructs the service.
func NewStationService(session documentSession, validate *validator.Validate, logger *zap.Logger) *StationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StationService{session: session, validator: validate, logger: logger}
}

// UpsertStationRequest creates or replaces a station under its code.
type UpsertStationRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Points   int    `json:"points"`
}

// Upsert creates or replaces the station stored under code. Codes are
// case-insensitive and stored upper-cased; points default to 5.
func (s *StationService) Upsert(ctx context.Context, code string, req UpsertStationRequest) (*models.Station, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "station code is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid station payload")
	}

	points := req.Points
	if points <= 0 {
		points = 5
	}

	var station models.Station
	err := s.session.Update(ctx, func(doc *models.Document) error {
		created := time.Now().UTC()
		if existing, ok := doc.Stations[code]; ok {
			created = existing.CreatedAt
		}
		doc.Stations[code] = &models.Station{
			Code:      code,
			Question:  strings.TrimSpace(req.Question),
			Answer:    strings.TrimSpace(req.Answer),
			Points:    points,
			CreatedAt: created,
		}
		station = *doc.Stations[code]
		return nil
	})
	if err != nil && !IsPersistWarning(err) {
		return nil, err
	}
	return &station, err
}

// List returns all stations sorted by code, answers included. Teacher only.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := s.session.View(ctx, func(doc *models.Document) error {
		stations = make([]models.Station, 0, len(doc.Stations))
		for _, st := range doc.Stations {
			stations = append(stations, *st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].Code < stations[j].Code })
	return stations, nil
}

// StationView is the student-facing shape: no reference answer.
type StationView struct {
	Code     string `json:"code"`
	Question string `json:"question"`
	Points   int    `json:"points"`
}

// Get resolves a station for the student claim flow.
func (s *StationService) Get(ctx context.Context, code string) (*StationView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var view *StationView
	err := s.session.View(ctx, func(doc *models.Document) error {
		station, ok := doc.Stations[code]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "station code not found")
		}
		view = &StationView{Code: station.Code, Question: station.Question, Points: station.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
