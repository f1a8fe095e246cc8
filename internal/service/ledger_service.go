package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

type documentSession interface {
	Update(ctx context.Context, fn func(doc *models.Document) error) error
	View(ctx context.Context, fn func(doc *models.Document) error) error
}

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// LedgerService owns the reward rules: converting student actions into point
// deltas, level derivation, badge unlocking, and the one-claim-per-station-
// per-day invariant.
type LedgerService struct {
	session     documentSession
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	leaderboard leaderboardInvalidator
}

// NewLedgerService constructs the service. metrics and leaderboard may be nil.
func NewLedgerService(session documentSession, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, leaderboard leaderboardInvalidator) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{session: session, validator: validate, logger: logger, metrics: metrics, leaderboard: leaderboard}
}

// SubmitFoodRequest describes one photo-documented healthy choice.
type SubmitFoodRequest struct {
	FoodType      string `json:"food_type" validate:"required"`
	FromCafeteria bool   `json:"from_cafeteria"`
	Note          string `json:"note"`
	ImageRef      string `json:"image_ref" validate:"required"`
}

// SubmitFoodResponse returns the created post and the student's new totals.
type SubmitFoodResponse struct {
	Post        models.FoodPost  `json:"post"`
	TotalPoints int              `json:"total_points"`
	Level       int              `json:"level"`
	NewBadges   []models.BadgeID `json:"new_badges,omitempty"`
}

// SubmitFood records a food post: base points by category, variety bonus
// when the category differs from the student's previous one, level and badge
// refresh. The awarded points are frozen on the post permanently.
//
// The returned error may be a persist warning (IsPersistWarning) in which
// case the submission itself succeeded.
func (s *LedgerService) SubmitFood(ctx context.Context, studentID string, req SubmitFoodRequest) (*SubmitFoodResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	foodType := models.FoodType(strings.ToLower(strings.TrimSpace(req.FoodType)))
	if !models.ValidFoodType(foodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown food category")
	}

	var resp *SubmitFoodResponse
	err := s.session.Update(ctx, func(doc *models.Document) error {
		student, ok := doc.Users[studentID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}

		base := doc.Settings.Rules.BaseFor(foodType)
		bonus := 0
		if student.LastFood != nil && *student.LastFood != foodType {
			bonus = doc.Settings.Rules.VarietyBonus
		}
		total := base + bonus

		post := models.FoodPost{
			ID:            uuid.NewString(),
			StudentID:     student.ID,
			CreatedAt:     time.Now().UTC(),
			FoodType:      foodType,
			FromCafeteria: models.CafeteriaFlag(req.FromCafeteria),
			Note:          strings.TrimSpace(req.Note),
			ImageRef:      req.ImageRef,
			PointsAwarded: total,
		}
		doc.Posts = append([]models.FoodPost{post}, doc.Posts...)

		student.Points += total
		student.PostCount++
		last := foodType
		student.LastFood = &last
		student.Level = ComputeLevel(student.Points)
		newBadges := refreshBadges(doc, student)

		resp = &SubmitFoodResponse{
			Post:        post,
			TotalPoints: student.Points,
			Level:       student.Level,
			NewBadges:   newBadges,
		}
		return nil
	})
	if err != nil && !IsPersistWarning(err) {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordFoodPost(string(foodType))
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return resp, err
}

// ClaimStation runs one claim attempt through the station state machine:
// unknown code, already claimed today, incorrect answer (retryable, no
// mutation) or correct (points awarded, claim recorded). now supplies the
// calendar day used for deduplication.
func (s *LedgerService) ClaimStation(ctx context.Context, studentID, code, answer string, now time.Time) (*models.ClaimResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "station code is required")
	}

	var result *models.ClaimResult
	err := s.session.Update(ctx, func(doc *models.Document) error {
		student, ok := doc.Users[studentID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}

		station, ok := doc.Stations[code]
		if !ok {
			result = &models.ClaimResult{Outcome: models.ClaimNotFound, StationCode: code}
			return ErrNoChange
		}

		day := DayKey(now)
		for _, claim := range doc.StationClaims {
			if claim.StudentID == student.ID && claim.StationCode == code && claim.DayKey == day {
				result = &models.ClaimResult{Outcome: models.ClaimAlreadyClaimed, StationCode: code}
				return ErrNoChange
			}
		}

		if !strings.Contains(NormalizeAnswer(answer), NormalizeAnswer(station.Answer)) {
			result = &models.ClaimResult{Outcome: models.ClaimIncorrect, StationCode: code}
			return ErrNoChange
		}

		student.Points += station.Points
		student.Level = ComputeLevel(student.Points)
		newBadges := refreshBadges(doc, student)
		doc.StationClaims = append(doc.StationClaims, models.StationClaim{
			StudentID:   student.ID,
			StationCode: code,
			DayKey:      day,
		})

		result = &models.ClaimResult{
			Outcome:       models.ClaimCorrect,
			StationCode:   code,
			PointsAwarded: station.Points,
			TotalPoints:   student.Points,
			Level:         student.Level,
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil && !IsPersistWarning(err) {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordStationClaim(string(result.Outcome))
	}
	if result.Outcome == models.ClaimCorrect && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return result, err
}

// StudentProfile aggregates everything the profile screen shows.
type StudentProfile struct {
	Student models.Student      `json:"student"`
	Stats   models.StudentStats `json:"stats"`
	Badges  []BadgeStatus       `json:"badges"`
}

// BadgeStatus pairs a badge variant with its ownership state.
type BadgeStatus struct {
	ID    models.BadgeID `json:"id"`
	Name  string         `json:"name"`
	Icon  string         `json:"icon"`
	Owned bool           `json:"owned"`
}

// Profile returns the student's current totals and badge wall.
func (s *LedgerService) Profile(ctx context.Context, studentID string) (*StudentProfile, error) {
	var profile *StudentProfile
	err := s.session.View(ctx, func(doc *models.Document) error {
		student, ok := doc.Users[studentID]
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}

		stats := statsFor(doc, student)
		badges := make([]BadgeStatus, 0, len(models.Badges()))
		for _, b := range models.Badges() {
			badges = append(badges, BadgeStatus{ID: b.ID, Name: b.Name, Icon: b.Icon, Owned: student.HasBadge(b.ID)})
		}

		copied := *student
		copied.Badges = append([]models.BadgeID(nil), student.Badges...)
		profile = &StudentProfile{Student: copied, Stats: stats, Badges: badges}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// History returns the student's posts, newest first, paginated.
func (s *LedgerService) History(ctx context.Context, studentID string, page, pageSize int) ([]models.FoodPost, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var posts []models.FoodPost
	total := 0
	err := s.session.View(ctx, func(doc *models.Document) error {
		if _, ok := doc.Users[studentID]; !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		mine := make([]models.FoodPost, 0)
		for _, post := range doc.Posts {
			if post.StudentID == studentID {
				mine = append(mine, post)
			}
		}
		total = len(mine)
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		posts = append([]models.FoodPost(nil), mine[start:end]...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return posts, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ComputeLevel derives the level tier from cumulative points. Pure and
// total: any value below 20, including negatives, lands on level 1.
func ComputeLevel(points int) int {
	switch {
	case points >= 300:
		return 6
	case points >= 200:
		return 5
	case points >= 120:
		return 4
	case points >= 60:
		return 3
	case points >= 20:
		return 2
	default:
		return 1
	}
}

// DayKey renders the calendar date of t in its own location. Claims made at
// 23:59 and 00:01 the next day fall on different keys.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NormalizeAnswer prepares free-text answers for lenient comparison: trim,
// lower-case, collapse whitespace runs, and fold Arabic letter variants
// (alef forms to bare alef, teh marbuta to heh, alef maqsura to yeh).
// The folding set is fixed; widening it would change match behavior.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.Map(func(r rune) rune {
		switch r {
		case 'أ', 'إ', 'آ':
			return 'ا'
		case 'ة':
			return 'ه'
		case 'ى':
			return 'ي'
		default:
			return r
		}
	}, s)
}

// statsFor builds the read-only aggregate view badge rules run over.
func statsFor(doc *models.Document, student *models.Student) models.StudentStats {
	types := map[models.FoodType]struct{}{}
	cafeteria := 0
	for _, post := range doc.Posts {
		if post.StudentID != student.ID {
			continue
		}
		types[post.FoodType] = struct{}{}
		if bool(post.FromCafeteria) {
			cafeteria++
		}
	}
	return models.StudentStats{
		Points:            student.Points,
		PostCount:         student.PostCount,
		DistinctFoodTypes: len(types),
		CafeteriaPosts:    cafeteria,
	}
}

// refreshBadges evaluates the badge table in declaration order and unions
// newly satisfied rules into the student's set. Owned badges are never
// re-evaluated, so the set only grows; calling twice without an intervening
// state change awards nothing.
func refreshBadges(doc *models.Document, student *models.Student) []models.BadgeID {
	stats := statsFor(doc, student)
	var awarded []models.BadgeID
	for _, badge := range models.Badges() {
		if student.HasBadge(badge.ID) {
			continue
		}
		if badge.Earned(stats) {
			student.Badges = append(student.Badges, badge.ID)
			awarded = append(awarded, badge.ID)
		}
	}
	return awarded
}
