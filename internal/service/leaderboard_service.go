package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
)

const leaderboardCacheKey = "tracker:leaderboard"

// LeaderboardEntry is one ranked row of the school-wide board.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Section    string `json:"section"`
	Points     int    `json:"points"`
	Level      int    `json:"level"`
	PostCount  int    `json:"post_count"`
	BadgeCount int    `json:"badge_count"`
}

// LeaderboardService ranks all students by points. The board is the one
// read every screen shows, so it is cached; every ledger mutation
// invalidates it.
type LeaderboardService struct {
	session documentSession
	cache   *CacheService
	logger  *zap.Logger
}

// NewLeaderboardService constructs the service. cache may be nil.
func NewLeaderboardService(session documentSession, cache *CacheService, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{session: session, cache: cache, logger: logger}
}

// Leaderboard returns every student ranked by points descending, names
// ascending on ties. Equal point totals share standings order but not rank
// numbers; ranks are positional.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if s.cache.Get(ctx, leaderboardCacheKey, &entries) {
		return entries, nil
	}

	err := s.session.View(ctx, func(doc *models.Document) error {
		entries = make([]LeaderboardEntry, 0, len(doc.Users))
		for _, u := range doc.Users {
			entries = append(entries, LeaderboardEntry{
				StudentID:  u.ID,
				Name:       u.Name,
				Class:      u.Class,
				Section:    u.Section,
				Points:     u.Points,
				Level:      u.Level,
				PostCount:  u.PostCount,
				BadgeCount: len(u.Badges),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.cache.Set(ctx, leaderboardCacheKey, entries)
	return entries, nil
}

// Invalidate drops the cached board. Called after every ledger mutation.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, leaderboardCacheKey)
}
