package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

type memoryCacheRepo struct {
	values  map[string][]byte
	sets    int
	deletes int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	m.deletes++
	delete(m.values, key)
	return nil
}

func seedStudents(t *testing.T, session *Session) {
	t.Helper()
	err := session.Update(context.Background(), func(doc *models.Document) error {
		doc.Users["s2"] = &models.Student{ID: "s2", Name: "Omar", Class: "6B", Points: 80, Level: 3, PostCount: 7, Badges: []models.BadgeID{models.BadgeStarter}}
		doc.Users["s3"] = &models.Student{ID: "s3", Name: "Lina", Class: "5A", Points: 80, Level: 3, PostCount: 6, Badges: []models.BadgeID{}}
		doc.Users["s1"].Points = 120
		doc.Users["s1"].Level = 4
		return nil
	})
	require.NoError(t, err)
}

func TestLeaderboardOrdering(t *testing.T) {
	session, _ := newTestSession(t)
	seedStudents(t, session)
	svc := NewLeaderboardService(session, nil, zap.NewNop())

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Points descending, names ascending on the 80-point tie.
	assert.Equal(t, "Sara", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Lina", entries[1].Name)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "Omar", entries[2].Name)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, 1, entries[2].BadgeCount)
}

func TestLeaderboardUsesCache(t *testing.T) {
	session, _ := newTestSession(t)
	seedStudents(t, session)

	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewLeaderboardService(session, cache, zap.NewNop())

	_, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.sets)

	// Second read comes from cache; no additional set.
	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 1, repo.sets)
}

func TestLeaderboardInvalidation(t *testing.T) {
	session, _ := newTestSession(t)
	seedStudents(t, session)

	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewLeaderboardService(session, cache, zap.NewNop())

	_, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)

	err = session.Update(context.Background(), func(doc *models.Document) error {
		doc.Users["s3"].Points = 500
		return nil
	})
	require.NoError(t, err)
	svc.Invalidate(context.Background())
	assert.Equal(t, 1, repo.deletes)

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lina", entries[0].Name)
	assert.Equal(t, 500, entries[0].Points)
}

func TestLeaderboardWithoutCache(t *testing.T) {
	session, _ := newTestSession(t)
	svc := NewLeaderboardService(session, nil, zap.NewNop())

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
