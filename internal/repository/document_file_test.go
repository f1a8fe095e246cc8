package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthy/tracker-api/internal/models"
)

func newFileStore(t *testing.T) (*FileDocumentStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.json")
	store, err := NewFileDocumentStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, _ := newFileStore(t)

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoDocument)
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDocument)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, _ := newFileStore(t)

	doc := models.DefaultDocument(time.Now().UTC())
	doc.Users["s1"] = &models.Student{ID: "s1", Name: "Sara", Class: "5A", Points: 23, Level: 2, Badges: []models.BadgeID{models.BadgeStarter}}
	require.NoError(t, store.Save(context.Background(), doc))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, loaded.Users, "s1")
	assert.Equal(t, 23, loaded.Users["s1"].Points)
	assert.Equal(t, []models.BadgeID{models.BadgeStarter}, loaded.Users["s1"].Badges)
	assert.Len(t, loaded.Stations, 2)
}

func TestFileStoreLoadNormalizesPartialDocument(t *testing.T) {
	store, path := newFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"users": {}}`), 0o644))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded.Posts)
	assert.NotNil(t, loaded.Stations)
	assert.NotNil(t, loaded.StationClaims)
	assert.NotEmpty(t, loaded.Settings.Rules.Categories)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store, _ := newFileStore(t)

	doc := models.DefaultDocument(time.Now().UTC())
	require.NoError(t, store.Save(context.Background(), doc))

	doc.Users["s1"] = &models.Student{ID: "s1", Name: "Sara", Class: "5A"}
	require.NoError(t, store.Save(context.Background(), doc))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, loaded.Users, "s1")
}

func TestFileStoreClear(t *testing.T) {
	store, _ := newFileStore(t)

	require.NoError(t, store.Save(context.Background(), models.DefaultDocument(time.Now().UTC())))
	require.NoError(t, store.Clear(context.Background()))

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrNoDocument)

	// Clearing twice is fine.
	require.NoError(t, store.Clear(context.Background()))
}
