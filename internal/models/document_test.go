package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRepairsNilCollections(t *testing.T) {
	doc := &Document{}
	doc.Normalize()

	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.Posts)
	assert.NotNil(t, doc.Stations)
	assert.NotNil(t, doc.StationClaims)
	assert.NotEmpty(t, doc.Settings.Rules.Categories)
}

func TestNormalizeDropsNullMapEntries(t *testing.T) {
	var doc Document
	raw := []byte(`{"users": {"ghost": null, "s1": {"id": "s1"}}, "stations": {"ST-X": null}}`)
	require.NoError(t, json.Unmarshal(raw, &doc))

	doc.Normalize()
	assert.NotContains(t, doc.Users, "ghost")
	assert.Contains(t, doc.Users, "s1")
	assert.Empty(t, doc.Stations)
}

func TestBaseForFallback(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, 10, rules.BaseFor(FoodFruit))
	assert.Equal(t, FallbackBasePoints, rules.BaseFor("candy"))
}

func TestDefaultDocumentSeedStations(t *testing.T) {
	doc := DefaultDocument(time.Now().UTC())
	require.Len(t, doc.Stations, 2)
	assert.Equal(t, "المناعة", doc.Stations["ST-APPLE"].Answer)
	assert.Equal(t, "8", doc.Stations["ST-WATER"].Answer)
}
