package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityKeyFor(t *testing.T) {
	a := IdentityKeyFor(" Sara ", "5A", "1", "SCH-1")
	b := IdentityKeyFor("sara", "5a", "1", "sch-1")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, IdentityKeyFor("Sara", "5A", "2", "SCH-1"))
}

func TestHasBadge(t *testing.T) {
	s := &Student{Badges: []BadgeID{BadgeStarter}}
	assert.True(t, s.HasBadge(BadgeStarter))
	assert.False(t, s.HasBadge(BadgePoints50))
}

func TestBadgeByID(t *testing.T) {
	badge, ok := BadgeByID(BadgeVariety3)
	assert.True(t, ok)
	assert.Equal(t, BadgeVariety3, badge.ID)

	_, ok = BadgeByID("unknown")
	assert.False(t, ok)
}
