package models

import (
	"fmt"
	"strings"
	"time"
)

// Student accumulates points, levels and badges for one participant.
// Points are monotonically non-decreasing; badges only grow.
type Student struct {
	ID          string    `json:"id"`
	IdentityKey string    `json:"identity_key"`
	Name        string    `json:"name"`
	Class       string    `json:"class"`
	Section     string    `json:"section"`
	SchoolCode  string    `json:"school_code"`
	Points      int       `json:"points"`
	PostCount   int       `json:"post_count"`
	Level       int       `json:"level"`
	Badges      []BadgeID `json:"badges"`
	LastFood    *FoodType `json:"last_food_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityKeyFor derives the stable login key for a name/class/section/school
// combination. Case-insensitive on every component.
func IdentityKeyFor(name, class, section, schoolCode string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s|%s",
		strings.TrimSpace(name),
		strings.TrimSpace(class),
		strings.TrimSpace(section),
		strings.TrimSpace(schoolCode),
	))
}

// HasBadge reports whether the badge is already owned.
func (s *Student) HasBadge(id BadgeID) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// StudentStats is the read-only aggregate view badge predicates run over.
type StudentStats struct {
	Points            int `json:"points"`
	PostCount         int `json:"post_count"`
	DistinctFoodTypes int `json:"distinct_food_types"`
	CafeteriaPosts    int `json:"cafeteria_posts"`
}
