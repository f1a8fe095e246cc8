package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// FoodType enumerates the healthy-choice categories.
type FoodType string

const (
	FoodFruit    FoodType = "fruit"
	FoodVeg      FoodType = "veg"
	FoodWater    FoodType = "water"
	FoodNuts     FoodType = "nuts"
	FoodSandwich FoodType = "sandwich"
	FoodDairy    FoodType = "dairy"
	FoodOther    FoodType = "other"
)

// FoodTypes lists every category in a fixed order.
func FoodTypes() []FoodType {
	return []FoodType{FoodFruit, FoodVeg, FoodWater, FoodNuts, FoodSandwich, FoodDairy, FoodOther}
}

// ValidFoodType reports whether t is one of the known categories.
func ValidFoodType(t FoodType) bool {
	for _, known := range FoodTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// CafeteriaFlag is a bool that also decodes the legacy "yes"/"no" string
// form found in exported documents from older deployments.
type CafeteriaFlag bool

func (f *CafeteriaFlag) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("true")) {
		*f = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = CafeteriaFlag(strings.EqualFold(strings.TrimSpace(s), "yes"))
		return nil
	}
	*f = false
	return nil
}

// FoodPost is one documented healthy choice. Immutable once created;
// PointsAwarded is frozen at creation and never recomputed.
type FoodPost struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"student_id"`
	CreatedAt     time.Time     `json:"created_at"`
	FoodType      FoodType      `json:"food_type"`
	FromCafeteria CafeteriaFlag `json:"from_cafeteria"`
	Note          string        `json:"note"`
	ImageRef      string        `json:"image_ref"`
	PointsAwarded int           `json:"points_awarded"`
}
