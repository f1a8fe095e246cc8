package models

import "time"

// Document is the whole application state: one school, one program run.
// It is held in memory and mirrored to the document store after every
// mutation.
type Document struct {
	Settings      Settings            `json:"settings"`
	Users         map[string]*Student `json:"users"`
	Posts         []FoodPost          `json:"posts"`
	Stations      map[string]*Station `json:"stations"`
	StationClaims []StationClaim      `json:"station_claims"`
}

// Settings carries the configurable program rules.
type Settings struct {
	Rules PointsRules `json:"rules"`
}

// PointsRules maps food categories and bonus conditions to point values.
type PointsRules struct {
	Categories   map[FoodType]int `json:"categories"`
	VarietyBonus int              `json:"variety_bonus"`
}

// FallbackBasePoints is awarded for categories missing from the rules map.
const FallbackBasePoints = 5

// BaseFor returns the base points for a category, degrading to the fallback
// for categories the rules map does not know.
func (r PointsRules) BaseFor(t FoodType) int {
	if v, ok := r.Categories[t]; ok {
		return v
	}
	return FallbackBasePoints
}

// DefaultRules returns the stock point rules.
func DefaultRules() PointsRules {
	return PointsRules{
		Categories: map[FoodType]int{
			FoodFruit:    10,
			FoodVeg:      10,
			FoodWater:    8,
			FoodNuts:     9,
			FoodSandwich: 12,
			FoodDairy:    9,
			FoodOther:    7,
		},
		VarietyBonus: 5,
	}
}

// DefaultDocument builds the seed state: stock rules, two seed stations,
// no users, posts or claims.
func DefaultDocument(now time.Time) *Document {
	return &Document{
		Settings: Settings{Rules: DefaultRules()},
		Users:    map[string]*Student{},
		Posts:    []FoodPost{},
		Stations: map[string]*Station{
			"ST-APPLE": {
				Code:      "ST-APPLE",
				Question:  "ما فائدة التفاح للجسم؟",
				Answer:    "المناعة",
				Points:    5,
				CreatedAt: now,
			},
			"ST-WATER": {
				Code:      "ST-WATER",
				Question:  "كم كوب ماء يُنصح به تقريبًا يوميًا؟",
				Answer:    "8",
				Points:    5,
				CreatedAt: now,
			},
		},
		StationClaims: []StationClaim{},
	}
}

// Normalize repairs nil collections after decoding a partial document and
// drops null map entries so no code path ever holds a nil user or station.
func (d *Document) Normalize() {
	if d.Settings.Rules.Categories == nil {
		d.Settings.Rules = DefaultRules()
	}
	if d.Users == nil {
		d.Users = map[string]*Student{}
	}
	for id, u := range d.Users {
		if u == nil {
			delete(d.Users, id)
		}
	}
	if d.Posts == nil {
		d.Posts = []FoodPost{}
	}
	if d.Stations == nil {
		d.Stations = map[string]*Station{}
	}
	for code, st := range d.Stations {
		if st == nil {
			delete(d.Stations, code)
		}
	}
	if d.StationClaims == nil {
		d.StationClaims = []StationClaim{}
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
