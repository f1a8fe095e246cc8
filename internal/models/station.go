package models

import "time"

// Station is a quiz checkpoint identified by a code, awarding points for one
// correct free-text answer per student per calendar day.
type Station struct {
	Code      string    `json:"code"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// StationClaim records that a student redeemed a station on a given day.
// The (StudentID, StationCode, DayKey) triple is unique across all claims.
type StationClaim struct {
	StudentID   string `json:"student_id"`
	StationCode string `json:"station_code"`
	DayKey      string `json:"day_key"`
}

// ClaimOutcome classifies the result of a station claim attempt.
type ClaimOutcome string

const (
	ClaimCorrect        ClaimOutcome = "correct"
	ClaimIncorrect      ClaimOutcome = "incorrect"
	ClaimAlreadyClaimed ClaimOutcome = "already_claimed_today"
	ClaimNotFound       ClaimOutcome = "not_found"
)

// ClaimResult is returned by every claim attempt. PointsAwarded is non-zero
// only for the correct outcome.
type ClaimResult struct {
	Outcome       ClaimOutcome `json:"outcome"`
	StationCode   string       `json:"station_code"`
	PointsAwarded int          `json:"points_awarded"`
	TotalPoints   int          `json:"total_points"`
	Level         int          `json:"level"`
	NewBadges     []BadgeID    `json:"new_badges,omitempty"`
}
