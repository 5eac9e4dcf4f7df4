// Package models defines the data structures for the donor matching engine.
package models

// Default scoring weights applied when the caller supplies no override.
const (
	DefaultBloodGroupWeight   = 0.40
	DefaultProximityWeight    = 0.25
	DefaultLastDonationWeight = 0.20
	DefaultReliabilityWeight  = 0.15
)

// SearchCriteria describes one donor search: the blood group needed and
// where the blood is needed. Location, city and pincode are all optional.
type SearchCriteria struct {
	BloodGroup BloodGroup  `json:"blood_group"`
	Location   *Coordinate `json:"location,omitempty"`
	City       string      `json:"city,omitempty"`
	Pincode    string      `json:"pincode,omitempty"`
}

// Weights overrides the default scoring weights. Fields are pointers so an
// explicit zero is distinguishable from "not supplied"; any nil field falls
// back to its default independently of the others.
type Weights struct {
	BloodGroup   *float64 `json:"blood_group,omitempty"`
	Proximity    *float64 `json:"proximity,omitempty"`
	LastDonation *float64 `json:"last_donation,omitempty"`
	Reliability  *float64 `json:"reliability,omitempty"`
}

// SubScores holds the four component scores, each rounded to the nearest
// integer for display. The weighted total uses the unrounded values.
type SubScores struct {
	BloodGroup   int `json:"blood_group"`
	Proximity    int `json:"proximity"`
	LastDonation int `json:"last_donation"`
	Reliability  int `json:"reliability"`
}

// ScoreBreakdown is the per-candidate scoring output.
type ScoreBreakdown struct {
	TotalScore float64   `json:"total_score"`
	DistanceKm *float64  `json:"distance_km,omitempty"`
	Scores     SubScores `json:"scores"`
}

// MatchResult pairs a candidate donor with their score breakdown. The donor
// value is a copy; input records are never written to.
type MatchResult struct {
	Donor     Donor          `json:"donor"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
