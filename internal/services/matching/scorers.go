// Package matching implements the donor scoring and ranking engine.
package matching

import (
	"math"
	"time"

	"donor-matching-engine/internal/models"
)

// Inter-donation gap thresholds in days. Below the minimum a donor is
// medically ineligible; at or beyond the optimal gap they are fully
// recovered, with a linear ramp in between.
const (
	minDonationGapDays     = 90
	optimalDonationGapDays = 120
)

// RecencyScore maps a donor's last donation date to a readiness score in
// [0,100]. A nil lastDonation means the donor has never donated and is fully
// ready. Elapsed time is counted in whole calendar days against the supplied
// now reference, so one batch scored with a single now stays internally
// consistent.
func RecencyScore(now time.Time, lastDonation *time.Time) float64 {
	if lastDonation == nil {
		return 100
	}

	days := math.Floor(now.Sub(*lastDonation).Hours() / 24)
	switch {
	case days < minDonationGapDays:
		return 0
	case days >= optimalDonationGapDays:
		return 100
	default:
		return (days - minDonationGapDays) / (optimalDonationGapDays - minDonationGapDays) * 100
	}
}

// ProximityScore maps a distance in kilometres to a proximity score in
// [0,100] via fixed thresholds, decaying linearly past 50 km.
func ProximityScore(distanceKm float64) float64 {
	switch {
	case distanceKm <= 5:
		return 100
	case distanceKm <= 10:
		return 80
	case distanceKm <= 25:
		return 60
	case distanceKm <= 50:
		return 40
	default:
		return math.Max(0, 40-(distanceKm-50)/2)
	}
}

// Proximity scores for the coarse location fallback used when one or both
// sides lack coordinates.
const (
	proximityCityMatch    = 75
	proximityPincodeMatch = 90
	proximityUnknown      = 50
)

// ReliabilityScore maps a donor's history to a trust score in [0,100]:
// base 50, plus capped rewards for completed donations and availability,
// minus a capped penalty for rejected bookings. Negative counters are read
// as zero.
func ReliabilityScore(d models.Donor) float64 {
	completed := d.CompletedDonations
	if completed < 0 {
		completed = 0
	}
	rejected := d.RejectedBookings
	if rejected < 0 {
		rejected = 0
	}

	score := 50.0
	score += math.Min(30, float64(completed)*10)
	if d.Available {
		score += 10
	}
	score -= math.Min(20, float64(rejected)*5)

	return math.Min(100, math.Max(0, score))
}
