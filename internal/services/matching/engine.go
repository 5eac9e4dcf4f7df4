// Package matching implements the donor scoring and ranking engine.
//
// The engine is a pure function of its inputs: a candidate donor list, one
// search criteria value, optional weight overrides and an explicit now
// reference. It performs no I/O and never mutates the donors it is given.
package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"donor-matching-engine/internal/models"
)

// weightSet holds fully resolved scoring weights.
type weightSet struct {
	bloodGroup   float64
	proximity    float64
	lastDonation float64
	reliability  float64
}

// resolveWeights fills in defaults for any weight the caller left unset.
// Each field falls back independently.
func resolveWeights(overrides *models.Weights) weightSet {
	w := weightSet{
		bloodGroup:   models.DefaultBloodGroupWeight,
		proximity:    models.DefaultProximityWeight,
		lastDonation: models.DefaultLastDonationWeight,
		reliability:  models.DefaultReliabilityWeight,
	}
	if overrides == nil {
		return w
	}
	if overrides.BloodGroup != nil {
		w.bloodGroup = *overrides.BloodGroup
	}
	if overrides.Proximity != nil {
		w.proximity = *overrides.Proximity
	}
	if overrides.LastDonation != nil {
		w.lastDonation = *overrides.LastDonation
	}
	if overrides.Reliability != nil {
		w.reliability = *overrides.Reliability
	}
	return w
}

// Match scores every candidate donor against the criteria, drops candidates
// with incompatible blood groups, and returns the survivors sorted by total
// score descending. Equal totals keep their input order.
//
// The same now must be used for a whole batch; callers normally pass
// time.Now().UTC() once per request.
func Match(donors []models.Donor, criteria models.SearchCriteria, overrides *models.Weights, now time.Time) []models.MatchResult {
	weights := resolveWeights(overrides)

	results := make([]models.MatchResult, 0, len(donors))
	for _, donor := range donors {
		// Compatibility gates everything: an incompatible donor is
		// excluded before any other scorer runs.
		bgScore := float64(CompatibilityScore(criteria.BloodGroup, donor.BloodGroup))
		if bgScore == 0 {
			continue
		}

		proxScore, distanceKm := proximityFor(criteria, donor)
		ldScore := RecencyScore(now, donor.LastDonationDate)
		relScore := ReliabilityScore(donor)

		total := bgScore*weights.bloodGroup +
			proxScore*weights.proximity +
			ldScore*weights.lastDonation +
			relScore*weights.reliability

		// Only reachable with all-zero weight overrides.
		if total <= 0 {
			continue
		}

		breakdown := models.ScoreBreakdown{
			TotalScore: round2(total),
			Scores: models.SubScores{
				BloodGroup:   int(math.Round(bgScore)),
				Proximity:    int(math.Round(proxScore)),
				LastDonation: int(math.Round(ldScore)),
				Reliability:  int(math.Round(relScore)),
			},
		}
		if distanceKm != nil {
			rounded := round1(*distanceKm)
			breakdown.DistanceKm = &rounded
		}

		results = append(results, models.MatchResult{
			Donor:     donor,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Breakdown.TotalScore > results[j].Breakdown.TotalScore
	})

	return results
}

// TopK runs Match and returns the first k entries of the ranked result, or
// fewer if the ranked list is shorter. k <= 0 returns an empty list.
func TopK(donors []models.Donor, criteria models.SearchCriteria, k int, overrides *models.Weights, now time.Time) []models.MatchResult {
	if k <= 0 {
		return []models.MatchResult{}
	}

	results := Match(donors, criteria, overrides, now)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// proximityFor picks the proximity input for one candidate. Coordinates on
// both sides always win; otherwise the coarse fallback chain runs in fixed
// priority order: city match, then pincode match, then the neutral default.
func proximityFor(criteria models.SearchCriteria, donor models.Donor) (score float64, distanceKm *float64) {
	if criteria.Location != nil && donor.Location != nil {
		d := DistanceKm(*criteria.Location, *donor.Location)
		return ProximityScore(d), &d
	}

	if cityMatches(criteria.City, donor.City) {
		return proximityCityMatch, nil
	}

	if criteria.Pincode != "" && criteria.Pincode == donor.Pincode {
		return proximityPincodeMatch, nil
	}

	return proximityUnknown, nil
}

func cityMatches(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
