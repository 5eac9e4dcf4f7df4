package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-matching-engine/internal/models"
)

func fptr(v float64) *float64 { return &v }

func testCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		BloodGroup: models.BloodGroupAPositive,
		Location:   &models.Coordinate{Latitude: 12.9716, Longitude: 77.5946},
	}
}

func TestMatchExactDonorFullProfile(t *testing.T) {
	donors := []models.Donor{{
		DonorID:            "D001",
		BloodGroup:         models.BloodGroupAPositive,
		Location:           &models.Coordinate{Latitude: 12.9716, Longitude: 77.5946},
		CompletedDonations: 3,
		Available:          true,
	}}

	results := Match(donors, testCriteria(), nil, testNow)
	require.Len(t, results, 1)

	breakdown := results[0].Breakdown
	assert.Equal(t, models.SubScores{BloodGroup: 100, Proximity: 100, LastDonation: 100, Reliability: 90}, breakdown.Scores)
	// 100*0.40 + 100*0.25 + 100*0.20 + 90*0.15
	assert.InDelta(t, 98.5, breakdown.TotalScore, 1e-9)
	require.NotNil(t, breakdown.DistanceKm)
	assert.InDelta(t, 0, *breakdown.DistanceKm, 1e-9)
}

func TestMatchUniversalDonorAtDistance(t *testing.T) {
	// 0.5395932 degrees of latitude is 60 km on the engine's sphere.
	donors := []models.Donor{{
		DonorID:            "D002",
		BloodGroup:         models.BloodGroupONegative,
		Location:           &models.Coordinate{Latitude: 13.5111932, Longitude: 77.5946},
		LastDonationDate:   daysAgo(200),
		CompletedDonations: 3,
		Available:          true,
		RejectedBookings:   1,
	}}

	results := Match(donors, testCriteria(), nil, testNow)
	require.Len(t, results, 1)

	breakdown := results[0].Breakdown
	assert.Equal(t, models.SubScores{BloodGroup: 90, Proximity: 35, LastDonation: 100, Reliability: 85}, breakdown.Scores)
	// 90*0.40 + 35*0.25 + 100*0.20 + 85*0.15
	assert.InDelta(t, 77.5, breakdown.TotalScore, 1e-9)
	require.NotNil(t, breakdown.DistanceKm)
	assert.InDelta(t, 60.0, *breakdown.DistanceKm, 1e-6)
}

func TestMatchExcludesIncompatibleDonors(t *testing.T) {
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupABNegative}
	donors := []models.Donor{
		{DonorID: "D003", BloodGroup: models.BloodGroupOPositive},
		{DonorID: "D004", BloodGroup: models.BloodGroupABPositive},
		{DonorID: "D005", BloodGroup: models.BloodGroupONegative},
	}

	results := Match(donors, criteria, nil, testNow)
	require.Len(t, results, 1)
	assert.Equal(t, "D005", results[0].Donor.DonorID)
}

func TestMatchRecentDonorIncludedWithZeroRecency(t *testing.T) {
	// A donor inside the 90-day gap stays in the ranking; only the recency
	// component drops to zero.
	donors := []models.Donor{{
		DonorID:          "D006",
		BloodGroup:       models.BloodGroupAPositive,
		LastDonationDate: daysAgo(30),
	}}
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}

	results := Match(donors, criteria, nil, testNow)
	require.Len(t, results, 1)

	breakdown := results[0].Breakdown
	assert.Equal(t, models.SubScores{BloodGroup: 100, Proximity: 50, LastDonation: 0, Reliability: 50}, breakdown.Scores)
	assert.InDelta(t, 60.0, breakdown.TotalScore, 1e-9)
	assert.Nil(t, breakdown.DistanceKm)
}

func TestMatchSortsByTotalScoreDescending(t *testing.T) {
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}
	donors := []models.Donor{
		{DonorID: "D-opos", BloodGroup: models.BloodGroupOPositive},
		{DonorID: "D-exact", BloodGroup: models.BloodGroupAPositive},
		{DonorID: "D-aneg", BloodGroup: models.BloodGroupANegative},
	}

	results := Match(donors, criteria, nil, testNow)
	require.Len(t, results, 3)
	assert.Equal(t, "D-exact", results[0].Donor.DonorID)
	assert.Equal(t, "D-aneg", results[1].Donor.DonorID)
	assert.Equal(t, "D-opos", results[2].Donor.DonorID)
}

func TestMatchStableForEqualTotals(t *testing.T) {
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}
	donors := []models.Donor{
		{DonorID: "first", BloodGroup: models.BloodGroupAPositive},
		{DonorID: "second", BloodGroup: models.BloodGroupAPositive},
		{DonorID: "third", BloodGroup: models.BloodGroupAPositive},
	}

	results := Match(donors, criteria, nil, testNow)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Donor.DonorID)
	assert.Equal(t, "second", results[1].Donor.DonorID)
	assert.Equal(t, "third", results[2].Donor.DonorID)
}

func TestMatchEmptyInput(t *testing.T) {
	results := Match(nil, testCriteria(), nil, testNow)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestMatchUnknownRequiredGroup(t *testing.T) {
	criteria := models.SearchCriteria{BloodGroup: "X+"}
	donors := []models.Donor{{DonorID: "D007", BloodGroup: models.BloodGroupONegative}}

	assert.Empty(t, Match(donors, criteria, nil, testNow))
}

func TestMatchPartialWeightOverride(t *testing.T) {
	// Only the blood group weight is overridden; the other three keep their
	// defaults.
	donors := []models.Donor{{
		DonorID:    "D008",
		BloodGroup: models.BloodGroupAPositive,
	}}
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}
	weights := &models.Weights{BloodGroup: fptr(1.0)}

	results := Match(donors, criteria, weights, testNow)
	require.Len(t, results, 1)
	// 100*1.0 + 50*0.25 + 100*0.20 + 50*0.15
	assert.InDelta(t, 140.0, results[0].Breakdown.TotalScore, 1e-9)
}

func TestMatchAllZeroWeightsDropsEverything(t *testing.T) {
	donors := []models.Donor{{
		DonorID:    "D009",
		BloodGroup: models.BloodGroupAPositive,
	}}
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}
	weights := &models.Weights{
		BloodGroup:   fptr(0),
		Proximity:    fptr(0),
		LastDonation: fptr(0),
		Reliability:  fptr(0),
	}

	assert.Empty(t, Match(donors, criteria, weights, testNow))
}

func TestProximityFallbackPriority(t *testing.T) {
	criteria := models.SearchCriteria{
		BloodGroup: models.BloodGroupAPositive,
		City:       "Bengaluru",
		Pincode:    "560001",
	}

	tests := []struct {
		name      string
		donor     models.Donor
		wantScore int
	}{
		{
			"city match wins over pincode",
			models.Donor{BloodGroup: models.BloodGroupAPositive, City: " bengaluru ", Pincode: "560001"},
			75,
		},
		{
			"pincode match when city differs",
			models.Donor{BloodGroup: models.BloodGroupAPositive, City: "Mysuru", Pincode: "560001"},
			90,
		},
		{
			"neutral when nothing matches",
			models.Donor{BloodGroup: models.BloodGroupAPositive, City: "Mysuru", Pincode: "570001"},
			50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Match([]models.Donor{tt.donor}, criteria, nil, testNow)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantScore, results[0].Breakdown.Scores.Proximity)
			assert.Nil(t, results[0].Breakdown.DistanceKm)
		})
	}
}

func TestProximityCoordinatesBeatCityMatch(t *testing.T) {
	criteria := testCriteria()
	criteria.City = "Bengaluru"

	donor := models.Donor{
		BloodGroup: models.BloodGroupAPositive,
		City:       "Bengaluru",
		// ~7.78 km due north of the search point.
		Location: &models.Coordinate{Latitude: 13.0416, Longitude: 77.5946},
	}

	results := Match([]models.Donor{donor}, criteria, nil, testNow)
	require.Len(t, results, 1)
	assert.Equal(t, 80, results[0].Breakdown.Scores.Proximity)
	require.NotNil(t, results[0].Breakdown.DistanceKm)
	assert.InDelta(t, 7.8, *results[0].Breakdown.DistanceKm, 1e-9)
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	donors := []models.Donor{
		{DonorID: "a", BloodGroup: models.BloodGroupOPositive},
		{DonorID: "b", BloodGroup: models.BloodGroupAPositive},
	}

	_ = Match(donors, testCriteria(), nil, testNow)

	assert.Equal(t, "a", donors[0].DonorID)
	assert.Equal(t, "b", donors[1].DonorID)
}

func TestMatchIdempotent(t *testing.T) {
	donors := []models.Donor{
		{DonorID: "a", BloodGroup: models.BloodGroupOPositive, Available: true},
		{DonorID: "b", BloodGroup: models.BloodGroupAPositive, LastDonationDate: daysAgo(100)},
		{DonorID: "c", BloodGroup: models.BloodGroupONegative, CompletedDonations: 2},
	}

	first := Match(donors, testCriteria(), nil, testNow)
	second := Match(donors, testCriteria(), nil, testNow)
	assert.Equal(t, first, second)
}

func TestTopK(t *testing.T) {
	criteria := models.SearchCriteria{BloodGroup: models.BloodGroupAPositive}
	donors := []models.Donor{
		{DonorID: "D-opos", BloodGroup: models.BloodGroupOPositive},
		{DonorID: "D-exact", BloodGroup: models.BloodGroupAPositive},
		{DonorID: "D-aneg", BloodGroup: models.BloodGroupANegative},
	}

	top := TopK(donors, criteria, 2, nil, testNow)
	require.Len(t, top, 2)
	assert.Equal(t, "D-exact", top[0].Donor.DonorID)
	assert.Equal(t, "D-aneg", top[1].Donor.DonorID)

	assert.Len(t, TopK(donors, criteria, 10, nil, testNow), 3)
	assert.Empty(t, TopK(donors, criteria, 0, nil, testNow))
	assert.Empty(t, TopK(donors, criteria, -1, nil, testNow))
}

func TestResolveWeights(t *testing.T) {
	defaults := resolveWeights(nil)
	assert.Equal(t, models.DefaultBloodGroupWeight, defaults.bloodGroup)
	assert.Equal(t, models.DefaultProximityWeight, defaults.proximity)
	assert.Equal(t, models.DefaultLastDonationWeight, defaults.lastDonation)
	assert.Equal(t, models.DefaultReliabilityWeight, defaults.reliability)

	partial := resolveWeights(&models.Weights{Proximity: fptr(0.5)})
	assert.Equal(t, 0.5, partial.proximity)
	assert.Equal(t, models.DefaultBloodGroupWeight, partial.bloodGroup)

	// Explicit zero is an override, not "unset".
	zeroed := resolveWeights(&models.Weights{Reliability: fptr(0)})
	assert.Equal(t, 0.0, zeroed.reliability)
}
