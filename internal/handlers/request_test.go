package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"donor-matching-engine/internal/models"
	"donor-matching-engine/internal/services/matching"
)

func TestRequestStatus(t *testing.T) {
	// Matches alone never advance the status: a disabled notifier or a
	// fully failed notification batch leaves the request open.
	openResult := &matching.SearchResult{
		Matches: []models.MatchResult{
			{Donor: models.Donor{DonorID: "D001", BloodGroup: models.BloodGroupONegative}},
			{Donor: models.Donor{DonorID: "D002", BloodGroup: models.BloodGroupAPositive}},
		},
		CandidateCount: 2,
		Notified:       0,
	}
	assert.Equal(t, models.RequestStatusOpen, requestStatus(openResult))

	assert.Equal(t, models.RequestStatusOpen, requestStatus(&matching.SearchResult{}))

	notifiedResult := &matching.SearchResult{
		Matches: []models.MatchResult{
			{Donor: models.Donor{DonorID: "D001", BloodGroup: models.BloodGroupONegative}},
		},
		CandidateCount: 1,
		Notified:       1,
	}
	assert.Equal(t, models.RequestStatusNotified, requestStatus(notifiedResult))
}
