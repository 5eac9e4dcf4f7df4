package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"donor-matching-engine/internal/models"
)

// recordingNotifier fails delivery for the donor IDs in failFor and records
// every successful send.
type recordingNotifier struct {
	failFor map[string]bool
	sent    []string
}

func (n *recordingNotifier) NotifyDonor(_ context.Context, donor models.Donor, _ *models.BloodRequest, _ models.ScoreBreakdown) error {
	if n.failFor[donor.DonorID] {
		return fmt.Errorf("delivery to %s failed", donor.DonorID)
	}
	n.sent = append(n.sent, donor.DonorID)
	return nil
}

func matchFor(donorID string) models.MatchResult {
	return models.MatchResult{
		Donor: models.Donor{DonorID: donorID, BloodGroup: models.BloodGroupONegative},
	}
}

func TestNotifyMatchesCountsDeliveries(t *testing.T) {
	notifier := &recordingNotifier{failFor: map[string]bool{"D002": true}}
	svc := &Service{notifier: notifier}
	request := &models.BloodRequest{ID: 7, BloodGroup: models.BloodGroupONegative}

	matches := []models.MatchResult{matchFor("D001"), matchFor("D002"), matchFor("D003")}
	notified := svc.notifyMatches(context.Background(), request, matches)

	assert.Equal(t, 2, notified)
	assert.Equal(t, []string{"D001", "D003"}, notifier.sent)
}

func TestNotifyMatchesAllFailures(t *testing.T) {
	notifier := &recordingNotifier{failFor: map[string]bool{"D001": true, "D002": true}}
	svc := &Service{notifier: notifier}
	request := &models.BloodRequest{ID: 8, BloodGroup: models.BloodGroupAPositive}

	matches := []models.MatchResult{matchFor("D001"), matchFor("D002")}
	notified := svc.notifyMatches(context.Background(), request, matches)

	assert.Zero(t, notified)
	assert.Empty(t, notifier.sent)
}
