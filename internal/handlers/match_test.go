package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-matching-engine/internal/models"
)

func f64(v float64) *float64 { return &v }

func TestBuildCriteria(t *testing.T) {
	criteria, err := buildCriteria(MatchRequest{
		BloodGroup: "a pos",
		Latitude:   f64(12.9716),
		Longitude:  f64(77.5946),
		City:       "Bengaluru",
		Pincode:    "560001",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BloodGroupAPositive, criteria.BloodGroup)
	require.NotNil(t, criteria.Location)
	assert.InDelta(t, 12.9716, criteria.Location.Latitude, 1e-9)
	assert.Equal(t, "Bengaluru", criteria.City)
	assert.Equal(t, "560001", criteria.Pincode)
}

func TestBuildCriteriaNoLocation(t *testing.T) {
	criteria, err := buildCriteria(MatchRequest{BloodGroup: "O-"})
	require.NoError(t, err)
	assert.Nil(t, criteria.Location)
}

func TestBuildCriteriaErrors(t *testing.T) {
	_, err := buildCriteria(MatchRequest{})
	assert.ErrorContains(t, err, "blood_group")

	_, err = buildCriteria(MatchRequest{BloodGroup: "Z+"})
	assert.ErrorContains(t, err, "invalid blood group")

	_, err = buildCriteria(MatchRequest{BloodGroup: "A+", Latitude: f64(12.9)})
	assert.ErrorContains(t, err, "together")

	_, err = buildCriteria(MatchRequest{BloodGroup: "A+", Latitude: f64(91), Longitude: f64(77)})
	assert.ErrorIs(t, err, models.ErrInvalidLatitude)

	_, err = buildCriteria(MatchRequest{BloodGroup: "A+", Latitude: f64(12), Longitude: f64(181)})
	assert.ErrorIs(t, err, models.ErrInvalidLongitude)
}

func TestValidateRequestCreate(t *testing.T) {
	req := &models.BloodRequestCreate{
		RequesterName: "City Hospital",
		ContactEmail:  "blood-bank@cityhospital.in",
		BloodGroup:    "ab-",
		Urgency:       models.RequestUrgencyCritical,
	}
	require.NoError(t, validateRequestCreate(req))
	assert.Equal(t, models.BloodGroupABNegative, req.BloodGroup)

	bad := &models.BloodRequestCreate{ContactEmail: "x@y.com", BloodGroup: "A+"}
	assert.ErrorContains(t, validateRequestCreate(bad), "requester_name")

	bad = &models.BloodRequestCreate{RequesterName: "X", BloodGroup: "A+"}
	assert.ErrorContains(t, validateRequestCreate(bad), "contact_email")

	bad = &models.BloodRequestCreate{RequesterName: "X", ContactEmail: "x@y.com", BloodGroup: "Q+"}
	assert.ErrorIs(t, validateRequestCreate(bad), models.ErrInvalidBloodGroup)

	bad = &models.BloodRequestCreate{RequesterName: "X", ContactEmail: "x@y.com", BloodGroup: "A+", Urgency: "asap"}
	assert.ErrorContains(t, validateRequestCreate(bad), "invalid urgency")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "donors_2024.csv", sanitizeFilename("donors_2024.csv"))
	assert.Equal(t, "donorlist.csv", sanitizeFilename("donor list!.csv"))
	assert.Equal(t, "a-b_c.1.csv", sanitizeFilename("a-b_c.1.csv"))
}
