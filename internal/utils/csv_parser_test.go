package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donor-matching-engine/internal/models"
)

func TestParseDonorsBasic(t *testing.T) {
	csv := `donor_id,name,email,blood_group,latitude,longitude,city,pincode,last_donation_date,completed_donations,rejected_bookings,availability
D001,Asha Rao,asha@example.com,A+,12.9716,77.5946,Bengaluru,560001,2024-01-15,3,1,yes
D002,Vikram Shah,vikram@example.com,o-,,,Mumbai,400001,,,,no`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-1")

	require.Empty(t, errs)
	require.Len(t, donors, 2)

	first := donors[0]
	assert.Equal(t, "D001", first.DonorID)
	assert.Equal(t, models.BloodGroupAPositive, first.BloodGroup)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 12.9716, first.Location.Latitude, 1e-9)
	assert.InDelta(t, 77.5946, first.Location.Longitude, 1e-9)
	require.NotNil(t, first.LastDonationDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *first.LastDonationDate)
	assert.Equal(t, 3, first.CompletedDonations)
	assert.Equal(t, 1, first.RejectedBookings)
	assert.True(t, first.Available)
	assert.Equal(t, "batch-1", first.BatchID)

	second := donors[1]
	assert.Equal(t, models.BloodGroupONegative, second.BloodGroup)
	assert.Nil(t, second.Location)
	assert.Nil(t, second.LastDonationDate)
	assert.False(t, second.Available)
}

func TestParseDonorsColumnAliases(t *testing.T) {
	csv := `ID,Full_Name,Mail,Blood Type,lat,lng,pin,last_donation,donations,rejections,available
D010,Meera Iyer,meera@example.com,B NEG,19.076,72.8777,400001,2024-02-01T10:30:00Z,2,0,true`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-2")

	require.Empty(t, errs)
	require.Len(t, donors, 1)

	d := donors[0]
	assert.Equal(t, "D010", d.DonorID)
	assert.Equal(t, "Meera Iyer", d.Name)
	assert.Equal(t, models.BloodGroupBNegative, d.BloodGroup)
	require.NotNil(t, d.Location)
	assert.Equal(t, "400001", d.Pincode)
	require.NotNil(t, d.LastDonationDate)
	assert.Equal(t, 2, d.CompletedDonations)
	assert.True(t, d.Available)
}

func TestParseDonorsCollectsRowErrors(t *testing.T) {
	csv := `donor_id,name,email,blood_group
D001,Asha Rao,asha@example.com,A+
D002,Bad Email,not-an-email,B+
D003,Bad Group,ok@example.com,Z+
D004,Ravi Kumar,ravi@example.com,O+`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-3")

	assert.Len(t, donors, 2)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "line 3")
	assert.Contains(t, errs[1].Error(), "line 4")
}

func TestParseDonorsMissingRequiredColumns(t *testing.T) {
	csv := `donor_id,name,city
D001,Asha Rao,Bengaluru`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-4")

	assert.Nil(t, donors)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingColumns)
	assert.Contains(t, errs[0].Error(), "email")
	assert.Contains(t, errs[0].Error(), "blood_group")
}

func TestParseDonorsEmptyContent(t *testing.T) {
	parser := NewCSVParser()

	donors, errs := parser.ParseDonors("", "batch-5")
	assert.Nil(t, donors)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrEmptyCSV)

	donors, errs = parser.ParseDonors("   \n  ", "batch-5")
	assert.Nil(t, donors)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrEmptyCSV)
}

func TestParseDonorsHeaderOnly(t *testing.T) {
	parser := NewCSVParser()
	donors, errs := parser.ParseDonors("donor_id,name,email,blood_group", "batch-6")

	assert.Empty(t, donors)
	assert.Empty(t, errs)
}

func TestParseDonorsAllRowsInvalid(t *testing.T) {
	csv := `donor_id,name,email,blood_group
,No ID,noid@example.com,A+`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-7")

	assert.Empty(t, donors)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[0], ErrNoDataRows)
}

func TestParseDonorsCoordinatePairRequired(t *testing.T) {
	// Latitude without longitude is ignored rather than guessed.
	csv := `donor_id,name,email,blood_group,latitude,longitude
D001,Asha Rao,asha@example.com,A+,12.9716,`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-8")

	require.Empty(t, errs)
	require.Len(t, donors, 1)
	assert.Nil(t, donors[0].Location)
}

func TestParseDonorsBadCoordinateValue(t *testing.T) {
	csv := `donor_id,name,email,blood_group,latitude,longitude
D001,Asha Rao,asha@example.com,A+,not-a-number,77.59`

	parser := NewCSVParser()
	donors, errs := parser.ParseDonors(csv, "batch-9")

	assert.Empty(t, donors)
	require.NotEmpty(t, errs)
}

func TestParseBoolTruthyValues(t *testing.T) {
	for _, v := range []string{"true", "yes", "Y", "1", "available", "TRUE"} {
		assert.True(t, parseBool(v), "%q should be truthy", v)
	}
	for _, v := range []string{"", "no", "false", "0", "maybe"} {
		assert.False(t, parseBool(v), "%q should be falsy", v)
	}
}
