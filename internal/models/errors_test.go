package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDonorCreate() *DonorCreate {
	return &DonorCreate{
		DonorID:    "D001",
		Name:       "Asha Rao",
		Email:      "asha@example.com",
		BloodGroup: BloodGroupBPositive,
	}
}

func TestValidateDonorCreate(t *testing.T) {
	assert.NoError(t, ValidateDonorCreate(validDonorCreate()))

	d := validDonorCreate()
	d.DonorID = "  "
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrEmptyDonorID)

	d = validDonorCreate()
	d.Name = ""
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrEmptyName)

	d = validDonorCreate()
	d.Email = "not-an-email"
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrInvalidEmail)

	d = validDonorCreate()
	d.BloodGroup = "C+"
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrInvalidBloodGroup)

	d = validDonorCreate()
	d.Location = &Coordinate{Latitude: 91, Longitude: 0}
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrInvalidLatitude)

	d = validDonorCreate()
	d.Location = &Coordinate{Latitude: 0, Longitude: -181}
	assert.ErrorIs(t, ValidateDonorCreate(d), ErrInvalidLongitude)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, isValidEmail("donor@example.com"))
	assert.True(t, isValidEmail("a.b@c.in"))

	assert.False(t, isValidEmail(""))
	assert.False(t, isValidEmail("@example.com"))
	assert.False(t, isValidEmail("donor@"))
	assert.False(t, isValidEmail("donor@example"))
	assert.False(t, isValidEmail("donor@example."))
}
