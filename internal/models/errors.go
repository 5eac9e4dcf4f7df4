// Package models defines the data structures for the donor matching engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrInvalidBloodGroup = errors.New("invalid blood group")
	ErrInvalidLatitude   = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude  = errors.New("longitude must be between -180 and 180")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrEmptyDonorID      = errors.New("donor_id cannot be empty")
	ErrEmptyName         = errors.New("name cannot be empty")
)

// ValidateDonorCreate validates donor registration data.
func ValidateDonorCreate(d *DonorCreate) error {
	if strings.TrimSpace(d.DonorID) == "" {
		return ErrEmptyDonorID
	}

	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}

	if !isValidEmail(d.Email) {
		return ErrInvalidEmail
	}

	if !d.BloodGroup.IsValid() {
		return ErrInvalidBloodGroup
	}

	if d.Location != nil {
		if d.Location.Latitude < -90 || d.Location.Latitude > 90 {
			return ErrInvalidLatitude
		}
		if d.Location.Longitude < -180 || d.Location.Longitude > 180 {
			return ErrInvalidLongitude
		}
	}

	return nil
}

// isValidEmail performs basic email validation.
func isValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Basic check: must contain @ and have content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	// Must have a dot after @
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex <= atIndex+1 || dotIndex == len(email)-1 {
		return false
	}

	return true
}
