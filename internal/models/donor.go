// Package models defines the data structures for the donor matching engine.
package models

import (
	"time"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
//
// A nil *Coordinate means the location is unknown; (0,0) is a real point in
// the Gulf of Guinea, never a stand-in for "missing".
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Donor represents a registered blood donor.
type Donor struct {
	ID                 int64       `json:"id" db:"id"`
	DonorID            string      `json:"donor_id" db:"donor_id"`
	Name               string      `json:"name" db:"name"`
	Email              string      `json:"email" db:"email"`
	BloodGroup         BloodGroup  `json:"blood_group" db:"blood_group"`
	Location           *Coordinate `json:"location,omitempty"`
	City               string      `json:"city,omitempty" db:"city"`
	Pincode            string      `json:"pincode,omitempty" db:"pincode"`
	LastDonationDate   *time.Time  `json:"last_donation_date,omitempty" db:"last_donation_date"`
	CompletedDonations int         `json:"completed_donations" db:"completed_donations"`
	RejectedBookings   int         `json:"rejected_bookings" db:"rejected_bookings"`
	Available          bool        `json:"available" db:"available"`
	BatchID            string      `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
	IsActive           bool        `json:"is_active" db:"is_active"`
}

// DonorCreate represents the data needed to register a new donor.
type DonorCreate struct {
	DonorID            string      `json:"donor_id" validate:"required,min=1,max=50"`
	Name               string      `json:"name" validate:"required"`
	Email              string      `json:"email" validate:"required,email"`
	BloodGroup         BloodGroup  `json:"blood_group" validate:"required"`
	Location           *Coordinate `json:"location,omitempty"`
	City               string      `json:"city,omitempty"`
	Pincode            string      `json:"pincode,omitempty"`
	LastDonationDate   *time.Time  `json:"last_donation_date,omitempty"`
	CompletedDonations int         `json:"completed_donations"`
	RejectedBookings   int         `json:"rejected_bookings"`
	Available          bool        `json:"available"`
	BatchID            string      `json:"batch_id,omitempty"`
}

// DonorSummary is a lightweight view of a donor for match responses.
type DonorSummary struct {
	ID         int64      `json:"id"`
	DonorID    string     `json:"donor_id"`
	Name       string     `json:"name"`
	BloodGroup BloodGroup `json:"blood_group"`
	City       string     `json:"city,omitempty"`
	Available  bool       `json:"available"`
}

// ToSummary converts a Donor to DonorSummary.
func (d *Donor) ToSummary() DonorSummary {
	return DonorSummary{
		ID:         d.ID,
		DonorID:    d.DonorID,
		Name:       d.Name,
		BloodGroup: d.BloodGroup,
		City:       d.City,
		Available:  d.Available,
	}
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
