// Package models defines the data structures for the donor matching engine.
package models

import (
	"time"
)

// RequestStatus represents the status of a blood request.
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "open"
	RequestStatusNotified  RequestStatus = "notified"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// RequestUrgency represents how urgently the blood is needed.
type RequestUrgency string

const (
	RequestUrgencyNormal   RequestUrgency = "normal"
	RequestUrgencyUrgent   RequestUrgency = "urgent"
	RequestUrgencyCritical RequestUrgency = "critical"
)

// BloodRequest represents a blood requirement raised through the platform.
type BloodRequest struct {
	ID            int64          `json:"id" db:"id"`
	RequesterName string         `json:"requester_name" db:"requester_name"`
	ContactEmail  string         `json:"contact_email" db:"contact_email"`
	BloodGroup    BloodGroup     `json:"blood_group" db:"blood_group"`
	UnitsNeeded   int            `json:"units_needed" db:"units_needed"`
	Urgency       RequestUrgency `json:"urgency" db:"urgency"`
	Location      *Coordinate    `json:"location,omitempty"`
	City          string         `json:"city,omitempty" db:"city"`
	Pincode       string         `json:"pincode,omitempty" db:"pincode"`
	Status        RequestStatus  `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	NotifiedAt    *time.Time     `json:"notified_at,omitempty" db:"notified_at"`
}

// BloodRequestCreate represents data needed to raise a new blood request.
type BloodRequestCreate struct {
	RequesterName string         `json:"requester_name" validate:"required"`
	ContactEmail  string         `json:"contact_email" validate:"required,email"`
	BloodGroup    BloodGroup     `json:"blood_group" validate:"required"`
	UnitsNeeded   int            `json:"units_needed"`
	Urgency       RequestUrgency `json:"urgency"`
	Location      *Coordinate    `json:"location,omitempty"`
	City          string         `json:"city,omitempty"`
	Pincode       string         `json:"pincode,omitempty"`
}

// Criteria builds the donor search criteria for this request.
func (r *BloodRequest) Criteria() SearchCriteria {
	return SearchCriteria{
		BloodGroup: r.BloodGroup,
		Location:   r.Location,
		City:       r.City,
		Pincode:    r.Pincode,
	}
}
