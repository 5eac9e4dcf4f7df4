// Package database provides database operations for the donor matching engine.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"donor-matching-engine/internal/models"
)

// ErrRequestNotFound is returned when a blood request lookup matches no rows.
var ErrRequestNotFound = errors.New("blood request not found")

// RequestRepository handles blood request database operations.
type RequestRepository struct {
	db *DB
}

// NewRequestRepository creates a new request repository.
func NewRequestRepository(db *DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new blood request.
func (r *RequestRepository) Create(ctx context.Context, request *models.BloodRequestCreate) (int64, error) {
	urgency := request.Urgency
	if urgency == "" {
		urgency = models.RequestUrgencyNormal
	}

	units := request.UnitsNeeded
	if units <= 0 {
		units = 1
	}

	lat, lng := coordinateColumns(request.Location)

	query := `
		INSERT INTO blood_requests (
			requester_name, contact_email, blood_group, units_needed, urgency,
			latitude, longitude, city, pincode, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		request.RequesterName,
		request.ContactEmail,
		string(request.BloodGroup),
		units,
		string(urgency),
		lat,
		lng,
		request.City,
		request.Pincode,
		string(models.RequestStatusOpen),
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create blood request: %w", err)
	}

	return id, nil
}

// GetByID retrieves a blood request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.BloodRequest, error) {
	query := `
		SELECT id, requester_name, contact_email, blood_group, units_needed, urgency,
			latitude, longitude, city, pincode, status, created_at, updated_at, notified_at
		FROM blood_requests
		WHERE id = $1`

	var request models.BloodRequest
	var bloodGroup, urgency, status string
	var lat, lng *float64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.RequesterName,
		&request.ContactEmail,
		&bloodGroup,
		&request.UnitsNeeded,
		&urgency,
		&lat,
		&lng,
		&request.City,
		&request.Pincode,
		&status,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.NotifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}

	request.BloodGroup = models.BloodGroup(bloodGroup)
	request.Urgency = models.RequestUrgency(urgency)
	request.Status = models.RequestStatus(status)
	if lat != nil && lng != nil {
		request.Location = &models.Coordinate{Latitude: *lat, Longitude: *lng}
	}

	return &request, nil
}

// MarkNotified records that donors have been notified for this request.
func (r *RequestRepository) MarkNotified(ctx context.Context, id int64) error {
	now := time.Now().UTC()

	affected, err := r.db.ExecContext(ctx, `
		UPDATE blood_requests
		SET status = $1, notified_at = $2, updated_at = $2
		WHERE id = $3`,
		string(models.RequestStatusNotified), now, id)
	if err != nil {
		return fmt.Errorf("failed to mark request notified: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// ListOpen retrieves open blood requests, oldest first.
func (r *RequestRepository) ListOpen(ctx context.Context) ([]models.BloodRequest, error) {
	query := `
		SELECT id, requester_name, contact_email, blood_group, units_needed, urgency,
			latitude, longitude, city, pincode, status, created_at, updated_at, notified_at
		FROM blood_requests
		WHERE status = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, string(models.RequestStatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	defer rows.Close()

	requests := make([]models.BloodRequest, 0)
	for rows.Next() {
		var request models.BloodRequest
		var bloodGroup, urgency, status string
		var lat, lng *float64

		err := rows.Scan(
			&request.ID,
			&request.RequesterName,
			&request.ContactEmail,
			&bloodGroup,
			&request.UnitsNeeded,
			&urgency,
			&lat,
			&lng,
			&request.City,
			&request.Pincode,
			&status,
			&request.CreatedAt,
			&request.UpdatedAt,
			&request.NotifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blood request: %w", err)
		}

		request.BloodGroup = models.BloodGroup(bloodGroup)
		request.Urgency = models.RequestUrgency(urgency)
		request.Status = models.RequestStatus(status)
		if lat != nil && lng != nil {
			request.Location = &models.Coordinate{Latitude: *lat, Longitude: *lng}
		}

		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blood requests: %w", err)
	}

	return requests, nil
}
