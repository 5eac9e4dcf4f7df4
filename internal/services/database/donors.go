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

// ErrDonorNotFound is returned when a donor lookup matches no rows.
var ErrDonorNotFound = errors.New("donor not found")

// DonorRepository handles donor database operations.
type DonorRepository struct {
	db *DB
}

// NewDonorRepository creates a new donor repository.
func NewDonorRepository(db *DB) *DonorRepository {
	return &DonorRepository{db: db}
}

const donorColumns = `
	id, donor_id, name, email, blood_group, latitude, longitude, city, pincode,
	last_donation_date, completed_donations, rejected_bookings, available,
	batch_id, created_at, updated_at, is_active`

// Create inserts a new donor, upserting on the external donor_id.
func (r *DonorRepository) Create(ctx context.Context, donor *models.DonorCreate) (int64, error) {
	query := `
		INSERT INTO donors (
			donor_id, name, email, blood_group, latitude, longitude, city, pincode,
			last_donation_date, completed_donations, rejected_bookings, available,
			batch_id, created_at, updated_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14, true)
		ON CONFLICT (donor_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			blood_group = EXCLUDED.blood_group,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			city = EXCLUDED.city,
			pincode = EXCLUDED.pincode,
			last_donation_date = EXCLUDED.last_donation_date,
			completed_donations = EXCLUDED.completed_donations,
			rejected_bookings = EXCLUDED.rejected_bookings,
			available = EXCLUDED.available,
			batch_id = EXCLUDED.batch_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	lat, lng := coordinateColumns(donor.Location)

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		donor.DonorID,
		donor.Name,
		donor.Email,
		string(donor.BloodGroup),
		lat,
		lng,
		donor.City,
		donor.Pincode,
		donor.LastDonationDate,
		donor.CompletedDonations,
		donor.RejectedBookings,
		donor.Available,
		donor.BatchID,
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create donor: %w", err)
	}

	return id, nil
}

// BulkInsert inserts multiple donors into the database.
func (r *DonorRepository) BulkInsert(ctx context.Context, donors []*models.DonorCreate) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{
		InsertedCount: 0,
		FailedCount:   0,
		Errors:        []string{},
	}

	// Use a transaction for bulk insert
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, donor := range donors {
			lat, lng := coordinateColumns(donor.Location)

			_, err := tx.Exec(ctx, `
				INSERT INTO donors (
					donor_id, name, email, blood_group, latitude, longitude, city, pincode,
					last_donation_date, completed_donations, rejected_bookings, available,
					batch_id, created_at, updated_at, is_active
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14, true)
				ON CONFLICT (donor_id) DO UPDATE SET
					name = EXCLUDED.name,
					email = EXCLUDED.email,
					blood_group = EXCLUDED.blood_group,
					latitude = EXCLUDED.latitude,
					longitude = EXCLUDED.longitude,
					city = EXCLUDED.city,
					pincode = EXCLUDED.pincode,
					last_donation_date = EXCLUDED.last_donation_date,
					completed_donations = EXCLUDED.completed_donations,
					rejected_bookings = EXCLUDED.rejected_bookings,
					available = EXCLUDED.available,
					batch_id = EXCLUDED.batch_id,
					updated_at = EXCLUDED.updated_at`,
				donor.DonorID,
				donor.Name,
				donor.Email,
				string(donor.BloodGroup),
				lat,
				lng,
				donor.City,
				donor.Pincode,
				donor.LastDonationDate,
				donor.CompletedDonations,
				donor.RejectedBookings,
				donor.Available,
				donor.BatchID,
				time.Now().UTC(),
			)

			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("donor %s: %v", donor.DonorID, err))
			} else {
				result.InsertedCount++
			}
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk insert failed: %w", err)
	}

	return result, nil
}

// GetByID retrieves a donor by their database ID.
func (r *DonorRepository) GetByID(ctx context.Context, id int64) (*models.Donor, error) {
	query := `SELECT` + donorColumns + ` FROM donors WHERE id = $1`

	donor, err := scanDonor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}

	return donor, nil
}

// ListActive retrieves all active donors.
func (r *DonorRepository) ListActive(ctx context.Context) ([]models.Donor, error) {
	query := `SELECT` + donorColumns + ` FROM donors WHERE is_active = true ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	defer rows.Close()

	return collectDonors(rows)
}

// ListActiveByBloodGroups retrieves active donors whose blood group is one of
// the given groups. Used to prefilter the candidate pool to the groups the
// compatibility table accepts before in-memory scoring.
func (r *DonorRepository) ListActiveByBloodGroups(ctx context.Context, groups []models.BloodGroup) ([]models.Donor, error) {
	if len(groups) == 0 {
		return []models.Donor{}, nil
	}

	groupStrs := make([]string, len(groups))
	for i, g := range groups {
		groupStrs[i] = string(g)
	}

	query := `SELECT` + donorColumns + ` FROM donors WHERE is_active = true AND blood_group = ANY($1) ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, groupStrs)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors by blood group: %w", err)
	}
	defer rows.Close()

	return collectDonors(rows)
}

// Count returns the number of active donors.
func (r *DonorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donors WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}
	return count, nil
}

// scanDonor scans a single donor row, folding nullable latitude/longitude
// into an optional Coordinate.
func scanDonor(row pgx.Row) (*models.Donor, error) {
	var donor models.Donor
	var bloodGroup string
	var lat, lng *float64

	err := row.Scan(
		&donor.ID,
		&donor.DonorID,
		&donor.Name,
		&donor.Email,
		&bloodGroup,
		&lat,
		&lng,
		&donor.City,
		&donor.Pincode,
		&donor.LastDonationDate,
		&donor.CompletedDonations,
		&donor.RejectedBookings,
		&donor.Available,
		&donor.BatchID,
		&donor.CreatedAt,
		&donor.UpdatedAt,
		&donor.IsActive,
	)
	if err != nil {
		return nil, err
	}

	donor.BloodGroup = models.BloodGroup(bloodGroup)
	if lat != nil && lng != nil {
		donor.Location = &models.Coordinate{Latitude: *lat, Longitude: *lng}
	}

	return &donor, nil
}

func collectDonors(rows pgx.Rows) ([]models.Donor, error) {
	donors := make([]models.Donor, 0)
	for rows.Next() {
		donor, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donor: %w", err)
		}
		donors = append(donors, *donor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read donors: %w", err)
	}
	return donors, nil
}

// coordinateColumns splits an optional Coordinate into nullable columns.
func coordinateColumns(c *models.Coordinate) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Latitude, &c.Longitude
}
