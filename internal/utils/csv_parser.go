// Package utils provides utility functions for the donor matching engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"donor-matching-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"donor_id",
	"name",
	"email",
	"blood_group",
}

// OptionalColumns are recognized but not required; absent values fall back
// to the engine's documented defaults.
var OptionalColumns = []string{
	"latitude",
	"longitude",
	"city",
	"pincode",
	"last_donation_date",
	"completed_donations",
	"rejected_bookings",
	"availability",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// donor_id aliases
	"donorid":  "donor_id",
	"donor id": "donor_id",
	"id":       "donor_id",

	// name aliases
	"donor_name": "name",
	"donorname":  "name",
	"full_name":  "name",
	"fullname":   "name",

	// email aliases
	"emailaddress":  "email",
	"email_address": "email",
	"mail":          "email",

	// blood_group aliases
	"bloodgroup":  "blood_group",
	"blood group": "blood_group",
	"group":       "blood_group",
	"blood_type":  "blood_group",
	"bloodtype":   "blood_group",
	"blood type":  "blood_group",

	// location aliases
	"lat":  "latitude",
	"lng":  "longitude",
	"lon":  "longitude",
	"long": "longitude",

	// pincode aliases
	"pin":         "pincode",
	"pin_code":    "pincode",
	"zip":         "pincode",
	"zipcode":     "pincode",
	"zip_code":    "pincode",
	"postal_code": "pincode",
	"postalcode":  "pincode",

	// last_donation_date aliases
	"last_donation":      "last_donation_date",
	"lastdonation":       "last_donation_date",
	"last_donated":       "last_donation_date",
	"lastdonationdate":   "last_donation_date",
	"last donation date": "last_donation_date",

	// history counter aliases
	"donations":           "completed_donations",
	"donations_completed": "completed_donations",
	"total_donations":     "completed_donations",
	"completeddonations":  "completed_donations",
	"rejections":          "rejected_bookings",
	"rejected":            "rejected_bookings",
	"no_shows":            "rejected_bookings",
	"rejectedbookings":    "rejected_bookings",

	// availability aliases
	"available":    "availability",
	"is_available": "availability",
}

// CSVParser handles parsing of donor CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseDonors parses CSV content and returns a slice of DonorCreate objects.
func (p *CSVParser) ParseDonors(content string, batchID string) ([]*models.DonorCreate, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	// Build column mapping
	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	// Parse data rows
	var donors []*models.DonorCreate
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		donor, err := p.parseRow(record, batchID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		// Validate donor
		if err := models.ValidateDonorCreate(donor); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		donors = append(donors, donor)
	}

	if len(donors) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return donors, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		// Normalize column name
		normalized := strings.ToLower(strings.TrimSpace(col))

		// Apply alias if exists
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}

		p.columnMapping[normalized] = i
	}

	// Check for required columns
	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a DonorCreate object.
func (p *CSVParser) parseRow(record []string, batchID string) (*models.DonorCreate, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	donor := &models.DonorCreate{
		DonorID:    getValue("donor_id"),
		Name:       getValue("name"),
		Email:      getValue("email"),
		BloodGroup: models.NormalizeBloodGroup(getValue("blood_group")),
		City:       getValue("city"),
		Pincode:    getValue("pincode"),
		BatchID:    batchID,
	}

	// Coordinates are optional but must come as a pair
	latStr, lngStr := getValue("latitude"), getValue("longitude")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %w", err)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %w", err)
		}
		donor.Location = &models.Coordinate{Latitude: lat, Longitude: lng}
	}

	if dateStr := getValue("last_donation_date"); dateStr != "" {
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid last_donation_date: %w", err)
		}
		donor.LastDonationDate = &date
	}

	if countStr := getValue("completed_donations"); countStr != "" {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_donations: %w", err)
		}
		donor.CompletedDonations = count
	}

	if countStr := getValue("rejected_bookings"); countStr != "" {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid rejected_bookings: %w", err)
		}
		donor.RejectedBookings = count
	}

	donor.Available = parseBool(getValue("availability"))

	return donor, nil
}

// parseDate accepts both date-only and RFC3339 timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseBool interprets common truthy spellings; anything else is false.
func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "y", "1", "available":
		return true
	default:
		return false
	}
}
