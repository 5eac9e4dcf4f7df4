// Package handlers provides HTTP handlers for the donor matching engine.
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "donor-matching-engine/internal/config"
	"donor-matching-engine/internal/services/database"
	s3service "donor-matching-engine/internal/services/s3"
	"donor-matching-engine/internal/utils"
)

// CSVProcessorHandler handles S3 events for donor CSV ingestion.
type CSVProcessorHandler struct {
	s3Svc     *s3service.Service
	db        *database.DB
	donorRepo *database.DonorRepository
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler() (*CSVProcessorHandler, error) {
	ctx := context.Background()

	s3Svc, err := s3service.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &CSVProcessorHandler{
		s3Svc:     s3Svc,
		db:        db,
		donorRepo: database.NewDonorRepository(db),
	}, nil
}

// CSVProcessResult is the result of processing a donor CSV file.
type CSVProcessResult struct {
	Message  string   `json:"message"`
	BatchID  string   `json:"batch_id"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded donor CSV files.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CSVProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing donor CSV file",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	// Download CSV from S3
	data, err := h.s3Svc.DownloadFile(ctx, key)
	if err != nil {
		logger.Error("Failed to download CSV", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	csvContent := string(data)
	if csvContent == "" {
		return CSVProcessResult{}, fmt.Errorf("CSV file is empty")
	}

	// Generate batch ID
	batchID := generateBatchID(key)

	// Parse CSV
	parser := utils.NewCSVParser()
	donors, parseErrors := parser.ParseDonors(csvContent, batchID)

	if len(donors) == 0 {
		errMsgs := make([]string, len(parseErrors))
		for i, e := range parseErrors {
			errMsgs[i] = e.Error()
		}
		return CSVProcessResult{
			Message: "No valid donors found in CSV",
			BatchID: batchID,
			Errors:  errMsgs,
		}, nil
	}

	logger.Info("Parsed donor CSV",
		utils.String("batchID", batchID),
		utils.Int("validDonors", len(donors)),
		utils.Int("parseErrors", len(parseErrors)))

	// Insert donors into database
	result, err := h.donorRepo.BulkInsert(ctx, donors)
	if err != nil {
		logger.Error("Failed to insert donors", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to insert donors: %w", err)
	}

	logger.Info("Inserted donors",
		utils.String("batchID", batchID),
		utils.Int("inserted", result.InsertedCount),
		utils.Int("failed", result.FailedCount))

	// Move the ingested file out of the upload area
	if err := h.s3Svc.ArchiveProcessedFile(ctx, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	// Combine parse errors with insert errors
	allErrors := make([]string, 0)
	for _, e := range parseErrors {
		allErrors = append(allErrors, e.Error())
	}
	allErrors = append(allErrors, result.Errors...)

	// Limit errors in response
	if len(allErrors) > 10 {
		allErrors = allErrors[:10]
	}

	return CSVProcessResult{
		Message:  "CSV processed successfully",
		BatchID:  batchID,
		Inserted: result.InsertedCount,
		Failed:   result.FailedCount + len(parseErrors),
		Errors:   allErrors,
	}, nil
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}

// Close cleans up resources.
func (h *CSVProcessorHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// HandleWithConfig processes S3 events with a custom database URL (for testing).
func HandleWithConfig(ctx context.Context, s3Event events.S3Event, dbURL string) (CSVProcessResult, error) {
	db, err := database.NewFromURL(dbURL)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	s3Svc, err := s3service.NewService(ctx)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to create S3 service: %w", err)
	}

	handler := &CSVProcessorHandler{
		s3Svc:     s3Svc,
		db:        db,
		donorRepo: database.NewDonorRepository(db),
	}

	return handler.Handle(ctx, s3Event)
}
