// Package main provides a local HTTP server for development and testing.
// It exposes the donor search, blood request and CSV upload endpoints
// without requiring API Gateway or S3.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"donor-matching-engine/internal/config"
	"donor-matching-engine/internal/models"
	"donor-matching-engine/internal/services/database"
	"donor-matching-engine/internal/services/matching"
	"donor-matching-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db          *database.DB
	donorRepo   *database.DonorRepository
	requestRepo *database.RequestRepository
	matchSvc    *matching.Service
	config      *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse contains CSV upload processing results
type UploadResponse struct {
	BatchID      string `json:"batch_id"`
	TotalRows    int    `json:"total_rows"`
	ValidDonors  int    `json:"valid_donors"`
	Errors       int    `json:"errors"`
	Inserted     int    `json:"inserted"`
	ProcessingMs int64  `json:"processing_ms"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{DefaultResultLimit: 10}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will run in demo mode without database")
	}

	server := &Server{
		db:     db,
		config: cfg,
	}

	if db != nil {
		server.donorRepo = database.NewDonorRepository(db)
		server.requestRepo = database.NewRequestRepository(db)
		// No notifier locally; /api/requests stores and ranks but does not email
		server.matchSvc = matching.NewService(db, nil, cfg)
	}

	// Setup routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// Donor search
	mux.HandleFunc("/api/match", server.matchHandler)

	// Blood requests
	mux.HandleFunc("/api/requests", server.requestsHandler)

	// Donor listing and lookup by ID
	mux.HandleFunc("/api/donors", server.donorsHandler)
	mux.HandleFunc("/api/donors/", server.getDonorHandler)

	// Direct CSV upload endpoint (for local testing)
	mux.HandleFunc("/api/upload", server.uploadHandler)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Donor Matching Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)
	log.Println("")

	// Start server (this blocks until error)
	log.Printf("Starting HTTP server on %s...", addr)
	serverErr := http.ListenAndServe(addr, handler)
	if serverErr != nil {
		log.Fatalf("Server failed: %v", serverErr)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	data := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
			if count, err := s.donorRepo.Count(r.Context()); err == nil {
				data["active_donors"] = count
			}
		}
	}
	data["database"] = dbStatus

	response := Response{
		Success: true,
		Message: "Donor Matching Engine API is running",
		Data:    data,
	}

	writeJSON(w, http.StatusOK, response)
}

// matchRequestBody mirrors the Lambda search endpoint's request shape.
type matchRequestBody struct {
	BloodGroup string          `json:"blood_group"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	City       string          `json:"city,omitempty"`
	Pincode    string          `json:"pincode,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Weights    *models.Weights `json:"weights,omitempty"`
}

func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.matchSvc == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	var req matchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	group := models.NormalizeBloodGroup(req.BloodGroup)
	if !group.IsValid() {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("Invalid blood group: %s", req.BloodGroup),
		})
		return
	}

	criteria := models.SearchCriteria{
		BloodGroup: group,
		City:       req.City,
		Pincode:    req.Pincode,
	}
	if req.Latitude != nil && req.Longitude != nil {
		criteria.Location = &models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	result, err := s.matchSvc.FindDonors(r.Context(), criteria, req.Limit, req.Weights)
	if err != nil {
		log.Printf("Donor search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Donor search failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

func (s *Server) requestsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRequests(w, r)
	case http.MethodPost:
		s.createRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	if s.requestRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []models.BloodRequest{},
		})
		return
	}

	requests, err := s.requestRepo.ListOpen(r.Context())
	if err != nil {
		log.Printf("Error fetching requests: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch blood requests",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    requests,
	})
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	if s.requestRepo == nil || s.matchSvc == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	var req models.BloodRequestCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	req.BloodGroup = models.NormalizeBloodGroup(string(req.BloodGroup))
	if !req.BloodGroup.IsValid() {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid blood group",
		})
		return
	}

	requestID, err := s.requestRepo.Create(r.Context(), &req)
	if err != nil {
		log.Printf("Error storing request: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to store blood request",
		})
		return
	}

	result, err := s.matchSvc.MatchForRequest(r.Context(), requestID, 0)
	if err != nil {
		log.Printf("Error matching request %d: %v", requestID, err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to match blood request",
		})
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: fmt.Sprintf("Blood request %d stored", requestID),
		Data: map[string]interface{}{
			"request_id": requestID,
			"matches":    result.Matches,
			"candidates": result.CandidateCount,
		},
	})
}

func (s *Server) donorsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDonors(w, r)
	case http.MethodPost:
		s.createDonor(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createDonor(w http.ResponseWriter, r *http.Request) {
	if s.donorRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	var donor models.DonorCreate
	if err := json.NewDecoder(r.Body).Decode(&donor); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	donor.BloodGroup = models.NormalizeBloodGroup(string(donor.BloodGroup))
	if err := models.ValidateDonorCreate(&donor); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	id, err := s.donorRepo.Create(r.Context(), &donor)
	if err != nil {
		log.Printf("Error storing donor: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to store donor",
		})
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Donor registered",
		Data:    map[string]interface{}{"id": id},
	})
}

func (s *Server) listDonors(w http.ResponseWriter, r *http.Request) {
	if s.donorRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []models.DonorSummary{},
		})
		return
	}

	donors, err := s.donorRepo.ListActive(r.Context())
	if err != nil {
		log.Printf("Error fetching donors: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch donors",
		})
		return
	}

	summaries := make([]models.DonorSummary, len(donors))
	for i := range donors {
		summaries[i] = donors[i].ToSummary()
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    summaries,
	})
}

func (s *Server) getDonorHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.donorRepo == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/donors/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid donor ID",
		})
		return
	}

	donor, err := s.donorRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDonorNotFound) {
			writeJSON(w, http.StatusNotFound, Response{
				Success: false,
				Error:   fmt.Sprintf("Donor %d not found", id),
			})
			return
		}
		log.Printf("Error fetching donor %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch donor",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    donor,
	})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log.Printf("CSV upload request received")

	// Handle multipart form upload
	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		log.Printf("Failed to parse form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("No file in form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	log.Printf("Processing file: %s (%.2f KB)", header.Filename, float64(header.Size)/1024)

	// Validate file type
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	// Read file content
	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	result, err := s.processCSVContent(r.Context(), content, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    result,
	})
}

func (s *Server) processCSVContent(ctx context.Context, content []byte, filename string) (*UploadResponse, error) {
	startTime := time.Now()
	batchID := fmt.Sprintf("batch_%d", time.Now().Unix())

	log.Printf("Processing CSV: %s (BatchID: %s)", filename, batchID)

	// Parse CSV
	parser := utils.NewCSVParser()
	donors, parseErrors := parser.ParseDonors(string(content), batchID)

	log.Printf("Parsed: %d valid donors, %d errors", len(donors), len(parseErrors))

	// Log first few errors for debugging
	if len(parseErrors) > 0 {
		log.Printf("Parse errors:")
		for i, err := range parseErrors {
			if i >= 5 { // Only log first 5 errors
				log.Printf("   ... and %d more errors", len(parseErrors)-5)
				break
			}
			log.Printf("   - %v", err)
		}
	}

	result := &UploadResponse{
		BatchID:     batchID,
		TotalRows:   len(donors) + len(parseErrors),
		ValidDonors: len(donors),
		Errors:      len(parseErrors),
	}

	// If no database connection, return parse results only
	if s.db == nil || s.donorRepo == nil {
		result.ProcessingMs = time.Since(startTime).Milliseconds()
		return result, nil
	}

	insertResult, err := s.donorRepo.BulkInsert(ctx, donors)
	if err != nil {
		return nil, err
	}
	result.Inserted = insertResult.InsertedCount
	result.Errors += insertResult.FailedCount

	log.Printf("Saved %d donors to database", insertResult.InsertedCount)

	result.ProcessingMs = time.Since(startTime).Milliseconds()
	return result, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
