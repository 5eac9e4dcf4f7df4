// Package handlers provides HTTP handlers for the donor matching engine.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	appConfig "donor-matching-engine/internal/config"
	"donor-matching-engine/internal/models"
	"donor-matching-engine/internal/services/database"
	"donor-matching-engine/internal/services/matching"
	"donor-matching-engine/internal/utils"
)

// MatchHandler handles donor search requests.
type MatchHandler struct {
	db      *database.DB
	service *matching.Service
}

// NewMatchHandler creates a new match handler. The notifier is nil here; the
// synchronous search endpoint never emails donors.
func NewMatchHandler() (*MatchHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &MatchHandler{
		db:      db,
		service: matching.NewService(db, nil, cfg),
	}, nil
}

// MatchRequest is the request body for a donor search.
type MatchRequest struct {
	BloodGroup string          `json:"blood_group"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	City       string          `json:"city,omitempty"`
	Pincode    string          `json:"pincode,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Weights    *models.Weights `json:"weights,omitempty"`
}

// MatchEntry is one ranked donor in the search response.
type MatchEntry struct {
	Donor      models.DonorSummary `json:"donor"`
	TotalScore float64             `json:"total_score"`
	DistanceKm *float64            `json:"distance_km,omitempty"`
	Scores     models.SubScores    `json:"scores"`
}

// MatchResponse is the response body for a donor search.
type MatchResponse struct {
	BloodGroup     string       `json:"blood_group"`
	CandidateCount int          `json:"candidate_count"`
	Matches        []MatchEntry `json:"matches"`
}

// Handle processes API Gateway donor search requests.
func (h *MatchHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	// CORS headers
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Content-Type":                 "application/json",
	}

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var req MatchRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}

	criteria, err := buildCriteria(req)
	if err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	result, err := h.service.FindDonors(ctx, criteria, req.Limit, req.Weights)
	if err != nil {
		logger.Error("Donor search failed", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Donor search failed")
	}

	response := MatchResponse{
		BloodGroup:     string(criteria.BloodGroup),
		CandidateCount: result.CandidateCount,
		Matches:        toMatchEntries(result.Matches),
	}

	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// buildCriteria validates a search request and converts it to engine criteria.
func buildCriteria(req MatchRequest) (models.SearchCriteria, error) {
	if req.BloodGroup == "" {
		return models.SearchCriteria{}, fmt.Errorf("missing required field: blood_group")
	}

	group := models.NormalizeBloodGroup(req.BloodGroup)
	if !group.IsValid() {
		return models.SearchCriteria{}, fmt.Errorf("invalid blood group: %s", req.BloodGroup)
	}

	criteria := models.SearchCriteria{
		BloodGroup: group,
		City:       req.City,
		Pincode:    req.Pincode,
	}

	// Coordinates must arrive as a pair
	if req.Latitude != nil && req.Longitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return models.SearchCriteria{}, models.ErrInvalidLatitude
		}
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return models.SearchCriteria{}, models.ErrInvalidLongitude
		}
		criteria.Location = &models.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	} else if req.Latitude != nil || req.Longitude != nil {
		return models.SearchCriteria{}, fmt.Errorf("latitude and longitude must be provided together")
	}

	return criteria, nil
}

func toMatchEntries(matches []models.MatchResult) []MatchEntry {
	entries := make([]MatchEntry, len(matches))
	for i, m := range matches {
		entries[i] = MatchEntry{
			Donor:      m.Donor.ToSummary(),
			TotalScore: m.Breakdown.TotalScore,
			DistanceKm: m.Breakdown.DistanceKm,
			Scores:     m.Breakdown.Scores,
		}
	}
	return entries
}

// Close cleans up resources.
func (h *MatchHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
