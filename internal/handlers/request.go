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
	"donor-matching-engine/internal/services/ses"
	"donor-matching-engine/internal/utils"
)

// RequestHandler handles blood request submissions. A stored request is
// immediately matched against the donor pool and the top-ranked donors are
// notified by email.
type RequestHandler struct {
	db          *database.DB
	requestRepo *database.RequestRepository
	service     *matching.Service
}

// NewRequestHandler creates a new blood request handler.
func NewRequestHandler(ctx context.Context) (*RequestHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Notification delivery is best effort; without SES the request is
	// still stored and matched.
	var notifier matching.DonorNotifier
	if sesService, err := ses.NewService(ctx); err == nil {
		notifier = sesService
	} else {
		utils.GetLogger().Warn("SES unavailable, donor notifications disabled", utils.Error(err))
	}

	return &RequestHandler{
		db:          db,
		requestRepo: database.NewRequestRepository(db),
		service:     matching.NewService(db, notifier, cfg),
	}, nil
}

// RequestResponse is the response body for a blood request submission.
type RequestResponse struct {
	RequestID      int64        `json:"request_id"`
	Status         string       `json:"status"`
	CandidateCount int          `json:"candidate_count"`
	Notified       int          `json:"notified"`
	Matches        []MatchEntry `json:"matches"`
}

// Handle processes API Gateway blood request submissions.
func (h *RequestHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
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

	var req models.BloodRequestCreate
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}

	if err := validateRequestCreate(&req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	requestID, err := h.requestRepo.Create(ctx, &req)
	if err != nil {
		logger.Error("Failed to store blood request", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to store blood request")
	}

	result, err := h.service.MatchForRequest(ctx, requestID, 0)
	if err != nil {
		logger.Error("Failed to match blood request",
			utils.Int64("requestID", requestID),
			utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to match blood request")
	}

	response := RequestResponse{
		RequestID:      requestID,
		Status:         string(requestStatus(result)),
		CandidateCount: result.CandidateCount,
		Notified:       result.Notified,
		Matches:        toMatchEntries(result.Matches),
	}

	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusCreated,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// requestStatus reports the stored request's status after matching. The
// request only moves to notified when at least one donor email actually went
// out; matches alone do not change it.
func requestStatus(result *matching.SearchResult) models.RequestStatus {
	if result.Notified > 0 {
		return models.RequestStatusNotified
	}
	return models.RequestStatusOpen
}

// validateRequestCreate checks the submission before it is stored.
func validateRequestCreate(req *models.BloodRequestCreate) error {
	if req.RequesterName == "" {
		return fmt.Errorf("missing required field: requester_name")
	}
	if req.ContactEmail == "" {
		return fmt.Errorf("missing required field: contact_email")
	}

	req.BloodGroup = models.NormalizeBloodGroup(string(req.BloodGroup))
	if !req.BloodGroup.IsValid() {
		return models.ErrInvalidBloodGroup
	}

	switch req.Urgency {
	case "", models.RequestUrgencyNormal, models.RequestUrgencyUrgent, models.RequestUrgencyCritical:
	default:
		return fmt.Errorf("invalid urgency: %s", req.Urgency)
	}

	if req.Location != nil {
		if req.Location.Latitude < -90 || req.Location.Latitude > 90 {
			return models.ErrInvalidLatitude
		}
		if req.Location.Longitude < -180 || req.Location.Longitude > 180 {
			return models.ErrInvalidLongitude
		}
	}

	return nil
}

// Close cleans up resources.
func (h *RequestHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
