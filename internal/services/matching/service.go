// Package matching implements the donor scoring and ranking engine.
package matching

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"donor-matching-engine/internal/config"
	"donor-matching-engine/internal/models"
	"donor-matching-engine/internal/services/database"
	"donor-matching-engine/internal/utils"
)

// DonorNotifier sends a match notification to a single donor.
type DonorNotifier interface {
	NotifyDonor(ctx context.Context, donor models.Donor, request *models.BloodRequest, breakdown models.ScoreBreakdown) error
}

// Service orchestrates donor searches: it loads the candidate pool, runs the
// pure scoring engine over an in-memory snapshot, and optionally notifies
// the top-ranked donors.
type Service struct {
	donorRepo   *database.DonorRepository
	requestRepo *database.RequestRepository
	notifier    DonorNotifier
	config      *config.Config
}

// NewService creates a new matching service. notifier may be nil when
// notification delivery is not configured.
func NewService(db *database.DB, notifier DonorNotifier, cfg *config.Config) *Service {
	return &Service{
		donorRepo:   database.NewDonorRepository(db),
		requestRepo: database.NewRequestRepository(db),
		notifier:    notifier,
		config:      cfg,
	}
}

// SearchResult contains the outcome of one donor search. Notified is only
// populated by MatchForRequest; a plain search never emails anyone.
type SearchResult struct {
	Criteria       models.SearchCriteria `json:"criteria"`
	Matches        []models.MatchResult  `json:"matches"`
	CandidateCount int                   `json:"candidate_count"`
	Notified       int                   `json:"notified,omitempty"`
	ProcessingTime time.Duration         `json:"-"`
}

// FindDonors runs a donor search for the given criteria. Candidates are
// prefiltered in SQL to the blood groups the compatibility table accepts,
// then scored and ranked in memory with a single now reference.
func (s *Service) FindDonors(ctx context.Context, criteria models.SearchCriteria, limit int, weights *models.Weights) (*SearchResult, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = s.config.DefaultResultLimit
	}

	groups := CompatibleDonorGroups(criteria.BloodGroup)
	if len(groups) == 0 {
		// Unknown required group: every candidate would score zero
		// compatibility, so the empty result is already decided.
		utils.Logger.Warn("Search for unknown blood group",
			zap.String("bloodGroup", string(criteria.BloodGroup)))
		return &SearchResult{Criteria: criteria, Matches: []models.MatchResult{}}, nil
	}

	donors, err := s.donorRepo.ListActiveByBloodGroups(ctx, groups)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate donors: %w", err)
	}

	utils.Logger.Info("Starting donor search",
		zap.String("bloodGroup", string(criteria.BloodGroup)),
		zap.Int("candidates", len(donors)),
		zap.Int("limit", limit),
	)

	matches := TopK(donors, criteria, limit, weights, time.Now().UTC())

	result := &SearchResult{
		Criteria:       criteria,
		Matches:        matches,
		CandidateCount: len(donors),
		ProcessingTime: time.Since(startTime),
	}

	utils.Logger.Info("Donor search complete",
		zap.Int("candidates", result.CandidateCount),
		zap.Int("matches", len(matches)),
		zap.Duration("processingTime", result.ProcessingTime),
	)

	return result, nil
}

// MatchForRequest runs a donor search for a stored blood request and emails
// the top-ranked donors. Notification failures are collected per donor
// rather than aborting the batch.
func (s *Service) MatchForRequest(ctx context.Context, requestID int64, limit int) (*SearchResult, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blood request: %w", err)
	}

	result, err := s.FindDonors(ctx, request.Criteria(), limit, nil)
	if err != nil {
		return nil, err
	}

	if s.notifier == nil || len(result.Matches) == 0 {
		return result, nil
	}

	notified := s.notifyMatches(ctx, request, result.Matches)
	result.Notified = notified

	if notified > 0 {
		if err := s.requestRepo.MarkNotified(ctx, request.ID); err != nil {
			utils.Logger.Warn("Failed to mark request notified",
				zap.Int64("requestID", request.ID),
				zap.Error(err),
			)
		}
	}

	utils.Logger.Info("Request matching complete",
		zap.Int64("requestID", request.ID),
		zap.Int("matches", len(result.Matches)),
		zap.Int("notified", notified),
	)

	return result, nil
}

// notifyMatches emails every matched donor and returns how many deliveries
// succeeded. A failed delivery is logged and skipped.
func (s *Service) notifyMatches(ctx context.Context, request *models.BloodRequest, matches []models.MatchResult) int {
	notified := 0
	for _, match := range matches {
		if err := s.notifier.NotifyDonor(ctx, match.Donor, request, match.Breakdown); err != nil {
			utils.GetLogger().Warn("Failed to notify donor",
				zap.String("donorID", match.Donor.DonorID),
				zap.Int64("requestID", request.ID),
				zap.Error(err),
			)
			continue
		}
		notified++
	}
	return notified
}
