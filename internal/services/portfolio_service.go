package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"yieldvest/internal/clock"
	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/insights"
	"yieldvest/internal/logger"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/portfolio"
	"yieldvest/internal/repository"
)

// PortfolioSettings holds the configurable portfolio policies.
type PortfolioSettings struct {
	// IncludeInactive counts matured and cancelled investments in summaries
	// when the caller does not say otherwise.
	IncludeInactive bool
	// MaturityHorizonDays is the default window for upcoming maturities.
	MaturityHorizonDays int
}

// portfolioService builds portfolio views from a user's investments.
type portfolioService struct {
	store    repository.Store
	clock    clock.Clock
	writer   *insights.Writer
	settings PortfolioSettings
	log      *zap.SugaredLogger
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(store repository.Store, clk clock.Clock, writer *insights.Writer, settings PortfolioSettings) PortfolioServicer {
	if settings.MaturityHorizonDays <= 0 {
		settings.MaturityHorizonDays = 30
	}
	if writer == nil {
		writer = insights.NewWriter(nil, nil)
	}
	return &portfolioService{
		store:    store,
		clock:    clk,
		writer:   writer,
		settings: settings,
		log:      logger.Named("portfolio"),
	}
}

var activeOnly = repository.InvestmentFilter{Statuses: []models.InvestmentStatus{models.InvestmentStatusActive}}

// investments loads a user's investments under the inclusion policy.
func (s *portfolioService) investments(ctx context.Context, userID string, includeInactive bool) ([]models.Investment, error) {
	filter := activeOnly
	if includeInactive {
		filter = repository.InvestmentFilter{}
	}
	investments, err := s.store.GetInvestmentsByUser(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investments, nil
}

// inclusion resolves a per-request override against the configured policy.
func (s *portfolioService) inclusion(override *bool) bool {
	if override != nil {
		return *override
	}
	return s.settings.IncludeInactive
}

func (s *portfolioService) summarize(investments []models.Investment, now time.Time) (*PortfolioSummary, error) {
	snap, err := portfolio.Summarize(investments, portfolio.ProductsOf(investments), now)
	if err != nil {
		return nil, valuationError(err)
	}
	return &PortfolioSummary{
		Snapshot:             snap,
		DiversificationScore: portfolio.DiversificationScore(snap.ByType, snap.ByRisk),
		AsOf:                 now,
	}, nil
}

// GetSummary totals a user's investments as of now.
func (s *portfolioService) GetSummary(ctx context.Context, userID string, includeInactive *bool) (*PortfolioSummary, error) {
	include := s.inclusion(includeInactive)
	investments, err := s.investments(ctx, userID, include)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(investments, s.clock.Now())
	if err != nil {
		return nil, err
	}
	summary.IncludesInactive = include
	return summary, nil
}

// GetAllocation breaks down a user's active holdings.
func (s *portfolioService) GetAllocation(ctx context.Context, userID string) (*portfolio.Allocation, error) {
	investments, err := s.investments(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	allocation, err := portfolio.Allocate(investments, portfolio.ProductsOf(investments), s.clock.Now())
	if err != nil {
		return nil, valuationError(err)
	}
	return &allocation, nil
}

// GetPerformance returns monthly investing activity between from and to.
// A zero to means now.
func (s *portfolioService) GetPerformance(ctx context.Context, userID string, from, to time.Time, includeInactive *bool) ([]portfolio.PerformancePoint, error) {
	if to.IsZero() {
		to = s.clock.Now()
	}
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must not be after to")
	}

	investments, err := s.investments(ctx, userID, s.inclusion(includeInactive))
	if err != nil {
		return nil, err
	}

	series, err := portfolio.Performance(investments, portfolio.ProductsOf(investments), from, to, s.clock.Now())
	if err != nil {
		return nil, valuationError(err)
	}
	return series, nil
}

// GetUpcomingMaturities lists active investments maturing soon.
func (s *portfolioService) GetUpcomingMaturities(ctx context.Context, userID string, horizonDays int) ([]models.Investment, error) {
	if horizonDays <= 0 {
		horizonDays = s.settings.MaturityHorizonDays
	}

	investments, err := s.investments(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	upcoming, err := portfolio.UpcomingMaturities(investments, portfolio.ProductsOf(investments), s.clock.Now(), horizonDays)
	if err != nil {
		return nil, valuationError(err)
	}
	return upcoming, nil
}

// GetInsights describes the user's portfolio summary.
func (s *portfolioService) GetInsights(ctx context.Context, userID string) (*insights.Insight, error) {
	summary, err := s.GetSummary(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	insight := s.writer.Portfolio(ctx, summary.Snapshot, summary.DiversificationScore)
	return &insight, nil
}

// ComputeAndRecordSnapshots records a valuation snapshot at recordedAt for
// every user holding investments. Re-recording the same instant overwrites it.
func (s *portfolioService) ComputeAndRecordSnapshots(ctx context.Context, recordedAt time.Time) (int, error) {
	userIDs, err := s.store.UserIDsWithInvestments(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	count := 0
	for _, userID := range userIDs {
		investments, err := s.investments(ctx, userID, s.settings.IncludeInactive)
		if err != nil {
			return count, err
		}
		summary, err := s.summarize(investments, recordedAt)
		if err != nil {
			return count, err
		}

		snapshot := &models.PortfolioSnapshot{
			UserID:               userID,
			RecordedAt:           recordedAt,
			TotalInvested:        summary.TotalInvested,
			CurrentValue:         summary.TotalCurrentValue,
			TotalGain:            summary.TotalGain,
			InvestmentCount:      summary.InvestmentCount,
			DiversificationScore: summary.DiversificationScore,
		}
		if err := s.store.UpsertPortfolioSnapshot(ctx, snapshot); err != nil {
			return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		count++
	}

	s.log.Infow("Recorded portfolio snapshots", "count", count, "recorded_at", recordedAt)
	return count, nil
}

// GetSnapshots returns paginated recorded snapshots for a user within a date range.
func (s *portfolioService) GetSnapshots(ctx context.Context, userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	if to.IsZero() {
		to = s.clock.Now()
	}
	if to.Before(from) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must not be after to")
	}
	page.Defaults()

	snapshots, total, err := s.store.ListPortfolioSnapshots(ctx, userID, from, to, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, total)
	return &result, nil
}
