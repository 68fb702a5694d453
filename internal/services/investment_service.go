package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"yieldvest/internal/clock"
	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/logger"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/repository"
	"yieldvest/internal/valuation"
)

// investmentService is the investment ledger. It enforces amount bounds and
// the status state machine, and leaves atomicity of transitions to the store.
type investmentService struct {
	store repository.Store
	clock clock.Clock
	log   *zap.SugaredLogger
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(store repository.Store, clk clock.Clock) InvestmentServicer {
	return &investmentService{store: store, clock: clk, log: logger.Named("ledger")}
}

// checkBounds rejects amounts outside the product's investment bounds. An
// absent maximum is unbounded.
func checkBounds(product *models.Product, amount decimal.Decimal) error {
	if amount.LessThan(product.MinInvestment) {
		return apperrors.WithMessage(apperrors.ErrAmountBelowMinimum,
			fmt.Sprintf("Amount is below minimum investment of %s", product.MinInvestment.StringFixed(2)))
	}
	if product.MaxInvestment.Valid && amount.GreaterThan(product.MaxInvestment.Decimal) {
		return apperrors.WithMessage(apperrors.ErrAmountAboveMaximum,
			fmt.Sprintf("Amount is above maximum investment of %s", product.MaxInvestment.Decimal.StringFixed(2)))
	}
	return nil
}

// transitionError reports why an investment in status cannot leave it.
func transitionError(status models.InvestmentStatus) error {
	switch status {
	case models.InvestmentStatusMatured:
		return apperrors.ErrAlreadyMatured
	case models.InvestmentStatusCancelled:
		return apperrors.ErrAlreadyCancelled
	}
	return nil
}

// CreateInvestment places amount into a product, fixing the expected return
// and maturity date from the product terms read now.
func (s *investmentService) CreateInvestment(ctx context.Context, userID, productID string, amount decimal.Decimal, notes string) (*models.Investment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(valuation.CurrencyPlaces)) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most 2 decimal places")
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	if !product.IsActive || product.DeletedAt.Valid {
		return nil, apperrors.ErrProductInactive
	}
	if err := checkBounds(product, amount); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	investment := &models.Investment{
		UserID:         userID,
		ProductID:      product.ID,
		Amount:         amount,
		InvestedAt:     now,
		Status:         models.InvestmentStatusActive,
		ExpectedReturn: valuation.ExpectedReturn(amount, product.AnnualYield, product.TenureMonths),
		MaturityDate:   valuation.MaturityDate(now, product.TenureMonths),
		Notes:          notes,
	}
	if err := s.store.CreateInvestment(ctx, investment); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	investment.Product = product
	if err := valuation.Attach(investment, now); err != nil {
		return nil, valuationError(err)
	}
	return investment, nil
}

// ownedInvestment loads an investment, hiding those of other users.
func (s *investmentService) ownedInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	investment, err := s.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrInvestmentNotFound)
	}
	if investment.UserID != userID {
		return nil, apperrors.ErrInvestmentNotFound
	}
	return investment, nil
}

// transition moves investment from active to next. If another writer got
// there first, the error reflects the status it left behind.
func (s *investmentService) transition(ctx context.Context, investment *models.Investment, next models.InvestmentStatus, fields map[string]interface{}) error {
	if err := transitionError(investment.Status); err != nil {
		return err
	}

	err := s.store.UpdateInvestmentStatus(ctx, investment.ID, models.InvestmentStatusActive, next, fields)
	if err == nil {
		investment.Status = next
		return nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	latest, getErr := s.store.GetInvestment(ctx, investment.ID)
	if getErr != nil {
		return storeError(getErr, apperrors.ErrInvestmentNotFound)
	}
	if terr := transitionError(latest.Status); terr != nil {
		return terr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// CancelInvestment moves an active investment to cancelled. Expected return
// and maturity date are kept as they were.
func (s *investmentService) CancelInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	investment, err := s.ownedInvestment(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.transition(ctx, investment, models.InvestmentStatusCancelled, map[string]interface{}{"cancelled_at": now}); err != nil {
		return nil, err
	}
	investment.CancelledAt = &now

	if err := valuation.Attach(investment, now); err != nil {
		return nil, valuationError(err)
	}
	return investment, nil
}

// UpdateNotes replaces the notes on an owned investment in any status.
func (s *investmentService) UpdateNotes(ctx context.Context, userID, investmentID, notes string) (*models.Investment, error) {
	investment, err := s.ownedInvestment(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateInvestmentNotes(ctx, investmentID, notes); err != nil {
		return nil, storeError(err, apperrors.ErrInvestmentNotFound)
	}
	investment.Notes = notes

	if err := valuation.Attach(investment, s.clock.Now()); err != nil {
		return nil, valuationError(err)
	}
	return investment, nil
}

// GetInvestment returns an owned investment valued now.
func (s *investmentService) GetInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error) {
	investment, err := s.ownedInvestment(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}
	if err := valuation.Attach(investment, s.clock.Now()); err != nil {
		return nil, valuationError(err)
	}
	return investment, nil
}

// ListInvestments returns a page of the user's investments, newest first,
// each valued now.
func (s *investmentService) ListInvestments(ctx context.Context, userID string, status *models.InvestmentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	var filter repository.InvestmentFilter
	if status != nil {
		if !status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be one of active, matured, cancelled")
		}
		filter.Statuses = []models.InvestmentStatus{*status}
	}

	investments, total, err := s.store.ListInvestmentsByUser(ctx, userID, filter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.clock.Now()
	for i := range investments {
		if err := valuation.Attach(&investments[i], now); err != nil {
			return nil, valuationError(err)
		}
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, total)
	return &result, nil
}

// SettleInvestment records the settlement of an active investment.
func (s *investmentService) SettleInvestment(ctx context.Context, investmentID string, actualReturn *decimal.Decimal) (*models.Investment, error) {
	investment, err := s.store.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrInvestmentNotFound)
	}

	actual := investment.ExpectedReturn
	if actualReturn != nil {
		if actualReturn.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "actual_return must not be negative")
		}
		actual = actualReturn.Round(valuation.CurrencyPlaces)
	}

	now := s.clock.Now()
	if err := s.transition(ctx, investment, models.InvestmentStatusMatured, map[string]interface{}{
		"actual_return": actual,
		"settled_at":    now,
	}); err != nil {
		return nil, err
	}
	investment.ActualReturn = decimal.NewNullDecimal(actual)
	investment.SettledAt = &now

	if err := valuation.Attach(investment, now); err != nil {
		return nil, valuationError(err)
	}
	return investment, nil
}

// SettleDue settles every active investment past its maturity date at its
// expected return. Investments that leave the active state concurrently are
// skipped.
func (s *investmentService) SettleDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.store.GetDueInvestments(ctx, now)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settled := 0
	for i := range due {
		inv := &due[i]
		err := s.store.UpdateInvestmentStatus(ctx, inv.ID, models.InvestmentStatusActive, models.InvestmentStatusMatured,
			map[string]interface{}{
				"actual_return": inv.ExpectedReturn,
				"settled_at":    now,
			})
		if errors.Is(err, repository.ErrConflict) {
			s.log.Infow("Investment left active state before settlement", "investment_id", inv.ID)
			continue
		}
		if err != nil {
			return settled, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		settled++
	}

	s.log.Infow("Settled due investments", "due", len(due), "settled", settled, "as_of", now)
	return settled, nil
}
