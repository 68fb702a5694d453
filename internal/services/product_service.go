package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/repository"
)

var maxAnnualYield = decimal.NewFromInt(100)

// productService manages the product catalog.
type productService struct {
	store repository.ProductStore
}

// NewProductService creates a new ProductServicer.
func NewProductService(store repository.ProductStore) ProductServicer {
	return &productService{store: store}
}

// validateTerms checks a product's terms before it is persisted.
func validateTerms(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case !p.Type.Valid():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be one of bond, fd, mf, etf, other")
	case p.TenureMonths < 1:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "tenure_months must be at least 1")
	case p.AnnualYield.IsNegative() || p.AnnualYield.GreaterThan(maxAnnualYield):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "annual_yield must be between 0 and 100")
	case !p.RiskLevel.Valid():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "risk_level must be one of low, moderate, high")
	case !p.MinInvestment.IsPositive():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "min_investment must be greater than zero")
	case p.MaxInvestment.Valid && !p.MaxInvestment.Decimal.GreaterThan(p.MinInvestment):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "max_investment must be greater than min_investment")
	}
	return nil
}

// CreateProduct adds a new active product at version 1.
func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Type:          input.Type,
		TenureMonths:  input.TenureMonths,
		AnnualYield:   input.AnnualYield,
		RiskLevel:     input.RiskLevel,
		MinInvestment: input.MinInvestment,
		MaxInvestment: input.MaxInvestment,
		IsActive:      true,
		Version:       1,
	}
	if err := validateTerms(product); err != nil {
		return nil, err
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// UpdateProduct applies update to the current version of a product. Terms of
// a product that investments already reference are never rewritten: a new
// version is created and the old one is closed to new investments.
func (s *productService) UpdateProduct(ctx context.Context, productID string, update ProductUpdate) (*models.Product, error) {
	current, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	if !current.IsActive || current.DeletedAt.Valid {
		return nil, apperrors.WithMessage(apperrors.ErrProductInactive, "Only the current version of an active product can be edited")
	}

	next := *current
	applyProductUpdate(&next, update)
	if err := validateTerms(&next); err != nil {
		return nil, err
	}

	if current.SameTerms(&next) {
		if err := s.store.SaveProduct(ctx, &next); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &next, nil
	}

	// The reference check and the write are one statement, so an investment
	// created after GetProduct still forces a new version.
	err = s.store.SaveProductIfUnreferenced(ctx, &next)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return s.newVersion(ctx, current, next)
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &next, nil
}

func (s *productService) newVersion(ctx context.Context, current *models.Product, next models.Product) (*models.Product, error) {
	previousID := current.ID
	next.Base = models.Base{}
	next.IsActive = true
	next.Version = current.Version + 1
	next.PreviousVersionID = &previousID

	if err := s.store.ReplaceProduct(ctx, current, &next); err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	return &next, nil
}

func applyProductUpdate(p *models.Product, update ProductUpdate) {
	if update.Name != nil {
		p.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Type != nil {
		p.Type = *update.Type
	}
	if update.TenureMonths != nil {
		p.TenureMonths = *update.TenureMonths
	}
	if update.AnnualYield != nil {
		p.AnnualYield = *update.AnnualYield
	}
	if update.RiskLevel != nil {
		p.RiskLevel = *update.RiskLevel
	}
	if update.MinInvestment != nil {
		p.MinInvestment = *update.MinInvestment
	}
	if update.MaxInvestment != nil {
		p.MaxInvestment = *update.MaxInvestment
	}
}

// DeactivateProduct closes a product to new investments. It stays resolvable
// for the investments already made against it.
func (s *productService) DeactivateProduct(ctx context.Context, productID string) error {
	if err := s.store.DeactivateProduct(ctx, productID); err != nil {
		return storeError(err, apperrors.ErrProductNotFound)
	}
	return nil
}

// GetProduct returns a product by ID, including inactive versions.
func (s *productService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrProductNotFound)
	}
	return product, nil
}

// ListProducts returns a page of active products.
func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	products, total, err := s.store.GetActiveProducts(ctx, filter, &page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, total)
	return &result, nil
}
