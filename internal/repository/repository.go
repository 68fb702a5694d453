// Package repository is the storage boundary for products, investments and
// recorded portfolio snapshots. It enforces no business rules; those live in
// the services that call it.
package repository

import (
	"context"
	"errors"
	"time"

	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrConflict is returned when a conditional update matched no row
	// because the row was no longer in the expected state.
	ErrConflict = errors.New("repository: conditional update conflict")
)

// ProductFilter narrows catalog queries. Nil fields match everything.
type ProductFilter struct {
	Type      *models.ProductType
	RiskLevel *models.RiskLevel
}

// InvestmentFilter narrows investment queries. An empty Statuses matches all.
type InvestmentFilter struct {
	Statuses []models.InvestmentStatus
}

// ProductStore persists catalog products.
type ProductStore interface {
	// GetProduct resolves a product by ID, including deactivated and
	// soft-deleted products so historical investments stay resolvable.
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// GetActiveProducts lists active products in catalog order. A nil page
	// returns every match.
	GetActiveProducts(ctx context.Context, filter ProductFilter, page *pagination.PageRequest) ([]models.Product, int64, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error

	// ReplaceProduct deactivates current and creates next in one transaction.
	ReplaceProduct(ctx context.Context, current, next *models.Product) error

	// DeactivateProduct closes a product to new investments and soft-deletes it.
	DeactivateProduct(ctx context.Context, id string) error

	// SaveProductIfUnreferenced writes product's editable fields only while no
	// investment references it, checking and writing in one statement.
	// Returns ErrConflict when an investment exists.
	SaveProductIfUnreferenced(ctx context.Context, product *models.Product) error
}

// InvestmentStore persists investments. Status changes are conditional so that
// concurrent writers cannot both win a transition.
type InvestmentStore interface {
	// GetInvestment loads an investment with the product it was priced against.
	GetInvestment(ctx context.Context, id string) (*models.Investment, error)

	// GetInvestmentsByUser loads all of a user's investments, oldest first,
	// with products preloaded.
	GetInvestmentsByUser(ctx context.Context, userID string, filter InvestmentFilter) ([]models.Investment, error)

	// ListInvestmentsByUser pages a user's investments, newest first.
	ListInvestmentsByUser(ctx context.Context, userID string, filter InvestmentFilter, page pagination.PageRequest) ([]models.Investment, int64, error)

	CreateInvestment(ctx context.Context, investment *models.Investment) error

	// UpdateInvestmentStatus moves an investment from expected to next,
	// writing fields alongside. Returns ErrConflict if the investment is not
	// in the expected status.
	UpdateInvestmentStatus(ctx context.Context, id string, expected, next models.InvestmentStatus, fields map[string]interface{}) error

	UpdateInvestmentNotes(ctx context.Context, id, notes string) error

	// GetDueInvestments lists active investments maturing on or before asOf.
	GetDueInvestments(ctx context.Context, asOf time.Time) ([]models.Investment, error)

	// UserIDsWithInvestments lists every user owning at least one investment.
	UserIDsWithInvestments(ctx context.Context) ([]string, error)
}

// SnapshotStore persists the recorded portfolio valuation time series.
type SnapshotStore interface {
	// UpsertPortfolioSnapshot inserts a snapshot or replaces the values of an
	// existing one for the same user and instant.
	UpsertPortfolioSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error

	ListPortfolioSnapshots(ctx context.Context, userID string, from, to time.Time, page pagination.PageRequest) ([]models.PortfolioSnapshot, int64, error)
}

// Store is the full storage collaborator.
type Store interface {
	ProductStore
	InvestmentStore
	SnapshotStore
}
