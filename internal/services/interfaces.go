package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"yieldvest/internal/insights"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/portfolio"
	"yieldvest/internal/repository"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
}

// ProfileUpdate holds the user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	RiskProfile *models.RiskLevel
}

// ProductInput holds the terms of a new catalog product.
type ProductInput struct {
	Name          string
	Description   string
	Type          models.ProductType
	TenureMonths  int
	AnnualYield   decimal.Decimal
	RiskLevel     models.RiskLevel
	MinInvestment decimal.Decimal
	MaxInvestment decimal.NullDecimal
}

// ProductUpdate holds changes to a product. Nil fields are left unchanged; a
// non-nil MaxInvestment that is not Valid removes the upper bound.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Type          *models.ProductType
	TenureMonths  *int
	AnnualYield   *decimal.Decimal
	RiskLevel     *models.RiskLevel
	MinInvestment *decimal.Decimal
	MaxInvestment *decimal.NullDecimal
}

// ProductServicer defines the contract for the product catalog.
type ProductServicer interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID string, update ProductUpdate) (*models.Product, error)
	DeactivateProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
}

// InvestmentServicer defines the contract for the investment ledger.
// Returned investments carry their derived fields as of the service clock.
type InvestmentServicer interface {
	CreateInvestment(ctx context.Context, userID, productID string, amount decimal.Decimal, notes string) (*models.Investment, error)
	CancelInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error)
	UpdateNotes(ctx context.Context, userID, investmentID, notes string) (*models.Investment, error)
	GetInvestment(ctx context.Context, userID, investmentID string) (*models.Investment, error)
	ListInvestments(ctx context.Context, userID string, status *models.InvestmentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	// SettleInvestment matures an investment. A nil actualReturn settles at
	// the expected return.
	SettleInvestment(ctx context.Context, investmentID string, actualReturn *decimal.Decimal) (*models.Investment, error)
	// SettleDue matures every active investment whose maturity date has
	// passed, at its expected return, and returns how many were settled.
	SettleDue(ctx context.Context) (int, error)
}

// PortfolioSummary is a user's portfolio snapshot plus its diversification score.
type PortfolioSummary struct {
	portfolio.Snapshot
	DiversificationScore int       `json:"diversification_score"`
	IncludesInactive     bool      `json:"includes_inactive"`
	AsOf                 time.Time `json:"as_of"`
}

// PortfolioServicer defines the contract for portfolio views.
type PortfolioServicer interface {
	// GetSummary totals a user's investments. A nil includeInactive falls
	// back to the configured policy.
	GetSummary(ctx context.Context, userID string, includeInactive *bool) (*PortfolioSummary, error)
	GetAllocation(ctx context.Context, userID string) (*portfolio.Allocation, error)
	// GetPerformance and GetSnapshots treat a zero to as the current time.
	// GetPerformance applies includeInactive the way GetSummary does.
	GetPerformance(ctx context.Context, userID string, from, to time.Time, includeInactive *bool) ([]portfolio.PerformancePoint, error)
	// GetUpcomingMaturities lists active investments maturing within
	// horizonDays. A non-positive horizon uses the configured default.
	GetUpcomingMaturities(ctx context.Context, userID string, horizonDays int) ([]models.Investment, error)
	GetInsights(ctx context.Context, userID string) (*insights.Insight, error)
	ComputeAndRecordSnapshots(ctx context.Context, recordedAt time.Time) (int, error)
	GetSnapshots(ctx context.Context, userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
}

// Recommendations is a ranked product list and a note describing it.
type Recommendations struct {
	RiskProfile models.RiskLevel `json:"risk_profile"`
	Products    []models.Product `json:"products"`
	Insight     insights.Insight `json:"insight"`
}

// RecommendationServicer defines the contract for product recommendations.
type RecommendationServicer interface {
	// Recommend ranks active products for riskProfile, or for the user's
	// stored profile when riskProfile is nil. A non-positive topN uses the
	// configured default.
	Recommend(ctx context.Context, userID string, riskProfile *models.RiskLevel, topN int) (*Recommendations, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
