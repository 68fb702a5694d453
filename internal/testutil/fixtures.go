package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"yieldvest/internal/models"
	"yieldvest/internal/valuation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Epoch is the instant fixtures are anchored to unless a test says otherwise.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hash),
		IsActive:    true,
		RiskProfile: models.RiskLevelModerate,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// ProductOption customises a fixture product before it is saved.
type ProductOption func(*models.Product)

// WithTerms sets the product type, risk, tenure and yield.
func WithTerms(typ models.ProductType, risk models.RiskLevel, tenureMonths int, annualYield string) ProductOption {
	return func(p *models.Product) {
		p.Type = typ
		p.RiskLevel = risk
		p.TenureMonths = tenureMonths
		p.AnnualYield = decimal.RequireFromString(annualYield)
	}
}

// WithBounds sets the investment bounds. An empty max means unbounded.
func WithBounds(min, max string) ProductOption {
	return func(p *models.Product) {
		p.MinInvestment = decimal.RequireFromString(min)
		if max == "" {
			p.MaxInvestment = decimal.NullDecimal{}
			return
		}
		p.MaxInvestment = decimal.NewNullDecimal(decimal.RequireFromString(max))
	}
}

// Inactive marks the product as closed to new investments.
func Inactive() ProductOption {
	return func(p *models.Product) { p.IsActive = false }
}

// CreateTestProduct creates an active 12-month moderate-risk bond yielding 12%
// with bounds 1000..100000, adjusted by opts.
func CreateTestProduct(t *testing.T, db *gorm.DB, opts ...ProductOption) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          fmt.Sprintf("Product %d", nextID()),
		Type:          models.ProductTypeBond,
		TenureMonths:  12,
		AnnualYield:   decimal.NewFromInt(12),
		RiskLevel:     models.RiskLevelModerate,
		MinInvestment: decimal.NewFromInt(1000),
		MaxInvestment: decimal.NewNullDecimal(decimal.NewFromInt(100000)),
		IsActive:      true,
		Version:       1,
	}
	for _, opt := range opts {
		opt(product)
	}

	active := product.IsActive
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	// GORM skips zero-valued fields with defaults on create.
	if !active {
		if err := db.Model(product).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate test product: %v", err)
		}
	}
	return product
}

// CreateTestInvestment creates an active investment priced against product,
// placed at investedAt.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID string, product *models.Product, amount string, investedAt time.Time) *models.Investment {
	t.Helper()

	amt := decimal.RequireFromString(amount)
	investment := &models.Investment{
		UserID:         userID,
		ProductID:      product.ID,
		Amount:         amt,
		InvestedAt:     investedAt,
		Status:         models.InvestmentStatusActive,
		ExpectedReturn: valuation.ExpectedReturn(amt, product.AnnualYield, product.TenureMonths),
		MaturityDate:   valuation.MaturityDate(investedAt, product.TenureMonths),
	}
	if err := db.Omit(clause.Associations).Create(investment).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	investment.Product = product
	return investment
}

// SetInvestmentStatus forces an investment into status, bypassing the ledger.
func SetInvestmentStatus(t *testing.T, db *gorm.DB, investment *models.Investment, status models.InvestmentStatus) {
	t.Helper()
	if err := db.Model(&models.Investment{}).Where("id = ?", investment.ID).Update("status", status).Error; err != nil {
		t.Fatalf("failed to update investment status: %v", err)
	}
	investment.Status = status
}
