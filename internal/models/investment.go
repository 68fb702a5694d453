package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus represents where an investment is in its lifecycle.
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusMatured   InvestmentStatus = "matured"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s InvestmentStatus) Valid() bool {
	switch s {
	case InvestmentStatusActive, InvestmentStatusMatured, InvestmentStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s InvestmentStatus) Terminal() bool {
	return s == InvestmentStatusMatured || s == InvestmentStatusCancelled
}

// Investment is a user's placement into a product. ExpectedReturn and
// MaturityDate are fixed at creation from the product terms in effect then.
type Investment struct {
	Base
	UserID         string              `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID      string              `gorm:"type:uuid;not null;index" json:"product_id"`
	Amount         decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"amount"`
	InvestedAt     time.Time           `gorm:"not null" json:"invested_at"`
	Status         InvestmentStatus    `gorm:"not null;default:'active';index" json:"status"`
	ExpectedReturn decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"expected_return"`
	ActualReturn   decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"actual_return"`
	MaturityDate   time.Time           `gorm:"not null;index" json:"maturity_date"`
	Notes          string              `json:"notes"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	SettledAt      *time.Time          `json:"settled_at,omitempty"`

	// Populated at query time by the valuation engine; never persisted.
	CurrentValue   *decimal.Decimal `gorm:"-" json:"current_value,omitempty"`
	GainLoss       *GainLoss        `gorm:"-" json:"gain_loss,omitempty"`
	DaysToMaturity *int             `gorm:"-" json:"days_to_maturity,omitempty"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// GainLoss is the difference between current value and the amount invested.
type GainLoss struct {
	Absolute   decimal.Decimal `json:"absolute"`
	Percentage decimal.Decimal `json:"percentage"`
}
