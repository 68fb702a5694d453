package models

import "github.com/shopspring/decimal"

// ProductType represents the kind of fixed-tenure product.
type ProductType string

const (
	ProductTypeBond  ProductType = "bond"
	ProductTypeFD    ProductType = "fd"
	ProductTypeMF    ProductType = "mf"
	ProductTypeETF   ProductType = "etf"
	ProductTypeOther ProductType = "other"
)

// ProductTypes lists every product type in display order.
var ProductTypes = []ProductType{ProductTypeBond, ProductTypeFD, ProductTypeMF, ProductTypeETF, ProductTypeOther}

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RiskLevel represents the risk classification of a product, and the risk
// profile a user invests with.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelHigh     RiskLevel = "high"
)

// RiskLevels lists every risk level from lowest to highest.
var RiskLevels = []RiskLevel{RiskLevelLow, RiskLevelModerate, RiskLevelHigh}

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLevelLow, RiskLevelModerate, RiskLevelHigh:
		return true
	}
	return false
}

// Product holds the terms investments are priced against. Once an investment
// references a product its terms never change; term edits produce a new
// version row instead.
type Product struct {
	Base
	Name              string              `gorm:"not null" json:"name"`
	Description       string              `json:"description,omitempty"`
	Type              ProductType         `gorm:"not null;index" json:"type"`
	TenureMonths      int                 `gorm:"not null" json:"tenure_months"`
	AnnualYield       decimal.Decimal     `gorm:"type:decimal(7,4);not null" json:"annual_yield"`
	RiskLevel         RiskLevel           `gorm:"not null;index" json:"risk_level"`
	MinInvestment     decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"min_investment"`
	MaxInvestment     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"max_investment"`
	IsActive          bool                `gorm:"not null;default:true;index" json:"is_active"`
	Version           int                 `gorm:"not null;default:1" json:"version"`
	PreviousVersionID *string             `gorm:"type:uuid" json:"previous_version_id,omitempty"`
}

// SameTerms reports whether p and other price investments identically.
func (p *Product) SameTerms(other *Product) bool {
	if p.Type != other.Type || p.TenureMonths != other.TenureMonths || p.RiskLevel != other.RiskLevel {
		return false
	}
	if !p.AnnualYield.Equal(other.AnnualYield) || !p.MinInvestment.Equal(other.MinInvestment) {
		return false
	}
	if p.MaxInvestment.Valid != other.MaxInvestment.Valid {
		return false
	}
	return !p.MaxInvestment.Valid || p.MaxInvestment.Decimal.Equal(other.MaxInvestment.Decimal)
}
