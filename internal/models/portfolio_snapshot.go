package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PortfolioSnapshot is a recorded point-in-time valuation of a user's
// investments, used to chart portfolio value over time.
// Snapshots are append-or-overwrite time series keyed by (user, instant),
// so they carry no timestamps of their own and are never soft deleted.
type PortfolioSnapshot struct {
	ID                   string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string          `gorm:"type:uuid;not null;uniqueIndex:uq_portfolio_snapshots_user_time" json:"user_id"`
	RecordedAt           time.Time       `gorm:"not null;uniqueIndex:uq_portfolio_snapshots_user_time" json:"recorded_at"`
	TotalInvested        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_invested"`
	CurrentValue         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"current_value"`
	TotalGain            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_gain"`
	InvestmentCount      int             `gorm:"not null" json:"investment_count"`
	DiversificationScore int             `gorm:"not null" json:"diversification_score"`
}

func (p *PortfolioSnapshot) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
