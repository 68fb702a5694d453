package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email               string       `gorm:"uniqueIndex;not null" json:"email"`
	Password            string       `gorm:"not null" json:"-"`
	FirstName           string       `json:"first_name"`
	LastName            string       `json:"last_name"`
	IsActive            bool         `gorm:"default:true" json:"is_active"`
	RiskProfile         RiskLevel    `gorm:"not null;default:'moderate'" json:"risk_profile"`
	RefreshTokenHash    string       `gorm:"size:64" json:"-"`
	FailedLoginAttempts int          `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time   `json:"-"`
	LastLoginAt         *time.Time   `json:"last_login_at,omitempty"`
	Investments         []Investment `gorm:"foreignKey:UserID" json:"investments,omitempty"`
}
