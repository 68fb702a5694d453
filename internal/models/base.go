package models

import (
	"time"

	"gorm.io/gorm"

	"yieldvest/internal/uuid"
)

// Base is embedded by every mutable, soft-deletable record.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// assignID gives a record a time-ordered ID unless the caller chose one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.New()
	}
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
