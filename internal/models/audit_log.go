package models

// AuditLog records sensitive user and pipeline operations. Pipeline entries
// have no user.
type AuditLog struct {
	Base
	UserID       *string `gorm:"type:uuid;index" json:"user_id"`
	Action       string  `gorm:"not null" json:"action"`
	ResourceType string  `gorm:"not null" json:"resource_type"`
	ResourceID   string  `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string  `json:"ip_address"`
	Changes      string  `json:"changes,omitempty"`
}
