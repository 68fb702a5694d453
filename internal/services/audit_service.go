package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yieldvest/internal/logger"
	"yieldvest/internal/models"
)

// Audit actions.
const (
	AuditCreateInvestment = "CREATE_INVESTMENT"
	AuditCancelInvestment = "CANCEL_INVESTMENT"
	AuditUpdateNotes      = "UPDATE_INVESTMENT_NOTES"
	AuditSettleInvestment = "SETTLE_INVESTMENT"
	AuditCreateProduct    = "CREATE_PRODUCT"
	AuditUpdateProduct    = "UPDATE_PRODUCT"
	AuditDeactivate       = "DEACTIVATE_PRODUCT"
	AuditUpdateProfile    = "UPDATE_PROFILE"
)

// Audit resource types.
const (
	ResourceInvestment = "investment"
	ResourceProduct    = "product"
	ResourceUser       = "user"
)

type auditService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db, log: logger.Named("audit")}
}

func (s *auditService) encodeChanges(action string, changes map[string]interface{}) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		s.log.Errorw("unencodable audit changes", "action", action, "error", err)
		return "{}"
	}
	return string(data)
}

// Log records who did what to which resource. Pipeline callers pass an empty
// userID. A failed write is logged and swallowed so auditing can never fail
// the request it describes.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      s.encodeChanges(action, changes),
	}
	if userID != "" {
		entry.UserID = &userID
	}

	if err := s.db.Create(&entry).Error; err != nil {
		s.log.Errorw("audit write failed",
			"error", err,
			"action", action,
			"resource", resourceType+"/"+resourceID,
			"user_id", userID,
		)
	}
}
