package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
)

type auditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// AuditService appends an audit trail row per mutating action. Failures are
// logged and swallowed: auditing must never fail the request it describes.
type AuditService struct {
	store  auditStore
	logger *zap.Logger
}

// NewAuditService instantiates AuditService.
func NewAuditService(store auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{store: store, logger: logger}
}

// Record persists one audit row. details may be nil.
func (s *AuditService) Record(ctx context.Context, userID *string, action, resource string, resourceID *string, details interface{}, ip, userAgent string) {
	if s == nil || s.store == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("failed to marshal audit details", zap.Error(err))
		} else {
			entry.Details = payload
		}
	}
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
}
