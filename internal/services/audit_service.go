package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/pkg/logger"
	"gorm.io/gorm"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, actorID *uint, action, entity string, entityID uint, details string) error {
	logEntry := &models.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// Record logs an audit entry without failing the caller. A nil service records nothing.
func (s *AuditService) Record(ctx context.Context, actorID *uint, action, entity string, entityID uint, details string) {
	if s == nil {
		return
	}
	if err := s.Log(ctx, actorID, action, entity, entityID, details); err != nil {
		logger.Warn(fmt.Sprintf("[Audit] Failed to record %s for %s %d: %v", action, entity, entityID, err))
	}
}

// List retrieves audit entries for one entity, newest first
func (s *AuditService) List(ctx context.Context, entity string, entityID uint, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
