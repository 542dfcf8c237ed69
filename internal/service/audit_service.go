package service

import (
	"context"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogEvent(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, details entity.JSON) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return s.create(ctx, tx, identityID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.create(ctx, tx, identityID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogEvent logs an action that does not change an entity (login, logout)
func (s *auditService) LogEvent(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, details entity.JSON) error {
	return s.create(ctx, tx, identityID, action, details)
}

func (s *auditService) create(ctx context.Context, tx *gorm.DB, identityID *uuid.UUID, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		IdentityID: identityID,
		Action:     action,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(ctx, tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
