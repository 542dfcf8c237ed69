package dto

import (
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID         int64             `json:"id"`
	IdentityID *uuid.UUID        `json:"identity_id,omitempty"`
	User       *IdentityResponse `json:"user,omitempty"`
	Action     string            `json:"action"`
	Metadata   entity.JSON       `json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
