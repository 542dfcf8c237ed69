package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	IdentityID *uuid.UUID `gorm:"type:uuid;index" json:"identity_id,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata   JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Identity *Identity `gorm:"foreignKey:IdentityID" json:"identity,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserLogin     = "user.login"
	AuditActionUserLogout    = "user.logout"
	AuditActionUserRegister  = "user.register"
	AuditActionUserVerify    = "user.verify"
	AuditActionProfileUpdate = "profile.update"
	AuditActionDoctorApprove = "doctor.approve"
	AuditActionDoctorReject  = "doctor.reject"
)
