package database

import (
	"fmt"

	"go-medical-booking/internal/domain/entity"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the identity, profile and audit tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Identity{},
		&entity.PatientProfile{},
		&entity.DoctorProfile{},
		&entity.AdminProfile{},
		&entity.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
