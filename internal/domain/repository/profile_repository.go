package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository reads and writes the role-specific profile tables.
// Lookups return (nil, nil) when no row exists.
type ProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, role entity.Role, profile *entity.Profile) error
	FindByUserID(ctx context.Context, db *gorm.DB, role entity.Role, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, db *gorm.DB, role entity.Role, userID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error)
	FindDoctors(ctx context.Context, db *gorm.DB, approved *bool) ([]entity.DoctorProfile, error)
	SetDoctorApproval(ctx context.Context, db *gorm.DB, userID uuid.UUID, approved bool) (int64, error)
}
