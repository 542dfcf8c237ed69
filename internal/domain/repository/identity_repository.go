package repository

import (
	"context"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdentityRepository interface {
	Create(ctx context.Context, db *gorm.DB, identity *entity.Identity) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Identity, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Identity, error)
	ConfirmEmail(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
}
