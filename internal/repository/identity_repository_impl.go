package repository

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type identityRepository struct{}

func NewIdentityRepository() domainRepo.IdentityRepository {
	return &identityRepository{}
}

func (r *identityRepository) Create(ctx context.Context, db *gorm.DB, identity *entity.Identity) error {
	return db.WithContext(ctx).Create(identity).Error
}

func (r *identityRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.Identity, error) {
	var identity entity.Identity
	err := db.WithContext(ctx).Where("email = ?", email).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Identity, error) {
	var identity entity.Identity
	err := db.WithContext(ctx).Where("id = ?", id).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

// ConfirmEmail stamps the confirmation time only if the identity is still unconfirmed.
// Returns affected rows: 1 = confirmed now, 0 = unknown or already confirmed.
func (r *identityRepository) ConfirmEmail(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Identity{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Update("email_confirmed_at", at)
	return result.RowsAffected, result.Error
}
