package repository

import (
	"context"
	"errors"
	"fmt"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnknownRole = errors.New("unknown role")

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(ctx context.Context, db *gorm.DB, role entity.Role, profile *entity.Profile) error {
	base := entity.ProfileBase{
		UserID:          profile.UserID,
		FullName:        profile.FullName,
		Email:           profile.Email,
		ProfileImageURL: profile.ProfileImageURL,
	}

	switch role {
	case entity.RolePatient:
		return db.WithContext(ctx).Create(&entity.PatientProfile{ProfileBase: base}).Error
	case entity.RoleDoctor:
		doctor := &entity.DoctorProfile{ProfileBase: base}
		if profile.Specialization != nil {
			doctor.Specialization = *profile.Specialization
		}
		if profile.ConsultationFee != nil {
			doctor.ConsultationFee = *profile.ConsultationFee
		}
		return db.WithContext(ctx).Create(doctor).Error
	case entity.RoleAdmin:
		return db.WithContext(ctx).Create(&entity.AdminProfile{ProfileBase: base}).Error
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

func (r *profileRepository) FindByUserID(ctx context.Context, db *gorm.DB, role entity.Role, userID uuid.UUID) (*entity.Profile, error) {
	query := db.WithContext(ctx).Where("user_id = ?", userID)

	var err error
	var profile *entity.Profile
	switch role {
	case entity.RolePatient:
		var row entity.PatientProfile
		if err = query.First(&row).Error; err == nil {
			profile = row.ToProfile()
		}
	case entity.RoleDoctor:
		var row entity.DoctorProfile
		if err = query.First(&row).Error; err == nil {
			profile = row.ToProfile()
		}
	case entity.RoleAdmin:
		var row entity.AdminProfile
		if err = query.First(&row).Error; err == nil {
			profile = row.ToProfile()
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// Update applies the non-nil fields and returns the fresh row, or (nil, nil) if no row exists.
// Specialization and consultation fee are ignored for non-doctor roles.
func (r *profileRepository) Update(ctx context.Context, db *gorm.DB, role entity.Role, userID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error) {
	model, err := profileModel(role)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.FullName != nil {
		updates["full_name"] = *fields.FullName
	}
	if fields.ProfileImageURL != nil {
		updates["profile_image_url"] = *fields.ProfileImageURL
	}
	if role == entity.RoleDoctor {
		if fields.Specialization != nil {
			updates["specialization"] = *fields.Specialization
		}
		if fields.ConsultationFee != nil {
			updates["consultation_fee"] = *fields.ConsultationFee
		}
	}

	if len(updates) > 0 {
		result := db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, nil
		}
	}

	return r.FindByUserID(ctx, db, role, userID)
}

func (r *profileRepository) FindDoctors(ctx context.Context, db *gorm.DB, approved *bool) ([]entity.DoctorProfile, error) {
	var doctors []entity.DoctorProfile
	query := db.WithContext(ctx)
	if approved != nil {
		query = query.Where("is_approved = ?", *approved)
	}
	err := query.Order("created_at ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *profileRepository) SetDoctorApproval(ctx context.Context, db *gorm.DB, userID uuid.UUID, approved bool) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Update("is_approved", approved)
	return result.RowsAffected, result.Error
}

func profileModel(role entity.Role) (interface{}, error) {
	switch role {
	case entity.RolePatient:
		return &entity.PatientProfile{}, nil
	case entity.RoleDoctor:
		return &entity.DoctorProfile{}, nil
	case entity.RoleAdmin:
		return &entity.AdminProfile{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}
