package usecase

import (
	"context"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProfileUsecase interface {
	GetProfile(ctx context.Context, role entity.Role, identityID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, role entity.Role, identityID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error)
	ListDoctors(ctx context.Context, approved *bool) ([]entity.DoctorProfile, error)
	ApproveDoctor(ctx context.Context, adminID, doctorID uuid.UUID) (*entity.Profile, error)
	RejectDoctor(ctx context.Context, adminID, doctorID uuid.UUID) (*entity.Profile, error)
}

type profileUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	tokenStore   service.TokenStore
	eventBus     service.SessionEventBus
	auditService service.AuditService
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	tokenStore service.TokenStore,
	eventBus service.SessionEventBus,
	auditService service.AuditService,
) ProfileUsecase {
	return &profileUsecase{
		db:           db,
		log:          log,
		profileRepo:  profileRepo,
		tokenStore:   tokenStore,
		eventBus:     eventBus,
		auditService: auditService,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, role entity.Role, identityID uuid.UUID) (*entity.Profile, error) {
	if !role.Valid() {
		return nil, ErrRoleNotAllowed
	}

	profile, err := u.profileRepo.FindByUserID(ctx, u.db, role, identityID)
	if err != nil {
		u.log.Warnf("Failed to find %s profile: %+v", role, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return profile, nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, role entity.Role, identityID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error) {
	if !role.Valid() {
		return nil, ErrRoleNotAllowed
	}
	if fields.Empty() {
		return nil, ErrNoProfileChanges
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.profileRepo.FindByUserID(ctx, tx, role, identityID)
	if err != nil {
		u.log.Warnf("Failed to find %s profile: %+v", role, err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrProfileNotFound
	}

	updated, err := u.profileRepo.Update(ctx, tx, role, identityID, fields)
	if err != nil {
		u.log.Warnf("Failed to update %s profile: %+v", role, err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrProfileNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &identityID, entity.AuditActionProfileUpdate, role.ProfileTable(), identityID.String(), existing, updated); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventUserUpdated, identityID, ClientIDFromContext(ctx))

	return updated, nil
}

func (u *profileUsecase) ListDoctors(ctx context.Context, approved *bool) ([]entity.DoctorProfile, error) {
	doctors, err := u.profileRepo.FindDoctors(ctx, u.db, approved)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}
	return doctors, nil
}

// ApproveDoctor flips the approval flag and broadcasts USER_UPDATED so an open
// session of that doctor re-resolves its profile.
func (u *profileUsecase) ApproveDoctor(ctx context.Context, adminID, doctorID uuid.UUID) (*entity.Profile, error) {
	profile, err := u.setApproval(ctx, adminID, doctorID, true)
	if err != nil {
		return nil, err
	}

	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventUserUpdated, doctorID, "")
	return profile, nil
}

// RejectDoctor clears the approval flag and revokes every session of the doctor
func (u *profileUsecase) RejectDoctor(ctx context.Context, adminID, doctorID uuid.UUID) (*entity.Profile, error) {
	profile, err := u.setApproval(ctx, adminID, doctorID, false)
	if err != nil {
		return nil, err
	}

	revoked, err := u.tokenStore.DeleteAll(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to revoke doctor sessions: %+v", err)
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"doctor_id": doctorID,
		"revoked":   revoked,
	}).Info("Doctor rejected")

	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventSignedOut, doctorID, "")
	return profile, nil
}

func (u *profileUsecase) setApproval(ctx context.Context, adminID, doctorID uuid.UUID, approved bool) (*entity.Profile, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.profileRepo.FindByUserID(ctx, tx, entity.RoleDoctor, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrDoctorNotFound
	}

	if _, err := u.profileRepo.SetDoctorApproval(ctx, tx, doctorID, approved); err != nil {
		u.log.Warnf("Failed to update doctor approval: %+v", err)
		return nil, err
	}

	action := entity.AuditActionDoctorApprove
	if !approved {
		action = entity.AuditActionDoctorReject
	}
	if err := u.auditService.LogUpdate(ctx, tx, &adminID, action, entity.TableDoctors, doctorID.String(),
		entity.JSON{"is_approved": existing.IsApproved},
		entity.JSON{"is_approved": approved},
	); err != nil {
		return nil, err
	}

	updated, err := u.profileRepo.FindByUserID(ctx, tx, entity.RoleDoctor, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return updated, nil
}
