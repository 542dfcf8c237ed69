package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthUsecase interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*entity.Identity, *entity.Session, error)
	SignIn(ctx context.Context, req *dto.LoginRequest) (*entity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error)
	GetSession(ctx context.Context, accessToken string) (*entity.Identity, error)
	VerifyEmail(ctx context.Context, token string) (*entity.Identity, error)
	SeedDemoAccounts(ctx context.Context) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	cfg          config.AuthConfig
	identityRepo repository.IdentityRepository
	profileRepo  repository.ProfileRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	eventBus     service.SessionEventBus
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.AuthConfig,
	identityRepo repository.IdentityRepository,
	profileRepo repository.ProfileRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	eventBus service.SessionEventBus,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		cfg:          cfg,
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		eventBus:     eventBus,
		auditService: auditService,
	}
}

// SignUp creates the identity and its role profile row in one transaction.
// A session is returned only when email confirmation is disabled.
func (u *authUsecase) SignUp(ctx context.Context, req *dto.SignUpRequest) (*entity.Identity, *entity.Session, error) {
	role, ok := entity.ParseRole(req.Role)
	if !ok || (role == entity.RoleAdmin && !u.cfg.AllowAdminSignup) {
		return nil, nil, ErrRoleNotAllowed
	}

	email := normalizeEmail(req.Email)

	existing, err := u.identityRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find identity by email: %+v", err)
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailAlreadyExists
	}

	var confirmedAt *time.Time
	if !u.cfg.RequireEmailConfirmation {
		now := time.Now()
		confirmedAt = &now
	}

	identity, err := u.createAccount(ctx, email, req.Password, req.FullName, role, req.Specialization, confirmedAt)
	if err != nil {
		return nil, nil, err
	}

	if u.cfg.RequireEmailConfirmation {
		token, err := u.jwtService.GenerateConfirmationToken(identity.ID, identity.Email)
		if err != nil {
			u.log.Warnf("Failed to generate confirmation token: %+v", err)
			return nil, nil, err
		}
		// No mail transport: the token is handed to operators through the log.
		u.log.WithFields(logrus.Fields{
			"identity_id": identity.ID,
			"email":       identity.Email,
			"token":       token,
		}).Info("Email confirmation token issued")
		return identity, nil, nil
	}

	session, err := u.issueSession(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventSignedIn, identity.ID, ClientIDFromContext(ctx))

	return identity, session, nil
}

func (u *authUsecase) createAccount(ctx context.Context, email, password, fullName string, role entity.Role, specialization string, confirmedAt *time.Time) (*entity.Identity, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	metadata := entity.JSON{
		entity.MetadataRole:     string(role),
		entity.MetadataFullName: fullName,
	}
	if role == entity.RoleDoctor && specialization != "" {
		metadata[entity.MetadataSpecialization] = specialization
	}

	identity := &entity.Identity{
		Email:            email,
		Password:         string(hashedPassword),
		Metadata:         metadata,
		EmailConfirmedAt: confirmedAt,
	}

	if err := u.identityRepo.Create(ctx, tx, identity); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create identity: %+v", err)
		return nil, err
	}

	profile := &entity.Profile{
		UserID:   identity.ID,
		FullName: fullName,
		Email:    email,
	}
	if role == entity.RoleDoctor && specialization != "" {
		profile.Specialization = &specialization
	}

	if err := u.profileRepo.Create(ctx, tx, role, profile); err != nil {
		u.log.Warnf("Failed to create %s profile: %+v", role, err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &identity.ID, entity.AuditActionUserRegister, role.ProfileTable(), identity.ID.String(), profile); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return identity, nil
}

func (u *authUsecase) SignIn(ctx context.Context, req *dto.LoginRequest) (*entity.Session, error) {
	// Read-only lookup, no transaction needed
	identity, err := u.identityRepo.FindByEmail(ctx, u.db, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find identity by email: %+v", err)
		return nil, err
	}
	if identity == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !identity.IsEmailConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	session, err := u.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	origin := ClientIDFromContext(ctx)
	if err := u.auditService.LogEvent(ctx, u.db, &identity.ID, entity.AuditActionUserLogin, entity.JSON{"client_id": origin}); err != nil {
		u.log.Warnf("Failed to audit login: %+v", err)
	}
	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventSignedIn, identity.ID, origin)

	return session, nil
}

func (u *authUsecase) SignOut(ctx context.Context, accessToken string) error {
	claims, err := u.jwtService.ValidateToken(accessToken)
	if err != nil || claims.TokenType != jwt.AccessToken {
		return ErrInvalidToken
	}

	if err := u.tokenStore.Delete(ctx, claims.IdentityID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke session: %+v", err)
		return err
	}

	origin := ClientIDFromContext(ctx)
	if err := u.auditService.LogEvent(ctx, u.db, &claims.IdentityID, entity.AuditActionUserLogout, entity.JSON{"client_id": origin}); err != nil {
		u.log.Warnf("Failed to audit logout: %+v", err)
	}
	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventSignedOut, claims.IdentityID, origin)

	return nil
}

// RefreshSession rotates the token pair. The old pair is revoked before the new one is issued.
func (u *authUsecase) RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.IdentityID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Delete(ctx, claims.IdentityID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old session: %+v", err)
		return nil, err
	}

	identity, err := u.identityRepo.FindByID(ctx, u.db, claims.IdentityID)
	if err != nil {
		u.log.Warnf("Failed to find identity by ID: %+v", err)
		return nil, err
	}
	if identity == nil {
		return nil, ErrUserNotFound
	}

	session, err := u.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	publishSessionEvent(ctx, u.eventBus, u.log, entity.SessionEventTokenRefreshed, identity.ID, ClientIDFromContext(ctx))

	return session, nil
}

// GetSession resolves the identity behind a live access token
func (u *authUsecase) GetSession(ctx context.Context, accessToken string) (*entity.Identity, error) {
	claims, err := u.jwtService.ValidateToken(accessToken)
	if err != nil || claims.TokenType != jwt.AccessToken {
		return nil, ErrInvalidToken
	}

	exists, err := u.tokenStore.Exists(ctx, claims.IdentityID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check session: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	identity, err := u.identityRepo.FindByID(ctx, u.db, claims.IdentityID)
	if err != nil {
		u.log.Warnf("Failed to find identity by ID: %+v", err)
		return nil, err
	}
	if identity == nil {
		return nil, ErrUserNotFound
	}

	return identity, nil
}

// VerifyEmail confirms the address behind a confirmation token. Repeated calls are no-ops.
func (u *authUsecase) VerifyEmail(ctx context.Context, token string) (*entity.Identity, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.ConfirmationToken {
		return nil, ErrInvalidToken
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	identity, err := u.identityRepo.FindByID(ctx, tx, claims.IdentityID)
	if err != nil {
		u.log.Warnf("Failed to find identity by ID: %+v", err)
		return nil, err
	}
	if identity == nil {
		return nil, ErrUserNotFound
	}
	if identity.IsEmailConfirmed() {
		return identity, nil
	}

	now := time.Now()
	if _, err := u.identityRepo.ConfirmEmail(ctx, tx, identity.ID, now); err != nil {
		u.log.Warnf("Failed to confirm email: %+v", err)
		return nil, err
	}
	identity.EmailConfirmedAt = &now

	if err := u.auditService.LogEvent(ctx, tx, &identity.ID, entity.AuditActionUserVerify, entity.JSON{"email": identity.Email}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return identity, nil
}

type demoAccount struct {
	email          string
	fullName       string
	role           entity.Role
	specialization string
}

var demoAccounts = []demoAccount{
	{email: "patient@example.com", fullName: "John Patient", role: entity.RolePatient},
	{email: "doctor@example.com", fullName: "Dr. Sarah Smith", role: entity.RoleDoctor, specialization: "Cardiology"},
	{email: "admin@example.com", fullName: "Admin User", role: entity.RoleAdmin},
}

const demoPassword = "password123"

// SeedDemoAccounts creates confirmed demo accounts that do not exist yet.
// The demo doctor is pre-approved.
func (u *authUsecase) SeedDemoAccounts(ctx context.Context) error {
	now := time.Now()
	for _, account := range demoAccounts {
		existing, err := u.identityRepo.FindByEmail(ctx, u.db, account.email)
		if err != nil {
			u.log.Warnf("Failed to find identity by email: %+v", err)
			return err
		}
		if existing != nil {
			continue
		}

		identity, err := u.createAccount(ctx, account.email, demoPassword, account.fullName, account.role, account.specialization, &now)
		if err != nil {
			return err
		}

		if account.role == entity.RoleDoctor {
			if _, err := u.profileRepo.SetDoctorApproval(ctx, u.db, identity.ID, true); err != nil {
				u.log.Warnf("Failed to approve demo doctor: %+v", err)
				return err
			}
		}

		u.log.WithFields(logrus.Fields{
			"email": account.email,
			"role":  account.role,
		}).Info("Seeded demo account")
	}
	return nil
}

func (u *authUsecase) issueSession(ctx context.Context, identity *entity.Identity) (*entity.Session, error) {
	accessToken, refreshToken, sessionID, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Email)
	if err != nil {
		u.log.Warnf("Failed to generate tokens: %+v", err)
		return nil, err
	}

	// One revocation key per session, alive as long as the refresh token
	if err := u.tokenStore.Store(ctx, identity.ID, sessionID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store session: %+v", err)
		return nil, err
	}

	return &entity.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(u.jwtService.GetAccessExpiry()),
		Identity:     *identity,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAuthError reports whether err is a client-side auth failure rather than an infrastructure error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrEmailNotConfirmed) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrUserNotFound)
}
