package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	auth       AuthUsecase
	profiles   ProfileUsecase
	auditLogs  AuditLogUsecase
	tokenStore service.TokenStore
	jwtService *jwt.JWTService

	mu     sync.Mutex
	events []entity.SessionEvent
}

func newTestEnv(t *testing.T, authCfg config.AuthConfig) *testEnv {
	t.Helper()

	db, err := database.NewSQLiteConnection(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	env := &testEnv{
		db:         db,
		tokenStore: service.NewMemoryTokenStore(),
		jwtService: jwt.NewJWTService(config.JWTConfig{
			Secret:             "test-secret",
			AccessExpiry:       15 * time.Minute,
			RefreshExpiry:      time.Hour,
			ConfirmationExpiry: time.Hour,
		}),
	}

	bus := service.NewMemorySessionEventBus()
	if _, err := bus.Subscribe(context.Background(), env.record); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	identityRepo := repository.NewIdentityRepository()
	profileRepo := repository.NewProfileRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	auditService := service.NewAuditService(log, auditLogRepo)

	env.auth = NewAuthUsecase(db, log, authCfg, identityRepo, profileRepo, env.jwtService, env.tokenStore, bus, auditService)
	env.profiles = NewProfileUsecase(db, log, profileRepo, env.tokenStore, bus, auditService)
	env.auditLogs = NewAuditLogUsecase(db, log, auditLogRepo)

	return env
}

func (e *testEnv) record(event entity.SessionEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *testEnv) lastEvent() entity.SessionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return entity.SessionEvent{}
	}
	return e.events[len(e.events)-1]
}

// signUpConfirmed registers an account with email confirmation disabled and returns its session
func (e *testEnv) signUpConfirmed(t *testing.T, email string, role entity.Role, specialization string) *entity.Session {
	t.Helper()
	_, session, err := e.auth.SignUp(context.Background(), &dto.SignUpRequest{
		Email:          email,
		Password:       "password123",
		FullName:       "Test " + role.String(),
		Role:           role.String(),
		Specialization: specialization,
	})
	if err != nil {
		t.Fatalf("SignUp(%s): %v", email, err)
	}
	if session == nil {
		t.Fatalf("SignUp(%s) returned no session", email)
	}
	return session
}

var openSignup = config.AuthConfig{RequireEmailConfirmation: false, AllowAdminSignup: true}
