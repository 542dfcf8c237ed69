package bootstrap

import (
	"context"
	"fmt"

	"go-medical-booking/config"
	"go-medical-booking/internal/infrastructure/cache"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// core is the usecase layer shared by the API and the portal
type core struct {
	authUsecase     usecase.AuthUsecase
	profileUsecase  usecase.ProfileUsecase
	auditLogUsecase usecase.AuditLogUsecase

	eventBus    service.SessionEventBus
	clientStore service.ClientSessionStore
	tokenStore  service.TokenStore
}

// connect opens PostgreSQL and, when REDIS_HOST is set, Redis concurrently
func connect(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*gorm.DB, *redis.Client, error) {
	var (
		db          *gorm.DB
		redisClient *redis.Client
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conn, err := openDatabase(cfg.DB, log)
		if err != nil {
			return err
		}
		db = conn
		return nil
	})
	if cfg.Redis.Host != "" {
		g.Go(func() error {
			client, err := cache.NewRedisClient(gctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			redisClient = client
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		closeConnections(db, redisClient)
		return nil, nil, err
	}

	if err := database.AutoMigrate(db); err != nil {
		closeConnections(db, redisClient)
		return nil, nil, err
	}

	return db, redisClient, nil
}

// openDatabase uses PostgreSQL unless DB_DRIVER=sqlite, where DB_NAME is the SQLite DSN
func openDatabase(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		log.WithField("dsn", cfg.Name).Warn("Using SQLite database")
		return database.NewSQLiteConnection(cfg.Name)
	}
	return database.NewPostgresConnection(cfg, log)
}

func newCore(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*core, error) {
	c := &core{}

	if redisClient != nil {
		c.tokenStore = service.NewRedisTokenStore(redisClient, log)
		c.eventBus = service.NewRedisSessionEventBus(redisClient, log)
		c.clientStore = service.NewRedisClientSessionStore(redisClient)
	} else {
		log.Warn("REDIS_HOST is not set, sessions and session events stay in this process")
		c.tokenStore = service.NewMemoryTokenStore()
		c.eventBus = service.NewMemorySessionEventBus()
		c.clientStore = service.NewMemoryClientSessionStore()
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize repositories
	identityRepo := repository.NewIdentityRepository()
	profileRepo := repository.NewProfileRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	c.authUsecase = usecase.NewAuthUsecase(db, log, cfg.Auth, identityRepo, profileRepo, jwtService, c.tokenStore, c.eventBus, auditService)
	c.profileUsecase = usecase.NewProfileUsecase(db, log, profileRepo, c.tokenStore, c.eventBus, auditService)
	c.auditLogUsecase = usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	if cfg.App.SeedDemo {
		if err := c.authUsecase.SeedDemoAccounts(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed demo accounts: %w", err)
		}
		log.Info("Demo accounts seeded")
	}

	return c, nil
}
