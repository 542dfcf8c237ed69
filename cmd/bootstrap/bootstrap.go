package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-medical-booking/config"
	deliveryHttp "go-medical-booking/internal/delivery/http"
	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/metrics"
	"go-medical-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies of the auth API process
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	rateLimiter *middleware.RateLimiter
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize database and Redis
	db, redisClient, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.RedisClient = redisClient

	// Initialize all layers
	c, err := newCore(ctx, cfg, db, redisClient, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	app.rateLimiter = middleware.NewRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst, log, collector)
	app.Server = initializeServer(cfg, c, app.rateLimiter, metrics.Handler(registry))

	return app, nil
}

// setupLogger configures the standard logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, c *core, rateLimiter *middleware.RateLimiter, metricsHandler http.Handler) *http.Server {
	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.authUsecase, customValidator)
	profileHandler := handler.NewProfileHandler(c.profileUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(c.profileUsecase)
	auditLogHandler := handler.NewAuditLogHandler(c.auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(c.authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(middleware.APICORSOptions)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		profileHandler,
		adminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimiter,
		metricsHandler,
	)

	// Create server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	serve(app.Log, app.Server, app.Config.App.Port, app.Config.App.Env)

	// Wait for interrupt signal
	waitForSignal()

	app.Log.Info("Shutting down server...")
	shutdown(app.Log, app.Server)

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
	closeConnections(app.DB, app.RedisClient)
}

// serve starts srv in a goroutine
func serve(log *logrus.Logger, srv *http.Server, port, env string) {
	go func() {
		log.Infof("Server starting on port %s", port)
		log.Infof("Environment: %s", env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
}

// waitForSignal blocks until an interrupt signal is received
func waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func shutdown(log *logrus.Logger, srv *http.Server) {
	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
}

func closeConnections(db *gorm.DB, redisClient *redis.Client) {
	// Close database connection
	if db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}
}
