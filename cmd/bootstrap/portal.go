package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/authclient"
	deliveryHttp "go-medical-booking/internal/delivery/http"
	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/metrics"
	"go-medical-booking/internal/session"
	"go-medical-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const notificationFeedCapacity = 200

// Portal holds all dependencies of the client process. It owns exactly one
// session manager for its client id.
type Portal struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Manager     *session.Manager

	client *authclient.Client
}

// NewPortal creates the portal. The session bootstrap runs in the background;
// gated routes answer with a loading response until it completes.
func NewPortal() (*Portal, error) {
	p := &Portal{}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	p.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	p.Log = log
	log.WithField("client_id", cfg.Portal.ClientID).Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, redisClient, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	p.DB = db
	p.RedisClient = redisClient

	c, err := newCore(ctx, cfg, db, redisClient, log)
	if err != nil {
		p.Close()
		return nil, err
	}

	client, err := authclient.New(context.Background(), cfg.Portal.ClientID, c.authUsecase, c.profileUsecase, c.clientStore, c.eventBus, log)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to subscribe to session events: %w", err)
	}
	p.client = client

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	feed := session.NewNotificationFeed(notificationFeedCapacity)
	p.Manager = session.New(client, session.MultiNotifier{feed, session.NewLogNotifier(log)}, log, session.Options{
		ProfileFetchRetries: cfg.Session.ProfileFetchRetries,
		ProfileFetchBackoff: cfg.Session.ProfileFetchBackoff,
		Metrics:             collector,
	})

	portalHandler := handler.NewPortalHandler(p.Manager, feed, client, validator.NewValidator())
	routeGate := middleware.NewRouteGate(p.Manager, log, collector)
	router := deliveryHttp.NewPortalRouter(portalHandler, routeGate, middleware.NewCORSMiddleware(middleware.PortalCORSOptions), metrics.Handler(registry))

	p.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Portal.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return p, nil
}

// Run restores the session, starts the HTTP server and handles graceful shutdown
func (p *Portal) Run() {
	go func() {
		if err := p.Manager.Start(context.Background()); err != nil {
			p.Log.Warnf("Failed to restore session: %+v", err)
		}
	}()

	serve(p.Log, p.Server, p.Config.Portal.Port, p.Config.App.Env)

	waitForSignal()

	p.Log.Info("Shutting down portal...")
	shutdown(p.Log, p.Server)

	p.Close()

	p.Log.Info("Portal shutdown complete")
}

// Close stops the session manager before the backend it listens to
func (p *Portal) Close() {
	if p.Manager != nil {
		p.Manager.Close()
	}
	if p.client != nil {
		p.client.Close()
	}
	closeConnections(p.DB, p.RedisClient)
}
