package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/healthportal/portal/internal/config"
	"github.com/healthportal/portal/internal/domain/account"
	"github.com/healthportal/portal/internal/domain/dashboard"
	"github.com/healthportal/portal/internal/domain/datastore"
	"github.com/healthportal/portal/internal/domain/notification"
	"github.com/healthportal/portal/internal/domain/search"
	"github.com/healthportal/portal/internal/platform/auth"
	"github.com/healthportal/portal/internal/platform/backend"
	"github.com/healthportal/portal/internal/platform/db"
	"github.com/healthportal/portal/internal/platform/metrics"
	"github.com/healthportal/portal/internal/platform/middleware"
	"github.com/healthportal/portal/internal/platform/router"
	"github.com/healthportal/portal/internal/platform/session"
	"github.com/healthportal/portal/internal/platform/websocket"
)

const (
	version        = "0.1.0"
	evictInterval  = time.Minute
	requestTimeout = 30 * time.Second
	bodyLimit      = "1M"
)

// server is the assembled HTTP application plus the background loops it
// needs while running.
type server struct {
	echo     *echo.Echo
	manager  *session.Manager
	limiter  *middleware.RateLimiter
	login    *middleware.RateLimiter
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	renderer *router.Renderer
}

// buildTable registers every screen on a fresh route table.
func buildTable(logger zerolog.Logger) (*router.Table, error) {
	table := router.NewTable("/", "/dashboard")
	if err := dashboard.Register(table, logger); err != nil {
		return nil, fmt.Errorf("register screens: %w", err)
	}
	return table, nil
}

// newServer wires the portal. pool is nil when sessions are kept in memory.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (*server, error) {
	m := metrics.New()
	client := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
	}, logger, backend.WithObserver(m))

	storage := account.NewMemoryStorage()
	if pool != nil {
		storage = account.NewPGStorage(pool)
	}

	hub := websocket.NewHub(logger)
	manager := session.NewManager(session.Options{
		Storage:   storage,
		Backend:   client,
		Publisher: hub,
		Recorder:  m,
		Logger:    logger,
		TTL:       cfg.SessionTTL,
	})

	table, err := buildTable(logger)
	if err != nil {
		return nil, err
	}
	renderer := router.NewRenderer(table, m)

	limitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if limitCfg.RequestsPerSecond <= 0 {
		limitCfg = middleware.DefaultRateLimitConfig()
	}
	limiter := middleware.NewRateLimiter(limitCfg)
	login := middleware.NewRateLimiter(middleware.LoginRateLimitConfig(cfg.LoginRateLimit))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(bodyLimit))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(requestTimeout))
	e.Use(m.Middleware())

	// Infrastructure endpoints skip the session.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"version":  version,
			"sessions": manager.Len(),
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(manager.Middleware(session.MiddlewareConfig{
		Signer: auth.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL),
		Secure: cfg.IsProduction(),
	}))
	api.Use(middleware.Audit(logger))

	account.NewHandler(session.AccountFrom).RegisterRoutes(api, login.Middleware())
	search.NewHandler(session.SearchFrom).RegisterRoutes(api)
	notification.NewHandler(session.NotificationsFrom).RegisterRoutes(api, auth.RequireAuthenticated())
	datastore.NewHandler(session.DataFrom, session.UserFrom, session.SearchTerm).RegisterRoutes(api)
	router.NewHandler(renderer, session.From).RegisterRoutes(api)
	websocket.NewHandler(hub, session.UserID, cfg.CORSOrigins).RegisterRoutes(api)

	return &server{
		echo:     e,
		manager:  manager,
		limiter:  limiter,
		login:    login,
		hub:      hub,
		metrics:  m,
		renderer: renderer,
	}, nil
}

// run starts the background loops and blocks until ctx is done.
func (s *server) run(ctx context.Context) {
	go s.manager.Run(ctx, evictInterval)
	go s.limiter.Run(ctx)
	go s.login.Run(ctx)
	<-ctx.Done()
}
