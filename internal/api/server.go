package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/api/ratelimit"
	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metadata"
	"github.com/slipstream/flixcat/internal/refresh"
	"github.com/slipstream/flixcat/internal/scheduler"
	"github.com/slipstream/flixcat/internal/websocket"
)

// Services are the components the API exposes. Scheduler and Hub may be nil.
type Services struct {
	Catalog   *catalog.Store
	Refresh   *refresh.Service
	Metadata  *metadata.Service
	Scheduler *scheduler.Scheduler
	Hub       *websocket.Hub
}

// Server handles HTTP requests for the flixcat API.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	logger    zerolog.Logger
	startTime time.Time

	catalog   *catalog.Store
	refresh   *refresh.Service
	metadata  *metadata.Service
	scheduler *scheduler.Scheduler
	hub       *websocket.Hub

	triggerLimiter *ratelimit.TriggerLimiter
	cancel         context.CancelFunc
}

// NewServer creates a new API server instance.
func NewServer(svc Services, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		echo:           e,
		cfg:            cfg,
		logger:         logger.With().Str("component", "api").Logger(),
		startTime:      time.Now(),
		catalog:        svc.Catalog,
		refresh:        svc.Refresh,
		metadata:       svc.Metadata,
		scheduler:      svc.Scheduler,
		hub:            svc.Hub,
		triggerLimiter: ratelimit.NewTriggerLimiter(cfg.Server.TriggersPerMinute, ratelimit.DefaultBurst),
		cancel:         cancel,
	}
	s.triggerLimiter.StartCleanup(ctx, time.Minute)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start begins serving on address. It blocks until the server stops.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("Starting HTTP server")

	err := s.echo.Start(address)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	s.cancel()
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
