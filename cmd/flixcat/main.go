package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/slipstream/flixcat/internal/api"
	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/database"
	"github.com/slipstream/flixcat/internal/logger"
	"github.com/slipstream/flixcat/internal/metadata"
	"github.com/slipstream/flixcat/internal/metadata/mock"
	"github.com/slipstream/flixcat/internal/refresh"
	"github.com/slipstream/flixcat/internal/scheduler"
	"github.com/slipstream/flixcat/internal/scheduler/tasks"
	"github.com/slipstream/flixcat/internal/startup"
	"github.com/slipstream/flixcat/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with FLIXCAT_* overrides")
	flag.Parse()

	// A missing .env is normal outside development.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("failed to load env file: " + err.Error())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("region", cfg.Catalog.Region).
		Bool("developerMode", cfg.DeveloperMode).
		Msg("starting flixcat")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Path, cfg.DeveloperMode, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	var meta *metadata.Service
	if cfg.DeveloperMode {
		log.Info().Msg("developer mode: using mock metadata providers")
		meta = metadata.NewServiceWithClients(mock.NewWatchmodeClient(nil), mock.NewTMDBClient(nil), log.Logger)
	} else {
		meta = metadata.NewService(cfg, log.Logger)
		checkProviders(ctx, meta, log)
	}
	defer meta.Close()

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)

	store := catalog.NewStore(db.Conn(), cfg.Catalog.Region, log.Logger)
	refreshService := refresh.NewService(store, meta, meta, cfg.Catalog, log.Logger)
	refreshService.SetBroadcaster(hub)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterCatalogRefreshTask(sched, refreshService, cfg.Scheduler, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register catalog refresh task")
	}
	if err := tasks.RegisterRerateTask(sched, refreshService, cfg.Scheduler, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register re-rate task")
	}

	server := api.NewServer(api.Services{
		Catalog:   store,
		Refresh:   refreshService,
		Metadata:  meta,
		Scheduler: sched,
		Hub:       hub,
	}, cfg, log.Logger)

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}
	if err := refreshService.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("refresh jobs did not stop in time")
	}

	log.Info().Msg("server stopped")
}

// checkProviders verifies the metadata providers are reachable, retrying while
// the network comes up. Failures are logged; the scheduler retries refreshes.
func checkProviders(ctx context.Context, meta *metadata.Service, log *logger.Logger) {
	for _, p := range meta.Status() {
		if !p.Configured {
			log.Warn().Str("provider", p.Name).Msg("metadata provider has no API key, refreshes will fail")
			continue
		}
		name := p.Name
		err := startup.WithRetry(ctx, name+" connectivity", startup.DefaultRetryConfig(), func() error {
			return meta.TestProvider(ctx, name)
		}, log.Logger)
		if err != nil {
			log.Warn().Err(err).Str("provider", name).Msg("metadata provider unreachable")
		}
	}
}
