package tasks

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/scheduler"
)

const CatalogRefreshTaskID = "catalog-refresh"

// Refresher refreshes the catalog when it has gone stale.
type Refresher interface {
	RefreshIfStale(ctx context.Context) (bool, error)
}

// CatalogRefreshTask checks catalog freshness and rebuilds it when due.
type CatalogRefreshTask struct {
	refresher Refresher
	logger    zerolog.Logger
}

// NewCatalogRefreshTask creates a new catalog refresh task.
func NewCatalogRefreshTask(refresher Refresher, logger zerolog.Logger) *CatalogRefreshTask {
	return &CatalogRefreshTask{
		refresher: refresher,
		logger:    logger.With().Str("task", CatalogRefreshTaskID).Logger(),
	}
}

// Run refreshes the catalog if it is stale. A run that finds another holder
// refreshing is not an error.
func (t *CatalogRefreshTask) Run(ctx context.Context) error {
	ran, err := t.refresher.RefreshIfStale(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			t.logger.Info().Msg("Catalog refresh cancelled")
		}
		return err
	}
	if !ran {
		t.logger.Debug().Msg("Catalog is fresh")
	}
	return nil
}

// RegisterCatalogRefreshTask registers the catalog freshness check.
func RegisterCatalogRefreshTask(sched *scheduler.Scheduler, refresher Refresher, cfg config.SchedulerConfig, logger zerolog.Logger) error {
	task := NewCatalogRefreshTask(refresher, logger)

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          CatalogRefreshTaskID,
		Name:        "Catalog Refresh",
		Description: "Rebuilds the Netflix UK catalog when it is older than the freshness window",
		Cron:        cfg.RefreshCheckCron,
		RunOnStart:  cfg.RefreshOnStart,
		Func:        task.Run,
	})
}
