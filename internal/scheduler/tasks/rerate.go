package tasks

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/refresh"
	"github.com/slipstream/flixcat/internal/scheduler"
)

const RerateTaskID = "rerate"

// Rerater re-resolves titles rated 18.
type Rerater interface {
	Rerate(ctx context.Context) (*refresh.RerateReport, error)
}

// RerateTask periodically lowers 18 ratings that no longer hold.
type RerateTask struct {
	rerater Rerater
	logger  zerolog.Logger
}

// NewRerateTask creates a new re-rate task.
func NewRerateTask(rerater Rerater, logger zerolog.Logger) *RerateTask {
	return &RerateTask{
		rerater: rerater,
		logger:  logger.With().Str("task", RerateTaskID).Logger(),
	}
}

// Run executes one re-rate pass.
func (t *RerateTask) Run(ctx context.Context) error {
	report, err := t.rerater.Rerate(ctx)
	if errors.Is(err, refresh.ErrRerateInProgress) {
		t.logger.Info().Msg("Re-rate already running, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	if report.Updated > 0 {
		t.logger.Info().Int("updated", report.Updated).Msg("Lowered stale 18 ratings")
	}
	return nil
}

// RegisterRerateTask registers the re-rate task.
func RegisterRerateTask(sched *scheduler.Scheduler, rerater Rerater, cfg config.SchedulerConfig, logger zerolog.Logger) error {
	task := NewRerateTask(rerater, logger)

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          RerateTaskID,
		Name:        "Re-rate",
		Description: "Re-resolves titles rated 18 and lowers the ones whose sources now say otherwise",
		Cron:        cfg.RerateCron,
		Func:        task.Run,
	})
}
