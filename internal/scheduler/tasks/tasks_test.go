package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/refresh"
	"github.com/slipstream/flixcat/internal/scheduler"
)

type fakeRefresher struct {
	ran   bool
	err   error
	calls int
}

func (f *fakeRefresher) RefreshIfStale(context.Context) (bool, error) {
	f.calls++
	return f.ran, f.err
}

type fakeRerater struct {
	report *refresh.RerateReport
	err    error
}

func (f *fakeRerater) Rerate(context.Context) (*refresh.RerateReport, error) {
	return f.report, f.err
}

func TestCatalogRefreshTask_Run(t *testing.T) {
	tests := []struct {
		name    string
		ran     bool
		err     error
		wantErr bool
	}{
		{"refreshed", true, nil, false},
		{"fresh", false, nil, false},
		{"failed", true, refresh.ErrNoTitlesDiscovered, true},
		{"cancelled", false, context.Canceled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRefresher{ran: tt.ran, err: tt.err}
			err := NewCatalogRefreshTask(r, zerolog.Nop()).Run(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, 1, r.calls)
		})
	}
}

func TestRerateTask_Run(t *testing.T) {
	task := NewRerateTask(&fakeRerater{err: refresh.ErrRerateInProgress}, zerolog.Nop())
	assert.NoError(t, task.Run(context.Background()), "overlapping run is skipped")

	task = NewRerateTask(&fakeRerater{err: errors.New("database is locked")}, zerolog.Nop())
	assert.Error(t, task.Run(context.Background()))

	task = NewRerateTask(&fakeRerater{report: &refresh.RerateReport{Checked: 3, Updated: 1}}, zerolog.Nop())
	assert.NoError(t, task.Run(context.Background()))
}

func TestRegisterTasks(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	defer sched.Stop()

	cfg := config.Default().Scheduler
	cfg.RefreshOnStart = true

	require.NoError(t, RegisterCatalogRefreshTask(sched, &fakeRefresher{}, cfg, zerolog.Nop()))
	require.NoError(t, RegisterRerateTask(sched, &fakeRerater{report: &refresh.RerateReport{}}, cfg, zerolog.Nop()))

	tasks := sched.ListTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, CatalogRefreshTaskID, tasks[0].ID)
	assert.Equal(t, cfg.RefreshCheckCron, tasks[0].Cron)
	assert.Equal(t, RerateTaskID, tasks[1].ID)
	assert.Equal(t, cfg.RerateCron, tasks[1].Cron)
}
