package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"codeberg.org/miriamlab/server/internal/logger"
	"codeberg.org/miriamlab/server/internal/metrics"
)

const (
	DefaultDailyResetSpec = "@hourly"
	dailyResetTimeout     = 5 * time.Minute
)

// DailyResetter refills stale free allowances; implemented by wallets.Service.
type DailyResetter interface {
	ResetStaleDaily(ctx context.Context) (int64, error)
}

// Manager owns the scheduled background jobs.
type Manager struct {
	cron    *cron.Cron
	wallets DailyResetter
	metrics *metrics.Metrics
}

func NewManager(wallets DailyResetter, m *metrics.Metrics) *Manager {
	return &Manager{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		wallets: wallets,
		metrics: m,
	}
}

// Setup schedules the daily reset sweep. An empty spec uses DefaultDailyResetSpec.
func (m *Manager) Setup(dailyResetSpec string) error {
	if dailyResetSpec == "" {
		dailyResetSpec = DefaultDailyResetSpec
	}

	_, err := m.cron.AddFunc(dailyResetSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), dailyResetTimeout)
		defer cancel()

		if _, err := m.RunDailyReset(ctx); err != nil {
			logger.ErrorErr(err, "daily reset sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid daily reset schedule %q: %w", dailyResetSpec, err)
	}

	logger.Info("cron jobs configured", "daily_reset", dailyResetSpec)

	return nil
}

// RunDailyReset performs one sweep. Wallets not yet due are left untouched,
// so running it more often than daily is harmless.
func (m *Manager) RunDailyReset(ctx context.Context) (int64, error) {
	start := time.Now()

	n, err := m.wallets.ResetStaleDaily(ctx)
	if err != nil {
		return 0, err
	}

	m.metrics.RecordDailyResets(n)

	logger.Info("daily reset sweep completed",
		"wallets_reset", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return n, nil
}

func (m *Manager) Start() {
	logger.Info("starting cron scheduler")
	m.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) {
	done := m.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("cron jobs still running at shutdown")
	}
}
