package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/config"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/jobs"
	"codeberg.org/miriamlab/server/internal/llm"
	"codeberg.org/miriamlab/server/internal/logger"
	"codeberg.org/miriamlab/server/internal/metering"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/internal/orchestrator"
	"codeberg.org/miriamlab/server/miriamlab/history"
	"codeberg.org/miriamlab/server/miriamlab/ledger"
	"codeberg.org/miriamlab/server/miriamlab/shares"
	"codeberg.org/miriamlab/server/miriamlab/usage"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// creates and configures all domain services. without a redis client wallet
// events stay on this instance.
func InitializeServices(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, reg prometheus.Registerer) (*Services, error) {
	m := metrics.New(reg)
	bus := events.NewBus()

	var (
		publisher events.Publisher = bus
		bridge    *events.RedisBridge
	)
	if rdb != nil {
		bridge = events.NewRedisBridge(rdb, bus)
		publisher = bridge
	}

	walletService := wallets.NewService(wallets.NewPostgresStore(db))
	usageRepo := usage.NewRepository(db)
	ledgerStore := ledger.NewPostgresStore(db)

	engine := orchestrator.New(llm.NewClient(cfg.LLM), orchestrator.Options{
		OnCall: m.ObserveCompletion,
	})

	var stripeClient *billing.Stripe
	if cfg.Stripe.Enabled() {
		stripeClient = billing.NewStripe(cfg.Stripe)
	} else {
		logger.Warn("stripe not configured, checkout and webhooks disabled")
	}

	jobManager := jobs.NewManager(walletService, m)
	if err := jobManager.Setup(cfg.DailyResetSpec); err != nil {
		return nil, fmt.Errorf("failed to schedule jobs: %w", err)
	}

	return &Services{
		Wallets:   walletService,
		Usage:     usageRepo,
		Ledger:    ledgerStore,
		History:   history.NewPostgresStore(db),
		Shares:    shares.NewPostgresStore(db),
		Bus:       bus,
		Bridge:    bridge,
		Publisher: publisher,
		Metrics:   m,
		Engine:    engine,
		Meter:     metering.NewMeter(walletService, usageRepo, publisher, m),
		Billing:   billing.NewService(ledgerStore, publisher, m),
		Stripe:    stripeClient,
		Jobs:      jobManager,
	}, nil
}
