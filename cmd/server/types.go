package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/config"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/jobs"
	"codeberg.org/miriamlab/server/internal/metering"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/internal/orchestrator"
	"codeberg.org/miriamlab/server/miriamlab/history"
	"codeberg.org/miriamlab/server/miriamlab/ledger"
	"codeberg.org/miriamlab/server/miriamlab/shares"
	"codeberg.org/miriamlab/server/miriamlab/usage"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// holds all server dependencies
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *pgxpool.Pool
	redis    *redis.Client // nil when REDIS_URL is unset
	registry *prometheus.Registry
	services *Services
}

// holds the domain services wired from the stores
type Services struct {
	Wallets   *wallets.Service
	Usage     *usage.Repository
	Ledger    *ledger.PostgresStore
	History   *history.PostgresStore
	Shares    *shares.PostgresStore
	Bus       *events.Bus
	Bridge    *events.RedisBridge // nil without redis
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Engine    *orchestrator.Engine
	Meter     *metering.Meter
	Billing   *billing.Service
	Stripe    *billing.Stripe // nil when Stripe is not configured
	Jobs      *jobs.Manager
}
