package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/miriamlab/server/api/rest/admin"
	"codeberg.org/miriamlab/server/api/rest/billing"
	"codeberg.org/miriamlab/server/api/rest/health"
	"codeberg.org/miriamlab/server/api/rest/playground"
	"codeberg.org/miriamlab/server/api/rest/sessions"
	"codeberg.org/miriamlab/server/api/rest/shares"
	"codeberg.org/miriamlab/server/api/rest/wallet"
	"codeberg.org/miriamlab/server/api/websocket"
	"codeberg.org/miriamlab/server/internal/ratelimit"
	ws "codeberg.org/miriamlab/server/internal/websocket"
)

// sets up all API routes
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config
	svc := server.services

	router.GET("/health", health.Handler(server.db, version))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(server.registry, promhttp.HandlerOpts{})))

	limiter, err := ratelimit.New(cfg.RateLimit, server.redis)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	// an untyped nil keeps the handlers' "not configured" check working
	var provider billing.Provider
	if svc.Stripe != nil {
		provider = svc.Stripe
	}

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		playground.RegisterRoutes(v1, svc.Engine, svc.Meter, ratelimit.Middleware(limiter))
		wallet.RegisterRoutes(v1, svc.Wallets, svc.Usage, svc.Ledger)
		billing.RegisterRoutes(v1, provider, svc.Billing)
		sessions.RegisterRoutes(v1, svc.History, svc.Wallets)
		shares.RegisterRoutes(v1, svc.Shares, cfg.BaseURL)
		admin.RegisterRoutes(v1, svc.Jobs, cfg.CronSecret)
		websocket.RegisterRoutes(v1, svc.Bus, svc.Wallets, ws.CheckOrigin(cfg.AllowedOrigins, cfg.IsProduction()))
	}

	return nil
}
