package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/miriamlab/server/internal/config"
	"codeberg.org/miriamlab/server/internal/logger"
)

// overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Miriam Lab API
// @version 1.0
// @description Multi-model LLM playground with a prepaid credit wallet
// @description
// @description Features:
// @description - Chat, compare, judge and research modes across many models
// @description - Credit wallet with daily free, subscription and top-up buckets
// @description - Stripe subscriptions and top-up packs
// @description - Live wallet updates over WebSocket
// @description - Session history and public result sharing

// @contact.name API Support
// @contact.url https://codeberg.org/miriamlab/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

// @securityDefinitions.apikey CronSecret
// @in header
// @name Authorization
// @description Shared scheduler secret. Format: Bearer {secret}

func main() {
	logger.Info("starting miriamlab server", "version", version)

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	// playground calls can take minutes when many models are involved
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	srv.services.Jobs.Start()

	bridgeCtx, bridgeCancel := context.WithCancel(context.Background())
	if bridge := srv.services.Bridge; bridge != nil {
		go func() {
			if err := bridge.Run(bridgeCtx); err != nil {
				logger.ErrorErr(err, "wallet event bridge stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.services.Jobs.Stop(ctx)
	bridgeCancel()
	srv.Close()

	logger.Info("server stopped")
}
