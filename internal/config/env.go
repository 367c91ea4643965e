package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/llm"
)

const (
	defaultPort           = "8080"
	defaultBaseURL        = "http://localhost:3000"
	defaultAllowedOrigins = "http://localhost:3000"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	llmConfig, err := llm.LoadConfig()
	if err != nil {
		return nil, err
	}

	environment := envOr("ENVIRONMENT", "development")
	baseURL := strings.TrimRight(envOr("BASE_URL", defaultBaseURL), "/")

	return &Config{
		DatabaseURL:    databaseURL,
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      jwtSecret,
		Environment:    environment,
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Port:           envOr("PORT", defaultPort),
		BaseURL:        baseURL,
		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", defaultAllowedOrigins)),
		RateLimit:      os.Getenv("RATE_LIMIT"),
		CronSecret:     os.Getenv("CRON_SECRET"),
		DailyResetSpec: os.Getenv("CRON_DAILY_RESET_SPEC"),
		LLM:            *llmConfig,
		Stripe: billing.StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			PriceStarter:  os.Getenv("STRIPE_PRICE_STARTER"),
			PricePro:      os.Getenv("STRIPE_PRICE_PRO"),
			PriceMini:     os.Getenv("STRIPE_PRICE_TOPUP_MINI"),
			PriceStandard: os.Getenv("STRIPE_PRICE_TOPUP_STANDARD"),
			PricePower:    os.Getenv("STRIPE_PRICE_TOPUP_POWER"),
			SuccessURL:    baseURL + "/app/account?success=true",
			CancelURL:     baseURL + "/pricing?canceled=true",
		},
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
