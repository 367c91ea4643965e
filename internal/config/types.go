package config

import (
	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/llm"
)

type Config struct {
	DatabaseURL string
	RedisURL    string // optional; enables the cross-instance event bridge and shared rate limits
	JWTSecret   string
	Environment string
	LogLevel    string
	Port        string

	// public origin of the web app, used for share links and checkout redirects
	BaseURL        string
	AllowedOrigins []string

	RateLimit      string // ulule format, e.g. "30-M"
	CronSecret     string
	DailyResetSpec string

	LLM    llm.Config
	Stripe billing.StripeConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
