package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultChatModel   = "qwen/qwen-2.5-7b-instruct:free"
	defaultReferer     = "https://miriam-lab.com"
	defaultTitle       = "Miriam Lab"
	defaultTemperature = float32(0.7)
	defaultTimeout     = 90 * time.Second
	defaultRateLimit   = 20
	defaultRateBurst   = 10
)

// Config configures the OpenAI-compatible completion client.
type Config struct {
	APIKey             string
	BaseURL            string
	DefaultModel       string
	DefaultTemperature float32
	Referer            string // sent as HTTP-Referer
	Title              string // sent as X-Title
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
}

// loads the client configuration from environment variables
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
	}

	cfg := &Config{
		APIKey:             apiKey,
		BaseURL:            envOr("OPENROUTER_BASE_URL", defaultBaseURL),
		DefaultModel:       envOr("DEFAULT_CHAT_MODEL", defaultChatModel),
		DefaultTemperature: defaultTemperature,
		Referer:            envOr("OPENROUTER_HTTP_REFERER", defaultReferer),
		Title:              envOr("OPENROUTER_X_TITLE", defaultTitle),
		Timeout:            defaultTimeout,
		RequestsPerSecond:  defaultRateLimit,
		Burst:              defaultRateBurst,
	}

	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("LLM_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.RequestsPerSecond = rps
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
