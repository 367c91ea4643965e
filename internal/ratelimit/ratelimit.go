// Package ratelimit throttles metered endpoints per user.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/miriamlab/server/internal/errors"
)

const (
	DefaultRate = "30-M"
	keyPrefix   = "miriamlab:ratelimit"
)

// New builds a limiter for a formatted rate such as "30-M" or "1000-H".
// A nil client keeps counters in process memory.
func New(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	if formatted == "" {
		formatted = DefaultRate
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          keyPrefix,
			CleanUpInterval: time.Minute,
		})
	}

	return limiter.New(store, rate), nil
}

// Middleware keys on the authenticated user, falling back to client IP,
// so it must run after auth.AuthMiddleware.
func Middleware(l *limiter.Limiter) gin.HandlerFunc {
	return mgin.NewMiddleware(l,
		mgin.WithKeyGetter(keyFor),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "rate limit exceeded, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			errors.InternalError(c, "rate limiter unavailable", err)
		}),
	)
}

func keyFor(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}
