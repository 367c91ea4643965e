package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miriamlab/server/internal/jobs"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

func TestDailyReset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	store := wallets.NewMemoryStore()
	store.Put(wallets.Wallet{UserID: "stale", LastDailyReset: now.Add(-30 * time.Hour)})
	store.Put(wallets.Wallet{UserID: "fresh", FreeDailyRemaining: 2, LastDailyReset: now.Add(-time.Hour)})

	svc := wallets.NewService(store).WithClock(func() time.Time { return now })
	manager := jobs.NewManager(svc, metrics.New(prometheus.NewRegistry()))

	router := gin.New()
	api := router.Group("/api/v1")
	RegisterRoutes(api, manager, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/daily-reset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cron/daily-reset", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DailyResetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Reset)

	fresh, err := store.Find(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.FreeDailyRemaining)
}
