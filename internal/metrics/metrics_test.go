package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"codeberg.org/miriamlab/server/internal/credits"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := New(prometheus.NewRegistry())
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/results/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/results/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/results/:id", "404")))
}

func TestObserveCompletion(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCompletion(credits.ModeCompare, "a", nil, time.Second)
	m.ObserveCompletion(credits.ModeCompare, "a", errors.New("down"), time.Second)
	m.ObserveCompletion(credits.ModeCompare, "a", nil, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CompletionCalls.WithLabelValues("compare", "a", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompletionCalls.WithLabelValues("compare", "a", "error")))
}

func TestBusinessCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCharge("judge", 6)
	m.RecordCharge("judge", 6)
	m.RecordChargeAnomaly("chat", "insufficient")
	m.RecordDailyResets(4)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.CreditsCharged.WithLabelValues("judge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChargeAnomalies.WithLabelValues("chat", "insufficient")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.DailyResetsApplied))
}
