package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"codeberg.org/miriamlab/server/internal/credits"
)

const namespace = "miriamlab"

// Metrics holds every Prometheus collector the server exports.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// completion backend
	CompletionCalls    *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec

	// credits
	CreditsCharged   *prometheus.CounterVec
	ChargeAnomalies  *prometheus.CounterVec
	PreflightDenials *prometheus.CounterVec

	// billing and jobs
	BillingEvents      *prometheus.CounterVec
	DailyResetsApplied prometheus.Counter
}

// New registers all collectors with reg. Pass prometheus.DefaultRegisterer in the server
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		CompletionCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_calls_total",
				Help:      "Completion calls made to model backends",
			},
			[]string{"mode", "model", "status"}, // status: ok, error
		),
		CompletionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Completion call latency in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
			},
			[]string{"mode"},
		),
		CreditsCharged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credits_charged_total",
				Help:      "Credits debited from wallets",
			},
			[]string{"mode"},
		),
		ChargeAnomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charge_anomalies_total",
				Help:      "Successful actions whose debit failed after the fact",
			},
			[]string{"mode", "reason"}, // reason: insufficient, store_error
		),
		PreflightDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "preflight_denials_total",
				Help:      "Requests rejected before dispatch",
			},
			[]string{"mode", "code"},
		),
		BillingEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "billing_events_total",
				Help:      "Billing events received",
			},
			[]string{"kind", "result"}, // result: applied, duplicate, error
		),
		DailyResetsApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_resets_total",
			Help:      "Wallets refilled by the daily reset sweep",
		}),
	}
}

// Middleware records request count and latency by route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveCompletion matches orchestrator.CallObserver.
func (m *Metrics) ObserveCompletion(mode credits.Mode, model string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	m.CompletionCalls.WithLabelValues(string(mode), model, status).Inc()
	m.CompletionDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordCharge(mode string, amount int) {
	m.CreditsCharged.WithLabelValues(mode).Add(float64(amount))
}

func (m *Metrics) RecordChargeAnomaly(mode, reason string) {
	m.ChargeAnomalies.WithLabelValues(mode, reason).Inc()
}

func (m *Metrics) RecordPreflightDenial(mode, code string) {
	m.PreflightDenials.WithLabelValues(mode, code).Inc()
}

func (m *Metrics) RecordBillingEvent(kind, result string) {
	m.BillingEvents.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecordDailyResets(n int64) {
	m.DailyResetsApplied.Add(float64(n))
}
