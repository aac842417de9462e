// Package metrics exposes ledger and HTTP measurements as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/fiado/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fiado"

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// LedgerMetrics implements ledger.Metrics
type LedgerMetrics struct {
	recalculations       *prometheus.CounterVec
	recalculationSeconds prometheus.Histogram
	activeEvents         prometheus.Histogram
	consistencyRuns      prometheus.Counter
	consistencyFindings  prometheus.Counter
	lockWaitSeconds      *prometheus.HistogramVec
}

// NewLedgerMetrics registers the ledger metrics on reg
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	f := promauto.With(reg)
	return &LedgerMetrics{
		recalculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "recalculations_total",
			Help:      "Client debt recalculations by outcome.",
		}, []string{"outcome"}),
		recalculationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "recalculation_duration_seconds",
			Help:      "Time spent loading events and recomputing a client balance.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		activeEvents: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "recalculation_active_events",
			Help:      "Non-deleted events folded per recalculation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		consistencyRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "consistency_checks_total",
			Help:      "Consistency checks performed.",
		}),
		consistencyFindings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "consistency_findings_total",
			Help:      "Problems reported by consistency checks.",
		}),
		lockWaitSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a client lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"acquired"}),
	}
}

// ObserveRecalculation records one recalculation
func (m *LedgerMetrics) ObserveRecalculation(outcome string, duration time.Duration, activeEvents int) {
	m.recalculations.WithLabelValues(outcome).Inc()
	m.recalculationSeconds.Observe(duration.Seconds())
	if outcome != ledger.OutcomeError {
		m.activeEvents.Observe(float64(activeEvents))
	}
}

// ObserveConsistency records one consistency check
func (m *LedgerMetrics) ObserveConsistency(findings int) {
	m.consistencyRuns.Inc()
	m.consistencyFindings.Add(float64(findings))
}

// ObserveLockWait records how long a mutation waited for its client lock
func (m *LedgerMetrics) ObserveLockWait(duration time.Duration, acquired bool) {
	m.lockWaitSeconds.WithLabelValues(strconv.FormatBool(acquired)).Observe(duration.Seconds())
}

var _ ledger.Metrics = (*LedgerMetrics)(nil)

// HTTPMetrics measures requests served by the API
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics registers the HTTP metrics on reg
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	f := promauto.With(reg)
	return &HTTPMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
}

// Middleware returns a gin middleware that records every request under its
// route template, so path parameters do not explode label cardinality.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
