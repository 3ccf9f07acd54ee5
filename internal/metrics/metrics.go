// Package metrics exposes Prometheus instrumentation for the HTTP API and the deal engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quickflip/server/internal/models"
)

// Metrics owns its own registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	deals        *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	buyerMatches prometheus.Histogram
	dbDuration   *prometheus.HistogramVec
}

func New(prefix string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		deals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_deals_total",
				Help: "Deals created, by rank and initial status",
			},
			[]string{"rank", "status"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_deal_transitions_total",
				Help: "Deal status changes applied by review and close",
			},
			[]string{"to"},
		),
		buyerMatches: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_buyer_matches",
				Help:    "Number of eligible buyers per submitted property",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 200},
			},
		),
		dbDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Middleware records request counts and latencies per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordDeal(rank models.Rank, status models.DealStatus, matches int) {
	if m == nil {
		return
	}
	m.deals.WithLabelValues(string(rank), string(status)).Inc()
	m.buyerMatches.Observe(float64(matches))
}

func (m *Metrics) RecordTransition(to models.DealStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.dbDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
