// Package metrics exposes Prometheus instrumentation for the catalog pipeline,
// the upstream providers and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh pipeline
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_refresh_runs_total",
			Help: "Catalog refresh runs by outcome",
		},
		[]string{"outcome"}, // "completed", "failed", "skipped"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flixcat_refresh_duration_seconds",
			Help:    "Duration of catalog refresh runs",
			Buckets: []float64{10, 30, 60, 300, 600, 1800, 3600, 7200},
		},
	)

	RefreshTitles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_refresh_titles_total",
			Help: "Titles processed during refresh by result",
		},
		[]string{"result"}, // "inserted", "skipped", "failed"
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flixcat_catalog_titles",
			Help: "Number of titles in the live catalog generation",
		},
	)

	CatalogGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flixcat_catalog_generation",
			Help: "Live snapshot generation",
		},
	)

	// Rating resolution
	RatingResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_rating_resolutions_total",
			Help: "Ratings resolved by tier and canonical rating",
		},
		[]string{"tier", "rating"},
	)

	// Re-rate job
	RerateTitles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_rerate_titles_total",
			Help: "Titles visited by the re-rate job by result",
		},
		[]string{"result"}, // "updated", "unchanged", "skipped"
	)

	// Providers
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_provider_requests_total",
			Help: "Requests made to upstream metadata providers",
		},
		[]string{"provider", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flixcat_provider_request_duration_seconds",
			Help:    "Latency of upstream provider requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flixcat_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_circuit_breaker_requests_total",
			Help: "Requests passing through circuit breakers by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP API
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flixcat_api_requests_total",
			Help: "HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flixcat_api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WebSocket
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flixcat_websocket_clients",
			Help: "Connected websocket clients",
		},
	)
)

// RecordRefresh records the outcome and duration of one refresh run.
func RecordRefresh(outcome string, duration time.Duration) {
	RefreshRuns.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		RefreshDuration.Observe(duration.Seconds())
	}
}

// RecordRefreshTitles adds per-title counters for a finished run.
func RecordRefreshTitles(inserted, skipped, failed int) {
	RefreshTitles.WithLabelValues("inserted").Add(float64(inserted))
	RefreshTitles.WithLabelValues("skipped").Add(float64(skipped))
	RefreshTitles.WithLabelValues("failed").Add(float64(failed))
}

// RecordSnapshot updates the live catalog gauges.
func RecordSnapshot(generation int64, size int) {
	CatalogGeneration.Set(float64(generation))
	CatalogSize.Set(float64(size))
}

// RecordResolution counts one resolved rating.
func RecordResolution(tier, rating string) {
	RatingResolutions.WithLabelValues(tier, rating).Inc()
}

// RecordRerate adds the counters from one re-rate run.
func RecordRerate(updated, unchanged, skipped int) {
	RerateTitles.WithLabelValues("updated").Add(float64(updated))
	RerateTitles.WithLabelValues("unchanged").Add(float64(unchanged))
	RerateTitles.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordProviderRequest records one upstream request. A zero status means the
// request never produced a response.
func RecordProviderRequest(provider string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ProviderRequests.WithLabelValues(provider, label).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordAPIRequest records one HTTP API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
