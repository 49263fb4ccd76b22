package handler

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the vidsource service.
var Metrics = struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	SearchRequests   *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	StaleResponses   prometheus.Counter
	Sessions         prometheus.GaugeFunc
	DBPoolActive     prometheus.GaugeFunc
}{}

var metricsOnce sync.Once

// InitMetrics registers all Prometheus metrics. Only the first call has an
// effect. pool may be nil when sources come from a file.
func InitMetrics(pool *pgxpool.Pool, liveSessions func() int) {
	metricsOnce.Do(func() { initMetrics(pool, liveSessions) })
}

func initMetrics(pool *pgxpool.Pool, liveSessions func() int) {
	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidsource_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidsource_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidsource_search_requests_total",
			Help: "Backend search lookups, by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	Metrics.SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidsource_search_duration_seconds",
			Help:    "Duration of backend search requests.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidsource_cache_hits_total",
			Help: "Total Redis search cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidsource_cache_misses_total",
			Help: "Total Redis search cache misses.",
		},
	)

	Metrics.StaleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidsource_stale_responses_total",
			Help: "Video responses dropped because a newer selection superseded them.",
		},
	)

	if liveSessions != nil {
		Metrics.Sessions = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "vidsource_sessions_active",
				Help: "Number of live page sessions.",
			},
			func() float64 { return float64(liveSessions()) },
		)
		prometheus.MustRegister(Metrics.Sessions)
	}

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "vidsource_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)
		prometheus.MustRegister(Metrics.DBPoolActive)
	}

	prometheus.MustRegister(
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.SearchRequests,
		Metrics.SearchDuration,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.StaleResponses,
	)
}

// SearchMetrics feeds search client telemetry into Prometheus. It is a no-op
// until InitMetrics has run.
type SearchMetrics struct{}

func (SearchMetrics) ObserveSearch(source, outcome string, d time.Duration) {
	if Metrics.SearchRequests == nil {
		return
	}
	Metrics.SearchRequests.WithLabelValues(source, outcome).Inc()
	if d > 0 {
		Metrics.SearchDuration.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (SearchMetrics) ObserveCache(hit bool) {
	if Metrics.CacheHits == nil {
		return
	}
	if hit {
		Metrics.CacheHits.Inc()
	} else {
		Metrics.CacheMisses.Inc()
	}
}

// CountStale records one dropped stale response.
func CountStale() {
	if Metrics.StaleResponses != nil {
		Metrics.StaleResponses.Inc()
	}
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if Metrics.RequestDuration == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy the method into an owned string before c.Next(); Fiber returns
		// slices backed by the fasthttp buffer.
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		defer Metrics.RequestsInFlight.Dec()
		start := time.Now()

		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())

		return err
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
