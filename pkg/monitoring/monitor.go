package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ProgressCacheRequests result = hit | miss
	ProgressCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_cache_requests_total",
			Help: "Progress index cache lookups by result",
		},
		[]string{"result"},
	)

	ProgressFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_fetch_failures_total",
			Help: "Per-child record fetches that failed during group or org loads",
		},
	)

	ProgressRecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_records_skipped_total",
			Help: "Assessment records skipped while building an index",
		},
	)

	ProgressStaleDiscards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_stale_discards_total",
			Help: "Fetched record sets discarded because their selection was superseded or invalidated",
		},
	)

	ProgressLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_group_load_duration_seconds",
			Help:    "Time to load every child index of a group or of the whole organization",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"scope"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ProgressCacheRequests)
	prometheus.MustRegister(ProgressFetchFailures)
	prometheus.MustRegister(ProgressRecordsSkipped)
	prometheus.MustRegister(ProgressStaleDiscards)
	prometheus.MustRegister(ProgressLoadDuration)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
