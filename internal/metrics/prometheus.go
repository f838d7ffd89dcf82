package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// ComparisonCount counts document comparisons
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textaegis_comparisons_total",
			Help: "Total number of document comparisons",
		},
		[]string{"status"},
	)

	// ComparisonDuration measures comparison duration
	ComparisonDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "textaegis_comparison_duration_seconds",
			Help: "Document comparison duration in seconds",
		},
	)

	// MatchCount counts accepted matches
	MatchCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "textaegis_matches_total",
			Help: "Total number of accepted matches",
		},
	)

	// CacheLookups counts alignment cache lookups by result
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textaegis_alignment_cache_lookups_total",
			Help: "Alignment cache lookups by result",
		},
		[]string{"result"},
	)

	// CacheEvictions counts alignment cache evictions
	CacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "textaegis_alignment_cache_evictions_total",
			Help: "Alignment cache entries evicted",
		},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the collectors with the default registry
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ComparisonCount)
		prometheus.MustRegister(ComparisonDuration)
		prometheus.MustRegister(MatchCount)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(CacheEvictions)
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveComparison records a finished comparison; report may be nil on failure
func ObserveComparison(report *plagiarism.Report, err error) {
	if err != nil || report == nil {
		ComparisonCount.WithLabelValues("failed").Inc()
		return
	}
	ComparisonCount.WithLabelValues("completed").Inc()
	ComparisonDuration.Observe(report.Duration.Seconds())
	MatchCount.Add(float64(report.Summary.Matches))
	CacheLookups.WithLabelValues("hit").Add(float64(report.Cache.Hits))
	CacheLookups.WithLabelValues("miss").Add(float64(report.Cache.Misses))
	CacheEvictions.Add(float64(report.Cache.Evictions))
}

// GinMiddleware records request counts and latencies per route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(started).Seconds())
	}
}
