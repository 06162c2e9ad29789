// Package metrics exposes Prometheus collectors for the classifier service.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	analyzeRequestsTotal       *prometheus.CounterVec
	analysisDurationSeconds    prometheus.Histogram
	storeWritesTotal           *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		analyzeRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "news_analyze_requests_total",
				Help: "Total analyze requests, labeled by outcome kind.",
			},
			[]string{"outcome"},
		)

		analysisDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "news_analysis_duration_seconds",
				Help:    "Latency of calls to the analysis service.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		storeWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "news_store_writes_total",
				Help: "Document store write attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveAnalyze records the outcome of one analyze request.
func ObserveAnalyze(outcome string) {
	Init()
	analyzeRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAnalysisDuration records the latency of one analysis service call.
func ObserveAnalysisDuration(d time.Duration) {
	Init()
	analysisDurationSeconds.Observe(d.Seconds())
}

// ObserveStoreWrite records a persistence attempt: ok, failed or skipped.
func ObserveStoreWrite(outcome string) {
	Init()
	storeWritesTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies per matched route.
func Middleware() gin.HandlerFunc {
	Init()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
