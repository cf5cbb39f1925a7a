package monitoring

import (
	"strconv"
	"sync"
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

	// GradeOutcomes 评分结果计数，type: quiz|task，outcome: recorded|duplicate|rejected|failed
	GradeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grading_outcomes_total",
			Help: "Grading operations by grade type and outcome",
		},
		[]string{"type", "outcome"},
	)

	ReportCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grading_report_cache_total",
			Help: "Performance report cache lookups by result",
		},
		[]string{"result"},
	)

	RosterDegradedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grading_roster_degraded_entries_total",
			Help: "Roster entries returned without grade data because a per-student fetch failed",
		},
	)

	RosterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grading_roster_build_seconds",
			Help:    "Time spent building a course grade roster",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GradeOutcomes)
		prometheus.MustRegister(ReportCache)
		prometheus.MustRegister(RosterDegradedEntries)
		prometheus.MustRegister(RosterDuration)
	})
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
