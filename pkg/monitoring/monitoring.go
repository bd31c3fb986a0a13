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

	// 引擎指标
	ActivitiesLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_activities_logged_total",
			Help: "Total number of activity events appended",
		},
		[]string{"activity_type"},
	)

	BadgesAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_badges_awarded_total",
			Help: "Total number of badges newly earned",
		},
		[]string{"badge"},
	)

	StreakRecomputes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_streak_recomputes_total",
			Help: "Total number of streak recomputations",
		},
	)

	IdentityFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_identity_fallbacks_total",
			Help: "Total number of identity resolutions that degraded to a fallback key",
		},
		[]string{"source"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ActivitiesLogged)
	prometheus.MustRegister(BadgesAwarded)
	prometheus.MustRegister(StreakRecomputes)
	prometheus.MustRegister(IdentityFallbacks)
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
