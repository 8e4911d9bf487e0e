package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// CheckIns counts committed check-ins by class category and
	// classification ("regular" or "extra").
	CheckIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_checkins_total",
			Help: "Committed check-ins by class category and classification",
		},
		[]string{"class_category", "classification"},
	)
	// SessionsDeducted counts sessions taken off session cards.
	SessionsDeducted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_card_sessions_deducted_total",
			Help: "Sessions deducted from session cards",
		},
		[]string{"card_type"},
	)
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_member_resolutions_total",
			Help: "Member resolution outcomes",
		},
		[]string{"outcome"},
	)
	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_member_registrations_total",
			Help: "Members registered at the front desk",
		},
	)
	// CheckInFailures counts check-in attempts that did not commit, by reason.
	CheckInFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_checkin_failures_total",
			Help: "Check-in attempts that failed, by reason",
		},
		[]string{"reason"},
	)
)

// Classification label values.
const (
	Regular = "regular"
	Extra   = "extra"
)

// Classification returns the label for a check-in's extra flag.
func Classification(isExtra bool) string {
	if isExtra {
		return Extra
	}
	return Regular
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
