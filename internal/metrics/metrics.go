package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExamTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_transitions_total",
			Help: "Total number of exam status transitions",
		},
		[]string{"from", "to", "trigger"},
	)

	SubmissionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submissions_started_total",
			Help: "Total number of submissions created",
		},
	)

	SubmissionsFinalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_finalized_total",
			Help: "Total number of submissions finalized, by resulting status and cause",
		},
		[]string{"status", "cause"},
	)

	ViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_violations_total",
			Help: "Total number of integrity violations reported by clients",
		},
		[]string{"type"},
	)

	SubmissionPercentageHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submission_percentage",
			Help:    "Distribution of submission percentages at finalization and grading",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"stage"},
	)

	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of notification events that could not be published",
		},
		[]string{"event_type"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// GinMiddleware observes request latency by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		APIRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
