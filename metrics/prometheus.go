package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofok_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proofok_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	submissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proofok_submissions_created_total",
			Help: "Total number of uploaded proofs",
		},
	)

	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofok_decisions_total",
			Help: "Total number of recorded review decisions",
		},
		[]string{"decision"},
	)

	// Outcome as seen by the caller: delivered, failed, backgrounded or skipped
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofok_notifications_total",
			Help: "Notification dispatch outcomes as reported to the caller",
		},
		[]string{"mode", "outcome"},
	)

	// Observed by the worker itself, including deliveries that outlived the wait
	notificationDelivery = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proofok_notification_delivery_seconds",
			Help:    "Time spent delivering a notification over the outbound channel",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, durationSeconds float64) {
	status := "unknown"
	if statusCode >= 200 && statusCode < 300 {
		status = "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		status = "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		status = "4xx"
	} else if statusCode >= 500 {
		status = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordSubmission counts one uploaded proof.
func RecordSubmission() {
	submissionsTotal.Inc()
}

// RecordDecision counts one persisted decision.
func RecordDecision(decision string) {
	decisionsTotal.WithLabelValues(decision).Inc()
}

// RecordNotification counts a dispatch outcome for the given delivery mode.
func RecordNotification(mode, outcome string) {
	notificationsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveDelivery records how long one outbound send took.
func ObserveDelivery(err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationDelivery.WithLabelValues(result).Observe(durationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
