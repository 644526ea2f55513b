package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "housing",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "housing",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	applicationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "housing",
			Subsystem: "applications",
			Name:      "created_total",
			Help:      "Applications created by bulk submissions, by campus.",
		},
		[]string{"campus"},
	)

	batchesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "housing",
			Subsystem: "applications",
			Name:      "batches_rejected_total",
			Help:      "Bulk submissions that created no applications, by reason.",
		},
		[]string{"reason"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "housing",
			Subsystem: "applications",
			Name:      "transitions_total",
			Help:      "Successful lifecycle transitions, by target status.",
		},
		[]string{"status"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "housing",
			Subsystem: "notifications",
			Name:      "publish_failures_total",
			Help:      "Lifecycle events the notification sink did not accept, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		applicationsCreated,
		batchesRejected,
		transitions,
		notificationFailures,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordApplicationsCreated counts the rows of a committed batch.
func RecordApplicationsCreated(onCampus, offCampus int) {
	applicationsCreated.WithLabelValues("on").Add(float64(onCampus))
	applicationsCreated.WithLabelValues("off").Add(float64(offCampus))
}

// RecordBatchRejected counts a bulk submission that failed.
func RecordBatchRejected(reason string) {
	batchesRejected.WithLabelValues(reason).Inc()
}

// RecordTransition counts a lifecycle transition into status.
func RecordTransition(status string) {
	transitions.WithLabelValues(status).Inc()
}

// RecordNotificationFailure counts an event the sink refused.
func RecordNotificationFailure(kind string) {
	notificationFailures.WithLabelValues(kind).Inc()
}
