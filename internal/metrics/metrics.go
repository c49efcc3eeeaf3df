// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prodboard_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prodboard_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Storage
	DBConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_db_connect_attempts_total",
			Help: "Per-request database connection attempts by outcome",
		},
		[]string{"dialect", "outcome"},
	)

	DBOpenSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prodboard_db_open_sessions",
			Help: "Database sessions currently held by requests",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prodboard_db_query_duration_seconds",
			Help:    "Duration of report queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_db_query_errors_total",
			Help: "Total number of failed report queries",
		},
		[]string{"operation"},
	)

	// Aggregation
	LabelsCollapsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_labels_collapsed_total",
			Help: "Raw label rows merged into an existing canonical group",
		},
		[]string{"category"},
	)

	// Security
	SuspiciousRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_suspicious_requests_total",
			Help: "Requests matching a known attack or scanner pattern, by reason",
		},
		[]string{"reason"},
	)

	// Reports and events
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_reports_total",
			Help: "Reports generated by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ReportEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_report_events_published_total",
			Help: "Report audit events handed to the broker by outcome",
		},
		[]string{"outcome"},
	)

	ReportEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prodboard_report_events_dropped_total",
			Help: "Report audit events dropped because the publish queue was full",
		},
	)

	ReportEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prodboard_report_events_consumed_total",
			Help: "Report audit events processed by the events worker",
		},
		[]string{"kind", "outcome"},
	)
)

// RecordAPIRequest records a finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordQuery records the duration and outcome of one storage read.
func RecordQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordConnect records a connection attempt.
func RecordConnect(dialect string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	DBConnectAttempts.WithLabelValues(dialect, outcome).Inc()
}

// RecordCollapsed records how many input rows were merged away.
func RecordCollapsed(category string, inputRows, groups int) {
	if merged := inputRows - groups; merged > 0 {
		LabelsCollapsed.WithLabelValues(category).Add(float64(merged))
	}
}

// RecordReport records a generated report.
func RecordReport(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ReportsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordEventPublish records one attempt to hand an event to the broker.
func RecordEventPublish(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ReportEventsPublished.WithLabelValues(outcome).Inc()
}
