package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// RSVP submission metrics
	rsvpSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_submissions_total",
			Help: "Total number of public RSVP submissions",
		},
		[]string{"outcome"}, // accepted/duplicate/invalid/error
	)

	// CSV export metrics
	csvExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_exports_total",
			Help: "Total number of CSV export downloads",
		},
		[]string{"status"}, // success/failure
	)

	// Database metrics
	dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"operation"},
	)
)

// Init initializes the metrics
func Init() error {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		rsvpSubmissionsTotal,
		csvExportsTotal,
		dbOperationDuration,
	)

	return nil
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordSubmission records the outcome of a public RSVP submission
func RecordSubmission(outcome string) {
	rsvpSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordExport records a CSV export attempt
func RecordExport(status string) {
	csvExportsTotal.WithLabelValues(status).Inc()
}

// RecordDBOperation records database operation duration
func RecordDBOperation(operation string, duration time.Duration) {
	dbOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
