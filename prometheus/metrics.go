package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login attempts
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autostock_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Recorded sales
	SaleCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autostock_sales_total",
			Help: "Total number of recorded sales",
		},
	)

	// Sale failures by kind
	SaleErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autostock_sale_errors_total",
			Help: "Total number of failed sale attempts",
		},
		[]string{"type"}, // "insufficient_stock", "not_found", "invalid_input", etc.
	)

	// Authentication / authorization failures by kind
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autostock_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // "invalid_credentials", "invalid_token", "forbidden", etc.
	)

	// Business lifecycle operations
	BusinessOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autostock_business_operations_total",
			Help: "Total number of business management operations",
		},
		[]string{"operation"}, // "create", "status_change", "delete", etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autostock_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autostock_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autostock_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Businesses on an active subscription
	ActiveBusinessesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autostock_active_businesses",
			Help: "Number of businesses with an active subscription",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autostock_info",
			Help: "Information about the autostock service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SaleCounter)
	prometheus.MustRegister(SaleErrorCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(BusinessOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveBusinessesGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordSaleError records a failed sale attempt by type
func RecordSaleError(errorType string) {
	SaleErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordBusinessOperation records a business management operation
func RecordBusinessOperation(operation string) {
	BusinessOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateActiveBusinesses updates the active businesses gauge
func UpdateActiveBusinesses(count int64) {
	ActiveBusinessesGauge.Set(float64(count))
}
