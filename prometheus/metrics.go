package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenant-platform/pkg/config"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_login_total",
			Help: "Total number of login attempts",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_register_total",
			Help: "Total number of user registrations",
		},
	)

	TwoFactorIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_twofactor_issued_total",
			Help: "Total number of two-factor codes issued",
		},
	)

	TwoFactorVerifyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_twofactor_verify_total",
			Help: "Total number of two-factor verification attempts by result",
		},
		[]string{"result"}, // "ok", "invalid", "no_challenge"
	)

	LogoutCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_logout_total",
			Help: "Total number of logouts by scope",
		},
		[]string{"scope"}, // "current", "all"
	)

	TenantRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_tenant_requests_total",
			Help: "Total number of tenant signup requests by result",
		},
		[]string{"result"}, // "accepted", "duplicate", "invalid"
	)

	TenantProvisionedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_tenants_provisioned_total",
			Help: "Total number of tenants provisioned",
		},
	)

	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_tenant_operations_total",
			Help: "Total number of tenant admin operations",
		},
		[]string{"operation"}, // "approve", "reject", "suspend", "activate", "list"
	)

	ProvisioningFailureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_provisioning_failures_total",
			Help: "Total number of aborted tenant approval batches",
		},
	)

	MailCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_mail_total",
			Help: "Total number of outbound emails by result",
		},
		[]string{"result"}, // "sent", "failed"
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)

	ProvisioningDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platform_provisioning_duration_seconds",
			Help:    "Duration of single tenant provisioning in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Gauge metrics
var (
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "platform_active_sessions",
			Help: "Number of currently active login sessions",
		},
	)

	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "platform_active_tenants",
			Help: "Number of currently active tenants",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "platform_info",
			Help: "Information about the tenant platform control plane",
		},
		[]string{"version"},
	)
)

var registry = prometheus.NewRegistry()

// InitMetrics registers all metrics with the service registry.
func InitMetrics(cfg *config.Config) {
	registry.MustRegister(
		LoginCounter,
		RegisterCounter,
		TwoFactorIssuedCounter,
		TwoFactorVerifyCounter,
		LogoutCounter,
		TenantRequestCounter,
		TenantProvisionedCounter,
		TenantOperationCounter,
		ProvisioningFailureCounter,
		MailCounter,
		AuthErrorCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
		ProvisioningDuration,
		ActiveSessionsGauge,
		ActiveTenantsGauge,
		InfoGauge,
	)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns the HTTP handler for the /metrics endpoint
func GetPrometheusHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// MetricsMiddleware records request counts and durations per endpoint.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// TrackDBOperation returns a function that records the duration of a
// database operation when invoked, for use with defer.
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{"operation": operation}).
			Observe(time.Since(start).Seconds())
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantOperation records a tenant admin operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
