package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restaurant-service/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter  prometheus.Counter
	AuthErrorsCounter    prometheus.Counter
	AuthForbiddenCounter prometheus.Counter

	// Store operation metrics
	StoreOperationDuration *prometheus.HistogramVec

	// Order ledger metrics
	OrdersCreatedCounter     prometheus.Counter
	OrderTransitionsCounter  *prometheus.CounterVec
	NotificationErrorCounter prometheus.Counter

	// Billing metrics
	BillsPaidCounter      *prometheus.CounterVec
	PaymentFailureCounter prometheus.Counter

	// Floor metrics
	TablesByStatusGauge *prometheus.GaugeVec
	WaitingPartiesGauge prometheus.Gauge
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	InitMetricsWith(prometheus.DefaultRegisterer, config)
}

// InitMetricsWith registers the metrics with reg instead of the default
// registry
func InitMetricsWith(reg prometheus.Registerer, config *config.Config) {
	prefix := config.Metrics.Prefix
	factory := promauto.With(reg)

	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	AuthForbiddenCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_forbidden_total",
			Help: "Total number of requests rejected by role checks",
		},
	)

	StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "operation_type"},
	)

	OrdersCreatedCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "Total number of orders placed",
		},
	)

	OrderTransitionsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"to"},
	)

	NotificationErrorCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_notification_errors_total",
			Help: "Total number of kitchen events that could not be published",
		},
	)

	BillsPaidCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_bills_paid_total",
			Help: "Total number of bills paid",
		},
		[]string{"method"},
	)

	PaymentFailureCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_payment_failures_total",
			Help: "Total number of declined or failed payment captures",
		},
	)

	TablesByStatusGauge = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_tables",
			Help: "Current number of tables by status",
		},
		[]string{"status"},
	)

	WaitingPartiesGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_waiting_parties",
			Help: "Current number of parties on the waitlist",
		},
	)
}

// TrackStoreOperation returns a function that records the duration of a store operation
func TrackStoreOperation(entity, operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if StoreOperationDuration == nil {
			return
		}
		StoreOperationDuration.WithLabelValues(entity, operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOrderCreated increments the placed orders counter
func RecordOrderCreated() {
	if OrdersCreatedCounter != nil {
		OrdersCreatedCounter.Inc()
	}
}

// RecordOrderTransition increments the counter for order status transitions
func RecordOrderTransition(to string) {
	if OrderTransitionsCounter != nil {
		OrderTransitionsCounter.WithLabelValues(to).Inc()
	}
}

// RecordNotificationError increments the failed publish counter
func RecordNotificationError() {
	if NotificationErrorCounter != nil {
		NotificationErrorCounter.Inc()
	}
}

// RecordBillPaid increments the paid bills counter
func RecordBillPaid(method string) {
	if BillsPaidCounter != nil {
		BillsPaidCounter.WithLabelValues(method).Inc()
	}
}

// RecordPaymentFailure increments the payment failure counter
func RecordPaymentFailure() {
	if PaymentFailureCounter != nil {
		PaymentFailureCounter.Inc()
	}
}

// RecordAuthAttempt increments the authentication attempts counter
func RecordAuthAttempt() {
	if AuthAttemptsCounter != nil {
		AuthAttemptsCounter.Inc()
	}
}

// RecordAuthError increments the authentication error counter
func RecordAuthError() {
	if AuthErrorsCounter != nil {
		AuthErrorsCounter.Inc()
	}
}

// RecordForbidden increments the role check rejection counter
func RecordForbidden() {
	if AuthForbiddenCounter != nil {
		AuthForbiddenCounter.Inc()
	}
}

// UpdateTableStatus sets the per-status table gauge
func UpdateTableStatus(counts map[string]int) {
	if TablesByStatusGauge == nil {
		return
	}
	for status, n := range counts {
		TablesByStatusGauge.WithLabelValues(status).Set(float64(n))
	}
}

// UpdateWaitingParties sets the waitlist gauge
func UpdateWaitingParties(n int) {
	if WaitingPartiesGauge != nil {
		WaitingPartiesGauge.Set(float64(n))
	}
}

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if HttpRequestsTotal != nil {
				method := c.Request().Method
				path := c.Path()
				status := strconv.Itoa(c.Response().Status)

				HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
				HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
			}

			return nil
		}
	}
}

// GetPrometheusHandler returns the scrape handler for the default registry
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
