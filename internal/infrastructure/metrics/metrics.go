// Package metrics contadores Prometheus del API. Se registran en el registry por defecto
// y se exponen en GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punchlist_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "punchlist_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	stockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punchlist_stock_movements_total",
		Help: "Stock movement requests by direction and result",
	}, []string{"direction", "result"})

	transferUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punchlist_transfer_uploads_total",
		Help: "Transfer attachment uploads by kind and result",
	}, []string{"kind", "result"})

	transferForms = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punchlist_transfer_forms_total",
		Help: "Transfer form generations by result",
	}, []string{"result"})

	authFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punchlist_auth_failures_total",
		Help: "Rejected logins and token resolutions by reason",
	}, []string{"reason"})
)

// ObserveHTTPRequest registra una request con su ruta (patrón, no path concreto).
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveStockMovement result: ok | insufficient | forbidden | error.
func ObserveStockMovement(direction, result string) {
	stockMovements.WithLabelValues(direction, result).Inc()
}

// ObserveTransferUpload result: ok | rejected | error.
func ObserveTransferUpload(kind, result string) {
	transferUploads.WithLabelValues(kind, result).Inc()
}

// ObserveTransferForm result: generated | failed.
func ObserveTransferForm(result string) {
	transferForms.WithLabelValues(result).Inc()
}

// ObserveAuthFailure reason: credentials | suspended | token | unknown_user.
func ObserveAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}
