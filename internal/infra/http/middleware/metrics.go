package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_updates_total",
			Help: "Total number of lead edit commits by outcome",
		},
		[]string{"outcome"},
	)

	leadRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_rollbacks_total",
			Help: "Total number of optimistic updates rolled back",
		},
	)

	leadConversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_conversions_total",
			Help: "Total number of lead conversions by outcome",
		},
		[]string{"outcome"},
	)

	remoteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_errors_total",
			Help: "Total number of remote store failures",
		},
		[]string{"op"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordLeadUpdate(outcome string) {
	leadUpdates.WithLabelValues(outcome).Inc()
}

func RecordRollback() {
	leadRollbacks.Inc()
}

func RecordConversion(outcome string) {
	leadConversions.WithLabelValues(outcome).Inc()
}

func RecordRemoteError(op string) {
	remoteErrors.WithLabelValues(op).Inc()
}
