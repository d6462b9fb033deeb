// Package metrics provides Prometheus metrics for the storage simulator.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	responseSize     *prometheus.HistogramVec
	healthStatus     prometheus.Gauge

	simulationsTotal *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	migrationsTotal  prometheus.Counter
	electionsTotal   *prometheus.CounterVec
	componentUp      *prometheus.GaugeVec
}

var (
	globalMetrics *Metrics
	initOnce      sync.Once
)

// NewMetrics creates and registers Prometheus metrics. Registration happens once per process.
func NewMetrics() *Metrics {
	initOnce.Do(func() {
		globalMetrics = &Metrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "object_storage_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "object_storage_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"method", "path", "status"},
			),
			requestsInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "object_storage_http_requests_in_flight",
					Help: "Number of HTTP requests currently being processed",
				},
			),
			responseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "object_storage_http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
				},
				[]string{"method", "path"},
			),
			healthStatus: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "object_storage_health_status",
					Help: "Health status of the simulator process (1 = healthy, 0 = unhealthy)",
				},
			),
			simulationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "object_storage_simulations_total",
					Help: "Total number of simulated lookups by result",
				},
				[]string{"result"},
			),
			transitionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "object_storage_status_transitions_total",
					Help: "Total number of component status transitions",
				},
				[]string{"kind", "status"},
			),
			migrationsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "object_storage_partition_migrations_total",
					Help: "Total number of files moved off a failed partition server",
				},
			),
			electionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "object_storage_leader_elections_total",
					Help: "Partition manager leader election events by phase",
				},
				[]string{"phase"},
			),
			componentUp: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "object_storage_component_up",
					Help: "Simulated component health (1 = up, 0 = down)",
				},
				[]string{"component"},
			),
		}
	})

	return globalMetrics
}

// RecordHTTPRequest records metrics for an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RequestsTotal exposes the request counter for assertions.
func (m *Metrics) RequestsTotal() *prometheus.CounterVec {
	return m.requestsTotal
}

// RecordResponseSize records the response size.
func (m *Metrics) RecordResponseSize(method, path string, size int) {
	m.responseSize.WithLabelValues(method, path).Observe(float64(size))
}

// IncRequestsInFlight increments the in-flight requests counter.
func (m *Metrics) IncRequestsInFlight() {
	m.requestsInFlight.Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter.
func (m *Metrics) DecRequestsInFlight() {
	m.requestsInFlight.Dec()
}

// SetHealthStatus sets the health status.
func (m *Metrics) SetHealthStatus(healthy bool) {
	m.healthStatus.Set(boolToFloat(healthy))
}

// RecordSimulation counts a simulated lookup.
func (m *Metrics) RecordSimulation(result string) {
	m.simulationsTotal.WithLabelValues(result).Inc()
}

// RecordStatusTransition counts a component changing status.
func (m *Metrics) RecordStatusTransition(kind, status string) {
	m.transitionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordMigrations counts files moved between partition servers.
func (m *Metrics) RecordMigrations(n int) {
	m.migrationsTotal.Add(float64(n))
}

// RecordElection counts a leader election phase.
func (m *Metrics) RecordElection(phase string) {
	m.electionsTotal.WithLabelValues(phase).Inc()
}

// SetComponentUp mirrors a component's simulated health.
func (m *Metrics) SetComponentUp(component string, up bool) {
	m.componentUp.WithLabelValues(component).Set(boolToFloat(up))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// MetricsServer provides a separate HTTP server for Prometheus metrics.
type MetricsServer struct {
	server *http.Server
	logger *zap.Logger
}

// NewMetricsServer creates a new metrics server.
func NewMetricsServer(port int, path string, logger *zap.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the metrics server.
func (ms *MetricsServer) Start() error {
	ms.logger.Info("starting metrics server", zap.String("addr", ms.server.Addr))
	if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}

// MetricsMiddleware creates middleware that records HTTP metrics.
// Paths are labelled with routeLabel so path parameters do not explode cardinality.
func MetricsMiddleware(m *Metrics, routeLabel func(*http.Request) string) func(http.Handler) http.Handler {
	if routeLabel == nil {
		routeLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncRequestsInFlight()
			defer m.DecRequestsInFlight()

			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := routeLabel(r)
			m.RecordHTTPRequest(r.Method, path, rw.statusCode, time.Since(start))
			m.RecordResponseSize(r.Method, path, rw.size)
		})
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture metrics.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// WriteHeader captures the status code.
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size.
func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
