package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Engine metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Anomalies         *prometheus.CounterVec
	StrictFailures    *prometheus.CounterVec

	// Backend metrics
	BackendCalls    *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for JSON API
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	TotalOperations   int64   `json:"total_operations"`
	TotalAnomalies    int64   `json:"total_anomalies"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"-"` // sum of all request durations
	RequestCount      int64   `json:"-"` // count for averaging
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer
// for the process endpoint or a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuclear_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuclear_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuclear_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Engine metrics
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_engine_operations_total",
				Help: "Total number of engine operations",
			},
			[]string{"operation", "mode"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuclear_engine_operation_duration_seconds",
				Help:    "Engine operation duration in seconds",
				Buckets: []float64{1e-7, 1e-6, 1e-5, 1e-4, 1e-3, .01, .1, 1},
			},
			[]string{"operation"},
		),
		Anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_anomalies_total",
				Help: "Numeric anomalies recorded by tracers",
			},
			[]string{"error_type", "severity"},
		),
		StrictFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_strict_failures_total",
				Help: "Operations failed by strict mode",
			},
			[]string{"error_type"},
		),

		// Backend metrics
		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_backend_calls_total",
				Help: "Total number of backend calls",
			},
			[]string{"backend", "operation", "status"},
		),
		BackendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nuclear_backend_duration_seconds",
				Help:    "Backend call duration in seconds",
				Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, .01, .1, 1, 5},
			},
			[]string{"backend", "operation"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nuclear_backend_breaker_state",
				Help: "Circuit breaker state per backend (0 closed, 1 half-open, 2 open)",
			},
			[]string{"backend"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nuclear_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nuclear_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "nuclear_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records one engine call
func (m *Metrics) RecordOperation(op, mode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, mode).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalOperations++
	m.mu.Unlock()
}

// RecordAnomaly counts a recorded numeric anomaly
func (m *Metrics) RecordAnomaly(errorType, severity string) {
	if m == nil {
		return
	}
	m.Anomalies.WithLabelValues(errorType, severity).Inc()

	m.mu.Lock()
	m.snapshot.TotalAnomalies++
	m.mu.Unlock()
}

// RecordStrictFailure counts an operation aborted by strict mode
func (m *Metrics) RecordStrictFailure(errorType string) {
	if m == nil {
		return
	}
	m.StrictFailures.WithLabelValues(errorType).Inc()
}

// RecordBackendCall records a backend call
func (m *Metrics) RecordBackendCall(backend, op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(backend, op, status).Inc()
	m.BackendDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// SetBreakerState publishes a breaker state as its ordinal
func (m *Metrics) SetBreakerState(backend string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(backend).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns current values for the JSON stats endpoint
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.RequestCount > 0 {
		s.AvgLatencyMS = s.TotalDuration / float64(s.RequestCount) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
