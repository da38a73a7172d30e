package core

import (
	nethttp "net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/searchktools/fast-telemetry/core/http"
)

const metricsNamespace = "fast_telemetry"

// Metrics holds the runtime collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry
	poolOnce sync.Once

	sessions       prometheus.Counter
	activeSessions prometheus.Gauge
	requests       *prometheus.CounterVec
	parseFailures  prometheus.Counter
}

// NewMetrics creates collectors on a fresh registry, including the Go and
// process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_total",
			Help:      "Accepted client sessions.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_active",
			Help:      "Sessions currently open.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Served requests by response status code.",
		}, []string{"code"}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_failures_total",
			Help:      "Requests rejected by the parser.",
		}),
	}

	m.registry.MustRegister(
		m.sessions,
		m.activeSessions,
		m.requests,
		m.parseFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() nethttp.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// registerPool exposes pool statistics read through stats.
// Only the first engine sharing m is registered.
func (m *Metrics) registerPool(stats func() PoolStats) {
	m.poolOnce.Do(func() { m.mustRegisterPool(stats) })
}

func (m *Metrics) mustRegisterPool(stats func() PoolStats) {
	gauge := func(name, help string, value func(PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	m.registry.MustRegister(
		gauge("workers", "Worker goroutines.", func(s PoolStats) float64 {
			return float64(s.Workers.NumWorkers)
		}),
		gauge("tasks_pending", "Tasks submitted but not completed.", func(s PoolStats) float64 {
			return float64(s.Workers.TasksPending)
		}),
		gauge("tasks_completed", "Tasks completed.", func(s PoolStats) float64 {
			return float64(s.Workers.TasksCompleted)
		}),
		gauge("read_buffer_misses", "Read buffers allocated because the pool was empty.", func(s PoolStats) float64 {
			return float64(s.Buffers.Misses)
		}),
	)
}

func (m *Metrics) sessionOpened() {
	m.sessions.Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	m.activeSessions.Dec()
}

func (m *Metrics) request(code http.StatusCode) {
	m.requests.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *Metrics) parseFailure() {
	m.parseFailures.Inc()
}
