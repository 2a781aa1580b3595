// Package metrics holds the Prometheus instruments for the capture service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the capture service instruments. Each instance owns its
// registry, so servers and tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	CapturesTotal   *prometheus.CounterVec
	CaptureDuration prometheus.Histogram
	ActiveSessions  prometheus.Gauge
	PersistedBytes  prometheus.Counter
}

// New builds the capture instruments plus the standard process and Go
// runtime collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CapturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webshot_captures_total",
			Help: "Finished captures by outcome.",
		}, []string{"status"}),
		CaptureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webshot_capture_duration_seconds",
			Help:    "End to end capture latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webshot_active_sessions",
			Help: "Browser sessions currently running.",
		}),
		PersistedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webshot_persisted_bytes_total",
			Help: "Total bytes written to artifact storage.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CapturesTotal, m.CaptureDuration, m.ActiveSessions, m.PersistedBytes,
	)
	return m
}

// ObserveCapture records one finished capture.
func (m *Metrics) ObserveCapture(status string, seconds float64, bytes int) {
	m.CapturesTotal.WithLabelValues(status).Inc()
	m.CaptureDuration.Observe(seconds)
	if bytes > 0 {
		m.PersistedBytes.Add(float64(bytes))
	}
}

// SessionStarted and SessionEnded track the in-flight session gauge.
func (m *Metrics) SessionStarted() { m.ActiveSessions.Inc() }
func (m *Metrics) SessionEnded()   { m.ActiveSessions.Dec() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	)
}
