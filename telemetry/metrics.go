package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orbiter"

// Metrics holds the simulation collectors on a private registry. A nil
// *Metrics records nothing.
type Metrics struct {
	ticks        prometheus.Counter
	loads        *prometheus.CounterVec
	tickFailures *prometheus.CounterVec
	execute      prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks run",
		}),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "program_loads_total",
				Help:      "Program loads by result",
			},
			[]string{"result"},
		),
		tickFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tick_failures_total",
				Help:      "Failed program ticks by error kind",
			},
			[]string{"kind"},
		),
		execute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execute_seconds",
			Help:      "Wall-clock time of one program tick",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
	}
	registry.MustRegister(m.ticks, m.loads, m.tickFailures, m.execute)
	return m
}

func (m *Metrics) RecordTick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

// RecordLoad counts a load attempt; result is "ok" or the error kind.
func (m *Metrics) RecordLoad(result string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordTickFailure(kind string) {
	if m == nil {
		return
	}
	m.tickFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveExecute(d time.Duration) {
	if m == nil {
		return
	}
	m.execute.Observe(d.Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
