// Package metrics exports container activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-foundation/framework/container"
)

// Collector implements container.Observer on a private registry.
type Collector struct {
	registry *prometheus.Registry

	resolutions        *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	providers          *prometheus.CounterVec
	deferredLoads      *prometheus.CounterVec
}

// New creates a Collector. When withRuntime is set the Go and process
// collectors are registered too.
func New(namespace string, withRuntime bool) *Collector {
	m := &Collector{registry: prometheus.NewRegistry()}

	if withRuntime {
		m.registry.MustRegister(collectors.NewGoCollector())
		m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	m.resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "resolutions_total",
			Help:      "Services built by the container, by id and outcome",
		},
		[]string{"service", "outcome"},
	)
	m.resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "resolution_duration_seconds",
			Help:      "Time spent building a service, including its dependencies",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"service"},
	)
	m.providers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "providers_registered_total",
			Help:      "Service providers registered",
		},
		[]string{"provider"},
	)
	m.deferredLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "deferred_loads_total",
			Help:      "Deferred providers loaded on first request of one of their services",
		},
		[]string{"service", "provider"},
	)

	m.registry.MustRegister(m.resolutions, m.resolutionDuration, m.providers, m.deferredLoads)
	return m
}

// ServiceResolved records one resolution that reached the factory.
func (m *Collector) ServiceResolved(id string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resolutions.WithLabelValues(id, outcome).Inc()
	m.resolutionDuration.WithLabelValues(id).Observe(elapsed.Seconds())
}

func (m *Collector) ProviderRegistered(provider string) {
	m.providers.WithLabelValues(provider).Inc()
}

func (m *Collector) DeferredTriggered(service, provider string) {
	m.deferredLoads.WithLabelValues(service, provider).Inc()
}

// Registry returns the underlying registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ container.Observer = (*Collector)(nil)
