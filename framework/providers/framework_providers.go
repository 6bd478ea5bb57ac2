// Package providers holds the service providers every application starts
// with. They are added to the provider table by id and loaded by the
// container like any user provider, so the snapshot classifies them too.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-foundation/framework/config"
	"github.com/km-arc/go-foundation/framework/container"
	gohttp "github.com/km-arc/go-foundation/framework/http"
	"github.com/km-arc/go-foundation/framework/metrics"
	"github.com/km-arc/go-foundation/framework/routing"
)

// Provider ids, in the order they should be registered.
const (
	Config  = "framework.config"
	Log     = "framework.log"
	Metrics = "framework.metrics"
	Routing = "framework.routing"
)

// Core lists the framework provider ids in registration order.
var Core = []string{Config, Log, Metrics, Routing}

// Register adds the framework providers to table. The constructors capture
// the already-built config, logger and collector, so every provider
// instance the container makes shares them.
func Register(table *container.ProviderTable, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *container.ProviderTable {
	return table.
		Add(Config, func() container.ServiceProvider { return &ConfigServiceProvider{Config: cfg} }).
		Add(Log, func() container.ServiceProvider { return &LogServiceProvider{Logger: logger} }).
		Add(Metrics, func() container.ServiceProvider { return &MetricsServiceProvider{Collector: collector} }).
		Add(Routing, func() container.ServiceProvider { return &RoutingServiceProvider{} })
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound ids:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	app.Instance("config", p.Config)
	app.Alias("configuration", "config")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the application logger.
//
// Bound ids:
//   - "log"     → *zap.Logger
//   - "logger"  → alias of "log"
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app.Instance("log", logger)
	app.Alias("logger", "log")
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider is deferred on "metrics": the collector is only
// bound once something asks for it.
type MetricsServiceProvider struct {
	container.BaseProvider
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	collector := p.Collector
	app.Singleton("metrics", func(*container.Container) (any, error) {
		if collector == nil {
			return metrics.New("foundation", false), nil
		}
		return collector, nil
	})
}

func (p *MetricsServiceProvider) Provides() []string { return []string{"metrics"} }

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds the HTTP router and, once booted, mounts the
// container introspection routes and /metrics on it.
//
// Bound ids:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(*container.Container) (any, error) {
		return routing.New(), nil
	})
}

func (p *RoutingServiceProvider) Boot(app *container.Container) {
	logger := zap.NewNop()
	if l, err := container.Resolve[*zap.Logger](app, "log"); err == nil {
		logger = l
	}

	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		logger.Error("routing: router unavailable", zap.Error(err))
		return
	}
	gohttp.NewInspector(app).Routes(router)

	collector, err := container.Resolve[*metrics.Collector](app, "metrics")
	if err != nil {
		logger.Warn("routing: /metrics not mounted", zap.Error(err))
		return
	}
	router.Handle("/metrics", collector.Handler())
}
