// Package app is the application entry point. It wires configuration,
// logging, metrics, the provider table, the bootstrap snapshot and the
// container together, then fires the provider lifecycle.
//
//	a, err := app.Build(".")
//	demo.Register(a.Table())
//	err = a.WithProviders(demo.Providers...)
//	err = a.Fire(ctx)
//	svc, err := a.Get("standard_provider")
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/km-arc/go-foundation/framework/bootstrap"
	"github.com/km-arc/go-foundation/framework/config"
	"github.com/km-arc/go-foundation/framework/container"
	"github.com/km-arc/go-foundation/framework/facade"
	"github.com/km-arc/go-foundation/framework/logging"
	"github.com/km-arc/go-foundation/framework/metrics"
	"github.com/km-arc/go-foundation/framework/providers"
	"github.com/km-arc/go-foundation/framework/routing"
)

// ErrEmptyProviders is returned by WithProviders when given no ids.
var ErrEmptyProviders = errors.New("app: providers are not set")

// Application embeds the container so user code calls a.Get, a.Bind and
// a.Singleton directly.
type Application struct {
	*container.Container

	basePath  string
	version   string
	config    *config.Config
	logger    *zap.Logger
	metrics   *metrics.Collector
	table     *container.ProviderTable
	cache     *bootstrap.Cache
	facades   *facade.Handle
	providers []string
	redis     redis.UniversalClient
}

// Option customises Build.
type Option func(*options)

type options struct {
	envFiles []string
	config   *config.Config
	logger   *zap.Logger
	store    bootstrap.Store
	facades  *facade.Handle
}

// WithEnvFiles loads the given .env files instead of <basePath>/.env.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig skips environment loading and uses cfg as is.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger replaces the logger built from LOG_LEVEL / LOG_FORMAT.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore replaces the snapshot store selected by CACHE_DRIVER.
func WithStore(s bootstrap.Store) Option {
	return func(o *options) { o.store = s }
}

// WithFacades attaches the container to an existing handle instead of a
// fresh one.
func WithFacades(h *facade.Handle) Option {
	return func(o *options) { o.facades = h }
}

// Build creates the application rooted at basePath. The snapshot lives in
// <basePath>/cache unless CACHE_PATH says otherwise.
func Build(basePath string, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.Load(basePath, o.envFiles...)
	}

	logger := o.logger
	if logger == nil {
		l, err := logging.New(cfg.Log, cfg.App.Env)
		if err != nil {
			return nil, fmt.Errorf("app: logger: %w", err)
		}
		logger = l
	}

	codec, err := bootstrap.CodecFor(cfg.Cache.Format)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &Application{
		basePath: basePath,
		version:  cfg.App.Version,
		config:   cfg,
		logger:   logger,
		metrics:  metrics.New(cfg.Metrics.Namespace, true),
		facades:  o.facades,
	}
	if a.facades == nil {
		a.facades = facade.NewHandle()
	}

	store := o.store
	if store == nil {
		if store, err = a.newStore(codec); err != nil {
			return nil, err
		}
	}

	a.table = providers.Register(container.NewProviderTable(), cfg, logger, a.metrics)
	a.cache = bootstrap.New(a.table, store, codec, logger)
	a.Container = container.New(
		container.WithProviderTable(a.table),
		container.WithBootstrapCache(a.cache),
		container.WithLogger(logger),
		container.WithObserver(a.metrics),
	)
	a.Instance("app", a)
	a.facades.Attach(a.Container)

	logger.Debug("application built",
		zap.String("base_path", basePath),
		zap.String("container_id", a.ID()),
		zap.String("snapshot", store.Location()))
	return a, nil
}

func (a *Application) newStore(codec bootstrap.Codec) (bootstrap.Store, error) {
	switch a.config.Cache.Driver {
	case "", "file":
		return bootstrap.NewFileStore(a.config.Cache.Path, codec.Ext()), nil
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.config.Redis.Addr,
			Password: a.config.Redis.Password,
			DB:       a.config.Redis.DB,
		})
		return bootstrap.NewRedisStore(a.redis, a.config.Redis.Key), nil
	default:
		return nil, fmt.Errorf("app: unknown cache driver %q", a.config.Cache.Driver)
	}
}

// ── Configuration ─────────────────────────────────────────────────────────────

// WithProviders sets the application's own provider ids. They are loaded
// after the framework providers, in the given order. Every id must already
// be in the provider table.
func (a *Application) WithProviders(ids ...string) error {
	if len(ids) == 0 {
		return ErrEmptyProviders
	}
	for _, id := range ids {
		if !a.table.Has(id) {
			return &container.UnknownProviderError{Provider: id}
		}
	}
	a.providers = append([]string(nil), ids...)
	return nil
}

// AsVersion overrides the version reported by Version.
func (a *Application) AsVersion(version string) *Application {
	a.version = version
	return a
}

// Providers returns the configured provider ids: the framework providers
// followed by those passed to WithProviders. It shadows
// Container.Providers; use a.Container.Providers() for the ids actually
// registered so far.
func (a *Application) Providers() []string {
	out := make([]string, 0, len(providers.Core)+len(a.providers))
	out = append(out, providers.Core...)
	return append(out, a.providers...)
}

func (a *Application) Version() string  { return a.version }
func (a *Application) BasePath() string { return a.basePath }

func (a *Application) Config() *config.Config      { return a.config }
func (a *Application) Logger() *zap.Logger         { return a.logger }
func (a *Application) Metrics() *metrics.Collector { return a.metrics }

// Table returns the provider table. Add user providers to it before
// calling WithProviders.
func (a *Application) Table() *container.ProviderTable { return a.table }

// Cache returns the bootstrap snapshot cache.
func (a *Application) Cache() *bootstrap.Cache { return a.cache }

// Facades returns the handle the container is attached to.
func (a *Application) Facades() *facade.Handle { return a.facades }

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Fire writes the snapshot when it is missing (or CACHE_REFRESH is set),
// bootstraps the container from it and boots every registered provider.
func (a *Application) Fire(ctx context.Context) error {
	ids := a.Providers()

	cached, err := a.cache.Cached(ctx)
	if err != nil {
		return fmt.Errorf("app: fire: %w", err)
	}
	if !cached || a.config.Cache.Refresh {
		if _, err := a.cache.Build(ctx, ids); err != nil {
			return fmt.Errorf("app: fire: %w", err)
		}
	}

	if err := a.Bootstrap(ctx, ids); err != nil {
		return fmt.Errorf("app: fire: %w", err)
	}
	a.BootProviders()

	a.logger.Info("application fired",
		zap.String("name", a.config.App.Name),
		zap.String("version", a.version),
		zap.Strings("providers", a.Container.Providers()),
		zap.Int("deferred", len(a.DeferredServices())))
	return nil
}

// Handler returns the router bound by the routing provider.
func (a *Application) Handler() (http.Handler, error) {
	router, err := container.Resolve[*routing.Router](a.Container, "router")
	if err != nil {
		return nil, err
	}
	return router, nil
}

// Run fires the application if needed and serves HTTP on APP_PORT until
// ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Booted() {
		if err := a.Fire(ctx); err != nil {
			return err
		}
	}

	handler, err := a.Handler()
	if err != nil {
		return fmt.Errorf("app: run: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + a.config.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", a.config.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases the Redis client (if any) and flushes the logger.
func (a *Application) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
