package container

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SnapshotLoader restores a persisted provider classification into a
// container. Implemented by bootstrap.Cache.
type SnapshotLoader interface {
	// Cached reports whether a snapshot is available.
	Cached(ctx context.Context) (bool, error)

	// Load installs the deferred map and aliases, then registers the eager
	// providers of the snapshot.
	Load(ctx context.Context, c *Container) error
}

// Observer receives resolution and provider lifecycle events.
type Observer interface {
	ServiceResolved(id string, elapsed time.Duration, err error)
	ProviderRegistered(provider string)
	DeferredTriggered(service, provider string)
}

// Option configures a Container.
type Option func(*Container)

// WithProviderTable sets the table used to construct providers by id.
func WithProviderTable(t *ProviderTable) Option {
	return func(c *Container) { c.table = t }
}

// WithBootstrapCache sets the snapshot loader consulted by Bootstrap.
func WithBootstrapCache(l SnapshotLoader) Option {
	return func(c *Container) { c.cache = l }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Container) { c.observer = o }
}

type nopObserver struct{}

func (nopObserver) ServiceResolved(string, time.Duration, error) {}
func (nopObserver) ProviderRegistered(string)                    {}
func (nopObserver) DeferredTriggered(string, string)             {}
