package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-foundation/framework/container"
)

// Cache builds and loads the provider snapshot.
//
//	cache := bootstrap.New(table, bootstrap.NewFileStore("cache", "json"), bootstrap.JSONCodec{})
//	_, _ = cache.Build(ctx, ids)
//	c := container.New(container.WithProviderTable(table), container.WithBootstrapCache(cache))
//	_ = c.Bootstrap(ctx, ids)
type Cache struct {
	table  *container.ProviderTable
	store  Store
	codec  Codec
	logger *zap.Logger
}

// New creates a Cache. A nil logger discards output.
func New(table *container.ProviderTable, store Store, codec Codec, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{table: table, store: store, codec: codec, logger: logger}
}

// Store returns the backing store.
func (b *Cache) Store() Store { return b.store }

// Build classifies the providers in ids and rewrites the whole snapshot.
func (b *Cache) Build(ctx context.Context, ids []string) (Snapshot, error) {
	snap, err := Classify(b.table, ids)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: build: %w", err)
	}

	data, err := b.codec.Encode(snap)
	if err != nil {
		return Snapshot{}, err
	}
	if err := b.store.Write(ctx, data); err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: write %s: %w", b.store.Location(), err)
	}

	b.logger.Debug("snapshot written",
		zap.String("location", b.store.Location()),
		zap.Int("eager", len(snap.Providers)),
		zap.Int("deferred", len(snap.Deferred)))
	return snap, nil
}

// Read decodes the persisted snapshot.
func (b *Cache) Read(ctx context.Context) (Snapshot, error) {
	data, err := b.store.Read(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: read %s: %w", b.store.Location(), err)
	}
	return b.codec.Decode(data)
}

// Cached reports whether a snapshot has been written.
func (b *Cache) Cached(ctx context.Context) (bool, error) {
	return b.store.Exists(ctx)
}

// Load restores the snapshot into c: deferred map first, then aliases, then
// the eager providers. Deferred providers stay untouched until one of their
// services is requested.
func (b *Cache) Load(ctx context.Context, c *container.Container) error {
	snap, err := b.Read(ctx)
	if err != nil {
		return err
	}

	c.SetDeferredServices(snap.Deferred)
	for alias, id := range snap.Aliases {
		c.Alias(alias, id)
	}
	for _, id := range snap.Providers {
		if err := c.RegisterProvider(id); err != nil {
			return fmt.Errorf("bootstrap: load: %w", err)
		}
	}

	b.logger.Debug("snapshot loaded",
		zap.String("location", b.store.Location()),
		zap.Strings("eager", snap.Providers))
	return nil
}

// Clear removes the snapshot.
func (b *Cache) Clear(ctx context.Context) error {
	return b.store.Delete(ctx)
}

var _ container.SnapshotLoader = (*Cache)(nil)
