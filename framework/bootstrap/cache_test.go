package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-foundation/framework/bootstrap"
	"github.com/km-arc/go-foundation/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type registrations map[string]int

type eagerProvider struct {
	container.BaseProvider
	seen registrations
}

func (p *eagerProvider) Register(app *container.Container) {
	p.seen["Eager"]++
	app.Singleton("eager", func(*container.Container) (any, error) { return "eager", nil })
}

type deferredProvider struct {
	container.BaseProvider
	seen registrations
}

func (p *deferredProvider) Register(app *container.Container) {
	p.seen["Deferred"]++
	app.Singleton("x", func(*container.Container) (any, error) { return &struct{ Name string }{"x"}, nil })
}

func (p *deferredProvider) Provides() []string { return []string{"x"} }

type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Provides() []string { return []string{"mail", "mailer"} }

func newTable(seen registrations) *container.ProviderTable {
	return container.NewProviderTable().
		Add("Eager", func() container.ServiceProvider { return &eagerProvider{seen: seen} }).
		Add("Deferred", func() container.ServiceProvider { return &deferredProvider{seen: seen} }).
		Add("Multi", func() container.ServiceProvider { return &multiProvider{} })
}

func newCache(t *testing.T, dir string, codec bootstrap.Codec, seen registrations) *bootstrap.Cache {
	t.Helper()
	return bootstrap.New(newTable(seen), bootstrap.NewFileStore(dir, codec.Ext()), codec, nil)
}

// ── Classify ──────────────────────────────────────────────────────────────────

func TestClassify(t *testing.T) {
	snap, err := bootstrap.Classify(newTable(registrations{}), []string{"Eager", "Deferred", "Multi"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Eager"}, snap.Providers)
	assert.Equal(t, map[string]string{"x": "Deferred", "mail": "Multi", "mailer": "Multi"}, snap.Deferred)
	assert.Equal(t, map[string]string{"x": "x", "mail": "mail", "mailer": "mailer"}, snap.Aliases)
}

func TestClassify_DoesNotRegister(t *testing.T) {
	seen := registrations{}
	_, err := bootstrap.Classify(newTable(seen), []string{"Eager", "Deferred"})
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestClassify_UnknownProvider(t *testing.T) {
	_, err := bootstrap.Classify(newTable(registrations{}), []string{"Eager", "Ghost"})
	assert.ErrorIs(t, err, container.ErrUnknownProvider)
}

// ── Build ─────────────────────────────────────────────────────────────────────

func TestBuild_WritesScenarioSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache := newCache(t, dir, bootstrap.JSONCodec{}, registrations{})

	_, err := cache.Build(context.Background(), []string{"Eager", "Deferred"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "app.json"))
	require.NoError(t, err)

	want := "{\n" +
		"\t\"providers\": [\n\t\t\"Eager\"\n\t],\n" +
		"\t\"deferred\": {\n\t\t\"x\": \"Deferred\"\n\t},\n" +
		"\t\"aliases\": {\n\t\t\"x\": \"x\"\n\t}\n" +
		"}\n"
	assert.Equal(t, want, string(data))
}

func TestBuild_RewritesWholeSnapshot(t *testing.T) {
	dir := t.TempDir()
	cache := newCache(t, dir, bootstrap.JSONCodec{}, registrations{})
	ctx := context.Background()

	_, err := cache.Build(ctx, []string{"Eager", "Deferred", "Multi"})
	require.NoError(t, err)
	_, err = cache.Build(ctx, []string{"Eager"})
	require.NoError(t, err)

	snap, err := cache.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Eager"}, snap.Providers)
	assert.Empty(t, snap.Deferred)
	assert.Empty(t, snap.Aliases)
}

func TestBuild_DirectoryAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	cache := newCache(t, dir, bootstrap.JSONCodec{}, registrations{})

	_, err := cache.Build(context.Background(), []string{"Eager"})
	assert.NoError(t, err)
}

func TestBuild_DirectoryCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cache := newCache(t, filepath.Join(blocker, "cache"), bootstrap.JSONCodec{}, registrations{})

	_, err := cache.Build(context.Background(), []string{"Eager"})
	require.Error(t, err)
	assert.ErrorIs(t, err, bootstrap.ErrDirectoryNotCreated)

	var dnc *bootstrap.DirectoryNotCreatedError
	require.ErrorAs(t, err, &dnc)
	assert.Equal(t, filepath.Join(blocker, "cache"), dnc.Path)
}

// ── Round trip ────────────────────────────────────────────────────────────────

func TestRoundTrip_AllCodecs(t *testing.T) {
	codecs := []bootstrap.Codec{bootstrap.JSONCodec{}, bootstrap.YAMLCodec{}, bootstrap.TOMLCodec{}}
	ids := []string{"Eager", "Deferred", "Multi"}

	for _, codec := range codecs {
		t.Run(codec.Ext(), func(t *testing.T) {
			cache := newCache(t, t.TempDir(), codec, registrations{})
			ctx := context.Background()

			built, err := cache.Build(ctx, ids)
			require.NoError(t, err)

			loaded, err := cache.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, built, loaded)
		})
	}
}

// ── Load ──────────────────────────────────────────────────────────────────────

func TestLoad_Scenario(t *testing.T) {
	seen := registrations{}
	cache := newCache(t, t.TempDir(), bootstrap.JSONCodec{}, seen)
	ctx := context.Background()

	_, err := cache.Build(ctx, []string{"Eager", "Deferred"})
	require.NoError(t, err)

	c := container.New(container.WithProviderTable(newTable(seen)), container.WithBootstrapCache(cache))
	require.NoError(t, c.Bootstrap(ctx, []string{"Eager", "Deferred"}))

	assert.Equal(t, registrations{"Eager": 1}, seen)
	assert.Equal(t, []string{"Eager"}, c.Providers())
	assert.Equal(t, map[string]string{"x": "Deferred"}, c.DeferredServices())
	assert.Equal(t, "x", c.Aliases()["x"])

	first, err := c.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 1, seen["Deferred"])

	second, err := c.Get("x")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, seen["Deferred"])
	assert.Equal(t, []string{"Eager", "Deferred"}, c.Providers())
	assert.Empty(t, c.BuildStack())
}

func TestLoad_ReproducesClassification(t *testing.T) {
	cache := newCache(t, t.TempDir(), bootstrap.YAMLCodec{}, registrations{})
	ctx := context.Background()

	built, err := cache.Build(ctx, []string{"Multi", "Eager", "Deferred"})
	require.NoError(t, err)

	c := container.New(container.WithProviderTable(newTable(registrations{})))
	require.NoError(t, cache.Load(ctx, c))

	assert.Equal(t, built.Providers, c.Providers())
	assert.Equal(t, built.Deferred, c.DeferredServices())
	for alias, id := range built.Aliases {
		assert.Equal(t, id, c.Aliases()[alias])
	}
}

func TestLoad_MissingSnapshot(t *testing.T) {
	cache := newCache(t, t.TempDir(), bootstrap.JSONCodec{}, registrations{})
	ctx := context.Background()

	cached, err := cache.Cached(ctx)
	require.NoError(t, err)
	assert.False(t, cached)

	err = cache.Load(ctx, container.New())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClear(t *testing.T) {
	cache := newCache(t, t.TempDir(), bootstrap.JSONCodec{}, registrations{})
	ctx := context.Background()

	_, err := cache.Build(ctx, []string{"Eager"})
	require.NoError(t, err)
	cached, _ := cache.Cached(ctx)
	require.True(t, cached)

	require.NoError(t, cache.Clear(ctx))
	cached, _ = cache.Cached(ctx)
	assert.False(t, cached)

	// Clearing twice is fine.
	assert.NoError(t, cache.Clear(ctx))
}
