package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-foundation/framework/app"
	"github.com/km-arc/go-foundation/framework/bootstrap"
	"github.com/km-arc/go-foundation/framework/config"
	"github.com/km-arc/go-foundation/framework/container"
	"github.com/km-arc/go-foundation/framework/providers"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type clockProvider struct{ container.BaseProvider }

func (p *clockProvider) Register(c *container.Container) {
	c.Singleton("clock", func(*container.Container) (any, error) { return "tick", nil })
}

type mailProvider struct{ container.BaseProvider }

func (p *mailProvider) Register(c *container.Container) {
	c.Singleton("mailer", func(*container.Container) (any, error) { return "smtp", nil })
}

func (p *mailProvider) Provides() []string { return []string{"mailer"} }

func testConfig(base, format string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "Test", Env: "testing", Port: "0", Version: "0.1.0"},
		Log:     config.LogConfig{Level: "error"},
		Cache:   config.CacheConfig{Path: filepath.Join(base, "cache"), Format: format, Driver: "file"},
		Metrics: config.MetricsConfig{Namespace: "test"},
	}
}

func build(t *testing.T, cfg *config.Config) *app.Application {
	t.Helper()
	a, err := app.Build(filepath.Dir(cfg.Cache.Path), app.WithConfig(cfg), app.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	a.Table().
		Add("test.clock", func() container.ServiceProvider { return &clockProvider{} }).
		Add("test.mail", func() container.ServiceProvider { return &mailProvider{} })
	require.NoError(t, a.WithProviders("test.clock", "test.mail"))
	return a
}

// ── Build / configuration ────────────────────────────────────────────────────

func TestBuild_Defaults(t *testing.T) {
	base := t.TempDir()
	a := build(t, testConfig(base, "json"))

	assert.Equal(t, base, a.BasePath())
	assert.Equal(t, "0.1.0", a.Version())
	assert.Equal(t, "1.2.3", a.AsVersion("1.2.3").Version())

	c, err := a.Facades().Container()
	require.NoError(t, err)
	assert.Same(t, a.Container, c)

	self, err := a.Get("app")
	require.NoError(t, err)
	assert.Same(t, a, self)
}

func TestBuild_UnknownCacheDriver(t *testing.T) {
	cfg := testConfig(t.TempDir(), "json")
	cfg.Cache.Driver = "memcached"

	_, err := app.Build(".", app.WithConfig(cfg), app.WithLogger(zap.NewNop()))
	assert.ErrorContains(t, err, `unknown cache driver "memcached"`)
}

func TestBuild_UnknownCacheFormat(t *testing.T) {
	cfg := testConfig(t.TempDir(), "xml")

	_, err := app.Build(".", app.WithConfig(cfg), app.WithLogger(zap.NewNop()))
	assert.Error(t, err)
}

func TestWithProviders_Empty(t *testing.T) {
	a := build(t, testConfig(t.TempDir(), "json"))
	assert.ErrorIs(t, a.WithProviders(), app.ErrEmptyProviders)
}

func TestWithProviders_Unknown(t *testing.T) {
	a := build(t, testConfig(t.TempDir(), "json"))

	err := a.WithProviders("test.ghost")
	assert.ErrorIs(t, err, container.ErrUnknownProvider)
}

func TestProviders_FrameworkFirst(t *testing.T) {
	a := build(t, testConfig(t.TempDir(), "json"))

	want := append(append([]string{}, providers.Core...), "test.clock", "test.mail")
	assert.Equal(t, want, a.Providers())
}

// ── Fire ─────────────────────────────────────────────────────────────────────

func TestFire_WritesSnapshotAndBoots(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			cfg := testConfig(t.TempDir(), format)
			a := build(t, cfg)
			require.NoError(t, a.Fire(context.Background()))

			_, err := os.Stat(filepath.Join(cfg.Cache.Path, bootstrap.FileName+"."+format))
			require.NoError(t, err)

			snap, err := a.Cache().Read(context.Background())
			require.NoError(t, err)
			assert.Contains(t, snap.Providers, "test.clock")
			assert.Equal(t, "test.mail", snap.Deferred["mailer"])
			assert.Equal(t, "mailer", snap.Aliases["mailer"])

			assert.True(t, a.Booted())
			assert.NotContains(t, a.Container.Providers(), "test.mail")

			mailer, err := a.Get("mailer")
			require.NoError(t, err)
			assert.Equal(t, "smtp", mailer)
			assert.Contains(t, a.Container.Providers(), "test.mail")
		})
	}
}

func TestFire_ReusesExistingSnapshot(t *testing.T) {
	cfg := testConfig(t.TempDir(), "json")
	a := build(t, cfg)

	// A snapshot written before the mail provider existed.
	_, err := a.Cache().Build(context.Background(), append(append([]string{}, providers.Core...), "test.clock"))
	require.NoError(t, err)
	require.NoError(t, a.Fire(context.Background()))

	_, err = a.Get("mailer")
	assert.True(t, errors.Is(err, container.ErrServiceNotFound), "stale snapshot is trusted, got %v", err)
}

func TestFire_RefreshRebuilds(t *testing.T) {
	cfg := testConfig(t.TempDir(), "json")
	cfg.Cache.Refresh = true
	a := build(t, cfg)

	_, err := a.Cache().Build(context.Background(), providers.Core)
	require.NoError(t, err)
	require.NoError(t, a.Fire(context.Background()))

	mailer, err := a.Get("mailer")
	require.NoError(t, err)
	assert.Equal(t, "smtp", mailer)
}

func TestHandler_ServesIntrospection(t *testing.T) {
	a := build(t, testConfig(t.TempDir(), "json"))
	require.NoError(t, a.Fire(context.Background()))

	h, err := a.Handler()
	require.NoError(t, err)

	for _, path := range []string{"/_container/providers", "/_container/deferred", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := build(t, testConfig(t.TempDir(), "json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}
