// Package container provides a Laravel-style IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances, aliases, contextual bindings, resolving hooks and deferred
// service providers.
//
// Because Go has no runtime constructor reflection, auto-wiring is replaced
// by explicit factory functions, and providers are constructed from a
// ProviderTable that maps provider ids to constructors.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithProviderTable(table))
//  2. Register providers: c.Bootstrap(ctx, ids) or c.RegisterProvider(id)
//  3. Boot: c.BootProviders()      // safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Get()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) (any, error) { return &Foo{}, nil })
//
//	// Singleton: created once, reused
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.NewRedis(cfg), nil
//	})
//
//	// Alias
//	// Laravel: $app->alias(CacheManager::class, 'cache')
//	c.Alias("cacheManager", "cache")
//
// # Resolving
//
//	raw, err := c.Get("cache")
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//
// # Contextual Binding
//
// An override applies only while the dependency is resolved as a direct
// child of the named consumer:
//
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) (any, error) { return &S3Filesystem{}, nil })
//
// # Deferred Providers
//
// A provider whose Provides() list is non-empty is deferred: the bootstrap
// snapshot maps each provided id to the provider, and the provider is only
// registered the first time one of those ids is requested.
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) (any, error) {
//	        return heavySetup(), nil // only called on first Get("heavy")
//	    })
//	}
package container
