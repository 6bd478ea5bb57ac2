package container

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a concrete value from the container.
type Factory func(c *Container) (any, error)

// BeforeHook runs immediately before id is resolved.
type BeforeHook func(c *Container, id string)

// AfterHook runs after id is resolved. It may inspect the instance but
// cannot replace it.
type AfterHook func(c *Container, instance any)

// binding holds a registered factory and whether it is a singleton.
type binding struct {
	factory   Factory
	singleton bool
}

// providerRecord tracks one provider's position in the two-phase protocol.
type providerRecord struct {
	registered bool
	booted     bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Get / Resolve (generic)
//   - Contextual binding (when A needs B, give it C)
//   - Before / after resolving hooks
//   - Service providers, registered by id, with deferred loading
//   - Bootstrapping from a persisted provider snapshot
//
// A Container is not safe for concurrent use.
type Container struct {
	id       string
	logger   *zap.Logger
	observer Observer
	table    *ProviderTable
	cache    SnapshotLoader

	// id → binding
	bindings map[string]*binding

	// id → memoized instance (singletons and Instance values)
	instances map[string]any

	// alias → id (canonical key)
	aliases map[string]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	beforeResolving map[string][]BeforeHook
	afterResolving  map[string][]AfterHook

	// service id → provider id, removed on first request
	deferred map[string]string

	// provider ids in registration order
	providers []string
	records   map[string]*providerRecord
	booted    bool

	// providers registered after boot while a Get was in flight; booted
	// once the outermost Get returns
	pendingBoots []string

	// stack of ids currently being resolved (for contextual lookup)
	buildStack []string
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:              uuid.NewString(),
		logger:          zap.NewNop(),
		observer:        nopObserver{},
		table:           NewProviderTable(),
		bindings:        make(map[string]*binding),
		instances:       make(map[string]any),
		aliases:         make(map[string]string),
		contextual:      make(map[string]map[string]Factory),
		beforeResolving: make(map[string][]BeforeHook),
		afterResolving:  make(map[string][]AfterHook),
		deferred:        make(map[string]string),
		records:         make(map[string]*providerRecord),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.table == nil {
		c.table = NewProviderTable()
	}
	c.logger = c.logger.With(zap.String("container_id", c.id))

	// Bind the container to itself, like Laravel's $app->instance()
	c.Instance("container", c)
	return c
}

// ID returns the container's instance id.
func (c *Container) ID() string { return c.id }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Get runs it again.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) (any, error) {
//	    return &EloquentUserRepository{}, nil
//	})
func (c *Container) Bind(id string, factory Factory) {
	c.bind(id, factory, false)
}

// Singleton registers a factory whose result is memoized after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(id string, factory Factory) {
	c.bind(id, factory, true)
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
func (c *Container) Instance(id string, instance any) {
	key := c.canonical(id)
	delete(c.bindings, key)
	c.instances[key] = instance
}

func (c *Container) bind(id string, factory Factory, singleton bool) {
	key := c.canonical(id)

	// Last write wins; a stale singleton would shadow the new factory.
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton}
}

// Alias registers alias as an alternative name for id.
//
//	// Laravel: $app->alias('cache', CacheManager::class)
func (c *Container) Alias(alias, id string) {
	c.aliases[alias] = id
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	err := c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return filesystem.NewS3(), nil
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// AddContextualBinding records that concrete receives implementation when it
// resolves abstract as a direct dependency.
func (c *Container) AddContextualBinding(concrete, abstract string, implementation Factory) {
	if _, ok := c.contextual[concrete]; !ok {
		c.contextual[concrete] = make(map[string]Factory)
	}
	c.contextual[concrete][abstract] = implementation
}

// contextualFor returns the override for key given the current top of the
// build stack, or nil.
func (c *Container) contextualFor(key string) Factory {
	if len(c.buildStack) == 0 {
		return nil
	}
	parent := c.buildStack[len(c.buildStack)-1]
	return c.contextual[parent][key]
}

// ── Hooks ─────────────────────────────────────────────────────────────────────

// BeforeResolving registers a callback run before id is resolved.
func (c *Container) BeforeResolving(id string, cb BeforeHook) {
	key := c.canonical(id)
	c.beforeResolving[key] = append(c.beforeResolving[key], cb)
}

// AfterResolving registers a callback run after id is resolved.
//
//	// Laravel: $app->afterResolving(Cache::class, fn($cache, $app) => ...)
func (c *Container) AfterResolving(id string, cb AfterHook) {
	key := c.canonical(id)
	c.afterResolving[key] = append(c.afterResolving[key], cb)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves id from the container.
//
// A contextual override registered for (caller, id) outranks both the
// memoized instance and the default binding. The build stack is restored
// on every exit path, including panics raised by factories or hooks.
// Providers loaded late by a deferred lookup are booted after the
// outermost Get returns, never mid-resolution.
//
//	// Laravel: $app->get(UserRepository::class)
//	repo, err := c.Get("UserRepository")
func (c *Container) Get(id string) (any, error) {
	instance, err := c.resolve(id)
	if len(c.buildStack) == 0 {
		c.bootPending()
	}
	return instance, err
}

func (c *Container) resolve(id string) (instance any, err error) {
	key := c.canonical(id)
	override := c.contextualFor(key)

	if override == nil {
		if inst, ok := c.instances[key]; ok {
			return inst, nil
		}
	}

	start := time.Now()
	c.buildStack = append(c.buildStack, key)
	defer func() {
		c.buildStack = c.buildStack[:len(c.buildStack)-1]
		c.observer.ServiceResolved(key, time.Since(start), err)
	}()

	for _, cb := range c.beforeResolving[key] {
		cb(c, key)
	}

	if _, ok := c.bindings[key]; !ok {
		if err := c.loadDeferredProvider(key); err != nil {
			return nil, err
		}
		// Registering the provider may have produced the instance already.
		if override == nil {
			if inst, ok := c.instances[key]; ok {
				return inst, nil
			}
		}
	}

	b, ok := c.bindings[key]
	if !ok {
		return nil, &NotFoundError{ID: key}
	}

	factory, memoize := b.factory, b.singleton
	if override != nil {
		factory, memoize = override, false
	}

	instance, err = factory(c)
	if err != nil {
		return nil, &ResolutionError{ID: key, Stack: c.BuildStack(), Cause: err}
	}

	for _, cb := range c.afterResolving[key] {
		cb(c, instance)
	}

	if memoize {
		c.instances[key] = instance
	}
	return instance, nil
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(id string) any {
	instance, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether a binding or alias exists for id. It never triggers
// deferred loading.
func (c *Container) Has(id string) bool {
	_, hasBinding := c.bindings[id]
	_, hasAlias := c.aliases[id]
	return hasBinding || hasAlias
}

// Bound reports whether id resolves to a binding or a pre-built instance.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(id string) bool {
	key := c.canonical(id)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Bindings returns all registered ids, sorted (for debugging).
func (c *Container) Bindings() []string {
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Aliases returns a copy of the alias table.
func (c *Container) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// BuildStack returns a copy of the ids currently being resolved.
func (c *Container) BuildStack() []string {
	return append([]string(nil), c.buildStack...)
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(id string) string {
	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// ── Providers ─────────────────────────────────────────────────────────────────

// RegisterProvider constructs the provider registered under id in the
// ProviderTable and runs its Register hook. Registering the same id twice
// is a no-op. A provider registered after BootProviders is booted at once,
// or, when a Get is in flight, as soon as the outermost Get returns.
// If Register panics the provider is forgotten, so it can be retried.
func (c *Container) RegisterProvider(id string) error {
	if _, ok := c.records[id]; ok {
		return nil
	}

	provider, err := c.table.Make(id)
	if err != nil {
		return err
	}

	rec := &providerRecord{}
	c.records[id] = rec
	c.providers = append(c.providers, id)
	defer func() {
		if !rec.registered {
			c.forgetProvider(id)
		}
	}()

	c.logger.Debug("registering provider", zap.String("provider", id))
	provider.Register(c)
	rec.registered = true
	c.observer.ProviderRegistered(id)

	switch {
	case !c.booted:
	case len(c.buildStack) > 0:
		c.pendingBoots = append(c.pendingBoots, id)
	default:
		c.bootProvider(id)
	}
	return nil
}

// forgetProvider undoes a registration whose Register hook did not return.
func (c *Container) forgetProvider(id string) {
	delete(c.records, id)
	for i, p := range c.providers {
		if p == id {
			c.providers = append(c.providers[:i], c.providers[i+1:]...)
			break
		}
	}
}

// loadDeferredProvider registers the provider owning service, at most once.
// The entry is put back if registration panics.
func (c *Container) loadDeferredProvider(service string) error {
	provider, ok := c.deferred[service]
	if !ok {
		return nil
	}
	delete(c.deferred, service)

	done := false
	defer func() {
		if !done {
			c.deferred[service] = provider
		}
	}()

	c.logger.Debug("loading deferred provider",
		zap.String("service", service), zap.String("provider", provider))
	c.observer.DeferredTriggered(service, provider)
	err := c.RegisterProvider(provider)
	done = true
	return err
}

// bootPending boots providers queued while a resolution was in flight.
// Their Boot hooks may queue more, which are drained by the same loop.
func (c *Container) bootPending() {
	for len(c.pendingBoots) > 0 {
		id := c.pendingBoots[0]
		c.pendingBoots = c.pendingBoots[1:]
		c.bootProvider(id)
	}
}

// BootProviders runs Boot on every registered provider, in registration
// order, on a freshly constructed instance. Providers registered while the
// pass is running are booted by the same pass. Calling it again is a no-op.
func (c *Container) BootProviders() {
	if c.booted {
		return
	}
	for i := 0; i < len(c.providers); i++ {
		c.bootProvider(c.providers[i])
	}
	c.booted = true
	c.logger.Debug("providers booted", zap.Int("count", len(c.providers)))
}

func (c *Container) bootProvider(id string) {
	rec := c.records[id]
	if rec == nil || !rec.registered || rec.booted {
		return
	}
	provider, err := c.table.Make(id)
	if err != nil {
		c.logger.Error("boot: provider vanished from table", zap.String("provider", id), zap.Error(err))
		return
	}
	rec.booted = true
	provider.Boot(c)
}

// Booted reports whether BootProviders has completed.
func (c *Container) Booted() bool { return c.booted }

// Bootstrap registers the application's providers. When the configured
// snapshot loader has a cached snapshot, the snapshot decides which
// providers are eager and which are deferred; otherwise every id in
// providers is registered directly.
func (c *Container) Bootstrap(ctx context.Context, providers []string) error {
	if c.cache != nil {
		cached, err := c.cache.Cached(ctx)
		if err != nil {
			return fmt.Errorf("container: bootstrap: %w", err)
		}
		if cached {
			c.logger.Debug("bootstrapping from snapshot")
			return c.cache.Load(ctx, c)
		}
	}

	for _, id := range providers {
		if err := c.RegisterProvider(id); err != nil {
			return err
		}
	}
	return nil
}

// Providers returns the registered provider ids in registration order.
func (c *Container) Providers() []string {
	return append([]string(nil), c.providers...)
}

// SetDeferredServices replaces the deferred map (service id → provider id).
func (c *Container) SetDeferredServices(deferred map[string]string) {
	c.deferred = make(map[string]string, len(deferred))
	for k, v := range deferred {
		c.deferred[k] = v
	}
}

// DeferredServices returns a copy of the deferred services not yet loaded.
func (c *Container) DeferredServices() map[string]string {
	out := make(map[string]string, len(c.deferred))
	for k, v := range c.deferred {
		out[k] = v
	}
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	// Instead of: v, _ := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			ID:   id,
			Want: fmt.Sprintf("%T", &zero)[1:],
			Got:  fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
