package container

import "sort"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Register() binds services. Boot() runs after every provider of the
// current pass has been registered, so it may resolve other bindings.
// Provides() lists the service ids the provider defers on; an empty list
// means the provider is eager.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("logger", func(c *container.Container) (any, error) {
//	        return logging.New(), nil
//	    })
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the service ids this provider is deferred on.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []string
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with no-op Register(), Boot() and
// an empty Provides(). Embed it and override only what you need.
type BaseProvider struct{}

func (p *BaseProvider) Register(_ *Container) {}
func (p *BaseProvider) Boot(_ *Container)     {}
func (p *BaseProvider) Provides() []string    { return nil }

// ── ProviderTable ─────────────────────────────────────────────────────────────

// ProviderFactory constructs a fresh provider instance.
type ProviderFactory func() ServiceProvider

// ProviderTable maps provider ids to constructors. The container and the
// bootstrap cache only ever refer to providers by id, so the table is the
// single place where an id becomes a value.
//
//	table := container.NewProviderTable()
//	table.Add("app.reports", func() container.ServiceProvider { return &ReportProvider{} })
type ProviderTable struct {
	factories map[string]ProviderFactory
}

// NewProviderTable creates an empty table.
func NewProviderTable() *ProviderTable {
	return &ProviderTable{factories: make(map[string]ProviderFactory)}
}

// Add registers (or replaces) the constructor for id.
func (t *ProviderTable) Add(id string, factory ProviderFactory) *ProviderTable {
	t.factories[id] = factory
	return t
}

// Has reports whether id has a constructor.
func (t *ProviderTable) Has(id string) bool {
	_, ok := t.factories[id]
	return ok
}

// Make constructs a new provider for id.
func (t *ProviderTable) Make(id string) (ServiceProvider, error) {
	f, ok := t.factories[id]
	if !ok || f == nil {
		return nil, &UnknownProviderError{Provider: id}
	}
	return f(), nil
}

// IDs returns the registered provider ids, sorted.
func (t *ProviderTable) IDs() []string {
	out := make([]string, 0, len(t.factories))
	for id := range t.factories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
