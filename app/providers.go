package app

import (
	"net/http"

	"github.com/km-arc/go-foundation/framework/container"
	gohttp "github.com/km-arc/go-foundation/framework/http"
	"github.com/km-arc/go-foundation/framework/routing"
)

// Provider ids.
const (
	StandardProvider = "app.standard"
	DeferredProvider = "app.deferred"
)

// Providers lists the demo provider ids in registration order.
var Providers = []string{StandardProvider, DeferredProvider}

// Register adds the demo providers to table.
func Register(table *container.ProviderTable) *container.ProviderTable {
	return table.
		Add(StandardProvider, func() container.ServiceProvider { return &StandardServiceProvider{} }).
		Add(DeferredProvider, func() container.ServiceProvider { return &DeferredServiceProvider{} })
}

// ── StandardServiceProvider ───────────────────────────────────────────────────

// StandardServiceProvider is eager.
//
// Bound ids:
//   - "standard_provider"  → DemoService
//   - "formatter"          → plain Formatter
//   - "greeter"            → *Greeter, which receives a shouting Formatter
type StandardServiceProvider struct {
	container.BaseProvider
}

func (p *StandardServiceProvider) Register(app *container.Container) {
	app.Singleton("standard_provider", func(*container.Container) (any, error) {
		return DemoService{}, nil
	})

	app.Bind("formatter", func(*container.Container) (any, error) {
		return plainFormatter{}, nil
	})
	app.Bind("greeter", func(c *container.Container) (any, error) {
		f, err := container.Resolve[Formatter](c, "formatter")
		if err != nil {
			return nil, err
		}
		return &Greeter{formatter: f}, nil
	})

	// Only the greeter shouts; everyone else keeps the plain formatter.
	app.AddContextualBinding("greeter", "formatter", func(*container.Container) (any, error) {
		return shoutFormatter{}, nil
	})
}

// Boot mounts GET /hello on the router when routing is loaded.
func (p *StandardServiceProvider) Boot(app *container.Container) {
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return
	}
	router.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		res := gohttp.NewResponse(w)

		greeter, err := container.Resolve[*Greeter](app, "greeter")
		if err != nil {
			res.ServerError(err.Error())
			return
		}
		name := gohttp.NewRequest(r).Query("name", "world")
		res.Success(map[string]any{"message": greeter.Greet(name)})
	})
}

// ── DeferredServiceProvider ───────────────────────────────────────────────────

// DeferredServiceProvider is only registered when "deferred_provider" is
// first requested.
type DeferredServiceProvider struct {
	container.BaseProvider
}

func (p *DeferredServiceProvider) Register(app *container.Container) {
	app.Singleton("deferred_provider", func(*container.Container) (any, error) {
		return &Report{Title: "deferred"}, nil
	})
}

func (p *DeferredServiceProvider) Provides() []string {
	return []string{"deferred_provider"}
}
