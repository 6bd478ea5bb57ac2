package http

import (
	"net/http"

	"github.com/km-arc/go-foundation/framework/container"
	"github.com/km-arc/go-foundation/framework/routing"
)

// Inspector serves read-only views of a container. None of its routes
// resolve services, so they never trigger deferred providers.
type Inspector struct {
	c *container.Container
}

// NewInspector creates an Inspector for c.
func NewInspector(c *container.Container) *Inspector {
	return &Inspector{c: c}
}

// Routes mounts the inspector under /_container.
//
//	GET /_container/providers
//	GET /_container/bindings
//	GET /_container/deferred
//	GET /_container/services/{id}
func (in *Inspector) Routes(r *routing.Router) {
	r.Prefix("/_container", func(r *routing.Router) {
		r.Get("/providers", in.providers)
		r.Get("/bindings", in.bindings)
		r.Get("/deferred", in.deferred)
		r.Get("/services/{id}", in.service)
	})
}

func (in *Inspector) providers(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"providers": in.c.Providers(),
		"booted":    in.c.Booted(),
	})
}

func (in *Inspector) bindings(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"bindings": in.c.Bindings(),
		"aliases":  in.c.Aliases(),
	})
}

func (in *Inspector) deferred(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(in.c.DeferredServices())
}

func (in *Inspector) service(w http.ResponseWriter, r *http.Request) {
	id := NewRequest(r).Param("id")
	provider, deferred := in.c.DeferredServices()[id]

	if !in.c.Has(id) && !in.c.Bound(id) && !deferred {
		NewResponse(w).NotFound("Service [" + id + "] not bound.")
		return
	}
	NewResponse(w).Success(map[string]any{
		"id":       id,
		"bound":    in.c.Bound(id),
		"alias":    in.c.Aliases()[id],
		"deferred": deferred,
		"provider": provider,
	})
}
