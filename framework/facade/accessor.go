// Package facade provides typed accessors to container services.
//
// An Accessor is bound once to a container key and re-resolves that key on
// every call, so it always sees the container's own singleton memoization.
// The container reaches accessors through an explicit Handle instead of
// process-wide state:
//
//	handle := facade.NewHandle()
//	greeting := facade.New[Greeter](handle, "greeting")
//	handle.Attach(c)
//
//	msg, err := facade.Call(greeting, func(g Greeter) string { return g.Message("hi") })
package facade

import (
	"errors"
	"fmt"

	"github.com/km-arc/go-foundation/framework/container"
)

var (
	// ErrNotConfigured is returned when an accessor is used before a
	// container has been attached to its handle.
	ErrNotConfigured = errors.New("facade: application container has not been set")

	// ErrInvocation is wrapped by InvocationError.
	ErrInvocation = errors.New("facade: resolved service lacks the requested capability")
)

// InvocationError reports a resolved service that does not implement the
// accessor's type.
type InvocationError struct {
	Key  string
	Want string
	Got  string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("facade: [%s] resolved to %s, which does not implement %s", e.Key, e.Got, e.Want)
}

func (e *InvocationError) Unwrap() error { return ErrInvocation }

// ── Handle ────────────────────────────────────────────────────────────────────

// Handle carries the container shared by a set of accessors.
type Handle struct {
	c *container.Container
}

// NewHandle creates a handle with no container attached.
func NewHandle() *Handle { return &Handle{} }

// Attach sets the container used by every accessor on this handle.
func (h *Handle) Attach(c *container.Container) { h.c = c }

// Container returns the attached container or ErrNotConfigured.
func (h *Handle) Container() (*container.Container, error) {
	if h == nil || h.c == nil {
		return nil, ErrNotConfigured
	}
	return h.c, nil
}

// ── Accessor ──────────────────────────────────────────────────────────────────

// Accessor is a typed proxy for the service bound at Key.
type Accessor[T any] struct {
	handle *Handle
	key    string
}

// New binds an accessor of type T to key.
func New[T any](h *Handle, key string) *Accessor[T] {
	return &Accessor[T]{handle: h, key: key}
}

// Key returns the container key the accessor resolves.
func (a *Accessor[T]) Key() string { return a.key }

// Resolve fetches the service from the container. Nothing is cached here.
func (a *Accessor[T]) Resolve() (T, error) {
	var zero T
	c, err := a.handle.Container()
	if err != nil {
		return zero, err
	}

	instance, err := c.Get(a.key)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, &InvocationError{
			Key:  a.key,
			Want: fmt.Sprintf("%T", &zero)[1:],
			Got:  fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}

// Call resolves the service and forwards to fn.
func Call[T, R any](a *Accessor[T], fn func(T) R) (R, error) {
	svc, err := a.Resolve()
	if err != nil {
		var zero R
		return zero, err
	}
	return fn(svc), nil
}

// CallE is Call for capabilities that return an error themselves.
func CallE[T, R any](a *Accessor[T], fn func(T) (R, error)) (R, error) {
	svc, err := a.Resolve()
	if err != nil {
		var zero R
		return zero, err
	}
	return fn(svc)
}
