package container

import (
	"errors"
	"fmt"
	"strings"
)

// ── Sentinel errors ───────────────────────────────────────────────────────────

var (
	// ErrServiceNotFound is wrapped by NotFoundError.
	ErrServiceNotFound = errors.New("service not found")

	// ErrUnknownProvider is wrapped by UnknownProviderError.
	ErrUnknownProvider = errors.New("unknown service provider")

	// ErrContextualNeedsMissing is returned by Give when Needs was never called.
	ErrContextualNeedsMissing = errors.New("contextual binding: Give called before Needs")

	// ErrTypeMismatch is wrapped by TypeMismatchError.
	ErrTypeMismatch = errors.New("resolved value has unexpected type")
)

// ── Typed errors ──────────────────────────────────────────────────────────────

// NotFoundError reports an id that is neither bound, aliased nor deferred.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: service [%s] not bound", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrServiceNotFound }

// UnknownProviderError reports a provider id missing from the ProviderTable.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("container: provider [%s] is not in the provider table", e.Provider)
}

func (e *UnknownProviderError) Unwrap() error { return ErrUnknownProvider }

// ResolutionError wraps an error returned by a factory.
// Stack is the build stack at the moment the factory failed.
type ResolutionError struct {
	ID    string
	Stack []string
	Cause error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("container: resolving [%s]", e.ID))
	if len(e.Stack) > 1 {
		b.WriteString(" (via " + strings.Join(e.Stack, " -> ") + ")")
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// TypeMismatchError is returned by Resolve when the value is not a T.
type TypeMismatchError struct {
	ID   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: [%s] resolved to %s, want %s", e.ID, e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
