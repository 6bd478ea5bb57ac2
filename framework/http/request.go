package http

import (
	"net/http"

	"github.com/km-arc/go-foundation/framework/routing"
)

// Request wraps *http.Request with lookup helpers that take a fallback.
type Request struct {
	raw *http.Request
}

// NewRequest wraps r.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Query returns a query-string value, or fallback when it is empty.
//
//	name := req.Query("name", "world")
func (req *Request) Query(key string, fallback ...string) string {
	return first([]string{req.raw.URL.Query().Get(key)}, first(fallback, ""))
}

// Param returns a route parameter, or fallback when it is empty.
func (req *Request) Param(key string, fallback ...string) string {
	return first([]string{routing.Param(req.raw, key)}, first(fallback, ""))
}
