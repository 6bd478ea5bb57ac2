package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-foundation/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New()
	r.Get("/providers", okHandler)
	r.Post("/cache", okHandler)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/providers").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/cache").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodPost, "/providers").Code)
}

func TestRouter_Handle(t *testing.T) {
	r := routing.New()
	r.Handle("/metrics", http.HandlerFunc(okHandler))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		assert.Equal(t, http.StatusOK, do(t, r, method, "/metrics").Code, method)
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := routing.New()
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/not-registered").Code)
}

// ── Route params ─────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	r := routing.New()
	r.Get("/services/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(routing.Param(req, "id")))
	})

	rr := do(t, r, http.MethodGet, "/services/standard_provider")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "standard_provider", rr.Body.String())
}

// ── Prefix ───────────────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r := routing.New()
	r.Prefix("/_container", func(sub *routing.Router) {
		sub.Get("/bindings", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/_container/bindings").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/bindings").Code)
}

func TestRouter_PrefixMiddleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r := routing.New()
	r.Get("/open", okHandler)
	r.Prefix("/guarded", func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/", okHandler)
	})

	do(t, r, http.MethodGet, "/open")
	assert.False(t, called, "middleware leaked outside its prefix")

	do(t, r, http.MethodGet, "/guarded/")
	assert.True(t, called)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New()
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/boom").Code)
}
