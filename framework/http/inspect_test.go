package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-foundation/framework/container"
	gohttp "github.com/km-arc/go-foundation/framework/http"
	"github.com/km-arc/go-foundation/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func do(t *testing.T, router *routing.Router, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func newInspected(t *testing.T) (*container.Container, *routing.Router) {
	t.Helper()
	c := container.New()
	c.Bind("mailer", func(*container.Container) (any, error) { return "smtp", nil })
	c.Alias("mail", "mailer")
	c.SetDeferredServices(map[string]string{"reports": "app.reports"})

	r := routing.New()
	gohttp.NewInspector(c).Routes(r)
	return c, r
}

// ── routes ───────────────────────────────────────────────────────────────────

func TestInspector_Bindings(t *testing.T) {
	_, r := newInspected(t)

	rr, body := do(t, r, "/_container/bindings")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	data := body["data"].(map[string]any)
	assert.ElementsMatch(t, []any{"container", "mailer"}, data["bindings"])
	assert.Equal(t, map[string]any{"mail": "mailer"}, data["aliases"])
}

func TestInspector_Providers(t *testing.T) {
	_, r := newInspected(t)

	_, body := do(t, r, "/_container/providers")
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["booted"])
}

func TestInspector_DeferredIsReadOnly(t *testing.T) {
	c, r := newInspected(t)

	_, body := do(t, r, "/_container/deferred")
	assert.Equal(t, map[string]any{"reports": "app.reports"}, body["data"])

	_, body = do(t, r, "/_container/services/reports")
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["deferred"])
	assert.Equal(t, "app.reports", data["provider"])

	// Looking never loads the provider.
	assert.Equal(t, map[string]string{"reports": "app.reports"}, c.DeferredServices())
}

func TestInspector_ServiceNotFound(t *testing.T) {
	_, r := newInspected(t)

	rr, body := do(t, r, "/_container/services/ghost")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Service [ghost] not bound.", body["message"])
}

func TestInspector_ServiceAlias(t *testing.T) {
	_, r := newInspected(t)

	_, body := do(t, r, "/_container/services/mail")
	data := body["data"].(map[string]any)
	assert.Equal(t, "mailer", data["alias"])
	assert.Equal(t, true, data["bound"])
}
