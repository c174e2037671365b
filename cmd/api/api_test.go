// End-to-end tests over the assembled router for everything that does not need
// a database: health check, authentication gating, and request-shape
// validation on the order placement endpoint.
package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mirahayu/bookstore-api/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearerFor(t *testing.T, app *applicationDependencies) string {
	t.Helper()
	signed, err := token.GenerateAccessToken(uuid.New(), time.Hour, []byte(app.config.jwt.secret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestHealthCheckRoute(t *testing.T) {
	app := newTestApp()

	r := httptest.NewRequest(http.MethodGet, "/health-check", nil)
	w := httptest.NewRecorder()
	app.routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success": true`)
	assert.Contains(t, w.Body.String(), "Server is running well!")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp()

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/transactions"},
		{http.MethodGet, "/transactions"},
		{http.MethodGet, "/books"},
		{http.MethodPost, "/genre"},
		{http.MethodGet, "/auth/me"},
	}
	for _, req := range requests {
		r := httptest.NewRequest(req.method, req.path, strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		app.routes().ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}
}

func TestCreateTransactionRejectsEmptyItems(t *testing.T) {
	app := newTestApp()

	bodies := []string{`{}`, `{"items": []}`}
	for _, body := range bodies {
		r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		r.Header.Set("Authorization", bearerFor(t, app))
		w := httptest.NewRecorder()
		app.routes().ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "Items are required", body)
	}
}

func TestCreateTransactionRejectsMalformedItems(t *testing.T) {
	app := newTestApp()

	bodies := []string{
		// Missing quantity.
		`{"items": [{"book_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}]}`,
		// Zero and negative quantities.
		`{"items": [{"book_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "quantity": 0}]}`,
		`{"items": [{"book_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "quantity": -2}]}`,
		// Missing book id.
		`{"items": [{"quantity": 1}]}`,
	}
	for _, body := range bodies {
		r := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		r.Header.Set("Authorization", bearerFor(t, app))
		w := httptest.NewRecorder()
		app.routes().ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), `"success": false`, body)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	app := newTestApp()

	r := httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
	w := httptest.NewRecorder()
	app.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success": false`)

	r = httptest.NewRequest(http.MethodPut, "/genre", nil)
	w = httptest.NewRecorder()
	app.routes().ServeHTTP(w, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp()

	bodies := []string{
		`{"password": "secret"}`,
		`{"email": "reader@example.com"}`,
		`{"email": "not-an-email", "password": "secret"}`,
	}
	for _, body := range bodies {
		r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		app.routes().ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "failed validation", body)
	}
}
