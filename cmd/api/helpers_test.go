package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp returns an applicationDependencies with a discarded logger and a
// test configuration. The models field stays zero-valued; tests that reach the
// database live in internal/data.
func newTestApp() *applicationDependencies {
	var cfg serverConfig
	cfg.environment = "test"
	cfg.jwt.secret = "test-secret"
	cfg.limiter.enabled = false

	return &applicationDependencies{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	app := newTestApp()

	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
	w := httptest.NewRecorder()

	err := app.readJSON(w, r, &dst)
	assert.Error(t, err)
}

func TestReadJSONRejectsTrailingValues(t *testing.T) {
	app := newTestApp()

	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	w := httptest.NewRecorder()

	err := app.readJSON(w, r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single JSON value")
}

func TestReadJSONDecodesSingleValue(t *testing.T) {
	app := newTestApp()

	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Fiction"}`))
	w := httptest.NewRecorder()

	require.NoError(t, app.readJSON(w, r, &dst))
	assert.Equal(t, "Fiction", dst.Name)
}

func TestWriteJSONSetsContentTypeAndStatus(t *testing.T) {
	app := newTestApp()
	w := httptest.NewRecorder()

	err := app.writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "ok"}, http.Header{"X-Request-Id": []string{"abc"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "abc", w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), `"success": true`)
}

func TestReadStringAndInt(t *testing.T) {
	app := newTestApp()
	qs := url.Values{}
	qs.Set("search", "dune")
	qs.Set("page", "3")
	qs.Set("limit", "not-a-number")

	assert.Equal(t, "dune", app.readString(qs, "search", ""))
	assert.Equal(t, "fallback", app.readString(qs, "missing", "fallback"))
	assert.Equal(t, 3, app.readInt(qs, "page", 1))
	assert.Equal(t, 10, app.readInt(qs, "limit", 10))
	assert.Equal(t, 10, app.readInt(qs, "missing", 10))
}
