package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/tickethub/internal/logging"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := NewRouter(logging.Discard(), nil)
	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	healthy := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := get(t, NewRouter(logging.Discard(), map[string]Pinger{"database": healthy, "redis": healthy}), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = get(t, NewRouter(logging.Discard(), map[string]Pinger{"database": down, "redis": healthy}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","failed":"database"}`, rec.Body.String())
}

func TestUnknownPath(t *testing.T) {
	rec := get(t, NewRouter(logging.Discard(), nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
