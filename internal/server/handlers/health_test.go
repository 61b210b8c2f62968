package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(ctx context.Context) error   { return nil }
func down(ctx context.Context) error { return errors.New("connection refused") }

func health(t *testing.T, h *HealthHandler) HealthResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/server/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	resp := health(t, NewHealthHandler(PingFunc(ok), PingFunc(ok)))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.Equal(t, "connected", resp.Redis)

	resp = health(t, NewHealthHandler(PingFunc(ok), nil))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "disabled", resp.Redis)

	resp = health(t, NewHealthHandler(PingFunc(down), PingFunc(down)))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "disconnected", resp.Database)
	assert.Equal(t, "disconnected", resp.Redis)
}
