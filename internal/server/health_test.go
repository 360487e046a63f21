package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/server"
)

func okPing(context.Context) error   { return nil }
func failPing(context.Context) error { return errors.New("down") }

func getHealth(t *testing.T, srv *server.Server) (int, server.HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealth_AllHealthy(t *testing.T) {
	srv := server.NewServerBuilder("newsdesk", 0).
		WithLogger(logger.NewNop()).
		WithVersion("1.2.3").
		WithHealthCheck("database", server.DatabaseHealthChecker(okPing)).
		Build()

	code, resp := getHealth(t, srv)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, server.HealthStatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, server.HealthStatusHealthy, resp.Checks["database"].Status)
}

func TestHealth_RedisDownIsDegraded(t *testing.T) {
	srv := server.NewServerBuilder("newsdesk", 0).
		WithHealthCheck("database", server.DatabaseHealthChecker(okPing)).
		WithHealthCheck("redis", server.RedisHealthChecker(failPing)).
		Build()

	code, resp := getHealth(t, srv)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, server.HealthStatusDegraded, resp.Status)
}

func TestHealth_DatabaseDownIsUnhealthy(t *testing.T) {
	srv := server.NewServerBuilder("newsdesk", 0).
		WithHealthCheck("database", server.DatabaseHealthChecker(failPing)).
		WithHealthCheck("redis", server.RedisHealthChecker(failPing)).
		Build()

	code, resp := getHealth(t, srv)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, server.HealthStatusUnhealthy, resp.Status)
	assert.Equal(t, "Database connection failed", resp.Checks["database"].Message)
}

func TestHealth_HeadAndMemory(t *testing.T) {
	srv := server.NewServerBuilder("newsdesk", 0).Build()

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/memory", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var mem server.MemoryHealth
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mem))
	assert.Positive(t, mem.NumGoroutine)
}
