package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/api"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/auth"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/handlers"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/moderation"
)

const secret = "route-secret"

type emptyQueue struct{}

func (emptyQueue) List(context.Context, moderation.QueueQuery) ([]domain.ReportSummary, error) {
	return nil, nil
}

func (emptyQueue) Get(context.Context, string, string) (*domain.ReportSummary, error) {
	return nil, domain.ErrNotFound
}

type noCategories struct{}

func (noCategories) List(context.Context) ([]domain.Category, error) { return nil, nil }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	log := logger.NewNop()

	router := gin.New()
	api.SetupRoutes(router, api.Handlers{
		Reports:    handlers.NewReportHandler(nil, nil, log),
		Moderation: handlers.NewModerationHandler(emptyQueue{}, nil, "en", log),
		Categories: handlers.NewCategoryHandler(noCategories{}, "en"),
	}, secret, m.Handler())
	return router
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Sub:              "mod",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestModerationRoutesRequireToken(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/moderation/reports", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/reports", nil)
	req.Header.Set("Authorization", bearer(t))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestPublicRoutesOpen(t *testing.T) {
	t.Parallel()
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newsdesk_")
}
