package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/handler"
	"github.com/noah-isme/academic-planner-api/internal/service"
	"github.com/noah-isme/academic-planner-api/pkg/config"
)

func newTestRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: env, APIPrefix: "/api/v1"}
	sessions := service.NewSessionService(service.SessionConfig{Secret: "test-secret"}, nil, nil)
	return newRouter(cfg, zap.NewNop(), service.NewMetricsService(), sessions, routeHandlers{
		dashboard:       handler.NewDashboardHandler(nil),
		assignments:     handler.NewAssignmentHandler(nil, nil),
		exports:         handler.NewExportHandler(nil),
		courses:         handler.NewCourseHandler(nil),
		recommendations: handler.NewRecommendationHandler(nil),
		studySessions:   handler.NewStudySessionHandler(nil),
		commitments:     handler.NewCommitmentHandler(nil),
		profile:         handler.NewProfileHandler(nil, nil),
		metrics:         handler.NewMetricsHandler(nil, nil),
	})
}

func TestRouterProtectsPlannerRoutes(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodPost, "/api/v1/dashboard/analyze"},
		{http.MethodPost, "/api/v1/assignments/a-1/advance"},
		{http.MethodDelete, "/api/v1/courses/c-1"},
		{http.MethodPost, "/api/v1/recommendations/r-1/dismiss"},
		{http.MethodPost, "/api/v1/auth/sign-out"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterPublicRoutes(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(config.EnvProduction).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
