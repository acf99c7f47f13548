package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/handler"
	"github.com/noah-isme/academic-planner-api/internal/middleware"
	"github.com/noah-isme/academic-planner-api/internal/service"
	"github.com/noah-isme/academic-planner-api/pkg/config"
	"github.com/noah-isme/academic-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-planner-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	dashboard       *handler.DashboardHandler
	assignments     *handler.AssignmentHandler
	exports         *handler.ExportHandler
	courses         *handler.CourseHandler
	recommendations *handler.RecommendationHandler
	studySessions   *handler.StudySessionHandler
	commitments     *handler.CommitmentHandler
	profile         *handler.ProfileHandler
	metrics         *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, sessions *service.SessionService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// The signed token is the credential for downloads; browsers follow the link without a bearer header.
	api.GET("/exports/download", h.exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(sessions))

	secured.GET("/dashboard", h.dashboard.Overview)
	secured.POST("/dashboard/analyze", h.dashboard.Analyze)

	assignments := secured.Group("/assignments")
	assignments.GET("", h.assignments.List)
	assignments.POST("", h.assignments.Create)
	assignments.POST("/export", h.assignments.Export)
	assignments.GET("/:id", h.assignments.Get)
	assignments.PATCH("/:id", h.assignments.Update)
	assignments.DELETE("/:id", h.assignments.Delete)
	assignments.POST("/:id/advance", h.assignments.Advance)

	courses := secured.Group("/courses")
	courses.GET("", h.courses.List)
	courses.POST("", h.courses.Create)
	courses.PUT("/:id", h.courses.Update)
	courses.DELETE("/:id", h.courses.Delete)

	recommendations := secured.Group("/recommendations")
	recommendations.GET("", h.recommendations.List)
	recommendations.POST("/:id/dismiss", h.recommendations.Dismiss)
	recommendations.POST("/:id/accept", h.recommendations.Accept)

	secured.GET("/study-sessions", h.studySessions.List)
	secured.POST("/study-sessions", h.studySessions.Create)
	secured.GET("/commitments", h.commitments.List)
	secured.POST("/commitments", h.commitments.Create)

	secured.GET("/profile", h.profile.Get)
	secured.PUT("/profile", h.profile.Update)
	secured.POST("/auth/sign-out", h.profile.SignOut)

	return r
}
