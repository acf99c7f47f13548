package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-planner-api/api/swagger"
	"github.com/noah-isme/academic-planner-api/internal/analysis"
	"github.com/noah-isme/academic-planner-api/internal/handler"
	"github.com/noah-isme/academic-planner-api/internal/repository"
	"github.com/noah-isme/academic-planner-api/internal/service"
	"github.com/noah-isme/academic-planner-api/pkg/cache"
	"github.com/noah-isme/academic-planner-api/pkg/config"
	"github.com/noah-isme/academic-planner-api/pkg/database"
	"github.com/noah-isme/academic-planner-api/pkg/jobs"
	"github.com/noah-isme/academic-planner-api/pkg/logger"
	"github.com/noah-isme/academic-planner-api/pkg/storage"
)

// @title Academic Planner API
// @version 1.0.0
// @description Student dashboard backend: assignments, courses, study sessions and workload recommendations.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	switch {
	case err != nil:
		logr.Warn("redis unavailable, caching and sign-out revocation disabled", zap.Error(err))
		redisClient = nil
	case redisClient == nil:
		logr.Warn("redis disabled, caching and sign-out revocation disabled")
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	assignmentRepo := repository.NewAssignmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)
	studySessionRepo := repository.NewStudySessionRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	notifier := service.NewChangeNotifier(jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		BufferSize: cfg.Events.BufferSize,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logr,
	}, metricsSvc, logr)

	var analyzer interface {
		Analyze(ctx context.Context, userID string) error
	}
	if cfg.Analysis.Endpoint != "" {
		analyzer = analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Timeout, logr)
	} else {
		logr.Warn("analysis endpoint not configured, workload analysis disabled")
	}

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Assignments:     assignmentRepo,
		Courses:         courseRepo,
		Recommendations: recommendationRepo,
		Analyzer:        analyzer,
		Events:          notifier,
		Cache:           cacheSvc,
		Metrics:         metricsSvc,
		Logger:          logr,
		Config:          service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	notifier.SubscribeInline(dashboardSvc.Invalidate)
	notifier.Subscribe(dashboardSvc.Reload)
	notifier.Start(ctx)
	defer notifier.Stop()

	sessionSvc := service.NewSessionService(service.SessionConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, cacheRepo, logr)

	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, notifier, metricsSvc, validate, logr)
	recommendationSvc := service.NewRecommendationService(recommendationRepo, notifier, metricsSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, notifier, metricsSvc, validate, logr)
	studySessionSvc := service.NewStudySessionService(studySessionRepo, assignmentRepo, notifier, metricsSvc, validate, logr)
	commitmentSvc := service.NewCommitmentService(commitmentRepo, notifier, metricsSvc, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, validate, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(assignmentRepo, courseRepo, exportStorage,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL}, logr)
	exportSvc.StartCleanup(ctx, cfg.Exports.CleanupInterval)

	readiness := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := newRouter(cfg, logr, metricsSvc, sessionSvc, routeHandlers{
		dashboard:       handler.NewDashboardHandler(dashboardSvc),
		assignments:     handler.NewAssignmentHandler(assignmentSvc, exportSvc),
		exports:         handler.NewExportHandler(exportSvc),
		courses:         handler.NewCourseHandler(courseSvc),
		recommendations: handler.NewRecommendationHandler(recommendationSvc),
		studySessions:   handler.NewStudySessionHandler(studySessionSvc),
		commitments:     handler.NewCommitmentHandler(commitmentSvc),
		profile:         handler.NewProfileHandler(profileSvc, sessionSvc),
		metrics:         handler.NewMetricsHandler(metricsSvc, readiness),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
