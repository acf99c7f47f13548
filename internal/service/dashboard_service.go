package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/viewmodel"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type assignmentLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Assignment, error)
}

type courseLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
}

type recommendationLister interface {
	ListPendingByUser(ctx context.Context, userID string) ([]models.Recommendation, error)
}

type workloadAnalyzer interface {
	Analyze(ctx context.Context, userID string) error
}

// DashboardData is the raw result of LoadAll. Every collection is non-nil;
// a failed query leaves its collection empty and is listed in Failures.
type DashboardData struct {
	Assignments     []models.Assignment
	Courses         []models.Course
	Recommendations []models.Recommendation
	Failures        []models.ChangeCollection
	Err             error
}

// Partial reports whether any query failed.
func (d *DashboardData) Partial() bool {
	return len(d.Failures) > 0
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Assignments     assignmentLister
	Courses         courseLister
	Recommendations recommendationLister
	Analyzer        workloadAnalyzer
	Events          changePublisher
	Cache           *CacheService
	Metrics         *MetricsService
	Logger          *zap.Logger
	Config          DashboardServiceConfig
}

// DashboardService aggregates the planner collections into the dashboard view.
type DashboardService struct {
	assignments     assignmentLister
	courses         courseLister
	recommendations recommendationLister
	analyzer        workloadAnalyzer
	events          changePublisher
	cache           *CacheService
	metrics         *MetricsService
	logger          *zap.Logger
	now             func() time.Time
	cfg             DashboardServiceConfig

	genMu       sync.Mutex
	generations map[string]uint64
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := params.Events
	if events == nil {
		events = nopPublisher{}
	}
	return &DashboardService{
		assignments:     params.Assignments,
		courses:         params.Courses,
		recommendations: params.Recommendations,
		analyzer:        params.Analyzer,
		events:          events,
		cache:           params.Cache,
		metrics:         params.Metrics,
		logger:          logger,
		now:             time.Now,
		cfg:             cfg,
		generations:     map[string]uint64{},
	}
}

// LoadAll runs the three dashboard queries concurrently. A failing query is
// logged and its collection defaults to empty; the others are unaffected.
// When every query fails there is nothing worth rendering, so instead of three
// empty collections LoadAll returns a STORE_UNAVAILABLE error (HTTP 502).
func (s *DashboardService) LoadAll(ctx context.Context, session models.Session) (*DashboardData, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	userID := session.UserID

	var data DashboardData
	var assignErr, courseErr, recErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		start := time.Now()
		data.Assignments, assignErr = s.assignments.ListByUser(ctx, userID)
		s.metrics.ObserveDBQuery("dashboard_assignments", time.Since(start))
	})
	wg.Go(func() {
		start := time.Now()
		data.Courses, courseErr = s.courses.ListByUser(ctx, userID)
		s.metrics.ObserveDBQuery("dashboard_courses", time.Since(start))
	})
	wg.Go(func() {
		start := time.Now()
		data.Recommendations, recErr = s.recommendations.ListPendingByUser(ctx, userID)
		s.metrics.ObserveDBQuery("dashboard_recommendations", time.Since(start))
	})
	wg.Wait()

	if assignErr != nil {
		data.Assignments = nil
		s.recordLoadFailure(&data, models.CollectionAssignments, userID, assignErr)
	}
	if courseErr != nil {
		data.Courses = nil
		s.recordLoadFailure(&data, models.CollectionCourses, userID, courseErr)
	}
	if recErr != nil {
		data.Recommendations = nil
		s.recordLoadFailure(&data, models.CollectionRecommendations, userID, recErr)
	}
	if data.Assignments == nil {
		data.Assignments = []models.Assignment{}
	}
	if data.Courses == nil {
		data.Courses = []models.Course{}
	}
	if data.Recommendations == nil {
		data.Recommendations = []models.Recommendation{}
	}

	if len(data.Failures) == 3 {
		return nil, appErrors.Store(data.Err, "failed to load dashboard")
	}
	return &data, nil
}

func (s *DashboardService) recordLoadFailure(data *DashboardData, collection models.ChangeCollection, userID string, err error) {
	s.logger.Error("dashboard query failed",
		zap.String("user_id", userID),
		zap.String("collection", string(collection)),
		zap.Error(err))
	data.Failures = append(data.Failures, collection)
	data.Err = multierr.Append(data.Err, fmt.Errorf("%s: %w", collection, err))
}

// ComputeStats counts assignments by status.
func (s *DashboardService) ComputeStats(assignments []models.Assignment) models.AssignmentStats {
	return viewmodel.ComputeStats(assignments)
}

// RequestAnalysis asks the analysis service to regenerate recommendations.
// It makes a single attempt; only success signals a reload.
func (s *DashboardService) RequestAnalysis(ctx context.Context, session models.Session) (*dto.AnalysisResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		s.metrics.RecordAnalysis(OutcomeSkipped)
		return nil, appErrors.ErrAnalysisDisabled
	}

	requestedAt := s.now().UTC()
	if err := s.analyzer.Analyze(ctx, session.UserID); err != nil {
		s.metrics.RecordAnalysis(OutcomeFailure)
		s.logger.Error("workload analysis failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAnalysisFailed.Code, appErrors.ErrAnalysisFailed.Status, appErrors.ErrAnalysisFailed.Message)
	}
	s.metrics.RecordAnalysis(OutcomeSuccess)
	s.events.Publish(changeEvent(session, models.CollectionRecommendations, "", models.ChangeAnalyzed, s.now()))
	return &dto.AnalysisResponse{UserID: session.UserID, RequestedAt: requestedAt, Reloaded: true}, nil
}

// Overview returns the composed dashboard and whether it came from cache.
// Partial results are returned but never cached.
func (s *DashboardService) Overview(ctx context.Context, session models.Session) (*dto.DashboardOverview, bool, error) {
	if err := requireSession(session); err != nil {
		return nil, false, err
	}
	key := overviewKey(session.UserID)
	if s.cache.Enabled() {
		var cached dto.DashboardOverview
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			cached.Greeting = viewmodel.Greeting(session.Email)
			return &cached, true, nil
		}
	}

	overview, err := s.build(ctx, session)
	if err != nil {
		return nil, false, err
	}
	overview.Greeting = viewmodel.Greeting(session.Email)
	return overview, false, nil
}

// Invalidate drops the cached overview of the event's user. It also advances
// the user's generation so loads that started before the change never write.
func (s *DashboardService) Invalidate(ctx context.Context, event models.ChangeEvent) error {
	if !s.cache.Enabled() || event.UserID == "" {
		return nil
	}
	s.bumpGeneration(event.UserID)
	return s.cache.Invalidate(ctx, overviewKey(event.UserID))
}

// Reload rebuilds and caches the overview after a change, so the next read is warm.
func (s *DashboardService) Reload(ctx context.Context, event models.ChangeEvent) error {
	if !s.cache.Enabled() || event.UserID == "" {
		return nil
	}
	_, err := s.build(ctx, models.Session{UserID: event.UserID})
	return err
}

func (s *DashboardService) build(ctx context.Context, session models.Session) (*dto.DashboardOverview, error) {
	gen := s.generation(session.UserID)
	data, err := s.LoadAll(ctx, session)
	if err != nil {
		return nil, err
	}
	overview := s.compose(data)
	if !overview.Partial {
		s.store(ctx, session.UserID, gen, overview)
	}
	return overview, nil
}

// store caches an overview loaded at generation gen. A change that lands
// before the write skips it; one that lands during the write removes it.
func (s *DashboardService) store(ctx context.Context, userID string, gen uint64, overview *dto.DashboardOverview) {
	key := overviewKey(userID)
	if s.generation(userID) != gen {
		s.logger.Debug("dashboard cache write skipped: newer change", zap.String("user_id", userID))
		return
	}
	if err := s.cache.Set(ctx, key, overview, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if s.generation(userID) != gen {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("dashboard stale cache entry not removed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (s *DashboardService) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

func (s *DashboardService) bumpGeneration(userID string) {
	s.genMu.Lock()
	s.generations[userID]++
	s.genMu.Unlock()
}

func (s *DashboardService) compose(data *DashboardData) *dto.DashboardOverview {
	now := s.now()
	pending, completed := viewmodel.PartitionByCompletion(data.Assignments)

	courses := make([]dto.CourseView, 0, len(data.Courses))
	for _, c := range data.Courses {
		courses = append(courses, viewmodel.BuildCourseView(c))
	}

	recs := make([]dto.RecommendationView, 0, len(data.Recommendations))
	for _, rec := range data.Recommendations {
		content, err := rec.Decode()
		if err != nil {
			s.logger.Warn("recommendation content invalid", zap.String("recommendation_id", rec.ID), zap.Error(err))
			content = nil
		}
		recs = append(recs, viewmodel.BuildRecommendationView(rec, content))
	}

	var failed []string
	for _, collection := range data.Failures {
		failed = append(failed, string(collection))
	}

	return &dto.DashboardOverview{
		Stats:             viewmodel.ComputeStats(data.Assignments),
		ActiveAssignments: viewmodel.BuildAssignmentViews(pending, now),
		Completed:         viewmodel.BuildAssignmentViews(completed, now),
		Courses:           courses,
		Recommendations:   recs,
		Partial:           data.Partial(),
		Failed:            failed,
		GeneratedAt:       now.UTC(),
	}
}

func overviewKey(userID string) string {
	return fmt.Sprintf("dash:overview:%s", userID)
}
