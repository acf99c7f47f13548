package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type recommendationStore interface {
	ListPendingByUser(ctx context.Context, userID string) ([]models.Recommendation, error)
	FindByID(ctx context.Context, userID, id string) (*models.Recommendation, error)
	UpdateStatus(ctx context.Context, userID, id string, status models.RecommendationStatus) error
	Accept(ctx context.Context, userID, id string, sessions []*models.StudySession) error
}

// RecommendationService handles dismiss and accept transitions on recommendations.
type RecommendationService struct {
	repo    recommendationStore
	events  changePublisher
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(repo recommendationStore, events changePublisher, metrics *MetricsService, logger *zap.Logger) *RecommendationService {
	if events == nil {
		events = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{repo: repo, events: events, metrics: metrics, logger: logger, now: time.Now}
}

// ListActive returns pending recommendations, highest priority first.
func (s *RecommendationService) ListActive(ctx context.Context, session models.Session) ([]models.Recommendation, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListPendingByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("list recommendations failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "recommendation not found", "failed to list recommendations")
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return recs, nil
}

// Dismiss soft-deletes a recommendation by marking it dismissed.
func (s *RecommendationService) Dismiss(ctx context.Context, session models.Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	err := s.repo.UpdateStatus(ctx, session.UserID, id, models.RecommendationStatusDismissed)
	s.metrics.RecordMutation("recommendation", "dismiss", err)
	if err != nil {
		s.logger.Error("dismiss recommendation failed", zap.String("recommendation_id", id), zap.Error(err))
		return storeError(err, "recommendation not found", "failed to dismiss recommendation")
	}
	s.events.Publish(changeEvent(session, models.CollectionRecommendations, id, models.ChangeDismissed, s.now()))
	return nil
}

// Accept marks a pending recommendation accepted. Accepting a study schedule
// also books its suggested sessions, which are returned.
func (s *RecommendationService) Accept(ctx context.Context, session models.Session, id string) ([]models.StudySession, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	rec, err := s.repo.FindByID(ctx, session.UserID, id)
	if err != nil {
		return nil, storeError(err, "recommendation not found", "failed to load recommendation")
	}
	if rec.Status != models.RecommendationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending recommendations can be accepted")
	}
	content, err := rec.Decode()
	if err != nil {
		s.logger.Warn("recommendation content invalid", zap.String("recommendation_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidContent.Code, appErrors.ErrInvalidContent.Status, appErrors.ErrInvalidContent.Message)
	}

	var planned []*models.StudySession
	if schedule, ok := content.(models.StudyScheduleContent); ok && len(schedule.Sessions) > 0 {
		planned, err = plannedSessions(session.UserID, schedule.Sessions)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidContent.Code, appErrors.ErrInvalidContent.Status, "suggested session is malformed")
		}
	}

	// Status change and bookings commit together; a concurrent accept or dismiss leaves zero rows.
	err = s.repo.Accept(ctx, session.UserID, id, planned)
	s.metrics.RecordMutation("recommendation", "accept", err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only pending recommendations can be accepted")
		}
		s.logger.Error("accept recommendation failed", zap.String("recommendation_id", id), zap.Error(err))
		return nil, storeError(err, "recommendation not found", "failed to accept recommendation")
	}
	if len(planned) > 0 {
		s.metrics.RecordMutation("study_session", "create", nil)
	}

	booked := make([]models.StudySession, 0, len(planned))
	for _, p := range planned {
		booked = append(booked, *p)
	}
	s.events.Publish(changeEvent(session, models.CollectionRecommendations, id, models.ChangeAccepted, s.now()))
	return booked, nil
}

func plannedSessions(userID string, refs []models.SessionRef) ([]*models.StudySession, error) {
	planned := make([]*models.StudySession, 0, len(refs))
	for _, ref := range refs {
		start, end, err := ref.Window()
		if err != nil {
			return nil, err
		}
		session := &models.StudySession{
			UserID:    userID,
			Title:     ref.Title,
			StartTime: start.UTC(),
			EndTime:   end.UTC(),
			Status:    models.StudySessionStatusScheduled,
		}
		if ref.AssignmentID != "" {
			assignmentID := ref.AssignmentID
			session.AssignmentID = &assignmentID
		}
		planned = append(planned, session)
	}
	return planned, nil
}
