package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type studySessionStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.StudySession, error)
	Create(ctx context.Context, session *models.StudySession) error
}

// StudySessionService plans study sessions.
type StudySessionService struct {
	repo        studySessionStore
	assignments assignmentFinder
	events      changePublisher
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

type assignmentFinder interface {
	FindByID(ctx context.Context, userID, id string) (*models.Assignment, error)
}

// NewStudySessionService constructs a StudySessionService.
func NewStudySessionService(repo studySessionStore, assignments assignmentFinder, events changePublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudySessionService {
	if events == nil {
		events = nopPublisher{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudySessionService{repo: repo, assignments: assignments, events: events, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// List returns the user's sessions ordered by start time.
func (s *StudySessionService) List(ctx context.Context, session models.Session) ([]models.StudySession, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("list study sessions failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "study session not found", "failed to list study sessions")
	}
	if sessions == nil {
		sessions = []models.StudySession{}
	}
	return sessions, nil
}

// Create books a scheduled study session.
func (s *StudySessionService) Create(ctx context.Context, session models.Session, req models.CreateStudySessionRequest) (*models.StudySession, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study session payload")
	}
	if req.AssignmentID != nil && s.assignments != nil {
		if _, err := s.assignments.FindByID(ctx, session.UserID, *req.AssignmentID); err != nil {
			mapped := storeError(err, "assignment not found", "failed to load assignment")
			if appErr := appErrors.FromError(mapped); appErr.Code == appErrors.ErrNotFound.Code {
				return nil, appErrors.Clone(appErrors.ErrValidation, "assignment_id does not reference one of your assignments")
			}
			return nil, mapped
		}
	}

	planned := &models.StudySession{
		UserID:       session.UserID,
		AssignmentID: req.AssignmentID,
		Title:        strings.TrimSpace(req.Title),
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		Status:       models.StudySessionStatusScheduled,
	}
	err := s.repo.Create(ctx, planned)
	s.metrics.RecordMutation("study_session", "create", err)
	if err != nil {
		s.logger.Error("create study session failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "study session not found", "failed to create study session")
	}
	s.events.Publish(changeEvent(session, models.CollectionStudySessions, planned.ID, models.ChangeCreated, s.now()))
	return planned, nil
}
