package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type assignmentStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Assignment, error)
	List(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, userID, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	UpdateStatus(ctx context.Context, userID, id string, status models.AssignmentStatus, completedAt *time.Time) error
	Delete(ctx context.Context, userID, id string) error
}

type courseLookup interface {
	FindByID(ctx context.Context, userID, id string) (*models.Course, error)
}

// AssignmentService drives the assignment lifecycle.
type AssignmentService struct {
	repo      assignmentStore
	courses   courseLookup
	events    changePublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentStore, courses courseLookup, events changePublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if events == nil {
		events = nopPublisher{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		courses:   courses,
		events:    events,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns a page of the user's assignments ordered by due date.
func (s *AssignmentService) List(ctx context.Context, session models.Session, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	if err := requireSession(session); err != nil {
		return nil, nil, err
	}
	assignments, total, err := s.repo.List(ctx, session.UserID, filter)
	if err != nil {
		s.logger.Error("list assignments failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, nil, storeError(err, "assignment not found", "failed to list assignments")
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, session models.Session, id string) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	assignment, err := s.repo.FindByID(ctx, session.UserID, id)
	if err != nil {
		return nil, storeError(err, "assignment not found", "failed to load assignment")
	}
	return assignment, nil
}

// Create stores a new pending assignment.
func (s *AssignmentService) Create(ctx context.Context, session models.Session, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.checkCourse(ctx, session, req.CourseID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		UserID:         session.UserID,
		CourseID:       req.CourseID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		DueDate:        req.DueDate.UTC(),
		EstimatedHours: models.DefaultEstimatedHours,
		Priority:       req.Priority,
		Status:         models.AssignmentStatusPending,
	}
	if req.EstimatedHours != nil {
		assignment.EstimatedHours = *req.EstimatedHours
	}
	if assignment.Priority == "" {
		assignment.Priority = models.AssignmentPriorityMedium
	}

	err := s.repo.Create(ctx, assignment)
	s.metrics.RecordMutation("assignment", "create", err)
	if err != nil {
		s.logger.Error("create assignment failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "assignment not found", "failed to create assignment")
	}
	s.events.Publish(changeEvent(session, models.CollectionAssignments, assignment.ID, models.ChangeCreated, s.now()))
	return assignment, nil
}

// Update applies a partial update. A status change keeps completed_at consistent with the status.
func (s *AssignmentService) Update(ctx context.Context, session models.Session, id string, req models.UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.repo.FindByID(ctx, session.UserID, id)
	if err != nil {
		return nil, storeError(err, "assignment not found", "failed to load assignment")
	}

	if req.CourseID != nil {
		if err := s.checkCourse(ctx, session, req.CourseID); err != nil {
			return nil, err
		}
		assignment.CourseID = req.CourseID
	}
	if req.Title != nil {
		assignment.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate.UTC()
	}
	if req.EstimatedHours != nil {
		assignment.EstimatedHours = *req.EstimatedHours
	}
	if req.Priority != nil {
		assignment.Priority = *req.Priority
	}
	if req.Status != nil && *req.Status != assignment.Status {
		applyStatus(assignment, *req.Status, s.now())
	}

	err = s.repo.Update(ctx, assignment)
	s.metrics.RecordMutation("assignment", "update", err)
	if err != nil {
		s.logger.Error("update assignment failed", zap.String("assignment_id", id), zap.Error(err))
		return nil, storeError(err, "assignment not found", "failed to update assignment")
	}
	s.events.Publish(changeEvent(session, models.CollectionAssignments, id, models.ChangeUpdated, s.now()))
	return assignment, nil
}

// AdvanceStatus moves pending to in_progress and anything else to completed.
// Completing stamps completed_at with the current time; other statuses clear it.
func (s *AssignmentService) AdvanceStatus(ctx context.Context, session models.Session, id string) (*models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	assignment, err := s.repo.FindByID(ctx, session.UserID, id)
	if err != nil {
		s.logger.Error("advance assignment: load failed", zap.String("assignment_id", id), zap.Error(err))
		return nil, storeError(err, "assignment not found", "failed to load assignment")
	}

	next := *assignment
	applyStatus(&next, NextAssignmentStatus(assignment.Status), s.now())

	err = s.repo.UpdateStatus(ctx, session.UserID, id, next.Status, next.CompletedAt)
	s.metrics.RecordMutation("assignment", "advance", err)
	if err != nil {
		s.logger.Error("advance assignment failed",
			zap.String("assignment_id", id),
			zap.String("from", string(assignment.Status)),
			zap.String("to", string(next.Status)),
			zap.Error(err))
		return nil, storeError(err, "assignment not found", "failed to update assignment status")
	}
	s.events.Publish(changeEvent(session, models.CollectionAssignments, id, models.ChangeUpdated, s.now()))
	return &next, nil
}

// Remove deletes an assignment once confirm agrees. Without confirmation it is a no-op
// and reports false.
func (s *AssignmentService) Remove(ctx context.Context, session models.Session, id string, confirm Confirmer) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	if confirm == nil || !confirm.Confirm(ctx, "Are you sure you want to delete this assignment?") {
		s.logger.Debug("assignment delete not confirmed", zap.String("assignment_id", id))
		return false, nil
	}

	err := s.repo.Delete(ctx, session.UserID, id)
	s.metrics.RecordMutation("assignment", "delete", err)
	if err != nil {
		s.logger.Error("delete assignment failed", zap.String("assignment_id", id), zap.Error(err))
		return false, storeError(err, "assignment not found", "failed to delete assignment")
	}
	s.events.Publish(changeEvent(session, models.CollectionAssignments, id, models.ChangeDeleted, s.now()))
	return true, nil
}

// ListAll returns every assignment of the user ordered by due date.
func (s *AssignmentService) ListAll(ctx context.Context, session models.Session) ([]models.Assignment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, storeError(err, "assignment not found", "failed to list assignments")
	}
	return assignments, nil
}

func (s *AssignmentService) checkCourse(ctx context.Context, session models.Session, courseID *string) error {
	if courseID == nil || s.courses == nil {
		return nil
	}
	if _, err := s.courses.FindByID(ctx, session.UserID, *courseID); err != nil {
		mapped := storeError(err, "course not found", "failed to load course")
		if errors.Is(mapped, appErrors.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrValidation, "course_id does not reference one of your courses")
		}
		return mapped
	}
	return nil
}

// NextAssignmentStatus is the status advance moves to: pending goes to
// in_progress, everything else goes to completed.
func NextAssignmentStatus(current models.AssignmentStatus) models.AssignmentStatus {
	if current == models.AssignmentStatusPending {
		return models.AssignmentStatusInProgress
	}
	return models.AssignmentStatusCompleted
}

func applyStatus(a *models.Assignment, status models.AssignmentStatus, now time.Time) {
	a.Status = status
	if status == models.AssignmentStatusCompleted {
		stamped := now.UTC()
		a.CompletedAt = &stamped
		return
	}
	a.CompletedAt = nil
}
