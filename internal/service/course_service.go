package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type courseStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
	FindByID(ctx context.Context, userID, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, userID, id string) error
}

// CourseService manages a student's courses.
type CourseService struct {
	repo      courseStore
	events    changePublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseStore, events changePublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if events == nil {
		events = nopPublisher{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, events: events, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// List returns the user's courses.
func (s *CourseService) List(ctx context.Context, session models.Session) ([]models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("list courses failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "course not found", "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Create adds a course. Credits default to 3 and the schedule to an empty list.
func (s *CourseService) Create(ctx context.Context, session models.Session, req models.CourseRequest) (*models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	course := &models.Course{UserID: session.UserID}
	if err := s.apply(course, req); err != nil {
		return nil, err
	}

	err := s.repo.Create(ctx, course)
	s.metrics.RecordMutation("course", "create", err)
	if err != nil {
		s.logger.Error("create course failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "course not found", "failed to create course")
	}
	s.events.Publish(changeEvent(session, models.CollectionCourses, course.ID, models.ChangeCreated, s.now()))
	return course, nil
}

// Update replaces a course's editable fields.
func (s *CourseService) Update(ctx context.Context, session models.Session, id string, req models.CourseRequest) (*models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	course, err := s.repo.FindByID(ctx, session.UserID, id)
	if err != nil {
		return nil, storeError(err, "course not found", "failed to load course")
	}
	if err := s.apply(course, req); err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, course)
	s.metrics.RecordMutation("course", "update", err)
	if err != nil {
		s.logger.Error("update course failed", zap.String("course_id", id), zap.Error(err))
		return nil, storeError(err, "course not found", "failed to update course")
	}
	s.events.Publish(changeEvent(session, models.CollectionCourses, id, models.ChangeUpdated, s.now()))
	return course, nil
}

// Delete removes a course; with no confirmation it is a no-op that reports false.
func (s *CourseService) Delete(ctx context.Context, session models.Session, id string, confirm Confirmer) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	if confirm == nil || !confirm.Confirm(ctx, "Are you sure you want to delete this course?") {
		return false, nil
	}
	err := s.repo.Delete(ctx, session.UserID, id)
	s.metrics.RecordMutation("course", "delete", err)
	if err != nil {
		s.logger.Error("delete course failed", zap.String("course_id", id), zap.Error(err))
		return false, storeError(err, "course not found", "failed to delete course")
	}
	s.events.Publish(changeEvent(session, models.CollectionCourses, id, models.ChangeDeleted, s.now()))
	return true, nil
}

func (s *CourseService) apply(course *models.Course, req models.CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	schedule := req.Schedule
	if schedule == nil {
		schedule = []types.JSONText{}
	}
	raw, err := json.Marshal(schedule)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course schedule")
	}

	course.CourseCode = strings.TrimSpace(req.CourseCode)
	course.CourseName = strings.TrimSpace(req.CourseName)
	course.Instructor = strings.TrimSpace(req.Instructor)
	course.Semester = strings.TrimSpace(req.Semester)
	course.Credits = models.DefaultCourseCredits
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	course.Schedule = types.JSONText(raw)
	return nil
}
