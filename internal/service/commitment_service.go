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

type commitmentStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Commitment, error)
	Create(ctx context.Context, commitment *models.Commitment) error
}

// CommitmentService records personal commitments.
type CommitmentService struct {
	repo      commitmentStore
	events    changePublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCommitmentService constructs a CommitmentService.
func NewCommitmentService(repo commitmentStore, events changePublisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CommitmentService {
	if events == nil {
		events = nopPublisher{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitmentService{repo: repo, events: events, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// List returns the user's commitments ordered by start time.
func (s *CommitmentService) List(ctx context.Context, session models.Session) ([]models.Commitment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	commitments, err := s.repo.ListByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("list commitments failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "commitment not found", "failed to list commitments")
	}
	if commitments == nil {
		commitments = []models.Commitment{}
	}
	return commitments, nil
}

// Create stores a commitment. The recurrence pattern must be a JSON object.
func (s *CommitmentService) Create(ctx context.Context, session models.Session, req models.CreateCommitmentRequest) (*models.Commitment, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commitment payload")
	}
	pattern := types.JSONText("{}")
	if len(req.RecurrencePattern) > 0 && strings.TrimSpace(string(req.RecurrencePattern)) != "null" {
		var obj map[string]interface{}
		if err := json.Unmarshal(req.RecurrencePattern, &obj); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "recurrence_pattern must be an object")
		}
		pattern = req.RecurrencePattern
	}

	commitment := &models.Commitment{
		UserID:            session.UserID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		Recurring:         req.Recurring,
		RecurrencePattern: pattern,
	}
	err := s.repo.Create(ctx, commitment)
	s.metrics.RecordMutation("commitment", "create", err)
	if err != nil {
		s.logger.Error("create commitment failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, storeError(err, "commitment not found", "failed to create commitment")
	}
	s.events.Publish(changeEvent(session, models.CollectionCommitments, commitment.ID, models.ChangeCreated, s.now()))
	return commitment, nil
}
