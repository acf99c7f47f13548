package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

// StudySessionRepository manages study_sessions rows.
type StudySessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository constructs a StudySessionRepository.
func NewStudySessionRepository(db *sqlx.DB) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

// ListByUser returns the user's sessions ordered by start time.
func (r *StudySessionRepository) ListByUser(ctx context.Context, userID string) ([]models.StudySession, error) {
	const query = `SELECT id, user_id, assignment_id, title, start_time, end_time, status, actual_duration, created_at
FROM study_sessions WHERE user_id = $1 ORDER BY start_time`
	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts one study session.
func (r *StudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	return r.CreateMany(ctx, []*models.StudySession{session})
}

// CreateMany inserts sessions in a single transaction.
func (r *StudySessionRepository) CreateMany(ctx context.Context, sessions []*models.StudySession) error {
	if len(sessions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin study sessions tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertStudySessions(ctx, tx, sessions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit study sessions: %w", err)
	}
	return nil
}

func insertStudySessions(ctx context.Context, tx *sqlx.Tx, sessions []*models.StudySession) error {
	const query = `INSERT INTO study_sessions (id, user_id, assignment_id, title, start_time, end_time, status, actual_duration, created_at)
VALUES (:id, :user_id, :assignment_id, :title, :start_time, :end_time, :status, :actual_duration, :created_at)`
	now := time.Now().UTC()
	for _, session := range sessions {
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		if session.Status == "" {
			session.Status = models.StudySessionStatusScheduled
		}
		if session.CreatedAt.IsZero() {
			session.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, session); err != nil {
			return fmt.Errorf("create study session: %w", err)
		}
	}
	return nil
}
