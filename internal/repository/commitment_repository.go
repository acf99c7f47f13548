package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

// CommitmentRepository manages personal_commitments rows.
type CommitmentRepository struct {
	db *sqlx.DB
}

// NewCommitmentRepository constructs a CommitmentRepository.
func NewCommitmentRepository(db *sqlx.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

// ListByUser returns the user's commitments ordered by start time.
func (r *CommitmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Commitment, error) {
	const query = `SELECT id, user_id, title, description, start_time, end_time, recurring, recurrence_pattern, created_at
FROM personal_commitments WHERE user_id = $1 ORDER BY start_time`
	var commitments []models.Commitment
	if err := r.db.SelectContext(ctx, &commitments, query, userID); err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return commitments, nil
}

// Create inserts a commitment.
func (r *CommitmentRepository) Create(ctx context.Context, commitment *models.Commitment) error {
	if commitment.ID == "" {
		commitment.ID = uuid.NewString()
	}
	if commitment.CreatedAt.IsZero() {
		commitment.CreatedAt = time.Now().UTC()
	}
	if len(commitment.RecurrencePattern) == 0 {
		commitment.RecurrencePattern = []byte("{}")
	}
	const query = `INSERT INTO personal_commitments (id, user_id, title, description, start_time, end_time, recurring, recurrence_pattern, created_at)
VALUES (:id, :user_id, :title, :description, :start_time, :end_time, :recurring, :recurrence_pattern, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, commitment); err != nil {
		return fmt.Errorf("create commitment: %w", err)
	}
	return nil
}
