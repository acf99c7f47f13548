package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

const recommendationColumns = "id, user_id, recommendation_type, content, priority, status, created_at"

// RecommendationRepository manages ai_recommendations rows.
type RecommendationRepository struct {
	db *sqlx.DB
}

// NewRecommendationRepository constructs a RecommendationRepository.
func NewRecommendationRepository(db *sqlx.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// ListPendingByUser returns active recommendations, highest priority first.
func (r *RecommendationRepository) ListPendingByUser(ctx context.Context, userID string) ([]models.Recommendation, error) {
	query := fmt.Sprintf("SELECT %s FROM ai_recommendations WHERE user_id = $1 AND status = $2 ORDER BY priority DESC", recommendationColumns)
	var recs []models.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, userID, models.RecommendationStatusPending); err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return recs, nil
}

// FindByID fetches one of the user's recommendations.
func (r *RecommendationRepository) FindByID(ctx context.Context, userID, id string) (*models.Recommendation, error) {
	query := fmt.Sprintf("SELECT %s FROM ai_recommendations WHERE id = $1 AND user_id = $2", recommendationColumns)
	var rec models.Recommendation
	if err := r.db.GetContext(ctx, &rec, query, id, userID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a recommendation.
func (r *RecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = models.RecommendationStatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ai_recommendations (id, user_id, recommendation_type, content, priority, status, created_at)
VALUES (:id, :user_id, :recommendation_type, :content, :priority, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}
	return nil
}

// UpdateStatus moves a recommendation to a new status.
func (r *RecommendationRepository) UpdateStatus(ctx context.Context, userID, id string, status models.RecommendationStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE ai_recommendations SET status = $1 WHERE id = $2 AND user_id = $3", status, id, userID)
	if err != nil {
		return fmt.Errorf("update recommendation status: %w", err)
	}
	return requireAffected(res, "update recommendation status")
}

// Accept moves a pending recommendation to accepted and books its sessions in
// one transaction. sql.ErrNoRows means the recommendation was not pending.
func (r *RecommendationRepository) Accept(ctx context.Context, userID, id string, sessions []*models.StudySession) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept recommendation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE ai_recommendations SET status = $1 WHERE id = $2 AND user_id = $3 AND status = $4",
		models.RecommendationStatusAccepted, id, userID, models.RecommendationStatusPending)
	if err != nil {
		return fmt.Errorf("accept recommendation: %w", err)
	}
	if err := requireAffected(res, "accept recommendation"); err != nil {
		return err
	}
	if err := insertStudySessions(ctx, tx, sessions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept recommendation: %w", err)
	}
	return nil
}
