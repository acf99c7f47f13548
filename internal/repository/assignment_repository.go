package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

const assignmentColumns = "id, user_id, course_id, title, description, due_date, estimated_hours, priority, status, completed_at, created_at"

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByUser returns every assignment of the user ordered by due date.
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE user_id = $1 ORDER BY due_date ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// List returns a page of the user's assignments and the total count.
func (r *AssignmentRepository) List(ctx context.Context, userID string, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	base := "FROM assignments WHERE " + strings.Join(conditions, " AND ")
	_, size, offset := normalisePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY due_date ASC LIMIT %d OFFSET %d", assignmentColumns, base, size, offset)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID fetches one of the user's assignments.
func (r *AssignmentRepository) FindByID(ctx context.Context, userID, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1 AND user_id = $2", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id, userID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, user_id, course_id, title, description, due_date, estimated_hours, priority, status, completed_at, created_at)
VALUES (:id, :user_id, :course_id, :title, :description, :due_date, :estimated_hours, :priority, :status, :completed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update replaces the editable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET course_id = :course_id, title = :title, description = :description, due_date = :due_date,
estimated_hours = :estimated_hours, priority = :priority, status = :status, completed_at = :completed_at
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireAffected(res, "update assignment")
}

// UpdateStatus persists a status together with its completion timestamp.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, userID, id string, status models.AssignmentStatus, completedAt *time.Time) error {
	const query = `UPDATE assignments SET status = $1, completed_at = $2 WHERE id = $3 AND user_id = $4`
	res, err := r.db.ExecContext(ctx, query, status, completedAt, id, userID)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return requireAffected(res, "update assignment status")
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireAffected(res, "delete assignment")
}
