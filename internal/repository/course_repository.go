package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

const courseColumns = "id, user_id, course_code, course_name, instructor, credits, semester, schedule, created_at"

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByUser returns the user's courses in store order.
func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE user_id = $1", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches one of the user's courses.
func (r *CourseRepository) FindByID(ctx context.Context, userID, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1 AND user_id = $2", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id, userID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, user_id, course_code, course_name, instructor, credits, semester, schedule, created_at)
VALUES (:id, :user_id, :course_code, :course_name, :instructor, :credits, :semester, :schedule, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces the editable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET course_code = :course_code, course_name = :course_name, instructor = :instructor,
credits = :credits, semester = :semester, schedule = :schedule
WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res, "update course")
}

// Delete removes a course. Assignments keep existing with a cleared course reference.
func (r *CourseRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res, "delete course")
}
