package models

import "time"

// AssignmentStatus tracks the lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending    AssignmentStatus = "pending"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
)

// AssignmentPriority ranks assignments for the dashboard.
type AssignmentPriority string

const (
	AssignmentPriorityHigh   AssignmentPriority = "high"
	AssignmentPriorityMedium AssignmentPriority = "medium"
	AssignmentPriorityLow    AssignmentPriority = "low"
)

// DefaultEstimatedHours is applied when a new assignment omits its effort.
const DefaultEstimatedHours = 2

// Assignment represents a persisted assignment row.
// CompletedAt is set if and only if Status is completed.
type Assignment struct {
	ID             string             `db:"id" json:"id"`
	UserID         string             `db:"user_id" json:"user_id"`
	CourseID       *string            `db:"course_id" json:"course_id,omitempty"`
	Title          string             `db:"title" json:"title"`
	Description    string             `db:"description" json:"description"`
	DueDate        time.Time          `db:"due_date" json:"due_date"`
	EstimatedHours int                `db:"estimated_hours" json:"estimated_hours"`
	Priority       AssignmentPriority `db:"priority" json:"priority"`
	Status         AssignmentStatus   `db:"status" json:"status"`
	CompletedAt    *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// IsCompleted reports whether the assignment is in the completed state.
func (a Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	CourseID       *string            `json:"course_id" validate:"omitempty,uuid"`
	Title          string             `json:"title" validate:"required,max=200"`
	Description    string             `json:"description" validate:"max=4000"`
	DueDate        time.Time          `json:"due_date" validate:"required"`
	EstimatedHours *int               `json:"estimated_hours" validate:"omitempty,min=0,max=1000"`
	Priority       AssignmentPriority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// UpdateAssignmentRequest is a partial update; nil fields are left untouched.
type UpdateAssignmentRequest struct {
	CourseID       *string             `json:"course_id" validate:"omitempty,uuid"`
	Title          *string             `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string             `json:"description" validate:"omitempty,max=4000"`
	DueDate        *time.Time          `json:"due_date"`
	EstimatedHours *int                `json:"estimated_hours" validate:"omitempty,min=0,max=1000"`
	Priority       *AssignmentPriority `json:"priority" validate:"omitempty,oneof=high medium low"`
	Status         *AssignmentStatus   `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

// AssignmentFilter narrows the paged assignment listing.
type AssignmentFilter struct {
	Status   AssignmentStatus
	CourseID string
	Page     int
	PageSize int
}

// AssignmentStats holds simple counts by status.
type AssignmentStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}
