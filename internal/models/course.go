package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DefaultCourseCredits is applied when a new course omits its credit count.
const DefaultCourseCredits = 3

// Course represents a course a student is enrolled in.
type Course struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	CourseCode string         `db:"course_code" json:"course_code"`
	CourseName string         `db:"course_name" json:"course_name"`
	Instructor string         `db:"instructor" json:"instructor"`
	Credits    int            `db:"credits" json:"credits"`
	Semester   string         `db:"semester" json:"semester"`
	Schedule   types.JSONText `db:"schedule" json:"schedule"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// CourseRequest is used for both create and full update of a course.
type CourseRequest struct {
	CourseCode string           `json:"course_code" validate:"required,max=32"`
	CourseName string           `json:"course_name" validate:"required,max=200"`
	Instructor string           `json:"instructor" validate:"max=200"`
	Credits    *int             `json:"credits" validate:"omitempty,min=0,max=30"`
	Semester   string           `json:"semester" validate:"max=64"`
	Schedule   []types.JSONText `json:"schedule"`
}
