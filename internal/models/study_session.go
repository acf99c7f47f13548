package models

import "time"

// StudySessionStatusScheduled is the status of a newly planned session.
const StudySessionStatusScheduled = "scheduled"

// StudySession is a block of time reserved for studying.
type StudySession struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	AssignmentID   *string   `db:"assignment_id" json:"assignment_id,omitempty"`
	Title          string    `db:"title" json:"title"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	Status         string    `db:"status" json:"status"`
	ActualDuration int       `db:"actual_duration" json:"actual_duration"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateStudySessionRequest is the payload for planning a study session.
type CreateStudySessionRequest struct {
	AssignmentID *string   `json:"assignment_id" validate:"omitempty,uuid"`
	Title        string    `json:"title" validate:"required,max=200"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}
