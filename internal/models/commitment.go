package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Commitment is a non-academic block of time (work, club, family).
type Commitment struct {
	ID                string         `db:"id" json:"id"`
	UserID            string         `db:"user_id" json:"user_id"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	StartTime         time.Time      `db:"start_time" json:"start_time"`
	EndTime           time.Time      `db:"end_time" json:"end_time"`
	Recurring         bool           `db:"recurring" json:"recurring"`
	RecurrencePattern types.JSONText `db:"recurrence_pattern" json:"recurrence_pattern"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// CreateCommitmentRequest is the payload for recording a commitment.
type CreateCommitmentRequest struct {
	Title             string         `json:"title" validate:"required,max=200"`
	Description       string         `json:"description" validate:"max=2000"`
	StartTime         time.Time      `json:"start_time" validate:"required"`
	EndTime           time.Time      `json:"end_time" validate:"required,gtfield=StartTime"`
	Recurring         bool           `json:"recurring"`
	RecurrencePattern types.JSONText `json:"recurrence_pattern"`
}
