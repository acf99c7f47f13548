package models

import "time"

// Profile stores the student's personal details keyed by the auth user id.
type Profile struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	University string    `db:"university" json:"university"`
	Major      string    `db:"major" json:"major"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateProfileRequest replaces the editable profile fields.
type UpdateProfileRequest struct {
	FullName   string `json:"full_name" validate:"max=200"`
	University string `json:"university" validate:"max=200"`
	Major      string `json:"major" validate:"max=200"`
}
