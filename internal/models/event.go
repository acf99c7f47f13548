package models

import "time"

// ChangeCollection names the collection a change event refers to.
type ChangeCollection string

const (
	CollectionAssignments     ChangeCollection = "assignments"
	CollectionCourses         ChangeCollection = "courses"
	CollectionRecommendations ChangeCollection = "ai_recommendations"
	CollectionStudySessions   ChangeCollection = "study_sessions"
	CollectionCommitments     ChangeCollection = "personal_commitments"
	CollectionProfiles        ChangeCollection = "profiles"
)

// ChangeAction describes the mutation that produced an event.
type ChangeAction string

const (
	ChangeCreated   ChangeAction = "created"
	ChangeUpdated   ChangeAction = "updated"
	ChangeDeleted   ChangeAction = "deleted"
	ChangeDismissed ChangeAction = "dismissed"
	ChangeAccepted  ChangeAction = "accepted"
	ChangeAnalyzed  ChangeAction = "analyzed"
)

// ChangeEvent signals that a user's records changed and views should reload.
type ChangeEvent struct {
	UserID     string           `json:"user_id"`
	Collection ChangeCollection `json:"collection"`
	RecordID   string           `json:"record_id,omitempty"`
	Action     ChangeAction     `json:"action"`
	OccurredAt time.Time        `json:"occurred_at"`
}
