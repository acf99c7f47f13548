package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RecommendationType tags the shape of a recommendation's content.
type RecommendationType string

const (
	RecommendationUrgentTasks     RecommendationType = "urgent_tasks"
	RecommendationStudySchedule   RecommendationType = "study_schedule"
	RecommendationWorkloadWarning RecommendationType = "workload_warning"
	RecommendationDeadlineAlert   RecommendationType = "deadline_alert"
	RecommendationOther           RecommendationType = "other"
)

// RecommendationStatus tracks whether a recommendation is still active.
type RecommendationStatus string

const (
	RecommendationStatusPending   RecommendationStatus = "pending"
	RecommendationStatusDismissed RecommendationStatus = "dismissed"
	RecommendationStatusAccepted  RecommendationStatus = "accepted"
)

// Recommendation is a row produced by the workload analysis service.
type Recommendation struct {
	ID        string               `db:"id" json:"id"`
	UserID    string               `db:"user_id" json:"user_id"`
	Type      RecommendationType   `db:"recommendation_type" json:"recommendation_type"`
	Content   types.JSONText       `db:"content" json:"content"`
	Priority  int                  `db:"priority" json:"priority"`
	Status    RecommendationStatus `db:"status" json:"status"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// Decode returns the typed content variant for this recommendation.
func (r Recommendation) Decode() (RecommendationContent, error) {
	return DecodeRecommendationContent(r.Type, r.Content)
}

// RecommendationContent is the typed payload of a recommendation. Each
// recommendation type has its own variant.
type RecommendationContent interface {
	Kind() RecommendationType
	Headline() (title, message string)
}

// ContentHeader carries the fields every variant shares.
type ContentHeader struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Headline returns the title and message shown on the card.
func (h ContentHeader) Headline() (string, string) {
	return h.Title, h.Message
}

// TaskRef points at an assignment mentioned by a recommendation.
type TaskRef struct {
	AssignmentID string `json:"assignment_id,omitempty"`
	Title        string `json:"title"`
	DueDate      string `json:"due_date,omitempty"`
}

// SessionRef is a study session suggested by the analysis service.
type SessionRef struct {
	AssignmentID string `json:"assignment_id,omitempty"`
	Title        string `json:"title"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Priority     string `json:"priority,omitempty"`
}

// Window parses the suggested start and end times.
func (s SessionRef) Window() (time.Time, time.Time, error) {
	start, err := ParseContentTime(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseContentTime(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time must be after start_time")
	}
	return start, end, nil
}

// UrgentTasksContent flags high priority assignments.
type UrgentTasksContent struct {
	ContentHeader
	Tasks []TaskRef `json:"tasks"`
}

// Kind implements RecommendationContent.
func (UrgentTasksContent) Kind() RecommendationType { return RecommendationUrgentTasks }

// DeadlineAlertContent lists assignments due within a day.
type DeadlineAlertContent struct {
	ContentHeader
	Tasks []TaskRef `json:"tasks"`
}

// Kind implements RecommendationContent.
func (DeadlineAlertContent) Kind() RecommendationType { return RecommendationDeadlineAlert }

// StudyScheduleContent proposes study sessions.
type StudyScheduleContent struct {
	ContentHeader
	Sessions []SessionRef `json:"sessions"`
}

// Kind implements RecommendationContent.
func (StudyScheduleContent) Kind() RecommendationType { return RecommendationStudySchedule }

// WorkloadWarningContent warns about the total pending effort.
type WorkloadWarningContent struct {
	ContentHeader
}

// Kind implements RecommendationContent.
func (WorkloadWarningContent) Kind() RecommendationType { return RecommendationWorkloadWarning }

// GenericContent is used for any type without a dedicated variant.
type GenericContent struct {
	ContentHeader
	Type     RecommendationType `json:"-"`
	Tasks    []TaskRef          `json:"tasks,omitempty"`
	Sessions []SessionRef       `json:"sessions,omitempty"`
}

// Kind implements RecommendationContent.
func (g GenericContent) Kind() RecommendationType {
	if g.Type == "" {
		return RecommendationOther
	}
	return g.Type
}

// DecodeRecommendationContent decodes raw content into the variant selected by kind.
// A missing title is rejected for every variant.
func DecodeRecommendationContent(kind RecommendationType, raw []byte) (RecommendationContent, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}

	var (
		content RecommendationContent
		err     error
	)
	switch kind {
	case RecommendationUrgentTasks:
		var c UrgentTasksContent
		err = json.Unmarshal(raw, &c)
		content = c
	case RecommendationDeadlineAlert:
		var c DeadlineAlertContent
		err = json.Unmarshal(raw, &c)
		content = c
	case RecommendationStudySchedule:
		var c StudyScheduleContent
		err = json.Unmarshal(raw, &c)
		content = c
	case RecommendationWorkloadWarning:
		var c WorkloadWarningContent
		err = json.Unmarshal(raw, &c)
		content = c
	default:
		c := GenericContent{Type: kind}
		err = json.Unmarshal(raw, &c)
		content = c
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s content: %w", kind, err)
	}
	if title, _ := content.Headline(); strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("decode %s content: title is required", kind)
	}
	return content, nil
}

var contentTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseContentTime accepts RFC 3339 timestamps as well as the zone-less
// ISO forms the analysis service emits. Zone-less values are read as UTC.
func ParseContentTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range contentTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
