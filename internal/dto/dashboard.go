package dto

import (
	"time"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

// Tier classifies urgency for presentation.
type Tier string

const (
	TierNormal        Tier = "normal"
	TierWarning       Tier = "warning"
	TierCritical      Tier = "critical"
	TierInformational Tier = "informational"
	TierNeutral       Tier = "neutral"
)

// DueLabel is the rendered due date of an assignment.
type DueLabel struct {
	Text string `json:"text"`
	Tier Tier   `json:"tier"`
}

// AssignmentView is a single row of the assignment list.
type AssignmentView struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description,omitempty"`
	CourseID     *string                   `json:"courseId,omitempty"`
	DueDate      time.Time                 `json:"dueDate"`
	Due          DueLabel                  `json:"due"`
	Priority     models.AssignmentPriority `json:"priority"`
	PriorityTier Tier                      `json:"priorityTier"`
	Status       models.AssignmentStatus   `json:"status"`
	Hours        int                       `json:"estimatedHours"`
	CompletedAt  *time.Time                `json:"completedAt,omitempty"`
}

// CourseView is a course card.
type CourseView struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Instructor   string `json:"instructor,omitempty"`
	CreditsLabel string `json:"creditsLabel"`
	Semester     string `json:"semester,omitempty"`
}

// RecommendationView is a recommendation card.
type RecommendationView struct {
	ID       string                    `json:"id"`
	Type     models.RecommendationType `json:"type"`
	Icon     string                    `json:"icon"`
	Tier     Tier                      `json:"tier"`
	Priority int                       `json:"priority"`
	Title    string                    `json:"title"`
	Message  string                    `json:"message"`
	Tasks    []string                  `json:"tasks,omitempty"`
	Sessions []string                  `json:"sessions,omitempty"`
}

// DashboardOverview is the composed dashboard payload.
type DashboardOverview struct {
	Greeting          string                 `json:"greeting"`
	Stats             models.AssignmentStats `json:"stats"`
	ActiveAssignments []AssignmentView       `json:"activeAssignments"`
	Completed         []AssignmentView       `json:"completedAssignments"`
	Courses           []CourseView           `json:"courses"`
	Recommendations   []RecommendationView   `json:"recommendations"`
	Partial           bool                   `json:"partial"`
	Failed            []string               `json:"failedCollections,omitempty"`
	GeneratedAt       time.Time              `json:"generatedAt"`
}

// AnalysisResponse reports the outcome of a workload analysis request.
type AnalysisResponse struct {
	UserID      string    `json:"userId"`
	RequestedAt time.Time `json:"requestedAt"`
	Reloaded    bool      `json:"reloaded"`
}

// DeleteResponse reports whether a confirmed delete was applied.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
