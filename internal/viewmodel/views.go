package viewmodel

import (
	"fmt"
	"time"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
)

// MaxSessionsShown caps the study sessions listed on a recommendation card.
const MaxSessionsShown = 3

// PartitionByCompletion splits assignments into pending and completed,
// preserving input order within each side.
func PartitionByCompletion(assignments []models.Assignment) (pending, completed []models.Assignment) {
	pending = make([]models.Assignment, 0, len(assignments))
	completed = make([]models.Assignment, 0)
	for _, a := range assignments {
		if a.IsCompleted() {
			completed = append(completed, a)
			continue
		}
		pending = append(pending, a)
	}
	return pending, completed
}

// ComputeStats counts assignments by status.
func ComputeStats(assignments []models.Assignment) models.AssignmentStats {
	stats := models.AssignmentStats{Total: len(assignments)}
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentStatusPending:
			stats.Pending++
		case models.AssignmentStatusInProgress:
			stats.InProgress++
		case models.AssignmentStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

// BuildAssignmentView renders one assignment row.
func BuildAssignmentView(a models.Assignment, now time.Time) dto.AssignmentView {
	text, tier := DueDateLabel(a.DueDate, now)
	return dto.AssignmentView{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		CourseID:     a.CourseID,
		DueDate:      a.DueDate,
		Due:          dto.DueLabel{Text: text, Tier: tier},
		Priority:     a.Priority,
		PriorityTier: PriorityStyle(a.Priority),
		Status:       a.Status,
		Hours:        a.EstimatedHours,
		CompletedAt:  a.CompletedAt,
	}
}

// BuildAssignmentViews renders a list of assignments.
func BuildAssignmentViews(assignments []models.Assignment, now time.Time) []dto.AssignmentView {
	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, BuildAssignmentView(a, now))
	}
	return views
}

// BuildCourseView renders a course card.
func BuildCourseView(c models.Course) dto.CourseView {
	view := dto.CourseView{
		ID:           c.ID,
		Code:         c.CourseCode,
		Name:         c.CourseName,
		CreditsLabel: fmt.Sprintf("%d credits", c.Credits),
		Semester:     c.Semester,
	}
	if c.Instructor != "" {
		view.Instructor = "Prof. " + c.Instructor
	}
	return view
}

// BuildRecommendationView renders a recommendation card from its typed content.
func BuildRecommendationView(r models.Recommendation, content models.RecommendationContent) dto.RecommendationView {
	view := dto.RecommendationView{
		ID:       r.ID,
		Type:     r.Type,
		Icon:     RecommendationIcon(r.Type),
		Tier:     RecommendationStyle(r.Priority),
		Priority: r.Priority,
	}
	if content == nil {
		view.Title = string(r.Type)
		return view
	}
	view.Title, view.Message = content.Headline()

	var (
		tasks    []models.TaskRef
		sessions []models.SessionRef
	)
	switch c := content.(type) {
	case models.UrgentTasksContent:
		tasks = c.Tasks
	case models.DeadlineAlertContent:
		tasks = c.Tasks
	case models.StudyScheduleContent:
		sessions = c.Sessions
	case models.GenericContent:
		tasks, sessions = c.Tasks, c.Sessions
	}
	for _, t := range tasks {
		view.Tasks = append(view.Tasks, t.Title)
	}
	for i, s := range sessions {
		if i == MaxSessionsShown {
			break
		}
		view.Sessions = append(view.Sessions, s.Title)
	}
	return view
}
