package viewmodel

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
)

const day = 24 * time.Hour

// DueDateLabel buckets the distance from now to due into a label and tier.
// Future distances are rounded up to whole days. Any due time before now is
// overdue, including one only minutes past, where a bare ceiling would still
// read "Due today".
func DueDateLabel(due, now time.Time) (string, dto.Tier) {
	if due.Before(now) {
		return "Overdue", dto.TierCritical
	}
	days := int(math.Ceil(float64(due.Sub(now)) / float64(day)))
	switch {
	case days == 0:
		return "Due today", dto.TierCritical
	case days == 1:
		return "Due tomorrow", dto.TierWarning
	case days <= 7:
		return fmt.Sprintf("%d days left", days), dto.TierWarning
	default:
		return fmt.Sprintf("%d days left", days), dto.TierNormal
	}
}

// PriorityStyle maps an assignment priority to its tier.
func PriorityStyle(priority models.AssignmentPriority) dto.Tier {
	switch priority {
	case models.AssignmentPriorityHigh:
		return dto.TierCritical
	case models.AssignmentPriorityMedium:
		return dto.TierWarning
	case models.AssignmentPriorityLow:
		return dto.TierNormal
	default:
		return dto.TierNeutral
	}
}

// RecommendationStyle maps a 0-10 recommendation priority to its tier.
// Any other integer is informational.
func RecommendationStyle(priority int) dto.Tier {
	switch {
	case priority >= 9 && priority <= 10:
		return dto.TierCritical
	case priority >= 7 && priority <= 8:
		return dto.TierWarning
	default:
		return dto.TierInformational
	}
}

// RecommendationIcon picks the card icon for a recommendation type.
func RecommendationIcon(kind models.RecommendationType) string {
	switch kind {
	case models.RecommendationUrgentTasks, models.RecommendationDeadlineAlert:
		return "alert"
	case models.RecommendationStudySchedule:
		return "calendar"
	case models.RecommendationWorkloadWarning:
		return "trending"
	default:
		return "lightbulb"
	}
}

// Greeting returns the name shown in the dashboard header.
func Greeting(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "Student"
	}
	return local
}
