package viewmodel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
)

var now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestDueDateLabelOverdue(t *testing.T) {
	for _, offset := range []time.Duration{-time.Second, -time.Minute, -time.Hour, -23 * time.Hour, -25 * time.Hour, -30 * day} {
		text, tier := DueDateLabel(now.Add(offset), now)
		assert.Equal(t, "Overdue", text, offset.String())
		assert.Equal(t, dto.TierCritical, tier, offset.String())
	}
}

func TestDueDateLabelToday(t *testing.T) {
	text, tier := DueDateLabel(now, now)
	assert.Equal(t, "Due today", text)
	assert.Equal(t, dto.TierCritical, tier)
}

func TestDueDateLabelRoundsUp(t *testing.T) {
	text, tier := DueDateLabel(now.Add(time.Hour), now)
	assert.Equal(t, "Due tomorrow", text)
	assert.Equal(t, dto.TierWarning, tier)

	text, _ = DueDateLabel(now.Add(day), now)
	assert.Equal(t, "Due tomorrow", text)

	text, tier = DueDateLabel(now.Add(day+time.Minute), now)
	assert.Equal(t, "2 days left", text)
	assert.Equal(t, dto.TierWarning, tier)
}

func TestDueDateLabelDaysLeft(t *testing.T) {
	for n := 2; n <= 7; n++ {
		text, tier := DueDateLabel(now.Add(time.Duration(n)*day), now)
		assert.Equal(t, fmt.Sprintf("%d days left", n), text)
		assert.Equal(t, dto.TierWarning, tier)
	}
	for _, n := range []int{8, 14, 90} {
		text, tier := DueDateLabel(now.Add(time.Duration(n)*day), now)
		assert.Equal(t, fmt.Sprintf("%d days left", n), text)
		assert.Equal(t, dto.TierNormal, tier)
	}
}

func TestPriorityStyle(t *testing.T) {
	assert.Equal(t, dto.TierCritical, PriorityStyle(models.AssignmentPriorityHigh))
	assert.Equal(t, dto.TierWarning, PriorityStyle(models.AssignmentPriorityMedium))
	assert.Equal(t, dto.TierNormal, PriorityStyle(models.AssignmentPriorityLow))
	assert.Equal(t, dto.TierNeutral, PriorityStyle("urgent"))
	assert.Equal(t, dto.TierNeutral, PriorityStyle(""))
}

func TestRecommendationStyle(t *testing.T) {
	for p := 0; p <= 6; p++ {
		assert.Equal(t, dto.TierInformational, RecommendationStyle(p), p)
	}
	assert.Equal(t, dto.TierWarning, RecommendationStyle(7))
	assert.Equal(t, dto.TierWarning, RecommendationStyle(8))
	assert.Equal(t, dto.TierCritical, RecommendationStyle(9))
	assert.Equal(t, dto.TierCritical, RecommendationStyle(10))

	for _, p := range []int{-1, 11, 1 << 30, -(1 << 30)} {
		assert.Equal(t, dto.TierInformational, RecommendationStyle(p), p)
	}
}

func TestRecommendationIcon(t *testing.T) {
	assert.Equal(t, "alert", RecommendationIcon(models.RecommendationUrgentTasks))
	assert.Equal(t, "alert", RecommendationIcon(models.RecommendationDeadlineAlert))
	assert.Equal(t, "calendar", RecommendationIcon(models.RecommendationStudySchedule))
	assert.Equal(t, "trending", RecommendationIcon(models.RecommendationWorkloadWarning))
	assert.Equal(t, "lightbulb", RecommendationIcon(models.RecommendationOther))
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "ana.silva", Greeting("ana.silva@uni.edu"))
	assert.Equal(t, "Student", Greeting(""))
	assert.Equal(t, "Student", Greeting("@uni.edu"))
}
