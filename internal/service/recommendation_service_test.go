package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

const scheduleContent = `{
	"title": "Study plan",
	"message": "Two focused blocks before Friday",
	"sessions": [
		{"assignment_id": "a-1", "title": "Essay outline", "start_time": "2024-05-02T10:00:00", "end_time": "2024-05-02T12:00:00", "priority": "high"},
		{"title": "Reading", "start_time": "2024-05-03T14:00:00Z", "end_time": "2024-05-03T15:30:00Z"}
	]
}`

func newRecommendationServiceForTest(recs *fakeRecommendations) (*RecommendationService, *recordingPublisher) {
	events := &recordingPublisher{}
	svc := NewRecommendationService(recs, events, nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, events
}

func TestRecommendationServiceDismiss(t *testing.T) {
	recs := &fakeRecommendations{}
	svc, events := newRecommendationServiceForTest(recs)

	require.NoError(t, svc.Dismiss(context.Background(), testSession, "r-1"))
	assert.Equal(t, models.RecommendationStatusDismissed, recs.updates["r-1"])
	require.Len(t, events.Events(), 1)
	assert.Equal(t, models.ChangeDismissed, events.Events()[0].Action)
	assert.Equal(t, models.CollectionRecommendations, events.Events()[0].Collection)
}

func TestRecommendationServiceDismissFailureSignalsNothing(t *testing.T) {
	recs := &fakeRecommendations{updateErr: errStore}
	svc, events := newRecommendationServiceForTest(recs)

	err := svc.Dismiss(context.Background(), testSession, "r-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
	assert.Empty(t, events.Events())
}

func TestRecommendationServiceAcceptBooksSessions(t *testing.T) {
	recs := &fakeRecommendations{recs: []models.Recommendation{{
		ID: "r-1", UserID: "user-1", Type: models.RecommendationStudySchedule,
		Content: types.JSONText(scheduleContent), Priority: 8, Status: models.RecommendationStatusPending,
	}}}
	svc, events := newRecommendationServiceForTest(recs)

	booked, err := svc.Accept(context.Background(), testSession, "r-1")
	require.NoError(t, err)
	require.Len(t, booked, 2)
	assert.Equal(t, "Essay outline", booked[0].Title)
	require.NotNil(t, booked[0].AssignmentID)
	assert.Equal(t, "a-1", *booked[0].AssignmentID)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), booked[0].StartTime)
	assert.Nil(t, booked[1].AssignmentID)
	assert.Equal(t, models.StudySessionStatusScheduled, booked[1].Status)
	assert.Len(t, recs.booked, 2)
	assert.Equal(t, models.RecommendationStatusAccepted, recs.updates["r-1"])
	require.Len(t, events.Events(), 1)
	assert.Equal(t, models.ChangeAccepted, events.Events()[0].Action)
}

func TestRecommendationServiceAcceptNonSchedule(t *testing.T) {
	recs := &fakeRecommendations{recs: []models.Recommendation{{
		ID: "r-2", UserID: "user-1", Type: models.RecommendationWorkloadWarning,
		Content: types.JSONText(`{"title":"Heavy week","message":"Five deadlines"}`), Status: models.RecommendationStatusPending,
	}}}
	svc, _ := newRecommendationServiceForTest(recs)

	booked, err := svc.Accept(context.Background(), testSession, "r-2")
	require.NoError(t, err)
	assert.Empty(t, booked)
	assert.NotNil(t, booked)
	assert.Empty(t, recs.booked)
}

func TestRecommendationServiceAcceptRejects(t *testing.T) {
	recs := &fakeRecommendations{recs: []models.Recommendation{
		{ID: "dismissed", UserID: "user-1", Type: models.RecommendationUrgentTasks, Content: types.JSONText(`{"title":"x"}`), Status: models.RecommendationStatusDismissed},
		{ID: "broken", UserID: "user-1", Type: models.RecommendationStudySchedule, Content: types.JSONText(`{"message":"no title"}`), Status: models.RecommendationStatusPending},
		{ID: "backwards", UserID: "user-1", Type: models.RecommendationStudySchedule, Status: models.RecommendationStatusPending,
			Content: types.JSONText(`{"title":"t","sessions":[{"title":"s","start_time":"2024-05-02T12:00:00","end_time":"2024-05-02T10:00:00"}]}`)},
	}}
	svc, events := newRecommendationServiceForTest(recs)
	ctx := context.Background()

	_, err := svc.Accept(ctx, testSession, "dismissed")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = svc.Accept(ctx, testSession, "broken")
	assert.ErrorIs(t, err, appErrors.ErrInvalidContent)

	_, err = svc.Accept(ctx, testSession, "backwards")
	assert.ErrorIs(t, err, appErrors.ErrInvalidContent)

	_, err = svc.Accept(ctx, testSession, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.Empty(t, recs.booked)
	assert.Empty(t, recs.updates)
	assert.Empty(t, events.Events())
}

func TestRecommendationServiceAcceptFailureThenRetryBooksOnce(t *testing.T) {
	recs := &fakeRecommendations{
		recs: []models.Recommendation{{
			ID: "r-1", UserID: "user-1", Type: models.RecommendationStudySchedule,
			Content: types.JSONText(scheduleContent), Priority: 8, Status: models.RecommendationStatusPending,
		}},
		acceptErr: errStore,
	}
	svc, events := newRecommendationServiceForTest(recs)
	ctx := context.Background()

	_, err := svc.Accept(ctx, testSession, "r-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
	assert.Empty(t, recs.booked)
	assert.Empty(t, events.Events())

	recs.acceptErr = nil
	booked, err := svc.Accept(ctx, testSession, "r-1")
	require.NoError(t, err)
	assert.Len(t, booked, 2)
	assert.Len(t, recs.booked, 2)

	_, err = svc.Accept(ctx, testSession, "r-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	assert.Len(t, recs.booked, 2)
	assert.Len(t, events.Events(), 1)
}

func TestRecommendationServiceAcceptLosingRaceIsInvalidTransition(t *testing.T) {
	recs := &fakeRecommendations{
		recs: []models.Recommendation{{
			ID: "r-1", UserID: "user-1", Type: models.RecommendationStudySchedule,
			Content: types.JSONText(scheduleContent), Status: models.RecommendationStatusPending,
		}},
		acceptErr: sql.ErrNoRows,
	}
	svc, events := newRecommendationServiceForTest(recs)

	_, err := svc.Accept(context.Background(), testSession, "r-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	assert.Empty(t, recs.booked)
	assert.Empty(t, events.Events())
}

func TestRecommendationServiceListActiveNeverNil(t *testing.T) {
	svc, _ := newRecommendationServiceForTest(&fakeRecommendations{})
	recs, err := svc.ListActive(context.Background(), testSession)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
