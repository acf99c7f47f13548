package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-planner-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var assignmentRowColumns = []string{"id", "user_id", "course_id", "title", "description", "due_date", "estimated_hours", "priority", "status", "completed_at", "created_at"}

func TestAssignmentRepositoryListByUserOrdersByDueDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	due := time.Date(2024, 5, 3, 23, 59, 0, 0, time.UTC)
	done := due.Add(-time.Hour)
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a1", "user-1", "c1", "Essay", "", due, 2, "high", "pending", nil, due).
		AddRow("a2", "user-1", nil, "Quiz", "ch. 4", due.Add(24*time.Hour), 1, "low", "completed", done, due)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM assignments WHERE user_id = $1 ORDER BY due_date ASC")).
		WithArgs("user-1").
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].CourseID)
	assert.Equal(t, "c1", *list[0].CourseID)
	assert.Nil(t, list[0].CompletedAt)
	assert.Nil(t, list[1].CourseID)
	require.NotNil(t, list[1].CompletedAt)
	assert.Equal(t, models.AssignmentStatusCompleted, list[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFiltersAndCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM assignments WHERE user_id = $1 AND status = $2 ORDER BY due_date ASC LIMIT 10 OFFSET 10")).
		WithArgs("user-1", "pending").
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE user_id = $1 AND status = $2")).
		WithArgs("user-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	list, total, err := repo.List(context.Background(), "user-1", models.AssignmentFilter{Status: models.AssignmentStatusPending, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	completedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET status = $1, completed_at = $2 WHERE id = $3 AND user_id = $4")).
		WithArgs("completed", completedAt, "a1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "user-1", "a1", models.AssignmentStatusCompleted, &completedAt))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET status = $1, completed_at = $2 WHERE id = $3 AND user_id = $4")).
		WithArgs("in_progress", nil, "a2", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "user-1", "a2", models.AssignmentStatusInProgress, nil)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	assignment := &models.Assignment{UserID: "user-1", Title: "Essay", DueDate: time.Now(), Priority: models.AssignmentPriorityMedium, Status: models.AssignmentStatusPending}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE id = $1 AND user_id = $2")).
		WithArgs(assignment.ID, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "user-1", assignment.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryWrapsErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery("SELECT .* FROM assignments").WillReturnError(errors.New("connection reset"))
	_, err := repo.ListByUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list assignments")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "course_code", "course_name", "instructor", "credits", "semester", "schedule", "created_at"}).
		AddRow("c1", "user-1", "CS101", "Intro to CS", "Turing", 3, "Fall 2024", []byte(`[{"day":"Mon"}]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	courses, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.JSONEq(t, `[{"day":"Mon"}]`, string(courses[0].Schedule))

	mock.ExpectExec("UPDATE courses SET").WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Update(context.Background(), &courses[0])
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationRepositoryPendingByPriority(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecommendationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "recommendation_type", "content", "priority", "status", "created_at"}).
		AddRow("r1", "user-1", "urgent_tasks", []byte(`{"title":"Focus"}`), 10, "pending", time.Now()).
		AddRow("r2", "user-1", "study_schedule", []byte(`{"title":"Plan"}`), 8, "pending", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + recommendationColumns + " FROM ai_recommendations WHERE user_id = $1 AND status = $2 ORDER BY priority DESC")).
		WithArgs("user-1", "pending").
		WillReturnRows(rows)

	recs, err := repo.ListPendingByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 10, recs[0].Priority)
	assert.Equal(t, models.RecommendationStudySchedule, recs[1].Type)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_recommendations SET status = $1 WHERE id = $2 AND user_id = $3")).
		WithArgs("dismissed", "r1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "user-1", "r1", models.RecommendationStatusDismissed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationRepositoryAcceptBooksInOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecommendationRepository(db)

	start := time.Now().UTC()
	sessions := []*models.StudySession{
		{UserID: "user-1", Title: "Essay outline", StartTime: start, EndTime: start.Add(2 * time.Hour)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ai_recommendations SET status = $1 WHERE id = $2 AND user_id = $3 AND status = $4")).
		WithArgs("accepted", "r1", "user-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO study_sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Accept(context.Background(), "user-1", "r1", sessions))
	assert.NotEmpty(t, sessions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationRepositoryAcceptRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecommendationRepository(db)
	sessions := []*models.StudySession{{UserID: "user-1", Title: "Reading", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}}

	// Not pending any more: nothing is booked.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ai_recommendations SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.Accept(context.Background(), "user-1", "r1", sessions)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	// A failed booking undoes the status change.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ai_recommendations SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO study_sessions").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()
	require.Error(t, repo.Accept(context.Background(), "user-1", "r1", sessions))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudySessionRepositoryCreateManyIsTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	start := time.Now().UTC()
	sessions := []*models.StudySession{
		{UserID: "user-1", Title: "Study: Essay", StartTime: start, EndTime: start.Add(2 * time.Hour)},
		{UserID: "user-1", Title: "Study: Quiz", StartTime: start.Add(24 * time.Hour), EndTime: start.Add(26 * time.Hour)},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO study_sessions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO study_sessions").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), sessions)
	require.Error(t, err)
	assert.Equal(t, models.StudySessionStatusScheduled, sessions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudySessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	start := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "assignment_id", "title", "start_time", "end_time", "status", "actual_duration", "created_at"}).
		AddRow("s1", "user-1", "a1", "Study: Essay", start, start.Add(2*time.Hour), "scheduled", 0, start)
	mock.ExpectQuery("SELECT .* FROM study_sessions WHERE user_id = \\$1 ORDER BY start_time").
		WithArgs("user-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].AssignmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitmentRepositoryCreateDefaultsPattern(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCommitmentRepository(db)

	mock.ExpectExec("INSERT INTO personal_commitments").WillReturnResult(sqlmock.NewResult(1, 1))
	commitment := &models.Commitment{UserID: "user-1", Title: "Part-time job", StartTime: time.Now(), EndTime: time.Now().Add(4 * time.Hour)}
	require.NoError(t, repo.Create(context.Background(), commitment))
	assert.Equal(t, "{}", string(commitment.RecurrencePattern))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpsertAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO profiles .* ON CONFLICT \\(id\\) DO UPDATE").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Upsert(context.Background(), &models.Profile{ID: "user-1", Email: "ana@uni.edu"}))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, full_name, university, major, created_at, updated_at FROM profiles WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
