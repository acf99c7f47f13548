package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/service"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type fakeAssignmentSrv struct {
	filter    models.AssignmentFilter
	created   models.CreateAssignmentRequest
	advanced  string
	confirmed bool
	removed   bool
	err       error
}

func (f *fakeAssignmentSrv) List(_ context.Context, _ models.Session, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	f.filter = filter
	return []models.Assignment{{ID: "a-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, f.err
}

func (f *fakeAssignmentSrv) Get(_ context.Context, _ models.Session, id string) (*models.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Assignment{ID: id}, nil
}

func (f *fakeAssignmentSrv) Create(_ context.Context, _ models.Session, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	f.created = req
	return &models.Assignment{ID: "a-new", Title: req.Title}, f.err
}

func (f *fakeAssignmentSrv) Update(_ context.Context, _ models.Session, id string, _ models.UpdateAssignmentRequest) (*models.Assignment, error) {
	return &models.Assignment{ID: id}, f.err
}

func (f *fakeAssignmentSrv) AdvanceStatus(_ context.Context, _ models.Session, id string) (*models.Assignment, error) {
	f.advanced = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.Assignment{ID: id, Status: models.AssignmentStatusInProgress}, nil
}

func (f *fakeAssignmentSrv) Remove(ctx context.Context, _ models.Session, _ string, confirm service.Confirmer) (bool, error) {
	f.confirmed = confirm.Confirm(ctx, "delete?")
	f.removed = f.confirmed
	return f.removed, f.err
}

type fakeExporter struct {
	format string
}

func (f *fakeExporter) Export(_ context.Context, _ models.Session, format string) (*dto.ExportResponse, error) {
	f.format = format
	return &dto.ExportResponse{URL: "/api/v1/exports/download?token=t", Format: "csv"}, nil
}

func TestAssignmentHandlerListParsesFilter(t *testing.T) {
	srv := &fakeAssignmentSrv{}
	handler := NewAssignmentHandler(srv, nil)
	c, rec := newContext(http.MethodGet, "/assignments?status=in_progress&courseId=c-1&page=2&limit=5", nil, true)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AssignmentFilter{Status: models.AssignmentStatusInProgress, CourseID: "c-1", Page: 2, PageSize: 5}, srv.filter)

	c, rec = newContext(http.MethodGet, "/assignments?status=archived", nil, true)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignmentHandlerCreate(t *testing.T) {
	srv := &fakeAssignmentSrv{}
	handler := NewAssignmentHandler(srv, nil)
	c, rec := newContext(http.MethodPost, "/assignments", `{"title":"Essay","due_date":"2024-05-03T17:00:00Z","priority":"high"}`, true)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Essay", srv.created.Title)
	assert.True(t, srv.created.DueDate.Equal(time.Date(2024, 5, 3, 17, 0, 0, 0, time.UTC)))

	c, rec = newContext(http.MethodPost, "/assignments", `{"title":`, true)
	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignmentHandlerAdvance(t *testing.T) {
	srv := &fakeAssignmentSrv{}
	handler := NewAssignmentHandler(srv, nil)
	c, rec := newContext(http.MethodPost, "/assignments/a-1/advance", nil, true)
	c.AddParam("id", "a-1")

	handler.Advance(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a-1", srv.advanced)

	srv.err = appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	c, rec = newContext(http.MethodPost, "/assignments/missing/advance", nil, true)
	c.AddParam("id", "missing")
	handler.Advance(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignmentHandlerDeleteConfirmation(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		header  string
		deleted bool
	}{
		{name: "no answer", target: "/assignments/a-1", deleted: false},
		{name: "declined", target: "/assignments/a-1?confirm=false", deleted: false},
		{name: "query", target: "/assignments/a-1?confirm=true", deleted: true},
		{name: "header", target: "/assignments/a-1", header: "1", deleted: true},
		{name: "garbage", target: "/assignments/a-1?confirm=sure", deleted: false},
	}
	for _, tc := range cases {
		srv := &fakeAssignmentSrv{}
		handler := NewAssignmentHandler(srv, nil)
		c, rec := newContext(http.MethodDelete, tc.target, nil, true)
		c.AddParam("id", "a-1")
		if tc.header != "" {
			c.Request.Header.Set(ConfirmDeleteHeader, tc.header)
		}

		handler.Delete(c)

		require.Equal(t, http.StatusOK, rec.Code, tc.name)
		var resp dto.DeleteResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp), tc.name)
		assert.Equal(t, tc.deleted, resp.Deleted, tc.name)
		assert.Equal(t, "a-1", resp.ID, tc.name)
	}
}

func TestAssignmentHandlerExport(t *testing.T) {
	exporter := &fakeExporter{}
	handler := NewAssignmentHandler(&fakeAssignmentSrv{}, exporter)

	c, rec := newContext(http.MethodPost, "/assignments/export", `{"format":"pdf"}`, true)
	handler.Export(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "pdf", exporter.format)

	c, rec = newContext(http.MethodPost, "/assignments/export?format=csv", nil, true)
	handler.Export(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "csv", exporter.format)
}
