package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/service"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, session models.Session, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error)
	Get(ctx context.Context, session models.Session, id string) (*models.Assignment, error)
	Create(ctx context.Context, session models.Session, req models.CreateAssignmentRequest) (*models.Assignment, error)
	Update(ctx context.Context, session models.Session, id string, req models.UpdateAssignmentRequest) (*models.Assignment, error)
	AdvanceStatus(ctx context.Context, session models.Session, id string) (*models.Assignment, error)
	Remove(ctx context.Context, session models.Session, id string, confirm service.Confirmer) (bool, error)
}

type assignmentExporter interface {
	Export(ctx context.Context, session models.Session, format string) (*dto.ExportResponse, error)
}

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	assignments assignmentService
	exports     assignmentExporter
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService, exports assignmentExporter) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, exports: exports}
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, in_progress or completed"
// @Param courseId query string false "Filter by course"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Assignment}
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var filter models.AssignmentFilter
	switch status := models.AssignmentStatus(strings.TrimSpace(c.Query("status"))); status {
	case "":
	case models.AssignmentStatusPending, models.AssignmentStatusInProgress, models.AssignmentStatusCompleted:
		filter.Status = status
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be pending, in_progress or completed"))
		return
	}
	filter.CourseID = strings.TrimSpace(c.Query("courseId"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	assignments, pagination, err := h.assignments.List(c.Request.Context(), session, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get assignment detail
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope{data=models.Assignment}
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.assignments.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope{data=models.Assignment}
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Update assignment
// @Description Partial update; a status change keeps completed_at consistent.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param payload body models.UpdateAssignmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=models.Assignment}
// @Router /assignments/{id} [patch]
func (h *AssignmentHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	assignment, err := h.assignments.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Advance godoc
// @Summary Advance assignment status
// @Description pending moves to in_progress, anything else moves to completed.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope{data=models.Assignment}
// @Router /assignments/{id}/advance [post]
func (h *AssignmentHandler) Advance(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.assignments.AdvanceStatus(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete assignment
// @Description Requires confirm=true (or the X-Confirm-Delete header); without it nothing is deleted.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param confirm query bool false "Confirm the delete"
// @Success 200 {object} response.Envelope{data=dto.DeleteResponse}
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	deleted, err := h.assignments.Remove(c.Request.Context(), session, id, deleteConfirmation(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteResponse{ID: id, Deleted: deleted}, nil)
}

// Export godoc
// @Summary Export assignments
// @Description Renders every assignment as CSV or PDF and returns a signed download link.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportRequest false "Export format"
// @Success 201 {object} response.Envelope{data=dto.ExportResponse}
// @Router /assignments/export [post]
func (h *AssignmentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, invalidPayload(err))
		return
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}
	result, err := h.exports.Export(c.Request.Context(), session, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
