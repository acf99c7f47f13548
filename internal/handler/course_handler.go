package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/service"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, session models.Session) ([]models.Course, error)
	Create(ctx context.Context, session models.Session, req models.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, session models.Session, id string, req models.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, session models.Session, id string, confirm service.Confirmer) (bool, error)
}

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Course}
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	courses, err := h.courses.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope{data=models.Course}
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body models.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope{data=models.Course}
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Description Requires confirm=true (or the X-Confirm-Delete header). Assignments keep existing without a course.
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param confirm query bool false "Confirm the delete"
// @Success 200 {object} response.Envelope{data=dto.DeleteResponse}
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	deleted, err := h.courses.Delete(c.Request.Context(), session, id, deleteConfirmation(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteResponse{ID: id, Deleted: deleted}, nil)
}
