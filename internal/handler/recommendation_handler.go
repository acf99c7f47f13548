package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/viewmodel"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type recommendationService interface {
	ListActive(ctx context.Context, session models.Session) ([]models.Recommendation, error)
	Dismiss(ctx context.Context, session models.Session, id string) error
	Accept(ctx context.Context, session models.Session, id string) ([]models.StudySession, error)
}

// RecommendationHandler exposes recommendation endpoints.
type RecommendationHandler struct {
	recommendations recommendationService
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(recommendations recommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// List godoc
// @Summary List pending recommendations
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]dto.RecommendationView}
// @Router /recommendations [get]
func (h *RecommendationHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	recs, err := h.recommendations.ListActive(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	views := make([]dto.RecommendationView, 0, len(recs))
	for _, rec := range recs {
		content, _ := rec.Decode()
		views = append(views, viewmodel.BuildRecommendationView(rec, content))
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Dismiss godoc
// @Summary Dismiss recommendation
// @Description Marks the recommendation dismissed; it is kept for history.
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recommendation ID"
// @Success 204
// @Router /recommendations/{id}/dismiss [post]
func (h *RecommendationHandler) Dismiss(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.recommendations.Dismiss(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Accept godoc
// @Summary Accept recommendation
// @Description Marks a pending recommendation accepted. Study schedules book their suggested sessions.
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recommendation ID"
// @Success 200 {object} response.Envelope{data=[]models.StudySession}
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /recommendations/{id}/accept [post]
func (h *RecommendationHandler) Accept(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	booked, err := h.recommendations.Accept(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booked, nil)
}
