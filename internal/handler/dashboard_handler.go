package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/middleware"
	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, session models.Session) (*dto.DashboardOverview, bool, error)
	RequestAnalysis(ctx context.Context, session models.Session) (*dto.AnalysisResponse, error)
}

// AnalysisRequest mirrors the analysis endpoint payload. UserID is optional and must match the caller.
type AnalysisRequest struct {
	UserID string `json:"user_id"`
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Student dashboard
// @Description Stats, active and completed assignments, courses and pending recommendations. meta.partial is set when a query failed.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.DashboardOverview}
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.service.Overview(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetPartial(c, overview.Failed)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, overview, nil, meta)
}

// Analyze godoc
// @Summary Request workload analysis
// @Description Asks the analysis service to regenerate recommendations. Single attempt, no retry.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body AnalysisRequest false "Analysis payload"
// @Success 200 {object} response.Envelope{data=dto.AnalysisResponse}
// @Failure 502 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard/analyze [post]
func (h *DashboardHandler) Analyze(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, invalidPayload(err))
		return
	}
	if uid := strings.TrimSpace(req.UserID); uid != "" && uid != session.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot request analysis for another user"))
		return
	}
	result, err := h.service.RequestAnalysis(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
