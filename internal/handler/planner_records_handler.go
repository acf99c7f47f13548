package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type studySessionService interface {
	List(ctx context.Context, session models.Session) ([]models.StudySession, error)
	Create(ctx context.Context, session models.Session, req models.CreateStudySessionRequest) (*models.StudySession, error)
}

type commitmentService interface {
	List(ctx context.Context, session models.Session) ([]models.Commitment, error)
	Create(ctx context.Context, session models.Session, req models.CreateCommitmentRequest) (*models.Commitment, error)
}

// StudySessionHandler exposes study session endpoints.
type StudySessionHandler struct {
	sessions studySessionService
}

// NewStudySessionHandler constructs StudySessionHandler.
func NewStudySessionHandler(sessions studySessionService) *StudySessionHandler {
	return &StudySessionHandler{sessions: sessions}
}

// List godoc
// @Summary List study sessions
// @Tags Planner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.StudySession}
// @Router /study-sessions [get]
func (h *StudySessionHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	sessions, err := h.sessions.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Create godoc
// @Summary Plan a study session
// @Tags Planner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateStudySessionRequest true "Study session payload"
// @Success 201 {object} response.Envelope{data=models.StudySession}
// @Router /study-sessions [post]
func (h *StudySessionHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateStudySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	planned, err := h.sessions.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, planned)
}

// CommitmentHandler exposes personal commitment endpoints.
type CommitmentHandler struct {
	commitments commitmentService
}

// NewCommitmentHandler constructs CommitmentHandler.
func NewCommitmentHandler(commitments commitmentService) *CommitmentHandler {
	return &CommitmentHandler{commitments: commitments}
}

// List godoc
// @Summary List personal commitments
// @Tags Planner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.Commitment}
// @Router /commitments [get]
func (h *CommitmentHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	commitments, err := h.commitments.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, commitments, nil)
}

// Create godoc
// @Summary Record a personal commitment
// @Tags Planner
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCommitmentRequest true "Commitment payload"
// @Success 201 {object} response.Envelope{data=models.Commitment}
// @Router /commitments [post]
func (h *CommitmentHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.CreateCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	commitment, err := h.commitments.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, commitment)
}
