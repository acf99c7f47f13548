package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, session models.Session) (*models.Profile, error)
	Update(ctx context.Context, session models.Session, req models.UpdateProfileRequest) (*models.Profile, error)
}

type sessionTerminator interface {
	SignOut(ctx context.Context, session models.Session) error
}

// ProfileHandler exposes the signed-in student's profile and sign out.
type ProfileHandler struct {
	profiles profileService
	sessions sessionTerminator
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles profileService, sessions sessionTerminator) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, sessions: sessions}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Profile}
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope{data=models.Profile}
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SignOut godoc
// @Summary Sign out
// @Description Revokes the presented token until it expires.
// @Tags Profile
// @Security BearerAuth
// @Success 204
// @Router /auth/sign-out [post]
func (h *ProfileHandler) SignOut(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.sessions.SignOut(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
