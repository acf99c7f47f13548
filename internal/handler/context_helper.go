package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/middleware"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/service"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

// ConfirmDeleteHeader carries the client's answer to the delete prompt.
const ConfirmDeleteHeader = "X-Confirm-Delete"

// sessionFromContext returns the caller's session, writing a 401 when absent.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return session, true
}

// deleteConfirmation reads the answer from ?confirm= or the X-Confirm-Delete header.
func deleteConfirmation(c *gin.Context) service.Confirmer {
	raw := c.Query("confirm")
	if raw == "" {
		raw = c.GetHeader(ConfirmDeleteHeader)
	}
	yes, err := strconv.ParseBool(strings.TrimSpace(raw))
	return service.Confirmed(err == nil && yes)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
