package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
	"github.com/noah-isme/academic-planner-api/pkg/logger"
	"github.com/noah-isme/academic-planner-api/pkg/response"
)

// ContextUserKey is the gin context key storing the caller's models.Session.
const ContextUserKey = "currentUser"

type sessionValidator interface {
	Validate(ctx context.Context, token string) (models.Session, error)
}

// JWT protects routes by requiring a valid, non-revoked bearer token.
func JWT(sessions sessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		session, err := sessions.Validate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, session)
		c.Set(logger.SubjectKey, session.UserID)
		c.Next()
	}
}

// SessionFrom returns the session stored by JWT.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(models.Session)
	if !ok || !session.Valid() {
		return models.Session{}, false
	}
	return session, true
}
