package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

type tokenDenyList interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SessionConfig describes the tokens issued by the external auth provider.
type SessionConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// SessionService turns bearer tokens into read-only sessions and handles sign out.
type SessionService struct {
	cfg      SessionConfig
	denyList tokenDenyList
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService. A nil deny list disables sign out.
func NewSessionService(cfg SessionConfig, denyList tokenDenyList, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{cfg: cfg, denyList: denyList, logger: logger, now: time.Now}
}

// Validate parses an HS256 token and returns the session it identifies.
func (s *SessionService) Validate(ctx context.Context, tokenString string) (models.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return models.Session{}, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid || claims.Subject == "" {
		return models.Session{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	session := claims.Session()
	if session.TokenID != "" && s.denyList != nil {
		revoked, err := s.denyList.Exists(ctx, revokedKey(session.TokenID))
		if err != nil {
			s.logger.Error("session deny list unavailable", zap.String("user_id", session.UserID), zap.Error(err))
			return models.Session{}, appErrors.Store(err, "session check unavailable")
		}
		if revoked {
			return models.Session{}, appErrors.ErrSessionRevoked
		}
	}
	return session, nil
}

// SignOut revokes the session's token until it would have expired anyway.
func (s *SessionService) SignOut(ctx context.Context, session models.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if session.TokenID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "token carries no id and cannot be revoked")
	}
	if s.denyList == nil {
		return appErrors.Clone(appErrors.ErrInternal, "sign out unavailable without redis")
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denyList.Set(ctx, revokedKey(session.TokenID), true, ttl); err != nil {
		s.logger.Error("sign out failed", zap.String("user_id", session.UserID), zap.Error(err))
		return appErrors.Store(err, "failed to sign out")
	}
	s.logger.Info("session signed out", zap.String("user_id", session.UserID))
	return nil
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}
