package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the read-only identity of the signed-in student. It is built
// from a validated bearer token and passed explicitly to every service call.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Valid reports whether the session identifies a user.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// JWTClaims is the access token payload issued by the auth provider.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session converts validated claims into a session.
func (c *JWTClaims) Session() Session {
	session := Session{UserID: c.Subject, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session
}
