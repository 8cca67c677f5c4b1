package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims mirrors the access tokens issued by the marketplace API.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Inspect decodes a token without checking its signature. The client never
// holds the signing key; the service stays the judge of validity. This is
// only used to read the subject and expiry of a token we were handed.
func Inspect(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Subject returns the user id carried by the token, preferring user_id over sub.
func (c *Claims) Subject() (uuid.UUID, error) {
	id := c.UserID
	if id == "" {
		id = c.RegisteredClaims.Subject
	}
	if id == "" {
		return uuid.Nil, errors.New("token has no subject")
	}
	return uuid.Parse(id)
}

// Expired reports whether the token's exp is before now. Tokens without exp
// never expire locally.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(c.ExpiresAt.Time)
}
