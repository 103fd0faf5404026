package clinup

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the backend puts in its bearer tokens.
type Claims struct {
	jwt.RegisteredClaims

	Roles    []string `json:"roles,omitempty"`
	Username string   `json:"username,omitempty"`
}

// ParseClaims decodes a bearer token without verifying its signature.
// The client cannot verify (it never holds the secret); the server does that on every call.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether the token is past its exp claim. Tokens without exp never expire here.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.Time.After(now)
}
