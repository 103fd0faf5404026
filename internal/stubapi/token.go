package stubapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinup/pkg/clinup"
)

// Tokens signs and verifies the HS256 bearer tokens handed out by /api/login.
type Tokens struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (t Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t Tokens) Issue(u User) (string, error) {
	if t.Secret == "" {
		return "", fmt.Errorf("missing jwt secret")
	}
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now()
	claims := clinup.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles:    u.Roles,
		Username: u.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.Secret))
}

// Verify checks signature and expiry and returns the user id carried in sub.
func (t Tokens) Verify(tokenString string) (clinup.ID, error) {
	if tokenString == "" {
		return "", fmt.Errorf("missing token")
	}
	if t.Secret == "" {
		return "", fmt.Errorf("missing jwt secret")
	}

	now := t.now()
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &clinup.Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(t.Secret), nil
	})
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return "", fmt.Errorf("token expired")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("missing subject in token")
	}
	return clinup.ID(claims.Subject), nil
}
