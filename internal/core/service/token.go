package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// TokenIssuer signs bearer tokens that bind a user to a workspace.
type TokenIssuer struct {
	secret string
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue returns a signed HS256 token for user in workspace sid.
func (t *TokenIssuer) Issue(user *domain.User, sid string) (string, time.Time, error) {
	exp := time.Now().Add(t.ttl)
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"sid":      sid,
		"exp":      exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
