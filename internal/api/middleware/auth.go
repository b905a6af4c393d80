package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
	KeySession  = "sid"
)

// Auth validates the bearer token and injects its claims into the context.
// A token without a session id is rejected: every request runs inside a
// workspace.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			sid, _ := claims["sid"].(string)
			if sub == "" || sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session identity")
			}

			c.Set(KeyUserID, sub)
			c.Set(KeyUsername, claims["username"])
			c.Set(KeyRole, claims["role"])
			c.Set(KeySession, sid)

			return next(c)
		}
	}
}
