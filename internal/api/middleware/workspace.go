package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/core/service"
)

// KeyWorkspace holds the *service.Workspace of the request.
const KeyWorkspace = "workspace"

// WorkspaceSource looks up open workspaces by session id.
type WorkspaceSource interface {
	Get(id string) (*service.Workspace, bool)
}

// Workspace resolves the session id set by Auth to its open workspace. A
// session that was logged out or swept answers 401 so the client signs in
// again.
func Workspace(src WorkspaceSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(KeySession).(string)
			ws, ok := src.Get(sid)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			c.Set(KeyWorkspace, ws)
			return next(c)
		}
	}
}
