package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/api/middleware"
	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
)

// ctxWorkspace returns the workspace injected by the Workspace middleware.
// Its absence means the route was registered without the session chain.
func ctxWorkspace(c echo.Context) (*service.Workspace, error) {
	ws, _ := c.Get(middleware.KeyWorkspace).(*service.Workspace)
	if ws == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return ws, nil
}

// requestContext carries the caller's address and agent down to the stores
// so activity entries record them.
func requestContext(c echo.Context) context.Context {
	return domain.WithOrigin(c.Request().Context(), domain.Origin{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
}

// decode binds the request into req. Payloads the stores validate
// themselves go through decode only.
func decode(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// bind decodes the request into req and runs the echo validator on it.
func bind(c echo.Context, req any) error {
	if err := decode(c, req); err != nil {
		return err
	}
	return c.Validate(req)
}

type messageResponse struct {
	Message string `json:"message"`
}
