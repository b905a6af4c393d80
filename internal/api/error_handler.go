package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string             `json:"error"`
	Fields domain.FieldErrors `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Reports field errors as 422 with one message per field.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	if fields, ok := domain.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fields}
	}

	switch {
	case errors.Is(err, domain.ErrStaffNotFound):
		return http.StatusNotFound, errorResponse{Error: "staff member not found"}
	case errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound, errorResponse{Error: "message not found"}
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, errorResponse{Error: "notification not found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid username or password"}
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrSessionClosed):
		return http.StatusUnauthorized, errorResponse{Error: "session expired"}
	case errors.Is(err, domain.ErrInvalidResetToken):
		return http.StatusBadRequest, errorResponse{Error: "invalid or expired reset token"}
	case errors.Is(err, domain.ErrStaffExists):
		return http.StatusConflict, errorResponse{Error: "staff member already exists"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "request timed out"}
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
