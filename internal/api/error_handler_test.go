package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"staff not found", fmt.Errorf("find: %w", domain.ErrStaffNotFound), http.StatusNotFound, "staff member not found"},
		{"message not found", domain.ErrMessageNotFound, http.StatusNotFound, "message not found"},
		{"notification not found", domain.ErrNotificationNotFound, http.StatusNotFound, "notification not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "session expired"},
		{"closed", domain.ErrSessionClosed, http.StatusUnauthorized, "session expired"},
		{"reset token", domain.ErrInvalidResetToken, http.StatusBadRequest, "invalid or expired reset token"},
		{"exists", domain.ErrStaffExists, http.StatusConflict, "staff member already exists"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "request timed out"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			code, body := resolveError(tc.err, zerolog.Nop(), c)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}

func TestHTTPErrorHandler_FieldErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/staff", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.FieldErrors{"email": "Email is invalid"}, c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"email":"Email is invalid"}}`, rec.Body.String())
}
