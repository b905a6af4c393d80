package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/api/middleware"
	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
)

// Sessions opens and closes workspaces.
type Sessions interface {
	Login(ctx context.Context, creds domain.Credentials) (*service.Workspace, error)
	Close(id string) bool
	Anonymous() *service.SessionStore
}

// AuthHandler serves the login, logout and password reset endpoints.
type AuthHandler struct {
	sessions Sessions
	tokens   *service.TokenIssuer
}

func NewAuthHandler(sessions Sessions, tokens *service.TokenIssuer) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens}
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Login authenticates a staff member, opens a session workspace and returns
// a bearer token bound to it.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := decode(c, &req); err != nil {
		return err
	}

	ws, err := h.sessions.Login(requestContext(c), req)
	if err != nil {
		return err
	}

	user, ok := ws.Session.CurrentUser()
	if !ok {
		h.sessions.Close(ws.ID)
		return domain.ErrSessionClosed
	}

	token, exp, err := h.tokens.Issue(user, ws.ID)
	if err != nil {
		h.sessions.Close(ws.ID)
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user})
}

// Logout closes the caller's workspace.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _ := c.Get(middleware.KeySession).(string)
	h.sessions.Close(sid)
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword queues a reset mail. The answer is the same whether or not
// the address belongs to a staff member.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      422   {object}  map[string]any
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.sessions.Anonymous().ForgotPassword(requestContext(c), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "If the address belongs to an account, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets a new password.
//
// @Summary      Reset a password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ResetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req domain.ResetPasswordRequest
	if err := decode(c, &req); err != nil {
		return err
	}

	if err := h.sessions.Anonymous().ResetPassword(requestContext(c), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password has been reset"})
}
