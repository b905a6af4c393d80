package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	c, rec := newContext(http.MethodPost, "/auth/login", `{"username":"DD403","password":"`+seedPassword+`"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	decodeBody(t, rec, &resp)
	if token, _ := resp["token"].(string); token == "" {
		t.Fatalf("expected token in response")
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "DD403" || user["role"] != "OWNER" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if f.registry.Len() != 1 {
		t.Fatalf("expected one open session, got %d", f.registry.Len())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	c, _ := newContext(http.MethodPost, "/auth/login", `{"username":"DD403","password":"wrong"}`, nil)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.registry.Len() != 0 {
		t.Fatalf("failed login must not open a session")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	c, _ := newContext(http.MethodPost, "/auth/login", `{"username":`, nil)
	if err := h.Login(c); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestAuthHandler_Logout_ClosesWorkspace(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)
	ws := f.login(t, "DD403")

	c, rec := newContext(http.MethodPost, "/auth/logout", "", ws)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := f.registry.Get(ws.ID); ok {
		t.Fatalf("workspace still open after logout")
	}
	if ws.Session.State().IsAuthenticated {
		t.Fatalf("session still authenticated after logout")
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	c, _ := newContext(http.MethodPost, "/auth/forgot-password", `{"email":"not-an-email"}`, nil)
	fields, ok := domain.AsFieldErrors(h.ForgotPassword(c))
	if !ok || fields["email"] == "" {
		t.Fatalf("expected email field error, got %v", fields)
	}

	c, rec := newContext(http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`, nil)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if f.mailer.count() != 0 {
		t.Fatalf("unknown address must not queue mail")
	}

	c, _ = newContext(http.MethodPost, "/auth/forgot-password", `{"email":"manager@example.com"}`, nil)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if f.mailer.count() != 1 {
		t.Fatalf("expected one reset mail, got %d", f.mailer.count())
	}
}

func TestAuthHandler_ResetPassword_InvalidToken(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	body := `{"token":"nope","new_password":"NewPassword1!","confirm_password":"NewPassword1!"}`
	c, _ := newContext(http.MethodPost, "/auth/reset-password", body, nil)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthHandler_ResetPassword_Mismatch(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.registry, f.tokens)

	body := `{"token":"abc","new_password":"NewPassword1!","confirm_password":"Other"}`
	c, _ := newContext(http.MethodPost, "/auth/reset-password", body, nil)
	fields, ok := domain.AsFieldErrors(h.ResetPassword(c))
	if !ok || fields["confirm_password"] == "" {
		t.Fatalf("expected confirm_password field error, got %v", fields)
	}
}
