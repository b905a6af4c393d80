package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
	"github.com/doomzday403/admin-console/internal/infrastructure/db/memory"
)

const seedPassword = "Password12434@12"

type discardMailer struct{}

func (discardMailer) Enqueue(domain.MailMessage) {}

func newTestRouter(t *testing.T) (*echo.Echo, *service.Registry) {
	t.Helper()
	b := service.Backends{
		Staff:         memory.NewStaffRepository(),
		Activity:      memory.NewActivityRepository(),
		Messages:      memory.NewMessageRepository(),
		Notifications: memory.NewNotificationRepository(),
		ResetTokens:   memory.NewResetTokenStore(),
		ResetThrottle: memory.NewResetThrottle(time.Minute),
		Mail:          discardMailer{},
	}
	require.NoError(t, service.Seed(context.Background(), b, seedPassword, time.Now().UTC(), zerolog.Nop()))

	registry := service.NewRegistry(b, service.Options{}, time.Hour, zerolog.Nop())
	e := NewRouter(Deps{
		Sessions:  registry,
		Tokens:    service.NewTokenIssuer("secret", time.Hour),
		JWTSecret: "secret",
		Metrics:   prometheus.NewRegistry(),
		Log:       zerolog.Nop(),
	})
	return e, registry
}

func do(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()
	rec := do(e, http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+seedPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRouter_LoginAndSessionLifecycle(t *testing.T) {
	e, registry := newTestRouter(t)
	token := loginAs(t, e, "DD403")
	assert.Equal(t, 1, registry.Len())

	rec := do(e, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_authenticated":true`)

	rec = do(e, http.MethodPost, "/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, registry.Len())

	rec = do(e, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	e, _ := newTestRouter(t)

	for _, path := range []string{"/me", "/dashboard", "/staff", "/messages", "/notifications"} {
		rec := do(e, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_InvalidLogin(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := do(e, http.MethodPost, "/auth/login", "", `{"username":"DD403","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid username or password"}`, rec.Body.String())
}

func TestRouter_RBAC(t *testing.T) {
	e, _ := newTestRouter(t)
	token := loginAs(t, e, "developer1")

	body := `{"username":"x1","email":"x1@example.com","password":"Password1!","confirm_password":"Password1!"}`
	rec := do(e, http.MethodPost, "/staff", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, "/staff", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	manager := loginAs(t, e, "manager1")
	rec = do(e, http.MethodPatch, "/staff/1", manager, `{"is_active":false}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	loginAs(t, e, "DD403")
}

func TestRouter_ErrorMapping(t *testing.T) {
	e, _ := newTestRouter(t)
	token := loginAs(t, e, "DD403")

	rec := do(e, http.MethodGet, "/staff/99", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"staff member not found"}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/staff/1", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/staff", token, `{"username":"","email":"bad"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var verr struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "validation failed", verr.Error)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")

	rec = do(e, http.MethodPost, "/auth/reset-password", "", `{"token":"x","new_password":"Password1!","confirm_password":"Password1!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MessagingFlow(t *testing.T) {
	e, _ := newTestRouter(t)
	manager := loginAs(t, e, "manager1")
	owner := loginAs(t, e, "DD403")

	rec := do(e, http.MethodPost, "/messages", manager, `{"recipient_id":"1","content":"Standup moved to 10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/messages?user_id=2", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Messages    []domain.Message `json:"messages"`
		UnreadCount int              `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Messages, 3)
	assert.Equal(t, 2, list.UnreadCount)

	rec = do(e, http.MethodGet, "/conversations/2", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/dashboard", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread_messages":0`)
}

func TestRouter_Probes(t *testing.T) {
	e, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health/ready", "", "").Code)

	do(e, http.MethodGet, "/health", "", "")
	rec := do(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin_console_http_requests_total")

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/swagger/index.html", "", "").Code)
}
