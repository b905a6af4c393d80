package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/api/middleware"
	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
	"github.com/doomzday403/admin-console/internal/infrastructure/db/memory"
)

const seedPassword = "Password12434@12"

type recordingMailer struct {
	mu   sync.Mutex
	msgs []domain.MailMessage
}

func (m *recordingMailer) Enqueue(msg domain.MailMessage) {
	m.mu.Lock()
	m.msgs = append(m.msgs, msg)
	m.mu.Unlock()
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

type fixture struct {
	registry *service.Registry
	tokens   *service.TokenIssuer
	mailer   *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mailer := &recordingMailer{}
	b := service.Backends{
		Staff:         memory.NewStaffRepository(),
		Activity:      memory.NewActivityRepository(),
		Messages:      memory.NewMessageRepository(),
		Notifications: memory.NewNotificationRepository(),
		ResetTokens:   memory.NewResetTokenStore(),
		ResetThrottle: memory.NewResetThrottle(time.Minute),
		Mail:          mailer,
	}
	if err := service.Seed(context.Background(), b, seedPassword, time.Now().UTC(), zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &fixture{
		registry: service.NewRegistry(b, service.Options{}, time.Hour, zerolog.Nop()),
		tokens:   service.NewTokenIssuer("secret", time.Hour),
		mailer:   mailer,
	}
}

// login opens a workspace for username with the seed password.
func (f *fixture) login(t *testing.T, username string) *service.Workspace {
	t.Helper()
	ws, err := f.registry.Login(context.Background(), domain.Credentials{Username: username, Password: seedPassword})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	t.Cleanup(func() { f.registry.Close(ws.ID) })
	return ws
}

// newContext builds an echo context for one request. A non-nil ws is put
// where the Workspace middleware would put it.
func newContext(method, target, body string, ws *service.Workspace) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ws != nil {
		c.Set(middleware.KeyWorkspace, ws)
		c.Set(middleware.KeySession, ws.ID)
	}
	return c, rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}
