package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
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

func (m *recordingMailer) sent() []domain.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MailMessage(nil), m.msgs...)
}

func newBackends(mail *recordingMailer) Backends {
	return Backends{
		Staff:         memory.NewStaffRepository(),
		Activity:      memory.NewActivityRepository(),
		Messages:      memory.NewMessageRepository(),
		Notifications: memory.NewNotificationRepository(),
		ResetTokens:   memory.NewResetTokenStore(),
		ResetThrottle: memory.NewResetThrottle(time.Minute),
		Mail:          mail,
	}
}

// seededBackends returns backends filled with the starter data.
func seededBackends(t *testing.T) (Backends, *recordingMailer) {
	t.Helper()
	mail := &recordingMailer{}
	b := newBackends(mail)
	if err := Seed(context.Background(), b, seedPassword, time.Now().UTC(), zerolog.Nop()); err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	return b, mail
}

// openAs signs username in on a fresh workspace and loads its stores.
func openAs(t *testing.T, b Backends, username string, opts Options) *Workspace {
	t.Helper()
	ws := NewWorkspace("test-"+username, b, opts, zerolog.Nop())
	ctx := context.Background()
	if err := ws.Session.Login(ctx, domain.Credentials{Username: username, Password: seedPassword}); err != nil {
		t.Fatalf("Login(%s) returned error: %v", username, err)
	}
	if err := ws.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return ws
}
