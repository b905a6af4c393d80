package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func resetJob(t *testing.T, to string) job {
	t.Helper()
	data, err := json.Marshal(domain.ResetPasswordMailData{Name: "Jane Doe", Token: "abc123", Expiration: 15})
	require.NoError(t, err)
	return job{Type: domain.MailResetPassword, To: to, Data: data}
}

func TestRenderer_ResetPassword(t *testing.T) {
	r, err := newRenderer("no-reply@example.com", "http://localhost:5173/reset-password")
	require.NoError(t, err)

	m, err := r.build(resetJob(t, "manager@example.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"<manager@example.com>"}, m.GetToString())
	assert.Equal(t, []string{resetSubject}, m.GetGenHeader(mail.HeaderSubject))

	body, err := r.resetBody(domain.ResetPasswordMailData{Name: "Jane Doe", Token: "abc123", Expiration: 15})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Jane Doe,")
	assert.Contains(t, body, "expires in 15 minutes")
	assert.Contains(t, body, `href="http://localhost:5173/reset-password?token=abc123"`)
}

func TestRenderer_ResetLink(t *testing.T) {
	r, err := newRenderer("no-reply@example.com", "https://console.example.com/reset?lang=en")
	require.NoError(t, err)

	assert.Equal(t, "https://console.example.com/reset?lang=en&token=abc123", r.resetLink("abc123"))
}

func TestRenderer_Rejects(t *testing.T) {
	r, err := newRenderer("no-reply@example.com", "http://localhost/reset")
	require.NoError(t, err)

	_, err = r.build(job{Type: "newsletter", To: "a@example.com"})
	assert.Error(t, err)

	_, err = r.build(resetJob(t, "not an address"))
	assert.Error(t, err)
}
