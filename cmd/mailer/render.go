package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"

	"github.com/wneessen/go-mail"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

const resetSubject = "Admin Console - Reset your password"

//go:embed templates/*.html
var templateFS embed.FS

// job is a mail job as read from the queue. Data is decoded per type.
type job struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type resetPasswordView struct {
	domain.ResetPasswordMailData
	ResetLink string
}

// renderer turns mail jobs into messages ready for the SMTP client.
type renderer struct {
	from     string
	resetURL string
	reset    *template.Template
}

func newRenderer(from, resetURL string) (*renderer, error) {
	reset, err := template.ParseFS(templateFS, "templates/reset_password.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &renderer{from: from, resetURL: resetURL, reset: reset}, nil
}

// build returns the message for j. Errors are permanent: the job can never
// be delivered and must not be requeued.
func (r *renderer) build(j job) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(r.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(j.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}

	switch j.Type {
	case domain.MailResetPassword:
		var data domain.ResetPasswordMailData
		if err := json.Unmarshal(j.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", j.Type, err)
		}
		body, err := r.resetBody(data)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", j.Type, err)
		}
		m.SetBodyString(mail.TypeTextHTML, body)
		m.Subject(resetSubject)
	default:
		return nil, fmt.Errorf("unsupported mail type %q", j.Type)
	}
	return m, nil
}

func (r *renderer) resetBody(data domain.ResetPasswordMailData) (string, error) {
	var buf bytes.Buffer
	view := resetPasswordView{ResetPasswordMailData: data, ResetLink: r.resetLink(data.Token)}
	if err := r.reset.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *renderer) resetLink(token string) string {
	u, err := url.Parse(r.resetURL)
	if err != nil {
		return r.resetURL
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
