package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// LogSender writes mail jobs to the log instead of delivering them. It is
// used when no broker is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg domain.MailMessage) error {
	s.log.Info().
		Str("type", msg.Type).
		Str("to", msg.To).
		Interface("data", msg.Data).
		Msg("mail job (not delivered)")
	return nil
}
