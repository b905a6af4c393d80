package ports

import (
	"context"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// MailDispatcher accepts mail jobs for asynchronous delivery.
type MailDispatcher interface {
	// Enqueue must not block; it runs on the request path.
	Enqueue(msg domain.MailMessage)
}

// MailSender hands one mail job to the delivery backend.
type MailSender interface {
	Send(ctx context.Context, msg domain.MailMessage) error
}
