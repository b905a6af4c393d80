package ports

import (
	"context"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// MessageRepository persists direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// ListForUser returns messages sent or received by userID, oldest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// NotificationRepository persists per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	// ListForUser returns the notifications owned by userID, newest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
