package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// MessageRepository stores direct messages in send order.
type MessageRepository struct {
	mu   sync.RWMutex
	msgs []*domain.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func cloneMessage(m *domain.Message) *domain.Message {
	c := *m
	c.Attachments = slices.Clone(m.Attachments)
	return &c
}

func (r *MessageRepository) Create(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, _ := slices.BinarySearchFunc(r.msgs, m, func(a, b *domain.Message) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return -1
	})
	r.msgs = slices.Insert(r.msgs, i, cloneMessage(m))
	return nil
}

func (r *MessageRepository) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return cloneMessage(r.msgs[i]), nil
	}
	return nil, domain.ErrMessageNotFound
}

func (r *MessageRepository) ListForUser(_ context.Context, userID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Message
	for _, m := range r.msgs {
		if m.Involves(userID) {
			out = append(out, cloneMessage(m))
		}
	}
	return out, nil
}

func (r *MessageRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return domain.ErrMessageNotFound
	}
	r.msgs[i].IsRead = true
	return nil
}

func (r *MessageRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return domain.ErrMessageNotFound
	}
	r.msgs = slices.Delete(r.msgs, i, i+1)
	return nil
}

func (r *MessageRepository) index(id string) int {
	return slices.IndexFunc(r.msgs, func(m *domain.Message) bool { return m.ID == id })
}

// NotificationRepository stores notifications per owner.
type NotificationRepository struct {
	mu    sync.RWMutex
	notes []domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	r.notes = append(r.notes, *n)
	r.mu.Unlock()
	return nil
}

func (r *NotificationRepository) ListForUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Notification
	for _, n := range r.notes {
		if n.UserID == userID {
			out = append(out, &n)
		}
	}
	slices.SortStableFunc(out, func(a, b *domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notes {
		if r.notes[i].ID == id && r.notes[i].UserID == userID {
			r.notes[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.notes {
		if r.notes[i].UserID == userID {
			r.notes[i].IsRead = true
		}
	}
	return nil
}
