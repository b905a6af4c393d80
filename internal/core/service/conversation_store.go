package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
)

const (
	msgLoadMessagesFailed     = "Failed to fetch messages"
	msgSendFailed             = "Failed to send message"
	msgMarkReadFailed         = "Failed to mark message as read"
	msgDeleteMessageFailed    = "Failed to delete message"
	msgMessageNotFound        = "Message not found"
	msgNotificationFailed     = "Failed to update notifications"
	msgNotificationNotFound   = "Notification not found"
	newMessageNotification    = "New message"
	newMessageNotificationFmt = "You have a new message from %s"
	messagesLink              = "/messages"
)

// ConversationState is a snapshot of the conversation store.
type ConversationState struct {
	Messages            []domain.Message      `json:"messages"`
	Notifications       []domain.Notification `json:"notifications"`
	UnreadCount         int                   `json:"unread_count"`
	UnreadNotifications int                   `json:"unread_notifications"`
	Status
}

type conversationData struct {
	messages      []*domain.Message // oldest first
	notifications []*domain.Notification
	unread        int
	unreadNotes   int
}

// ConversationStore holds the messages and notifications of one session.
// Display names are resolved through the directory, never from history.
type ConversationStore struct {
	messages      ports.MessageRepository
	notifications ports.NotificationRepository
	identity      ports.Identity
	directory     ports.Directory
	opts          Options
	log           zerolog.Logger

	g guarded[conversationData]
}

func NewConversationStore(b Backends, identity ports.Identity, directory ports.Directory, opts Options, log zerolog.Logger) *ConversationStore {
	return &ConversationStore{
		messages:      b.Messages,
		notifications: b.Notifications,
		identity:      identity,
		directory:     directory,
		opts:          opts.withDefaults(),
		log:           log,
	}
}

// Load fetches every message touching the session identity and its notifications.
func (s *ConversationStore) Load(ctx context.Context) error {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgLoadMessagesFailed)
	}

	msgs, err := s.messages.ListForUser(ctx, me.ID)
	if err != nil {
		return s.g.fail(fmt.Errorf("list messages: %w", err), msgLoadMessagesFailed)
	}
	notes, err := s.notifications.ListForUser(ctx, me.ID)
	if err != nil {
		return s.g.fail(fmt.Errorf("list notifications: %w", err), msgLoadMessagesFailed)
	}

	return s.g.commit(func(d *conversationData) {
		d.messages = msgs
		d.notifications = notes
		d.recount(me.ID)
	})
}

// SendMessage delivers a message from the session identity and notifies the
// recipient.
func (s *ConversationStore) SendMessage(ctx context.Context, in domain.NewMessage) (*domain.Message, error) {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	in.Content = strings.TrimSpace(in.Content)
	in.RecipientID = strings.TrimSpace(in.RecipientID)

	fe := domain.FieldErrors{}
	if err := sharedValidator.Struct(in); err != nil {
		verr, ok := domain.AsFieldErrors(err)
		if !ok {
			return nil, err
		}
		fe.Merge(verr)
	}
	var recipient *domain.StaffMember
	switch {
	case in.RecipientID == "":
	case in.RecipientID == me.ID:
		fe["recipient_id"] = "You cannot send a message to yourself"
	default:
		r, err := s.directory.Lookup(ctx, in.RecipientID)
		switch {
		case errors.Is(err, domain.ErrStaffNotFound):
			fe["recipient_id"] = "Recipient not found"
		case err != nil:
			return nil, err
		default:
			recipient = r
		}
	}
	if len(fe) > 0 {
		return nil, fe
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgSendFailed)
	}

	sender := s.contactOf(ctx, me)
	now := utcNow()
	msg := &domain.Message{
		ID:            newID(),
		SenderID:      me.ID,
		SenderName:    sender.Name,
		SenderAvatar:  sender.Avatar,
		RecipientID:   recipient.ID,
		RecipientName: recipient.DisplayName(),
		Content:       in.Content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, a := range in.Attachments {
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			ID:       newID(),
			FileName: a.FileName,
			FileType: a.FileType,
			FileSize: a.FileSize,
			FileURL:  a.FileURL,
		})
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, s.g.fail(fmt.Errorf("send message: %w", err), msgSendFailed)
	}

	note := &domain.Notification{
		ID:        newID(),
		UserID:    recipient.ID,
		Title:     newMessageNotification,
		Message:   fmt.Sprintf(newMessageNotificationFmt, sender.Name),
		Type:      domain.NotificationInfo,
		Link:      messagesLink,
		CreatedAt: now,
	}
	if err := s.notifications.Create(ctx, note); err != nil {
		s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to notify recipient")
	}

	stored := *msg
	if err := s.g.commit(func(d *conversationData) {
		d.messages = append(d.messages, &stored)
	}); err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	s.log.Info().Str("message_id", msg.ID).Str("sender", me.ID).Str("recipient", recipient.ID).Msg("message sent")
	return msg, nil
}

// contactOf prefers the roster entry of u over the session copy.
func (s *ConversationStore) contactOf(ctx context.Context, u *domain.User) domain.Contact {
	if m, err := s.directory.Lookup(ctx, u.ID); err == nil {
		return domain.ContactOf(u.ID, m)
	}
	return domain.Contact{ID: u.ID, Name: u.DisplayName(), Avatar: u.Avatar, Role: u.Role}
}

// MarkMessageAsRead flips the read flag of id. Repeating it changes nothing.
func (s *ConversationStore) MarkMessageAsRead(ctx context.Context, id string) error {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgMarkReadFailed)
	}

	if _, err := s.findOwn(ctx, me.ID, id, msgMarkReadFailed); err != nil {
		return err
	}
	if err := s.messages.MarkRead(ctx, id); err != nil {
		return s.g.fail(fmt.Errorf("mark read %s: %w", id, err), msgMarkReadFailed)
	}

	return s.g.commit(func(d *conversationData) {
		d.markRead(id)
		d.recount(me.ID)
	})
}

// DeleteMessage hard-removes id. The unread count drops only when the message
// was unread and addressed to the session identity.
func (s *ConversationStore) DeleteMessage(ctx context.Context, id string) error {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgDeleteMessageFailed)
	}

	if _, err := s.findOwn(ctx, me.ID, id, msgDeleteMessageFailed); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return s.g.fail(err, msgMessageNotFound)
		}
		return s.g.fail(fmt.Errorf("delete message %s: %w", id, err), msgDeleteMessageFailed)
	}

	return s.g.commit(func(d *conversationData) {
		i := d.index(id)
		if i < 0 {
			return
		}
		held := d.messages[i]
		d.messages = slices.Delete(d.messages, i, i+1)
		if !held.IsRead && held.RecipientID == me.ID && d.unread > 0 {
			d.unread--
		}
	})
}

// findOwn loads id and hides messages the session identity is not part of.
func (s *ConversationStore) findOwn(ctx context.Context, me, id, msg string) (*domain.Message, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err == nil && !m.Involves(me) {
		err = domain.ErrMessageNotFound
	}
	if errors.Is(err, domain.ErrMessageNotFound) {
		return nil, s.g.fail(err, msgMessageNotFound)
	}
	if err != nil {
		return nil, s.g.fail(fmt.Errorf("find message %s: %w", id, err), msg)
	}
	return m, nil
}

// GetMessages refreshes the session's messages and returns those exchanged
// with userID. The result is merged into state and never replaces it. An
// empty userID, or the session's own id, returns every message.
func (s *ConversationStore) GetMessages(ctx context.Context, userID string) ([]domain.Message, error) {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgLoadMessagesFailed)
	}

	fetched, err := s.messages.ListForUser(ctx, me.ID)
	if err != nil {
		return nil, s.g.fail(fmt.Errorf("list messages: %w", err), msgLoadMessagesFailed)
	}

	var out []domain.Message
	for _, m := range fetched {
		if userID == "" || userID == me.ID || m.Involves(userID) {
			out = append(out, *m)
		}
	}

	if err := s.g.commit(func(d *conversationData) {
		d.merge(fetched)
		d.recount(me.ID)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationAsRead flips one notification of the session identity.
func (s *ConversationStore) MarkNotificationAsRead(ctx context.Context, id string) error {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgNotificationFailed)
	}

	if err := s.notifications.MarkRead(ctx, me.ID, id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return s.g.fail(err, msgNotificationNotFound)
		}
		return s.g.fail(fmt.Errorf("mark notification %s: %w", id, err), msgNotificationFailed)
	}

	return s.g.commit(func(d *conversationData) {
		for _, n := range d.notifications {
			if n.ID == id {
				n.IsRead = true
			}
		}
		d.recount(me.ID)
	})
}

// ClearAllNotifications marks every notification of the session identity read.
func (s *ConversationStore) ClearAllNotifications(ctx context.Context) error {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgNotificationFailed)
	}

	if err := s.notifications.MarkAllRead(ctx, me.ID); err != nil {
		return s.g.fail(fmt.Errorf("mark all notifications: %w", err), msgNotificationFailed)
	}

	return s.g.commit(func(d *conversationData) {
		for _, n := range d.notifications {
			n.IsRead = true
		}
		d.unreadNotes = 0
	})
}

// OpenThread marks every unread message from counterpart read and returns
// the thread, oldest first.
func (s *ConversationStore) OpenThread(ctx context.Context, counterpart string) ([]domain.Message, error) {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	var pending []string
	s.g.view(func(d *conversationData, _ Status) {
		for _, m := range d.messages {
			if !m.IsRead && m.SenderID == counterpart && m.RecipientID == me.ID {
				pending = append(pending, m.ID)
			}
		}
	})

	if len(pending) > 0 {
		s.g.begin()

		if err := s.g.wait(ctx, s.opts.Latency); err != nil {
			return nil, s.g.fail(err, msgMarkReadFailed)
		}

		var done []string
		var markErr error
		for _, id := range pending {
			if err := s.messages.MarkRead(ctx, id); err != nil {
				markErr = fmt.Errorf("mark read %s: %w", id, err)
				break
			}
			done = append(done, id)
		}

		if err := s.g.commit(func(d *conversationData) {
			for _, id := range done {
				d.markRead(id)
			}
			d.recount(me.ID)
		}); err != nil {
			return nil, err
		}
		if markErr != nil {
			return nil, s.g.fail(markErr, msgMarkReadFailed)
		}
	}

	return s.Thread(counterpart), nil
}

// Conversations lists the newest message per counterpart, newest first.
func (s *ConversationStore) Conversations() []domain.ConversationSummary {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return nil
	}
	var out []domain.ConversationSummary
	s.g.view(func(d *conversationData, _ Status) {
		out = domain.Conversations(derefAll(d.messages), me.ID)
	})
	return out
}

// Thread returns the messages exchanged with counterpart, oldest first.
func (s *ConversationStore) Thread(counterpart string) []domain.Message {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return nil
	}
	var out []domain.Message
	s.g.view(func(d *conversationData, _ Status) {
		out = domain.Thread(derefAll(d.messages), me.ID, counterpart)
	})
	return out
}

// UnreadFrom counts unread messages sent by counterpart to the session identity.
func (s *ConversationStore) UnreadFrom(counterpart string) int {
	me, ok := s.identity.CurrentUser()
	if !ok {
		return 0
	}
	var n int
	s.g.view(func(d *conversationData, _ Status) {
		n = domain.UnreadFrom(derefAll(d.messages), me.ID, counterpart)
	})
	return n
}

// State returns a snapshot of the store.
func (s *ConversationStore) State() ConversationState {
	var st ConversationState
	s.g.view(func(d *conversationData, status Status) {
		st.Messages = derefAll(d.messages)
		st.Notifications = derefAll(d.notifications)
		st.UnreadCount = d.unread
		st.UnreadNotifications = d.unreadNotes
		st.Status = status
	})
	return st
}

// Close detaches the store from its session.
func (s *ConversationStore) Close() {
	s.g.close()
}

func (d *conversationData) index(id string) int {
	return slices.IndexFunc(d.messages, func(m *domain.Message) bool { return m.ID == id })
}

func (d *conversationData) markRead(id string) {
	if i := d.index(id); i >= 0 {
		d.messages[i].IsRead = true
	}
}

// merge upserts fetched into the collection, keeping it oldest first.
func (d *conversationData) merge(fetched []*domain.Message) {
	for _, m := range fetched {
		if i := d.index(m.ID); i >= 0 {
			d.messages[i] = m
		} else {
			d.messages = append(d.messages, m)
		}
	}
	slices.SortStableFunc(d.messages, func(a, b *domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

func (d *conversationData) recount(me string) {
	d.unread = domain.UnreadFor(derefAll(d.messages), me)
	d.unreadNotes = domain.UnreadNotifications(derefAll(d.notifications))
}
