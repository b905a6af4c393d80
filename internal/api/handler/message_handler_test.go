package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestMessageHandler_List_FiltersByCounterpart(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, rec := newContext(http.MethodGet, "/messages?user_id=3", "", ws)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp messagesResponse
	decodeBody(t, rec, &resp)
	if len(resp.Messages) != 1 || resp.Messages[0].SenderID != "3" {
		t.Fatalf("unexpected messages: %+v", resp.Messages)
	}
	if resp.UnreadCount != 1 {
		t.Fatalf("expected unread count 1, got %d", resp.UnreadCount)
	}
	if got := len(ws.Conversations.State().Messages); got != 3 {
		t.Fatalf("filtered fetch must not shrink state, got %d messages", got)
	}
}

func TestMessageHandler_Send_ResolvesNames(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, rec := newContext(http.MethodPost, "/messages", `{"recipient_id":"3","content":"Deployment fixed"}`, ws)
	if err := h.Send(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var msg domain.Message
	decodeBody(t, rec, &msg)
	if msg.SenderName != "Admin User" || msg.RecipientName != "John Smith" || msg.IsRead {
		t.Fatalf("unexpected message: %+v", msg)
	}

	recipient := f.login(t, "developer1")
	notes := recipient.Conversations.State().Notifications
	if len(notes) != 1 || notes[0].Title != "New message" || notes[0].Link != "/messages" {
		t.Fatalf("expected a new message notification, got %+v", notes)
	}
}

func TestMessageHandler_Send_Validation(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, _ := newContext(http.MethodPost, "/messages", `{"recipient_id":"","content":""}`, ws)
	fields, ok := domain.AsFieldErrors(h.Send(c))
	if !ok || fields["recipient_id"] == "" || fields["content"] == "" {
		t.Fatalf("expected recipient and content errors, got %v", fields)
	}
}

func TestMessageHandler_Delete_ForeignMessage(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "developer1")
	h := NewMessageHandler()

	c, _ := newContext(http.MethodDelete, "/messages/2", "", ws)
	if err := h.Delete(withParam(c, "id", "2")); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestMessageHandler_Conversations(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, rec := newContext(http.MethodGet, "/conversations", "", ws)
	if err := h.Conversations(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var convs []conversationResponse
	decodeBody(t, rec, &convs)
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].Contact.ID != "2" || convs[0].Contact.Name != "Jane Doe" {
		t.Fatalf("newest conversation should be with Jane Doe, got %+v", convs[0].Contact)
	}
}

func TestMessageHandler_OpenThread_MarksRead(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, rec := newContext(http.MethodGet, "/conversations/2", "", ws)
	if err := h.OpenThread(withParam(c, "userId", "2")); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp threadResponse
	decodeBody(t, rec, &resp)
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages in thread, got %d", len(resp.Messages))
	}
	for _, m := range resp.Messages {
		if m.RecipientID == "1" && !m.IsRead {
			t.Fatalf("message %s still unread", m.ID)
		}
	}
	if ws.Conversations.State().UnreadCount != 0 {
		t.Fatalf("expected no unread messages")
	}
}

func TestMessageHandler_Notifications(t *testing.T) {
	f := newFixture(t)
	ws := f.login(t, "DD403")
	h := NewMessageHandler()

	c, rec := newContext(http.MethodGet, "/notifications", "", ws)
	if err := h.Notifications(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp notificationsResponse
	decodeBody(t, rec, &resp)
	if len(resp.Notifications) != 2 || resp.UnreadCount != 2 {
		t.Fatalf("unexpected notifications: %+v", resp)
	}

	c, _ = newContext(http.MethodPost, "/notifications/9/read", "", ws)
	if err := h.MarkNotificationRead(withParam(c, "id", "9")); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}

	c, rec = newContext(http.MethodPost, "/notifications/read-all", "", ws)
	if err := h.ReadAllNotifications(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if ws.Conversations.State().UnreadNotifications != 0 {
		t.Fatalf("expected every notification read")
	}
}
