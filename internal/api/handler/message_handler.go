package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// MessageHandler serves messages, conversations and notifications from the
// caller's conversation store.
type MessageHandler struct{}

func NewMessageHandler() *MessageHandler { return &MessageHandler{} }

type messagesResponse struct {
	Messages    []domain.Message `json:"messages"`
	UnreadCount int              `json:"unread_count"`
}

type conversationResponse struct {
	Contact     domain.Contact `json:"contact"`
	LastMessage domain.Message `json:"last_message"`
	Unread      int            `json:"unread"`
}

type threadResponse struct {
	Contact  domain.Contact   `json:"contact"`
	Messages []domain.Message `json:"messages"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// List refreshes the caller's messages and returns those exchanged with
// ?user_id=, or all of them when it is absent.
//
// @Summary   List messages
// @Tags      messages
// @Produce   json
// @Security  BearerAuth
// @Param     user_id  query     string  false  "Counterpart id"
// @Success   200      {object}  messagesResponse
// @Failure   401      {object}  map[string]string
// @Router    /messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	msgs, err := ws.Conversations.GetMessages(requestContext(c), c.QueryParam("user_id"))
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return c.JSON(http.StatusOK, messagesResponse{
		Messages:    msgs,
		UnreadCount: ws.Conversations.State().UnreadCount,
	})
}

// Send delivers a message and notifies the recipient.
//
// @Summary   Send a message
// @Tags      messages
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      domain.NewMessage  true  "Recipient and content"
// @Success   201   {object}  domain.Message
// @Failure   401   {object}  map[string]string
// @Failure   422   {object}  map[string]any
// @Router    /messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	var req domain.NewMessage
	if err := decode(c, &req); err != nil {
		return err
	}

	msg, err := ws.Conversations.SendMessage(requestContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// MarkRead flips the read flag of one message.
//
// @Summary   Mark a message read
// @Tags      messages
// @Security  BearerAuth
// @Param     id   path  string  true  "Message id"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := ws.Conversations.MarkMessageAsRead(requestContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one message.
//
// @Summary   Delete a message
// @Tags      messages
// @Security  BearerAuth
// @Param     id   path  string  true  "Message id"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /messages/{id} [delete]
func (h *MessageHandler) Delete(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := ws.Conversations.DeleteMessage(requestContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Conversations lists one entry per counterpart, newest first, with the
// counterpart resolved through the directory.
//
// @Summary   List conversations
// @Tags      conversations
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   conversationResponse
// @Failure   401  {object}  map[string]string
// @Router    /conversations [get]
func (h *MessageHandler) Conversations(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	ctx := requestContext(c)
	summaries := ws.Conversations.Conversations()
	out := make([]conversationResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, conversationResponse{
			Contact:     ws.Directory.Resolve(ctx, s.CounterpartID),
			LastMessage: s.LastMessage,
			Unread:      s.Unread,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// OpenThread marks the counterpart's unread messages read and returns the
// thread, oldest first.
//
// @Summary   Open a conversation
// @Tags      conversations
// @Produce   json
// @Security  BearerAuth
// @Param     userId  path      string  true  "Counterpart id"
// @Success   200     {object}  threadResponse
// @Failure   401     {object}  map[string]string
// @Router    /conversations/{userId} [get]
func (h *MessageHandler) OpenThread(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	counterpart := c.Param("userId")
	msgs, err := ws.Conversations.OpenThread(requestContext(c), counterpart)
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return c.JSON(http.StatusOK, threadResponse{
		Contact:  ws.Directory.Resolve(requestContext(c), counterpart),
		Messages: msgs,
	})
}

// Notifications lists the caller's notifications, newest first.
//
// @Summary   List notifications
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  notificationsResponse
// @Failure   401  {object}  map[string]string
// @Router    /notifications [get]
func (h *MessageHandler) Notifications(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	st := ws.Conversations.State()
	notes := st.Notifications
	if notes == nil {
		notes = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationsResponse{
		Notifications: notes,
		UnreadCount:   st.UnreadNotifications,
	})
}

// MarkNotificationRead flips the read flag of one notification.
//
// @Summary   Mark a notification read
// @Tags      notifications
// @Security  BearerAuth
// @Param     id   path  string  true  "Notification id"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /notifications/{id}/read [post]
func (h *MessageHandler) MarkNotificationRead(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := ws.Conversations.MarkNotificationAsRead(requestContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReadAllNotifications marks every notification of the caller read.
//
// @Summary   Mark all notifications read
// @Tags      notifications
// @Security  BearerAuth
// @Success   204
// @Failure   401  {object}  map[string]string
// @Router    /notifications/read-all [post]
func (h *MessageHandler) ReadAllNotifications(c echo.Context) error {
	ws, err := ctxWorkspace(c)
	if err != nil {
		return err
	}

	if err := ws.Conversations.ClearAllNotifications(requestContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
