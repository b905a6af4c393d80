package domain

import "time"

// Attachment is file metadata carried by a message.
type Attachment struct {
	ID       string `json:"id" bson:"id"`
	FileName string `json:"file_name" bson:"file_name"`
	FileType string `json:"file_type" bson:"file_type"`
	FileSize int64  `json:"file_size" bson:"file_size"`
	FileURL  string `json:"file_url" bson:"file_url"`
}

// Message is a direct message between two identities. The name and avatar
// fields are copies taken when the message was sent; Contact lookups are
// preferred at read time.
type Message struct {
	ID            string       `json:"id" bson:"_id"`
	SenderID      string       `json:"sender_id" bson:"sender_id"`
	SenderName    string       `json:"sender_name" bson:"sender_name"`
	SenderAvatar  string       `json:"sender_avatar,omitempty" bson:"sender_avatar,omitempty"`
	RecipientID   string       `json:"recipient_id" bson:"recipient_id"`
	RecipientName string       `json:"recipient_name" bson:"recipient_name"`
	Content       string       `json:"content" bson:"content"`
	IsRead        bool         `json:"is_read" bson:"is_read"`
	Attachments   []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// Involves reports whether userID is the sender or the recipient.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Counterpart returns the other party of m as seen by userID.
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// NewMessage is the input of a send.
type NewMessage struct {
	RecipientID string            `json:"recipient_id" validate:"required"`
	Content     string            `json:"content" validate:"required"`
	Attachments []AttachmentInput `json:"attachments,omitempty" validate:"dive"`
}

// AttachmentInput describes a file already uploaded elsewhere.
type AttachmentInput struct {
	FileName string `json:"file_name" validate:"required"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
	FileURL  string `json:"file_url" validate:"required,url"`
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
	NotificationError   NotificationType = "ERROR"
)

// Notification is a system alert owned by one user.
type Notification struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Title     string           `json:"title" bson:"title"`
	Message   string           `json:"message" bson:"message"`
	IsRead    bool             `json:"is_read" bson:"is_read"`
	Type      NotificationType `json:"type" bson:"type"`
	Link      string           `json:"link,omitempty" bson:"link,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
