package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification categories used by the business-write collaborators.
const (
	NotificationTypeRequest = "request"
	NotificationTypeQuote   = "quote"
	NotificationTypeBooking = "booking"
	NotificationTypeReview  = "review"
)

// Notification is the durable record; the websocket push is advisory and
// this row stays the source of truth.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Link      *string   `db:"link" json:"link"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationPayload is the wire shape pushed to live connections.
type NotificationPayload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Link      *string   `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) Payload() NotificationPayload {
	return NotificationPayload{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

type MarkReadRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}
