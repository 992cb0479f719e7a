package ws

import (
	"github.com/google/uuid"
)

// Message type tags shared with clients.
const (
	MessageTypeNotification          = "notification"
	MessageTypeConnectionEstablished = "connection_established"
	MessageTypeHeartbeat             = "heartbeat"
	MessageTypeHeartbeatResponse     = "heartbeat_response"
)

// NotificationMessage wraps a notification payload for push delivery.
type NotificationMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionEstablishedMessage is sent once, immediately after registration.
type ConnectionEstablishedMessage struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

// HeartbeatResponseMessage echoes the client-supplied timestamp.
type HeartbeatResponseMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// InboundMessage is the superset of shapes clients may send. Unknown types
// are accepted without effect.
type InboundMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}
