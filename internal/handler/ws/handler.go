package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/ws"
)

// Handler owns the websocket endpoint: it authenticates the handshake,
// registers the connection, echoes heartbeats and guarantees deregistration
// on every exit path.
type Handler struct {
	registry  *ws.Registry
	validator middleware.TokenValidator
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(registry *ws.Registry, validator middleware.TokenValidator, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		validator: validator,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set Authorization headers on websocket
			// handshakes, so auth rides in a query parameter and origins
			// are left to the CORS layer in front.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws", h.Serve)
}

// Serve upgrades the connection, then validates the token. The order
// matters: a close frame with a policy code can only be delivered over an
// established websocket connection.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	token := c.Query("token")
	if token == "" {
		h.reject(conn, "missing token")
		return
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.reject(conn, "invalid token")
		return
	}

	connID := uuid.New().String()
	client := ws.NewConn(conn)

	h.registry.Register(connID, claims.UserID, client)
	defer h.registry.Unregister(connID)
	defer conn.Close()

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", claims.UserID.String()).
		Msg("websocket connected")

	if err := client.Send(ws.ConnectionEstablishedMessage{
		Type:   ws.MessageTypeConnectionEstablished,
		UserID: claims.UserID,
	}); err != nil {
		h.logger.Error().Err(err).Str("conn_id", connID).Msg("failed to confirm connection")
		return
	}

	h.readLoop(connID, client, conn)

	h.logger.Info().
		Str("conn_id", connID).
		Str("user_id", claims.UserID.String()).
		Msg("websocket disconnected")
}

func (h *Handler) readLoop(connID string, client *ws.Conn, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug().Err(err).Str("conn_id", connID).Msg("websocket read error")
			}
			return
		}

		// Only transport errors end the session. Malformed frames and
		// unknown types are logged and skipped so that older or newer
		// clients never get disconnected for chattiness.
		var msg ws.InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Debug().Err(err).Str("conn_id", connID).Msg("ignoring malformed message")
			continue
		}

		if msg.Type == ws.MessageTypeHeartbeat {
			if err := client.Send(ws.HeartbeatResponseMessage{
				Type:      ws.MessageTypeHeartbeatResponse,
				Timestamp: msg.Timestamp,
			}); err != nil {
				h.logger.Debug().Err(err).Str("conn_id", connID).Msg("heartbeat echo failed")
				return
			}
		}
	}
}

// reject closes a fresh connection with a policy violation frame before it
// ever reaches the registry.
func (h *Handler) reject(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = conn.Close()
}
