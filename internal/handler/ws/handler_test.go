package ws

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace-api/internal/model"
	iws "github.com/servease/marketplace-api/internal/ws"
)

type stubValidator struct {
	userID uuid.UUID
}

func (v stubValidator) ValidateToken(token string) (*model.TokenClaims, error) {
	if token != "good-token" {
		return nil, errors.New("invalid token")
	}
	return &model.TokenClaims{UserID: v.userID, Email: "jo@example.com", Role: model.UserRoleCustomer}, nil
}

type env struct {
	server   *httptest.Server
	registry *iws.Registry
	userID   uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := iws.NewRegistry(nil)
	userID := uuid.New()
	h := NewHandler(registry, stubValidator{userID: userID}, zerolog.Nop())

	router := gin.New()
	h.RegisterRoutes(router.Group(""))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &env{server: server, registry: registry, userID: userID}
}

func (e *env) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, r *iws.Registry, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.ConnectionCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry never reached %d connections", want)
}

func TestServe_EstablishesAndRegisters(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "good-token")

	var established iws.ConnectionEstablishedMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&established))
	assert.Equal(t, iws.MessageTypeConnectionEstablished, established.Type)
	assert.Equal(t, e.userID, established.UserID)

	waitForConnections(t, e.registry, 1)
	assert.Equal(t, 1, e.registry.UserCount())
}

func TestServe_InvalidTokenClosedWithPolicyViolation(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "bad-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)

	assert.Equal(t, 0, e.registry.ConnectionCount(), "rejected connections never register")
}

func TestServe_MissingTokenRejected(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestServe_HeartbeatEcho(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "good-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var established iws.ConnectionEstablishedMessage
	require.NoError(t, conn.ReadJSON(&established))

	sent := time.Now().UnixMilli()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":      "heartbeat",
		"timestamp": sent,
	}))

	var echo iws.HeartbeatResponseMessage
	require.NoError(t, conn.ReadJSON(&echo))
	assert.Equal(t, iws.MessageTypeHeartbeatResponse, echo.Type)
	assert.Equal(t, sent, echo.Timestamp)
}

func TestServe_UnknownMessageIgnored(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "good-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var established iws.ConnectionEstablishedMessage
	require.NoError(t, conn.ReadJSON(&established))

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "mystery"}))

	// The connection stays up: a heartbeat after the unknown message still
	// gets its echo.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "heartbeat", "timestamp": int64(42)}))
	var echo iws.HeartbeatResponseMessage
	require.NoError(t, conn.ReadJSON(&echo))
	assert.Equal(t, int64(42), echo.Timestamp)
}

func TestServe_MalformedMessageIgnored(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "good-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var established iws.ConnectionEstablishedMessage
	require.NoError(t, conn.ReadJSON(&established))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not-json{{{")))

	// A frame that fails to parse must not end the session: the next
	// heartbeat still gets its echo.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "heartbeat", "timestamp": int64(7)}))
	var echo iws.HeartbeatResponseMessage
	require.NoError(t, conn.ReadJSON(&echo))
	assert.Equal(t, iws.MessageTypeHeartbeatResponse, echo.Type)
	assert.Equal(t, int64(7), echo.Timestamp)
}

func TestServe_UnregistersOnDisconnect(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "good-token")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var established iws.ConnectionEstablishedMessage
	require.NoError(t, conn.ReadJSON(&established))
	waitForConnections(t, e.registry, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	waitForConnections(t, e.registry, 0)
	assert.Equal(t, 0, e.registry.UserCount(), "owner key must go when the last connection does")
}

func TestServe_MultipleConnectionsSameUser(t *testing.T) {
	e := newEnv(t)

	first := e.dial(t, "good-token")
	second := e.dial(t, "good-token")

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var established iws.ConnectionEstablishedMessage
		require.NoError(t, conn.ReadJSON(&established))
	}

	waitForConnections(t, e.registry, 2)
	assert.Equal(t, 1, e.registry.UserCount())
}
