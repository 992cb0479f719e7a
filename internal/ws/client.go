package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn adapts a gorilla websocket connection to the Sender interface.
// gorilla connections support one concurrent writer, so sends are
// serialized behind a mutex.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
