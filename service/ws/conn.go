package ws

import (
	"sync"
	"time"

	"TDProject/logger"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 256
	writeDeadline = 5 * time.Second
)

// Conn is one live websocket session. The gateway owns it for its whole
// lifetime: created on upgrade, destroyed on transport close or refusal.
// Writes go through the buffered send queue so broadcasts never block on
// a slow peer; delivery is best-effort at-most-once.
type Conn struct {
	ID       string
	PlayerID int64 // set once authenticated

	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   id,
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
	}
}

// enqueue queues a frame for delivery. A full queue drops the frame.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		logger.Warnf("[ws] send queue full, dropping frame conn=%s", c.ID)
		return false
	}
}

// writePump drains the send queue onto the socket. One goroutine per
// connection; exits when the queue is closed or a write fails.
func (c *Conn) writePump() {
	for data := range c.send {
		if err := c.ws.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			break
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debugf("[ws] write err conn=%s: %v", c.ID, err)
			break
		}
	}
	_ = c.ws.Close()
}

// close shuts the send queue exactly once; safe to call repeatedly.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}
