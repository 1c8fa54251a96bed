package handlers

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message types pushed to live clients
const (
	MessageFeed      = "feed"
	MessageReactions = "reactions"
	MessageComments  = "comments"
	MessageError     = "error"
)

// LiveMessage is one frame sent over a live connection. Every frame carries
// the full current state of what it describes, never a delta.
type LiveMessage struct {
	Type      string      `json:"type"`
	ImageID   string      `json:"image_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// liveClient owns one websocket connection. Store listeners push frames into
// send; the write pump is the only goroutine writing to the connection.
type liveClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newLiveClient(conn *websocket.Conn, logger *slog.Logger) *liveClient {
	return &liveClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// push queues a frame. A client that cannot keep up is disconnected.
func (c *liveClient) push(msg LiveMessage) {
	msg.Timestamp = time.Now()
	b, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal live message", "type", msg.Type, "error", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- b:
	default:
		c.logger.Warn("live client too slow, disconnecting", "type", msg.Type)
		c.close()
	}
}

func (c *liveClient) close() {
	c.once.Do(func() { close(c.done) })
}

// readPump discards incoming frames and returns when the peer goes away.
func (c *liveClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("websocket error", "error", err)
			}
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
