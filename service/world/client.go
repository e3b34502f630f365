package world

import (
	"sync"
	"time"

	"PArena/logger"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket connection to the gateway. All writes to
// the socket happen on a single writer goroutine consuming Send, so frames
// enqueued for a given client are delivered in enqueue order.
type Client struct {
	ConnID string          // unique connection id assigned at upgrade time
	WS     *websocket.Conn // underlying connection, written only by WritePump
	Send   chan []byte     // outbound frame queue

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a new client connection object.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue offers a frame to the outbound queue without blocking. It returns
// false when the client is closed or its queue is full; a full queue means
// the client is too slow and the frame is dropped rather than buffered
// without bound.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close signals the writer pump to send a close frame and tear down the
// socket. Safe to call any number of times from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client has been told to shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// WritePump is the single writer goroutine for the connection: it drains
// Send, emits keepalive pings and performs the closing handshake. Run it
// once per client; it returns when Close is called or a write fails.
func (c *Client) WritePump(writeWait, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WS.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.WS.Close()
	}()

	for {
		select {
		case payload := <-c.Send:
			if err := c.WS.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Debugf("[WS] set write deadline conn=%s err=%v", c.ConnID, err)
				return
			}
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debugf("[WS] write conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			if err := c.WS.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeWait)); err != nil {
				logger.Debugf("[WS] ping conn=%s err=%v", c.ConnID, err)
				return
			}
		case <-c.done:
			return
		}
	}
}
