package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	sendBufferSize = 32
)

// Client is one live connection. Its id is the connection identity players
// are keyed by for the connection's lifetime.
type Client struct {
	id     string
	logger *slog.Logger
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id string, logger *slog.Logger, conn *websocket.Conn) *Client {
	return &Client{
		id:     id,
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a frame to the write pump without blocking. A full buffer
// drops the frame; broadcasting is fire-and-forget. The mutex orders enqueue
// against close: a broadcast may still hold this client after its connection
// dropped, and sending on the closed channel would panic the process.
func (that *Client) enqueue(data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump. Idempotent; later enqueues become no-ops.
func (that *Client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

// writePump pumps queued frames to the connection and keeps it alive with
// periodic pings. It exits when the send channel is closed or a write fails.
func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("write failed, closing connection", "connectionID", that.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
