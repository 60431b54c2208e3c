package notifications

import (
	"log/slog"
	"sync"
	"time"

	"socialnet/internal/middleware"
	"socialnet/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send pongs and close frames.
	maxMessageSize = 512

	sendBuffer = 64
)

var droppedNotice = []byte(`{"type":"` + EventDropped + `","payload":{"reason":"buffer_full"}}`)

// Client is one websocket connection owned by a Hub. Only WritePump writes
// to Conn; everyone else queues on Send, which the hub closes exactly once.
type Client struct {
	hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint

	closeOnce  sync.Once
	closeFrame []byte
	writerDone chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:        hub,
		Conn:       conn,
		UserID:     userID,
		Send:       make(chan []byte, sendBuffer),
		writerDone: make(chan struct{}),
	}
}

// closeSend ends the write side; WritePump sends frame as the close message.
// Callers hold the hub write lock, so no TrySend can race with the close.
func (c *Client) closeSend(frame []byte) {
	c.closeOnce.Do(func() {
		c.closeFrame = frame
		close(c.Send)
	})
}

// ReadPump discards inbound frames and keeps the read deadline fresh until
// the peer goes away, then unregisters the client and waits for WritePump,
// which must already be running.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		<-c.writerDone
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("websocket read failed", slog.Uint64("user_id", uint64(c.UserID)), slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump writes queued messages and pings until Send is closed or the
// connection fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, c.closeFrame); err != nil {
					middleware.Logger.Debug("write close frame failed", slog.Uint64("user_id", uint64(c.UserID)), slog.String("error", err.Error()))
				}
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. When the buffer is full the
// message is dropped and the client is told so it can refetch.
func (c *Client) TrySend(message []byte) {
	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues("buffer_full").Inc()
		select {
		case c.Send <- droppedNotice:
		default:
		}
	}
}
