package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"

	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client on top of a gorilla WebSocket
// connection, with the usual read/write pump pair.
type WebSocketClient struct {
	Username string
	Conn     *websocket.Conn
	Send     chan models.OutboundFrame

	closeOnce sync.Once
}

func NewWebSocketClient(username string, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		Username: username,
		Conn:     conn,
		Send:     make(chan models.OutboundFrame, config.SendBufferSize),
	}
}

func (c *WebSocketClient) GetUsername() string { return c.Username }

func (c *WebSocketClient) GetSendChannel() chan<- models.OutboundFrame { return c.Send }

// Run starts the pumps for this connection.
func (c *WebSocketClient) Run(h SessionHandler) {
	go c.writePump()
	go c.readPump(h)
}

// Close closes the Send channel, which stops the write pump after it emits
// a normal close frame.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// CloseWithCode tears the connection down immediately with the given close
// code. Used for authentication rejection and setup timeouts.
func (c *WebSocketClient) CloseWithCode(code int, reason string) {
	deadline := time.Now().Add(config.WriteWait)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.Conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("ERROR: Failed to write close frame for %s: %v", c.Username, err)
	}
	c.Conn.Close()
}

func (c *WebSocketClient) readPump(h SessionHandler) {
	defer func() {
		h.Disconnect()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message from %s: %v", c.Username, err)
			}
			break
		}

		// Frames are handed over in arrival order; the session decides
		// what they mean.
		h.Receive(raw)
	}
}

// writePump reads frames from the Send channel and writes them to the
// WebSocket, coalescing queued frames into one write.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Channel closed by the session side.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("Error encoding JSON for client %s: %v", c.Username, err)
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			n := len(c.Send)
			for i := 0; i < n; i++ {
				next := <-c.Send
				extra, err := json.Marshal(next)
				if err != nil {
					continue
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, extra); err != nil {
					return
				}
			}

		case <-ticker.C:
			// Ping to keep the connection alive.
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
