package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"codeberg.org/todoai/server/internal/logger"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// creates a new websocket client connection
func NewClient(id, sessionID, userID, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		ID:        id,
		SessionID: sessionID,
		UserID:    userID,
		IPAddress: ipAddress,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, sendBufferSize),
		inbox:     make(chan *Message, inboxSize),
		ctx:       ctx,
		cancel:    cancel,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/updatesPerMinute), updateBurst),
	}
}

// context scoped to the life of the connection
func (c *Client) Context() context.Context {
	return c.ctx
}

// starts the pumps for a registered client
func (c *Client) Start() {
	go c.WritePump()
	go c.ProcessPump()
	go c.ReadPump()
}

// reads messages from the websocket connection and queues them for their handler
func (c *Client) ReadPump() {
	defer func() {
		close(c.inbox)
		c.hub.Unregister(c)
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"session_id", c.SessionID,
					"error", err,
				)
			}

			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.SendError("bad_request", ErrInvalidMessage.Error())
			continue
		}

		if err := c.admit(&msg); err != nil {
			continue
		}

		select {
		case c.inbox <- &msg:
		default:
			c.SendError("busy", "still working on earlier updates, try again shortly")
		}
	}
}

// checks an inbound message before it is queued, answering the client when it is refused
func (c *Client) admit(msg *Message) error {
	if _, ok := c.hub.handler(msg.Type); !ok {
		c.SendError("bad_request", "unknown message type: "+msg.Type)
		return ErrInvalidMessage
	}

	if msg.Type != TypeUpdate {
		return nil
	}

	msg.Update = strings.TrimSpace(msg.Update)

	if msg.Update == "" {
		c.SendError("validation_error", "update is required")
		return ErrInvalidMessage
	}

	if len(msg.Update) > maxUpdateLength {
		c.SendError("validation_error", ErrUpdateTooLarge.Error())
		return ErrUpdateTooLarge
	}

	if !c.limiter.Allow() {
		c.SendError("too_many_requests", "too many updates, slow down")
		return ErrRateLimitExceeded
	}

	return nil
}

// runs handlers for queued messages one at a time
func (c *Client) ProcessPump() {
	for msg := range c.inbox {
		handler, ok := c.hub.handler(msg.Type)
		if !ok {
			continue
		}

		if err := handler(c.ctx, c, msg); err != nil {
			if c.ctx.Err() != nil {
				return
			}

			logger.ErrorErr(err, "websocket handler failed",
				"client_id", c.ID,
				"session_id", c.SessionID,
				"type", msg.Type,
			)

			c.SendError("internal_error", "failed to process message")
		}
	}
}

// writes queued messages to the websocket connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// client closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sends a message to the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	if c.IsClosed() {
		return ErrConnectionClosed
	}

	if msg.SessionID == "" {
		msg.SessionID = c.SessionID
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		logger.Warn("websocket send buffer full, closing connection",
			"client_id", c.ID,
			"session_id", c.SessionID,
		)

		c.Close()
		return ErrConnectionClosed
	}
}

// sends an error message to the client
func (c *Client) SendError(code, message string) {
	c.Send(&Message{Type: TypeError, Error: code, Message: message}) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the client connection and cancels in-flight work
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
		c.cancel()
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}
