package chat

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle of a client connection.
type State int

const (
	Connecting State = iota
	Joined
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Joined:
		return "joined"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client is one WebSocket connection taking part in a room. Its state and
// handle are owned by the Hub; the connection itself is owned by the pumps.
type Client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	room   string
	addr   string
	handle string
	state  State
	log    logrus.FieldLogger
}

// NewClient prepares a client for the named room. conn may be nil for a
// client that is only ever driven through the Hub API.
func NewClient(conn *websocket.Conn, hub *Hub, roomName, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(hub.cfg.MaxMessageSize)
	}
	id := uuid.New()

	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, hub.cfg.SendBufferSize),
		hub:  hub,
		room: roomName,
		addr: addr,
		log: hub.log.WithFields(logrus.Fields{
			"client_id": id.String(),
			"room":      roomName,
			"addr":      addr,
		}),
	}
}

// GetSendChan returns the client's outbound queue.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

// ID identifies the connection in logs.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Room is the name of the room the client joins.
func (c *Client) Room() string {
	return c.room
}

// Handle is the display name assigned on join; empty before that.
func (c *Client) Handle() string {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	return c.handle
}

// State reports where the client is in its lifecycle.
func (c *Client) State() State {
	c.hub.mutex.RLock()
	defer c.hub.mutex.RUnlock()
	return c.state
}

func (c *Client) setupReadConnection() {
	pongWait := c.hub.cfg.PongWait
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Error("Error setting initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// logReadError classifies the error that ended the read loop.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.WithField("limit", c.hub.cfg.MaxMessageSize).Warn("Message exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived):
		c.log.Info("Client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.WithError(err).Info("Client connection closed")
	case websocket.IsUnexpectedCloseError(err):
		c.log.WithError(err).Warn("Unexpected WebSocket close")
	default:
		c.log.WithError(err).Warn("WebSocket read error")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.closeConnection()
	}()

	c.setupReadConnection()

	for {
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if messageType != websocket.TextMessage {
			c.log.WithField("type", messageType).Debug("Ignoring non-text frame")
			continue
		}
		c.hub.Broadcast(c, string(payload))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when
// the pump should stop.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		if !ok {
			return c.writeCloseMessage()
		}
		return c.write(websocket.TextMessage, message)
	case <-ticker.C:
		return c.write(websocket.PingMessage, nil)
	}
}

// write sends a single frame under the write deadline so a stalled peer
// only ever stalls its own pump.
func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait)); err != nil {
		c.log.WithError(err).Warn("Error setting write deadline")
		return false
	}
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		if !isExpectedCloseError(err) {
			c.log.WithError(err).Warn("Error writing message")
		}
		return false
	}
	return true
}

func (c *Client) writeCloseMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait)); err == nil {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteMessage(websocket.CloseMessage, message); err != nil && !isExpectedCloseError(err) {
			c.log.WithError(err).Warn("Error writing close message")
		}
	}
	return false
}

func (c *Client) closeConnection() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.WithError(err).Warn("Error closing connection")
	}
}

// isExpectedCloseError reports errors that only mean the peer is already
// gone.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
