/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Client struct, the WebSocket-backed Connection handed to
the Hub. It owns the read and write pumps for one socket and implements the
non-blocking outbound queue the Dispatcher relies on.
*/
package chat

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"driftchat/internal/pkg/logx"
)

const (
	// timeout for a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping.
	pingPeriod = (pongWait * 9) / 10

	// maximum inbound frame size. Upload chunks arrive base64-encoded, so this
	// bounds the chunk size clients may use, not the total upload size.
	maxMessageSize = 1 << 20

	// capacity of the outbound queue; when full, messages for this client are
	// dropped rather than blocking the sender.
	sendQueueSize = 256
)

// errSendQueueFull is returned when a client's outbound queue cannot accept
// another payload without blocking.
var errSendQueueFull = errors.New("client send queue full")

// errConnClosed is returned when sending to a client whose pumps have exited.
var errConnClosed = errors.New("client connection closed")

// Client is one active WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	// send queues encoded messages for the write pump.
	send chan []byte

	// closed flips once when either pump exits; Open reports its inverse.
	closed atomic.Bool

	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection. The connection id is a
// fresh opaque token, independent of any username.
func NewClient(hub *Hub, wsConn *websocket.Conn) *Client {
	id := uuid.NewString()

	return &Client{
		id:     id,
		hub:    hub,
		conn:   wsConn,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("conn_id", id).Logger(),
	}
}

// ID returns the opaque connection id.
func (c *Client) ID() string {
	return c.id
}

// Open reports whether the connection still accepts outbound payloads.
func (c *Client) Open() bool {
	return !c.closed.Load()
}

// Send queues a payload without blocking. A closed connection or a full queue
// drops the payload and returns an error; the caller skips this recipient.
func (c *Client) Send(payload []byte) error {
	if c.closed.Load() {
		return errConnClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping message.")
		return errSendQueueFull
	}
}

// ReadPump reads frames from the socket and hands them to the Hub until the
// connection drops. It runs on the connection's own goroutine and performs the
// disconnect notification on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected close while reading")
			}
			break
		}

		c.hub.HandleMessage(c, frame)
	}
}

// cleanupOnDisconnect marks the connection closed and triggers teardown:
// upload sessions are discarded and the bound username takes the leave path.
func (c *Client) cleanupOnDisconnect() {
	c.closed.Store(true)

	c.hub.DetachConnection(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// WritePump drains the send queue onto the socket and keeps the heartbeat
// going. It exits on the first failed write, which also marks the connection
// closed for the Dispatcher.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.closed.Store(true)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Info().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
