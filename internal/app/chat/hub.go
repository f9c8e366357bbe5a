/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Hub, the entry point the transport layer talks to. It
keeps an explicit registry of open connections keyed by opaque connection id,
routes each inbound envelope by kind to the Coordinator, the Reassembler, or
the Dispatcher, and turns disconnect notifications into upload teardown plus
the implicit leave path.
*/
package chat

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"driftchat/internal/configs"
	"driftchat/internal/pkg/errs"
	"driftchat/internal/pkg/logx"
)

// connState is the per-connection session record. The username is bound on the
// first successful join and drives the implicit leave on disconnect.
type connState struct {
	conn     Connection
	username string
}

// Hub wires the core components together and routes transport events.
type Hub struct {
	registry    *Registry
	coordinator *Coordinator
	reassembler *Reassembler
	dispatcher  *Dispatcher

	// mu guards conns, the connection registry keyed by connection id.
	mu    sync.RWMutex
	conns map[string]*connState

	logger zerolog.Logger
}

// NewHub constructs a Hub and all core components from cfg.
func NewHub(cfg *configs.AppConfig) *Hub {
	registry := NewRegistry()

	return &Hub{
		registry:    registry,
		coordinator: NewCoordinator(registry, cfg.RoomGracePeriod),
		reassembler: NewReassembler(cfg.MaxUploadBytes),
		dispatcher:  NewDispatcher(registry),
		conns:       make(map[string]*connState),
		logger:      logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// CreateRoom creates a new room and returns its id.
func (h *Hub) CreateRoom(name, hostUsername string) (string, error) {
	room, err := h.coordinator.CreateRoom(name, hostUsername)
	if err != nil {
		return "", err
	}

	return room.ID, nil
}

// RoomExists reports whether a room with the given id is present and active.
func (h *Hub) RoomExists(roomID string) bool {
	return h.registry.Exists(roomID)
}

// AttachConnection registers a freshly accepted connection.
func (h *Hub) AttachConnection(conn Connection) {
	h.mu.Lock()
	h.conns[conn.ID()] = &connState{conn: conn}
	h.mu.Unlock()

	h.logger.Info().Str("conn_id", conn.ID()).Msg("Connection established.")
}

// DetachConnection evicts a closed connection, discards its open upload
// sessions, and runs the implicit leave for its bound username, if any.
func (h *Hub) DetachConnection(conn Connection) {
	h.mu.Lock()
	state, ok := h.conns[conn.ID()]
	delete(h.conns, conn.ID())
	h.mu.Unlock()

	h.reassembler.DropConnection(conn.ID())

	if ok && state.username != "" {
		h.leave(conn, state.username)
	}

	h.logger.Info().Str("conn_id", conn.ID()).Msg("Connection closed.")
}

// HandleMessage routes one inbound wire frame from conn. A frame that fails to
// decode is dropped and the connection keeps operating.
func (h *Hub) HandleMessage(conn Connection, raw []byte) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		h.logger.Warn().
			Str("conn_id", conn.ID()).
			Err(err).
			Msg("Dropping undecodable message.")
		return
	}

	switch {
	case msg.Type == TypeJoin:
		h.handleJoin(conn, msg)

	case isBroadcastKind(msg.Type):
		if h.registry.Exists(msg.RoomID) {
			h.dispatcher.Broadcast(msg.RoomID, msg)
		}

	case msg.Type == TypeUploadStart:
		h.reassembler.Start(conn.ID(), msg.UploadID, MessageType(msg.FileType), msg.FileName)

	case msg.Type == TypeUploadChunk:
		if err := h.reassembler.AppendChunk(conn.ID(), msg.UploadID, msg.Content); err != nil {
			var customErr *errs.CustomError
			if errors.As(err, &customErr) {
				h.replySystem(conn, msg.RoomID, customErr.Message)
			} else {
				h.replySystem(conn, msg.RoomID, "Upload failed")
			}
		}

	case msg.Type == TypeUploadEnd:
		full, ok := h.reassembler.Finish(conn.ID(), msg.UploadID, msg.FileName, msg.FileType, msg.Sender, msg.RoomID)
		if ok && h.registry.Exists(msg.RoomID) {
			h.dispatcher.Broadcast(msg.RoomID, full)
		}

	case msg.Type == TypeLeave:
		h.leave(conn, msg.Sender)

	case msg.Type == TypeRoomClosed:
		h.closeRoom(msg.Sender, msg.RoomID)

	default:
		h.logger.Warn().
			Str("conn_id", conn.ID()).
			Str("msg_type", string(msg.Type)).
			Msg("Ignoring message of unknown type.")
	}
}

// handleJoin admits conn into a room under msg.Sender. A failed join is
// answered with a system message to the requesting connection only; nothing is
// mutated and nothing reaches the room.
func (h *Hub) handleJoin(conn Connection, msg Message) {
	username, roomID := msg.Sender, msg.RoomID

	if !h.registry.Exists(roomID) {
		h.replySystem(conn, roomID, "Room not found or inactive")
		return
	}

	if !h.coordinator.CanJoin(roomID, username, msg.UserID) {
		h.logger.Info().
			Str("room_id", roomID).
			Str("username", username).
			Msg("Join denied: duplicate username, not a reconnect.")

		h.replySystem(conn, roomID, "Username '"+username+"' is already taken in this room")
		return
	}

	if !h.coordinator.AddUser(roomID, username, conn, msg.UserID) {
		// Lost a race with expiration, close, or a competing join.
		h.replySystem(conn, roomID, "Room not found or inactive")
		return
	}

	h.bindUsername(conn, username)

	h.dispatcher.Broadcast(roomID, NewMessage(TypeJoin, username+" joined the room", username, roomID))
	h.broadcastUserList(roomID)
}

// leave removes username from its current room and notifies the remaining
// participants. A stale handle or an unknown user changes nothing.
func (h *Hub) leave(conn Connection, username string) {
	res := h.coordinator.RemoveUser(username, conn)
	if !res.Removed {
		return
	}

	h.dispatcher.Broadcast(res.RoomID, NewMessage(TypeLeave, username+" left the room", username, res.RoomID))

	if res.NewHost != "" {
		h.dispatcher.Broadcast(res.RoomID, NewSystemMessage(res.NewHost+" is now the host", res.RoomID))
	}

	h.broadcastUserList(res.RoomID)
}

// closeRoom handles a host-issued close: every participant is told the room is
// closing, then the room is torn down. Issued by anyone else it is a no-op.
func (h *Hub) closeRoom(username, roomID string) {
	if !h.coordinator.IsHost(username, roomID) {
		return
	}

	h.dispatcher.Broadcast(roomID, NewMessage(TypeRoomClosed, "Room has been closed by the host", SystemSender, roomID))
	h.coordinator.CloseRoom(roomID)
}

// broadcastUserList sends the room's current participant roster to the room.
func (h *Hub) broadcastUserList(roomID string) {
	names := h.dispatcher.UserList(roomID)
	if names == nil {
		return
	}

	h.dispatcher.Broadcast(roomID, NewMessage(TypeUserList, strings.Join(names, ", "), SystemSender, roomID))
}

// replySystem sends a system-authored chat message to one connection.
func (h *Hub) replySystem(conn Connection, roomID, text string) {
	payload, err := NewSystemMessage(text, roomID).Encode()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode system reply.")
		return
	}

	if !conn.Open() {
		return
	}

	if err := conn.Send(payload); err != nil {
		h.logger.Warn().
			Str("conn_id", conn.ID()).
			Err(err).
			Msg("Failed to deliver system reply.")
	}
}

// bindUsername records the username a connection acts as, for the implicit
// leave on disconnect.
func (h *Hub) bindUsername(conn Connection, username string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if state, ok := h.conns[conn.ID()]; ok {
		state.username = username
	}
}

// Shutdown stops background expiration work.
func (h *Hub) Shutdown() {
	h.coordinator.Shutdown()
	h.logger.Info().Msg("Hub shutdown complete.")
}
