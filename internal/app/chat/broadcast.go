/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Dispatcher, which fans one message out to every open
connection currently registered in a room. Delivery is best effort: a closed
handle or a failed send skips that recipient only and never mutates membership.
*/
package chat

import (
	"github.com/rs/zerolog"

	"driftchat/internal/pkg/logx"
)

// Dispatcher fans messages out to room participants.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewDispatcher constructs a Dispatcher over registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logx.Logger().With().Str("component", "dispatcher").Logger(),
	}
}

// Broadcast encodes msg once and sends it to every open connection registered
// in the room. A missing room is a no-op. Sends never block: handles queue
// without waiting, so one stalled recipient cannot hold up the rest of the
// room. Membership changes happen only via leave/disconnect handling, never as
// a side effect of a failed send.
func (d *Dispatcher) Broadcast(roomID string, msg Message) {
	room := d.registry.GetByID(roomID)
	if room == nil {
		return
	}

	payload, err := msg.Encode()
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("room_id", roomID).
			Str("msg_type", string(msg.Type)).
			Msg("Failed to encode message for broadcast.")
		return
	}

	for _, conn := range room.Connections() {
		if !conn.Open() {
			continue
		}

		if err := conn.Send(payload); err != nil {
			d.logger.Warn().
				Str("room_id", roomID).
				Str("conn_id", conn.ID()).
				Err(err).
				Msg("Skipping recipient on failed send.")
		}
	}
}

// UserList returns the usernames currently registered in the room, presented
// in join order. A missing room yields nil.
func (d *Dispatcher) UserList(roomID string) []string {
	room := d.registry.GetByID(roomID)
	if room == nil {
		return nil
	}

	return room.Participants()
}
