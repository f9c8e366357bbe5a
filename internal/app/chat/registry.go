/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Registry, the single owner of all Room instances, keyed by
room id.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"driftchat/internal/pkg/logx"
	"driftchat/internal/pkg/randx"
)

// Registry owns the set of live rooms. All operations are safe under unbounded
// concurrent callers; lookups only take the read lock and never block on
// unrelated writes.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Create generates a fresh room id, creates the room, and stores it. The id is
// a short fixed-length uppercase alphanumeric token; the collision probability
// is negligible and not actively checked.
func (reg *Registry) Create(name, hostUsername string) (*Room, error) {
	id, err := randx.RoomID()
	if err != nil {
		return nil, err
	}

	room := newRoom(id, name, hostUsername)

	reg.mu.Lock()
	reg.rooms[id] = room
	reg.mu.Unlock()

	reg.logger.Info().
		Str("room_id", id).
		Str("host", hostUsername).
		Msg("Room created.")

	return room, nil
}

// Exists reports whether a room with the given id is present and still active.
func (reg *Registry) Exists(roomID string) bool {
	reg.mu.RLock()
	room, ok := reg.rooms[roomID]
	reg.mu.RUnlock()

	return ok && room.Active()
}

// GetByID returns the room with the given id, or nil.
func (reg *Registry) GetByID(roomID string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.rooms[roomID]
}

// Remove unconditionally deletes the room entry. Callers are responsible for
// prior cleanup of indices and pending expiration.
func (reg *Registry) Remove(roomID string) {
	reg.mu.Lock()
	_, ok := reg.rooms[roomID]
	delete(reg.rooms, roomID)
	reg.mu.Unlock()

	if ok {
		reg.logger.Info().Str("room_id", roomID).Msg("Room removed.")
	}
}

// Len returns the number of rooms currently held, active or not.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.rooms)
}
