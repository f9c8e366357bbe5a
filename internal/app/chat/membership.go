/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Coordinator, the membership authority: join, leave, host
transfer, and room close all pass through it. It keeps the global username-to-room
index in lockstep with each room's participant set and drives the expiration
Scheduler for empty rooms.
*/
package chat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"driftchat/internal/pkg/logx"
)

// Coordinator implements the membership state machine per room:
// ACTIVE(non-empty) <-> ACTIVE(empty, expiration pending) -> REMOVED.
// The empty state is entered on the last leave and exited by any join, which
// cancels expiration. REMOVED is terminal and reached either by expiration
// firing while the room is still empty or by an explicit host close.
type Coordinator struct {
	registry  *Registry
	scheduler *Scheduler

	// mu guards userRooms, the global username -> room id index.
	mu        sync.RWMutex
	userRooms map[string]string

	logger zerolog.Logger
}

// RemoveResult describes the outcome of RemoveUser.
type RemoveResult struct {
	// Removed is false when the user was in no room or the supplied handle was
	// stale. Membership is then unchanged.
	Removed bool

	// RoomID identifies the room the user was removed from.
	RoomID string

	// Empty reports whether the room was left without participants and its
	// expiration was scheduled.
	Empty bool

	// NewHost names the participant the host role was transferred to, when the
	// removed user was host of a non-empty room.
	NewHost string
}

// NewCoordinator constructs a Coordinator over registry, with empty rooms
// expiring after grace.
func NewCoordinator(registry *Registry, grace time.Duration) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		userRooms: make(map[string]string),
		logger:    logx.Logger().With().Str("component", "coordinator").Logger(),
	}
	c.scheduler = NewScheduler(grace, c.expireRoom)

	return c
}

// CreateRoom creates a room and arms its expiration: a room that is never
// joined is reclaimed after the same grace period as one that was abandoned.
func (c *Coordinator) CreateRoom(name, hostUsername string) (*Room, error) {
	room, err := c.registry.Create(name, hostUsername)
	if err != nil {
		return nil, err
	}

	c.scheduler.Schedule(room.ID)
	return room, nil
}

// CanJoin reports whether username may join roomID: a free username always may;
// a taken one only when the stored reconnect identity is unset or equals
// clientID. This is the advisory pre-check; AddUser re-applies the rule
// atomically.
func (c *Coordinator) CanJoin(roomID, username, clientID string) bool {
	room := c.registry.GetByID(roomID)
	if room == nil {
		return false
	}

	return room.CanAdmit(username, clientID)
}

// AddUser registers conn under username in roomID. Any pending expiration is
// cancelled first, then the connection is registered (overwriting a stale
// handle on reconnect) and the username index updated. Returns false when the
// room is gone, inactive, or admission is denied.
func (c *Coordinator) AddUser(roomID, username string, conn Connection, clientID string) bool {
	room := c.registry.GetByID(roomID)
	if room == nil || !room.Active() {
		return false
	}

	// Cancel before admitting; the room is no longer empty.
	c.scheduler.Cancel(roomID)

	if !room.addParticipant(username, conn, clientID) {
		return false
	}

	c.mu.Lock()
	c.userRooms[username] = roomID
	c.mu.Unlock()

	c.logger.Info().
		Str("room_id", roomID).
		Str("username", username).
		Msg("User joined room.")

	return true
}

// RemoveUser resolves the user's current room via the index and removes the
// participant only when the registered handle is the same connection as conn;
// a stale disconnect racing a newer reconnect is a no-op. On removal the index
// entry is cleared, an emptied room gets its expiration scheduled, and a
// departed host's role moves to the earliest-joined remaining participant.
func (c *Coordinator) RemoveUser(username string, conn Connection) RemoveResult {
	c.mu.RLock()
	roomID, ok := c.userRooms[username]
	c.mu.RUnlock()
	if !ok {
		return RemoveResult{}
	}

	room := c.registry.GetByID(roomID)
	if room == nil {
		return RemoveResult{}
	}

	res := room.removeParticipant(username, conn)
	if !res.Removed {
		return RemoveResult{RoomID: roomID}
	}

	c.mu.Lock()
	if c.userRooms[username] == roomID {
		delete(c.userRooms, username)
	}
	c.mu.Unlock()

	if res.Empty {
		c.scheduler.Schedule(roomID)
	}

	c.logger.Info().
		Str("room_id", roomID).
		Str("username", username).
		Bool("room_empty", res.Empty).
		Str("new_host", res.NewHost).
		Msg("User left room.")

	return RemoveResult{
		Removed: true,
		RoomID:  roomID,
		Empty:   res.Empty,
		NewHost: res.NewHost,
	}
}

// IsHost reports whether username currently hosts roomID.
func (c *Coordinator) IsHost(username, roomID string) bool {
	room := c.registry.GetByID(roomID)
	return room != nil && room.IsHost(username)
}

// RoomOf returns the room id username is currently in.
func (c *Coordinator) RoomOf(username string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	roomID, ok := c.userRooms[username]
	return roomID, ok
}

// CloseRoom marks the room inactive, cancels any pending expiration, clears the
// index entries of all current participants, and removes the room from the
// registry. A missing room is a silent no-op.
func (c *Coordinator) CloseRoom(roomID string) {
	room := c.registry.GetByID(roomID)
	if room == nil {
		return
	}

	c.scheduler.Cancel(roomID)

	usernames := room.deactivate()

	c.mu.Lock()
	for _, username := range usernames {
		if c.userRooms[username] == roomID {
			delete(c.userRooms, username)
		}
	}
	c.mu.Unlock()

	c.registry.Remove(roomID)

	c.logger.Info().
		Str("room_id", roomID).
		Int("participants", len(usernames)).
		Msg("Room closed.")
}

// expireRoom runs when a grace period elapses. The room is removed only when it
// still exists and is still empty at fire time; the emptiness check and the
// deactivation are one atomic step under the room's lock, so a join landing
// just before the check keeps the room alive.
func (c *Coordinator) expireRoom(roomID string) {
	room := c.registry.GetByID(roomID)
	if room == nil {
		return
	}

	if !room.deactivateIfEmpty() {
		return
	}

	c.registry.Remove(roomID)

	c.logger.Info().Str("room_id", roomID).Msg("Room expired and removed.")
}

// Shutdown disarms all pending expirations.
func (c *Coordinator) Shutdown() {
	c.scheduler.Stop()
}
