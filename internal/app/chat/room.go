/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Room struct, the in-memory state of one room. A Room is
owned exclusively by the Registry; the Coordinator and Dispatcher only reference
it through the Registry and never hold a private copy. Every composite mutation
runs under the room's own lock, so check-then-act sequences on a single room are
atomic with respect to each other.
*/
package chat

import (
	"sync"
	"time"
)

// Room represents the in-memory state of a single chat room.
type Room struct {
	// ID is the short join code identifying the room. Immutable.
	ID string

	// Name is the display name given at creation. Immutable.
	Name string

	// CreatedAt records when the room was created. Immutable.
	CreatedAt time.Time

	// mu guards every field below.
	mu sync.RWMutex

	// host is the username with authority to close the room. Empty while the
	// room has no participants.
	host string

	// active is cleared exactly once, when the room is closed or expired.
	// There is no way back to active.
	active bool

	// participants maps each present username to its connection handle.
	participants map[string]Connection

	// identities maps each username to the reconnect identity recorded on its
	// first registration.
	identities map[string]string

	// joinOrder lists present usernames oldest-first. Host transfer picks the
	// earliest-joined remaining participant so the outcome is deterministic.
	joinOrder []string
}

func newRoom(id, name, host string) *Room {
	return &Room{
		ID:           id,
		Name:         name,
		CreatedAt:    time.Now(),
		host:         host,
		active:       true,
		participants: make(map[string]Connection),
		identities:   make(map[string]string),
	}
}

// Active reports whether the room still admits traffic.
func (r *Room) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Host returns the current host username.
func (r *Room) Host() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.host
}

// IsHost reports whether username currently holds the host role.
func (r *Room) IsHost(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.host != "" && r.host == username
}

// Empty reports whether the room has no participants.
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.participants) == 0
}

// Participants returns the present usernames in join order.
func (r *Room) Participants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.joinOrder))
	copy(names, r.joinOrder)
	return names
}

// Connections returns a snapshot of the registered handles in join order.
func (r *Room) Connections() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Connection, 0, len(r.joinOrder))
	for _, username := range r.joinOrder {
		if conn, ok := r.participants[username]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// canAdmit is the admission rule: a free username is always admitted; a taken
// username is admitted only when its stored reconnect identity is unset or
// matches clientID. Callers must hold r.mu.
func (r *Room) canAdmit(username, clientID string) bool {
	if _, taken := r.participants[username]; !taken {
		return true
	}

	stored := r.identities[username]
	return stored == "" || stored == clientID
}

// CanAdmit reports whether username may join or reconnect with clientID.
func (r *Room) CanAdmit(username, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.canAdmit(username, clientID)
}

// addParticipant registers conn under username, overwriting any previous handle
// for that username (this is how a reconnect replaces a stale handle). The
// reconnect identity is recorded on first registration only. The admission rule
// is re-checked under the lock, so two racing joins for the same username
// cannot both get in. Returns false when the room is inactive or admission is
// denied.
func (r *Room) addParticipant(username string, conn Connection, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || !r.canAdmit(username, clientID) {
		return false
	}

	if _, present := r.participants[username]; !present {
		r.joinOrder = append(r.joinOrder, username)
	}
	r.participants[username] = conn

	if _, recorded := r.identities[username]; !recorded && clientID != "" {
		r.identities[username] = clientID
	}

	// The creator's name is recorded as host before anyone joins; if the host
	// slot points at nobody present, the joiner takes it.
	if _, present := r.participants[r.host]; !present {
		r.host = username
	}

	return true
}

// removeResult describes the outcome of removeParticipant.
type removeResult struct {
	// Removed is false when the registered handle did not match, i.e. a stale
	// disconnect raced a newer reconnect. Membership is then unchanged.
	Removed bool

	// Empty reports whether the removal left the room without participants.
	Empty bool

	// NewHost is set when the removed user held the host role and it was
	// transferred to a remaining participant.
	NewHost string
}

// removeParticipant removes username only when the registered handle is the
// same connection as conn. On removal of the host from a non-empty room the
// role moves to the earliest-joined remaining participant.
func (r *Room) removeParticipant(username string, conn Connection) removeResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.participants[username]
	if !ok || conn == nil || current.ID() != conn.ID() {
		return removeResult{}
	}

	delete(r.participants, username)
	delete(r.identities, username)
	for i, name := range r.joinOrder {
		if name == username {
			r.joinOrder = append(r.joinOrder[:i], r.joinOrder[i+1:]...)
			break
		}
	}

	res := removeResult{Removed: true, Empty: len(r.participants) == 0}

	if r.host == username {
		if res.Empty {
			r.host = ""
		} else {
			r.host = r.joinOrder[0]
			res.NewHost = r.host
		}
	}

	return res
}

// deactivate marks the room closed and returns the usernames that were present,
// so the caller can clear their index entries.
func (r *Room) deactivate() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false

	names := make([]string, len(r.joinOrder))
	copy(names, r.joinOrder)
	return names
}

// deactivateIfEmpty closes the room only when it is still active and has no
// participants. Serializing on the room lock is what makes the expiration
// re-check safe against a concurrent join.
func (r *Room) deactivateIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || len(r.participants) > 0 {
		return false
	}

	r.active = false
	return true
}
