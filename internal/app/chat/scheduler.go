/*
Package chat contains the core logic for ephemeral chat rooms: room lifecycle,
membership, empty-room expiration, chunked-upload reassembly, and broadcast fan-out.

This file defines the Scheduler, which defers and, when still warranted,
executes the removal of empty rooms. One cancellable timer is armed per room;
there is no timer thread pool and no lock shared with the join/broadcast path.
*/
package chat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"driftchat/internal/pkg/logx"
)

// DefaultGracePeriod is the interval an empty room survives before becoming
// eligible for removal.
const DefaultGracePeriod = 5 * time.Minute

// Scheduler arms one deferred removal per empty room. The expire callback is
// invoked outside the scheduler lock and is expected to re-check that removal
// is still warranted.
type Scheduler struct {
	grace  time.Duration
	expire func(roomID string)

	mu      sync.Mutex
	pending map[string]*time.Timer

	logger zerolog.Logger
}

// NewScheduler constructs a Scheduler firing expire after grace. A non-positive
// grace falls back to DefaultGracePeriod.
func NewScheduler(grace time.Duration, expire func(roomID string)) *Scheduler {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	return &Scheduler{
		grace:   grace,
		expire:  expire,
		pending: make(map[string]*time.Timer),
		logger:  logx.Logger().With().Str("component", "scheduler").Logger(),
	}
}

// Schedule arms a deferred removal for roomID. Idempotent: a second call while
// a task is pending does not arm a second timer.
func (s *Scheduler) Schedule(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[roomID]; ok {
		return
	}

	s.pending[roomID] = time.AfterFunc(s.grace, func() { s.fire(roomID) })

	s.logger.Info().
		Str("room_id", roomID).
		Dur("grace", s.grace).
		Msg("Scheduled expiration for empty room.")
}

// Cancel disarms any pending removal for roomID. Safe to call when none exists.
// Cancellation always precedes a new join being admitted, so a fire observing
// its pending record already gone is by construction stale and does nothing.
func (s *Scheduler) Cancel(roomID string) {
	s.mu.Lock()
	timer, ok := s.pending[roomID]
	if ok {
		delete(s.pending, roomID)
		timer.Stop()
	}
	s.mu.Unlock()

	if ok {
		s.logger.Info().Str("room_id", roomID).Msg("Cancelled expiration.")
	}
}

// fire consumes the pending record and runs the expire callback. If Cancel beat
// the timer, the record is gone and the fire is a no-op.
func (s *Scheduler) fire(roomID string) {
	s.mu.Lock()
	_, ok := s.pending[roomID]
	if ok {
		delete(s.pending, roomID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	s.expire(roomID)
}

// Stop disarms every pending removal. Used during shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for roomID, timer := range s.pending {
		timer.Stop()
		delete(s.pending, roomID)
	}
}

// pendingCount reports the number of armed timers.
func (s *Scheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}
