package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleIsIdempotent(t *testing.T) {
	req := require.New(t)

	var mu sync.Mutex
	fired := 0

	s := NewScheduler(20*time.Millisecond, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	defer s.Stop()

	s.Schedule("ROOM0001")
	s.Schedule("ROOM0001")
	s.Schedule("ROOM0001")
	req.Equal(1, s.pendingCount())

	req.True(waitFor(time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired == 1
	}), "expiration must fire exactly once")

	req.Zero(s.pendingCount())
}

func TestCancelPreventsFire(t *testing.T) {
	req := require.New(t)

	var mu sync.Mutex
	fired := 0

	s := NewScheduler(20*time.Millisecond, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	defer s.Stop()

	s.Schedule("ROOM0001")
	s.Cancel("ROOM0001")
	req.Zero(s.pendingCount())

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Zero(fired, "cancelled expiration must never fire")
}

func TestCancelWithoutPendingTaskIsSafe(t *testing.T) {
	s := NewScheduler(time.Minute, func(string) {})
	defer s.Stop()

	s.Cancel("ROOM0001")
}

func TestEmptyRoomRemovedOnlyAfterGracePeriod(t *testing.T) {
	req := require.New(t)

	registry := NewRegistry()
	c := NewCoordinator(registry, 60*time.Millisecond)
	defer c.Shutdown()

	room, err := c.CreateRoom("My Room", "alice")
	req.NoError(err)

	conn := newFakeConn("conn-a")
	req.True(c.AddUser(room.ID, "alice", conn, "c1"))

	res := c.RemoveUser("alice", conn)
	req.True(res.Removed)
	req.True(res.Empty)

	// Not removed immediately.
	req.True(registry.Exists(room.ID))

	req.True(waitFor(time.Second, func() bool {
		return !registry.Exists(room.ID)
	}), "empty room must be removed once the grace period elapses")
	req.Nil(registry.GetByID(room.ID))
}

func TestRejoinDuringGracePeriodPreventsRemoval(t *testing.T) {
	req := require.New(t)

	registry := NewRegistry()
	c := NewCoordinator(registry, 60*time.Millisecond)
	defer c.Shutdown()

	room, err := c.CreateRoom("My Room", "alice")
	req.NoError(err)

	conn := newFakeConn("conn-a")
	req.True(c.AddUser(room.ID, "alice", conn, "c1"))
	req.True(c.RemoveUser("alice", conn).Removed)

	// Rejoin within the window cancels the pending removal.
	req.True(c.AddUser(room.ID, "alice", newFakeConn("conn-b"), "c1"))

	time.Sleep(150 * time.Millisecond)

	req.True(registry.Exists(room.ID), "room must survive the grace period after a rejoin")
	req.Equal([]string{"alice"}, room.Participants())
}

func TestNeverJoinedRoomExpires(t *testing.T) {
	req := require.New(t)

	registry := NewRegistry()
	c := NewCoordinator(registry, 60*time.Millisecond)
	defer c.Shutdown()

	room, err := c.CreateRoom("My Room", "alice")
	req.NoError(err)

	req.True(waitFor(time.Second, func() bool {
		return !registry.Exists(room.ID)
	}), "a room nobody ever joined must be reclaimed")
}

func TestExpireSkipsRepopulatedRoom(t *testing.T) {
	req := require.New(t)

	registry := NewRegistry()
	c := NewCoordinator(registry, time.Minute)
	defer c.Shutdown()

	room, err := c.CreateRoom("My Room", "alice")
	req.NoError(err)
	req.True(c.AddUser(room.ID, "alice", newFakeConn("conn-a"), "c1"))

	// A stale fire must observe the participant and leave the room alone.
	c.expireRoom(room.ID)

	req.True(registry.Exists(room.ID))
	req.True(room.Active())
}
