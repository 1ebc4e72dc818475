package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records written frames in place of a real websocket.
type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var e Event
		require.NoError(t, json.Unmarshal(f, &e))
		out = append(out, e)
	}
	return out
}

func TestHubPushToUser(t *testing.T) {
	hub := NewHub()
	a1, a2, b := &fakeConn{}, &fakeConn{}, &fakeConn{}

	hub.register("conn-a1", a1)
	hub.register("conn-a2", a2)
	hub.register("conn-b", b)
	hub.Join("conn-a1", "alice")
	hub.Join("conn-a2", "alice")
	hub.Join("conn-b", "bob")

	hub.PushToUser("alice", Event{Type: "notification", Message: "hi"})

	require.Len(t, a1.events(t), 1, "every connection of the user receives the event")
	require.Len(t, a2.events(t), 1)
	assert.Equal(t, "hi", a1.events(t)[0].Message)
	assert.Empty(t, b.events(t), "other users receive nothing")
}

func TestHubPushToOfflineUserIsDropped(t *testing.T) {
	hub := NewHub()
	// No connections at all; must not panic or block.
	hub.PushToUser("ghost", Event{Type: "notification"})

	conn := &fakeConn{}
	hub.register("conn-1", conn)
	// Registered but not joined: a user push still misses it.
	hub.PushToUser("ghost", Event{Type: "notification"})
	assert.Empty(t, conn.events(t))
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub()
	joined, lurker := &fakeConn{}, &fakeConn{}

	hub.register("conn-1", joined)
	hub.Join("conn-1", "alice")
	hub.register("conn-2", lurker)

	hub.BroadcastAll(Event{Type: "food_shared", Message: "new food"})

	require.Len(t, joined.events(t), 1)
	require.Len(t, lurker.events(t), 1, "broadcast reaches connections outside any channel")
}

func TestHubRejoinMovesConnection(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}

	hub.register("conn-1", conn)
	hub.Join("conn-1", "alice")
	hub.Join("conn-1", "bob")

	assert.False(t, hub.IsOnline("alice"), "old channel membership is gone")
	assert.True(t, hub.IsOnline("bob"))

	hub.PushToUser("alice", Event{Type: "notification"})
	assert.Empty(t, conn.events(t))

	hub.PushToUser("bob", Event{Type: "notification"})
	assert.Len(t, conn.events(t), 1)
}

func TestHubUnregisterCleansUp(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}

	hub.register("conn-1", conn)
	hub.Join("conn-1", "alice")
	require.True(t, hub.IsOnline("alice"))

	hub.Unregister("conn-1")

	assert.True(t, conn.closed)
	assert.False(t, hub.IsOnline("alice"))

	hub.PushToUser("alice", Event{Type: "notification"})
	assert.Empty(t, conn.events(t))
}

func TestHubDropsDeadConnection(t *testing.T) {
	hub := NewHub()
	dead := &fakeConn{writeErr: errors.New("broken pipe")}
	live := &fakeConn{}

	hub.register("conn-dead", dead)
	hub.register("conn-live", live)
	hub.Join("conn-dead", "alice")
	hub.Join("conn-live", "alice")

	hub.PushToUser("alice", Event{Type: "notification"})

	require.Len(t, live.events(t), 1)
	assert.True(t, dead.closed, "failed connection is closed and removed")

	hub.PushToUser("alice", Event{Type: "notification"})
	assert.Len(t, live.events(t), 2)
}
