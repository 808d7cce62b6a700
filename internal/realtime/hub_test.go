package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string, buffer int) *Client {
	return &Client{ID: id, send: make(chan WSMessage, buffer)}
}

func TestBroadcastDeliversToAllClients(t *testing.T) {
	hub := NewHub(nil)
	a := newTestClient("a", 4)
	b := newTestClient("b", 4)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast("session_started", map[string]string{"id": "s1"})

	require.Len(t, a.send, 1)
	require.Len(t, b.send, 1)
	msg := <-a.send
	assert.Equal(t, "session_started", msg.Event)
	assert.JSONEq(t, `{"id":"s1"}`, string(msg.Data))
	assert.Equal(t, 2, hub.ClientCount())
}

func TestBroadcastEvictsStalledClient(t *testing.T) {
	hub := NewHub(nil)
	stalled := newTestClient("stalled", 1)
	healthy := newTestClient("healthy", 4)
	hub.Register(stalled)
	hub.Register(healthy)

	// first event fills the stalled client's buffer, second overflows it
	hub.Broadcast("ranking_updated", map[string]int{"n": 1})
	hub.Broadcast("ranking_updated", map[string]int{"n": 2})

	assert.Equal(t, 1, hub.ClientCount())
	assert.Len(t, healthy.send, 2)

	// the evicted client keeps its buffered event, then sees a closed channel
	<-stalled.send
	_, open := <-stalled.send
	assert.False(t, open, "evicted client's send channel should be closed")

	// later broadcasts no longer reach the evicted client
	hub.Broadcast("ranking_updated", map[string]int{"n": 3})
	assert.Len(t, healthy.send, 3)
}

func TestUnregisterAfterEvictionIsHarmless(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient("c", 1)
	hub.Register(c)

	hub.Broadcast("session_ended", "x")
	hub.Broadcast("session_ended", "y") // evicts

	require.Equal(t, 0, hub.ClientCount())
	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}
