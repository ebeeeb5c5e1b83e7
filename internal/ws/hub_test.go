package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasu1712/scenyx-remote/internal/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, c *Client) models.Snapshot {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var snap models.Snapshot
		require.NoError(t, json.Unmarshal(data, &snap))
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return models.Snapshot{}
	}
}

func TestHubBroadcastsToAllViewers(t *testing.T) {
	hub, _ := startHub(t)
	a := &Client{ID: "a", Send: make(chan []byte, 4)}
	b := &Client{ID: "b", Send: make(chan []byte, 4)}
	require.True(t, hub.Join(a))
	require.True(t, hub.Join(b))

	hub.Publish(models.Snapshot{State: models.StateConnected, CurrentScene: "A"})

	assert.Equal(t, "A", receive(t, a).CurrentScene)
	assert.Equal(t, "A", receive(t, b).CurrentScene)
	assert.Equal(t, 2, hub.Count())
}

func TestHubSendsLatestSnapshotOnJoin(t *testing.T) {
	hub, _ := startHub(t)
	hub.Publish(models.Snapshot{State: models.StateConnected, CurrentScene: "B"})

	late := &Client{ID: "late", Send: make(chan []byte, 4)}
	require.True(t, hub.Join(late))

	assert.Equal(t, "B", receive(t, late).CurrentScene)
}

func TestHubLeaveClosesSend(t *testing.T) {
	hub, _ := startHub(t)
	c := &Client{ID: "c", Send: make(chan []byte, 1)}
	require.True(t, hub.Join(c))

	hub.Leave(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Zero(t, hub.Count())
}

func TestHubDropsSlowViewer(t *testing.T) {
	hub, _ := startHub(t)
	slow := &Client{ID: "slow", Send: make(chan []byte)}
	require.True(t, hub.Join(slow))

	hub.Publish(models.Snapshot{State: models.StateConnecting})

	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHubStopsWithContext(t *testing.T) {
	hub, cancel := startHub(t)
	c := &Client{ID: "c", Send: make(chan []byte, 1)}
	require.True(t, hub.Join(c))

	cancel()

	_, ok := <-c.Send
	assert.False(t, ok)
	require.Eventually(t, func() bool { return !hub.Join(&Client{ID: "x", Send: make(chan []byte, 1)}) }, time.Second, 5*time.Millisecond)
	hub.Publish(models.Snapshot{})
	hub.Leave(c)
}
