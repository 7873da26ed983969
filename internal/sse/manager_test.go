package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()

	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	return m, cancel
}

func waitForEvent(t *testing.T, ch chan Event) Event {
	t.Helper()

	select {
	case event := <-ch:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_UserTargetedDelivery(t *testing.T) {
	m, cancel := setupTestManager(t)
	defer cancel()

	alice, err := m.Connect("usr-alice")
	require.NoError(t, err)
	bob, err := m.Connect("usr-bob")
	require.NoError(t, err)

	m.Emit(NewLevelUpEvent("usr-alice", 2, 20))

	event := waitForEvent(t, alice.EventChan)
	assert.Equal(t, EventLevelUp, event.Type)

	select {
	case leaked := <-bob.EventChan:
		t.Fatalf("event for alice delivered to bob: %v", leaked.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestManager_BroadcastReachesAll(t *testing.T) {
	m, cancel := setupTestManager(t)
	defer cancel()

	alice, err := m.Connect("usr-alice")
	require.NoError(t, err)
	bob, err := m.Connect("usr-bob")
	require.NoError(t, err)

	m.Emit(NewHeartbeatEvent())

	assert.Equal(t, EventHeartbeat, waitForEvent(t, alice.EventChan).Type)
	assert.Equal(t, EventHeartbeat, waitForEvent(t, bob.EventChan).Type)
}

func TestManager_DisconnectAndCount(t *testing.T) {
	m, cancel := setupTestManager(t)
	defer cancel()

	client, err := m.Connect("usr-count")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Disconnecting twice is safe.
	m.Disconnect(client.ID)
}

func TestManager_EmitAfterShutdownDropped(t *testing.T) {
	m, cancel := setupTestManager(t)
	defer cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	cancel()
	require.NoError(t, m.Shutdown(ctx))

	// Must not panic on the closed channel.
	m.Emit(NewHeartbeatEvent())
}
