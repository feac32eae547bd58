package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pokerhall/pokerhall/internal/wire"
)

func recvOrTimeout(t *testing.T, sub *Subscription) wire.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-sub.Recv():
		require.True(t, ok, "subscription closed early")
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return wire.ServerMessage{}
	}
}

func TestBroadcasterFanOut(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster(4)
	first := b.Subscribe()
	second := b.Subscribe()
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(wire.LobbyError("one"))
	b.Publish(wire.LobbyError("two"))

	for _, sub := range []*Subscription{first, second} {
		require.Equal(t, "one", recvOrTimeout(t, sub).Payload)
		require.Equal(t, "two", recvOrTimeout(t, sub).Payload)
	}
}

func TestBroadcasterLateSubscriberMissesHistory(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster(4)
	early := b.Subscribe()
	b.Publish(wire.LobbyError("one"))

	late := b.Subscribe()
	b.Publish(wire.LobbyError("two"))

	require.Equal(t, "one", recvOrTimeout(t, early).Payload)
	require.Equal(t, "two", recvOrTimeout(t, early).Payload)
	require.Equal(t, "two", recvOrTimeout(t, late).Payload)
}

func TestBroadcasterDropsOldestWhenFull(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster(2)
	sub := b.Subscribe()

	// A stalled subscriber keeps only the newest messages.
	b.Publish(wire.LobbyError("one"))
	b.Publish(wire.LobbyError("two"))
	b.Publish(wire.LobbyError("three"))

	require.Equal(t, "two", recvOrTimeout(t, sub).Payload)
	require.Equal(t, "three", recvOrTimeout(t, sub).Payload)
	select {
	case msg := <-sub.Recv():
		t.Fatalf("unexpected extra message %v", msg.Payload)
	default:
	}
}

func TestSubscriptionClose(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster(2)
	sub := b.Subscribe()
	keep := b.Subscribe()

	sub.Close()
	sub.Close() // idempotent

	_, ok := <-sub.Recv()
	require.False(t, ok)
	require.Equal(t, 1, b.SubscriberCount())

	// Publishing past a closed subscription still reaches the others.
	b.Publish(wire.LobbyError("after"))
	require.Equal(t, "after", recvOrTimeout(t, keep).Payload)
}

func TestBroadcasterCloseAll(t *testing.T) {
	t.Parallel()
	b := NewBroadcaster(2)
	first := b.Subscribe()
	second := b.Subscribe()

	b.CloseAll()
	_, ok := <-first.Recv()
	require.False(t, ok)
	_, ok = <-second.Recv()
	require.False(t, ok)
	require.Equal(t, 0, b.SubscriberCount())
}
