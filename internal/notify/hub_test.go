package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uuid.UUID, buffer int) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, buffer),
	}
}

func receiveEvent(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_PublishTargetsOnlyRecipients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := uuid.New()
	bob := uuid.New()
	aliceClient := newTestClient(alice, 8)
	bobClient := newTestClient(bob, 8)
	hub.Register(aliceClient)
	hub.Register(bobClient)

	hub.Publish([]uuid.UUID{alice}, Event{Type: "notification", Data: "hello"})

	event := receiveEvent(t, aliceClient)
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "hello", event.Data)

	select {
	case <-bobClient.Send:
		t.Fatal("bob should not receive alice's event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_PublishReachesAllUserConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	first := newTestClient(userID, 8)
	second := newTestClient(userID, 8)
	hub.Register(first)
	hub.Register(second)

	hub.Publish([]uuid.UUID{userID}, Event{Type: "notification", Data: "ping"})

	assert.Equal(t, "ping", receiveEvent(t, first).Data)
	assert.Equal(t, "ping", receiveEvent(t, second).Data)
}

func TestHub_FullClientBufferDropsEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	client := newTestClient(userID, 1)
	hub.Register(client)

	// The observer's sentinel confirms the hub has processed everything
	// published before it, since events are handled in order.
	observer := newTestClient(uuid.New(), 8)
	hub.Register(observer)

	hub.Publish([]uuid.UUID{userID}, Event{Type: "notification", Data: "first"})
	hub.Publish([]uuid.UUID{userID}, Event{Type: "notification", Data: "second"})
	hub.Publish([]uuid.UUID{observer.UserID}, Event{Type: "notification", Data: "sentinel"})

	assert.Equal(t, "sentinel", receiveEvent(t, observer).Data)

	// Buffer of one held "first"; "second" was dropped without blocking.
	assert.Equal(t, "first", receiveEvent(t, client).Data)

	select {
	case data := <-client.Send:
		t.Fatalf("expected overflow to be dropped, got %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(uuid.New(), 8)
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	assert.Empty(t, hub.ConnectedUsers())
}

func TestHub_ConnectedUsersDedups(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := uuid.New()
	bob := uuid.New()
	hub.Register(newTestClient(alice, 1))
	hub.Register(newTestClient(alice, 1))
	hub.Register(newTestClient(bob, 1))

	require.Eventually(t, func() bool {
		return len(hub.ConnectedUsers()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, hub.ConnectedUsers())
}
