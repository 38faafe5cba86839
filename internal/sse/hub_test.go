package sse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newClient(id string, collectionID int64) *Client {
	return &Client{ID: id, CollectionID: collectionID, Send: make(chan []byte, 8)}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case msg, ok := <-client.Send:
		require.True(t, ok, "send channel closed")
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := startHub(t)
	client := newClient("client-1", 3)

	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := startHub(t)
	client := newClient("ghost", 3)

	hub.Unregister(client)
	hub.Register(newClient("client-1", 3))

	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_PublishReachesOnlyThatCollection(t *testing.T) {
	hub := startHub(t)
	people := newClient("people", 1)
	places := newClient("places", 2)
	hub.Register(people)
	hub.Register(places)

	hub.Publish(1, DocumentCreated, DocumentData{DocumentID: 9})

	event := receive(t, people)
	assert.Equal(t, DocumentCreated, event.Type)
	assert.Equal(t, int64(1), event.CollectionID)
	assert.Equal(t, map[string]any{"document_id": float64(9)}, event.Data)

	select {
	case msg := <-places.Send:
		t.Fatalf("unexpected event for other collection: %s", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_FullClientIsSkipped(t *testing.T) {
	hub := startHub(t)
	slow := &Client{ID: "slow", CollectionID: 1, Send: make(chan []byte)}
	fast := newClient("fast", 1)
	hub.Register(slow)
	hub.Register(fast)

	hub.Publish(1, SavedSearchDeleted, SavedSearchData{SearchID: 4})

	event := receive(t, fast)
	assert.Equal(t, SavedSearchDeleted, event.Type)
}

func TestHub_PublishDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for range cap(hub.broadcast) + 10 {
			hub.Publish(1, DocumentDeleted, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newClient("client-1", 1)
	hub.Register(client)
	cancel()
	<-stopped

	_, ok := <-client.Send
	assert.False(t, ok)
	assert.Zero(t, hub.ClientCount(1))
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	client := newClient("late", 1)
	hub.Register(client)
	hub.Unregister(client)

	_, ok := <-client.Send
	assert.False(t, ok)
}
