package sse

import (
	"context"
	"encoding/json"
	"sync"
)

// Event types published after a successful write.
const (
	CollectionRenamed  = "collection_renamed"
	CollectionDeleted  = "collection_deleted"
	DocumentCreated    = "document_created"
	DocumentUpdated    = "document_updated"
	DocumentDeleted    = "document_deleted"
	SavedSearchCreated = "saved_search_created"
	SavedSearchUpdated = "saved_search_updated"
	SavedSearchDeleted = "saved_search_deleted"
)

type Event struct {
	Type         string `json:"type"`
	CollectionID int64  `json:"collection_id"`
	Data         any    `json:"data,omitempty"`
}

type DocumentData struct {
	DocumentID int64 `json:"document_id"`
}

type SavedSearchData struct {
	SearchID int64  `json:"search_id"`
	Name     string `json:"name,omitempty"`
	Version  int    `json:"version,omitempty"`
}

type CollectionData struct {
	Name string `json:"name,omitempty"`
}

// Client receives the encoded events of one collection on Send.
type Client struct {
	ID           string
	CollectionID int64
	Send         chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches events until ctx is done, then closes every client.
// It must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if client.CollectionID != event.CollectionID {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds client. On a stopped hub the client's Send is closed
// straight away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for the collection's subscribers. It never
// blocks a writer: when the queue is full the event is dropped.
func (h *Hub) Publish(collectionID int64, eventType string, data any) {
	select {
	case h.broadcast <- Event{Type: eventType, CollectionID: collectionID, Data: data}:
	default:
	}
}

// ClientCount reports how many clients are subscribed to collectionID.
func (h *Hub) ClientCount(collectionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.clients {
		if client.CollectionID == collectionID {
			n++
		}
	}
	return n
}
