package handlers

import (
	"github.com/dimitrije/ingressearch-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type EventsHandler struct {
	hub               *sse.Hub
	collectionService CollectionServiceInterface
}

func NewEventsHandler(hub *sse.Hub, collectionService CollectionServiceInterface) *EventsHandler {
	return &EventsHandler{
		hub:               hub,
		collectionService: collectionService,
	}
}

// Connect streams the collection's change events until the client goes away.
func (h *EventsHandler) Connect(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.collectionService.Get(ctx, collectionID); err != nil {
		respondError(c, err, "failed to get collection")
		return
	}

	sseCtx := c.SSE()

	client := &sse.Client{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		Send:         make(chan []byte, 64),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": client.ID,
	}, "system", ""); err != nil {
		return
	}

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
