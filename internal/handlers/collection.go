package handlers

import (
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/sse"
	"github.com/dimitrije/ingressearch-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type CollectionHandler struct {
	collectionService CollectionServiceInterface
	events            EventPublisher
}

func NewCollectionHandler(collectionService CollectionServiceInterface, events EventPublisher) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService, events: events}
}

func (h *CollectionHandler) Create(c *drift.Context) {
	var req dto.CreateCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "failed to create collection")
		return
	}

	_ = c.JSON(201, toCollectionResponse(collection))
}

func (h *CollectionHandler) List(c *drift.Context) {
	collections, err := h.collectionService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to get collections")
		return
	}

	response := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		response[i] = toCollectionResponse(&collections[i])
	}

	_ = c.JSON(200, response)
}

func (h *CollectionHandler) Get(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	collection, err := h.collectionService.Get(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, err, "failed to get collection")
		return
	}

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) Rename(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	var req dto.RenameCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	collection, err := h.collectionService.Rename(c.Request.Context(), collectionID, req.Name)
	if err != nil {
		respondError(c, err, "failed to rename collection")
		return
	}

	h.events.Publish(collection.ID, sse.CollectionRenamed, sse.CollectionData{Name: collection.Name})

	_ = c.JSON(200, toCollectionResponse(collection))
}

func (h *CollectionHandler) Delete(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	if err := h.collectionService.Delete(c.Request.Context(), collectionID); err != nil {
		respondError(c, err, "failed to delete collection")
		return
	}

	h.events.Publish(collectionID, sse.CollectionDeleted, nil)

	_ = c.JSON(200, map[string]string{"message": "collection deleted"})
}

func toCollectionResponse(collection *models.Collection) dto.CollectionResponse {
	return dto.CollectionResponse{
		ID:        collection.ID,
		Name:      collection.Name,
		CreatedAt: collection.CreatedAt,
		UpdatedAt: collection.UpdatedAt,
	}
}
