package handlers

import (
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/sse"
	"github.com/dimitrije/ingressearch-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type DocumentHandler struct {
	documentService DocumentServiceInterface
	events          EventPublisher
}

func NewDocumentHandler(documentService DocumentServiceInterface, events EventPublisher) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, events: events}
}

func (h *DocumentHandler) Create(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	var req dto.DocumentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), collectionID, req.Data)
	if err != nil {
		respondError(c, err, "failed to create document")
		return
	}
	h.events.Publish(collectionID, sse.DocumentCreated, sse.DocumentData{DocumentID: doc.ID})

	_ = c.JSON(201, toDocumentResponse(doc))
}

func (h *DocumentHandler) Get(c *drift.Context) {
	collectionID, documentID, ok := documentParams(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), collectionID, documentID)
	if err != nil {
		respondError(c, err, "failed to get document")
		return
	}

	_ = c.JSON(200, toDocumentResponse(doc))
}

// Update replaces the document's data.
func (h *DocumentHandler) Update(c *drift.Context) {
	collectionID, documentID, ok := documentParams(c)
	if !ok {
		return
	}

	var req dto.DocumentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), collectionID, documentID, req.Data)
	if err != nil {
		respondError(c, err, "failed to update document")
		return
	}
	h.events.Publish(collectionID, sse.DocumentUpdated, sse.DocumentData{DocumentID: doc.ID})

	_ = c.JSON(200, toDocumentResponse(doc))
}

func (h *DocumentHandler) Delete(c *drift.Context) {
	collectionID, documentID, ok := documentParams(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), collectionID, documentID); err != nil {
		respondError(c, err, "failed to delete document")
		return
	}
	h.events.Publish(collectionID, sse.DocumentDeleted, sse.DocumentData{DocumentID: documentID})

	_ = c.JSON(200, map[string]string{"message": "document deleted"})
}

func documentParams(c *drift.Context) (int64, int64, bool) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return 0, 0, false
	}
	documentID, ok := paramID(c, "documentId")
	if !ok {
		c.BadRequest("invalid document id")
		return 0, 0, false
	}
	return collectionID, documentID, true
}

func toDocumentResponse(doc *models.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:           doc.ID,
		CollectionID: doc.CollectionID,
		Data:         doc.Data,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func toDocumentResponses(docs []models.Document) []dto.DocumentResponse {
	response := make([]dto.DocumentResponse, len(docs))
	for i := range docs {
		response[i] = toDocumentResponse(&docs[i])
	}
	return response
}
