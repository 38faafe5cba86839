package handlers

import (
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/dimitrije/ingressearch-api/internal/sse"
	"github.com/dimitrije/ingressearch-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type SearchHandler struct {
	searchService      SearchServiceInterface
	savedSearchService SavedSearchServiceInterface
	events             EventPublisher
}

func NewSearchHandler(searchService SearchServiceInterface, savedSearchService SavedSearchServiceInterface, events EventPublisher) *SearchHandler {
	return &SearchHandler{
		searchService:      searchService,
		savedSearchService: savedSearchService,
		events:             events,
	}
}

// Search runs the query in the request body against the collection.
func (h *SearchHandler) Search(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	var q query.Query
	if err := c.BindJSON(&q); err != nil {
		c.BadRequest("invalid query: " + err.Error())
		return
	}

	docs, err := h.searchService.Search(c.Request.Context(), collectionID, q)
	if err != nil {
		respondError(c, err, "failed to run search")
		return
	}

	_ = c.JSON(200, toSearchResponse(docs))
}

func (h *SearchHandler) CreateSaved(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	var req dto.CreateSavedSearchRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	search, err := h.savedSearchService.Create(c.Request.Context(), collectionID, req.Name, req.Query)
	if err != nil {
		respondError(c, err, "failed to create saved search")
		return
	}
	h.publishSaved(sse.SavedSearchCreated, search)

	_ = c.JSON(201, toSavedSearchResponse(search))
}

func (h *SearchHandler) ListSaved(c *drift.Context) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return
	}

	searches, err := h.savedSearchService.List(c.Request.Context(), collectionID)
	if err != nil {
		respondError(c, err, "failed to get saved searches")
		return
	}

	response := make([]dto.SavedSearchResponse, len(searches))
	for i := range searches {
		response[i] = toSavedSearchResponse(&searches[i])
	}

	_ = c.JSON(200, response)
}

func (h *SearchHandler) GetSaved(c *drift.Context) {
	collectionID, searchID, ok := savedSearchParams(c)
	if !ok {
		return
	}

	search, err := h.savedSearchService.Get(c.Request.Context(), collectionID, searchID)
	if err != nil {
		respondError(c, err, "failed to get saved search")
		return
	}

	_ = c.JSON(200, toSavedSearchResponse(search))
}

// UpdateSaved applies a rename, a query replacement, or both. A supplied
// version guards the first change; the second is chained on its result.
func (h *SearchHandler) UpdateSaved(c *drift.Context) {
	collectionID, searchID, ok := savedSearchParams(c)
	if !ok {
		return
	}

	var req dto.UpdateSavedSearchRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == nil && req.Query == nil {
		c.BadRequest("name or query is required")
		return
	}

	ctx := c.Request.Context()
	expected := req.Version

	var (
		search *models.SavedSearch
		err    error
	)
	if req.Name != nil {
		search, err = h.savedSearchService.Rename(ctx, collectionID, searchID, *req.Name, expected)
		if err != nil {
			respondError(c, err, "failed to update saved search")
			return
		}
		h.publishSaved(sse.SavedSearchUpdated, search)
		expected = &search.Version
	}
	if req.Query != nil {
		search, err = h.savedSearchService.Update(ctx, collectionID, searchID, *req.Query, expected)
		if err != nil {
			respondError(c, err, "failed to update saved search")
			return
		}
		h.publishSaved(sse.SavedSearchUpdated, search)
	}

	_ = c.JSON(200, toSavedSearchResponse(search))
}

func (h *SearchHandler) DeleteSaved(c *drift.Context) {
	collectionID, searchID, ok := savedSearchParams(c)
	if !ok {
		return
	}

	if err := h.savedSearchService.Delete(c.Request.Context(), collectionID, searchID); err != nil {
		respondError(c, err, "failed to delete saved search")
		return
	}
	h.events.Publish(collectionID, sse.SavedSearchDeleted, sse.SavedSearchData{SearchID: searchID})

	_ = c.JSON(200, map[string]string{"message": "saved search deleted"})
}

func (h *SearchHandler) RunSaved(c *drift.Context) {
	collectionID, searchID, ok := savedSearchParams(c)
	if !ok {
		return
	}

	docs, err := h.savedSearchService.Run(c.Request.Context(), collectionID, searchID)
	if err != nil {
		respondError(c, err, "failed to run saved search")
		return
	}

	_ = c.JSON(200, toSearchResponse(docs))
}

func (h *SearchHandler) publishSaved(eventType string, search *models.SavedSearch) {
	h.events.Publish(search.CollectionID, eventType, sse.SavedSearchData{
		SearchID: search.ID,
		Name:     search.Name,
		Version:  search.Version,
	})
}

func savedSearchParams(c *drift.Context) (int64, int64, bool) {
	collectionID, ok := paramID(c, "collectionId")
	if !ok {
		c.BadRequest("invalid collection id")
		return 0, 0, false
	}
	searchID, ok := paramID(c, "searchId")
	if !ok {
		c.BadRequest("invalid saved search id")
		return 0, 0, false
	}
	return collectionID, searchID, true
}

func toSavedSearchResponse(search *models.SavedSearch) dto.SavedSearchResponse {
	return dto.SavedSearchResponse{
		ID:           search.ID,
		CollectionID: search.CollectionID,
		Name:         search.Name,
		Query:        search.Query,
		Version:      search.Version,
		CreatedAt:    search.CreatedAt,
		UpdatedAt:    search.UpdatedAt,
	}
}

func toSearchResponse(docs []models.Document) dto.SearchResponse {
	return dto.SearchResponse{
		Documents: toDocumentResponses(docs),
		Count:     len(docs),
	}
}
