package dto

import (
	"time"

	"github.com/dimitrije/ingressearch-api/internal/query"
)

type CreateSavedSearchRequest struct {
	Name  string      `json:"name"`
	Query query.Query `json:"query"`
}

// UpdateSavedSearchRequest changes the query, the name, or both. Version,
// when present, must match the stored version.
type UpdateSavedSearchRequest struct {
	Name    *string      `json:"name,omitempty"`
	Query   *query.Query `json:"query,omitempty"`
	Version *int         `json:"version,omitempty"`
}

type SavedSearchResponse struct {
	ID           int64       `json:"id"`
	CollectionID int64       `json:"collection_id"`
	Name         string      `json:"name"`
	Query        query.Query `json:"query"`
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}

type SearchResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}
