package models

import (
	"time"

	"github.com/dimitrije/ingressearch-api/internal/query"
)

// SavedSearch is a named query stored with its collection.
type SavedSearch struct {
	ID           int64       `json:"id"`
	CollectionID int64       `json:"collection_id"`
	Name         string      `json:"name"`
	Query        query.Query `json:"query"`
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
}
