package models

import (
	"encoding/json"
	"time"
)

// Document is a schemaless JSON object stored in a collection.
type Document struct {
	ID           int64           `json:"id"`
	CollectionID int64           `json:"collection_id"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}
