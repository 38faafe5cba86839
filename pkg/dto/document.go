package dto

import (
	"encoding/json"
	"time"
)

type DocumentRequest struct {
	Data json.RawMessage `json:"data"`
}

type DocumentResponse struct {
	ID           int64           `json:"id"`
	CollectionID int64           `json:"collection_id"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}
