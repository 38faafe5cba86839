package dto

import "time"

type CreateCollectionRequest struct {
	Name string `json:"name"`
}

type RenameCollectionRequest struct {
	Name string `json:"name"`
}

type CollectionResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
