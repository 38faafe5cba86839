package handlers

import (
	"context"
	"encoding/json"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
)

// CollectionServiceInterface defines the methods used by handlers from CollectionService
type CollectionServiceInterface interface {
	Create(ctx context.Context, name string) (*models.Collection, error)
	Get(ctx context.Context, id int64) (*models.Collection, error)
	List(ctx context.Context) ([]models.Collection, error)
	Rename(ctx context.Context, id int64, name string) (*models.Collection, error)
	Delete(ctx context.Context, id int64) error
}

// DocumentServiceInterface defines the methods used by handlers from DocumentService
type DocumentServiceInterface interface {
	Create(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error)
	Get(ctx context.Context, collectionID, id int64) (*models.Document, error)
	Update(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error)
	Delete(ctx context.Context, collectionID, id int64) error
}

// SearchServiceInterface defines the methods used by handlers from SearchService
type SearchServiceInterface interface {
	Search(ctx context.Context, collectionID int64, q query.Query) ([]models.Document, error)
}

// EventPublisher receives change events after a successful write
type EventPublisher interface {
	Publish(collectionID int64, eventType string, data any)
}

// SavedSearchServiceInterface defines the methods used by handlers from SavedSearchService
type SavedSearchServiceInterface interface {
	Create(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error)
	Get(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error)
	List(ctx context.Context, collectionID int64) ([]models.SavedSearch, error)
	Update(ctx context.Context, collectionID, id int64, q query.Query, expectedVersion *int) (*models.SavedSearch, error)
	Rename(ctx context.Context, collectionID, id int64, name string, expectedVersion *int) (*models.SavedSearch, error)
	Delete(ctx context.Context, collectionID, id int64) error
	Run(ctx context.Context, collectionID, id int64) ([]models.Document, error)
}
