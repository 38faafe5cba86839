// Package store persists collections, documents and saved searches. It has
// no query semantics of its own: searches read whole collections through
// ListDocuments and evaluate them in memory.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("store unavailable")
)

// Store is the storage capability the services are built on.
//
// ListDocuments returns the documents of one collection in ascending id
// order, taken from a single consistent snapshot. UpdateSavedSearch is a
// compare-and-swap: it fails with ErrConflict unless the stored version
// equals expectedVersion.
type Store interface {
	CreateCollection(ctx context.Context, name string) (*models.Collection, error)
	GetCollection(ctx context.Context, id int64) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	RenameCollection(ctx context.Context, id int64, name string) (*models.Collection, error)
	DeleteCollection(ctx context.Context, id int64) error

	CreateDocument(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error)
	GetDocument(ctx context.Context, collectionID, id int64) (*models.Document, error)
	ListDocuments(ctx context.Context, collectionID int64) ([]models.Document, error)
	UpdateDocument(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error)
	DeleteDocument(ctx context.Context, collectionID, id int64) error

	CreateSavedSearch(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error)
	GetSavedSearch(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error)
	ListSavedSearches(ctx context.Context, collectionID int64) ([]models.SavedSearch, error)
	UpdateSavedSearch(ctx context.Context, collectionID, id int64, name string, q query.Query, expectedVersion int) (*models.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, collectionID, id int64) error
}
