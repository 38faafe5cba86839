package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

// Fixtures creates test records through any Store.
type Fixtures struct {
	store   store.Store
	counter int
}

func NewFixtures(st store.Store) *Fixtures {
	return &Fixtures{store: st}
}

// CreateCollection creates a collection with a unique generated name unless
// one is given.
func (f *Fixtures) CreateCollection(t *testing.T, name ...string) *models.Collection {
	t.Helper()
	f.counter++

	n := fmt.Sprintf("collection-%d", f.counter)
	if len(name) > 0 {
		n = name[0]
	}

	c, err := f.store.CreateCollection(context.Background(), n)
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	return c
}

// CreateDocuments stores each JSON text as a document of collectionID, in
// order.
func (f *Fixtures) CreateDocuments(t *testing.T, collectionID int64, data ...string) []*models.Document {
	t.Helper()

	docs := make([]*models.Document, 0, len(data))
	for _, d := range data {
		doc, err := f.store.CreateDocument(context.Background(), collectionID, json.RawMessage(d))
		if err != nil {
			t.Fatalf("failed to create document: %v", err)
		}
		docs = append(docs, doc)
	}
	return docs
}

// CreateSavedSearch stores q under a generated name.
func (f *Fixtures) CreateSavedSearch(t *testing.T, collectionID int64, q query.Query) *models.SavedSearch {
	t.Helper()
	f.counter++

	search, err := f.store.CreateSavedSearch(context.Background(), collectionID, fmt.Sprintf("search-%d", f.counter), q)
	if err != nil {
		t.Fatalf("failed to create saved search: %v", err)
	}
	return search
}
