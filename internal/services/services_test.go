package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/dimitrije/ingressearch-api/internal/metrics"
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store         *store.Memory
	metrics       *metrics.Metrics
	collections   *CollectionService
	documents     *DocumentService
	searches      *SearchService
	savedSearches *SavedSearchService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	m := metrics.New(prometheus.NewRegistry())
	executor := NewExecutor(st, m)

	return &testEnv{
		store:         st,
		metrics:       m,
		collections:   NewCollectionService(st, logger),
		documents:     NewDocumentService(st, logger),
		searches:      NewSearchService(executor, m, logger),
		savedSearches: NewSavedSearchService(st, executor, m, logger),
	}
}

// seedPeople creates a collection holding {age:30}, {age:25} and {}.
func (e *testEnv) seedPeople(t *testing.T) (*models.Collection, []*models.Document) {
	t.Helper()
	ctx := context.Background()

	c, err := e.collections.Create(ctx, "people")
	require.NoError(t, err)

	var docs []*models.Document
	for _, data := range []string{`{"age": 30}`, `{"age": 25}`, `{}`} {
		doc, err := e.documents.Create(ctx, c.ID, json.RawMessage(data))
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return c, docs
}

func documentIDs(docs []models.Document) []int64 {
	ids := make([]int64, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
