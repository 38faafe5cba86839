package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dimitrije/ingressearch-api/internal/metrics"
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

var (
	ErrSavedSearchNotFound = errors.New("saved search not found")
	ErrVersionConflict     = errors.New("version conflict: saved search has been modified")
)

// SavedSearchService stores named queries per collection and runs them.
// Writes to one saved search are serialised in process; the store's version
// check catches writers in other processes.
type SavedSearchService struct {
	store    store.Store
	executor *Executor
	locks    *keyedMutex
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewSavedSearchService(st store.Store, executor *Executor, m *metrics.Metrics, logger *slog.Logger) *SavedSearchService {
	return &SavedSearchService{
		store:    st,
		executor: executor,
		locks:    newKeyedMutex(),
		metrics:  m,
		logger:   logger,
	}
}

func (s *SavedSearchService) Create(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	search, err := s.store.CreateSavedSearch(ctx, collectionID, name, q)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	s.logger.Info("saved search created", "collection_id", collectionID, "id", search.ID, "name", name)
	return search, nil
}

func (s *SavedSearchService) Get(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error) {
	search, err := s.store.GetSavedSearch(ctx, collectionID, id)
	if err != nil {
		return nil, fromStore(err, ErrSavedSearchNotFound)
	}
	return search, nil
}

// List returns the collection's saved searches in creation order.
func (s *SavedSearchService) List(ctx context.Context, collectionID int64) ([]models.SavedSearch, error) {
	if _, err := s.store.GetCollection(ctx, collectionID); err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	searches, err := s.store.ListSavedSearches(ctx, collectionID)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	return searches, nil
}

// Update replaces the stored query. When expectedVersion is set it must
// match the stored version.
func (s *SavedSearchService) Update(ctx context.Context, collectionID, id int64, q query.Query, expectedVersion *int) (*models.SavedSearch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	search, err := s.mutate(ctx, collectionID, id, expectedVersion, func(search *models.SavedSearch) {
		search.Query = q
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved search updated", "collection_id", collectionID, "id", id, "version", search.Version)
	return search, nil
}

func (s *SavedSearchService) Rename(ctx context.Context, collectionID, id int64, name string, expectedVersion *int) (*models.SavedSearch, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	search, err := s.mutate(ctx, collectionID, id, expectedVersion, func(search *models.SavedSearch) {
		search.Name = name
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("saved search renamed", "collection_id", collectionID, "id", id, "name", name)
	return search, nil
}

func (s *SavedSearchService) mutate(ctx context.Context, collectionID, id int64, expectedVersion *int, apply func(*models.SavedSearch)) (*models.SavedSearch, error) {
	unlock := s.locks.Lock(searchKey{collectionID: collectionID, id: id})
	defer unlock()

	current, err := s.store.GetSavedSearch(ctx, collectionID, id)
	if err != nil {
		return nil, fromStore(err, ErrSavedSearchNotFound)
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		return nil, ErrVersionConflict
	}

	next := *current
	apply(&next)

	updated, err := s.store.UpdateSavedSearch(ctx, collectionID, id, next.Name, next.Query, current.Version)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fromStore(err, ErrSavedSearchNotFound)
	}
	return updated, nil
}

// Delete removes the saved search. Deleting an absent search succeeds.
func (s *SavedSearchService) Delete(ctx context.Context, collectionID, id int64) error {
	unlock := s.locks.Lock(searchKey{collectionID: collectionID, id: id})
	defer unlock()

	if err := s.store.DeleteSavedSearch(ctx, collectionID, id); err != nil {
		return fromStore(err, ErrSavedSearchNotFound)
	}
	s.logger.Info("saved search deleted", "collection_id", collectionID, "id", id)
	return nil
}

// Run executes the stored query against the collection's current documents.
func (s *SavedSearchService) Run(ctx context.Context, collectionID, id int64) ([]models.Document, error) {
	docs, err := s.run(ctx, collectionID, id)
	s.metrics.CountSearch(metrics.KindSaved, err)
	return docs, err
}

func (s *SavedSearchService) run(ctx context.Context, collectionID, id int64) ([]models.Document, error) {
	search, err := s.Get(ctx, collectionID, id)
	if err != nil {
		return nil, err
	}
	plan, err := query.Compile(search.Query)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, collectionID, plan)
}
