package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

var ErrCollectionNameTaken = errors.New("collection name already taken")

type CollectionService struct {
	store  store.Store
	logger *slog.Logger
}

func NewCollectionService(st store.Store, logger *slog.Logger) *CollectionService {
	return &CollectionService{store: st, logger: logger}
}

func (s *CollectionService) Create(ctx context.Context, name string) (*models.Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	collection, err := s.store.CreateCollection(ctx, name)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrCollectionNameTaken
	}
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	s.logger.Info("collection created", "id", collection.ID, "name", name)
	return collection, nil
}

func (s *CollectionService) Get(ctx context.Context, id int64) (*models.Collection, error) {
	collection, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	return collection, nil
}

func (s *CollectionService) List(ctx context.Context) ([]models.Collection, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	return collections, nil
}

func (s *CollectionService) Rename(ctx context.Context, id int64, name string) (*models.Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	collection, err := s.store.RenameCollection(ctx, id, name)
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrCollectionNameTaken
	}
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	s.logger.Info("collection renamed", "id", id, "name", name)
	return collection, nil
}

// Delete removes the collection with its documents and saved searches.
func (s *CollectionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCollection(ctx, id); err != nil {
		return fromStore(err, ErrCollectionNotFound)
	}
	s.logger.Info("collection deleted", "id", id)
	return nil
}
