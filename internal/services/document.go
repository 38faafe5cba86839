package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("document data must be a JSON object")
)

type DocumentService struct {
	store  store.Store
	logger *slog.Logger
}

func NewDocumentService(st store.Store, logger *slog.Logger) *DocumentService {
	return &DocumentService{store: st, logger: logger}
}

func (s *DocumentService) Create(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}
	doc, err := s.store.CreateDocument(ctx, collectionID, data)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}
	s.logger.Info("document created", "collection_id", collectionID, "id", doc.ID)
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, collectionID, id int64) (*models.Document, error) {
	doc, err := s.store.GetDocument(ctx, collectionID, id)
	if err != nil {
		return nil, fromStore(err, ErrDocumentNotFound)
	}
	return doc, nil
}

// Update replaces the document's data in full.
func (s *DocumentService) Update(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}
	doc, err := s.store.UpdateDocument(ctx, collectionID, id, data)
	if err != nil {
		return nil, fromStore(err, ErrDocumentNotFound)
	}
	s.logger.Info("document updated", "collection_id", collectionID, "id", id)
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, collectionID, id int64) error {
	if err := s.store.DeleteDocument(ctx, collectionID, id); err != nil {
		return fromStore(err, ErrDocumentNotFound)
	}
	s.logger.Info("document deleted", "collection_id", collectionID, "id", id)
	return nil
}

func validateDocument(data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrInvalidDocument
	}
	return nil
}
