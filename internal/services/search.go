package services

import (
	"context"
	"log/slog"

	"github.com/dimitrije/ingressearch-api/internal/metrics"
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
)

// SearchService runs ad-hoc queries.
type SearchService struct {
	executor *Executor
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewSearchService(executor *Executor, m *metrics.Metrics, logger *slog.Logger) *SearchService {
	return &SearchService{executor: executor, metrics: m, logger: logger}
}

func (s *SearchService) Search(ctx context.Context, collectionID int64, q query.Query) ([]models.Document, error) {
	docs, err := s.search(ctx, collectionID, q)
	s.metrics.CountSearch(metrics.KindAdHoc, err)
	return docs, err
}

func (s *SearchService) search(ctx context.Context, collectionID int64, q query.Query) ([]models.Document, error) {
	plan, err := query.Compile(q)
	if err != nil {
		return nil, err
	}
	docs, err := s.executor.Execute(ctx, collectionID, plan)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search executed", "collection_id", collectionID, "results", len(docs))
	return docs, nil
}
