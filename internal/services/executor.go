package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dimitrije/ingressearch-api/internal/metrics"
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/dimitrije/ingressearch-api/internal/store"
)

var ErrCollectionNotFound = errors.New("collection not found")

// ctxCheckInterval is how many documents are scanned between context checks.
const ctxCheckInterval = 256

// Executor runs compiled plans against one collection snapshot. It never
// writes to the store.
type Executor struct {
	store   store.Store
	metrics *metrics.Metrics
}

func NewExecutor(st store.Store, m *metrics.Metrics) *Executor {
	return &Executor{store: st, metrics: m}
}

type candidate struct {
	doc  models.Document
	data any
}

// Execute returns the documents of collectionID that satisfy plan, in plan
// order with ties broken by ascending id, cut to the plan's window. The
// result is never nil.
func (e *Executor) Execute(ctx context.Context, collectionID int64, plan *query.Plan) ([]models.Document, error) {
	start := time.Now()

	if _, err := e.store.GetCollection(ctx, collectionID); err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}

	docs, err := e.store.ListDocuments(ctx, collectionID)
	if err != nil {
		return nil, fromStore(err, ErrCollectionNotFound)
	}

	matched := make([]candidate, 0)
	for i, doc := range docs {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		data, err := query.Decode(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", doc.ID, err)
		}
		if plan.Predicate(data) {
			matched = append(matched, candidate{doc: doc, data: data})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(matched, func(a, b candidate) int {
		if c := plan.Comparator(a.data, b.data); c != 0 {
			return c
		}
		return cmp.Compare(a.doc.ID, b.doc.ID)
	})

	lo, hi := plan.Window.Bounds(len(matched))
	out := make([]models.Document, 0, hi-lo)
	for _, m := range matched[lo:hi] {
		out = append(out, m.doc)
	}

	e.metrics.ObserveScan(len(docs), len(matched), time.Since(start))
	return out, nil
}
