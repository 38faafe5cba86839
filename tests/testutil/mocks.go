package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/stretchr/testify/mock"
)

// MockCollectionService mocks the CollectionService
type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) Create(ctx context.Context, name string) (*models.Collection, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Get(ctx context.Context, id int64) (*models.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) List(ctx context.Context) ([]models.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionService) Rename(ctx context.Context, id int64, name string) (*models.Collection, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentService mocks the DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error) {
	args := m.Called(ctx, collectionID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, collectionID, id int64) (*models.Document, error) {
	args := m.Called(ctx, collectionID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error) {
	args := m.Called(ctx, collectionID, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, collectionID, id int64) error {
	args := m.Called(ctx, collectionID, id)
	return args.Error(0)
}

// MockSearchService mocks the SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, collectionID int64, q query.Query) ([]models.Document, error) {
	args := m.Called(ctx, collectionID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

// MockSavedSearchService mocks the SavedSearchService
type MockSavedSearchService struct {
	mock.Mock
}

func (m *MockSavedSearchService) Create(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error) {
	args := m.Called(ctx, collectionID, name, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedSearch), args.Error(1)
}

func (m *MockSavedSearchService) Get(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error) {
	args := m.Called(ctx, collectionID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedSearch), args.Error(1)
}

func (m *MockSavedSearchService) List(ctx context.Context, collectionID int64) ([]models.SavedSearch, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedSearch), args.Error(1)
}

func (m *MockSavedSearchService) Update(ctx context.Context, collectionID, id int64, q query.Query, expectedVersion *int) (*models.SavedSearch, error) {
	args := m.Called(ctx, collectionID, id, q, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedSearch), args.Error(1)
}

func (m *MockSavedSearchService) Rename(ctx context.Context, collectionID, id int64, name string, expectedVersion *int) (*models.SavedSearch, error) {
	args := m.Called(ctx, collectionID, id, name, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedSearch), args.Error(1)
}

func (m *MockSavedSearchService) Delete(ctx context.Context, collectionID, id int64) error {
	args := m.Called(ctx, collectionID, id)
	return args.Error(0)
}

func (m *MockSavedSearchService) Run(ctx context.Context, collectionID, id int64) ([]models.Document, error) {
	args := m.Called(ctx, collectionID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

// RecordedEvent is one call to EventRecorder.Publish.
type RecordedEvent struct {
	CollectionID int64
	Type         string
	Data         any
}

// EventRecorder is an event publisher that keeps everything it is given.
type EventRecorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (r *EventRecorder) Publish(collectionID int64, eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{CollectionID: collectionID, Type: eventType, Data: data})
}

func (r *EventRecorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}
