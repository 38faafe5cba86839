package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
)

type memoryCollection struct {
	meta      models.Collection
	documents map[int64]models.Document
	searches  map[int64]models.SavedSearch
}

// Memory is an in-process Store. Records are replaced whole under the
// lock, so readers never see a partial write.
type Memory struct {
	mu          sync.RWMutex
	collections map[int64]*memoryCollection
	names       map[string]int64
	seq         struct{ collection, document, search int64 }
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[int64]*memoryCollection),
		names:       make(map[string]int64),
		now:         time.Now,
	}
}

func (m *Memory) timestamp() *time.Time {
	t := m.now()
	return &t
}

func (m *Memory) CreateCollection(ctx context.Context, name string) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.names[name]; taken {
		return nil, fmt.Errorf("%w: collection name %q", ErrConflict, name)
	}
	c := &memoryCollection{
		meta:      models.Collection{ID: nextID(&m.seq.collection), Name: name, CreatedAt: m.now()},
		documents: make(map[int64]models.Document),
		searches:  make(map[int64]models.SavedSearch),
	}
	m.collections[c.meta.ID] = c
	m.names[name] = c.meta.ID
	meta := c.meta
	return &meta, nil
}

func (m *Memory) GetCollection(ctx context.Context, id int64) (*models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	meta := c.meta
	return &meta, nil
}

func (m *Memory) ListCollections(ctx context.Context) ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c.meta)
	}
	slices.SortFunc(out, func(a, b models.Collection) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) RenameCollection(ctx context.Context, id int64, name string) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	if owner, taken := m.names[name]; taken && owner != id {
		return nil, fmt.Errorf("%w: collection name %q", ErrConflict, name)
	}
	delete(m.names, c.meta.Name)
	m.names[name] = id
	c.meta.Name = name
	c.meta.UpdatedAt = m.timestamp()
	meta := c.meta
	return &meta, nil
}

func (m *Memory) DeleteCollection(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.names, c.meta.Name)
	delete(m.collections, id)
	return nil
}

func (m *Memory) CreateDocument(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	d := models.Document{
		ID:           nextID(&m.seq.document),
		CollectionID: collectionID,
		Data:         slices.Clone(data),
		CreatedAt:    m.now(),
	}
	c.documents[d.ID] = d
	return cloneDocument(d), nil
}

func (m *Memory) GetDocument(ctx context.Context, collectionID, id int64) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	d, ok := c.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDocument(d), nil
}

func (m *Memory) ListDocuments(ctx context.Context, collectionID int64) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return []models.Document{}, nil
	}
	out := make([]models.Document, 0, len(c.documents))
	for _, d := range c.documents {
		out = append(out, *cloneDocument(d))
	}
	slices.SortFunc(out, func(a, b models.Document) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) UpdateDocument(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	d, ok := c.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Data = slices.Clone(data)
	d.UpdatedAt = m.timestamp()
	c.documents[id] = d
	return cloneDocument(d), nil
}

func (m *Memory) DeleteDocument(ctx context.Context, collectionID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.documents[id]; !ok {
		return ErrNotFound
	}
	delete(c.documents, id)
	return nil
}

func (m *Memory) CreateSavedSearch(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	s := models.SavedSearch{
		ID:           nextID(&m.seq.search),
		CollectionID: collectionID,
		Name:         name,
		Query:        q.Clone(),
		Version:      1,
		CreatedAt:    m.now(),
	}
	c.searches[s.ID] = s
	return cloneSavedSearch(s), nil
}

func (m *Memory) GetSavedSearch(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := c.searches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSavedSearch(s), nil
}

func (m *Memory) ListSavedSearches(ctx context.Context, collectionID int64) ([]models.SavedSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return []models.SavedSearch{}, nil
	}
	out := make([]models.SavedSearch, 0, len(c.searches))
	for _, s := range c.searches {
		out = append(out, *cloneSavedSearch(s))
	}
	slices.SortFunc(out, func(a, b models.SavedSearch) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) UpdateSavedSearch(ctx context.Context, collectionID, id int64, name string, q query.Query, expectedVersion int) (*models.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionID]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := c.searches[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Version != expectedVersion {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrConflict, s.Version, expectedVersion)
	}
	s.Name = name
	s.Query = q.Clone()
	s.Version++
	s.UpdatedAt = m.timestamp()
	c.searches[id] = s
	return cloneSavedSearch(s), nil
}

func (m *Memory) DeleteSavedSearch(ctx context.Context, collectionID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.collections[collectionID]; ok {
		delete(c.searches, id)
	}
	return nil
}

func cloneDocument(d models.Document) *models.Document {
	d.Data = slices.Clone(d.Data)
	return &d
}

func cloneSavedSearch(s models.SavedSearch) *models.SavedSearch {
	s.Query = s.Query.Clone()
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		s.UpdatedAt = &t
	}
	return &s
}

func nextID(counter *int64) int64 {
	*counter++
	return *counter
}
