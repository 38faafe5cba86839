package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adults = query.Query{
	Filter: query.Comparison{Field: "age", Op: query.OpGte, Value: float64(28)},
	Sort:   []query.SortKey{{Field: "age", Direction: query.Desc}},
}

func TestSavedSearchService_Create(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", adults)

	require.NoError(t, err)
	assert.Equal(t, "adults", search.Name)
	assert.Equal(t, 1, search.Version)
	assert.Equal(t, adults, search.Query)
	assert.False(t, search.CreatedAt.IsZero())
	assert.Nil(t, search.UpdatedAt)
}

func TestSavedSearchService_Create_Errors(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	_, err := env.savedSearches.Create(ctx, 999, "adults", adults)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	_, err = env.savedSearches.Create(ctx, c.ID, "", adults)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = env.savedSearches.Create(ctx, c.ID, "bad", query.Query{Limit: query.WithLimit(0)})
	assert.ErrorIs(t, err, query.ErrInvalidQuery)
}

func TestSavedSearchService_List(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	first, err := env.savedSearches.Create(ctx, c.ID, "b", query.Query{})
	require.NoError(t, err)
	second, err := env.savedSearches.Create(ctx, c.ID, "a", adults)
	require.NoError(t, err)

	list, err := env.savedSearches.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	empty, err := env.collections.Create(ctx, "empty")
	require.NoError(t, err)
	list, err = env.savedSearches.List(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = env.savedSearches.List(ctx, 999)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestSavedSearchService_UpdateThenGet(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", query.Query{})
	require.NoError(t, err)

	updated, err := env.savedSearches.Update(ctx, c.ID, search.ID, adults, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.NotNil(t, updated.UpdatedAt)

	got, err := env.savedSearches.Get(ctx, c.ID, search.ID)
	require.NoError(t, err)
	assert.Equal(t, adults, got.Query)
	assert.Equal(t, "adults", got.Name)
}

func TestSavedSearchService_Update_VersionConflict(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", query.Query{})
	require.NoError(t, err)

	stale := search.Version
	_, err = env.savedSearches.Update(ctx, c.ID, search.ID, adults, &stale)
	require.NoError(t, err)

	_, err = env.savedSearches.Update(ctx, c.ID, search.ID, query.Query{}, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := env.savedSearches.Get(ctx, c.ID, search.ID)
	require.NoError(t, err)
	assert.Equal(t, adults, got.Query)
}

func TestSavedSearchService_Update_NotFound(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)

	_, err := env.savedSearches.Update(context.Background(), c.ID, 77, adults, nil)

	assert.ErrorIs(t, err, ErrSavedSearchNotFound)
}

func TestSavedSearchService_Rename(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", adults)
	require.NoError(t, err)

	renamed, err := env.savedSearches.Rename(ctx, c.ID, search.ID, "grown-ups", nil)
	require.NoError(t, err)
	assert.Equal(t, "grown-ups", renamed.Name)
	assert.Equal(t, adults, renamed.Query)

	_, err = env.savedSearches.Rename(ctx, c.ID, search.ID, "", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSavedSearchService_ConcurrentUpdatesAreNotLost(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", query.Query{})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := query.Query{Offset: i}
			_, err := env.savedSearches.Update(ctx, c.ID, search.ID, q, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.savedSearches.Get(ctx, c.ID, search.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+writers, got.Version)
}

func TestSavedSearchService_Delete(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", adults)
	require.NoError(t, err)

	require.NoError(t, env.savedSearches.Delete(ctx, c.ID, search.ID))
	require.NoError(t, env.savedSearches.Delete(ctx, c.ID, search.ID))

	_, err = env.savedSearches.Get(ctx, c.ID, search.ID)
	assert.ErrorIs(t, err, ErrSavedSearchNotFound)
}

func TestSavedSearchService_Run(t *testing.T) {
	env := setupServices(t)
	c, docs := env.seedPeople(t)
	ctx := context.Background()

	search, err := env.savedSearches.Create(ctx, c.ID, "adults", adults)
	require.NoError(t, err)

	first, err := env.savedSearches.Run(ctx, c.ID, search.ID)
	require.NoError(t, err)
	second, err := env.savedSearches.Run(ctx, c.ID, search.ID)
	require.NoError(t, err)

	assert.Equal(t, []int64{docs[0].ID}, documentIDs(first))
	assert.Equal(t, first, second)

	_, err = env.savedSearches.Run(ctx, c.ID, 404)
	assert.ErrorIs(t, err, ErrSavedSearchNotFound)
}

func TestSavedSearchService_CollectionDeleteRemovesSearches(t *testing.T) {
	env := setupServices(t)
	c, _ := env.seedPeople(t)
	ctx := context.Background()

	a, err := env.savedSearches.Create(ctx, c.ID, "a", adults)
	require.NoError(t, err)
	b, err := env.savedSearches.Create(ctx, c.ID, "b", query.Query{})
	require.NoError(t, err)

	require.NoError(t, env.collections.Delete(ctx, c.ID))

	for _, id := range []int64{a.ID, b.ID} {
		_, err := env.savedSearches.Get(ctx, c.ID, id)
		assert.ErrorIs(t, err, ErrSavedSearchNotFound)
	}
	_, err = env.savedSearches.Run(ctx, c.ID, a.ID)
	assert.ErrorIs(t, err, ErrSavedSearchNotFound)
}
