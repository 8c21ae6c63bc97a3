package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cocktail-recommender/internal/core/persist"
	"cocktail-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (s *countingSource) Build(context.Context) (*Catalog, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	cat, _ := Build([]RawRecord{row("Q1", "Martini", "gin", "6", "centilitre")})
	return cat, nil
}

func TestCacheBuildsOnce(t *testing.T) {
	source := &countingSource{delay: 20 * time.Millisecond}
	cache := NewCache(source)

	_, ok := cache.Peek()
	assert.False(t, ok)

	const callers = 16
	results := make([]*Catalog, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cat, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = cat
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
	for _, cat := range results {
		assert.Same(t, results[0], cat)
	}

	peeked, ok := cache.Peek()
	require.True(t, ok)
	assert.Same(t, results[0], peeked)
}

func TestCacheDoesNotRetainFailure(t *testing.T) {
	source := &countingSource{err: errors.New("sparql endpoint down")}
	cache := NewCache(source)

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
	_, ok := cache.Peek()
	assert.False(t, ok)

	source.err = nil
	cat, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Drinks, 1)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestCacheInvalidate(t *testing.T) {
	source := &countingSource{}
	cache := NewCache(source)

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	_, ok := cache.Peek()
	assert.False(t, ok)

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestCacheUsesPersistedCatalog(t *testing.T) {
	store := persist.NewMemoryStore(10, 0)
	source := &countingSource{}

	first := NewCache(source, WithStore(store))
	_, err := first.Get(context.Background())
	require.NoError(t, err)

	second := NewCache(source, WithStore(store))
	cat, err := second.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), source.calls.Load())
	require.Len(t, cat.Drinks, 1)
	require.Len(t, cat.Ingredients, 1)
	assert.Same(t, cat.Ingredients[0], cat.Drinks[0].Ingredients[0].Ingredient)
	assert.True(t, cat.Ingredients[0].Resolved())
}

func TestCacheRefreshDropsPersistedCatalog(t *testing.T) {
	store := persist.NewMemoryStore(10, 0)
	source := &countingSource{}
	resets := 0
	cache := NewCache(source, WithStore(store), WithResetHook(func() { resets++ }))

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resets)

	_, err = cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
	assert.Equal(t, 1, resets)
}

func TestRelinkAddsMissingIngredients(t *testing.T) {
	cat := &Catalog{
		Drinks: []*Drink{{
			Name: "Martini",
			Ingredients: []IngredientAmount{
				{Ingredient: &Ingredient{Name: "Gin", Alcohol: 40}, Amount: 6, Unit: "centilitre"},
			},
		}},
	}
	cat.Relink()

	require.Len(t, cat.Ingredients, 1)
	assert.Same(t, cat.Ingredients[0], cat.Drinks[0].Ingredients[0].Ingredient)
}
