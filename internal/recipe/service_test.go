// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/savoro/internal/platform/apperr"
)

// memoryRepository is an in-memory [Repository] for service tests.
type memoryRepository struct {
	recipes map[string]*Recipe
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{recipes: make(map[string]*Recipe)}
}

func (repo *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Recipe, error) {
	result := make([]Recipe, 0)
	for _, recipe := range repo.recipes {
		if recipe.OwnerID == ownerID {
			result = append(result, *recipe)
		}
	}
	// Newest first, id as tie-break, matching the store's ordering contract.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (repo *memoryRepository) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	var count int64
	for _, recipe := range repo.recipes {
		if recipe.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*Recipe, error) {
	recipe, ok := repo.recipes[id]
	if !ok {
		return nil, apperr.NotFound("Recipe")
	}
	clone := *recipe
	return &clone, nil
}

func (repo *memoryRepository) Create(_ context.Context, recipe *Recipe) error {
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	clone := *recipe
	repo.recipes[recipe.ID] = &clone
	return nil
}

func (repo *memoryRepository) Update(_ context.Context, recipe *Recipe) error {
	if _, ok := repo.recipes[recipe.ID]; !ok {
		return apperr.NotFound("Recipe")
	}
	clone := *recipe
	repo.recipes[recipe.ID] = &clone
	return nil
}

func (repo *memoryRepository) Delete(_ context.Context, id string) error {
	if _, ok := repo.recipes[id]; !ok {
		return apperr.NotFound("Recipe")
	}
	delete(repo.recipes, id)
	return nil
}

// memoryCountCache is an in-memory [CountCache] that records invalidations.
type memoryCountCache struct {
	counts        map[string]int64
	invalidations int
}

func newMemoryCountCache() *memoryCountCache {
	return &memoryCountCache{counts: make(map[string]int64)}
}

func (cache *memoryCountCache) Get(_ context.Context, ownerID string) (int64, error) {
	count, ok := cache.counts[ownerID]
	if !ok {
		return 0, apperr.NotFound("Recipe count")
	}
	return count, nil
}

func (cache *memoryCountCache) Set(_ context.Context, ownerID string, count int64, _ time.Duration) error {
	cache.counts[ownerID] = count
	return nil
}

func (cache *memoryCountCache) Invalidate(_ context.Context, ownerID string) error {
	cache.invalidations++
	delete(cache.counts, ownerID)
	return nil
}

func newTestService() (*Service, *memoryRepository, *memoryCountCache) {
	repo := newMemoryRepository()
	cache := newMemoryCountCache()
	service := NewService(repo, cache, slog.Default())
	return service, repo, cache
}

const (
	aliceID = "0190d4a0-0000-7000-8000-000000000001"
	bobID   = "0190d4a0-0000-7000-8000-000000000002"
)

func TestCreateRequiresTitle(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Create(context.Background(), aliceID, CreateInput{Title: ""})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

func TestCreateAndList(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	soup, err := service.Create(ctx, aliceID, CreateInput{
		Title:       "Soup",
		Calories:    120,
		Ingredients: []Ingredient{{Text: "water"}, {Text: "salt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, aliceID, soup.OwnerID)
	assert.NotEmpty(t, soup.ID)
	assert.False(t, soup.CreatedAt.IsZero())

	_, err = service.Create(ctx, bobID, CreateInput{Title: "Bread"})
	require.NoError(t, err)

	recipes, err := service.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup", recipes[0].Title)

	// A caller who owns nothing gets an empty slice, not nil.
	recipes, err = service.List(ctx, "0190d4a0-0000-7000-8000-00000000dead")
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestListNewestFirst(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	titles := []string{"Soup", "Bread", "Salad"}
	for _, title := range titles {
		_, err := service.Create(ctx, aliceID, CreateInput{Title: title})
		require.NoError(t, err)
	}
	// Another owner's rows never leak into the listing.
	_, err := service.Create(ctx, bobID, CreateInput{Title: "Stew"})
	require.NoError(t, err)

	recipes, err := service.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	// Insertion order reversed: created_at ties are broken by the
	// monotonic UUIDv7 id.
	assert.Equal(t, "Salad", recipes[0].Title)
	assert.Equal(t, "Bread", recipes[1].Title)
	assert.Equal(t, "Soup", recipes[2].Title)
}

func TestIngredientsRoundTrip(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	input := []Ingredient{{Text: "a"}, {Text: "b"}}
	created, err := service.Create(ctx, aliceID, CreateInput{Title: "T", Ingredients: input})
	require.NoError(t, err)

	recipes, err := service.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, created.ID, recipes[0].ID)
	assert.Equal(t, "T", recipes[0].Title)
	assert.Equal(t, input, recipes[0].Ingredients)
}

func TestUpdatePartialFields(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, aliceID, CreateInput{
		Title:       "Soup",
		Image:       "soup.jpg",
		Calories:    120,
		Ingredients: []Ingredient{{Text: "water"}},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input UpdateInput
		check func(t *testing.T, recipe *Recipe)
	}{
		{
			name:  "empty_title_keeps_stored",
			input: UpdateInput{Calories: 200},
			check: func(t *testing.T, recipe *Recipe) {
				assert.Equal(t, "Soup", recipe.Title)
				assert.Equal(t, float64(200), recipe.Calories)
			},
		},
		{
			name:  "zero_calories_keeps_stored",
			input: UpdateInput{Title: "Broth"},
			check: func(t *testing.T, recipe *Recipe) {
				assert.Equal(t, "Broth", recipe.Title)
				assert.Equal(t, float64(200), recipe.Calories)
			},
		},
		{
			name:  "nil_ingredients_keeps_stored",
			input: UpdateInput{Image: "broth.jpg"},
			check: func(t *testing.T, recipe *Recipe) {
				assert.Equal(t, []Ingredient{{Text: "water"}}, recipe.Ingredients)
				assert.Equal(t, "broth.jpg", recipe.Image)
			},
		},
		{
			name:  "empty_ingredients_replaces_stored",
			input: UpdateInput{Ingredients: []Ingredient{}},
			check: func(t *testing.T, recipe *Recipe) {
				assert.Empty(t, recipe.Ingredients)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := service.Update(ctx, aliceID, created.ID, tt.input)
			require.NoError(t, err)
			tt.check(t, recipe)
		})
	}
}

func TestUpdateOwnershipAndExistence(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, aliceID, CreateInput{Title: "Soup"})
	require.NoError(t, err)

	// Missing recipe is 404 regardless of caller.
	_, err = service.Update(ctx, bobID, "0190d4a0-ffff-7000-8000-000000000000", UpdateInput{Title: "X"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Existing foreign recipe is 403, and the row is untouched.
	_, err = service.Update(ctx, bobID, created.ID, UpdateInput{Title: "Stolen"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	recipes, err := service.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup", recipes[0].Title)
}

// spyRepository records FindByID lookups on top of [memoryRepository].
type spyRepository struct {
	*memoryRepository
	lookups []string
}

func (repo *spyRepository) FindByID(ctx context.Context, id string) (*Recipe, error) {
	repo.lookups = append(repo.lookups, id)
	return repo.memoryRepository.FindByID(ctx, id)
}

func TestMalformedRecipeIDIsNotFound(t *testing.T) {
	repo := &spyRepository{memoryRepository: newMemoryRepository()}
	service := NewService(repo, newMemoryCountCache(), slog.Default())
	ctx := context.Background()

	// A non-UUID ID can never name a stored row; it resolves to 404
	// without a store round trip.
	_, err := service.Update(ctx, aliceID, "does-not-exist", UpdateInput{Title: "X"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	err = service.Delete(ctx, aliceID, "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	assert.Empty(t, repo.lookups)
}

func TestDeleteNotIdempotent(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, aliceID, CreateInput{Title: "Soup"})
	require.NoError(t, err)

	err = service.Delete(ctx, bobID, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	require.NoError(t, service.Delete(ctx, aliceID, created.ID))

	err = service.Delete(ctx, aliceID, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestCountUsesCache(t *testing.T) {
	service, repo, cache := newTestService()
	ctx := context.Background()

	_, err := service.Create(ctx, aliceID, CreateInput{Title: "Soup"})
	require.NoError(t, err)
	_, err = service.Create(ctx, aliceID, CreateInput{Title: "Bread"})
	require.NoError(t, err)

	// First call misses and repopulates the cache.
	count, err := service.Count(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(2), cache.counts[aliceID])

	// A stale cache entry is served as-is until invalidated.
	repo.recipes = make(map[string]*Recipe)
	count, err = service.Count(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMutationsInvalidateCountCache(t *testing.T) {
	service, _, cache := newTestService()
	ctx := context.Background()

	created, err := service.Create(ctx, aliceID, CreateInput{Title: "Soup"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)

	_, err = service.Count(ctx, aliceID)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, aliceID, created.ID))
	assert.Equal(t, 2, cache.invalidations)

	count, err := service.Count(ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
