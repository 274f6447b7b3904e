// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/constants"
	"github.com/minhlq/savoro/pkg/uuidv7"
)

// # Service

// Service implements the recipe catalog use cases: listing, counting, and
// owner-checked create/update/delete.
type Service struct {
	repository Repository
	countCache CountCache
	logger     *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, countCache CountCache, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		countCache: countCache,
		logger:     logger,
	}
}

// # Read Path

/*
List returns every recipe owned by ownerID, newest first.

Parameters:
  - context: context.Context
  - ownerID: string (Verified identity, never client-asserted)

Returns:
  - []Recipe: Possibly empty slice, never nil
  - error: Storage failures
*/
func (service *Service) List(context context.Context, ownerID string) ([]Recipe, error) {
	return service.repository.ListByOwner(context, ownerID)
}

/*
Count returns the number of recipes owned by ownerID.

Description: Serves from the Redis count cache when warm; falls back to a
COUNT(*) on miss and repopulates the cache. Cache failures are logged and
treated as misses, never surfaced to the caller.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - int64: Recipe count
  - error: Storage failures
*/
func (service *Service) Count(context context.Context, ownerID string) (int64, error) {

	// ── 1. Try the cache ──
	if cached, err := service.countCache.Get(context, ownerID); err == nil {
		return cached, nil
	} else if !apperr.IsNotFound(err) {
		service.logger.WarnContext(context, "recipe_count_cache_read_failed",
			slog.String("owner_id", ownerID),
			slog.Any("error", err),
		)
	}

	// ── 2. Fall back to the store ──
	count, err := service.repository.CountByOwner(context, ownerID)
	if err != nil {
		return 0, err
	}

	// ── 3. Repopulate, best effort ──
	if err := service.countCache.Set(context, ownerID, count, constants.RecipeCountTTL); err != nil {
		service.logger.WarnContext(context, "recipe_count_cache_write_failed",
			slog.String("owner_id", ownerID),
			slog.Any("error", err),
		)
	}

	return count, nil
}

// # Write Path

// CreateInput holds the data for a new recipe.
type CreateInput struct {
	Title       string
	Image       string
	Calories    float64
	Ingredients []Ingredient
}

/*
Create persists a new recipe owned by ownerID.

The owner always comes from the verified token identity; a client-supplied
owner in the request body is ignored on this path.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: CreateInput

Returns:
  - *Recipe: Created entity
  - error: ValidationError (empty title) or storage failures
*/
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*Recipe, error) {
	if input.Title == "" {
		return nil, apperr.ValidationError("Title is required")
	}

	recipe := &Recipe{
		ID:          uuidv7.New(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Image:       input.Image,
		Calories:    input.Calories,
		Ingredients: input.Ingredients,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []Ingredient{}
	}

	if err := service.repository.Create(context, recipe); err != nil {
		return nil, err
	}

	service.invalidateCount(context, ownerID)

	return recipe, nil
}

/*
CreateAnonymous persists a recipe without a verified identity.

Description: This is the documented compatibility mode for clients that
predate mandatory authentication. The ownerID is client-asserted and may be
empty; anonymous rows never appear in any authenticated user's listing
unless the asserted owner happens to match.

Parameters:
  - context: context.Context
  - ownerID: string (Client-asserted, may be empty)
  - input: CreateInput

Returns:
  - *Recipe: Created entity
  - error: ValidationError (empty title) or storage failures
*/
func (service *Service) CreateAnonymous(context context.Context, ownerID string, input CreateInput) (*Recipe, error) {
	recipe, err := service.Create(context, ownerID, input)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "recipe_created_anonymously",
		slog.String("recipe_id", recipe.ID),
		slog.String("asserted_owner_id", ownerID),
	)

	return recipe, nil
}

// UpdateInput carries the partial-update fields for an existing recipe.
//
// Zero values mean "keep the stored value": an empty Title or Image and a
// zero Calories never overwrite. Ingredients follows presence instead: a nil
// slice keeps the stored list, while an empty non-nil slice replaces it.
// This mirrors the update contract existing clients rely on; it follows
// that no field can be cleared to its zero value through this API.
type UpdateInput struct {
	Title       string
	Image       string
	Calories    float64
	Ingredients []Ingredient
}

/*
Update applies a partial update to a recipe owned by ownerID.

Parameters:
  - context: context.Context
  - ownerID: string (Verified identity)
  - recipeID: string
  - input: UpdateInput

Returns:
  - *Recipe: Entity after the update
  - error: NotFound, Forbidden (not the owner), or storage failures
*/
func (service *Service) Update(context context.Context, ownerID, recipeID string, input UpdateInput) (*Recipe, error) {

	// Recipe IDs are always UUIDs, so a malformed ID cannot name a
	// stored row. Resolve it as NotFound without touching the store.
	if _, err := uuid.Parse(recipeID); err != nil {
		return nil, apperr.NotFound("Recipe")
	}

	// ── 1. Existence before ownership ──
	// A missing recipe is 404 even for a non-owner; only an existing
	// foreign recipe is 403.
	recipe, err := service.repository.FindByID(context, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.OwnerID != ownerID {
		return nil, apperr.Forbidden("You do not own this recipe")
	}

	// ── 2. Fold the partial update into the stored state ──
	if input.Title != "" {
		recipe.Title = input.Title
	}
	if input.Image != "" {
		recipe.Image = input.Image
	}
	if input.Calories != 0 {
		recipe.Calories = input.Calories
	}
	if input.Ingredients != nil {
		recipe.Ingredients = input.Ingredients
	}

	// ── 3. Persist ──
	if err := service.repository.Update(context, recipe); err != nil {
		return nil, err
	}

	return recipe, nil
}

/*
Delete removes a recipe owned by ownerID.

Not idempotent: a second delete of the same ID returns NotFound.

Parameters:
  - context: context.Context
  - ownerID: string (Verified identity)
  - recipeID: string

Returns:
  - error: NotFound, Forbidden (not the owner), or storage failures
*/
func (service *Service) Delete(context context.Context, ownerID, recipeID string) error {

	if _, err := uuid.Parse(recipeID); err != nil {
		return apperr.NotFound("Recipe")
	}

	recipe, err := service.repository.FindByID(context, recipeID)
	if err != nil {
		return err
	}
	if recipe.OwnerID != ownerID {
		return apperr.Forbidden("You do not own this recipe")
	}

	if err := service.repository.Delete(context, recipeID); err != nil {
		return err
	}

	service.invalidateCount(context, ownerID)

	return nil
}

// invalidateCount drops the cached count after a mutation that changes it.
// Failures are logged, not surfaced: the TTL bounds the staleness window.
func (service *Service) invalidateCount(context context.Context, ownerID string) {
	if ownerID == "" {
		return
	}
	if err := service.countCache.Invalidate(context, ownerID); err != nil {
		service.logger.WarnContext(context, "recipe_count_cache_invalidate_failed",
			slog.String("owner_id", ownerID),
			slog.Any("error", err),
		)
	}
}
