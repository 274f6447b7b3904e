// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/dberr"
)

// # Recipe Repository

// PostgresRepository implements the [Repository] interface using pgx.
//
// Ingredients are stored as a JSONB column; they are opaque to every query
// here, so a join table would buy nothing but write amplification.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
ListByOwner returns the owner's recipes, newest first.

The secondary sort on id keeps the order stable when rows share a
created_at timestamp; UUIDv7 ids are time-ordered so this matches
insertion order.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - []Recipe: Possibly empty slice, never nil
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID string) ([]Recipe, error) {
	const query = `
		SELECT id, owner_id::text, title, image, calories, ingredients, created_at
		FROM recipes
		WHERE owner_id = $1::uuid
		ORDER BY created_at DESC, id DESC`

	rows, err := repository.pool.Query(context, query, ownerID)
	if err != nil {
		return nil, dberr.Wrap(err, "Recipe", "")
	}
	defer rows.Close()

	recipes := make([]Recipe, 0)
	for rows.Next() {
		var (
			recipe      Recipe
			ingredients []byte
		)
		if err := rows.Scan(
			&recipe.ID,
			&recipe.OwnerID,
			&recipe.Title,
			&recipe.Image,
			&recipe.Calories,
			&ingredients,
			&recipe.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "Recipe", "")
		}
		if err := unmarshalIngredients(ingredients, &recipe); err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Recipe", "")
	}

	return recipes, nil
}

/*
CountByOwner returns the number of recipes belonging to ownerID.
*/
func (repository *PostgresRepository) CountByOwner(context context.Context, ownerID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM recipes WHERE owner_id = $1::uuid`

	var count int64
	if err := repository.pool.QueryRow(context, query, ownerID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "Recipe", "")
	}

	return count, nil
}

/*
FindByID returns the recipe with the given ID regardless of owner.
Ownership is enforced in the service so that a foreign recipe can be
distinguished (403) from a missing one (404).
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Recipe, error) {
	// owner_id is NULL for anonymously created rows; surface that as "".
	const query = `
		SELECT id, COALESCE(owner_id::text, ''), title, image, calories, ingredients, created_at
		FROM recipes
		WHERE id = $1`

	var (
		recipe      Recipe
		ingredients []byte
	)
	err := repository.pool.QueryRow(context, query, id).Scan(
		&recipe.ID,
		&recipe.OwnerID,
		&recipe.Title,
		&recipe.Image,
		&recipe.Calories,
		&ingredients,
		&recipe.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Recipe", "")
	}
	if err := unmarshalIngredients(ingredients, &recipe); err != nil {
		return nil, err
	}

	return &recipe, nil
}

/*
Create persists a brand-new recipe row.
*/
func (repository *PostgresRepository) Create(context context.Context, recipe *Recipe) error {
	// An empty OwnerID (anonymous create) is stored as NULL.
	const query = `
		INSERT INTO recipes (id, owner_id, title, image, calories, ingredients, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)`

	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}

	ingredients, err := marshalIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}

	_, err = repository.pool.Exec(context, query,
		recipe.ID,
		recipe.OwnerID,
		recipe.Title,
		recipe.Image,
		recipe.Calories,
		ingredients,
		recipe.CreatedAt,
	)

	return dberr.Wrap(err, "Recipe", "")
}

/*
Update persists the full current state of an existing recipe.
*/
func (repository *PostgresRepository) Update(context context.Context, recipe *Recipe) error {
	const query = `
		UPDATE recipes
		SET title = $2, image = $3, calories = $4, ingredients = $5
		WHERE id = $1`

	ingredients, err := marshalIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}

	tag, err := repository.pool.Exec(context, query,
		recipe.ID,
		recipe.Title,
		recipe.Image,
		recipe.Calories,
		ingredients,
	)
	if err != nil {
		return dberr.Wrap(err, "Recipe", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Recipe")
	}

	return nil
}

/*
Delete removes the recipe with the given ID.
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM recipes WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Recipe", "")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Recipe")
	}

	return nil
}

// # JSONB Helpers

func marshalIngredients(ingredients []Ingredient) ([]byte, error) {
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	data, err := json.Marshal(ingredients)
	if err != nil {
		return nil, fmt.Errorf("postgres_recipe_repo_marshal_failed: %w", err)
	}
	return data, nil
}

func unmarshalIngredients(data []byte, recipe *Recipe) error {
	recipe.Ingredients = []Ingredient{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &recipe.Ingredients); err != nil {
		return fmt.Errorf("postgres_recipe_repo_unmarshal_failed: %w", err)
	}
	return nil
}
