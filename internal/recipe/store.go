// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"context"
	"time"
)

// # Recipe Data Access

// Repository defines the data access contract for recipes.
type Repository interface {

	/*
		ListByOwner returns every recipe belonging to ownerID, newest first.

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - []Recipe: Possibly empty slice, never nil
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, ownerID string) ([]Recipe, error)

	/*
		CountByOwner returns the number of recipes belonging to ownerID.

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - int64: Row count
		  - error: Database retrieval failures
	*/
	CountByOwner(context context.Context, ownerID string) (int64, error)

	/*
		FindByID returns the recipe with the given ID regardless of owner.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Recipe: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Recipe, error)

	/*
		Create persists a brand-new recipe.

		Parameters:
		  - context: context.Context
		  - recipe: *Recipe

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, recipe *Recipe) error

	/*
		Update persists the full current state of an existing recipe.

		Parameters:
		  - context: context.Context
		  - recipe: *Recipe

		Returns:
		  - error: apperr.NotFound if the row vanished, or persistence failures
	*/
	Update(context context.Context, recipe *Recipe) error

	/*
		Delete removes the recipe with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound if no row matched, or persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Count Cache

// CountCache is a volatile cache for per-owner recipe counts.
//
// A cache miss is reported as apperr.NotFound; any other failure is treated
// as a miss by the service, never as a request error.
type CountCache interface {

	// Get returns the cached count for ownerID.
	Get(context context.Context, ownerID string) (int64, error)

	// Set stores the count for ownerID with the given time-to-live.
	Set(context context.Context, ownerID string, count int64, ttl time.Duration) error

	// Invalidate drops the cached count for ownerID.
	Invalidate(context context.Context, ownerID string) error
}
