// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package recipe implements the recipe catalog: per-owner collections of
recipes with title, image, calorie, and ingredient data.

# Architecture

  - Entity: [Recipe] and [Ingredient], free of storage or transport concerns.
  - Repository: [Repository] backed by PostgreSQL, [CountCache] backed by Redis.
  - Service: Ownership enforcement, validation, and the partial-update rules.
  - HTTP: Thin chi handlers translating between JSON and the service.
*/
package recipe

import "time"

// # Domain Entities

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Text string `json:"text"`
}

// Recipe represents one entry in a user's collection.
//
// OwnerID is empty for anonymously created recipes; those rows never appear
// in any user's listing.
type Recipe struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id,omitempty"`
	Title       string       `json:"title"`
	Image       string       `json:"image,omitempty"`
	Calories    float64      `json:"calories"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"created_at"`
}

// # Field Identifiers

const (
	FieldTitle = "title"
)
