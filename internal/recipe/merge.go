// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

// # Two-Tier Cache Reconciliation
//
// Clients keep a durable local copy of their recipe list so the UI stays
// usable while the API is unreachable. On every successful sync the server
// copy wins; Merge makes that rule explicit and testable instead of leaving
// it implicit in ad hoc cache writes.

// ConflictReason classifies why a local entry lost the reconciliation.
type ConflictReason string

const (
	// ConflictLocalOnly marks an entry that exists locally but not on the server.
	ConflictLocalOnly ConflictReason = "local_only"
	// ConflictModified marks an entry whose local copy diverged from the server copy.
	ConflictModified ConflictReason = "modified"
)

// Conflict records one local entry that was overridden by the server state.
type Conflict struct {
	ID     string         `json:"id"`
	Reason ConflictReason `json:"reason"`
	Local  Recipe         `json:"local"`
}

/*
Merge reconciles a freshly fetched server list with a possibly stale local
list. The server always wins: the effective list is exactly the server list,
and every local entry the server state overrides is reported as a [Conflict]
so callers can surface or log the discarded changes.

Merge is pure: it never mutates its inputs and depends on nothing but them.

Parameters:
  - server: []Recipe (Authoritative list from the API)
  - local: []Recipe (Cached list, possibly with offline edits)

Returns:
  - []Recipe: Effective list (the server list, never nil)
  - []Conflict: Local entries that were discarded or overridden
*/
func Merge(server, local []Recipe) ([]Recipe, []Conflict) {
	effective := make([]Recipe, len(server))
	copy(effective, server)

	serverByID := make(map[string]*Recipe, len(server))
	for i := range server {
		serverByID[server[i].ID] = &server[i]
	}

	var conflicts []Conflict
	for _, localRecipe := range local {
		serverRecipe, exists := serverByID[localRecipe.ID]
		if !exists {
			conflicts = append(conflicts, Conflict{
				ID:     localRecipe.ID,
				Reason: ConflictLocalOnly,
				Local:  localRecipe,
			})
			continue
		}
		if !equalContent(*serverRecipe, localRecipe) {
			conflicts = append(conflicts, Conflict{
				ID:     localRecipe.ID,
				Reason: ConflictModified,
				Local:  localRecipe,
			})
		}
	}

	return effective, conflicts
}

// equalContent compares the user-editable fields of two recipes.
func equalContent(a, b Recipe) bool {
	if a.Title != b.Title || a.Image != b.Image || a.Calories != b.Calories {
		return false
	}
	if len(a.Ingredients) != len(b.Ingredients) {
		return false
	}
	for i := range a.Ingredients {
		if a.Ingredients[i] != b.Ingredients[i] {
			return false
		}
	}
	return true
}
