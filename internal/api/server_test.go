// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/savoro/internal/api"
	"github.com/minhlq/savoro/internal/auth"
	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/config"
	"github.com/minhlq/savoro/internal/platform/constants"
	"github.com/minhlq/savoro/internal/platform/middleware"
	"github.com/minhlq/savoro/internal/platform/sec"
	"github.com/minhlq/savoro/internal/recipe"
)

// # In-Memory Stores

type memoryUserRepository struct {
	byID       map[string]*auth.User
	byUsername map[string]*auth.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{
		byID:       make(map[string]*auth.User),
		byUsername: make(map[string]*auth.User),
	}
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *memoryUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	user, ok := repo.byUsername[username]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	if _, exists := repo.byUsername[user.Username]; exists {
		return apperr.Conflict("Username is already taken")
	}
	repo.byID[user.ID] = user
	repo.byUsername[user.Username] = user
	return nil
}

type memoryRecipeRepository struct {
	recipes map[string]*recipe.Recipe
}

func newMemoryRecipeRepository() *memoryRecipeRepository {
	return &memoryRecipeRepository{recipes: make(map[string]*recipe.Recipe)}
}

func (repo *memoryRecipeRepository) ListByOwner(_ context.Context, ownerID string) ([]recipe.Recipe, error) {
	result := make([]recipe.Recipe, 0)
	for _, r := range repo.recipes {
		if r.OwnerID == ownerID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (repo *memoryRecipeRepository) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	var count int64
	for _, r := range repo.recipes {
		if r.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (repo *memoryRecipeRepository) FindByID(_ context.Context, id string) (*recipe.Recipe, error) {
	r, ok := repo.recipes[id]
	if !ok {
		return nil, apperr.NotFound("Recipe")
	}
	clone := *r
	return &clone, nil
}

func (repo *memoryRecipeRepository) Create(_ context.Context, r *recipe.Recipe) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	clone := *r
	repo.recipes[r.ID] = &clone
	return nil
}

func (repo *memoryRecipeRepository) Update(_ context.Context, r *recipe.Recipe) error {
	if _, ok := repo.recipes[r.ID]; !ok {
		return apperr.NotFound("Recipe")
	}
	clone := *r
	repo.recipes[r.ID] = &clone
	return nil
}

func (repo *memoryRecipeRepository) Delete(_ context.Context, id string) error {
	if _, ok := repo.recipes[id]; !ok {
		return apperr.NotFound("Recipe")
	}
	delete(repo.recipes, id)
	return nil
}

type memoryCountCache struct {
	counts map[string]int64
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
	delete(cache.counts, ownerID)
	return nil
}

// # Test Server Assembly

type testServerOptions struct {
	allowAnonymousCreate bool
	storePing            middleware.Pinger
}

func newTestServer(t *testing.T, opts testServerOptions) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerPort:           "0",
		Environment:          "development",
		AllowAnonymousCreate: opts.allowAnonymousCreate,
	}

	logger := slog.Default()

	jwtSvc, err := sec.NewTokenService("test-secret", constants.AuthIssuer, constants.AccessTokenTTL)
	require.NoError(t, err)

	authService := auth.NewService(newMemoryUserRepository(), jwtSvc)
	recipeService := recipe.NewService(newMemoryRecipeRepository(), newMemoryCountCache(), logger)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			if opts.storePing != nil {
				return opts.storePing(context.Background())
			}
			return nil
		},
	}, logger)

	ping := opts.storePing
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}

	server := api.NewServer(context.Background(), cfg, logger, jwtSvc, middleware.NewStoreGuard(ping), api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Recipe:    recipe.NewHandler(recipeService, cfg.AllowAnonymousCreate),
	})

	testServer := httptest.NewServer(server.Router())
	t.Cleanup(testServer.Close)
	return testServer
}

// doJSON issues a request with an optional bearer token and decodes the body.
func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(response.Body).Decode(out))
	}
	return response.StatusCode
}

type sessionBody struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// # End-to-End Scenarios

func TestSignupLoginRecipeLifecycle(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	// Signup alice.
	var alice sessionBody
	status := doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "alice", "password": "secret1"}, &alice)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, alice.Token)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice", alice.Username)

	// Wrong password is rejected with an opaque 401.
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Correct login returns the same identity.
	var aliceAgain sessionBody
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "secret1"}, &aliceAgain)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, alice.ID, aliceAgain.ID)

	// Bob signs up too.
	var bob sessionBody
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "bob", "password": "secret2"}, &bob)
	require.Equal(t, http.StatusCreated, status)

	// Alice creates a recipe; ownership comes from her token.
	var soup recipe.Recipe
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/recipes", alice.Token,
		map[string]any{"title": "Soup"}, &soup)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Soup", soup.Title)
	assert.Equal(t, alice.ID, soup.OwnerID)

	// Bob cannot delete it.
	status = doJSON(t, client, http.MethodDelete, server.URL+"/api/recipes/"+soup.ID, bob.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Alice can.
	var deleted map[string]bool
	status = doJSON(t, client, http.MethodDelete, server.URL+"/api/recipes/"+soup.ID, alice.Token, nil, &deleted)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, deleted["ok"])

	// Her list is now empty (a bare array, not null).
	var recipes []recipe.Recipe
	status = doJSON(t, client, http.MethodGet, server.URL+"/api/recipes", alice.Token, nil, &recipes)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestDuplicateSignupConflict(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	status := doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "alice", "password": "secret1"}, nil)
	require.Equal(t, http.StatusCreated, status)

	var errBody map[string]any
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "alice", "password": "other66"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username is already taken", errBody["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/recipes"},
		{http.MethodGet, "/api/recipes/count"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodPut, "/api/recipes/some-id"},
		{http.MethodDelete, "/api/recipes/some-id"},
		{http.MethodGet, "/api/auth/me"},
	}

	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.path, func(t *testing.T) {
			status := doJSON(t, client, tt.method, server.URL+tt.path, "", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}
}

func TestCountEndpoint(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	var alice sessionBody
	status := doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "alice", "password": "secret1"}, &alice)
	require.Equal(t, http.StatusCreated, status)

	for _, title := range []string{"Soup", "Bread", "Salad"} {
		status = doJSON(t, client, http.MethodPost, server.URL+"/api/recipes", alice.Token,
			map[string]any{"title": title}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var count map[string]int64
	status = doJSON(t, client, http.MethodGet, server.URL+"/api/recipes/count", alice.Token, nil, &count)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), count["count"])
}

func TestStoreUnavailableBeforeAuth(t *testing.T) {
	server := newTestServer(t, testServerOptions{
		storePing: func(context.Context) error { return errors.New("connection refused") },
	})
	client := server.Client()

	// Every /api route answers 503, bearer token or not.
	status := doJSON(t, client, http.MethodPost, server.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status = doJSON(t, client, http.MethodGet, server.URL+"/api/recipes", "garbage-token", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	// The liveness probe stays 200 and reports the degraded store.
	var health map[string]any
	status = doJSON(t, client, http.MethodGet, server.URL+"/health", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["dbReady"])
}

func TestHealthReportsStoreReady(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	var health map[string]any
	status := doJSON(t, client, http.MethodGet, server.URL+"/health", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["dbReady"])
}

func TestAnonymousCreateToggle(t *testing.T) {
	t.Run("disabled_by_default", func(t *testing.T) {
		server := newTestServer(t, testServerOptions{})
		status := doJSON(t, server.Client(), http.MethodPost, server.URL+"/api/recipes/anonymous", "",
			map[string]any{"title": "Mystery Stew"}, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("enabled_by_config", func(t *testing.T) {
		server := newTestServer(t, testServerOptions{allowAnonymousCreate: true})

		var created recipe.Recipe
		status := doJSON(t, server.Client(), http.MethodPost, server.URL+"/api/recipes/anonymous", "",
			map[string]any{"title": "Mystery Stew"}, &created)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Mystery Stew", created.Title)
		assert.Empty(t, created.OwnerID)
	})
}

func TestPartialUpdateOverHTTP(t *testing.T) {
	server := newTestServer(t, testServerOptions{})
	client := server.Client()

	var alice sessionBody
	status := doJSON(t, client, http.MethodPost, server.URL+"/api/auth/signup", "",
		map[string]string{"username": "alice", "password": "secret1"}, &alice)
	require.Equal(t, http.StatusCreated, status)

	var soup recipe.Recipe
	status = doJSON(t, client, http.MethodPost, server.URL+"/api/recipes", alice.Token,
		map[string]any{"title": "Soup", "calories": 120}, &soup)
	require.Equal(t, http.StatusCreated, status)

	// Omitted fields keep their stored values.
	var updated recipe.Recipe
	status = doJSON(t, client, http.MethodPut, server.URL+"/api/recipes/"+soup.ID, alice.Token,
		map[string]any{"image": "soup.jpg"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Soup", updated.Title)
	assert.Equal(t, float64(120), updated.Calories)
	assert.Equal(t, "soup.jpg", updated.Image)

	// Updating a missing recipe is 404.
	status = doJSON(t, client, http.MethodPut, server.URL+"/api/recipes/does-not-exist", alice.Token,
		map[string]any{"title": "X"}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
