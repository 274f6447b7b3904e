// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package recipe

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhlq/savoro/internal/platform/middleware"
	requestutil "github.com/minhlq/savoro/internal/platform/request"
	"github.com/minhlq/savoro/internal/platform/respond"
	"github.com/minhlq/savoro/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements recipe-related HTTP endpoints.
type Handler struct {
	recipeService        *Service
	allowAnonymousCreate bool
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// allowAnonymousCreate mounts the unauthenticated compatibility route; when
// false, the path simply does not exist.
func NewHandler(service *Service, allowAnonymousCreate bool) *Handler {
	return &Handler{
		recipeService:        service,
		allowAnonymousCreate: allowAnonymousCreate,
	}
}

// Routes returns a [chi.Router] configured with recipe-specific routes.
//
// # Endpoints
//   - GET    /           : Lists the caller's recipes.
//   - GET    /count      : Returns the caller's recipe count.
//   - POST   /           : Creates a recipe owned by the caller.
//   - POST   /anonymous  : Creates an unowned recipe (toggle, see NewHandler).
//   - PUT    /{id}       : Partially updates an owned recipe.
//   - DELETE /{id}       : Deletes an owned recipe.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	if handler.allowAnonymousCreate {
		router.Post("/anonymous", handler.createAnonymous)
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.list)
		r.Get("/count", handler.count)
		r.Post("/", handler.create)
		r.Put("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
	})

	return router
}

// # Request & Response Payloads

type createRequest struct {
	Title       string       `json:"title"`
	Image       string       `json:"image"`
	Calories    float64      `json:"calories"`
	Ingredients []Ingredient `json:"ingredients"`
}

type anonymousCreateRequest struct {
	createRequest
	OwnerID string `json:"owner_id"`
}

type updateRequest struct {
	Title       string       `json:"title"`
	Image       string       `json:"image"`
	Calories    float64      `json:"calories"`
	Ingredients []Ingredient `json:"ingredients"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type deleteResponse struct {
	OK bool `json:"ok"`
}

/*
List returns the caller's recipes, newest first.

GET /api/recipes

Response:
  - 200: [Recipe…] (bare array, empty when the caller owns nothing)
  - 401: Missing or invalid token
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipes, err := handler.recipeService.List(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipes)
}

/*
Count returns the caller's recipe count.

GET /api/recipes/count

Response:
  - 200: countResponse
  - 401: Missing or invalid token
*/
func (handler *Handler) count(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.recipeService.Count(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, countResponse{Count: count})
}

/*
Create persists a new recipe owned by the caller.

POST /api/recipes

The owner comes from the verified token, never from the request body.

Request:
  - Body: createRequest (Title required)

Response:
  - 201: Recipe
  - 400: Bad input or missing title
  - 401: Missing or invalid token
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title)
	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	recipe, err := handler.recipeService.Create(request.Context(), ownerID, CreateInput{
		Title:       input.Title,
		Image:       input.Image,
		Calories:    input.Calories,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recipe)
}

/*
CreateAnonymous persists a recipe without authentication.

POST /api/recipes/anonymous

Compatibility route, mounted only when anonymous creation is enabled. The
owner_id is client-asserted: it must be a valid UUID when present and is
stored verbatim, or omitted to create an unowned recipe.

Request:
  - Body: anonymousCreateRequest (Title required, OwnerID optional)

Response:
  - 201: Recipe
  - 400: Bad input, missing title, or malformed owner_id
*/
func (handler *Handler) createAnonymous(writer http.ResponseWriter, request *http.Request) {
	var input anonymousCreateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	badOwnerID := false
	if input.OwnerID != "" {
		_, err := uuid.Parse(input.OwnerID)
		badOwnerID = err != nil
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		Custom("owner_id", badOwnerID, "Must be a valid UUID")
	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	recipe, err := handler.recipeService.CreateAnonymous(request.Context(), input.OwnerID, CreateInput{
		Title:       input.Title,
		Image:       input.Image,
		Calories:    input.Calories,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recipe)
}

/*
Update applies a partial update to an owned recipe.

PUT /api/recipes/{id}

Empty or zero fields keep their stored values; a present-but-empty
ingredients array replaces the stored list.

Response:
  - 200: Recipe (state after the update)
  - 401: Missing or invalid token
  - 403: Recipe exists but belongs to someone else
  - 404: No recipe with this id
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recipe, err := handler.recipeService.Update(request.Context(), ownerID, requestutil.ID(request, "id"), UpdateInput{
		Title:       input.Title,
		Image:       input.Image,
		Calories:    input.Calories,
		Ingredients: input.Ingredients,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipe)
}

/*
Remove deletes an owned recipe.

DELETE /api/recipes/{id}

Response:
  - 200: deleteResponse {ok:true}
  - 401: Missing or invalid token
  - 403: Recipe exists but belongs to someone else
  - 404: No recipe with this id (including repeat deletes)
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.recipeService.Delete(request.Context(), ownerID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, deleteResponse{OK: true})
}
