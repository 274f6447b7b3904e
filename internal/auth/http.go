// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhlq/savoro/internal/platform/middleware"
	requestutil "github.com/minhlq/savoro/internal/platform/request"
	"github.com/minhlq/savoro/internal/platform/respond"
	"github.com/minhlq/savoro/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// This layer is strictly responsible for transport concerns (status codes,
// headers, JSON); all business rules live in [Service].
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup : Creates a new account and returns a JWT.
//   - POST /login  : Authenticates and returns a JWT.
//   - GET  /me     : Returns the authenticated identity.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request & Response Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionResponse is the flat body returned by both signup and login.
type sessionResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// identityResponse echoes the claims of the presented token.
type identityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

/*
Signup handles the creation of a new user account.

POST /api/auth/signup

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 201: sessionResponse: Token plus the created identity
  - 400: Bad input or validation failure
  - 409: Username already exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, MinUsernameLength).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	session, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, sessionResponse{
		Token:    session.Token,
		ID:       session.User.ID,
		Username: session.User.Username,
	})
}

/*
Login authenticates an existing account.

POST /api/auth/login

Request:
  - Body: credentialsRequest (Username, Password)

Response:
  - 200: sessionResponse: Token plus the authenticated identity
  - 400: Bad input or validation failure
  - 401: Invalid credentials (reason is never distinguished)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionResponse{
		Token:    session.Token,
		ID:       session.User.ID,
		Username: session.User.Username,
	})
}

/*
Me returns the identity embedded in the presented access token.

GET /api/auth/me

Response:
  - 200: identityResponse
  - 401: Missing or invalid token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identityResponse{
		ID:       claims.UserID,
		Username: claims.Username,
	})
}
