// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/sec"
	"github.com/minhlq/savoro/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, username string) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, signup,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
	}
}

// Session represents a successfully established identity: the freshly minted
// access token plus the account it belongs to.
type Session struct {
	Token string
	User  *User
}

// # Signup Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Username string
	Password string
}

/*
Signup validates, hashes, and persists a brand new user account, then issues
an access token so the client is logged in immediately.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *Session: Token and created entity
  - err: Conflict (if the username exists) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*Session, error) {

	// ── 1. Verify username uniqueness ──
	// A pre-check gives a clean Conflict for the common case; the UNIQUE
	// constraint still backstops concurrent signups of the same name.
	_, err := service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	// ── 2. Hash the password ──
	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 3. Persist the account ──
	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		PasswordHash: hashedPassword,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// ── 4. Issue the access token ──
	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_signup_token_failed: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username string
	Password string
}

/*
Login validates user credentials and issues an access token.

The rejection reason is deliberately not distinguished: an unknown username
and a wrong password both return the same Unauthorized error, so an attacker
cannot enumerate accounts.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Token and authenticated entity
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {

	user, err := service.userRepository.FindByUsername(context, input.Username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_token_failed: %w", err)
	}

	return &Session{Token: token, User: user}, nil
}

// # Profile

/*
Profile returns the account behind an authenticated request.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}
