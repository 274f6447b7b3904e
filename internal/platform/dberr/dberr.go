// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE classes) are mapped to
// domain-friendly [apperr.AppError] kinds so that no storage implementation
// detail leaks past the repository layer:
//
//   - no rows           → NOT_FOUND
//   - unique violation  → CONFLICT
//   - connection class  → SERVICE_UNAVAILABLE
//   - anything else     → INTERNAL_ERROR
package dberr

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/minhlq/savoro/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// resource names the entity for NOT_FOUND messages; conflictMsg is the
// client-safe message for unique-constraint violations.
func Wrap(err error, resource, conflictMsg string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream; pass through unchanged.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return apperr.Conflict(conflictMsg)
		case pgerrcode.IsConnectionException(pgErr.Code):
			return apperr.ServiceUnavailable("Database unavailable. Please try again later.")
		}
	}

	// 3. Transport-level failures: the server never opened or lost the
	// connection, or the pool could not acquire one in time.
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.ServiceUnavailable("Database unavailable. Please try again later.")
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
