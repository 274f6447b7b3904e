// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/minhlq/savoro/internal/platform/apperr"
	"github.com/minhlq/savoro/internal/platform/constants"
	"github.com/minhlq/savoro/internal/platform/respond"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// StoreGuard fails data-touching routes fast with 503 while the database
// is unreachable, before any token verification or handler work runs.
//
// # Probe Caching
//
// Pinging the pool on every request would double query traffic, so the
// guard remembers the last verdict for [constants.StoreProbeInterval] and
// re-probes only once that window has elapsed. The cache follows the same
// mutex-guarded pattern as the rate limiter's client table.
type StoreGuard struct {
	ping Pinger

	mu        sync.Mutex
	lastErr   error
	lastProbe time.Time
}

// NewStoreGuard constructs a guard around the given availability probe.
func NewStoreGuard(ping Pinger) *StoreGuard {
	return &StoreGuard{ping: ping}
}

// Ready returns nil when the store was reachable at the last probe,
// or an [apperr.ServiceUnavailable] otherwise.
func (guard *StoreGuard) Ready(ctx context.Context) error {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if time.Since(guard.lastProbe) >= constants.StoreProbeInterval {
		probeCtx, cancel := context.WithTimeout(ctx, constants.StoreProbeTimeout)
		guard.lastErr = guard.ping(probeCtx)
		cancel()
		guard.lastProbe = time.Now()
	}

	if guard.lastErr != nil {
		return apperr.ServiceUnavailable("Database unavailable. Please try again later.")
	}
	return nil
}

// Middleware wraps a route group with the availability check.
func (guard *StoreGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := guard.Ready(request.Context()); err != nil {
			respond.Error(writer, request, err)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
