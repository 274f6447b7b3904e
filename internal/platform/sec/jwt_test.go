// Copyright (c) 2026 Savoro. All rights reserved.
// Author: minh.lq.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/savoro/internal/platform/sec"
)

func newTestService(t *testing.T, ttl time.Duration) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("test-secret-at-least-long-enough", "savoro.test", ttl)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a generated token carries back
the identity that issued it.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestService(t, time.Hour)

	token, err := service.GenerateAccessToken("user-123", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "savoro.test", claims.Issuer)
	assert.Equal(t, "user-123", claims.Subject)
}

/*
TestTokenService_TamperedSignature ensures any alteration of the signed
payload is rejected.
*/
func TestTokenService_TamperedSignature(t *testing.T) {
	service := newTestService(t, time.Hour)

	token, err := service.GenerateAccessToken("user-123", "alice")
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = service.VerifyToken(tampered)
	assert.Error(t, err)
}

/*
TestTokenService_WrongSecret checks tokens signed by another service fail.
*/
func TestTokenService_WrongSecret(t *testing.T) {
	service := newTestService(t, time.Hour)
	other, err := sec.NewTokenService("a-completely-different-secret-key", "savoro.test", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateAccessToken("user-123", "alice")
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_Expired checks that an expired token is rejected.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestService(t, -time.Minute)

	token, err := service.GenerateAccessToken("user-123", "alice")
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestTokenService_Garbage checks malformed input never verifies.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTestService(t, time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(input)
		assert.Error(t, err, "input %q must not verify", input)
	}
}

/*
TestNewTokenService_EmptySecret rejects construction without a secret.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "savoro.test", time.Hour)
	assert.Error(t, err)
}

/*
TestHashPassword_CheckRoundTrip covers the bcrypt hash-and-compare contract.
*/
func TestHashPassword_CheckRoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	assert.True(t, sec.CheckPasswordHash("secret1", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
	assert.False(t, sec.CheckPasswordHash("secret1", "not-a-hash"))
}
