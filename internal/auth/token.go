// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/samber/oops"
)

// Token issuance configuration.
const (
	// DefaultTokenBytes is the number of random bytes per session token.
	// The wire form is the base64 encoding of these bytes.
	DefaultTokenBytes = 64

	// DefaultTokenTTL is the durable lifetime of an issued token.
	DefaultTokenTTL = 30 * 24 * time.Hour
)

// Token is an active session grant: an opaque random identifier mapped
// to a username with an expiry. A username may own several live tokens
// at once (multi-device). A token authenticates iff the row still
// exists and the expiry is in the future; expiry is a predicate, not a
// deletion.
type Token struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// GenerateToken returns the base64 encoding of n cryptographically
// random bytes.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("requested_bytes", n).
			Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// TokenRepository manages session token persistence.
type TokenRepository interface {
	// Create stores a new token row.
	Create(ctx context.Context, token *Token) error

	// Delete removes a token by exact match. Deleting a token that
	// does not exist is not an error.
	Delete(ctx context.Context, token string) error

	// GetActive resolves a token to its principal, requiring the row
	// to exist with an expiry after now. Returns an error wrapping
	// ErrNotFound for absent or expired tokens.
	GetActive(ctx context.Context, token string, now time.Time) (*Principal, error)

	// DeleteExpired removes rows whose expiry has passed and returns
	// the count. Purely hygiene: validity never depends on it.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
