// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/store"
)

// TokenRepository implements auth.TokenRepository using PostgreSQL.
// Expiry is persisted as epoch milliseconds.
type TokenRepository struct {
	db store.TxQuerier
}

// NewTokenRepository creates a TokenRepository.
func NewTokenRepository(db store.TxQuerier) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a new token row.
func (r *TokenRepository) Create(ctx context.Context, token *auth.Token) error {
	err := store.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `
			INSERT INTO tokens (token, username, expires_at)
			VALUES ($1, $2, $3)
		`,
			token.Token,
			token.Username,
			token.ExpiresAt.UnixMilli(),
		)
		return execErr //nolint:wrapcheck // wrapped below with context
	})
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert token").
			With("username", token.Username).
			Wrap(err)
	}
	return nil
}

// Delete removes a token row by exact match. Deleting a token that does
// not exist is a valid no-op.
func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete token").
			Wrap(err)
	}
	return nil
}

// GetActive resolves a token to its principal, requiring an unexpired
// row joined to its credential.
func (r *TokenRepository) GetActive(ctx context.Context, token string, now time.Time) (*auth.Principal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT c.username, c.role
		FROM tokens t
		JOIN credentials c ON c.username = t.username
		WHERE t.token = $1 AND t.expires_at > $2
	`, token, now.UnixMilli())

	var (
		principal auth.Principal
		roleStr   string
	)
	err := row.Scan(&principal.Username, &roleStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_FAILED").
			With("operation", "get active token").
			Wrap(err)
	}

	principal.Role = auth.Role(roleStr)
	return &principal, nil
}

// DeleteExpired removes rows whose expiry has passed and returns the
// count of deleted records.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, now.UnixMilli())
	if err != nil {
		return 0, oops.Code("TOKEN_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.TokenRepository = (*TokenRepository)(nil)
