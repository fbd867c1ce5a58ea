// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package postgres implements the auth repositories over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/store"
)

// CredentialRepository implements auth.CredentialRepository using
// PostgreSQL.
type CredentialRepository struct {
	db store.TxQuerier
}

// NewCredentialRepository creates a CredentialRepository.
func NewCredentialRepository(db store.TxQuerier) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create stores a new credential. A duplicate username maps the unique
// violation to an error wrapping auth.ErrDuplicate; the existing row is
// left untouched.
func (r *CredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	err := store.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `
			INSERT INTO credentials (username, role, password_hash, salt, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			cred.Username,
			string(cred.Role),
			cred.PasswordHash,
			cred.Salt,
			cred.CreatedAt,
		)
		return execErr //nolint:wrapcheck // wrapped below with context
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("CREDENTIAL_EXISTS").
				With("username", cred.Username).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("CREDENTIAL_CREATE_FAILED").
			With("operation", "insert credential").
			With("username", cred.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a credential by username.
func (r *CredentialRepository) GetByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT username, role, password_hash, salt, created_at
		FROM credentials
		WHERE username = $1
	`, username)

	var (
		cred    auth.Credential
		roleStr string
		created time.Time
	)
	err := row.Scan(&cred.Username, &roleStr, &cred.PasswordHash, &cred.Salt, &created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_FAILED").
			With("operation", "get credential by username").
			With("username", username).
			Wrap(err)
	}

	cred.Role = auth.Role(roleStr)
	cred.CreatedAt = created
	return &cred, nil
}

// Compile-time interface check.
var _ auth.CredentialRepository = (*CredentialRepository)(nil)
