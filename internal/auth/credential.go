// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"time"
)

// Credential is a persisted account: the username, the password-derived
// key, and the salt used to derive it. The plaintext password is never
// stored. Username is the sole identifier; there is no surrogate id.
type Credential struct {
	Username     string
	Role         Role
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}

// Principal returns the identity carried by the credential.
func (c *Credential) Principal() Principal {
	return Principal{Username: c.Username, Role: c.Role}
}

// CredentialRepository manages credential persistence.
type CredentialRepository interface {
	// Create stores a new credential. Returns an error wrapping
	// ErrDuplicate if the username is already taken; it never
	// overwrites an existing row.
	Create(ctx context.Context, cred *Credential) error

	// GetByUsername retrieves a credential by username. Returns an
	// error wrapping ErrNotFound if no such account exists.
	GetByUsername(ctx context.Context, username string) (*Credential, error)
}
