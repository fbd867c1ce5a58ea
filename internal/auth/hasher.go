// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// KDFParams configure the password key-derivation function. They are
// fixed at service construction so tests can shrink the iteration count
// without touching production defaults.
type KDFParams struct {
	// Iterations is the PBKDF2 iteration count.
	Iterations int

	// KeyLength is the derived key length in bytes.
	KeyLength int

	// SaltLength is the per-credential random salt length in bytes.
	SaltLength int
}

// DefaultKDFParams returns the production derivation parameters:
// PBKDF2 with HMAC-SHA-512, 10,000 iterations, a 256-bit key, and a
// 16-byte salt.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Iterations: 10_000,
		KeyLength:  32,
		SaltLength: 16,
	}
}

// ErrEmptyPassword is returned when attempting to derive an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher derives and verifies password keys.
type PasswordHasher interface {
	// Derive produces a fresh (key, salt) pair for the password.
	Derive(password string) (key, salt []byte, err error)

	// Verify re-derives the password with the stored salt and compares
	// against the stored key in constant time.
	// Returns (true, nil) on match, (false, nil) on mismatch.
	Verify(password string, key, salt []byte) (bool, error)
}

// PBKDF2Hasher implements PasswordHasher using PBKDF2 over HMAC-SHA-512.
type PBKDF2Hasher struct {
	params KDFParams
}

// NewPBKDF2Hasher validates the derivation parameters and creates a
// hasher. Parameter problems are environment-fixed, so they surface
// here as a configuration error rather than per call.
func NewPBKDF2Hasher(params KDFParams) (*PBKDF2Hasher, error) {
	if params.Iterations <= 0 {
		return nil, oops.Code("AUTH_CRYPTO_CONFIG").
			With("iterations", params.Iterations).
			Errorf("iteration count must be positive")
	}
	if params.KeyLength <= 0 {
		return nil, oops.Code("AUTH_CRYPTO_CONFIG").
			With("key_length", params.KeyLength).
			Errorf("key length must be positive")
	}
	if params.SaltLength <= 0 {
		return nil, oops.Code("AUTH_CRYPTO_CONFIG").
			With("salt_length", params.SaltLength).
			Errorf("salt length must be positive")
	}
	return &PBKDF2Hasher{params: params}, nil
}

// Derive produces a fresh (key, salt) pair for the password.
func (h *PBKDF2Hasher) Derive(password string) ([]byte, []byte, error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.params.Iterations, h.params.KeyLength, sha512.New)
	return key, salt, nil
}

// Verify re-derives the password with the stored salt and compares the
// result against the stored key in constant time.
func (h *PBKDF2Hasher) Verify(password string, key, salt []byte) (bool, error) {
	if len(key) == 0 || len(salt) == 0 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("stored key and salt cannot be empty")
	}

	computed := pbkdf2.Key([]byte(password), salt, h.params.Iterations, len(key), sha512.New)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*PBKDF2Hasher)(nil)
