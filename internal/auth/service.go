// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/observability"
)

// ServiceParams bundle the token issuance knobs so tests can shrink
// them without touching production defaults.
type ServiceParams struct {
	// TokenBytes is the number of random bytes per issued token.
	TokenBytes int

	// TokenTTL is the durable lifetime of an issued token.
	TokenTTL time.Duration
}

func (p ServiceParams) withDefaults() ServiceParams {
	if p.TokenBytes <= 0 {
		p.TokenBytes = DefaultTokenBytes
	}
	if p.TokenTTL <= 0 {
		p.TokenTTL = DefaultTokenTTL
	}
	return p
}

// Session is the result of a successful login: the authenticated
// principal, the plaintext token handed to the client, and the durable
// expiry of that token.
type Session struct {
	Principal Principal
	Token     string
	ExpiresAt time.Time
}

// dummy key material verified against when a username does not exist,
// so lookup misses and password mismatches take the same code path.
// This is NOT a credential: no password derives to an all-zero key.
var (
	dummyKey  = make([]byte, 32)
	dummySalt = make([]byte, 16)
)

// Service provides authentication and authorization operations.
type Service struct {
	creds  CredentialRepository
	tokens TokenRepository
	hasher PasswordHasher
	cache  *TokenCache
	params ServiceParams
	logger *slog.Logger
}

// NewService creates a Service using the default logger.
func NewService(creds CredentialRepository, tokens TokenRepository, hasher PasswordHasher, cache *TokenCache, params ServiceParams) (*Service, error) {
	return NewServiceWithLogger(creds, tokens, hasher, cache, params, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(creds CredentialRepository, tokens TokenRepository, hasher PasswordHasher, cache *TokenCache, params ServiceParams, logger *slog.Logger) (*Service, error) {
	if creds == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("credentials repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("tokens repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if cache == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("token cache is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{
		creds:  creds,
		tokens: tokens,
		hasher: hasher,
		cache:  cache,
		params: params.withDefaults(),
		logger: logger,
	}, nil
}

// CreateUser derives a fresh key and salt for the password and inserts
// a credential row. Creating a username that already exists fails with
// a storage error wrapping ErrDuplicate; the original credential is
// never overwritten.
func (s *Service) CreateUser(ctx context.Context, role Role, username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if !role.Valid() {
		return oops.Code("AUTH_INVALID_ROLE").
			With("role", string(role)).
			Errorf("unknown role %q", string(role))
	}

	key, salt, err := s.hasher.Derive(password)
	if err != nil {
		return err
	}

	cred := &Credential{
		Username:     username,
		Role:         role,
		PasswordHash: key,
		Salt:         salt,
		CreatedAt:    time.Now(),
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return err
	}

	s.logger.Info("user created", "username", username, "role", string(role))
	return nil
}

// Login authenticates a username/password pair and issues a session
// token. Unknown usernames and wrong passwords both return (nil, nil):
// the two outcomes are indistinguishable at this boundary to prevent
// username enumeration, and key derivation runs either way to keep the
// response time flat.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	cred, lookupErr := s.creds.GetByUsername(ctx, username)

	targetKey, targetSalt := dummyKey, dummySalt
	credExists := false
	switch {
	case lookupErr == nil:
		targetKey, targetSalt = cred.PasswordHash, cred.Salt
		credExists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Verify against the dummy material below.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get credential by username").
			Wrap(lookupErr)
	}

	valid, err := s.hasher.Verify(password, targetKey, targetSalt)
	if err != nil {
		if !credExists {
			observability.RecordLogin("rejected")
			return nil, nil
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !credExists || !valid {
		s.logger.Debug("login rejected", "username", username)
		observability.RecordLogin("rejected")
		return nil, nil
	}

	token, err := GenerateToken(s.params.TokenBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row := &Token{
		Token:     token,
		Username:  cred.Username,
		ExpiresAt: now.Add(s.params.TokenTTL),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist token").
			Wrap(err)
	}

	principal := cred.Principal()
	s.cache.Store(token, principal)

	s.logger.Info("login succeeded", "username", username)
	observability.RecordLogin("success")
	return &Session{
		Principal: principal,
		Token:     token,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Logout deletes the token row by exact match. It is idempotent:
// logging out a token that does not exist is not an error. The cache
// entry is deliberately left in place, so a revoked token may still
// validate for up to the cache TTL.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete token").
			Wrap(err)
	}
	return nil
}

// ValidateToken resolves a token to its principal, or (nil, nil) when
// no live session backs it. The cache is consulted first; a hit within
// TTL returns without touching the store. On a miss the durable store
// is queried requiring an unexpired row, and the cache refreshed.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, nil
	}

	if principal, ok := s.cache.Lookup(token); ok {
		observability.RecordTokenValidation("cache")
		return &principal, nil
	}

	principal, err := s.tokens.GetActive(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.RecordTokenValidation("miss")
			return nil, nil
		}
		return nil, oops.Code("AUTH_VALIDATE_FAILED").
			With("operation", "get active token").
			Wrap(err)
	}

	s.cache.Store(token, *principal)
	observability.RecordTokenValidation("store")
	return principal, nil
}

// SweepExpiredTokens removes token rows whose expiry has passed and
// returns the count. Validity never depends on the sweep running:
// expiry is always enforced as a predicate at validation time. This
// only keeps the tokens table from accumulating dead rows.
func (s *Service) SweepExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired tokens swept", "count", n)
	}
	observability.RecordTokensSwept(n)
	return n, nil
}

// VerifyUser is the authorization gate exposed to the RPC layer. It
// fails with an Unauthorized error when the token has no live session,
// and Forbidden when the session's role is not among allowedRoles.
func (s *Service) VerifyUser(ctx context.Context, token string, allowedRoles ...Role) (*Principal, error) {
	principal, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, oops.Code("AUTH_UNAUTHORIZED").Wrap(ErrUnauthorized)
	}
	if !slices.Contains(allowedRoles, principal.Role) {
		return nil, oops.Code("AUTH_FORBIDDEN").
			With("username", principal.Username).
			With("role", string(principal.Role)).
			Wrap(ErrForbidden)
	}
	return principal, nil
}
