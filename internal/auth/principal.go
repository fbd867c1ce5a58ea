// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// Role classifies a principal for authorization checks.
type Role string

// Known roles.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts a string into a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(s))
	if !role.Valid() {
		return "", oops.Code("AUTH_INVALID_ROLE").
			With("role", s).
			Errorf("unknown role %q", s)
	}
	return role, nil
}

// Principal is the authenticated identity returned to callers.
// It never carries secret material.
type Principal struct {
	Username string
	Role     Role
}

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername validates a username against the account rules.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}
