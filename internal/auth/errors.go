// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import "errors"

// Sentinel errors wrapped by the oops-coded errors returned from the
// repository and service layers. Callers branch with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")

	// ErrUnauthorized is returned when no valid session backs a request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a valid session lacks a required role.
	ErrForbidden = errors.New("forbidden")
)
