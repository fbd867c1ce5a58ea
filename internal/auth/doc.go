// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth implements credential storage, session token issuance,
// and token validation. It owns the password hashing policy and the
// short-lived validation cache layered over the durable token store.
package auth
