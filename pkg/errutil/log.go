// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package errutil carries helpers for logging and asserting on
// oops-coded errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context when it is an oops
// error: message, code, and attached context. Plain errors log as-is.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}
	logger.Error(msg, "error", err)
}
