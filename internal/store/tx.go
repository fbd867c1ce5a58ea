// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// Beginner begins a transaction. Satisfied by *DB and by pgxmock pools.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx begins a transaction, runs fn, and commits if fn returns nil.
// On error or panic the transaction is rolled back and the original
// error (or panic) propagates. Transactions are flat: fn must not begin
// another one. The connection backing the transaction is only returned
// to the pool after commit or rollback completes.
func WithTx(ctx context.Context, db Beginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return oops.Code("STORE_TX_BEGIN_FAILED").Wrap(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx) //nolint:errcheck // the panic takes precedence
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx) //nolint:errcheck // fn's error takes precedence
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("STORE_TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}
