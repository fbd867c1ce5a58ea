// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DefaultPoolSize is the connection pool capacity used when the
// configuration does not set one. A single connection is a valid
// minimal deployment; the pool then serializes all store work.
const DefaultPoolSize = 4

// Querier is the statement-execution subset shared by *DB, pgx.Tx, and
// pgxmock pools. Repositories depend on this rather than on a concrete
// handle.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxQuerier adds transaction control to Querier.
type TxQuerier interface {
	Querier
	Beginner
}

// DBConfig configures a database handle.
type DBConfig struct {
	// URL is the PostgreSQL connection string.
	URL string

	// PoolSize is the fixed connection pool capacity. Defaults to
	// DefaultPoolSize when non-positive.
	PoolSize int32
}

// DB is a pooled PostgreSQL handle. Each statement checks a connection
// out of the pool and returns it when the statement (or the row
// iteration it produced) finishes; Begin holds the connection until
// the transaction commits or rolls back.
type DB struct {
	pool *Pool[*pgx.Conn]
}

// Connect builds the connection pool and verifies connectivity with a
// bounded exponential backoff before returning. Connections themselves
// are constructed lazily on first acquisition.
func Connect(ctx context.Context, cfg DBConfig) (*DB, error) {
	if cfg.URL == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("database URL is required")
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool, err := NewPool(PoolConfig[*pgx.Conn]{
		Factory: func(ctx context.Context) (*pgx.Conn, error) {
			return pgx.Connect(ctx, cfg.URL)
		},
		Reset: func(conn *pgx.Conn) error {
			if conn.IsClosed() {
				return oops.Errorf("connection closed")
			}
			return nil
		},
		Close: func(conn *pgx.Conn) {
			_ = conn.Close(context.Background()) //nolint:errcheck // best effort teardown
		},
		Size: size,
	})
	if err != nil {
		return nil, err
	}

	db := &DB{pool: pool}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(250*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := db.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}

	return db, nil
}

// Ping verifies a connection can be acquired and the server answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.WithResource(ctx, func(conn *pgx.Conn) error {
		return conn.Ping(ctx) //nolint:wrapcheck // caller adds context
	})
}

// Close shuts the pool down.
func (db *DB) Close() {
	db.pool.Close()
}

// Exec runs a statement on a pooled connection.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	res, err := db.pool.Acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer res.Release()
	return res.Value().Exec(ctx, sql, args...) //nolint:wrapcheck // repositories wrap with context
}

// Query runs a query on a pooled connection. The connection is returned
// to the pool when the caller closes the rows; callers must always
// close them.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	res, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := res.Value().Query(ctx, sql, args...)
	if err != nil {
		res.Release()
		return nil, err //nolint:wrapcheck // repositories wrap with context
	}
	return &poolRows{Rows: rows, release: releaseOnce(res)}, nil
}

// QueryRow runs a single-row query on a pooled connection. The
// connection is returned when Scan completes.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	res, err := db.pool.Acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &poolRow{row: res.Value().QueryRow(ctx, sql, args...), release: releaseOnce(res)}
}

// Begin starts a transaction. The backing connection stays checked out
// until Commit or Rollback; it is never returned mid-transaction.
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	res, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := res.Value().Begin(ctx)
	if err != nil {
		res.Release()
		return nil, err //nolint:wrapcheck // WithTx wraps with context
	}
	return &poolTx{Tx: tx, release: releaseOnce(res)}, nil
}

// WithTx runs fn inside a transaction on a single pooled connection.
func (db *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return WithTx(ctx, db, fn)
}

// releaseOnce wraps a resource release so wrappers can call it from
// multiple paths safely.
func releaseOnce[T any](res *Resource[T]) func() {
	var once sync.Once
	return func() {
		once.Do(res.Release)
	}
}

// poolRows returns the connection to the pool when closed.
type poolRows struct {
	pgx.Rows
	release func()
}

func (r *poolRows) Close() {
	r.Rows.Close()
	r.release()
}

// poolRow returns the connection to the pool after Scan.
type poolRow struct {
	row     pgx.Row
	release func()
}

func (r *poolRow) Scan(dest ...any) error {
	defer r.release()
	return r.row.Scan(dest...) //nolint:wrapcheck // repositories wrap with context
}

// errRow defers an acquisition error to Scan, matching the lazy pgx.Row
// contract.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

// poolTx releases the backing connection after the transaction closes.
type poolTx struct {
	pgx.Tx
	release func()
}

func (t *poolTx) Commit(ctx context.Context) error {
	defer t.release()
	return t.Tx.Commit(ctx) //nolint:wrapcheck // WithTx wraps with context
}

func (t *poolTx) Rollback(ctx context.Context) error {
	defer t.release()
	return t.Tx.Rollback(ctx) //nolint:wrapcheck // WithTx wraps with context
}

// Compile-time interface checks.
var (
	_ TxQuerier = (*DB)(nil)
	_ pgx.Rows  = (*poolRows)(nil)
	_ pgx.Row   = (*poolRow)(nil)
	_ pgx.Tx    = (*poolTx)(nil)
)
