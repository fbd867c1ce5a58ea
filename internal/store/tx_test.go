// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE widgets").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), mock, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(context.Background(), "UPDATE widgets SET n = n + 1")
		return execErr
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err = WithTx(context.Background(), mock, func(pgx.Tx) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr, "fn's error propagates unchanged")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTx(context.Background(), mock, func(pgx.Tx) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err = WithTx(context.Background(), mock, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called, "fn must not run without a transaction")
	errutil.AssertErrorCode(t, err, "STORE_TX_BEGIN_FAILED")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))

	err = WithTx(context.Background(), mock, func(pgx.Tx) error {
		return nil
	})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORE_TX_COMMIT_FAILED")
	require.NoError(t, mock.ExpectationsWereMet())
}
