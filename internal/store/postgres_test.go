// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func TestConnect_RequiresURL(t *testing.T) {
	db, err := Connect(context.Background(), DBConfig{})
	require.Error(t, err)
	assert.Nil(t, db)
	errutil.AssertErrorCode(t, err, "STORE_CONFIG_INVALID")
}

func TestErrRow_DefersErrorToScan(t *testing.T) {
	wantErr := errors.New("pool exhausted")
	row := errRow{err: wantErr}

	var dest string
	assert.ErrorIs(t, row.Scan(&dest), wantErr)
}

func TestReleaseOnce(t *testing.T) {
	factory, made := newCountingFactory()
	pool, err := NewPool(PoolConfig[*fakeConn]{Factory: factory, Size: 1})
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()

	res, err := pool.Acquire(ctx)
	require.NoError(t, err)

	release := releaseOnce(res)
	release()
	release() // second call must be a no-op, not a double release

	res, err = pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), made.Load())
	res.Release()
}
