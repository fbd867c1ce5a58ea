// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// fakeMigrate implements migrateIface without a live database.
type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	srcErr     error
	dbErr      error

	upCalls   int
	downCalls int
}

func (f *fakeMigrate) Up() error {
	f.upCalls++
	return f.upErr
}

func (f *fakeMigrate) Down() error {
	f.downCalls++
	return f.downErr
}

func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func (f *fakeMigrate) Close() (error, error) {
	return f.srcErr, f.dbErr
}

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name    string
		upErr   error
		wantErr bool
	}{
		{"applies pending migrations", nil, false},
		{"no change is not an error", migrate.ErrNoChange, false},
		{"failure surfaces", errors.New("syntax error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMigrate{upErr: tt.upErr}
			m := &Migrator{m: fake}

			err := m.Up()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, 1, fake.upCalls)
		})
	}
}

func TestMigrator_Down(t *testing.T) {
	tests := []struct {
		name    string
		downErr error
		wantErr bool
	}{
		{"rolls migrations back", nil, false},
		{"no change is not an error", migrate.ErrNoChange, false},
		{"failure surfaces", errors.New("syntax error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMigrate{downErr: tt.downErr}
			m := &Migrator{m: fake}

			err := m.Down()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, 1, fake.downCalls)
		})
	}
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports the applied version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 2, dirty: false}}

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
		assert.False(t, dirty)
	})

	t.Run("reports dirty state", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 2, dirty: true}}

		_, dirty, err := m.Version()
		require.NoError(t, err)
		assert.True(t, dirty)
	})

	t.Run("nil version means nothing applied", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("failure surfaces", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection refused")}}

		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name    string
		srcErr  error
		dbErr   error
		wantErr bool
	}{
		{"clean close", nil, nil, false},
		{"source error", errors.New("source"), nil, true},
		{"database error", nil, errors.New("database"), true},
		{"both fail", errors.New("source"), errors.New("database"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{srcErr: tt.srcErr, dbErr: tt.dbErr}}

			err := m.Close()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	// Each version needs both directions so Down can fully unwind, and
	// the version prefixes define the apply order.
	assert.Equal(t, []string{
		"000001_create_credentials.down.sql",
		"000001_create_credentials.up.sql",
		"000002_create_tokens.down.sql",
		"000002_create_tokens.up.sql",
	}, names)
}
