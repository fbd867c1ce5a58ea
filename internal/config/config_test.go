// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatehouse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, int32(4), cfg.Database.PoolSize)
	assert.Equal(t, 10_000, cfg.Auth.Iterations)
	assert.Equal(t, 32, cfg.Auth.KeyLength)
	assert.Equal(t, 16, cfg.Auth.SaltLength)
	assert.Equal(t, 64, cfg.Auth.TokenBytes)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Minute, cfg.Auth.CacheTTL)
	assert.Equal(t, "127.0.0.1:9100", cfg.Observability.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://gatehouse@localhost/gatehouse
  pool_size: 8
auth:
  iterations: 20000
  cache_ttl: 30s
log:
  format: text
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://gatehouse@localhost/gatehouse", cfg.Database.URL)
	assert.Equal(t, int32(8), cfg.Database.PoolSize)
	assert.Equal(t, 20_000, cfg.Auth.Iterations)
	assert.Equal(t, 30*time.Second, cfg.Auth.CacheTTL)
	assert.Equal(t, "text", cfg.Log.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, 32, cfg.Auth.KeyLength)
	assert.Equal(t, "127.0.0.1:9100", cfg.Observability.Addr)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://file@localhost/gatehouse
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database.url", "", "")
	flags.String("log.format", "json", "")
	require.NoError(t, flags.Parse([]string{
		"--database.url", "postgres://flag@localhost/gatehouse",
		"--log.format", "text",
	}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag@localhost/gatehouse", cfg.Database.URL)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesEverything(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://file@localhost/gatehouse
`)
	t.Setenv("DATABASE_URL", "postgres://env@localhost/gatehouse")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/gatehouse", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "database: [not a map")

	cfg, err := Load(path, nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestConfig_ParamConversions(t *testing.T) {
	cfg := Default()
	cfg.Auth.Iterations = 123
	cfg.Auth.TokenBytes = 48
	cfg.Auth.TokenTTL = time.Hour

	assert.Equal(t, auth.KDFParams{Iterations: 123, KeyLength: 32, SaltLength: 16}, cfg.KDFParams())
	assert.Equal(t, auth.ServiceParams{TokenBytes: 48, TokenTTL: time.Hour}, cfg.ServiceParams())
}
