// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads gatehouse configuration from defaults, an
// optional YAML file, command-line flags, and the DATABASE_URL
// environment variable, in that precedence order.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/store"
)

// DatabaseConfig configures the store connection.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	PoolSize int32  `koanf:"pool_size"`
}

// AuthConfig configures key derivation, token issuance, and the cache.
type AuthConfig struct {
	Iterations int           `koanf:"iterations"`
	KeyLength  int           `koanf:"key_length"`
	SaltLength int           `koanf:"salt_length"`
	TokenBytes int           `koanf:"token_bytes"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// ObservabilityConfig configures the metrics/health endpoint.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Config is the full gatehouse configuration.
type Config struct {
	Database      DatabaseConfig      `koanf:"database"`
	Auth          AuthConfig          `koanf:"auth"`
	Observability ObservabilityConfig `koanf:"observability"`
	Log           LogConfig           `koanf:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	kdf := auth.DefaultKDFParams()
	return Config{
		Database: DatabaseConfig{
			PoolSize: store.DefaultPoolSize,
		},
		Auth: AuthConfig{
			Iterations: kdf.Iterations,
			KeyLength:  kdf.KeyLength,
			SaltLength: kdf.SaltLength,
			TokenBytes: auth.DefaultTokenBytes,
			TokenTTL:   auth.DefaultTokenTTL,
			CacheTTL:   auth.DefaultCacheTTL,
		},
		Observability: ObservabilityConfig{
			Addr: "127.0.0.1:9100",
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load builds the configuration. path is an optional YAML file; flags
// is an optional flag set whose dotted names (e.g. "database.url")
// overlay the file. DATABASE_URL, when set, wins over both.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "overlay flags").
				Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	return &cfg, nil
}

// KDFParams converts the auth section into hasher parameters.
func (c *Config) KDFParams() auth.KDFParams {
	return auth.KDFParams{
		Iterations: c.Auth.Iterations,
		KeyLength:  c.Auth.KeyLength,
		SaltLength: c.Auth.SaltLength,
	}
}

// ServiceParams converts the auth section into service parameters.
func (c *Config) ServiceParams() auth.ServiceParams {
	return auth.ServiceParams{
		TokenBytes: c.Auth.TokenBytes,
		TokenTTL:   c.Auth.TokenTTL,
	}
}
