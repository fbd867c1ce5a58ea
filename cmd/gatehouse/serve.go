// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gatehouse service process",
		Long: `Run the gatehouse service process: connects to PostgreSQL, exposes
metrics and health probes, and periodically sweeps expired token rows.
The RPC surface is mounted by the embedding process.`,
		RunE: runServe,
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("observability.addr", def.Observability.Addr, "metrics/health listen address")
	cmd.Flags().String("log.format", def.Log.Format, "log format (json or text)")
	cmd.Flags().Bool("auto-migrate", false, "apply pending schema migrations on startup")
	cmd.Flags().Duration("sweep-interval", time.Hour, "expired token sweep interval (0 disables)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	logging.SetDefault("gatehouse", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, store.DBConfig{
		URL:      cfg.Database.URL,
		PoolSize: cfg.Database.PoolSize,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err := applyMigrations(cfg.Database.URL); err != nil {
			return err
		}
	}

	hasher, err := auth.NewPBKDF2Hasher(cfg.KDFParams())
	if err != nil {
		return err
	}
	svc, err := auth.NewServiceWithLogger(
		authpg.NewCredentialRepository(db),
		authpg.NewTokenRepository(db),
		hasher,
		auth.NewTokenCache(cfg.Auth.CacheTTL),
		cfg.ServiceParams(),
		logger,
	)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return db.Ping(pingCtx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	sweepInterval, _ := cmd.Flags().GetDuration("sweep-interval")
	logger.Info("gatehouse ready", "observability_addr", obs.Addr(), "sweep_interval", sweepInterval.String())

	runErr := serveLoop(ctx, logger, svc, sweepInterval, obsErrCh)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obs.Stop(stopCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}
	return runErr
}

// serveLoop blocks until the context is cancelled or the observability
// server fails, running the expired token sweep on its interval.
func serveLoop(ctx context.Context, logger *slog.Logger, svc *auth.Service, sweepInterval time.Duration, obsErrCh <-chan error) error {
	var sweepCh <-chan time.Time
	if sweepInterval > 0 {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		sweepCh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case err, ok := <-obsErrCh:
			if !ok {
				return nil
			}
			return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		case <-sweepCh:
			if _, err := svc.SweepExpiredTokens(ctx); err != nil {
				errutil.LogError(logger, "token sweep failed", err)
			}
		}
	}
}

// applyMigrations runs all pending migrations against the database.
func applyMigrations(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // best effort cleanup
	}()
	return migrator.Up()
}
