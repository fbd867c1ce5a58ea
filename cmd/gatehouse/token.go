// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/store"
)

// NewTokenCmd creates the token command group.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage session tokens",
	}
	cmd.AddCommand(newTokenSweepCmd())
	return cmd
}

func newTokenSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired token rows",
		Long: `Delete token rows whose expiry has passed. Expired tokens are already
unusable; this only reclaims table space.`,
		RunE: runTokenSweep,
	}
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	return cmd
}

func runTokenSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx := cmd.Context()
	db, err := store.Connect(ctx, store.DBConfig{
		URL:      cfg.Database.URL,
		PoolSize: 1,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newService(cfg, db)
	if err != nil {
		return err
	}

	n, err := svc.SweepExpiredTokens(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Swept %d expired token(s)\n", n)
	return nil
}
