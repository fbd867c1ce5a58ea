// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Apply all pending schema migrations against the PostgreSQL database.`,
		RunE:  runMigrate,
	}
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().Bool("down", false, "roll all migrations back instead (destructive)")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL, err := databaseURLFromConfig(cmd)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // best effort cleanup
	}()

	if down, _ := cmd.Flags().GetBool("down"); down {
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

// databaseURLFromConfig resolves the database URL from flags, the
// config file, and DATABASE_URL.
func databaseURLFromConfig(cmd *cobra.Command) (string, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return "", err
	}
	if cfg.Database.URL == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}
	return cfg.Database.URL, nil
}
