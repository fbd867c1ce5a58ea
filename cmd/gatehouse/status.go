// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show schema migration status",
		RunE:  runStatus,
	}
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("Schema version: none applied")
		return nil
	}
	cmd.Printf("Schema version: %d\n", version)
	if dirty {
		cmd.Println("State: DIRTY - a migration failed partway and needs manual repair")
	} else {
		cmd.Println("State: clean")
	}
	return nil
}
