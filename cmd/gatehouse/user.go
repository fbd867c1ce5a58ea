// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	authpg "github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/store"
)

// NewUserCmd creates the user command group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserCreate,
	}
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("role", string(auth.RoleUser), "account role (USER or ADMIN)")
	cmd.Flags().String("password", "", "account password (or GATEHOUSE_PASSWORD)")
	return cmd
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := args[0]

	roleStr, _ := cmd.Flags().GetString("role")
	role, err := auth.ParseRole(roleStr)
	if err != nil {
		return err
	}

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("GATEHOUSE_PASSWORD")
	}
	if password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a password is required (--password or GATEHOUSE_PASSWORD)")
	}

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

	if err := svc.CreateUser(ctx, role, username, password); err != nil {
		return err
	}

	cmd.Printf("Created user %q with role %s\n", username, role)
	return nil
}

// newService wires an auth.Service over the given database handle.
func newService(cfg *config.Config, db *store.DB) (*auth.Service, error) {
	hasher, err := auth.NewPBKDF2Hasher(cfg.KDFParams())
	if err != nil {
		return nil, err
	}
	return auth.NewService(
		authpg.NewCredentialRepository(db),
		authpg.NewTokenRepository(db),
		hasher,
		auth.NewTokenCache(cfg.Auth.CacheTTL),
		cfg.ServiceParams(),
	)
}
