package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the gatehouse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatehouse",
		Short: "Gatehouse - credential and session token service",
		Long: `Gatehouse stores credentials, issues session tokens, and validates
them for an embedding RPC layer. It speaks PostgreSQL for durable state
and keeps a short-lived in-memory cache over token validation.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewTokenCmd())

	return cmd
}
