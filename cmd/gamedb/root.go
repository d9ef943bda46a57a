// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/config"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/logging"
)

// configFile is the global --config flag value.
var configFile string

// loadConfig resolves the effective configuration for a command from
// defaults, the optional config file, and the command's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("gamedb", version, cfg.LogFormat)
	return cfg, nil
}

// NewRootCmd creates the root command for the gamedb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamedb",
		Short: "GameDB - collaborative world-building with scoped access control",
		Long: `GameDB manages world-building records (entities, locations, notes)
with grant-based access control and an append-only audit trail.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (default: DATABASE_URL env)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateSeedsCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
