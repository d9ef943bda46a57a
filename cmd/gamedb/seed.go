// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/seed"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// Bootstrap admin identity. The fixed ULID makes seeding idempotent:
// a re-run hits the primary key and is treated as already seeded.
const (
	seedAdminID    = "01HZN3XS000000000000000000"
	seedAdminName  = "Administrator"
	seedAdminEmail = "admin@gamedb.local"
)

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate and seed the database with bootstrap data",
		Long: `Runs migrations and creates the bootstrap admin user.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("seed-profile", "", "default-grant profile for created resources (default: standard)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.RequireDatabaseURL()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	// Resolve the configured default-grant profile up front so a typo
	// fails before any database work.
	defaults, err := seed.Load(cfg.SeedProfile)
	if err != nil {
		return err
	}
	cmd.Printf("Using default-grant profile %q (%d entity, %d location template(s))\n",
		profileName(cfg.SeedProfile), len(defaults.Entity), len(defaults.Location))

	// Use cmd.Context() to respect SIGINT/SIGTERM signals.
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close() //nolint:errcheck // migration error takes precedence
		return err
	}
	if err := migrator.Close(); err != nil {
		cmd.PrintErrln("warning: failed to close migrator:", err)
	}

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL, slog.Default())
	if err != nil {
		return err
	}
	defer pool.Close()

	adminID, err := ulid.Parse(seedAdminID)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "parse seed admin ID").Wrap(err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, display_name, email) VALUES ($1, $2, $3)
	`, adminID.String(), seedAdminName, seedAdminEmail)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			cmd.Println("Bootstrap admin already exists, skipping seed")
			slog.Info("database already seeded", "admin_id", adminID)
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create bootstrap admin").Wrap(err)
	}

	cmd.Println("Created bootstrap admin:", seedAdminEmail)
	slog.Info("created bootstrap admin", "id", adminID, "email", seedAdminEmail)

	cmd.Println("Seeding complete")
	return nil
}

func profileName(name string) string {
	if name == "" {
		return seed.DefaultProfile
	}
	return name
}
