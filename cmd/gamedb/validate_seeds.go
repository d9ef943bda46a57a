// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/seed"
)

// NewValidateSeedsCmd creates the validate-seeds subcommand.
func NewValidateSeedsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate-seeds",
		Short: "Validate default-grant seed profiles without a database",
		Long: `Validates seed profiles against the profile schema.
Does NOT require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch profile errors early:
  gamedb validate-seeds
  gamedb validate-seeds --file my-profiles.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidateSeeds(cmd, file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "validate an external profile file instead of the embedded set")

	return cmd
}

func runValidateSeeds(cmd *cobra.Command, file string) error {
	if file != "" {
		data, err := os.ReadFile(file) //nolint:gosec // operator-supplied path
		if err != nil {
			return oops.Code("SEED_INVALID").With("file", file).Wrap(err)
		}
		if err := seed.Validate(data); err != nil {
			slog.Error("seed profile validation failed", "file", file, "error", err)
			return err
		}
		cmd.Println("Profile file is valid:", file)
		return nil
	}

	profiles, err := seed.Profiles()
	if err != nil {
		slog.Error("embedded seed profiles invalid", "error", err)
		return err
	}
	slog.Info("all seed profiles valid", "count", len(profiles))
	cmd.Printf("All %d embedded profiles are valid\n", len(profiles))
	return nil
}
