// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/store"
)

// DatabaseStatus holds the status information reported by the status
// command.
type DatabaseStatus struct {
	Reachable        bool   `json:"reachable"`
	MigrationVersion uint   `json:"migration_version"`
	MigrationName    string `json:"migration_name,omitempty"`
	Dirty            bool   `json:"dirty"`
	Pending          []uint `json:"pending,omitempty"`
	Error            string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and migration status",
		Long:  `Checks database connectivity and reports the migration version and pending migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "timeout for the connectivity check")

	return cmd
}

func runStatus(cmd *cobra.Command, statusCfg *statusConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.RequireDatabaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusCfg.timeout)
	defer cancel()

	status := queryDatabaseStatus(ctx, databaseURL)

	if statusCfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

// queryDatabaseStatus probes connectivity and migration state. Errors
// are reported in the result rather than failing the command, so the
// output stays useful when the database is down.
func queryDatabaseStatus(ctx context.Context, databaseURL string) DatabaseStatus {
	var status DatabaseStatus

	pool, err := store.Connect(ctx, databaseURL, slog.Default())
	if err != nil {
		status.Error = err.Error()
		return status
	}
	pool.Close()
	status.Reachable = true

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = migrator.Close() }() //nolint:errcheck

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.MigrationVersion = version
	status.Dirty = dirty
	if version > 0 {
		if name, nameErr := store.MigrationName(version); nameErr == nil {
			status.MigrationName = name
		}
	}

	if pending, err := migrator.PendingMigrations(); err == nil {
		status.Pending = pending
	}

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status DatabaseStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")
	_, _ = fmt.Fprintln(w, "-----\t-----")

	if !status.Reachable {
		_, _ = fmt.Fprintf(w, "database\tunreachable: %s\n", status.Error)
		_ = w.Flush()
		return string(buf)
	}

	_, _ = fmt.Fprintln(w, "database\treachable")
	migration := fmt.Sprintf("%d", status.MigrationVersion)
	if status.MigrationName != "" {
		migration += " (" + status.MigrationName + ")"
	}
	_, _ = fmt.Fprintf(w, "migration\t%s\n", migration)
	_, _ = fmt.Fprintf(w, "dirty\t%t\n", status.Dirty)
	_, _ = fmt.Fprintf(w, "pending\t%d\n", len(status.Pending))
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "error\t%s\n", status.Error)
	}

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
