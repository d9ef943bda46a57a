// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	accesspg "github.com/AndrewDrinkwater/GameDB3-sub000/internal/access/postgres"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/store"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
	worldpg "github.com/AndrewDrinkwater/GameDB3-sub000/internal/world/postgres"
)

// auditConfig holds configuration for the audit command.
type auditConfig struct {
	filter     string
	jsonOutput bool
	timeout    time.Duration
}

// NewAuditCmd creates the audit subcommand.
func NewAuditCmd() *cobra.Command {
	cfg := &auditConfig{}

	cmd := &cobra.Command{
		Use:   "audit <resource-id>",
		Short: "Report who can access a resource and its change history",
		Long: `Summarizes a resource after the fact: every end-user with read or
write access, the contexts their access flows through, and the full
append-only change history, newest first.

The resource id may name an entity or a location. The report is
read-only and never alters grants or history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.filter, "filter", "", `restrict contexts by glob pattern (e.g. "Campaign:*")`)
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output the summary as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 30*time.Second, "timeout for database operations")

	return cmd
}

func runAudit(cmd *cobra.Command, rawID string, auditCfg *auditConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL, err := cfg.RequireDatabaseURL()
	if err != nil {
		return err
	}

	resourceID, err := ulid.Parse(rawID)
	if err != nil {
		return oops.Code(access.CodeInvalidRequest).
			With("resource_id", rawID).
			Wrapf(err, "invalid resource id")
	}

	var opts []access.SummaryOption
	if auditCfg.filter != "" {
		opt, err := access.WithContextFilter(auditCfg.filter)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), auditCfg.timeout)
	defer cancel()

	pool, err := store.Connect(ctx, databaseURL, slog.Default())
	if err != nil {
		return err
	}
	defer pool.Close()

	res, err := resolveResource(ctx, pool, resourceID)
	if err != nil {
		return err
	}

	engine := access.NewEngine(accesspg.NewRepository(pool))
	summary, err := engine.Summarize(ctx, res, opts...)
	if err != nil {
		return err
	}

	if auditCfg.jsonOutput {
		data, err := json.MarshalIndent(summaryReport(res, summary), "", "  ")
		if err != nil {
			return oops.Wrap(err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatSummary(res, summary))
	return nil
}

// resolveResource finds which kind of resource an id names. Entities
// and locations share the ULID space, so the first hit wins.
func resolveResource(ctx context.Context, db store.DB, id ulid.ULID) (access.Resource, error) {
	entity, err := worldpg.NewEntityRepository(db).Get(ctx, id)
	if err == nil {
		return entity.Resource(), nil
	}
	if !errors.Is(err, world.ErrNotFound) {
		return access.Resource{}, err
	}

	location, err := worldpg.NewLocationRepository(db).Get(ctx, id)
	if err == nil {
		return location.Resource(), nil
	}
	if !errors.Is(err, world.ErrNotFound) {
		return access.Resource{}, err
	}

	return access.Resource{}, oops.Code(access.CodeNotFound).
		With("resource_id", id.String()).
		Wrapf(world.ErrNotFound, "no entity or location with this id")
}

// auditReport is the JSON shape of the audit command's output.
type auditReport struct {
	ResourceID   string            `json:"resourceId"`
	ResourceKind string            `json:"resourceKind"`
	WorldID      string            `json:"worldId"`
	Access       []userAccessRow   `json:"access"`
	Changes      []changeReportRow `json:"changes"`
}

type userAccessRow struct {
	UserID        string   `json:"userId"`
	DisplayName   string   `json:"displayName"`
	Email         string   `json:"email,omitempty"`
	ReadContexts  []string `json:"readContexts"`
	WriteContexts []string `json:"writeContexts"`
}

type changeReportRow struct {
	ID         string              `json:"id"`
	Action     string              `json:"action"`
	ActorID    string              `json:"actorId"`
	ActorName  string              `json:"actorName,omitempty"`
	OccurredAt time.Time           `json:"occurredAt"`
	Details    access.AuditDetails `json:"details"`
}

func summaryReport(res access.Resource, summary access.AccessSummary) auditReport {
	report := auditReport{
		ResourceID:   res.ID.String(),
		ResourceKind: string(res.Kind),
		WorldID:      res.WorldID.String(),
		Access:       make([]userAccessRow, 0, len(summary.Access)),
		Changes:      make([]changeReportRow, 0, len(summary.Changes)),
	}
	for _, row := range summary.Access {
		report.Access = append(report.Access, userAccessRow{
			UserID:        row.UserID.String(),
			DisplayName:   row.DisplayName,
			Email:         row.Email,
			ReadContexts:  row.ReadContexts,
			WriteContexts: row.WriteContexts,
		})
	}
	for _, entry := range summary.Changes {
		report.Changes = append(report.Changes, changeReportRow{
			ID:         entry.ID.String(),
			Action:     string(entry.Action),
			ActorID:    entry.ActorID.String(),
			ActorName:  entry.ActorName,
			OccurredAt: entry.OccurredAt,
			Details:    entry.Details,
		})
	}
	return report
}

// formatSummary renders the human-readable report: an access table
// followed by the change history.
func formatSummary(res access.Resource, summary access.AccessSummary) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "Resource %s (%s) in world %s\n\n", res.ID, res.Kind, res.WorldID)

	_, _ = fmt.Fprintln(w, "USER\tREAD\tWRITE")
	_, _ = fmt.Fprintln(w, "----\t----\t-----")
	for _, row := range summary.Access {
		name := row.DisplayName
		if name == "" {
			name = row.UserID.String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, joinContexts(row.ReadContexts), joinContexts(row.WriteContexts))
	}
	if len(summary.Access) == 0 {
		_, _ = fmt.Fprintln(w, "(nobody)\t-\t-")
	}

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tDETAILS")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t-------")
	for _, entry := range summary.Changes {
		actor := entry.ActorName
		if actor == "" {
			actor = entry.ActorID.String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.OccurredAt.Format(time.RFC3339), actor, entry.Action, formatDetails(entry.Details))
	}
	if len(summary.Changes) == 0 {
		_, _ = fmt.Fprintln(w, "(no recorded changes)\t\t\t")
	}

	_ = w.Flush()
	return string(buf)
}

func joinContexts(contexts []string) string {
	if len(contexts) == 0 {
		return "-"
	}
	return strings.Join(contexts, ", ")
}

func formatDetails(details access.AuditDetails) string {
	var parts []string
	for _, change := range details.Changes {
		parts = append(parts, fmt.Sprintf("%s: %q -> %q", change.Label, change.From, change.To))
	}
	if len(details.Read) > 0 || len(details.Write) > 0 {
		parts = append(parts, fmt.Sprintf("read %s; write %s",
			formatGrantSpecs(details.Read), formatGrantSpecs(details.Write)))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "; ")
}

func formatGrantSpecs(specs []access.GrantSpec) string {
	if len(specs) == 0 {
		return "[]"
	}
	rendered := make([]string, 0, len(specs))
	for _, spec := range specs {
		s := string(spec.Scope)
		if spec.ScopeID != "" {
			s += ":" + spec.ScopeID
		}
		rendered = append(rendered, s)
	}
	return "[" + strings.Join(rendered, " ") + "]"
}
