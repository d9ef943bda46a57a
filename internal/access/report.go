// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"context"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// UserAccess is one row of an access summary: a concrete end-user and
// the labeled contexts through which they hold read and write access.
type UserAccess struct {
	UserID        ulid.ULID
	DisplayName   string
	Email         string
	ReadContexts  []string
	WriteContexts []string
}

// AccessSummary is the reporter's result: every user with access to a
// resource (sorted by display name) plus the resource's full change
// history, newest first.
type AccessSummary struct {
	Access  []UserAccess
	Changes []AuditEntry
}

// SummaryOption configures Summarize.
type SummaryOption func(*summaryConfig)

type summaryConfig struct {
	contextFilter glob.Glob
}

// WithContextFilter restricts the summary to context labels matching
// the given glob pattern (e.g. "Campaign:*"). Users left with no
// matching contexts are omitted. The pattern is compiled eagerly;
// Summarize fails on an invalid pattern.
func WithContextFilter(pattern string) (SummaryOption, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.Code(CodeInvalidRequest).
			With("pattern", pattern).
			Wrapf(ErrInvalidRequest, "invalid context filter")
	}
	return func(cfg *summaryConfig) { cfg.contextFilter = g }, nil
}

// Context labels used in summaries.
const (
	labelGlobal    = "Global"
	labelArchitect = "Architect"
)

// contextLabels accumulates a set of labels per access type for one user.
type contextLabels struct {
	read  map[string]struct{}
	write map[string]struct{}
}

func newContextLabels() *contextLabels {
	return &contextLabels{
		read:  make(map[string]struct{}),
		write: make(map[string]struct{}),
	}
}

func (c *contextLabels) add(access AccessType, label string) {
	switch access {
	case AccessRead:
		c.read[label] = struct{}{}
	case AccessWrite:
		c.write[label] = struct{}{}
	}
}

func (c *contextLabels) addBoth(label string) {
	c.read[label] = struct{}{}
	c.write[label] = struct{}{}
}

// Summarize reconstructs, after the fact, the full set of people with
// access to a resource and the history of changes.
//
// Grants expand to end-users: global grants to every world member,
// campaign grants to the campaign GM plus every player with a rostered
// character, character grants to that character's player. Architects
// are always present with both sides labeled "Architect", regardless of
// explicit grants. The reporter is read-only and never affects
// authorization; callers gate who may invoke it at the boundary.
func (e *Engine) Summarize(ctx context.Context, res Resource, opts ...SummaryOption) (AccessSummary, error) {
	start := time.Now()
	cfg := &summaryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	grants, err := e.repo.FetchGrants(ctx, res.ID)
	if err != nil {
		return AccessSummary{}, err
	}

	perUser := make(map[ulid.ULID]*contextLabels)
	labelsFor := func(userID ulid.ULID) *contextLabels {
		if c, ok := perUser[userID]; ok {
			return c
		}
		c := newContextLabels()
		perUser[userID] = c
		return c
	}

	for _, g := range Normalize(grants) {
		if g.Scope != ScopeGlobal && g.ScopeID == nil {
			// Stored grant violating the scope-id invariant; skip
			// rather than fail the whole report.
			continue
		}
		switch g.Scope {
		case ScopeGlobal:
			members, err := e.repo.FetchWorldMemberUserIDs(ctx, res.WorldID)
			if err != nil {
				return AccessSummary{}, err
			}
			for _, userID := range members {
				labelsFor(userID).add(g.Access, labelGlobal)
			}

		case ScopeCampaign:
			campaign, err := e.resolver.Campaign(ctx, *g.ScopeID)
			if err != nil {
				return AccessSummary{}, err
			}
			label := "Campaign: " + campaign.Name
			labelsFor(campaign.GMUserID).add(g.Access, label)
			for _, characterID := range campaign.RosterCharacterIDs {
				character, err := e.resolver.Character(ctx, characterID)
				if err != nil {
					return AccessSummary{}, err
				}
				labelsFor(character.PlayerID).add(g.Access, label)
			}

		case ScopeCharacter:
			character, err := e.resolver.Character(ctx, *g.ScopeID)
			if err != nil {
				return AccessSummary{}, err
			}
			labelsFor(character.PlayerID).add(g.Access, "Character: "+character.Name)
		}
	}

	// Architects are structural: always listed on both sides.
	roles, err := e.resolver.WorldRoles(ctx, res.WorldID)
	if err != nil {
		return AccessSummary{}, err
	}
	labelsFor(roles.PrimaryArchitect).addBoth(labelArchitect)
	for _, userID := range roles.AdditionalArchitects {
		labelsFor(userID).addBoth(labelArchitect)
	}

	userIDs := make([]ulid.ULID, 0, len(perUser))
	for userID := range perUser {
		userIDs = append(userIDs, userID)
	}
	users, err := e.repo.FetchUsers(ctx, userIDs)
	if err != nil {
		return AccessSummary{}, err
	}

	rows := make([]UserAccess, 0, len(perUser))
	for userID, labels := range perUser {
		row := UserAccess{
			UserID:        userID,
			ReadContexts:  sortedLabels(labels.read, cfg.contextFilter),
			WriteContexts: sortedLabels(labels.write, cfg.contextFilter),
		}
		if cfg.contextFilter != nil && len(row.ReadContexts) == 0 && len(row.WriteContexts) == 0 {
			continue
		}
		if info, ok := users[userID]; ok {
			row.DisplayName = info.DisplayName
			row.Email = info.Email
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DisplayName != rows[j].DisplayName {
			return rows[i].DisplayName < rows[j].DisplayName
		}
		return rows[i].UserID.Compare(rows[j].UserID) < 0
	})

	changes, err := e.repo.FetchAuditHistory(ctx, res.ID)
	if err != nil {
		return AccessSummary{}, err
	}

	observeDecision("summarize", "ok", start)
	return AccessSummary{Access: rows, Changes: changes}, nil
}

func sortedLabels(set map[string]struct{}, filter glob.Glob) []string {
	labels := make([]string, 0, len(set))
	for label := range set {
		if filter != nil && !filter.Match(label) {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
