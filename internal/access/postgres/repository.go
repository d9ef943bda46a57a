// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package postgres implements access.Repository over PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/store"
)

// Repository implements access.Repository using PostgreSQL. Methods
// participate in an enclosing transaction when the context carries one.
type Repository struct {
	db store.DB
}

// NewRepository creates a Repository backed by the given pool.
func NewRepository(db store.DB) *Repository {
	return &Repository{db: db}
}

var _ access.Repository = (*Repository)(nil)

// FetchGrants returns all grants for a resource.
func (r *Repository) FetchGrants(ctx context.Context, resourceID ulid.ULID) ([]access.Grant, error) {
	rows, err := store.QuerierFrom(ctx, r.db).Query(ctx, `
		SELECT resource_id, access_type, scope_type, scope_id
		FROM access_grants WHERE resource_id = $1
	`, resourceID.String())
	if err != nil {
		return nil, oops.With("operation", "fetch grants").With("resource_id", resourceID.String()).Wrap(err)
	}
	defer rows.Close()

	var grants []access.Grant
	for rows.Next() {
		var resourceStr string
		var accessType, scopeType string
		var scopeStr *string
		if err := rows.Scan(&resourceStr, &accessType, &scopeType, &scopeStr); err != nil {
			return nil, oops.With("operation", "scan grant row").Wrap(err)
		}
		g := access.Grant{
			Access: access.AccessType(accessType),
			Scope:  access.ScopeType(scopeType),
		}
		if g.ResourceID, err = ulid.Parse(resourceStr); err != nil {
			return nil, oops.With("operation", "parse grant resource id").With("id", resourceStr).Wrap(err)
		}
		if g.ScopeID, err = parseOptionalULID(scopeStr, "scope_id"); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate grants").Wrap(err)
	}
	return grants, nil
}

// ReplaceGrants atomically deletes all grants for a resource and inserts
// the submitted set. Outside an enclosing transaction it opens its own.
func (r *Repository) ReplaceGrants(ctx context.Context, resourceID ulid.ULID, grants []access.Grant) error {
	if err := access.ValidateGrantSet(resourceID, grants); err != nil {
		return err
	}
	normalized := access.Normalize(grants)

	if tx := store.QuerierFrom(ctx, nil); tx != nil {
		return r.replaceGrants(ctx, tx, resourceID, normalized)
	}
	return store.NewTransactor(r.db).InTransaction(ctx, func(ctx context.Context) error {
		return r.replaceGrants(ctx, store.QuerierFrom(ctx, r.db), resourceID, normalized)
	})
}

func (r *Repository) replaceGrants(ctx context.Context, q store.Querier, resourceID ulid.ULID, grants []access.Grant) error {
	if _, err := q.Exec(ctx, `DELETE FROM access_grants WHERE resource_id = $1`, resourceID.String()); err != nil {
		return oops.With("operation", "delete grants").With("resource_id", resourceID.String()).Wrap(err)
	}
	for _, g := range grants {
		_, err := q.Exec(ctx, `
			INSERT INTO access_grants (resource_id, access_type, scope_type, scope_id)
			VALUES ($1, $2, $3, $4)
		`, resourceID.String(), string(g.Access), string(g.Scope), ulidToStringPtr(g.ScopeID))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				// A concurrent editor replayed the same grant; the set
				// is already normalized, so treat it as a lost race.
				return oops.Code(access.CodeInvalidRequest).
					With("resource_id", resourceID.String()).
					Wrapf(access.ErrInvalidRequest, "concurrent access edit")
			}
			return oops.With("operation", "insert grant").With("resource_id", resourceID.String()).Wrap(err)
		}
	}
	return nil
}

// FetchWorldRoles returns the structural roles of a world.
func (r *Repository) FetchWorldRoles(ctx context.Context, worldID ulid.ULID) (access.WorldRoles, error) {
	q := store.QuerierFrom(ctx, r.db)

	var architectStr string
	err := q.QueryRow(ctx, `SELECT architect_id FROM worlds WHERE id = $1`, worldID.String()).Scan(&architectStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.WorldRoles{}, oops.Code(access.CodeNotFound).
			With("world_id", worldID.String()).Wrap(access.ErrNotFound)
	}
	if err != nil {
		return access.WorldRoles{}, oops.With("operation", "fetch world").With("world_id", worldID.String()).Wrap(err)
	}

	roles := access.WorldRoles{}
	if roles.PrimaryArchitect, err = ulid.Parse(architectStr); err != nil {
		return access.WorldRoles{}, oops.With("operation", "parse architect id").With("id", architectStr).Wrap(err)
	}
	if roles.AdditionalArchitects, err = r.fetchUserIDs(ctx, q,
		`SELECT user_id FROM world_architects WHERE world_id = $1`, worldID); err != nil {
		return access.WorldRoles{}, err
	}
	if roles.GameMasters, err = r.fetchUserIDs(ctx, q,
		`SELECT user_id FROM world_gamemasters WHERE world_id = $1`, worldID); err != nil {
		return access.WorldRoles{}, err
	}
	return roles, nil
}

// FetchCampaign returns campaign metadata including the roster.
func (r *Repository) FetchCampaign(ctx context.Context, campaignID ulid.ULID) (access.CampaignInfo, error) {
	q := store.QuerierFrom(ctx, r.db)

	var worldStr, gmStr string
	var info access.CampaignInfo
	err := q.QueryRow(ctx, `
		SELECT world_id, name, gm_user_id FROM campaigns WHERE id = $1
	`, campaignID.String()).Scan(&worldStr, &info.Name, &gmStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.CampaignInfo{}, oops.Code(access.CodeNotFound).
			With("campaign_id", campaignID.String()).Wrap(access.ErrNotFound)
	}
	if err != nil {
		return access.CampaignInfo{}, oops.With("operation", "fetch campaign").With("campaign_id", campaignID.String()).Wrap(err)
	}
	if info.WorldID, err = ulid.Parse(worldStr); err != nil {
		return access.CampaignInfo{}, oops.With("operation", "parse campaign world id").With("id", worldStr).Wrap(err)
	}
	if info.GMUserID, err = ulid.Parse(gmStr); err != nil {
		return access.CampaignInfo{}, oops.With("operation", "parse campaign gm id").With("id", gmStr).Wrap(err)
	}
	if info.RosterCharacterIDs, err = r.fetchUserIDs(ctx, q,
		`SELECT character_id FROM campaign_characters WHERE campaign_id = $1`, campaignID); err != nil {
		return access.CampaignInfo{}, err
	}
	return info, nil
}

// FetchCharacter returns character metadata.
func (r *Repository) FetchCharacter(ctx context.Context, characterID ulid.ULID) (access.CharacterInfo, error) {
	var worldStr, playerStr string
	var info access.CharacterInfo
	err := store.QuerierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT world_id, name, player_id FROM characters WHERE id = $1
	`, characterID.String()).Scan(&worldStr, &info.Name, &playerStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return access.CharacterInfo{}, oops.Code(access.CodeNotFound).
			With("character_id", characterID.String()).Wrap(access.ErrNotFound)
	}
	if err != nil {
		return access.CharacterInfo{}, oops.With("operation", "fetch character").With("character_id", characterID.String()).Wrap(err)
	}
	if info.WorldID, err = ulid.Parse(worldStr); err != nil {
		return access.CharacterInfo{}, oops.With("operation", "parse character world id").With("id", worldStr).Wrap(err)
	}
	if info.PlayerID, err = ulid.Parse(playerStr); err != nil {
		return access.CharacterInfo{}, oops.With("operation", "parse character player id").With("id", playerStr).Wrap(err)
	}
	return info, nil
}

// FetchWorldMemberUserIDs returns every user with access to the world.
func (r *Repository) FetchWorldMemberUserIDs(ctx context.Context, worldID ulid.ULID) ([]ulid.ULID, error) {
	return r.fetchUserIDs(ctx, store.QuerierFrom(ctx, r.db),
		`SELECT user_id FROM world_members WHERE world_id = $1`, worldID)
}

// FetchUsers resolves display identities; unknown IDs are omitted.
func (r *Repository) FetchUsers(ctx context.Context, userIDs []ulid.ULID) (map[ulid.ULID]access.UserInfo, error) {
	out := make(map[ulid.ULID]access.UserInfo, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	rows, err := store.QuerierFrom(ctx, r.db).Query(ctx, `
		SELECT id, display_name, email FROM users WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, oops.With("operation", "fetch users").Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr string
		var info access.UserInfo
		if err := rows.Scan(&idStr, &info.DisplayName, &info.Email); err != nil {
			return nil, oops.With("operation", "scan user row").Wrap(err)
		}
		if info.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse user id").With("id", idStr).Wrap(err)
		}
		out[info.ID] = info
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate users").Wrap(err)
	}
	return out, nil
}

// AppendAuditEntry appends one immutable audit record.
func (r *Repository) AppendAuditEntry(ctx context.Context, entry access.AuditEntry) error {
	if err := entry.Action.Validate(); err != nil {
		return err
	}
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return oops.With("operation", "encode audit details").Wrap(err)
	}
	_, err = store.QuerierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO audit_entries (id, resource_id, action, actor_id, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID.String(), entry.ResourceID.String(), string(entry.Action),
		entry.ActorID.String(), entry.OccurredAt, details)
	if err != nil {
		return oops.With("operation", "append audit entry").With("resource_id", entry.ResourceID.String()).Wrap(err)
	}
	return nil
}

// FetchAuditHistory returns a resource's audit records, newest first,
// with actor names joined in.
func (r *Repository) FetchAuditHistory(ctx context.Context, resourceID ulid.ULID) ([]access.AuditEntry, error) {
	rows, err := store.QuerierFrom(ctx, r.db).Query(ctx, `
		SELECT a.id, a.resource_id, a.action, a.actor_id, a.occurred_at, a.details, u.display_name
		FROM audit_entries a
		JOIN users u ON u.id = a.actor_id
		WHERE a.resource_id = $1
		ORDER BY a.occurred_at DESC, a.id DESC
	`, resourceID.String())
	if err != nil {
		return nil, oops.With("operation", "fetch audit history").With("resource_id", resourceID.String()).Wrap(err)
	}
	defer rows.Close()

	var entries []access.AuditEntry
	for rows.Next() {
		var idStr, resourceStr, actionStr, actorStr string
		var details []byte
		var entry access.AuditEntry
		if err := rows.Scan(&idStr, &resourceStr, &actionStr, &actorStr, &entry.OccurredAt, &details, &entry.ActorName); err != nil {
			return nil, oops.With("operation", "scan audit row").Wrap(err)
		}
		entry.Action = access.AuditAction(actionStr)
		if entry.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse audit id").With("id", idStr).Wrap(err)
		}
		if entry.ResourceID, err = ulid.Parse(resourceStr); err != nil {
			return nil, oops.With("operation", "parse audit resource id").With("id", resourceStr).Wrap(err)
		}
		if entry.ActorID, err = ulid.Parse(actorStr); err != nil {
			return nil, oops.With("operation", "parse audit actor id").With("id", actorStr).Wrap(err)
		}
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, oops.With("operation", "decode audit details").With("id", idStr).Wrap(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate audit history").Wrap(err)
	}
	return entries, nil
}

// fetchUserIDs runs a single-column ULID query.
func (r *Repository) fetchUserIDs(ctx context.Context, q store.Querier, sql string, arg ulid.ULID) ([]ulid.ULID, error) {
	rows, err := q.Query(ctx, sql, arg.String())
	if err != nil {
		return nil, oops.With("operation", "fetch ids").With("arg", arg.String()).Wrap(err)
	}
	defer rows.Close()

	var out []ulid.ULID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, oops.With("operation", "scan id row").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.With("operation", "parse id").With("id", idStr).Wrap(err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate ids").Wrap(err)
	}
	return out, nil
}

func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}
