// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/store"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

// NoteRepository implements world.NoteRepository using PostgreSQL.
type NoteRepository struct {
	db store.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db store.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, resource_id, author_id, visibility, campaign_id,
	       character_id, share_with_architect, body, created_at, updated_at`

// Get retrieves a note by ID, including its tags and shares.
func (r *NoteRepository) Get(ctx context.Context, id ulid.ULID) (*world.Note, error) {
	q := store.QuerierFrom(ctx, r.db)

	row := q.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id.String())
	n, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get note").With("id", id.String()).Wrap(err)
	}
	if err := r.loadDetails(ctx, q, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Create persists a new note with its tags and shares.
func (r *NoteRepository) Create(ctx context.Context, n *world.Note) error {
	q := store.QuerierFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO notes (id, resource_id, author_id, visibility, campaign_id,
		                   character_id, share_with_architect, body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID.String(), n.ResourceID.String(), n.AuthorID.String(), string(n.Visibility),
		ulidToStringPtr(n.CampaignID), ulidToStringPtr(n.CharacterID),
		n.ShareWithArchitect, n.Body)
	if err != nil {
		return oops.With("operation", "create note").With("id", n.ID.String()).Wrap(err)
	}
	return r.writeDetails(ctx, q, n)
}

// Update modifies a note, replacing tags and shares wholesale.
func (r *NoteRepository) Update(ctx context.Context, n *world.Note) error {
	q := store.QuerierFrom(ctx, r.db)
	result, err := q.Exec(ctx, `
		UPDATE notes SET visibility = $2, campaign_id = $3, character_id = $4,
		       share_with_architect = $5, body = $6, updated_at = now()
		WHERE id = $1
	`, n.ID.String(), string(n.Visibility), ulidToStringPtr(n.CampaignID),
		ulidToStringPtr(n.CharacterID), n.ShareWithArchitect, n.Body)
	if err != nil {
		return oops.With("operation", "update note").With("id", n.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", n.ID.String()).Wrap(world.ErrNotFound)
	}

	if _, err := q.Exec(ctx, `DELETE FROM note_tags WHERE note_id = $1`, n.ID.String()); err != nil {
		return oops.With("operation", "clear note tags").With("id", n.ID.String()).Wrap(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM note_shares WHERE note_id = $1`, n.ID.String()); err != nil {
		return oops.With("operation", "clear note shares").With("id", n.ID.String()).Wrap(err)
	}
	return r.writeDetails(ctx, q, n)
}

// Delete removes a note by ID. Tags and shares cascade.
func (r *NoteRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := store.QuerierFrom(ctx, r.db).Exec(ctx, `DELETE FROM notes WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete note").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByResource returns all notes attached to a resource, regardless
// of visibility. Callers filter per reader.
func (r *NoteRepository) ListByResource(ctx context.Context, resourceID ulid.ULID) ([]*world.Note, error) {
	q := store.QuerierFrom(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE resource_id = $1 ORDER BY created_at, id
	`, resourceID.String())
	if err != nil {
		return nil, oops.With("operation", "list notes").With("resource_id", resourceID.String()).Wrap(err)
	}
	defer rows.Close()

	notes := make([]*world.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, oops.With("operation", "scan note").Wrap(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate notes").Wrap(err)
	}

	for _, n := range notes {
		if err := r.loadDetails(ctx, q, n); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// writeDetails inserts the note's tags and shares.
func (r *NoteRepository) writeDetails(ctx context.Context, q store.Querier, n *world.Note) error {
	for _, tag := range n.Tags {
		if _, err := q.Exec(ctx, `
			INSERT INTO note_tags (note_id, tag) VALUES ($1, $2)
		`, n.ID.String(), tag); err != nil {
			return oops.With("operation", "insert note tag").With("id", n.ID.String()).With("tag", tag).Wrap(err)
		}
	}
	for _, characterID := range n.Shares {
		if _, err := q.Exec(ctx, `
			INSERT INTO note_shares (note_id, character_id) VALUES ($1, $2)
		`, n.ID.String(), characterID.String()); err != nil {
			return oops.With("operation", "insert note share").With("id", n.ID.String()).Wrap(err)
		}
	}
	return nil
}

// loadDetails populates a note's tags and shares.
func (r *NoteRepository) loadDetails(ctx context.Context, q store.Querier, n *world.Note) error {
	rows, err := q.Query(ctx, `SELECT tag FROM note_tags WHERE note_id = $1 ORDER BY tag`, n.ID.String())
	if err != nil {
		return oops.With("operation", "load note tags").With("id", n.ID.String()).Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return oops.With("operation", "scan note tag").Wrap(err)
		}
		n.Tags = append(n.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return oops.With("operation", "iterate note tags").Wrap(err)
	}

	shareRows, err := q.Query(ctx, `
		SELECT character_id FROM note_shares WHERE note_id = $1 ORDER BY character_id
	`, n.ID.String())
	if err != nil {
		return oops.With("operation", "load note shares").With("id", n.ID.String()).Wrap(err)
	}
	defer shareRows.Close()
	for shareRows.Next() {
		var idStr string
		if err := shareRows.Scan(&idStr); err != nil {
			return oops.With("operation", "scan note share").Wrap(err)
		}
		characterID, err := ulid.Parse(idStr)
		if err != nil {
			return oops.With("operation", "parse share character id").With("id", idStr).Wrap(err)
		}
		n.Shares = append(n.Shares, characterID)
	}
	if err := shareRows.Err(); err != nil {
		return oops.With("operation", "iterate note shares").Wrap(err)
	}
	return nil
}

// scanNote scans one note row (without tags and shares).
func scanNote(row pgx.Row) (*world.Note, error) {
	var n world.Note
	var idStr, resourceStr, authorStr, visibilityStr string
	var campaignStr, characterStr *string

	err := row.Scan(&idStr, &resourceStr, &authorStr, &visibilityStr, &campaignStr,
		&characterStr, &n.ShareWithArchitect, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}

	n.Visibility = access.Visibility(visibilityStr)
	if n.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse note id").With("id", idStr).Wrap(err)
	}
	if n.ResourceID, err = ulid.Parse(resourceStr); err != nil {
		return nil, oops.With("operation", "parse note resource id").With("id", resourceStr).Wrap(err)
	}
	if n.AuthorID, err = ulid.Parse(authorStr); err != nil {
		return nil, oops.With("operation", "parse note author id").With("id", authorStr).Wrap(err)
	}
	if n.CampaignID, err = parseOptionalULID(campaignStr, "campaign_id"); err != nil {
		return nil, err
	}
	if n.CharacterID, err = parseOptionalULID(characterStr, "character_id"); err != nil {
		return nil, err
	}
	return &n, nil
}

// Compile-time interface check.
var _ world.NoteRepository = (*NoteRepository)(nil)
