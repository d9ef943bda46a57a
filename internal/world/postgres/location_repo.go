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

// LocationRepository implements world.LocationRepository using PostgreSQL.
type LocationRepository struct {
	db store.DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db store.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Get retrieves a location by ID.
func (r *LocationRepository) Get(ctx context.Context, id ulid.ULID) (*world.Location, error) {
	var l world.Location
	var idStr, worldStr, typeStr string
	var parentStr *string
	var rawFields []byte

	err := store.QuerierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, name, parent_id, location_type_id, fields, created_at, updated_at
		FROM locations WHERE id = $1
	`, id.String()).Scan(&idStr, &worldStr, &l.Name, &parentStr, &typeStr, &rawFields, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location").With("id", id.String()).Wrap(err)
	}

	if l.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse location id").With("id", idStr).Wrap(err)
	}
	if l.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldStr).Wrap(err)
	}
	if l.LocationTypeID, err = ulid.Parse(typeStr); err != nil {
		return nil, oops.With("operation", "parse location_type_id").With("location_type_id", typeStr).Wrap(err)
	}
	if l.ParentID, err = parseOptionalULID(parentStr, "parent_id"); err != nil {
		return nil, err
	}
	if l.Fields, err = decodeFields(rawFields); err != nil {
		return nil, err
	}
	return &l, nil
}

// ParentOf returns a location's parent ID, nil for roots.
func (r *LocationRepository) ParentOf(ctx context.Context, id ulid.ULID) (*ulid.ULID, error) {
	var parentStr *string
	err := store.QuerierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT parent_id FROM locations WHERE id = $1
	`, id.String()).Scan(&parentStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get location parent").With("id", id.String()).Wrap(err)
	}
	return parseOptionalULID(parentStr, "parent_id")
}

// Create persists a new location.
func (r *LocationRepository) Create(ctx context.Context, l *world.Location) error {
	rawFields, err := encodeFields(l.Fields)
	if err != nil {
		return err
	}
	_, err = store.QuerierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO locations (id, world_id, name, parent_id, location_type_id, fields)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID.String(), l.WorldID.String(), l.Name, ulidToStringPtr(l.ParentID),
		l.LocationTypeID.String(), rawFields)
	if err != nil {
		return oops.With("operation", "create location").With("id", l.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing location. parent_id is deliberately not
// written here; moves go through SetParent.
func (r *LocationRepository) Update(ctx context.Context, l *world.Location) error {
	rawFields, err := encodeFields(l.Fields)
	if err != nil {
		return err
	}
	result, err := store.QuerierFrom(ctx, r.db).Exec(ctx, `
		UPDATE locations SET name = $2, location_type_id = $3, fields = $4, updated_at = now()
		WHERE id = $1
	`, l.ID.String(), l.Name, l.LocationTypeID.String(), rawFields)
	if err != nil {
		return oops.With("operation", "update location").With("id", l.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", l.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// SetParent moves a location under a new parent, or detaches it to a
// root when parentID is nil.
func (r *LocationRepository) SetParent(ctx context.Context, id ulid.ULID, parentID *ulid.ULID) error {
	result, err := store.QuerierFrom(ctx, r.db).Exec(ctx, `
		UPDATE locations SET parent_id = $2, updated_at = now() WHERE id = $1
	`, id.String(), ulidToStringPtr(parentID))
	if err != nil {
		return oops.With("operation", "set location parent").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Delete removes a location together with its grants and notes.
// Children are detached to roots by the parent_id FK. Audit entries are
// left in place.
func (r *LocationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM access_grants WHERE resource_id = $1`, id.String()); err != nil {
		return oops.With("operation", "delete location grants").With("id", id.String()).Wrap(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM notes WHERE resource_id = $1`, id.String()); err != nil {
		return oops.With("operation", "delete location notes").With("id", id.String()).Wrap(err)
	}
	result, err := q.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete location").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListWhere returns locations matching a read predicate.
func (r *LocationRepository) ListWhere(ctx context.Context, pred access.Predicate) ([]*world.Location, error) {
	clause, args, err := access.RenderSQL(pred, access.SQLOptions{TableAlias: "l"})
	if err != nil {
		return nil, err
	}

	rows, err := store.QuerierFrom(ctx, r.db).Query(ctx, `
		SELECT l.id, l.world_id, l.name, l.parent_id, l.location_type_id, l.fields, l.created_at, l.updated_at
		FROM locations l WHERE `+clause+` ORDER BY l.name, l.id
	`, args...)
	if err != nil {
		return nil, oops.With("operation", "list locations").Wrap(err)
	}
	defer rows.Close()

	locations := make([]*world.Location, 0)
	for rows.Next() {
		var l world.Location
		var idStr, worldStr, typeStr string
		var parentStr *string
		var rawFields []byte
		if err := rows.Scan(&idStr, &worldStr, &l.Name, &parentStr, &typeStr, &rawFields, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, oops.With("operation", "scan location").Wrap(err)
		}
		if l.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse location id").With("id", idStr).Wrap(err)
		}
		if l.WorldID, err = ulid.Parse(worldStr); err != nil {
			return nil, oops.With("operation", "parse world_id").With("world_id", worldStr).Wrap(err)
		}
		if l.LocationTypeID, err = ulid.Parse(typeStr); err != nil {
			return nil, oops.With("operation", "parse location_type_id").With("location_type_id", typeStr).Wrap(err)
		}
		if l.ParentID, err = parseOptionalULID(parentStr, "parent_id"); err != nil {
			return nil, err
		}
		if l.Fields, err = decodeFields(rawFields); err != nil {
			return nil, err
		}
		locations = append(locations, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate locations").Wrap(err)
	}
	return locations, nil
}

// Compile-time interface check.
var _ world.LocationRepository = (*LocationRepository)(nil)
