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

// EntityRepository implements world.EntityRepository using PostgreSQL.
type EntityRepository struct {
	db store.DB
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(db store.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

// Get retrieves an entity by ID.
func (r *EntityRepository) Get(ctx context.Context, id ulid.ULID) (*world.Entity, error) {
	var e world.Entity
	var idStr, worldStr string
	var rawFields []byte

	err := store.QuerierFrom(ctx, r.db).QueryRow(ctx, `
		SELECT id, world_id, name, kind, fields, created_at, updated_at
		FROM entities WHERE id = $1
	`, id.String()).Scan(&idStr, &worldStr, &e.Name, &e.Kind, &rawFields, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get entity").With("id", id.String()).Wrap(err)
	}

	if e.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse entity id").With("id", idStr).Wrap(err)
	}
	if e.WorldID, err = ulid.Parse(worldStr); err != nil {
		return nil, oops.With("operation", "parse world_id").With("world_id", worldStr).Wrap(err)
	}
	if e.Fields, err = decodeFields(rawFields); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create persists a new entity.
func (r *EntityRepository) Create(ctx context.Context, e *world.Entity) error {
	rawFields, err := encodeFields(e.Fields)
	if err != nil {
		return err
	}
	_, err = store.QuerierFrom(ctx, r.db).Exec(ctx, `
		INSERT INTO entities (id, world_id, name, kind, fields)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID.String(), e.WorldID.String(), e.Name, e.Kind, rawFields)
	if err != nil {
		return oops.With("operation", "create entity").With("id", e.ID.String()).Wrap(err)
	}
	return nil
}

// Update modifies an existing entity. The world an entity belongs to is
// immutable, so world_id is never touched.
func (r *EntityRepository) Update(ctx context.Context, e *world.Entity) error {
	rawFields, err := encodeFields(e.Fields)
	if err != nil {
		return err
	}
	result, err := store.QuerierFrom(ctx, r.db).Exec(ctx, `
		UPDATE entities SET name = $2, kind = $3, fields = $4, updated_at = now()
		WHERE id = $1
	`, e.ID.String(), e.Name, e.Kind, rawFields)
	if err != nil {
		return oops.With("operation", "update entity").With("id", e.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", e.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// Delete removes an entity together with its grants and notes. Audit
// entries are left in place.
func (r *EntityRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM access_grants WHERE resource_id = $1`, id.String()); err != nil {
		return oops.With("operation", "delete entity grants").With("id", id.String()).Wrap(err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM notes WHERE resource_id = $1`, id.String()); err != nil {
		return oops.With("operation", "delete entity notes").With("id", id.String()).Wrap(err)
	}
	result, err := q.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete entity").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(access.CodeNotFound).With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListWhere returns entities matching a read predicate, rendered into
// the WHERE clause as an EXISTS filter over access_grants.
func (r *EntityRepository) ListWhere(ctx context.Context, pred access.Predicate) ([]*world.Entity, error) {
	clause, args, err := access.RenderSQL(pred, access.SQLOptions{TableAlias: "e"})
	if err != nil {
		return nil, err
	}

	rows, err := store.QuerierFrom(ctx, r.db).Query(ctx, `
		SELECT e.id, e.world_id, e.name, e.kind, e.fields, e.created_at, e.updated_at
		FROM entities e WHERE `+clause+` ORDER BY e.name, e.id
	`, args...)
	if err != nil {
		return nil, oops.With("operation", "list entities").Wrap(err)
	}
	defer rows.Close()

	entities := make([]*world.Entity, 0)
	for rows.Next() {
		var e world.Entity
		var idStr, worldStr string
		var rawFields []byte
		if err := rows.Scan(&idStr, &worldStr, &e.Name, &e.Kind, &rawFields, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, oops.With("operation", "scan entity").Wrap(err)
		}
		if e.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse entity id").With("id", idStr).Wrap(err)
		}
		if e.WorldID, err = ulid.Parse(worldStr); err != nil {
			return nil, oops.With("operation", "parse world_id").With("world_id", worldStr).Wrap(err)
		}
		if e.Fields, err = decodeFields(rawFields); err != nil {
			return nil, err
		}
		entities = append(entities, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate entities").Wrap(err)
	}
	return entities, nil
}

// Compile-time interface check.
var _ world.EntityRepository = (*EntityRepository)(nil)
