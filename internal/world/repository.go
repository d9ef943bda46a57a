// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// EntityRepository manages entity persistence.
type EntityRepository interface {
	// Get retrieves an entity by ID.
	Get(ctx context.Context, id ulid.ULID) (*Entity, error)

	// Create persists a new entity.
	Create(ctx context.Context, e *Entity) error

	// Update modifies an existing entity.
	Update(ctx context.Context, e *Entity) error

	// Delete removes an entity by ID. Grants and notes cascade with it;
	// audit entries stay.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListWhere returns entities matching a read predicate.
	ListWhere(ctx context.Context, pred access.Predicate) ([]*Entity, error)
}

// LocationRepository manages location persistence. It doubles as the
// ParentResolver for cycle checks.
type LocationRepository interface {
	ParentResolver

	// Get retrieves a location by ID.
	Get(ctx context.Context, id ulid.ULID) (*Location, error)

	// Create persists a new location.
	Create(ctx context.Context, l *Location) error

	// Update modifies an existing location.
	Update(ctx context.Context, l *Location) error

	// Delete removes a location by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// SetParent moves a location under a new parent (nil detaches it to
	// a root). Cycle checking is the caller's responsibility.
	SetParent(ctx context.Context, id ulid.ULID, parentID *ulid.ULID) error

	// ListWhere returns locations matching a read predicate.
	ListWhere(ctx context.Context, pred access.Predicate) ([]*Location, error)
}

// NoteRepository manages note persistence.
type NoteRepository interface {
	// Get retrieves a note by ID.
	Get(ctx context.Context, id ulid.ULID) (*Note, error)

	// Create persists a new note with its tags and shares.
	Create(ctx context.Context, n *Note) error

	// Update modifies a note, replacing tags and shares wholesale.
	Update(ctx context.Context, n *Note) error

	// Delete removes a note by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// ListByResource returns all notes attached to a resource,
	// regardless of visibility; callers filter per reader.
	ListByResource(ctx context.Context, resourceID ulid.ULID) ([]*Note, error)
}

// Transactor runs a function inside one database transaction.
// Repository methods called with the resulting context participate in
// that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
