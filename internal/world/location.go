// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// Location is a node in a world's location forest. ParentID is nil for
// roots; the hierarchy must stay acyclic, enforced by HasCycle inside
// the reparent transaction.
type Location struct {
	ID             ulid.ULID
	WorldID        ulid.ULID
	Name           string
	ParentID       *ulid.ULID
	LocationTypeID ulid.ULID
	Fields         map[string]Value
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Resource identifies the location for access decisions.
func (l *Location) Resource() access.Resource {
	return access.Resource{Kind: access.ResourceLocation, ID: l.ID, WorldID: l.WorldID}
}
