// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// Entity is a world-building record: an NPC, an item, an organisation,
// whatever the world's schema designer defines. Kind references that
// external schema; Fields hold the schema-defined values keyed by field
// key.
type Entity struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	Name      string
	Kind      string
	Fields    map[string]Value
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource identifies the entity for access decisions.
func (e *Entity) Resource() access.Resource {
	return access.Resource{Kind: access.ResourceEntity, ID: e.ID, WorldID: e.WorldID}
}
