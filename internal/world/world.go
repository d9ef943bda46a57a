// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package world holds the domain model and the transactional Service
// orchestrating authorized mutations, validation, and audit recording.
package world

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// World is the top-level container. Architect status is structural: it
// lives on the world record, not in the grant store.
type World struct {
	ID                   ulid.ULID
	Name                 string
	ArchitectID          ulid.ULID
	AdditionalArchitects []ulid.ULID
	GameMasters          []ulid.ULID
	CreatedAt            time.Time
}

// Roles returns the world's structural roles in the access engine's terms.
func (w World) Roles() access.WorldRoles {
	return access.WorldRoles{
		PrimaryArchitect:     w.ArchitectID,
		AdditionalArchitects: w.AdditionalArchitects,
		GameMasters:          w.GameMasters,
	}
}

// Campaign is a story arc within one world, run by a single GM with a
// roster of player characters.
type Campaign struct {
	ID        ulid.ULID
	WorldID   ulid.ULID
	Name      string
	GMUserID  ulid.ULID
	CreatedAt time.Time

	// RosterCharacterIDs is the campaign_characters membership.
	RosterCharacterIDs []ulid.ULID
}

// Character is a player's persona within a world.
type Character struct {
	ID       ulid.ULID
	WorldID  ulid.ULID
	Name     string
	PlayerID ulid.ULID
}
