// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// Note is a collaborative annotation attached to exactly one entity or
// location. Tags and Shares are replaced wholesale on edit, never
// patched. Shares is only meaningful for GM notes.
type Note struct {
	ID                 ulid.ULID
	ResourceID         ulid.ULID
	AuthorID           ulid.ULID
	Visibility         access.Visibility
	CampaignID         *ulid.ULID
	CharacterID        *ulid.ULID
	ShareWithArchitect bool
	Body               string
	Tags               []string
	Shares             []ulid.ULID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccessView projects the note into the fields the visibility engine
// decides on.
func (n *Note) AccessView() access.Note {
	return access.Note{
		AuthorID:           n.AuthorID,
		Visibility:         n.Visibility,
		CampaignID:         n.CampaignID,
		CharacterID:        n.CharacterID,
		ShareWithArchitect: n.ShareWithArchitect,
		SharedCharacterIDs: n.Shares,
	}
}
