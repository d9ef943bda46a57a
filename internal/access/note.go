// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Visibility classifies who a note is meant for.
type Visibility string

// Note visibility classes.
const (
	// VisibilityPrivate notes are for the author (and privileged roles).
	VisibilityPrivate Visibility = "private"
	// VisibilityShared notes are visible to anyone who can read the
	// parent resource in the note's campaign context.
	VisibilityShared Visibility = "shared"
	// VisibilityGM notes belong to the campaign's GM role, with an
	// optional architect share and an explicit character share list.
	VisibilityGM Visibility = "gm"
)

// Validate checks that the visibility is a known value.
func (v Visibility) Validate() error {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityGM:
		return nil
	default:
		return oops.Code(CodeInvalidRequest).With("visibility", string(v)).Wrap(ErrInvalidRequest)
	}
}

// Note is the engine's view of a collaborative note: just the fields
// visibility decisions depend on.
type Note struct {
	AuthorID           ulid.ULID
	Visibility         Visibility
	CampaignID         *ulid.ULID
	CharacterID        *ulid.ULID
	ShareWithArchitect bool
	SharedCharacterIDs []ulid.ULID
}

// Reader identifies the user a visibility question is asked for. Admin
// marks a platform administrator, who bypasses all visibility rules.
type Reader struct {
	UserID ulid.ULID
	Admin  bool
}

// CanReadNote decides per-note read eligibility for a reader, given the
// note's parent resource and the request's campaign/character context.
//
// GM notes are evaluated against the role, not the person: the reader
// must be the note's campaign GM acting within that campaign. The
// note's own author is not eligible outside that role — when the GM
// seat changes hands or the note is viewed outside campaign context,
// the author loses sight of their own note. That behavior is kept
// deliberately; see the package tests.
func (e *Engine) CanReadNote(ctx context.Context, reader Reader, res Resource, note Note, reqCtx Context) (bool, error) {
	start := time.Now()
	eligible, err := e.noteEligible(ctx, reader, res, note, reqCtx)
	if err != nil {
		return false, err
	}
	if eligible {
		observeDecision("note_read", "allowed", start)
	} else {
		observeDecision("note_read", "denied", start)
	}
	return eligible, nil
}

func (e *Engine) noteEligible(ctx context.Context, reader Reader, res Resource, note Note, reqCtx Context) (bool, error) {
	if reader.Admin {
		return true, nil
	}

	switch note.Visibility {
	case VisibilityGM:
		return e.gmNoteEligible(ctx, reader, res, note, reqCtx)

	case VisibilityShared:
		// Campaign membership gates shared notes: eligibility is
		// exactly the ability to read the parent resource in the
		// note's campaign context.
		return e.CanRead(ctx, reader.UserID, res, Context{
			CampaignID:  note.CampaignID,
			CharacterID: reqCtx.CharacterID,
		})

	case VisibilityPrivate:
		if note.AuthorID == reader.UserID {
			return true, nil
		}
		if note.CampaignID != nil && sameCampaign(reqCtx.CampaignID, note.CampaignID) {
			gm, err := e.resolver.IsCampaignGM(ctx, reader.UserID, *note.CampaignID)
			if err != nil {
				return false, err
			}
			if gm {
				return true, nil
			}
		}
		architect, err := e.resolver.IsArchitect(ctx, reader.UserID, res.WorldID)
		if err != nil {
			return false, err
		}
		if architect {
			return true, nil
		}
		return e.resolver.IsGameMaster(ctx, reader.UserID, res.WorldID)

	default:
		return false, oops.Code(CodeInvalidRequest).With("visibility", string(note.Visibility)).Wrap(ErrInvalidRequest)
	}
}

// gmNoteEligible applies the GM-note rules: acting campaign GM, the
// architect share flag, or an explicit character share.
func (e *Engine) gmNoteEligible(ctx context.Context, reader Reader, res Resource, note Note, reqCtx Context) (bool, error) {
	if note.CampaignID == nil {
		// Violates the GM-note invariant; nothing but an admin sees it.
		return false, nil
	}

	if sameCampaign(reqCtx.CampaignID, note.CampaignID) {
		gm, err := e.resolver.IsCampaignGM(ctx, reader.UserID, *note.CampaignID)
		if err != nil {
			return false, err
		}
		if gm {
			return true, nil
		}
	}

	if note.ShareWithArchitect {
		architect, err := e.resolver.IsArchitect(ctx, reader.UserID, res.WorldID)
		if err != nil {
			return false, err
		}
		if architect {
			return true, nil
		}
	}

	for _, characterID := range note.SharedCharacterIDs {
		controls, err := e.resolver.ControlsCharacter(ctx, reader.UserID, characterID)
		if err != nil {
			return false, err
		}
		if controls {
			return true, nil
		}
	}

	return false, nil
}

// ValidateNoteWrite enforces the authoring constraints for creating or
// editing a note. It returns nil when the author may proceed,
// ErrInvalidRequest for malformed visibility/context combinations, and
// ErrForbidden when the author lacks the role the note requires.
func (e *Engine) ValidateNoteWrite(ctx context.Context, author Reader, res Resource, note Note) error {
	if err := note.Visibility.Validate(); err != nil {
		return err
	}

	// SHARED and GM notes require campaign context; PRIVATE does not.
	if note.Visibility != VisibilityPrivate && note.CampaignID == nil {
		return oops.Code(CodeInvalidRequest).
			With("visibility", string(note.Visibility)).
			Wrapf(ErrInvalidRequest, "%s notes require a campaign", note.Visibility)
	}

	if note.Visibility == VisibilityGM {
		if err := e.validateGMAuthor(ctx, author, note); err != nil {
			return err
		}
	} else if len(note.SharedCharacterIDs) > 0 {
		return oops.Code(CodeInvalidRequest).
			Wrapf(ErrInvalidRequest, "share lists are only valid on gm notes")
	}

	return e.validateAuthorRole(ctx, author, res, note)
}

// validateGMAuthor checks that only the current campaign GM writes GM
// notes and that every explicit share names a rostered character.
func (e *Engine) validateGMAuthor(ctx context.Context, author Reader, note Note) error {
	campaign, err := e.resolver.Campaign(ctx, *note.CampaignID)
	if err != nil {
		return err
	}
	if !author.Admin && campaign.GMUserID != author.UserID {
		return oops.Code(CodeForbidden).Wrapf(ErrForbidden, "only the campaign GM may write gm notes")
	}
	for _, characterID := range note.SharedCharacterIDs {
		if !campaign.OnRoster(characterID) {
			return oops.Code(CodeInvalidRequest).
				With("character_id", characterID.String()).
				Wrapf(ErrInvalidRequest, "shared character is not on the campaign roster")
		}
	}
	return nil
}

// validateAuthorRole checks that the author may write notes at all:
// admins, architects, the world GM, the campaign GM, or a player whose
// supplied character is on the campaign roster.
func (e *Engine) validateAuthorRole(ctx context.Context, author Reader, res Resource, note Note) error {
	if author.Admin {
		return nil
	}
	architect, err := e.resolver.IsArchitect(ctx, author.UserID, res.WorldID)
	if err != nil {
		return err
	}
	if architect {
		return nil
	}
	worldGM, err := e.resolver.IsGameMaster(ctx, author.UserID, res.WorldID)
	if err != nil {
		return err
	}
	if worldGM {
		return nil
	}
	if note.CampaignID != nil {
		gm, err := e.resolver.IsCampaignGM(ctx, author.UserID, *note.CampaignID)
		if err != nil {
			return err
		}
		if gm {
			return nil
		}
	}

	// Not privileged: a character on the campaign roster is required.
	if note.CharacterID == nil {
		return oops.Code(CodeInvalidRequest).
			Wrapf(ErrInvalidRequest, "note authors without a GM or architect role must supply a character")
	}
	if note.CampaignID == nil {
		return oops.Code(CodeInvalidRequest).
			Wrapf(ErrInvalidRequest, "character-authored notes require a campaign")
	}
	controls, err := e.resolver.ControlsCharacter(ctx, author.UserID, *note.CharacterID)
	if err != nil {
		return err
	}
	if !controls {
		return oops.Code(CodeForbidden).Wrapf(ErrForbidden, "author does not control the supplied character")
	}
	campaign, err := e.resolver.Campaign(ctx, *note.CampaignID)
	if err != nil {
		return err
	}
	if !campaign.OnRoster(*note.CharacterID) {
		return oops.Code(CodeInvalidRequest).
			With("character_id", note.CharacterID.String()).
			Wrapf(ErrInvalidRequest, "supplied character is not on the campaign roster")
	}
	return nil
}

func sameCampaign(a, b *ulid.ULID) bool {
	return a != nil && b != nil && *a == *b
}
