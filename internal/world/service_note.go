// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// GetNote retrieves one note the actor may see, resolving the parent
// resource for the visibility decision.
func (s *Service) GetNote(ctx context.Context, actor Actor, id ulid.ULID) (*Note, error) {
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.noteResource(ctx, n)
	if err != nil {
		return nil, err
	}
	ok, err := s.engine().CanReadNote(ctx, actor.Reader(), res, n.AccessView(), actor.Context)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, oops.Code(access.CodeNotFound).
			With("note_id", id.String()).
			Wrap(ErrNotFound)
	}
	return n, nil
}

// ListNotes returns the notes on a resource visible to the actor. The
// visibility engine decides note by note; one engine serves the whole
// listing so role lookups are fetched once.
func (s *Service) ListNotes(ctx context.Context, actor Actor, res access.Resource) ([]*Note, error) {
	notes, err := s.notes.ListByResource(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	eng := s.engine()
	visible := make([]*Note, 0, len(notes))
	for _, n := range notes {
		ok, err := eng.CanReadNote(ctx, actor.Reader(), res, n.AccessView(), actor.Context)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// CreateNote validates the note's content and authoring constraints and
// persists it with its tags and shares in one transaction. The author
// must be able to read the parent resource.
func (s *Service) CreateNote(ctx context.Context, actor Actor, n *Note) error {
	if err := ValidateBody(n.Body); err != nil {
		return err
	}
	if err := ValidateTags(n.Tags); err != nil {
		return err
	}
	res, err := s.noteResource(ctx, n)
	if err != nil {
		return err
	}

	eng := s.engine()
	if !actor.Admin {
		readable, err := eng.CanRead(ctx, actor.UserID, res, actor.Context)
		if err != nil {
			return err
		}
		if !readable {
			return errHidden(res)
		}
	}
	n.AuthorID = actor.UserID
	if err := eng.ValidateNoteWrite(ctx, actor.Reader(), res, n.AccessView()); err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = ulid.Make()
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.notes.Create(ctx, n)
	})
	if err != nil {
		return oops.With("note_id", n.ID.String()).Wrap(err)
	}
	return nil
}

// UpdateNote edits a note. Only the author (or an admin) may edit; tags
// and shares are replaced wholesale, never patched.
func (s *Service) UpdateNote(ctx context.Context, actor Actor, n *Note) error {
	if err := ValidateBody(n.Body); err != nil {
		return err
	}
	if err := ValidateTags(n.Tags); err != nil {
		return err
	}

	current, err := s.notes.Get(ctx, n.ID)
	if err != nil {
		return err
	}
	if !actor.Admin && current.AuthorID != actor.UserID {
		return oops.Code(access.CodeForbidden).
			With("note_id", n.ID.String()).
			Wrapf(ErrForbidden, "only the author may edit a note")
	}

	res, err := s.noteResource(ctx, current)
	if err != nil {
		return err
	}
	n.ResourceID = current.ResourceID
	n.AuthorID = current.AuthorID
	if err := s.engine().ValidateNoteWrite(ctx, actor.Reader(), res, n.AccessView()); err != nil {
		return err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.notes.Update(ctx, n)
	})
	if err != nil {
		return oops.With("note_id", n.ID.String()).Wrap(err)
	}
	return nil
}

// DeleteNote removes a note. Only the author (or an admin) may delete.
func (s *Service) DeleteNote(ctx context.Context, actor Actor, id ulid.ULID) error {
	current, err := s.notes.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Admin && current.AuthorID != actor.UserID {
		return oops.Code(access.CodeForbidden).
			With("note_id", id.String()).
			Wrapf(ErrForbidden, "only the author may delete a note")
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		return s.notes.Delete(ctx, id)
	})
	if err != nil {
		return oops.With("note_id", id.String()).Wrap(err)
	}
	return nil
}

// noteResource resolves the entity or location a note is attached to.
func (s *Service) noteResource(ctx context.Context, n *Note) (access.Resource, error) {
	if e, err := s.entities.Get(ctx, n.ResourceID); err == nil {
		return e.Resource(), nil
	}
	l, err := s.locations.Get(ctx, n.ResourceID)
	if err != nil {
		return access.Resource{}, oops.Code(access.CodeNotFound).
			With("resource_id", n.ResourceID.String()).
			Wrap(ErrNotFound)
	}
	return l.Resource(), nil
}
