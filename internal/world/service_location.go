// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// GetLocation retrieves one location the actor may read.
func (s *Service) GetLocation(ctx context.Context, actor Actor, id ulid.ULID) (*Location, error) {
	l, err := s.locations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Admin {
		return l, nil
	}
	ok, err := s.engine().CanRead(ctx, actor.UserID, l.Resource(), actor.Context)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errHidden(l.Resource())
	}
	return l, nil
}

// ListLocations returns the locations of a world visible to the actor.
func (s *Service) ListLocations(ctx context.Context, actor Actor, worldID ulid.ULID) ([]*Location, error) {
	pred, err := s.engine().BuildReadFilter(ctx, actor.UserID, worldID, actor.Context)
	if err != nil {
		return nil, err
	}
	return s.locations.ListWhere(ctx, pred)
}

// CreateLocation validates, persists, stamps the default grant set, and
// records the create audit entry in one transaction. A non-nil parent
// must exist in the same world.
func (s *Service) CreateLocation(ctx context.Context, actor Actor, l *Location) error {
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if err := ValidateFields(l.Fields); err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canCreate(ctx, eng, actor, l.WorldID); err != nil {
		return err
	}
	if l.ParentID != nil {
		if err := s.checkParent(ctx, l.WorldID, *l.ParentID); err != nil {
			return err
		}
	}
	if l.ID.IsZero() {
		l.ID = ulid.Make()
	}

	grants := access.BindTemplates(s.defaults.Location, l.ID, actor.Context)
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.locations.Create(ctx, l); err != nil {
			return err
		}
		if len(grants) > 0 {
			if err := s.accessRepo.ReplaceGrants(ctx, l.ID, grants); err != nil {
				return err
			}
		}
		return s.appendAudit(ctx, l.ID, access.AuditCreate, actor.UserID, access.AuditDetails{})
	})
	if err != nil {
		return oops.With("location_id", l.ID.String()).Wrap(err)
	}
	return nil
}

// UpdateLocation persists a location edit and records the field diff.
// Reparenting goes through ReparentLocation, not here; ParentID changes
// submitted to this method are rejected.
func (s *Service) UpdateLocation(ctx context.Context, actor Actor, l *Location) error {
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if err := ValidateFields(l.Fields); err != nil {
		return err
	}

	current, err := s.locations.Get(ctx, l.ID)
	if err != nil {
		return err
	}
	if !ulidPtrEqual(current.ParentID, l.ParentID) {
		return oops.Code(access.CodeInvalidRequest).
			Wrapf(ErrInvalidRequest, "reparenting must go through ReparentLocation")
	}
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, current.Resource()); err != nil {
		return err
	}

	changes := LocationChanges(current, l)
	if len(changes) == 0 {
		return nil
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.locations.Update(ctx, l); err != nil {
			return err
		}
		return s.appendAudit(ctx, l.ID, access.AuditUpdate, actor.UserID, access.AuditDetails{Changes: changes})
	})
	if err != nil {
		return oops.With("location_id", l.ID.String()).Wrap(err)
	}
	return nil
}

// DeleteLocation removes a location and records the delete audit entry.
func (s *Service) DeleteLocation(ctx context.Context, actor Actor, id ulid.ULID) error {
	current, err := s.locations.Get(ctx, id)
	if err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, current.Resource()); err != nil {
		return err
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.locations.Delete(ctx, id); err != nil {
			return err
		}
		return s.appendAudit(ctx, id, access.AuditDelete, actor.UserID, access.AuditDetails{})
	})
	if err != nil {
		return oops.With("location_id", id.String()).Wrap(err)
	}
	return nil
}

// ReparentLocation moves a location under a new parent (nil for root).
// The cycle check runs inside the same transaction as the move, against
// the pre-write chain, so a concurrent edit cannot slip a cycle past it.
func (s *Service) ReparentLocation(ctx context.Context, actor Actor, id ulid.ULID, newParentID *ulid.ULID) error {
	current, err := s.locations.Get(ctx, id)
	if err != nil {
		return err
	}
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, current.Resource()); err != nil {
		return err
	}
	if ulidPtrEqual(current.ParentID, newParentID) {
		return nil
	}
	if newParentID != nil {
		if err := s.checkParent(ctx, current.WorldID, *newParentID); err != nil {
			return err
		}
	}

	change := access.FieldChange{
		FieldKey: fieldKeyParent,
		Label:    "Parent",
		From:     ulidPtrString(current.ParentID),
		To:       ulidPtrString(newParentID),
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		cyclic, err := HasCycle(ctx, s.locations, id, newParentID)
		if err != nil {
			return err
		}
		if cyclic {
			return oops.Code(access.CodeInvalidRequest).
				With("location_id", id.String()).
				Wrapf(ErrInvalidRequest, "reparent would create a cycle")
		}
		if err := s.locations.SetParent(ctx, id, newParentID); err != nil {
			return err
		}
		return s.appendAudit(ctx, id, access.AuditUpdate, actor.UserID, access.AuditDetails{
			Changes: []access.FieldChange{change},
		})
	})
	if err != nil {
		return oops.With("location_id", id.String()).Wrap(err)
	}
	return nil
}

// checkParent verifies a proposed parent exists and lives in the same world.
func (s *Service) checkParent(ctx context.Context, worldID, parentID ulid.ULID) error {
	parent, err := s.locations.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.WorldID != worldID {
		return oops.Code(access.CodeInvalidRequest).
			With("parent_id", parentID.String()).
			Wrapf(ErrInvalidRequest, "parent belongs to a different world")
	}
	return nil
}
