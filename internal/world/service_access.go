// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// GrantInput is one submitted grant in an access edit: a scope plus its
// ID for campaign/character scopes. Access type and resource binding
// come from the surrounding call.
type GrantInput struct {
	Scope   access.ScopeType
	ScopeID *ulid.ULID
}

// UpdateAccess replaces a resource's grant set with the submitted read
// and write sets. The current and submitted sets are fingerprinted
// first: identical signatures make the call a no-op with no audit entry.
// A real change replaces the grants and appends exactly one
// access_update entry, in one transaction.
//
// Concurrent edits are last-writer-wins; the audit trail records both
// submissions in order.
func (s *Service) UpdateAccess(ctx context.Context, actor Actor, res access.Resource, read, write []GrantInput) error {
	eng := s.engine()
	if err := s.canMutate(ctx, eng, actor, res); err != nil {
		return err
	}

	submitted := make([]access.Grant, 0, len(read)+len(write))
	for _, in := range read {
		submitted = append(submitted, access.Grant{ResourceID: res.ID, Access: access.AccessRead, Scope: in.Scope, ScopeID: in.ScopeID})
	}
	for _, in := range write {
		submitted = append(submitted, access.Grant{ResourceID: res.ID, Access: access.AccessWrite, Scope: in.Scope, ScopeID: in.ScopeID})
	}
	if err := access.ValidateGrantSet(res.ID, submitted); err != nil {
		return err
	}
	if err := s.checkGrantScopes(ctx, eng, res, submitted); err != nil {
		return err
	}

	current, err := s.accessRepo.FetchGrants(ctx, res.ID)
	if err != nil {
		return err
	}
	if access.Signature(current) == access.Signature(submitted) {
		return nil
	}

	details := access.AuditDetails{
		Read:  access.SpecsForAccess(submitted, access.AccessRead),
		Write: access.SpecsForAccess(submitted, access.AccessWrite),
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.accessRepo.ReplaceGrants(ctx, res.ID, submitted); err != nil {
			return err
		}
		return s.appendAudit(ctx, res.ID, access.AuditAccessUpdate, actor.UserID, details)
	})
	if err != nil {
		return oops.With("resource_id", res.ID.String()).Wrap(err)
	}
	s.logger.InfoContext(ctx, "access updated",
		slog.String("resource_id", res.ID.String()),
		slog.String("actor_id", actor.UserID.String()))
	return nil
}

// checkGrantScopes verifies that every scoped grant references a
// campaign or character that exists in the resource's world. Dangling
// references answer NOT_FOUND.
func (s *Service) checkGrantScopes(ctx context.Context, eng *access.Engine, res access.Resource, grants []access.Grant) error {
	for _, g := range grants {
		switch g.Scope {
		case access.ScopeCampaign:
			campaign, err := eng.Resolver().Campaign(ctx, *g.ScopeID)
			if err != nil {
				return err
			}
			if campaign.WorldID != res.WorldID {
				return oops.Code(access.CodeNotFound).
					With("campaign_id", g.ScopeID.String()).
					Wrapf(ErrNotFound, "campaign is not in the resource's world")
			}
		case access.ScopeCharacter:
			character, err := eng.Resolver().Character(ctx, *g.ScopeID)
			if err != nil {
				return err
			}
			if character.WorldID != res.WorldID {
				return oops.Code(access.CodeNotFound).
					With("character_id", g.ScopeID.String()).
					Wrapf(ErrNotFound, "character is not in the resource's world")
			}
		}
	}
	return nil
}

// AccessSummary reconstructs who can see and change a resource, plus its
// change history. Reserved for admins, architects, and world-level GMs;
// anyone else gets the same answer they would get reading the resource.
func (s *Service) AccessSummary(ctx context.Context, actor Actor, res access.Resource, opts ...access.SummaryOption) (access.AccessSummary, error) {
	eng := s.engine()
	privileged := actor.Admin
	if !privileged {
		architect, err := eng.Resolver().IsArchitect(ctx, actor.UserID, res.WorldID)
		if err != nil {
			return access.AccessSummary{}, err
		}
		privileged = architect
	}
	if !privileged {
		gm, err := eng.Resolver().IsGameMaster(ctx, actor.UserID, res.WorldID)
		if err != nil {
			return access.AccessSummary{}, err
		}
		privileged = gm
	}
	if !privileged {
		readable, err := eng.CanRead(ctx, actor.UserID, res, actor.Context)
		if err != nil {
			return access.AccessSummary{}, err
		}
		if !readable {
			return access.AccessSummary{}, errHidden(res)
		}
		return access.AccessSummary{}, oops.Code(access.CodeForbidden).
			With("resource_id", res.ID.String()).
			Wrap(ErrForbidden)
	}
	return eng.Summarize(ctx, res, opts...)
}
