// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

func TestUpdateAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("change replaces grants with exactly one audit entry", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall", access.Grant{Access: access.AccessRead, Scope: access.ScopeGlobal})

		err := f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{
				{Scope: access.ScopeGlobal},
				{Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)},
			},
			[]world.GrantInput{
				{Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)},
			},
		)
		require.NoError(t, err)

		grants := f.accessRepo.Grants[e.ID]
		assert.Len(t, grants, 3)
		assert.Equal(t, []access.AuditAction{access.AuditAccessUpdate}, f.auditActions(e.ID))

		entries := f.accessRepo.History[e.ID]
		require.Len(t, entries, 1)
		assert.Len(t, entries[0].Details.Read, 2)
		assert.Len(t, entries[0].Details.Write, 1)
	})

	t.Run("no-op edit appends no audit entry", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall",
			access.Grant{Access: access.AccessRead, Scope: access.ScopeGlobal},
			access.Grant{Access: access.AccessWrite, Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)},
		)

		// Same logical set, different order, with a duplicate thrown in.
		err := f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeGlobal}, {Scope: access.ScopeGlobal}},
			[]world.GrantInput{{Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)}},
		)
		require.NoError(t, err)
		assert.Empty(t, f.accessRepo.History[e.ID])
	})

	t.Run("dangling scope reference answers not found", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall")

		err := f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeCampaign, ScopeID: ulidPtr(ulid.Make())}}, nil)
		require.ErrorIs(t, err, world.ErrNotFound)
		assert.Empty(t, f.accessRepo.History[e.ID])
	})

	t.Run("scope from another world answers not found", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall")
		foreignCampaign := ulid.Make()
		f.accessRepo.Campaigns[foreignCampaign] = access.CampaignInfo{WorldID: ulid.Make(), Name: "Elsewhere", GMUserID: ulid.Make()}

		err := f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeCampaign, ScopeID: ulidPtr(foreignCampaign)}}, nil)
		require.ErrorIs(t, err, world.ErrNotFound)
	})

	t.Run("missing scope id is invalid", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall")

		err := f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeCampaign}}, nil)
		require.ErrorIs(t, err, world.ErrInvalidRequest)
	})

	t.Run("last writer wins across sequential edits", func(t *testing.T) {
		// There is no optimistic locking on the grant set; two racing
		// editors resolve to whichever commit lands second, and the
		// audit trail records both submissions in order.
		f := newSvcFixture()
		e := f.seedEntity("Council Hall")

		require.NoError(t, f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeGlobal}}, nil))
		require.NoError(t, f.svc.UpdateAccess(ctx, f.asArchitect(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)}}, nil))

		grants := f.accessRepo.Grants[e.ID]
		require.Len(t, grants, 1)
		assert.Equal(t, access.ScopeCampaign, grants[0].Scope)
		assert.Len(t, f.accessRepo.History[e.ID], 2)
	})

	t.Run("non-writer may not edit access", func(t *testing.T) {
		f := newSvcFixture()
		e := f.seedEntity("Council Hall", access.Grant{Access: access.AccessRead, Scope: access.ScopeGlobal})

		err := f.svc.UpdateAccess(ctx, f.asPlayer(), e.Resource(),
			[]world.GrantInput{{Scope: access.ScopeGlobal}}, nil)
		require.ErrorIs(t, err, world.ErrForbidden)
	})
}

func TestAccessSummaryGate(t *testing.T) {
	ctx := context.Background()
	f := newSvcFixture()
	e := f.seedEntity("Council Hall", access.Grant{Access: access.AccessRead, Scope: access.ScopeGlobal})
	f.accessRepo.WorldMembers[f.worldID] = []ulid.ULID{f.architect, f.player}
	f.accessRepo.Users[f.architect] = access.UserInfo{ID: f.architect, DisplayName: "Avery"}
	f.accessRepo.Users[f.player] = access.UserInfo{ID: f.player, DisplayName: "Piotr"}

	t.Run("architect summarizes", func(t *testing.T) {
		summary, err := f.svc.AccessSummary(ctx, f.asArchitect(), e.Resource())
		require.NoError(t, err)
		assert.NotEmpty(t, summary.Access)
	})

	t.Run("world GM summarizes", func(t *testing.T) {
		_, err := f.svc.AccessSummary(ctx, world.Actor{UserID: f.worldGM}, e.Resource())
		require.NoError(t, err)
	})

	t.Run("reader without the role is forbidden", func(t *testing.T) {
		_, err := f.svc.AccessSummary(ctx, f.asPlayer(), e.Resource())
		require.ErrorIs(t, err, world.ErrForbidden)
	})

	t.Run("non-reader learns nothing", func(t *testing.T) {
		hidden := f.seedEntity("Hidden Hall")
		_, err := f.svc.AccessSummary(ctx, f.asPlayer(), hidden.Resource())
		require.ErrorIs(t, err, world.ErrNotFound)
	})
}
