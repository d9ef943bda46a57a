// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access/accesstest"
)

// filterFixture is a world with one architect, one plain member, one
// campaign and one rostered character controlled by the member.
type filterFixture struct {
	repo        *accesstest.FakeRepository
	engine      *access.Engine
	worldID     ulid.ULID
	architect   ulid.ULID
	member      ulid.ULID
	campaignID  ulid.ULID
	characterID ulid.ULID
}

func newFilterFixture() *filterFixture {
	f := &filterFixture{
		repo:        accesstest.NewFakeRepository(),
		worldID:     ulid.Make(),
		architect:   ulid.Make(),
		member:      ulid.Make(),
		campaignID:  ulid.Make(),
		characterID: ulid.Make(),
	}
	f.repo.Roles[f.worldID] = access.WorldRoles{PrimaryArchitect: f.architect}
	f.repo.Campaigns[f.campaignID] = access.CampaignInfo{
		WorldID:            f.worldID,
		Name:               "Embers of Ruin",
		GMUserID:           ulid.Make(),
		RosterCharacterIDs: []ulid.ULID{f.characterID},
	}
	f.repo.Characters[f.characterID] = access.CharacterInfo{WorldID: f.worldID, Name: "Mira", PlayerID: f.member}
	f.engine = access.NewEngine(f.repo)
	return f
}

func (f *filterFixture) entity(grants ...access.Grant) access.Resource {
	res := access.Resource{Kind: access.ResourceEntity, ID: ulid.Make(), WorldID: f.worldID}
	for i := range grants {
		grants[i].ResourceID = res.ID
	}
	f.repo.Grants[res.ID] = grants
	return res
}

func TestBuildReadFilterArchitect(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture()

	t.Run("architect without character sees the whole world", func(t *testing.T) {
		pred, err := f.engine.BuildReadFilter(ctx, f.architect, f.worldID, access.Context{})
		require.NoError(t, err)
		assert.Equal(t, access.And{Preds: []access.Predicate{access.WorldIs{WorldID: f.worldID}}}, pred)
	})

	t.Run("supplying a character suppresses the bypass", func(t *testing.T) {
		// Playing a character previews that character's view, even
		// for an architect.
		pred, err := f.engine.BuildReadFilter(ctx, f.architect, f.worldID, access.Context{CharacterID: ulidPtr(f.characterID)})
		require.NoError(t, err)
		assert.Equal(t, access.And{Preds: []access.Predicate{
			access.WorldIs{WorldID: f.worldID},
			access.Or{Preds: []access.Predicate{
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCharacter, ScopeID: ulidPtr(f.characterID)},
			}},
		}}, pred)
	})
}

func TestBuildReadFilterScopes(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture()

	pred, err := f.engine.BuildReadFilter(ctx, f.member, f.worldID, access.Context{
		CampaignID:  ulidPtr(f.campaignID),
		CharacterID: ulidPtr(f.characterID),
	})
	require.NoError(t, err)
	assert.Equal(t, access.And{Preds: []access.Predicate{
		access.WorldIs{WorldID: f.worldID},
		access.Or{Preds: []access.Predicate{
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)},
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCharacter, ScopeID: ulidPtr(f.characterID)},
		}},
	}}, pred)

	// Without context only the global branch remains.
	pred, err = f.engine.BuildReadFilter(ctx, f.member, f.worldID, access.Context{})
	require.NoError(t, err)
	assert.Equal(t, access.And{Preds: []access.Predicate{
		access.WorldIs{WorldID: f.worldID},
		access.Or{Preds: []access.Predicate{
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
		}},
	}}, pred)
}

func TestCanRead(t *testing.T) {
	ctx := context.Background()

	t.Run("global read grant is visible to any member", func(t *testing.T) {
		f := newFilterFixture()
		res := f.entity(access.Grant{Access: access.AccessRead, Scope: access.ScopeGlobal})

		ok, err := f.engine.CanRead(ctx, f.member, res, access.Context{})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("campaign grant needs matching campaign context", func(t *testing.T) {
		f := newFilterFixture()
		res := f.entity(access.Grant{Access: access.AccessRead, Scope: access.ScopeCampaign, ScopeID: ulidPtr(f.campaignID)})

		ok, err := f.engine.CanRead(ctx, f.member, res, access.Context{CampaignID: ulidPtr(f.campaignID)})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.engine.CanRead(ctx, f.member, res, access.Context{})
		require.NoError(t, err)
		assert.False(t, ok, "campaign grants are inert without campaign context")

		otherCampaign := ulid.Make()
		ok, err = f.engine.CanRead(ctx, f.member, res, access.Context{CampaignID: ulidPtr(otherCampaign)})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("character grant needs matching character context", func(t *testing.T) {
		f := newFilterFixture()
		res := f.entity(access.Grant{Access: access.AccessRead, Scope: access.ScopeCharacter, ScopeID: ulidPtr(f.characterID)})

		ok, err := f.engine.CanRead(ctx, f.member, res, access.Context{CharacterID: ulidPtr(f.characterID)})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.engine.CanRead(ctx, f.member, res, access.Context{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("write grants never confer read", func(t *testing.T) {
		f := newFilterFixture()
		res := f.entity(access.Grant{Access: access.AccessWrite, Scope: access.ScopeGlobal})

		ok, err := f.engine.CanRead(ctx, f.member, res, access.Context{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ungranted resource is invisible except to architects", func(t *testing.T) {
		f := newFilterFixture()
		res := f.entity()

		ok, err := f.engine.CanRead(ctx, f.member, res, access.Context{})
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.engine.CanRead(ctx, f.architect, res, access.Context{})
		require.NoError(t, err)
		assert.True(t, ok)

		// The architect previewing a character loses the bypass too.
		ok, err = f.engine.CanRead(ctx, f.architect, res, access.Context{CharacterID: ulidPtr(f.characterID)})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
