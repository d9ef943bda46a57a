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

func TestResolverMemoizesLookups(t *testing.T) {
	ctx := context.Background()
	worldID := ulid.Make()
	campaignID := ulid.Make()
	characterID := ulid.Make()
	architect := ulid.Make()
	gm := ulid.Make()
	player := ulid.Make()

	repo := accesstest.NewFakeRepository()
	repo.Roles[worldID] = access.WorldRoles{PrimaryArchitect: architect}
	repo.Campaigns[campaignID] = access.CampaignInfo{WorldID: worldID, Name: "The Long Night", GMUserID: gm}
	repo.Characters[characterID] = access.CharacterInfo{WorldID: worldID, Name: "Ser Aldric", PlayerID: player}

	r := access.NewResolver(repo)

	for range 3 {
		_, err := r.WorldRoles(ctx, worldID)
		require.NoError(t, err)
		_, err = r.Campaign(ctx, campaignID)
		require.NoError(t, err)
		_, err = r.Character(ctx, characterID)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, repo.FetchWorldRolesCalls)
	assert.Equal(t, 1, repo.FetchCampaignCalls)
	assert.Equal(t, 1, repo.FetchCharacterCalls)

	// Role questions reuse the memoized fetches.
	ok, err := r.IsArchitect(ctx, architect, worldID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.IsCampaignGM(ctx, gm, campaignID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.ControlsCharacter(ctx, player, characterID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, repo.FetchWorldRolesCalls)
	assert.Equal(t, 1, repo.FetchCampaignCalls)
	assert.Equal(t, 1, repo.FetchCharacterCalls)
}

func TestResolverRoles(t *testing.T) {
	ctx := context.Background()
	worldID := ulid.Make()
	primary := ulid.Make()
	additional := ulid.Make()
	worldGM := ulid.Make()
	nobody := ulid.Make()

	repo := accesstest.NewFakeRepository()
	repo.Roles[worldID] = access.WorldRoles{
		PrimaryArchitect:     primary,
		AdditionalArchitects: []ulid.ULID{additional},
		GameMasters:          []ulid.ULID{worldGM},
	}

	r := access.NewResolver(repo)

	tests := []struct {
		name   string
		check  func() (bool, error)
		expect bool
	}{
		{"primary architect", func() (bool, error) { return r.IsArchitect(ctx, primary, worldID) }, true},
		{"additional architect", func() (bool, error) { return r.IsArchitect(ctx, additional, worldID) }, true},
		{"world gm is not architect", func() (bool, error) { return r.IsArchitect(ctx, worldGM, worldID) }, false},
		{"world gm", func() (bool, error) { return r.IsGameMaster(ctx, worldGM, worldID) }, true},
		{"architect is not world gm", func() (bool, error) { return r.IsGameMaster(ctx, primary, worldID) }, false},
		{"stranger", func() (bool, error) { return r.IsArchitect(ctx, nobody, worldID) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check()
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestResolverUnknownIDs(t *testing.T) {
	ctx := context.Background()
	repo := accesstest.NewFakeRepository()
	r := access.NewResolver(repo)

	_, err := r.WorldRoles(ctx, ulid.Make())
	require.ErrorIs(t, err, access.ErrNotFound)

	_, err = r.Campaign(ctx, ulid.Make())
	require.ErrorIs(t, err, access.ErrNotFound)

	_, err = r.Character(ctx, ulid.Make())
	require.ErrorIs(t, err, access.ErrNotFound)
}
