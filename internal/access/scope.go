// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Resolver answers role questions for users against worlds, campaigns
// and characters. Lookups are memoized for the Resolver's lifetime; a
// Resolver is request-scoped and not safe for concurrent use.
type Resolver struct {
	repo       Repository
	worldRoles map[ulid.ULID]WorldRoles
	campaigns  map[ulid.ULID]CampaignInfo
	characters map[ulid.ULID]CharacterInfo
}

// NewResolver creates a Resolver backed by the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{
		repo:       repo,
		worldRoles: make(map[ulid.ULID]WorldRoles),
		campaigns:  make(map[ulid.ULID]CampaignInfo),
		characters: make(map[ulid.ULID]CharacterInfo),
	}
}

// WorldRoles returns the (memoized) structural roles of a world.
func (r *Resolver) WorldRoles(ctx context.Context, worldID ulid.ULID) (WorldRoles, error) {
	if roles, ok := r.worldRoles[worldID]; ok {
		return roles, nil
	}
	roles, err := r.repo.FetchWorldRoles(ctx, worldID)
	if err != nil {
		return WorldRoles{}, oops.With("world_id", worldID.String()).Wrap(err)
	}
	r.worldRoles[worldID] = roles
	return roles, nil
}

// Campaign returns the (memoized) campaign metadata.
func (r *Resolver) Campaign(ctx context.Context, campaignID ulid.ULID) (CampaignInfo, error) {
	if c, ok := r.campaigns[campaignID]; ok {
		return c, nil
	}
	c, err := r.repo.FetchCampaign(ctx, campaignID)
	if err != nil {
		return CampaignInfo{}, oops.With("campaign_id", campaignID.String()).Wrap(err)
	}
	r.campaigns[campaignID] = c
	return c, nil
}

// Character returns the (memoized) character metadata.
func (r *Resolver) Character(ctx context.Context, characterID ulid.ULID) (CharacterInfo, error) {
	if c, ok := r.characters[characterID]; ok {
		return c, nil
	}
	c, err := r.repo.FetchCharacter(ctx, characterID)
	if err != nil {
		return CharacterInfo{}, oops.With("character_id", characterID.String()).Wrap(err)
	}
	r.characters[characterID] = c
	return c, nil
}

// IsArchitect reports whether userID is the world's primary architect
// or one of its additional architects. Architect status is structural
// and outranks any grant.
func (r *Resolver) IsArchitect(ctx context.Context, userID, worldID ulid.ULID) (bool, error) {
	roles, err := r.WorldRoles(ctx, worldID)
	if err != nil {
		return false, err
	}
	return roles.IsArchitect(userID), nil
}

// IsGameMaster reports whether userID holds the world-level GM role.
// This is distinct from being a campaign's GM.
func (r *Resolver) IsGameMaster(ctx context.Context, userID, worldID ulid.ULID) (bool, error) {
	roles, err := r.WorldRoles(ctx, worldID)
	if err != nil {
		return false, err
	}
	return roles.IsGameMaster(userID), nil
}

// IsCampaignGM reports whether userID is the game master of the given
// campaign. A campaign GM is authoritative only within that campaign.
func (r *Resolver) IsCampaignGM(ctx context.Context, userID, campaignID ulid.ULID) (bool, error) {
	c, err := r.Campaign(ctx, campaignID)
	if err != nil {
		return false, err
	}
	return c.GMUserID == userID, nil
}

// ControlsCharacter reports whether userID is the controlling player of
// the given character.
func (r *Resolver) ControlsCharacter(ctx context.Context, userID, characterID ulid.ULID) (bool, error) {
	c, err := r.Character(ctx, characterID)
	if err != nil {
		return false, err
	}
	return c.PlayerID == userID, nil
}
