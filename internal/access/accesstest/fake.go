// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package accesstest provides an in-memory access.Repository for tests.
package accesstest

import (
	"context"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

// FakeRepository is a map-backed access.Repository. Populate the
// exported maps directly; zero value is not usable, use NewFakeRepository.
// Not safe for concurrent use.
type FakeRepository struct {
	Grants       map[ulid.ULID][]access.Grant
	Roles        map[ulid.ULID]access.WorldRoles
	Campaigns    map[ulid.ULID]access.CampaignInfo
	Characters   map[ulid.ULID]access.CharacterInfo
	WorldMembers map[ulid.ULID][]ulid.ULID
	Users        map[ulid.ULID]access.UserInfo
	History      map[ulid.ULID][]access.AuditEntry

	// Call counters for memoization assertions.
	FetchWorldRolesCalls int
	FetchCampaignCalls   int
	FetchCharacterCalls  int
}

// NewFakeRepository creates an empty FakeRepository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		Grants:       make(map[ulid.ULID][]access.Grant),
		Roles:        make(map[ulid.ULID]access.WorldRoles),
		Campaigns:    make(map[ulid.ULID]access.CampaignInfo),
		Characters:   make(map[ulid.ULID]access.CharacterInfo),
		WorldMembers: make(map[ulid.ULID][]ulid.ULID),
		Users:        make(map[ulid.ULID]access.UserInfo),
		History:      make(map[ulid.ULID][]access.AuditEntry),
	}
}

// Compile-time interface check.
var _ access.Repository = (*FakeRepository)(nil)

// FetchGrants implements access.Repository.
func (f *FakeRepository) FetchGrants(_ context.Context, resourceID ulid.ULID) ([]access.Grant, error) {
	out := make([]access.Grant, len(f.Grants[resourceID]))
	copy(out, f.Grants[resourceID])
	return out, nil
}

// ReplaceGrants implements access.Repository.
func (f *FakeRepository) ReplaceGrants(_ context.Context, resourceID ulid.ULID, grants []access.Grant) error {
	if err := access.ValidateGrantSet(resourceID, grants); err != nil {
		return err
	}
	f.Grants[resourceID] = access.Normalize(grants)
	return nil
}

// FetchWorldRoles implements access.Repository.
func (f *FakeRepository) FetchWorldRoles(_ context.Context, worldID ulid.ULID) (access.WorldRoles, error) {
	f.FetchWorldRolesCalls++
	roles, ok := f.Roles[worldID]
	if !ok {
		return access.WorldRoles{}, oops.Code(access.CodeNotFound).
			With("world_id", worldID.String()).Wrap(access.ErrNotFound)
	}
	return roles, nil
}

// FetchCampaign implements access.Repository.
func (f *FakeRepository) FetchCampaign(_ context.Context, campaignID ulid.ULID) (access.CampaignInfo, error) {
	f.FetchCampaignCalls++
	c, ok := f.Campaigns[campaignID]
	if !ok {
		return access.CampaignInfo{}, oops.Code(access.CodeNotFound).
			With("campaign_id", campaignID.String()).Wrap(access.ErrNotFound)
	}
	return c, nil
}

// FetchCharacter implements access.Repository.
func (f *FakeRepository) FetchCharacter(_ context.Context, characterID ulid.ULID) (access.CharacterInfo, error) {
	f.FetchCharacterCalls++
	c, ok := f.Characters[characterID]
	if !ok {
		return access.CharacterInfo{}, oops.Code(access.CodeNotFound).
			With("character_id", characterID.String()).Wrap(access.ErrNotFound)
	}
	return c, nil
}

// FetchWorldMemberUserIDs implements access.Repository.
func (f *FakeRepository) FetchWorldMemberUserIDs(_ context.Context, worldID ulid.ULID) ([]ulid.ULID, error) {
	out := make([]ulid.ULID, len(f.WorldMembers[worldID]))
	copy(out, f.WorldMembers[worldID])
	return out, nil
}

// FetchUsers implements access.Repository. Unknown IDs are omitted.
func (f *FakeRepository) FetchUsers(_ context.Context, userIDs []ulid.ULID) (map[ulid.ULID]access.UserInfo, error) {
	out := make(map[ulid.ULID]access.UserInfo, len(userIDs))
	for _, id := range userIDs {
		if info, ok := f.Users[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

// AppendAuditEntry implements access.Repository.
func (f *FakeRepository) AppendAuditEntry(_ context.Context, entry access.AuditEntry) error {
	if err := entry.Action.Validate(); err != nil {
		return err
	}
	f.History[entry.ResourceID] = append(f.History[entry.ResourceID], entry)
	return nil
}

// FetchAuditHistory implements access.Repository, newest first.
func (f *FakeRepository) FetchAuditHistory(_ context.Context, resourceID ulid.ULID) ([]access.AuditEntry, error) {
	entries := make([]access.AuditEntry, len(f.History[resourceID]))
	copy(entries, f.History[resourceID])
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].OccurredAt.After(entries[j].OccurredAt)
		}
		return entries[i].ID.Compare(entries[j].ID) > 0
	})
	for i := range entries {
		if info, ok := f.Users[entries[i].ActorID]; ok {
			entries[i].ActorName = info.DisplayName
		}
	}
	return entries, nil
}
