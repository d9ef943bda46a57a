// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access_test

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/access"
)

func TestEval(t *testing.T) {
	worldID := ulid.Make()
	otherWorldID := ulid.Make()
	campaignID := ulid.Make()
	characterID := ulid.Make()

	res := access.Resource{Kind: access.ResourceEntity, ID: ulid.Make(), WorldID: worldID}
	grants := []access.Grant{
		{ResourceID: res.ID, Access: access.AccessRead, Scope: access.ScopeGlobal},
		{ResourceID: res.ID, Access: access.AccessWrite, Scope: access.ScopeCampaign, ScopeID: ulidPtr(campaignID)},
	}

	tests := []struct {
		name string
		pred access.Predicate
		want bool
	}{
		{"empty and matches", access.And{}, true},
		{"empty or never matches", access.Or{}, false},
		{"match none", access.MatchNone{}, false},
		{"world match", access.WorldIs{WorldID: worldID}, true},
		{"world mismatch", access.WorldIs{WorldID: otherWorldID}, false},
		{
			"global read grant present",
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
			true,
		},
		{
			"global write grant absent",
			access.ScopeMatch{Access: access.AccessWrite, Scope: access.ScopeGlobal},
			false,
		},
		{
			"campaign write grant present",
			access.ScopeMatch{Access: access.AccessWrite, Scope: access.ScopeCampaign, ScopeID: ulidPtr(campaignID)},
			true,
		},
		{
			"campaign read does not follow from campaign write",
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCampaign, ScopeID: ulidPtr(campaignID)},
			false,
		},
		{
			"character grant absent",
			access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCharacter, ScopeID: ulidPtr(characterID)},
			false,
		},
		{
			"and combines",
			access.And{Preds: []access.Predicate{
				access.WorldIs{WorldID: worldID},
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
			}},
			true,
		},
		{
			"and short circuits on mismatch",
			access.And{Preds: []access.Predicate{
				access.WorldIs{WorldID: otherWorldID},
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
			}},
			false,
		},
		{
			"or takes any branch",
			access.Or{Preds: []access.Predicate{
				access.MatchNone{},
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
			}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.Eval(tt.pred, res, grants))
		})
	}
}

func TestRenderSQL(t *testing.T) {
	worldID := ulid.Make()
	campaignID := ulid.Make()

	t.Run("requires table alias", func(t *testing.T) {
		_, _, err := access.RenderSQL(access.And{}, access.SQLOptions{})
		require.Error(t, err)
	})

	t.Run("world clause", func(t *testing.T) {
		clause, args, err := access.RenderSQL(access.WorldIs{WorldID: worldID}, access.SQLOptions{TableAlias: "e"})
		require.NoError(t, err)
		assert.Equal(t, "e.world_id = $1", clause)
		assert.Equal(t, []any{worldID.String()}, args)
	})

	t.Run("global scope match renders null scope id", func(t *testing.T) {
		pred := access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal}
		clause, args, err := access.RenderSQL(pred, access.SQLOptions{TableAlias: "e"})
		require.NoError(t, err)
		assert.Equal(t,
			"EXISTS (SELECT 1 FROM access_grants g WHERE g.resource_id = e.id AND g.access_type = $1 AND g.scope_type = $2 AND g.scope_id IS NULL)",
			clause)
		assert.Equal(t, []any{"read", "global"}, args)
	})

	t.Run("full read filter shape", func(t *testing.T) {
		pred := access.And{Preds: []access.Predicate{
			access.WorldIs{WorldID: worldID},
			access.Or{Preds: []access.Predicate{
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeGlobal},
				access.ScopeMatch{Access: access.AccessRead, Scope: access.ScopeCampaign, ScopeID: ulidPtr(campaignID)},
			}},
		}}
		clause, args, err := access.RenderSQL(pred, access.SQLOptions{TableAlias: "e"})
		require.NoError(t, err)
		assert.Equal(t,
			"(e.world_id = $1 AND "+
				"(EXISTS (SELECT 1 FROM access_grants g WHERE g.resource_id = e.id AND g.access_type = $2 AND g.scope_type = $3 AND g.scope_id IS NULL) OR "+
				"EXISTS (SELECT 1 FROM access_grants g WHERE g.resource_id = e.id AND g.access_type = $4 AND g.scope_type = $5 AND g.scope_id = $6)))",
			clause)
		assert.Equal(t, []any{worldID.String(), "read", "global", "read", "campaign", campaignID.String()}, args)
	})

	t.Run("arg offset shifts placeholders", func(t *testing.T) {
		clause, args, err := access.RenderSQL(access.WorldIs{WorldID: worldID}, access.SQLOptions{TableAlias: "l", ArgOffset: 2})
		require.NoError(t, err)
		assert.Equal(t, "l.world_id = $3", clause)
		assert.Len(t, args, 1)
	})

	t.Run("match none renders false", func(t *testing.T) {
		clause, args, err := access.RenderSQL(access.MatchNone{}, access.SQLOptions{TableAlias: "e"})
		require.NoError(t, err)
		assert.Equal(t, "FALSE", clause)
		assert.Empty(t, args)
	})
}
