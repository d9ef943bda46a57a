// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// BuildReadFilter constructs the read predicate for listing or reading
// entities and locations in a world. The same algorithm serves both
// resource kinds.
//
// Architects see everything in their world — unless reqCtx carries a
// CharacterID. Supplying a character is how the UI "plays a character"
// to preview that character's restricted view, so its mere presence
// suppresses the architect bypass. This is a deliberate contract, not
// an oversight: there is no separate simulate flag.
func (e *Engine) BuildReadFilter(ctx context.Context, userID, worldID ulid.ULID, reqCtx Context) (Predicate, error) {
	start := time.Now()

	architect, err := e.resolver.IsArchitect(ctx, userID, worldID)
	if err != nil {
		return nil, err
	}
	if architect && reqCtx.CharacterID == nil {
		observeDecision("read_filter", "architect", start)
		return And{Preds: []Predicate{WorldIs{WorldID: worldID}}}, nil
	}

	scopes := []Predicate{
		ScopeMatch{Access: AccessRead, Scope: ScopeGlobal},
	}
	if reqCtx.CampaignID != nil {
		scopes = append(scopes, ScopeMatch{Access: AccessRead, Scope: ScopeCampaign, ScopeID: reqCtx.CampaignID})
	}
	if reqCtx.CharacterID != nil {
		scopes = append(scopes, ScopeMatch{Access: AccessRead, Scope: ScopeCharacter, ScopeID: reqCtx.CharacterID})
	}

	observeDecision("read_filter", "scoped", start)
	return And{Preds: []Predicate{
		WorldIs{WorldID: worldID},
		Or{Preds: scopes},
	}}, nil
}

// CanRead reports whether the user may read one concrete resource. It
// is BuildReadFilter applied to the resource's own grant set.
func (e *Engine) CanRead(ctx context.Context, userID ulid.ULID, res Resource, reqCtx Context) (bool, error) {
	pred, err := e.BuildReadFilter(ctx, userID, res.WorldID, reqCtx)
	if err != nil {
		return false, err
	}
	grants, err := e.repo.FetchGrants(ctx, res.ID)
	if err != nil {
		return false, err
	}
	return Eval(pred, res, grants), nil
}
