// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// CanWrite reports whether the user may mutate the resource.
//
// Architects of the resource's world may always write; there is no
// character carve-out on the write path. Otherwise any WRITE grant
// matching the request context suffices: global, campaign (only when
// the request names that campaign), or character (only when the request
// names that character). READ and WRITE grants are independent; neither
// implies the other.
func (e *Engine) CanWrite(ctx context.Context, userID ulid.ULID, res Resource, reqCtx Context) (bool, error) {
	start := time.Now()

	architect, err := e.resolver.IsArchitect(ctx, userID, res.WorldID)
	if err != nil {
		return false, err
	}
	if architect {
		observeDecision("write", "architect", start)
		return true, nil
	}

	grants, err := e.repo.FetchGrants(ctx, res.ID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.Access != AccessWrite {
			continue
		}
		switch g.Scope {
		case ScopeGlobal:
			observeDecision("write", "grant", start)
			return true, nil
		case ScopeCampaign:
			if reqCtx.CampaignID != nil && g.ScopeID != nil && *g.ScopeID == *reqCtx.CampaignID {
				observeDecision("write", "grant", start)
				return true, nil
			}
		case ScopeCharacter:
			if reqCtx.CharacterID != nil && g.ScopeID != nil && *g.ScopeID == *reqCtx.CharacterID {
				observeDecision("write", "grant", start)
				return true, nil
			}
		}
	}

	observeDecision("write", "denied", start)
	return false, nil
}
