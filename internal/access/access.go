// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package access implements the scoped access-control and audit engine.
//
// Every world-scoped resource (an entity or a location) carries a set of
// grants scoping READ or WRITE access to the whole world, one campaign,
// or one character. Three structural roles sit above the grants: a
// world's architects (primary plus additional), world-level game
// masters, and per-campaign game masters. The engine reconciles roles
// and grants into read predicates, write decisions, per-note visibility
// and an auditable access summary.
//
// An Engine is request-scoped: role lookups are memoized for the
// lifetime of the Engine, so repeated checks for the same user and
// world hit the Repository once. Construct a fresh Engine per request.
package access

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ResourceKind identifies the kind of world-scoped resource.
type ResourceKind string

// Resource kinds.
const (
	ResourceEntity   ResourceKind = "entity"
	ResourceLocation ResourceKind = "location"
)

// Resource identifies one world-scoped resource for access decisions.
type Resource struct {
	Kind    ResourceKind
	ID      ulid.ULID
	WorldID ulid.ULID
}

// Context carries the campaign/character pair supplied with a request.
// Both fields are optional; scoped grants are only consulted for the
// scopes the context names.
type Context struct {
	CampaignID  *ulid.ULID
	CharacterID *ulid.ULID
}

// WorldRoles describes the structural roles of one world.
type WorldRoles struct {
	PrimaryArchitect     ulid.ULID
	AdditionalArchitects []ulid.ULID
	GameMasters          []ulid.ULID
}

// IsArchitect reports whether userID is the primary or an additional architect.
func (r WorldRoles) IsArchitect(userID ulid.ULID) bool {
	if r.PrimaryArchitect == userID {
		return true
	}
	for _, id := range r.AdditionalArchitects {
		if id == userID {
			return true
		}
	}
	return false
}

// IsGameMaster reports whether userID holds the world-level GM role.
func (r WorldRoles) IsGameMaster(userID ulid.ULID) bool {
	for _, id := range r.GameMasters {
		if id == userID {
			return true
		}
	}
	return false
}

// CampaignInfo is the engine's view of one campaign.
type CampaignInfo struct {
	WorldID            ulid.ULID
	Name               string
	GMUserID           ulid.ULID
	RosterCharacterIDs []ulid.ULID
}

// OnRoster reports whether characterID is on the campaign's roster.
func (c CampaignInfo) OnRoster(characterID ulid.ULID) bool {
	for _, id := range c.RosterCharacterIDs {
		if id == characterID {
			return true
		}
	}
	return false
}

// CharacterInfo is the engine's view of one character.
type CharacterInfo struct {
	WorldID  ulid.ULID
	Name     string
	PlayerID ulid.ULID
}

// UserInfo identifies an end-user for audit summaries.
type UserInfo struct {
	ID          ulid.ULID
	DisplayName string
	Email       string
}

// Repository is the persistence contract the engine consumes. Concrete
// implementations may participate in an enclosing transaction via the
// store package's transaction-in-context convention.
type Repository interface {
	// FetchGrants returns all grants for a resource, in no particular order.
	FetchGrants(ctx context.Context, resourceID ulid.ULID) ([]Grant, error)

	// ReplaceGrants atomically deletes all grants for a resource and
	// inserts the given set, in one transaction.
	ReplaceGrants(ctx context.Context, resourceID ulid.ULID, grants []Grant) error

	// FetchWorldRoles returns the structural roles of a world.
	FetchWorldRoles(ctx context.Context, worldID ulid.ULID) (WorldRoles, error)

	// FetchCampaign returns campaign metadata including the roster.
	FetchCampaign(ctx context.Context, campaignID ulid.ULID) (CampaignInfo, error)

	// FetchCharacter returns character metadata.
	FetchCharacter(ctx context.Context, characterID ulid.ULID) (CharacterInfo, error)

	// FetchWorldMemberUserIDs returns every user who can access the world.
	// World membership itself is an external collaborator concern.
	FetchWorldMemberUserIDs(ctx context.Context, worldID ulid.ULID) ([]ulid.ULID, error)

	// FetchUsers resolves display identities for the given user IDs.
	FetchUsers(ctx context.Context, userIDs []ulid.ULID) (map[ulid.ULID]UserInfo, error)

	// AppendAuditEntry appends one immutable audit record.
	AppendAuditEntry(ctx context.Context, entry AuditEntry) error

	// FetchAuditHistory returns a resource's audit records, newest first.
	FetchAuditHistory(ctx context.Context, resourceID ulid.ULID) ([]AuditEntry, error)
}

// Engine evaluates access decisions for one request.
type Engine struct {
	repo     Repository
	resolver *Resolver
}

// NewEngine creates a request-scoped Engine. Engines are cheap to
// construct; memoized role lookups live for the Engine's lifetime.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo, resolver: NewResolver(repo)}
}

// Resolver exposes the engine's memoizing scope resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}
