// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AuditAction identifies what happened to a resource.
type AuditAction string

// Audit actions.
const (
	AuditCreate       AuditAction = "create"
	AuditUpdate       AuditAction = "update"
	AuditDelete       AuditAction = "delete"
	AuditAccessUpdate AuditAction = "access_update"
)

// Validate checks that the action is a known value.
func (a AuditAction) Validate() error {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditAccessUpdate:
		return nil
	default:
		return oops.Code(CodeInvalidRequest).With("action", string(a)).Wrap(ErrInvalidRequest)
	}
}

// FieldChange records one field edit inside an update audit entry.
// From and To hold display renderings of the old and new values.
type FieldChange struct {
	FieldKey string `json:"fieldKey"`
	Label    string `json:"label"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// GrantSpec is the wire form of a grant inside an access_update audit
// entry: scope plus optional scope id, access type implied by the list
// it appears in.
type GrantSpec struct {
	Scope   ScopeType `json:"scope"`
	ScopeID string    `json:"scopeId,omitempty"`
}

// SpecsForAccess renders the subset of grants with the given access
// type as audit payload specs, in normalized order.
func SpecsForAccess(grants []Grant, access AccessType) []GrantSpec {
	specs := make([]GrantSpec, 0)
	for _, g := range Normalize(grants) {
		if g.Access != access {
			continue
		}
		spec := GrantSpec{Scope: g.Scope}
		if g.ScopeID != nil {
			spec.ScopeID = g.ScopeID.String()
		}
		specs = append(specs, spec)
	}
	return specs
}

// AuditDetails is the structured payload of an audit entry. Changes is
// populated for update actions; Read/Write hold the submitted grant
// sets for access_update actions. Persisted as JSONB.
type AuditDetails struct {
	Changes []FieldChange `json:"changes,omitempty"`
	Read    []GrantSpec   `json:"read,omitempty"`
	Write   []GrantSpec   `json:"write,omitempty"`
}

// AuditEntry is one immutable, append-only record of an action on a
// resource. Entries are never mutated or deleted.
type AuditEntry struct {
	ID         ulid.ULID
	ResourceID ulid.ULID
	Action     AuditAction
	ActorID    ulid.ULID
	OccurredAt time.Time
	Details    AuditDetails

	// ActorName is populated on read paths that join the actor's
	// identity; it is ignored on append.
	ActorName string
}

// NewAuditEntry constructs a validated entry with a fresh ID and the
// current time.
func NewAuditEntry(resourceID ulid.ULID, action AuditAction, actorID ulid.ULID, details AuditDetails) (AuditEntry, error) {
	if err := action.Validate(); err != nil {
		return AuditEntry{}, err
	}
	return AuditEntry{
		ID:         ulid.Make(),
		ResourceID: resourceID,
		Action:     action,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Details:    details,
	}, nil
}
