// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AccessType distinguishes read grants from write grants. The two are
// independent: neither implies the other.
type AccessType string

// Access types.
const (
	AccessRead  AccessType = "read"
	AccessWrite AccessType = "write"
)

// Validate checks that the access type is a known value.
func (a AccessType) Validate() error {
	switch a {
	case AccessRead, AccessWrite:
		return nil
	default:
		return oops.Code(CodeInvalidRequest).With("access_type", string(a)).Wrap(ErrInvalidRequest)
	}
}

// ScopeType is the breadth of a grant: the whole world, one campaign,
// or one character.
type ScopeType string

// Scope types.
const (
	ScopeGlobal    ScopeType = "global"
	ScopeCampaign  ScopeType = "campaign"
	ScopeCharacter ScopeType = "character"
)

// Validate checks that the scope type is a known value.
func (s ScopeType) Validate() error {
	switch s {
	case ScopeGlobal, ScopeCampaign, ScopeCharacter:
		return nil
	default:
		return oops.Code(CodeInvalidRequest).With("scope_type", string(s)).Wrap(ErrInvalidRequest)
	}
}

// Grant is one stored permission record: (resource, access type, scope).
// ScopeID is required iff Scope is not global. Duplicate grants on
// (Access, Scope, ScopeID) within one resource are redundant, not
// contradictory; Normalize collapses them.
type Grant struct {
	ResourceID ulid.ULID
	Access     AccessType
	Scope      ScopeType
	ScopeID    *ulid.ULID
}

// Validate checks the grant's internal invariants.
func (g Grant) Validate() error {
	if err := g.Access.Validate(); err != nil {
		return err
	}
	if err := g.Scope.Validate(); err != nil {
		return err
	}
	if g.Scope == ScopeGlobal && g.ScopeID != nil {
		return oops.Code(CodeInvalidRequest).
			With("scope_id", g.ScopeID.String()).
			Wrapf(ErrInvalidRequest, "global grants must not carry a scope id")
	}
	if g.Scope != ScopeGlobal && g.ScopeID == nil {
		return oops.Code(CodeInvalidRequest).
			With("scope_type", string(g.Scope)).
			Wrapf(ErrInvalidRequest, "%s grants require a scope id", g.Scope)
	}
	return nil
}

// canonical renders the grant's identity as "access:scope:scopeid-or-empty".
// ResourceID is deliberately excluded: signatures compare grant sets of
// one resource, and a set must fingerprint identically wherever it lives.
func (g Grant) canonical() string {
	scopeID := ""
	if g.ScopeID != nil {
		scopeID = g.ScopeID.String()
	}
	return string(g.Access) + ":" + string(g.Scope) + ":" + scopeID
}

// Normalize returns a copy of grants with duplicates on
// (Access, Scope, ScopeID) collapsed and a stable canonical order.
func Normalize(grants []Grant) []Grant {
	seen := make(map[string]Grant, len(grants))
	keys := make([]string, 0, len(grants))
	for _, g := range grants {
		key := g.canonical()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = g
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Grant, 0, len(keys))
	for _, key := range keys {
		out = append(out, seen[key])
	}
	return out
}

// Signature computes a canonical, order-independent fingerprint of a
// grant set. Two sets produce the same signature iff they contain the
// same logical grants, regardless of input order or duplicates. Used to
// detect whether an access edit changed anything, so no-op edits do not
// pollute the audit log.
func Signature(grants []Grant) string {
	lines := make([]string, 0, len(grants))
	seen := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		key := g.canonical()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		lines = append(lines, key)
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// ValidateGrantSet validates every grant and that all grants target the
// given resource.
func ValidateGrantSet(resourceID ulid.ULID, grants []Grant) error {
	for _, g := range grants {
		if err := g.Validate(); err != nil {
			return err
		}
		if g.ResourceID != resourceID {
			return oops.Code(CodeInvalidRequest).
				With("expected", resourceID.String()).
				With("got", g.ResourceID.String()).
				Wrapf(ErrInvalidRequest, "grant targets a different resource")
		}
	}
	return nil
}
