// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import "github.com/oklog/ulid/v2"

// GrantTemplate is a grant without a resource binding, used for the
// default grant sets stamped onto freshly created resources. Campaign
// and character scoped templates bind to the creating request's context;
// when the context does not name one, the template is skipped.
type GrantTemplate struct {
	Access AccessType `yaml:"access"`
	Scope  ScopeType  `yaml:"scope"`
}

// Validate checks the template's access and scope types.
func (t GrantTemplate) Validate() error {
	if err := t.Access.Validate(); err != nil {
		return err
	}
	return t.Scope.Validate()
}

// Bind instantiates the template for a concrete resource. ok is false
// when a scoped template finds no matching ID in the request context.
func (t GrantTemplate) Bind(resourceID ulid.ULID, reqCtx Context) (Grant, bool) {
	g := Grant{ResourceID: resourceID, Access: t.Access, Scope: t.Scope}
	switch t.Scope {
	case ScopeGlobal:
		return g, true
	case ScopeCampaign:
		if reqCtx.CampaignID == nil {
			return Grant{}, false
		}
		id := *reqCtx.CampaignID
		g.ScopeID = &id
		return g, true
	case ScopeCharacter:
		if reqCtx.CharacterID == nil {
			return Grant{}, false
		}
		id := *reqCtx.CharacterID
		g.ScopeID = &id
		return g, true
	default:
		return Grant{}, false
	}
}

// BindTemplates instantiates a template set for a resource, dropping
// templates the request context cannot satisfy.
func BindTemplates(templates []GrantTemplate, resourceID ulid.ULID, reqCtx Context) []Grant {
	grants := make([]Grant, 0, len(templates))
	for _, t := range templates {
		if g, ok := t.Bind(resourceID, reqCtx); ok {
			grants = append(grants, g)
		}
	}
	return Normalize(grants)
}
