// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Predicate is a declarative boolean expression over resource
// attributes and grants. It is a small tagged tree so it can be tested
// on its own, evaluated in memory against fetched grants, or rendered
// to SQL — independent of any one query builder.
type Predicate interface {
	pred()
}

// And matches when every child predicate matches. An empty And matches.
type And struct {
	Preds []Predicate
}

// Or matches when any child predicate matches. An empty Or never matches.
type Or struct {
	Preds []Predicate
}

// WorldIs constrains the resource to one world.
type WorldIs struct {
	WorldID ulid.ULID
}

// ScopeMatch matches when the resource carries a grant with the given
// access type and scope. ScopeID must be set for campaign/character
// scopes and nil for global.
type ScopeMatch struct {
	Access  AccessType
	Scope   ScopeType
	ScopeID *ulid.ULID
}

// MatchNone never matches.
type MatchNone struct{}

func (And) pred()        {}
func (Or) pred()         {}
func (WorldIs) pred()    {}
func (ScopeMatch) pred() {}
func (MatchNone) pred()  {}

// Eval evaluates the predicate in memory against a resource and its
// fetched grant set.
func Eval(p Predicate, res Resource, grants []Grant) bool {
	switch n := p.(type) {
	case And:
		for _, c := range n.Preds {
			if !Eval(c, res, grants) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range n.Preds {
			if Eval(c, res, grants) {
				return true
			}
		}
		return false
	case WorldIs:
		return res.WorldID == n.WorldID
	case ScopeMatch:
		for _, g := range grants {
			if g.Access != n.Access || g.Scope != n.Scope {
				continue
			}
			if n.ScopeID == nil {
				if g.ScopeID == nil {
					return true
				}
				continue
			}
			if g.ScopeID != nil && *g.ScopeID == *n.ScopeID {
				return true
			}
		}
		return false
	case MatchNone:
		return false
	default:
		return false
	}
}

// SQLOptions controls SQL rendering of a predicate.
type SQLOptions struct {
	// TableAlias is the alias of the resource table being filtered.
	// Its id column is "<alias>.id" and its world column "<alias>.world_id".
	TableAlias string

	// ArgOffset is the number of positional arguments already consumed
	// by the enclosing query; placeholders start at $ArgOffset+1.
	ArgOffset int
}

// RenderSQL renders the predicate to a SQL boolean expression over the
// access_grants table plus positional arguments. The result is meant to
// be embedded in a WHERE clause.
func RenderSQL(p Predicate, opts SQLOptions) (string, []any, error) {
	if opts.TableAlias == "" {
		return "", nil, oops.Code(CodeInvalidRequest).Errorf("table alias must not be empty")
	}
	r := &sqlRenderer{alias: opts.TableAlias, argIdx: opts.ArgOffset}
	clause, err := r.render(p)
	if err != nil {
		return "", nil, err
	}
	return clause, r.args, nil
}

type sqlRenderer struct {
	alias  string
	argIdx int
	args   []any
}

func (r *sqlRenderer) placeholder(v any) string {
	r.argIdx++
	r.args = append(r.args, v)
	return fmt.Sprintf("$%d", r.argIdx)
}

func (r *sqlRenderer) render(p Predicate) (string, error) {
	switch n := p.(type) {
	case And:
		if len(n.Preds) == 0 {
			return "TRUE", nil
		}
		return r.renderJoin(n.Preds, " AND ")
	case Or:
		if len(n.Preds) == 0 {
			return "FALSE", nil
		}
		return r.renderJoin(n.Preds, " OR ")
	case WorldIs:
		return fmt.Sprintf("%s.world_id = %s", r.alias, r.placeholder(n.WorldID.String())), nil
	case ScopeMatch:
		access := r.placeholder(string(n.Access))
		scope := r.placeholder(string(n.Scope))
		scopeCond := "g.scope_id IS NULL"
		if n.ScopeID != nil {
			scopeCond = "g.scope_id = " + r.placeholder(n.ScopeID.String())
		}
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM access_grants g WHERE g.resource_id = %s.id AND g.access_type = %s AND g.scope_type = %s AND %s)",
			r.alias, access, scope, scopeCond,
		), nil
	case MatchNone:
		return "FALSE", nil
	default:
		return "", oops.Errorf("unknown predicate node %T", p)
	}
}

func (r *sqlRenderer) renderJoin(preds []Predicate, sep string) (string, error) {
	parts := make([]string, 0, len(preds))
	for _, c := range preds {
		clause, err := r.render(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}
