// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ParentResolver resolves one step of the location hierarchy. Inside a
// reparent transaction it must read the pre-write chain.
type ParentResolver interface {
	// ParentOf returns the current parent of a location, nil for roots.
	ParentOf(ctx context.Context, locationID ulid.ULID) (*ulid.ULID, error)
}

// HasCycle reports whether attaching nodeID under proposedParentID would
// create a cycle. It walks parent links upward from the proposed parent
// and answers true as soon as nodeID is encountered; proposing a node as
// its own parent is the degenerate case. The visited set guards against
// pre-existing corruption in the chain so the walk always terminates.
func HasCycle(ctx context.Context, resolver ParentResolver, nodeID ulid.ULID, proposedParentID *ulid.ULID) (bool, error) {
	if proposedParentID == nil {
		return false, nil
	}

	visited := make(map[ulid.ULID]struct{})
	current := proposedParentID
	for current != nil {
		if *current == nodeID {
			return true, nil
		}
		if _, seen := visited[*current]; seen {
			// Existing cycle upstream of the proposal; refuse to attach to it.
			return true, nil
		}
		visited[*current] = struct{}{}

		parent, err := resolver.ParentOf(ctx, *current)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}
