// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

// mapParents is a ParentResolver over a parent map.
type mapParents map[ulid.ULID]*ulid.ULID

func (m mapParents) ParentOf(_ context.Context, id ulid.ULID) (*ulid.ULID, error) {
	return m[id], nil
}

func TestHasCycle(t *testing.T) {
	ctx := context.Background()
	a, b, c, d := ulid.Make(), ulid.Make(), ulid.Make(), ulid.Make()

	// a -> b -> c (root), d is a separate root.
	parents := mapParents{a: &b, b: &c, c: nil, d: nil}

	tests := []struct {
		name     string
		node     ulid.ULID
		proposed *ulid.ULID
		want     bool
	}{
		{"nil parent never cycles", a, nil, false},
		{"self parent", a, &a, true},
		{"attach root under leaf of its own chain", c, &a, true},
		{"attach under own middle ancestor", c, &b, true},
		{"attach under unrelated root", a, &d, false},
		{"deepen a valid chain", d, &a, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := world.HasCycle(ctx, parents, tt.node, tt.proposed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("corrupt upstream cycle terminates and refuses", func(t *testing.T) {
		x, y := ulid.Make(), ulid.Make()
		corrupt := mapParents{x: &y, y: &x}
		got, err := world.HasCycle(ctx, corrupt, ulid.Make(), &x)
		require.NoError(t, err)
		assert.True(t, got)
	})
}
