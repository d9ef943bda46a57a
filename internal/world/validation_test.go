// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package world_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/world"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Harbor District", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", world.MaxNameLength+1), true},
		{"control characters", "bad\x00name", true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
		{"unicode ok", "Höllental", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := world.ValidateName(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, world.ErrInvalidRequest)
				var verr *world.ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateTags(t *testing.T) {
	require.NoError(t, world.ValidateTags(nil))
	require.NoError(t, world.ValidateTags([]string{"rumor", "faction"}))
	require.Error(t, world.ValidateTags([]string{"dup", "dup"}))
	require.Error(t, world.ValidateTags([]string{""}))
	require.Error(t, world.ValidateTags([]string{strings.Repeat("t", world.MaxTagLength+1)}))

	many := make([]string, world.MaxTagCount+1)
	for i := range many {
		many[i] = strings.Repeat("x", i+1)
	}
	require.Error(t, world.ValidateTags(many))
}

func TestValidateFields(t *testing.T) {
	require.NoError(t, world.ValidateFields(nil))
	require.NoError(t, world.ValidateFields(map[string]world.Value{"age": world.Number(3)}))
	require.Error(t, world.ValidateFields(map[string]world.Value{"": world.Number(3)}))
	require.Error(t, world.ValidateFields(map[string]world.Value{"bad": {}}))
}
