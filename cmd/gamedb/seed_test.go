// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDrinkwater/GameDB3-sub000/internal/seed"
)

func TestSeed_Properties(t *testing.T) {
	cmd := NewSeedCmd()

	assert.Equal(t, "seed", cmd.Use)
	assert.Contains(t, cmd.Short, "seed")
	assert.Contains(t, cmd.Long, "idempotent")
}

func TestSeed_Flags(t *testing.T) {
	cmd := NewSeedCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, flag := range []string{"--timeout", "--seed-profile"} {
		assert.Contains(t, output, flag, "Help missing %q flag", flag)
	}
}

func TestSeed_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"seed"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestSeed_UnknownProfileFailsBeforeConnecting(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/gamedb")
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"seed", "--seed-profile", "no-such-profile"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-profile")
}

func TestProfileName(t *testing.T) {
	assert.Equal(t, seed.DefaultProfile, profileName(""))
	assert.Equal(t, "campaign", profileName("campaign"))
}
