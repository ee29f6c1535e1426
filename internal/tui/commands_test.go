package tui

import (
	"testing"

	"github.com/lox/pebbles/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		kind  commandKind
		count uint32
	}{
		{"", cmdNone, 0},
		{"   ", cmdNone, 0},
		{"3", cmdTake, 3},
		{"take 2", cmdTake, 2},
		{"T 1", cmdTake, 1},
		{"0", cmdTake, 0},
		{"giveup", cmdGiveUp, 0},
		{"forfeit", cmdGiveUp, 0},
		{"state", cmdState, 0},
		{"help", cmdHelp, 0},
		{"?", cmdHelp, 0},
		{"quit", cmdQuit, 0},
		{"restart", cmdRestart, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, cmd.kind)
			assert.Equal(t, tt.count, cmd.count)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, input := range []string{
		"dance",
		"take",
		"take many",
		"take 1 2",
		"-1",
		"99999999999",
		"restart medium",
		"restart hard 1 2 3",
		"restart 10 x",
	} {
		_, err := parseCommand(input)
		assert.Error(t, err, input)
	}

	_, err := parseCommand("dance")
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestRestartApply(t *testing.T) {
	seven, three := uint32(7), uint32(3)
	base := server.GameParams{Difficulty: "easy", PebblesCount: &seven, MaxPebblesPerTurn: &three, RandomSequence: []uint32{1}}

	cmd, err := parseCommand("restart hard 40")
	require.NoError(t, err)
	got := cmd.apply(base)
	assert.Equal(t, "hard", got.Difficulty)
	assert.Equal(t, uint32(40), *got.PebblesCount)
	assert.Equal(t, uint32(3), *got.MaxPebblesPerTurn)
	assert.Equal(t, []uint32{1}, got.RandomSequence)

	cmd, err = parseCommand("restart 20 5")
	require.NoError(t, err)
	got = cmd.apply(base)
	assert.Equal(t, "easy", got.Difficulty)
	assert.Equal(t, uint32(20), *got.PebblesCount)
	assert.Equal(t, uint32(5), *got.MaxPebblesPerTurn)

	assert.Equal(t, uint32(7), *base.PebblesCount)
}
