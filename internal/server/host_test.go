package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 { return &v }

var testDefaults = game.Config{Difficulty: game.Easy, PebblesCount: 15, MaxPebblesPerTurn: 3}

func TestGameHost_NoGame(t *testing.T) {
	h := NewGameHost(testDefaults, nil, nil)

	_, err := h.Turn(1)
	assert.ErrorIs(t, err, ErrNoGame)
	_, err = h.GiveUp()
	assert.ErrorIs(t, err, ErrNoGame)
	_, err = h.State()
	assert.ErrorIs(t, err, ErrNoGame)
}

func TestGameHost_Start(t *testing.T) {
	t.Run("defaults fill missing parameters", func(t *testing.T) {
		h := NewGameHost(testDefaults, nil, nil)
		reply, err := h.Start(GameParams{RandomSequence: []uint32{0}})
		require.NoError(t, err)

		assert.Empty(t, reply.Events)
		assert.Equal(t, StateData{
			PebblesCount:      15,
			MaxPebblesPerTurn: 3,
			PebblesRemaining:  15,
			Difficulty:        "easy",
			FirstPlayer:       "human",
		}, reply.State)
	})

	t.Run("explicit parameters override defaults", func(t *testing.T) {
		h := NewGameHost(testDefaults, nil, nil)
		reply, err := h.Start(GameParams{
			Difficulty:        "easy",
			PebblesCount:      u32(100),
			MaxPebblesPerTurn: u32(10),
			RandomSequence:    []uint32{1, 2},
		})
		require.NoError(t, err)

		assert.Equal(t, []EventData{{Type: "counter_turn", Player: "automated", Count: 3}}, reply.Events)
		assert.Equal(t, uint32(97), reply.State.PebblesRemaining)
		assert.Equal(t, "automated", reply.State.FirstPlayer)
	})

	t.Run("nil sequence uses live factory", func(t *testing.T) {
		calls := 0
		h := NewGameHost(testDefaults, func() *randutil.Source {
			calls++
			return randutil.NewLive(randutil.New(7))
		}, nil)

		_, err := h.Start(GameParams{})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)

		_, err = h.Start(GameParams{RandomSequence: []uint32{0}})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		for name, params := range map[string]GameParams{
			"zero pebbles":     {PebblesCount: u32(0), RandomSequence: []uint32{0}},
			"zero max":         {MaxPebblesPerTurn: u32(0), RandomSequence: []uint32{0}},
			"bad difficulty":   {Difficulty: "medium", RandomSequence: []uint32{0}},
			"empty replay seq": {RandomSequence: []uint32{}},
		} {
			h := NewGameHost(testDefaults, nil, nil)
			reply, err := h.Start(params)
			assert.ErrorIs(t, err, game.ErrInvalidConfiguration, name)
			assert.Nil(t, reply, name)
			assert.Equal(t, ErrorCodeInvalidConfiguration, ErrorCode(err), name)
		}
	})

	t.Run("failed restart keeps current game", func(t *testing.T) {
		h := NewGameHost(testDefaults, nil, nil)
		_, err := h.Start(GameParams{PebblesCount: u32(20), RandomSequence: []uint32{0}})
		require.NoError(t, err)

		_, err = h.Start(GameParams{PebblesCount: u32(0), RandomSequence: []uint32{0}})
		require.Error(t, err)

		state, err := h.State()
		require.NoError(t, err)
		assert.Equal(t, uint32(20), state.PebblesRemaining)
	})
}

func TestGameHost_Play(t *testing.T) {
	h := NewGameHost(testDefaults, nil, nil)
	_, err := h.Start(GameParams{PebblesCount: u32(10), RandomSequence: []uint32{0}})
	require.NoError(t, err)

	// 7 remain after the human move; 0 % 2 + 1
	reply, err := h.Turn(3)
	require.NoError(t, err)
	assert.Equal(t, []EventData{
		{Type: "counter_turn", Player: "human", Count: 3},
		{Type: "counter_turn", Player: "automated", Count: 1},
	}, reply.Events)
	assert.Equal(t, uint32(6), reply.State.PebblesRemaining)

	_, err = h.Turn(4)
	assert.ErrorIs(t, err, game.ErrInvalidMove)
	assert.Equal(t, ErrorCodeInvalidMove, ErrorCode(err))

	reply, err = h.GiveUp()
	require.NoError(t, err)
	assert.Equal(t, []EventData{{Type: "won", Player: "automated", Count: 0, Forfeited: true}}, reply.Events)
	assert.True(t, reply.State.Forfeited)
	assert.Equal(t, "automated", reply.State.Winner)
	assert.True(t, reply.State.Finished())

	_, err = h.Turn(1)
	assert.ErrorIs(t, err, game.ErrGameFinished)
	assert.Equal(t, ErrorCodeGameFinished, ErrorCode(err))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeNoGame, ErrorCode(ErrNoGame))
	assert.Equal(t, ErrorCodeInvalidMove, ErrorCode(fmt.Errorf("wrapped: %w", game.ErrInvalidMove)))
	assert.Equal(t, ErrorCodeInternal, ErrorCode(errors.New("boom")))
}
