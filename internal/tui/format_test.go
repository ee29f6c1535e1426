package tui

import (
	"testing"

	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/server"
	"github.com/stretchr/testify/assert"
)

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		name  string
		event game.Event
		want  string
	}{
		{"human single", game.CounterTurn(game.Human, 1), "You took 1 pebble."},
		{"automated several", game.CounterTurn(game.Automated, 3), "Computer took 3 pebbles."},
		{"human wins", game.Won(game.Human, 2), "You took 2 and won!"},
		{"automated wins", game.Won(game.Automated, 1), "Computer took 1 and won."},
		{"forfeit", game.WonByForfeit(game.Automated), "You gave up. Computer wins."},
		{"zero count win is not a forfeit", game.Won(game.Automated, 0), "Computer took 0 and won."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeEvent(server.EventDataFromGame(tt.event)))
		})
	}
}

func TestPlayerName(t *testing.T) {
	assert.Equal(t, "You", playerName(game.Human.String()))
	assert.Equal(t, "Computer", playerName(game.Automated.String()))
	assert.Equal(t, "someone", playerName("someone"))
}
