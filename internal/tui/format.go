package tui

import (
	"errors"
	"fmt"

	"github.com/lox/pebbles/internal/client"
	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/server"
)

// Wire names of the players and of the winning event.
var (
	humanName     = game.Human.String()
	automatedName = game.Automated.String()
	wonType       = game.EventTypeWon.String()
)

func playerName(p string) string {
	switch p {
	case humanName:
		return "You"
	case automatedName:
		return "Computer"
	}
	return p
}

func describeEvent(e server.EventData) string {
	who := playerName(e.Player)
	switch {
	case e.Type == wonType && e.Forfeited:
		return "You gave up. Computer wins."
	case e.Type == wonType && e.Player == humanName:
		return fmt.Sprintf("You took %d and won!", e.Count)
	case e.Type == wonType:
		return fmt.Sprintf("%s took %d and won.", who, e.Count)
	case e.Count == 1:
		return fmt.Sprintf("%s took 1 pebble.", who)
	default:
		return fmt.Sprintf("%s took %d pebbles.", who, e.Count)
	}
}

func describeError(err error) string {
	var remote *client.RemoteError
	switch {
	case errors.As(err, &remote):
		return "Rejected: " + remote.Message
	case errors.Is(err, game.ErrInvalidMove), errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrInvalidConfiguration), errors.Is(err, server.ErrNoGame):
		return "Rejected: " + err.Error()
	case errors.Is(err, client.ErrClosed):
		return "Connection to server lost."
	}
	return "Error: " + err.Error()
}
