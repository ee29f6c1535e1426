package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pebbles/internal/game"
	"github.com/lox/pebbles/internal/server"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdTake
	cmdGiveUp
	cmdRestart
	cmdState
	cmdHelp
	cmdQuit
)

var errUnknownCommand = errors.New("unknown command")

type command struct {
	kind  commandKind
	count uint32
	// restart overrides; nil keeps the current setting
	difficulty string
	pebbles    *uint32
	max        *uint32
}

const helpText = `Commands:
  <n> | take <n>                   take n pebbles
  giveup                           concede the game
  restart [easy|hard] [count] [max] start a new game
  state                            show the pile
  help                             show this help
  quit                             leave`

func parseCommand(input string) (command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return command{kind: cmdNone}, nil
	}

	name, args := fields[0], fields[1:]
	if n, err := parseCount(name); err == nil && len(args) == 0 {
		return command{kind: cmdTake, count: n}, nil
	}

	switch name {
	case "take", "t":
		if len(args) != 1 {
			return command{}, fmt.Errorf("usage: take <n>")
		}
		n, err := parseCount(args[0])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdTake, count: n}, nil

	case "giveup", "give_up", "forfeit", "concede":
		return command{kind: cmdGiveUp}, nil

	case "restart", "new":
		return parseRestart(args)

	case "state", "s":
		return command{kind: cmdState}, nil

	case "help", "h", "?":
		return command{kind: cmdHelp}, nil

	case "quit", "exit", "q":
		return command{kind: cmdQuit}, nil
	}

	return command{}, fmt.Errorf("%w: %q (type help)", errUnknownCommand, name)
}

func parseRestart(args []string) (command, error) {
	cmd := command{kind: cmdRestart}

	if len(args) > 0 {
		if _, err := strconv.ParseUint(args[0], 10, 32); err != nil {
			if _, err := game.ParseDifficulty(args[0]); err != nil {
				return command{}, fmt.Errorf("unknown difficulty %q", args[0])
			}
			cmd.difficulty = args[0]
			args = args[1:]
		}
	}

	if len(args) > 2 {
		return command{}, fmt.Errorf("usage: restart [easy|hard] [count] [max]")
	}
	if len(args) > 0 {
		n, err := parseCount(args[0])
		if err != nil {
			return command{}, err
		}
		cmd.pebbles = &n
	}
	if len(args) > 1 {
		n, err := parseCount(args[1])
		if err != nil {
			return command{}, err
		}
		cmd.max = &n
	}
	return cmd, nil
}

// apply merges restart overrides into the parameters of the previous game.
func (c command) apply(params server.GameParams) server.GameParams {
	if c.difficulty != "" {
		params.Difficulty = c.difficulty
	}
	if c.pebbles != nil {
		params.PebblesCount = c.pebbles
	}
	if c.max != nil {
		params.MaxPebblesPerTurn = c.max
	}
	return params
}

func parseCount(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not a pebble count: %q", s)
	}
	return uint32(n), nil
}
