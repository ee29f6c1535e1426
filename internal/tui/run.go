package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/server"
)

// Options configures Run.
type Options struct {
	Logger    *log.Logger
	NoColor   bool
	AltScreen bool
}

// Run plays against backend until the user quits or ctx is cancelled.
func Run(ctx context.Context, backend Backend, params server.GameParams, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	SetColorMode(opts.NoColor)

	model := NewModel(ctx, backend, params, logger)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
