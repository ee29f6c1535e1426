// Package tui is the terminal front end for a pebbles game.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/pebbles/internal/server"
)

const (
	paneLog   = 0
	paneInput = 1

	sidebarWidth = 28
	pileWidth    = 20
	pileRows     = 6
)

// resultMsg carries a backend reply into the update loop.
type resultMsg struct {
	started bool
	events  *server.EventsData
	state   *server.StateData
	err     error
}

type expiredMsg struct {
	data server.SessionExpiredData
}

// Model is the Bubble Tea model for a game session.
type Model struct {
	ctx     context.Context
	backend Backend
	params  server.GameParams
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	gameLog  []string
	plainLog []string
	state    *server.StateData
	busy     bool
	expired  bool
	quitting bool

	focusedPane int

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewModel creates a model that starts a game with params once the program
// runs.
func NewModel(ctx context.Context, backend Backend, params server.GameParams, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "How many pebbles? (help for commands)"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		backend:     backend,
		params:      params,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: paneInput,
	}
}

// Init starts the first game.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.start(m.params)}
	if exp, ok := m.backend.(Expirer); ok {
		cmds = append(cmds, waitForExpiry(exp))
	}
	return tea.Batch(cmds...)
}

// Log returns the game log without styling.
func (m *Model) Log() []string {
	out := make([]string, len(m.plainLog))
	copy(out, m.plainLog)
	return out
}

// State returns the latest snapshot, or nil before the first game starts.
func (m *Model) State() *server.StateData {
	return m.state
}

func waitForExpiry(exp Expirer) tea.Cmd {
	return func() tea.Msg {
		return expiredMsg{data: <-exp.Expired()}
	}
}

func (m *Model) start(params server.GameParams) tea.Cmd {
	m.busy = true
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		reply, err := backend.Start(ctx, params)
		return resultMsg{started: true, events: reply, err: err}
	}
}

func (m *Model) turn(count uint32) tea.Cmd {
	m.busy = true
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		reply, err := backend.Turn(ctx, count)
		return resultMsg{events: reply, err: err}
	}
}

func (m *Model) giveUp() tea.Cmd {
	m.busy = true
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		reply, err := backend.GiveUp(ctx)
		return resultMsg{events: reply, err: err}
	}
}

func (m *Model) fetchState() tea.Cmd {
	m.busy = true
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		state, err := backend.State(ctx)
		return resultMsg{state: state, err: err}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case resultMsg:
		m.busy = false
		m.handleResult(msg)

	case expiredMsg:
		m.expired = true
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Session expired after %ds idle. Press Ctrl+C to exit.", msg.data.IdleSeconds)),
			fmt.Sprintf("Session expired after %ds idle. Press Ctrl+C to exit.", msg.data.IdleSeconds))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == paneLog {
				m.focusedPane = paneInput
				m.input.Focus()
			} else {
				m.focusedPane = paneLog
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == paneInput {
				value := m.input.Value()
				m.input.SetValue("")
				return m, m.submit(value)
			}
		case "up", "k":
			if m.focusedPane == paneLog {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == paneLog {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == paneLog {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == paneLog {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == paneLog {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == paneLog {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit parses a line of input and returns the command to run, if any.
func (m *Model) submit(input string) tea.Cmd {
	cmd, err := parseCommand(input)
	if err != nil {
		m.addError(err.Error())
		return nil
	}
	if cmd.kind == cmdQuit {
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	}
	if cmd.kind == cmdNone {
		return nil
	}
	if m.expired {
		m.addError("Session expired. Press Ctrl+C to exit.")
		return nil
	}
	if m.busy {
		m.addInfo("Waiting for the previous move...")
		return nil
	}

	m.logger.Debug("Command", "input", input, "kind", cmd.kind)

	switch cmd.kind {
	case cmdTake:
		return m.turn(cmd.count)
	case cmdGiveUp:
		return m.giveUp()
	case cmdRestart:
		m.params = cmd.apply(m.params)
		return m.start(m.params)
	case cmdState:
		return m.fetchState()
	case cmdHelp:
		for _, line := range strings.Split(helpText, "\n") {
			m.addInfo(line)
		}
	}
	return nil
}

func (m *Model) handleResult(msg resultMsg) {
	if msg.err != nil {
		m.logger.Debug("Request failed", "error", msg.err)
		m.addError(describeError(msg.err))
		return
	}

	if msg.state != nil {
		m.state = msg.state
		m.addInfo(fmt.Sprintf("%d of %d pebbles left, take 1 to %d.",
			msg.state.PebblesRemaining, msg.state.PebblesCount, msg.state.MaxPebblesPerTurn))
		return
	}
	if msg.events == nil {
		return
	}

	state := msg.events.State
	m.state = &state

	if msg.started {
		m.AddLogEntry(HeaderStyle.Render(" New game "), "New game")
		opener := "You move first."
		if state.FirstPlayer != humanName {
			opener = "Computer moves first."
		}
		m.addInfo(fmt.Sprintf("%s, %d pebbles, take 1 to %d per turn. %s",
			state.Difficulty, state.PebblesCount, state.MaxPebblesPerTurn, opener))
	}

	for _, e := range msg.events.Events {
		m.addEvent(e)
	}

	if state.Finished() {
		m.addInfo("Type restart to play again.")
	} else {
		m.addInfo(fmt.Sprintf("%d pebbles left. Your move.", state.PebblesRemaining))
	}
}

func (m *Model) addEvent(e server.EventData) {
	text := describeEvent(e)
	style := AutomatedStyle
	if e.Player == humanName {
		style = HumanStyle
	}
	if e.Type == wonType {
		if e.Player == humanName {
			style = SuccessStyle
		} else {
			style = ErrorStyle
		}
	}
	m.AddLogEntry(style.Render(text), text)
}

func (m *Model) addInfo(text string) {
	m.AddLogEntry(InfoStyle.Render(text), text)
}

func (m *Model) addError(text string) {
	m.AddLogEntry(ErrorStyle.Render(text), text)
}

// AddLogEntry appends a rendered entry and its plain text to the log.
func (m *Model) AddLogEntry(rendered, plain string) {
	m.gameLog = append(m.gameLog, rendered)
	m.plainLog = append(m.plainLog, plain)

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(paneInput)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebarPane())

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(paneLog)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) borderFor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return focusColor
	}
	return borderColor
}

func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(" Pebbles "))
	content.WriteString("\n\n")

	if m.state == nil {
		content.WriteString(InfoStyle.Render("Starting..."))
		return content.String()
	}

	s := m.state
	fmt.Fprintf(&content, "Difficulty: %s\n", s.Difficulty)
	fmt.Fprintf(&content, "Remaining:  %d/%d\n", s.PebblesRemaining, s.PebblesCount)
	fmt.Fprintf(&content, "Per turn:   1-%d\n", s.MaxPebblesPerTurn)
	fmt.Fprintf(&content, "Opened by:  %s\n\n", playerName(s.FirstPlayer))

	content.WriteString(PileStyle.Render(renderPile(s.PebblesRemaining)))
	content.WriteString("\n\n")

	switch {
	case s.Forfeited:
		content.WriteString(ErrorStyle.Render("You gave up"))
	case s.Winner == humanName:
		content.WriteString(SuccessStyle.Render("You won!"))
	case s.Winner != "":
		content.WriteString(ErrorStyle.Render("Computer won"))
	default:
		content.WriteString(WarningStyle.Render("Your move"))
	}

	return content.String()
}

func (m *Model) renderActionPane() string {
	var content strings.Builder

	content.WriteString(m.input.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == paneLog {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

// renderPile draws up to pileRows rows of pebbles, with a count for the rest.
func renderPile(remaining uint32) string {
	if remaining == 0 {
		return "(empty)"
	}

	limit := uint32(pileWidth * pileRows)
	shown := min(remaining, limit)

	var rows []string
	for shown > 0 {
		n := min(shown, pileWidth)
		rows = append(rows, strings.Repeat("o", int(n)))
		shown -= n
	}
	if remaining > limit {
		rows = append(rows, fmt.Sprintf("+%d more", remaining-limit))
	}
	return strings.Join(rows, "\n")
}
