package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wormtrack/internal/core"
	"github.com/vovakirdan/wormtrack/internal/levels"
	"github.com/vovakirdan/wormtrack/internal/storage"
)

// GameFactory builds a playable game for a level.
type GameFactory func(lvl levels.Level) core.Game

// SessionDeps are the collaborators a session needs.
type SessionDeps struct {
	Levels  []levels.Level
	Store   *storage.Store // may be nil
	NewGame GameFactory
}

type sessionScreen int

const (
	screenPicker sessionScreen = iota
	screenGame
	screenResults
)

// SessionModel manages the full session flow: picker -> game -> picker,
// with the results board reachable from the picker.
// It is the top-level model for local play and SSH sessions.
type SessionModel struct {
	deps      SessionDeps
	config    core.RuntimeConfig
	username  string
	screen    sessionScreen
	picker    PickerModel
	results   ResultsModel
	gameModel *Model
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(deps SessionDeps, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		deps:     deps,
		config:   cfg,
		username: username,
		picker:   NewPickerModel(deps.Levels, deps.Store, cfg.ScreenW, cfg.ScreenH),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenResults:
		return m.updateResults(msg)
	default:
		return m.updatePicker(msg)
	}
}

// updatePicker handles updates while picking a level.
func (m SessionModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPicker, cmd := m.picker.Update(msg)
	if p, ok := newPicker.(PickerModel); ok {
		m.picker = p
	}

	switch {
	case m.picker.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.picker.WantsScoreboard():
		m.results = NewResultsModel(m.deps.Levels, m.deps.Store, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenResults
		return m, m.results.Init()

	case m.picker.Selected() != nil:
		cfg := m.config
		cfg.Seed = time.Now().UnixNano()
		game := m.deps.NewGame(m.picker.Selected().Level)
		gm := NewModel(game, cfg)
		m.gameModel = &gm
		m.screen = screenGame
		return m, m.gameModel.Init()
	}

	return m, cmd
}

// updateGame handles updates while a level is running.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.gameModel.Update(msg)
	if gm, ok := newModel.(Model); ok {
		m.gameModel = &gm
	}

	if m.gameModel.IsQuitting() {
		closeGame(m.gameModel.game)
		m.quitting = true
		return m, tea.Quit
	}

	// The game model quits its own program on back; here it returns to the picker.
	if m.gameModel.BackToMenu() {
		closeGame(m.gameModel.game)
		m.gameModel = nil
		return m.toPicker()
	}

	return m, cmd
}

// updateResults handles updates on the results board.
func (m SessionModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	newResults, cmd := m.results.Update(msg)
	if r, ok := newResults.(ResultsModel); ok {
		m.results = r
	}

	if m.results.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.results.IsGoingBack() {
		return m.toPicker()
	}

	return m, cmd
}

// toPicker rebuilds the picker so best tiers reflect new results.
func (m SessionModel) toPicker() (tea.Model, tea.Cmd) {
	m.picker = NewPickerModel(m.deps.Levels, m.deps.Store, m.config.ScreenW, m.config.ScreenH)
	m.screen = screenPicker
	return m, m.picker.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.gameModel.View()
	case screenResults:
		return m.results.View()
	default:
		return m.picker.View()
	}
}

// Username returns the player the session belongs to.
func (m SessionModel) Username() string {
	return m.username
}

// RunSession runs a local session starting at the level picker.
func RunSession(deps SessionDeps, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(deps, cfg, ""),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
