// Package tui is the interactive terminal frontend: an analysis screen
// while a repository is being prepared, then a chat screen for questions.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AyushMishra1006/endee-code-assistant/internal/analyzer"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewAnalyzing ViewState = iota
	ViewChat
)

// Model is the top-level Bubble Tea model.
type Model struct {
	state     ViewState
	analyzing analyzingModel
	chat      chatModel
	width     int
	height    int
}

// New creates the TUI model. The analyzer must already be constructed;
// analysis of repoURL starts when the program runs.
func New(a *analyzer.Analyzer, repoURL string, force bool) Model {
	return Model{
		state:     ViewAnalyzing,
		analyzing: newAnalyzingModel(a, repoURL, force),
		chat:      newChatModel(a),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.analyzing.spinner.Tick, runAnalyze(m.analyzing.analyzer, m.analyzing.repoURL, m.analyzing.force))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state == ViewAnalyzing && msg.String() == "q" {
			return m, tea.Quit
		}
	}

	switch m.state {
	case ViewAnalyzing:
		var cmd tea.Cmd
		m.analyzing, cmd = m.analyzing.Update(msg)
		if m.analyzing.done && m.analyzing.err == nil {
			m.state = ViewChat
			m.chat.initViewport(m.width, m.height)
			return m, nil
		}
		return m, cmd

	case ViewChat:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case ViewAnalyzing:
		return m.analyzing.View(m.width, m.height)
	case ViewChat:
		return m.chat.View()
	}
	return ""
}

// Run starts the TUI program and blocks until it exits.
func Run(a *analyzer.Analyzer, repoURL string, force bool) error {
	p := tea.NewProgram(New(a, repoURL, force), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
