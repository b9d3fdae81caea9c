package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AyushMishra1006/endee-code-assistant/internal/analyzer"
)

// analyzeDoneMsg is sent when repository analysis finishes.
type analyzeDoneMsg struct {
	stats *analyzer.Stats
	err   error
}

type analyzingModel struct {
	analyzer *analyzer.Analyzer
	repoURL  string
	force    bool
	spinner  spinner.Model
	stats    *analyzer.Stats
	done     bool
	err      error
}

func newAnalyzingModel(a *analyzer.Analyzer, repoURL string, force bool) analyzingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return analyzingModel{analyzer: a, repoURL: repoURL, force: force, spinner: sp}
}

func runAnalyze(a *analyzer.Analyzer, repoURL string, force bool) tea.Cmd {
	return func() tea.Msg {
		stats, err := a.Analyze(context.Background(), repoURL, force)
		return analyzeDoneMsg{stats: stats, err: err}
	}
}

func (m analyzingModel) Update(msg tea.Msg) (analyzingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyzeDoneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m analyzingModel) View(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("endee") + "\n")
	sb.WriteString(subtitleStyle.Render(m.repoURL) + "\n\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render("Analysis failed: "+m.err.Error()) + "\n\n")
		sb.WriteString(dimStyle.Render("press q to quit"))
	} else if m.done {
		sb.WriteString(successStyle.Render("Analysis complete.") + "\n")
	} else {
		status := m.analyzer.Status()
		sb.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), dimStyle.Render(string(status.Status)+"...")))
	}

	content := sb.String()
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
