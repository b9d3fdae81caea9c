package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/AyushMishra1006/endee-code-assistant/internal/analyzer"
	"github.com/AyushMishra1006/endee-code-assistant/internal/rag"
)

type chatState int

const (
	chatIdle chatState = iota
	chatThinking
)

type chatModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	analyzer    *analyzer.Analyzer
	messages    []chatMessage
	state       chatState
	width       int
	height      int
	initialized bool
}

type chatMessage struct {
	role    string // "user", "assistant", "error", "system"
	content string
	sources []rag.Source
}

// answerMsg is sent when a question round-trip completes.
type answerMsg struct {
	resp *rag.Response
	err  error
}

func newChatModel(a *analyzer.Analyzer) chatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ti := textinput.New()
	ti.Placeholder = "Ask a question about the repository..."
	ti.CharLimit = 2000
	ti.Focus()

	return chatModel{
		spinner:  sp,
		input:    ti,
		analyzer: a,
		state:    chatIdle,
	}
}

func (m *chatModel) initViewport(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + input (1 line) + gap (1 line).
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Repository analyzed. Ask a question about the code.\n\nCommands: /help, /clear, /exit"))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

func askQuestion(a *analyzer.Analyzer, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.Ask(context.Background(), question, 0)
		return answerMsg{resp: resp, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.state = chatIdle
		switch {
		case msg.err != nil && msg.resp != nil:
			// Generation failed but retrieval worked: show the sources.
			m.messages = append(m.messages, chatMessage{
				role:    "error",
				content: msg.err.Error(),
				sources: msg.resp.Sources,
			})
		case msg.err != nil:
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
		default:
			m.messages = append(m.messages, chatMessage{
				role:    "assistant",
				content: msg.resp.Answer,
				sources: msg.resp.Sources,
			})
		}
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.state != chatIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.state != chatIdle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/clear":
				m.messages = nil
				m.viewport.SetContent(dimStyle.Render("Conversation cleared."))
				return m, nil
			case "/help":
				helpText := "Commands:\n  /clear  - clear conversation\n  /exit   - quit\n  /help   - show this help"
				m.messages = append(m.messages, chatMessage{role: "system", content: helpText})
				m.viewport.SetContent(m.renderMessages())
				m.viewport.GotoBottom()
				return m, nil
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.state = chatThinking
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, askQuestion(m.analyzer, question))
		}
	}

	if m.state == chatIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func renderSources(sources []rag.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(sourceStyle.Render("Sources:") + "\n")
	for _, s := range sources {
		sb.WriteString(sourceStyle.Render(fmt.Sprintf("  %s:%s (lines %s, %.3f)", s.File, s.Symbol, s.Lines, s.Similarity)) + "\n")
	}
	return sb.String()
}

func (m chatModel) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n")
			sb.WriteString(renderSources(msg.sources) + "\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n")
			sb.WriteString(renderSources(msg.sources) + "\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		}
	}

	if m.state != chatIdle {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Thinking...") + "\n")
	}

	return sb.String()
}

func (m chatModel) View() string {
	if !m.initialized {
		return ""
	}

	statusText := "idle"
	if m.state == chatThinking {
		statusText = "thinking..."
	}
	info := m.analyzer.Status()
	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" endee chat | %d chunks | %s", info.Chunks, statusText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
