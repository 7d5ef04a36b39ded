package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/service"
)

// Asker is the TUI-facing subset of the answer composer.
type Asker interface {
	Ask(ctx context.Context, question string) service.QueryContext
}

// answerMsg carries a finished QueryContext back into Update.
type answerMsg struct{ qc service.QueryContext }

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	asker    Asker
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	overview string
	status   string
	last     *service.QueryContext
	cursor   int
	busy     bool
	ready    bool
}

// New creates a chat screen. overview is shown under the title.
func New(ctx context.Context, asker Asker, overview string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the Argo profiles and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{asker: asker, ctx: ctx, input: ti, viewport: vp, overview: overview, status: "Ready. Up/Down select a source, Ctrl+C quits."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{qc: m.asker.Ask(m.ctx, q)}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+overview, status, input box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.busy = false
		qc := msg.qc
		m.last = &qc
		m.cursor = 0
		if qc.Err != nil {
			m.status = "Error: " + qc.Err.Error()
		} else {
			m.status = fmt.Sprintf("Answered from %d documents", len(qc.Results))
		}
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = fmt.Sprintf("Thinking about %q...", q)
				m.input.SetValue("")
				return m, m.ask(q)
			}
		case "down":
			if m.last != nil && len(m.last.Results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.last.Results)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.last != nil && len(m.last.Results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.last.Results)) % len(m.last.Results)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Argo Profile Assistant")
	overview := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.overview)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + overview + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.last == nil {
		return "No question asked yet."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Q: " + m.last.Question))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(max(20, m.viewport.Width-4)).Render(m.last.Answer))
	if len(m.last.Results) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Sources (%d)", len(m.last.Results))))
	for i, r := range m.last.Results {
		line := fmt.Sprintf("%d. %s  distance=%.3f", i+1, r.Document.ID, r.Distance)
		if i == m.cursor {
			line = highlightStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString("\n" + line)
	}
	sel := m.last.Results[m.cursor].Document
	b.WriteString("\n\n" + sel.Text)
	if len(sel.Metadata) > 0 {
		keys := make([]string, 0, len(sel.Metadata))
		for k := range sel.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %s", k, sel.Metadata[k]))
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
