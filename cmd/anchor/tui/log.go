// Package tui implements anchor's interactive commit browser, used by
// `anchor log --interactive`.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anchorvcs/anchor/internal/objectstore"
)

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedBody = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// LogModel is a scrollable list of snapshots, newest first.
type LogModel struct {
	history []objectstore.Snapshot
	cursor  int
	height  int
}

// NewLogModel builds a browser over history, already ordered newest first.
func NewLogModel(history []objectstore.Snapshot) LogModel {
	return LogModel{history: history, height: 20}
}

func (m LogModel) Init() tea.Cmd {
	return nil
}

func (m LogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.history)-1 {
				m.cursor++
			}
			return m, nil
		}
	}
	return m, nil
}

func (m LogModel) View() string {
	if len(m.history) == 0 {
		return headerStyle.Render("no commits yet") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("anchor log — j/k to move, q to quit") + "\n\n")

	for i, snap := range m.history {
		line := fmt.Sprintf("%s  %s", snap.SnapshotID[:12], firstLine(snap.Message))
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + selectedBody.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}

// Run starts the interactive browser over history and blocks until the
// user quits.
func Run(history []objectstore.Snapshot) error {
	_, err := tea.NewProgram(NewLogModel(history), tea.WithAltScreen()).Run()
	return err
}
