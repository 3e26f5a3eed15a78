package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#737373"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fafafa")).Background(lipgloss.Color("#404040"))
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case StateEditLayout:
		body = m.renderEditor()
	case StateAdding:
		body = m.renderAdd()
	default:
		body = m.renderDashboard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render("budgly"), m.period.Text()}
	if m.formatter.Settings().HideAmounts {
		parts = append(parts, mutedStyle.Render("amounts hidden"))
	}
	if !m.online {
		parts = append(parts, warningStyle.Render("offline"))
	}
	if n := m.view.Snapshot.Skipped; n > 0 {
		parts = append(parts, warningStyle.Render(fmt.Sprintf("%d unreadable transactions", n)))
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (m Model) renderDashboard() string {
	if len(m.view.Cards) == 0 {
		return mutedStyle.Render("No cards to show. Press e to edit the layout.")
	}
	return m.renderer.Render(m.view.Cards, m.selected)
}

func (m Model) renderEditor() string {
	lines := []string{titleStyle.Render("Dashboard layout"), ""}
	for i, e := range m.entries {
		box := "[ ]"
		if e.Visible {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, e.ID)
		if i == m.editCursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", mutedStyle.Render("Space toggles visibility, Esc returns"))
	return strings.Join(lines, "\n")
}

func (m Model) renderAdd() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Quick add"),
		m.input.View(),
		mutedStyle.Render("amount reason [#need|#want] [@mode], prefix + for income"),
	)
}

func (m Model) renderStatus() string {
	if m.lastError != nil {
		return errorStyle.Render("Error: " + m.lastError.Error())
	}
	return mutedStyle.Render(m.status)
}
