package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := m.date.Format("Monday, " + constants.DateFormat)
	if m.date.Equal(m.svc.Today()) {
		title = "Today · " + title
	}

	var status string
	if m.err != nil {
		status = dangerStyle.Render("Error: " + m.err.Error())
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		status,
		m.dayModel.View(),
		m.help.View(m),
	))
}
