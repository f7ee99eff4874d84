package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui/components/day"
)

// headerHeight covers the date line, the error line and the help line.
const headerHeight = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.dayModel.SetSize(msg.Width-h, msg.Height-v-headerHeight)
		return m, nil

	case loadedMsg:
		// A late response for a day the user already left is dropped.
		if !msg.date.Equal(m.date) {
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.dayModel.SetItems(msg.items)
		}
		return m, nil

	case changedMsg:
		if msg.err != nil {
			logger.Warn("Habit update failed", "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.load()

	case day.ToggleMsg:
		return m, m.toggle(msg)

	case day.LogMsg:
		return m, m.logRepeat(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.date = m.date.AddDate(0, 0, -1)
			return m, m.load()
		case key.Matches(msg, m.keys.Next):
			m.date = m.date.AddDate(0, 0, 1)
			return m, m.load()
		case key.Matches(msg, m.keys.Today):
			m.date = m.svc.Today()
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.dayModel, cmd = m.dayModel.Update(msg)
	return m, cmd
}
