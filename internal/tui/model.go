// Package tui renders habits in the terminal: the interactive day view,
// static calendar and statistics output, progress spinners and prompts.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui/components/day"
)

type KeyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Today key.Binding
	Up    key.Binding
	Down  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "["),
			key.WithHelp("←/h", "previous day"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", "]"),
			key.WithHelp("→/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// loadedMsg carries the evaluated habits for one day.
type loadedMsg struct {
	date  time.Time
	items []habits.DayItem
	err   error
}

// changedMsg reports the outcome of a mutation.
type changedMsg struct {
	err error
}

// Model is the interactive day view.
type Model struct {
	svc      *habits.Service
	date     time.Time
	dayModel day.Model
	keys     KeyMap
	help     help.Model
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(svc *habits.Service) Model {
	return Model{
		svc:      svc,
		date:     svc.Today(),
		dayModel: day.New(nil, 0, 0),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Date returns the day currently shown.
func (m Model) Date() time.Time {
	return m.date
}

func (m Model) ShortHelp() []key.Binding {
	dk := day.DefaultKeyMap()
	return []key.Binding{dk.Toggle, m.keys.Prev, m.keys.Next, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	dk := day.DefaultKeyMap()
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Prev, m.keys.Next, m.keys.Today},
		{dk.Toggle, dk.Log},
		{m.keys.Help, m.keys.Quit},
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	svc, date := m.svc, m.date
	return func() tea.Msg {
		items, err := svc.Day(context.Background(), date)
		return loadedMsg{date: date, items: items, err: err}
	}
}

func (m Model) toggle(msg day.ToggleMsg) tea.Cmd {
	svc, date := m.svc, m.date
	return func() tea.Msg {
		_, err := svc.Toggle(context.Background(), msg.HabitID, date)
		return changedMsg{err: err}
	}
}

func (m Model) logRepeat(msg day.LogMsg) tea.Cmd {
	svc, date := m.svc, m.date
	return func() tea.Msg {
		_, err := svc.Mark(context.Background(), msg.HabitID, date, habits.MarkOptions{})
		return changedMsg{err: err}
	}
}
