package day

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/habits"
)

// ToggleMsg asks for the selected habit's day to be flipped.
type ToggleMsg struct {
	HabitID uuid.UUID
}

// LogMsg asks for one more record on the selected habit's day.
type LogMsg struct {
	HabitID uuid.UUID
}

type Item struct {
	habits.DayItem
}

func (i Item) Title() string {
	mark := "○"
	switch {
	case i.Completed && i.Habit.IsBadHabit:
		mark = "✗"
	case i.Completed:
		mark = "✓"
	case i.Count > 0:
		mark = "◐"
	}
	return mark + " " + i.Habit.Name
}

func (i Item) Description() string {
	var parts []string
	if i.Required > 1 {
		parts = append(parts, fmt.Sprintf("%d/%d", i.Count, i.Required))
	}
	switch {
	case i.Habit.IsBadHabit && i.Count > 0:
		parts = append(parts, "relapsed")
	case i.Habit.IsBadHabit:
		parts = append(parts, "avoided")
	case i.Completed:
		parts = append(parts, "done")
	case !i.Scheduled:
		parts = append(parts, "not scheduled")
	default:
		parts = append(parts, "open")
	}
	if i.Backlog != nil {
		parts = append(parts, "carried over from "+i.Backlog.Format(constants.DateFormat))
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Toggle key.Binding
	Log    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "toggle"),
		),
		Log: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "log repeat"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []habits.DayItem, width, height int) Model {
	l := list.New(toListItems(items), list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Log}
	}
	return Model{list: l, keys: keys}
}

func toListItems(items []habits.DayItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = Item{DayItem: it}
	}
	return out
}

func (m *Model) SetItems(items []habits.DayItem) {
	m.list.SetItems(toListItems(items))
}

// Selected returns the highlighted item, if any.
func (m Model) Selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Toggle):
			if it, ok := m.Selected(); ok {
				id := it.Habit.ID
				return m, func() tea.Msg { return ToggleMsg{HabitID: id} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Log):
			if it, ok := m.Selected(); ok {
				id := it.Habit.ID
				return m, func() tea.Msg { return LogMsg{HabitID: id} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  Nothing scheduled for this day."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
