package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
)

type taskDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(title string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = openStyle
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	// Keys are ignored: the task runs to completion.
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// RunTask runs fn in its own goroutine and shows a spinner on out until it
// returns. Without a terminal fn runs directly.
func RunTask(out io.Writer, title string, fn func() error) error {
	if !IsTerminal(out) {
		return fn()
	}

	p := tea.NewProgram(newSpinnerModel(title), tea.WithOutput(out), tea.WithInput(nil))
	result := make(chan error, 1)
	go func() {
		err := fn()
		result <- err
		p.Send(taskDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		logger.Warn("Spinner stopped early", "error", err)
	}
	return <-result
}
